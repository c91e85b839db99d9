// pkg/dump/copyrow_test.go
package dump

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitAndJoinRowAreInverses(t *testing.T) {
	line := "1\tAda\t\\N"
	fields := SplitRow(line)
	assert.Equal(t, []string{"1", "Ada", `\N`}, fields)
	assert.Equal(t, line, JoinRow(fields))
}

func TestIsNull(t *testing.T) {
	assert.True(t, IsNull(`\N`))
	assert.False(t, IsNull("N"))
	assert.False(t, IsNull(""))
}

func TestUnescapeValueDecodesCopyEscapes(t *testing.T) {
	assert.Equal(t, "a\tb", UnescapeValue(`a\tb`))
	assert.Equal(t, "line1\nline2", UnescapeValue(`line1\nline2`))
	assert.Equal(t, `C:\dir`, UnescapeValue(`C:\\dir`))
	assert.Equal(t, "\b\f\r\v", UnescapeValue(`\b\f\r\v`))
	// Unknown escapes decode to the escaped character.
	assert.Equal(t, "q", UnescapeValue(`\q`))
	assert.Equal(t, "plain", UnescapeValue("plain"))
}

func TestEscapeValueEncodesControlCharacters(t *testing.T) {
	assert.Equal(t, `a\tb`, EscapeValue("a\tb"))
	assert.Equal(t, `line1\nline2`, EscapeValue("line1\nline2"))
	assert.Equal(t, `C:\\dir`, EscapeValue(`C:\dir`))
}

func TestEscapeUnescapeRoundTrip(t *testing.T) {
	values := []string{
		"plain",
		"tab\there",
		"newline\nhere",
		`back\slash`,
		"mixed\t\n\\\r",
		"",
	}
	for _, value := range values {
		assert.Equal(t, value, UnescapeValue(EscapeValue(value)), "value %q", value)
	}
}
