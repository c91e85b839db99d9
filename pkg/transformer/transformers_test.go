// pkg/transformer/transformers_test.go
package transformer

import (
	"errors"
	"net"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgshield/anonymiser/pkg/model"
)

// stubGenerator returns queued values in order, cycling when exhausted. With
// no queued values it echoes the category name.
type stubGenerator struct {
	mu     sync.Mutex
	values []string
	next   int
}

func (g *stubGenerator) GenerateFake(category Category) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.values) == 0 {
		return string(category) + "-fake"
	}
	value := g.values[g.next%len(g.values)]
	g.next++
	return value
}

func resolve(t *testing.T, reg *Registry, kind model.TransformerKind, args map[string]string) Transformer {
	t.Helper()
	tr, err := reg.Resolve("public.person", "col", model.TransformerSpec{Name: kind, Args: args})
	require.NoError(t, err)
	return tr
}

func apply(t *testing.T, tr Transformer, input string) string {
	t.Helper()
	out, err := tr.Apply(input)
	require.NoError(t, err)
	return out
}

func TestIdentityReturnsInputUnchanged(t *testing.T) {
	reg := NewRegistry(&stubGenerator{})
	tr := resolve(t, reg, model.Identity, nil)

	assert.Equal(t, "some value", apply(t, tr, "some value"))
	assert.Equal(t, "", apply(t, tr, ""))
}

func TestFixedReturnsConfiguredValueForEveryRow(t *testing.T) {
	reg := NewRegistry(&stubGenerator{})
	tr := resolve(t, reg, model.Fixed, map[string]string{"value": "x"})

	for _, input := range []string{"a", "b", "c", ""} {
		assert.Equal(t, "x", apply(t, tr, input))
	}
}

func TestEmptyJsonReturnsEmptyObject(t *testing.T) {
	reg := NewRegistry(&stubGenerator{})
	tr := resolve(t, reg, model.EmptyJson, nil)

	assert.Equal(t, "{}", apply(t, tr, `{"name": "sensitive"}`))
}

func TestScramblePreservesLengthAndSpacePositions(t *testing.T) {
	reg := NewRegistry(&stubGenerator{})
	tr := resolve(t, reg, model.Scramble, nil)

	for i := 0; i < 20; i++ {
		out := apply(t, tr, "ab cd")
		require.Len(t, out, 5)
		assert.Equal(t, byte(' '), out[2])
		for _, idx := range []int{0, 1, 3, 4} {
			assert.Contains(t, alphanumeric, string(out[idx]))
		}
	}
}

func TestScrambleHandlesEmptyAndAllSpaceInput(t *testing.T) {
	reg := NewRegistry(&stubGenerator{})
	tr := resolve(t, reg, model.Scramble, nil)

	assert.Equal(t, "", apply(t, tr, ""))
	assert.Equal(t, "   ", apply(t, tr, "   "))
}

func TestScrambleBlankReplacesEverythingWithSpaces(t *testing.T) {
	reg := NewRegistry(&stubGenerator{})
	tr := resolve(t, reg, model.ScrambleBlank, nil)

	assert.Equal(t, "     ", apply(t, tr, "ab cd"))
}

func TestObfuscateDayForcesDayToFirstOfMonth(t *testing.T) {
	reg := NewRegistry(&stubGenerator{})
	tr := resolve(t, reg, model.ObfuscateDay, nil)

	assert.Equal(t, "2000-12-01", apply(t, tr, "2000-12-12"))
	assert.Equal(t, "1999-01-01", apply(t, tr, "1999-01-31"))
	assert.Equal(t, "2000-12-01 10:11:12", apply(t, tr, "2000-12-12 10:11:12"))
}

func TestObfuscateDayRejectsUnparseableInput(t *testing.T) {
	reg := NewRegistry(&stubGenerator{})
	tr := resolve(t, reg, model.ObfuscateDay, nil)

	_, err := tr.Apply("not a date")
	var dateErr *UnparseableDateError
	require.ErrorAs(t, err, &dateErr)
	assert.Equal(t, "not a date", dateErr.Value)
	assert.True(t, IsDataError(err))
}

func TestFakePostCodeKeepsOnlyTheOutwardSegment(t *testing.T) {
	reg := NewRegistry(&stubGenerator{})
	tr := resolve(t, reg, model.FakePostCode, nil)

	assert.Equal(t, "NW5", apply(t, tr, "NW5 1AB"))
	// Deterministic: repeated calls agree.
	assert.Equal(t, "NW5", apply(t, tr, "NW5 1AB"))
	assert.Equal(t, "AB", apply(t, tr, "AB"))
}

func TestFakePhoneNumberKeepsCountryCode(t *testing.T) {
	reg := NewRegistry(&stubGenerator{})
	tr := resolve(t, reg, model.FakePhoneNumber, nil)

	digits := regexp.MustCompile(`^\+?[0-9]+$`)

	gb := apply(t, tr, "+447716123456")
	assert.True(t, strings.HasPrefix(gb, "+447"))
	assert.Len(t, gb, len("+447")+9)
	assert.Regexp(t, digits, gb)

	us := apply(t, tr, "+12025550123")
	assert.True(t, strings.HasPrefix(us, "+1"))
	assert.Len(t, us, len("+1")+10)

	national := apply(t, tr, "07716123456")
	assert.True(t, strings.HasPrefix(national, "07"))
	assert.Len(t, national, len("07")+9)
}

func TestFakePhoneNumberRejectsUnknownCountryCodes(t *testing.T) {
	reg := NewRegistry(&stubGenerator{})
	tr := resolve(t, reg, model.FakePhoneNumber, nil)

	_, err := tr.Apply("+4930123456")
	var ccErr *UnsupportedCountryCodeError
	require.ErrorAs(t, err, &ccErr)
	assert.True(t, IsDataError(err))
}

func TestFakeEncodingsProduceWellFormedValues(t *testing.T) {
	reg := NewRegistry(&stubGenerator{})

	hexValue := apply(t, resolve(t, reg, model.FakeBase16String, nil), "ignored")
	assert.Regexp(t, `^[0-9a-f]{32}$`, hexValue)

	b32Value := apply(t, resolve(t, reg, model.FakeBase32String, nil), "ignored")
	assert.Regexp(t, `^[A-Z2-7]+$`, b32Value)

	uuidValue := apply(t, resolve(t, reg, model.FakeUUID, nil), "ignored")
	_, err := uuid.Parse(uuidValue)
	assert.NoError(t, err)

	ipValue := apply(t, resolve(t, reg, model.FakeIPv4, nil), "ignored")
	assert.NotNil(t, net.ParseIP(ipValue))
}

func TestCorpusTransformersDelegateToGenerator(t *testing.T) {
	gen := &stubGenerator{values: []string{"Bristol"}}
	reg := NewRegistry(gen)
	tr := resolve(t, reg, model.FakeCity, nil)

	assert.Equal(t, "Bristol", apply(t, tr, "London"))
}

func TestCorpusGeneratorCoversEveryCategory(t *testing.T) {
	gen := NewCorpusGenerator()
	categories := []Category{
		CategoryCity, CategoryCompanyName, CategoryEmail, CategoryFirstName,
		CategoryFullAddress, CategoryFullName, CategoryLastName,
		CategoryNationalIdentityNumber, CategoryState, CategoryStreetAddress,
		CategoryUsername,
	}
	for _, category := range categories {
		assert.NotEmpty(t, gen.GenerateFake(category), "category %s", category)
	}
}

func TestIsDataErrorIgnoresOtherErrors(t *testing.T) {
	assert.False(t, IsDataError(errors.New("boom")))
	assert.False(t, IsDataError(ErrUnconfiguredTransformer))
}
