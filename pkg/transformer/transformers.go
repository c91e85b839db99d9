// pkg/transformer/transformers.go
package transformer

import (
	"encoding/base32"
	"encoding/hex"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Transformer maps an original column value to its replacement. Apply is
// called once per row; implementations must be safe for concurrent use.
type Transformer interface {
	Apply(original string) (string, error)
}

// Func adapts a plain function to the Transformer interface.
type Func func(original string) (string, error)

// Apply calls f.
func (f Func) Apply(original string) (string, error) {
	return f(original)
}

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// identity returns the input unchanged.
func identity(original string) (string, error) {
	return original, nil
}

// fixed returns the configured value for every row, producing a constant
// column.
type fixed struct {
	value string
}

func (t fixed) Apply(string) (string, error) {
	return t.value, nil
}

// emptyJSON replaces any input with an empty JSON object literal.
func emptyJSON(string) (string, error) {
	return "{}", nil
}

// scramble replaces every non-space character with a random alphanumeric
// character, preserving spaces in their original positions. Word segmentation
// and total length survive; content does not. With blank set, all non-space
// characters become spaces instead.
type scramble struct {
	blank bool
}

func (t scramble) Apply(original string) (string, error) {
	runes := []rune(original)
	out := make([]rune, len(runes))
	for i, r := range runes {
		switch {
		case r == ' ':
			out[i] = ' '
		case t.blank:
			out[i] = ' '
		default:
			out[i] = rune(alphanumeric[rand.IntN(len(alphanumeric))])
		}
	}
	return string(out), nil
}

// obfuscateDay forces the day-of-month to 1, keeping month, year and any
// time-of-day component, and re-serializes in the layout the input matched.
// These layouts cover postgres date, timestamp and timestamptz text output.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05-07",
	"2006-01-02 15:04:05.999999-07",
	time.RFC3339,
}

func obfuscateDay(original string) (string, error) {
	for _, layout := range dateLayouts {
		parsed, err := time.Parse(layout, original)
		if err != nil {
			continue
		}
		truncated := time.Date(
			parsed.Year(), parsed.Month(), 1,
			parsed.Hour(), parsed.Minute(), parsed.Second(), parsed.Nanosecond(),
			parsed.Location(),
		)
		return truncated.Format(layout), nil
	}
	return "", &UnparseableDateError{Value: original}
}

// postCode keeps only the leading outward segment of the input, a
// deterministic redaction rather than a substitution.
func postCode(original string) (string, error) {
	runes := []rune(original)
	if len(runes) <= 3 {
		return original, nil
	}
	return string(runes[:3]), nil
}

// phoneNumber generates a random subscriber number retaining the input's
// country-calling-code segment. Only GB and US prefixes are supported;
// anything else is rejected rather than silently defaulted.
func phoneNumber(original string) (string, error) {
	switch {
	case strings.HasPrefix(original, "+44"):
		return "+447" + randomDigits(9), nil
	case strings.HasPrefix(original, "+1"):
		return "+1" + randomDigits(10), nil
	case strings.HasPrefix(original, "07"):
		// GB national mobile form.
		return "07" + randomDigits(9), nil
	default:
		return "", &UnsupportedCountryCodeError{Value: original}
	}
}

func randomDigits(n int) string {
	digits := make([]byte, n)
	for i := range digits {
		digits[i] = byte('0' + rand.IntN(10))
	}
	return string(digits)
}

// fakeBase16 generates a random 32-character lowercase hex string,
// independent of the input.
func fakeBase16(string) (string, error) {
	return hex.EncodeToString(randomBytes(16)), nil
}

// fakeBase32 generates a random unpadded base32 string.
func fakeBase32(string) (string, error) {
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(randomBytes(16)), nil
}

func randomBytes(n int) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(rand.IntN(256))
	}
	return buf
}

// fakeUUID generates a random v4 UUID.
func fakeUUID(string) (string, error) {
	return uuid.New().String(), nil
}

// fakeIPv4 generates a random dotted-quad address.
func fakeIPv4(string) (string, error) {
	return fmt.Sprintf("%d.%d.%d.%d",
		rand.IntN(256), rand.IntN(256), rand.IntN(256), rand.IntN(256)), nil
}

// corpus delegates to the injected fake-data capability for one category.
type corpus struct {
	generator Generator
	category  Category
}

func (t corpus) Apply(string) (string, error) {
	return t.generator.GenerateFake(t.category), nil
}

// maxFreshAttempts bounds how many fresh candidates a unique transformer
// draws before falling back to suffixing. See uniqueCorpus.Apply.
const maxFreshAttempts = 10

// uniqueCorpus wraps a corpus transformer so that every value issued for its
// key is pairwise distinct. On collision it retries with a freshly generated
// candidate; after maxFreshAttempts it suffixes the last candidate with a
// per-key counter, which always terminates.
type uniqueCorpus struct {
	corpus
	tracker *Tracker
	key     Key
}

func (t uniqueCorpus) Apply(original string) (string, error) {
	var candidate string
	for i := 0; i < maxFreshAttempts; i++ {
		candidate = t.generator.GenerateFake(t.category)
		if t.tracker.Reserve(t.key, candidate) {
			return candidate, nil
		}
	}
	return t.tracker.Ensure(t.key, candidate), nil
}
