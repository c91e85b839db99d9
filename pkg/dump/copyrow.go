// pkg/dump/copyrow.go
package dump

import "strings"

// NullField is the COPY text representation of SQL NULL. Null fields pass
// through the engine untouched; transformers never see them.
const NullField = `\N`

// IsNull reports whether a raw COPY field is SQL NULL.
func IsNull(field string) bool {
	return field == NullField
}

// SplitRow splits a COPY data line into its raw (still escaped) fields.
// Literal tabs inside values are escaped as `\t` in the text format, so
// splitting on the tab byte is exact.
func SplitRow(line string) []string {
	return strings.Split(line, "\t")
}

// JoinRow assembles raw fields back into a COPY data line.
func JoinRow(fields []string) string {
	return strings.Join(fields, "\t")
}

// UnescapeValue decodes a raw COPY field into the value text a transformer
// operates on. Unknown escape sequences decode to the escaped character, as
// the COPY text format specifies.
func UnescapeValue(field string) string {
	if !strings.ContainsRune(field, '\\') {
		return field
	}

	var sb strings.Builder
	sb.Grow(len(field))
	for i := 0; i < len(field); i++ {
		c := field[i]
		if c != '\\' || i == len(field)-1 {
			sb.WriteByte(c)
			continue
		}
		i++
		switch field[i] {
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'v':
			sb.WriteByte('\v')
		default:
			sb.WriteByte(field[i])
		}
	}
	return sb.String()
}

// EscapeValue encodes a value back into a raw COPY field.
func EscapeValue(value string) string {
	var sb strings.Builder
	sb.Grow(len(value))
	for i := 0; i < len(value); i++ {
		switch value[i] {
		case '\\':
			sb.WriteString(`\\`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\v':
			sb.WriteString(`\v`)
		default:
			sb.WriteByte(value[i])
		}
	}
	return sb.String()
}
