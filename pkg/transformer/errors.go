// pkg/transformer/errors.go
package transformer

import (
	"errors"
	"fmt"
)

// ErrUnconfiguredTransformer is returned when a column is still assigned the
// Error placeholder transformer. It is a configuration error and aborts the
// run before any row is processed.
var ErrUnconfiguredTransformer = errors.New("transformer has not been configured")

// UnknownTransformerError reports a transformer name the registry does not
// recognise.
type UnknownTransformerError struct {
	Name string
}

func (e *UnknownTransformerError) Error() string {
	return fmt.Sprintf("unknown transformer %q", e.Name)
}

// MissingArgumentError reports a required transformer argument that was not
// provided, e.g. Fixed without "value".
type MissingArgumentError struct {
	Transformer string
	Argument    string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("transformer %s requires argument %q", e.Transformer, e.Argument)
}

// UnparseableDateError is a per-row data error: ObfuscateDay received a value
// it cannot parse as a date or timestamp.
type UnparseableDateError struct {
	Value string
}

func (e *UnparseableDateError) Error() string {
	return fmt.Sprintf("cannot parse %q as a date", e.Value)
}

// UnsupportedCountryCodeError is a per-row data error: FakePhoneNumber saw a
// country-calling-code prefix it does not support. The policy is to reject
// rather than silently default to some country.
type UnsupportedCountryCodeError struct {
	Value string
}

func (e *UnsupportedCountryCodeError) Error() string {
	return fmt.Sprintf("unsupported country code in phone number %q", e.Value)
}

// IsDataError reports whether err is a per-row data error (as opposed to a
// configuration error or a programming invariant violation). Data errors are
// the only errors eligible for the skip-row failure policy.
func IsDataError(err error) bool {
	var dateErr *UnparseableDateError
	var ccErr *UnsupportedCountryCodeError
	return errors.As(err, &dateErr) || errors.As(err, &ccErr)
}
