// pkg/strategy/errors.go
package strategy

import (
	"fmt"
	"strings"

	"github.com/pgshield/anonymiser/pkg/model"
)

// InvalidTransformer pairs a column with the resolution error its transformer
// spec produced.
type InvalidTransformer struct {
	Column model.SimpleColumn
	Err    error
}

// ConfigErrors aggregates every configuration violation found in one pass so
// operators see all offending columns at once instead of fixing them one by
// one. Any non-empty ConfigErrors aborts the run before a single row is
// touched.
type ConfigErrors struct {
	UnknownDataTypes    []model.SimpleColumn
	ErrorTransformers   []model.SimpleColumn
	UnanonymisedPii     []model.SimpleColumn
	DuplicateTables     []string
	DuplicateColumns    []model.SimpleColumn
	InvalidTransformers []InvalidTransformer
	MissingFromStrategy []model.SimpleColumn
	MissingFromSchema   []model.SimpleColumn
}

// IsEmpty reports whether no violations were collected.
func (e *ConfigErrors) IsEmpty() bool {
	return len(e.UnknownDataTypes) == 0 &&
		len(e.ErrorTransformers) == 0 &&
		len(e.UnanonymisedPii) == 0 &&
		len(e.DuplicateTables) == 0 &&
		len(e.DuplicateColumns) == 0 &&
		len(e.InvalidTransformers) == 0 &&
		len(e.MissingFromStrategy) == 0 &&
		len(e.MissingFromSchema) == 0
}

// OrNil returns e as an error, or nil when no violations were collected.
func (e *ConfigErrors) OrNil() error {
	if e.IsEmpty() {
		return nil
	}
	return e
}

func (e *ConfigErrors) Error() string {
	var sb strings.Builder
	writeColumns := func(heading string, columns []model.SimpleColumn) {
		if len(columns) == 0 {
			return
		}
		sb.WriteString(heading + ":\n")
		for _, col := range columns {
			fmt.Fprintf(&sb, "  %s\n", col)
		}
	}

	writeColumns("columns with Unknown data type", e.UnknownDataTypes)
	writeColumns("columns with unconfigured (Error) transformer", e.ErrorTransformers)
	writeColumns("PII columns left with Identity transformer", e.UnanonymisedPii)
	writeColumns("duplicate column definitions", e.DuplicateColumns)
	writeColumns("columns in the schema but missing from the strategy", e.MissingFromStrategy)
	writeColumns("columns in the strategy but missing from the schema", e.MissingFromSchema)

	if len(e.DuplicateTables) > 0 {
		sb.WriteString("duplicate table definitions:\n")
		for _, table := range e.DuplicateTables {
			fmt.Fprintf(&sb, "  %s\n", table)
		}
	}
	if len(e.InvalidTransformers) > 0 {
		sb.WriteString("invalid transformer configuration:\n")
		for _, invalid := range e.InvalidTransformers {
			fmt.Fprintf(&sb, "  %s: %v\n", invalid.Column, invalid.Err)
		}
	}

	return strings.TrimSuffix(sb.String(), "\n")
}

// Count returns the total number of violations across all categories.
func (e *ConfigErrors) Count() int {
	return len(e.UnknownDataTypes) +
		len(e.ErrorTransformers) +
		len(e.UnanonymisedPii) +
		len(e.DuplicateTables) +
		len(e.DuplicateColumns) +
		len(e.InvalidTransformers) +
		len(e.MissingFromStrategy) +
		len(e.MissingFromSchema)
}

// UnknownColumnError is raised at run time when a dump presents a table or
// column the strategy does not cover. Validation catches this ahead of time
// when a schema is available; during streaming it is a hard stop.
type UnknownColumnError struct {
	Column model.SimpleColumn
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("no strategy configured for column %s", e.Column)
}

// UnknownTableError is the table-level counterpart of UnknownColumnError.
type UnknownTableError struct {
	Table string
}

func (e *UnknownTableError) Error() string {
	return fmt.Sprintf("no strategy configured for table %s", e.Table)
}
