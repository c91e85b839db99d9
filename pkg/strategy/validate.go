// pkg/strategy/validate.go
package strategy

import (
	"sort"

	"github.com/pgshield/anonymiser/pkg/model"
	"github.com/pgshield/anonymiser/pkg/transformer"
)

// ValidateTransformers eagerly resolves every column's transformer spec
// against the registry, collecting all failures. This is the fail-fast gate:
// it runs before any row is processed so a misconfigured column can never
// leak or corrupt data mid-run.
func (s *Strategies) ValidateTransformers(registry *transformer.Registry) error {
	errs := &ConfigErrors{}

	for table, ts := range s.tables {
		for name, column := range ts.columns {
			if _, err := registry.Resolve(table, name, column.Transformer); err != nil {
				errs.InvalidTransformers = append(errs.InvalidTransformers, InvalidTransformer{
					Column: model.SimpleColumn{TableName: table, ColumnName: name},
					Err:    err,
				})
			}
		}
	}

	sort.Slice(errs.InvalidTransformers, func(i, j int) bool {
		return errs.InvalidTransformers[i].Column.String() < errs.InvalidTransformers[j].Column.String()
	})
	return errs.OrNil()
}

// ValidateAgainstSchema diffs the strategy's columns against the columns the
// source actually has, in both directions. Both lists come back sorted so
// operator output and test fixtures are stable.
func (s *Strategies) ValidateAgainstSchema(schemaColumns []model.SimpleColumn) error {
	fromStrategy := make(map[model.SimpleColumn]struct{})
	for _, col := range s.Columns() {
		fromStrategy[col] = struct{}{}
	}
	fromSchema := make(map[model.SimpleColumn]struct{}, len(schemaColumns))
	for _, col := range schemaColumns {
		fromSchema[col] = struct{}{}
	}

	errs := &ConfigErrors{}
	for col := range fromSchema {
		if _, ok := fromStrategy[col]; !ok {
			errs.MissingFromStrategy = append(errs.MissingFromStrategy, col)
		}
	}
	for col := range fromStrategy {
		if _, ok := fromSchema[col]; !ok {
			errs.MissingFromSchema = append(errs.MissingFromSchema, col)
		}
	}

	sortColumns(errs.MissingFromStrategy)
	sortColumns(errs.MissingFromSchema)
	return errs.OrNil()
}

// ValidateAll composes transformer resolution and the two-way schema diff
// into a single aggregate report.
func (s *Strategies) ValidateAll(registry *transformer.Registry, schemaColumns []model.SimpleColumn) error {
	errs := &ConfigErrors{}

	if err := s.ValidateTransformers(registry); err != nil {
		errs.InvalidTransformers = err.(*ConfigErrors).InvalidTransformers
	}
	if err := s.ValidateAgainstSchema(schemaColumns); err != nil {
		schemaErrs := err.(*ConfigErrors)
		errs.MissingFromStrategy = schemaErrs.MissingFromStrategy
		errs.MissingFromSchema = schemaErrs.MissingFromSchema
	}

	return errs.OrNil()
}

func sortColumns(columns []model.SimpleColumn) {
	sort.Slice(columns, func(i, j int) bool {
		if columns[i].TableName != columns[j].TableName {
			return columns[i].TableName < columns[j].TableName
		}
		return columns[i].ColumnName < columns[j].ColumnName
	})
}
