// pkg/strategy/strategy.go
package strategy

import (
	"github.com/pgshield/anonymiser/pkg/model"
)

// Overrides relax or tighten strategy rules for one run without editing the
// strategy file. Allowing a category forces Identity for its columns;
// ScrambleBlank swaps Scramble for its blanking variant.
type Overrides struct {
	AllowPotentialPii          bool
	AllowCommerciallySensitive bool
	ScrambleBlank              bool
}

// None returns the zero override set.
func None() Overrides {
	return Overrides{}
}

// TableStrategy is the per-table view of a loaded strategy: either a column
// map or an instruction to truncate the table's rows entirely.
type TableStrategy struct {
	Truncate bool
	columns  map[string]model.ColumnConfig
}

// Column returns the config for the named column, if present.
func (t *TableStrategy) Column(name string) (model.ColumnConfig, bool) {
	cfg, ok := t.columns[name]
	return cfg, ok
}

// Strategies is the immutable, validated per-run strategy set. It is built
// once by New and only read afterwards, so it is safe for concurrent use.
type Strategies struct {
	tables map[string]*TableStrategy
}

// New builds Strategies from the decoded strategy file, applying overrides
// and collecting every classification violation in one pass. It returns a
// non-nil *ConfigErrors as the error when any column is unclassified,
// unconfigured, duplicated, or left un-anonymised.
func New(configs []model.TableConfig, overrides Overrides) (*Strategies, error) {
	strategies := &Strategies{tables: make(map[string]*TableStrategy)}
	errs := &ConfigErrors{}

	for _, table := range configs {
		if _, dupe := strategies.tables[table.TableName]; dupe {
			errs.DuplicateTables = append(errs.DuplicateTables, table.TableName)
			continue
		}

		ts := &TableStrategy{
			Truncate: table.Truncate,
			columns:  make(map[string]model.ColumnConfig, len(table.Columns)),
		}

		for _, column := range table.Columns {
			simple := model.SimpleColumn{TableName: table.TableName, ColumnName: column.Name}

			if column.DataType == model.Unknown {
				errs.UnknownDataTypes = append(errs.UnknownDataTypes, simple)
			}
			if column.Transformer.Name == model.Error {
				errs.ErrorTransformers = append(errs.ErrorTransformers, simple)
			}
			if isPii(column.DataType) && column.Transformer.Name == model.Identity {
				errs.UnanonymisedPii = append(errs.UnanonymisedPii, simple)
			}
			if _, dupe := ts.columns[column.Name]; dupe {
				errs.DuplicateColumns = append(errs.DuplicateColumns, simple)
				continue
			}

			column.Transformer = applyOverrides(column.DataType, column.Transformer, overrides)
			ts.columns[column.Name] = column
		}

		strategies.tables[table.TableName] = ts
	}

	if err := errs.OrNil(); err != nil {
		return nil, err
	}
	return strategies, nil
}

// ForTable returns the strategy for the named table, if configured.
func (s *Strategies) ForTable(table string) (*TableStrategy, bool) {
	ts, ok := s.tables[table]
	return ts, ok
}

// ColumnsFor returns the column configs for the named table in the given
// column order, as required by the row rewriter. It fails with
// UnknownTableError or UnknownColumnError when the dump presents structure
// the strategy does not cover.
func (s *Strategies) ColumnsFor(table string, columnNames []string) ([]model.ColumnConfig, error) {
	ts, ok := s.tables[table]
	if !ok {
		return nil, &UnknownTableError{Table: table}
	}

	columns := make([]model.ColumnConfig, len(columnNames))
	for i, name := range columnNames {
		cfg, ok := ts.Column(name)
		if !ok {
			return nil, &UnknownColumnError{
				Column: model.SimpleColumn{TableName: table, ColumnName: name},
			}
		}
		columns[i] = cfg
	}
	return columns, nil
}

// TransformerFor looks up the transformer spec configured for one column.
// Mostly a test convenience.
func (s *Strategies) TransformerFor(table, column string) (model.TransformerSpec, bool) {
	ts, ok := s.tables[table]
	if !ok {
		return model.TransformerSpec{}, false
	}
	cfg, ok := ts.Column(column)
	if !ok {
		return model.TransformerSpec{}, false
	}
	return cfg.Transformer, true
}

// Columns flattens the strategy set into (table, column) identifiers, used
// for schema diffing. Truncated tables carry no columns and are excluded.
func (s *Strategies) Columns() []model.SimpleColumn {
	var columns []model.SimpleColumn
	for table, ts := range s.tables {
		if ts.Truncate {
			continue
		}
		for name := range ts.columns {
			columns = append(columns, model.SimpleColumn{TableName: table, ColumnName: name})
		}
	}
	return columns
}

func isPii(dataType model.DataType) bool {
	return dataType == model.Pii || dataType == model.PotentialPii
}

func applyOverrides(dataType model.DataType, spec model.TransformerSpec, overrides Overrides) model.TransformerSpec {
	switch {
	case dataType == model.PotentialPii && overrides.AllowPotentialPii:
		return model.TransformerSpec{Name: model.Identity}
	case dataType == model.CommerciallySensitive && overrides.AllowCommerciallySensitive:
		return model.TransformerSpec{Name: model.Identity}
	case overrides.ScrambleBlank && spec.Name == model.Scramble:
		return model.TransformerSpec{Name: model.ScrambleBlank}
	default:
		return spec
	}
}
