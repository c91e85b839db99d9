// pkg/rewrite/rewriter.go
package rewrite

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/pgshield/anonymiser/pkg/model"
	"github.com/pgshield/anonymiser/pkg/strategy"
	"github.com/pgshield/anonymiser/pkg/transformer"
)

// ArityError reports a column/value count mismatch in a row. If the
// configuration validator ran, this is a programming invariant violation,
// not a data problem, and the run must stop.
type ArityError struct {
	Table   string
	Columns int
	Values  int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("table %s: row has %d values for %d columns", e.Table, e.Values, e.Columns)
}

// RowError carries the table/column context of a per-row transformation
// failure so the failure policy can decide between aborting and skipping.
type RowError struct {
	Column model.SimpleColumn
	Value  string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("column %s: %v", e.Column, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Rewriter applies configured transformers to rows. Transformers are resolved
// once per column and cached; the cache is read-mostly and guarded for the
// worker pool.
type Rewriter struct {
	strategies *strategy.Strategies
	registry   *transformer.Registry
	logger     *zap.Logger

	mu    sync.RWMutex
	cache map[transformer.Key]transformer.Transformer
}

// New creates a rewriter over validated strategies.
func New(strategies *strategy.Strategies, registry *transformer.Registry, logger *zap.Logger) *Rewriter {
	return &Rewriter{
		strategies: strategies,
		registry:   registry,
		logger:     logger.Named("rewriter"),
		cache:      make(map[transformer.Key]transformer.Transformer),
	}
}

// ForTable resolves the transformer stream for one table's column order and
// returns a TableRewriter bound to it. The dump source dictates the column
// order; the strategy must cover every column it names.
func (r *Rewriter) ForTable(table string, columnNames []string) (*TableRewriter, error) {
	columns, err := r.strategies.ColumnsFor(table, columnNames)
	if err != nil {
		return nil, err
	}

	transformers := make([]transformer.Transformer, len(columns))
	for i, column := range columns {
		t, err := r.resolve(table, column)
		if err != nil {
			return nil, err
		}
		transformers[i] = t
	}

	r.logger.Debug("Resolved table transformers",
		zap.String("table", table),
		zap.Int("columns", len(columns)))

	return &TableRewriter{
		table:        table,
		columns:      columns,
		transformers: transformers,
	}, nil
}

// resolve returns the cached transformer for (table, column), resolving it
// on first use.
func (r *Rewriter) resolve(table string, column model.ColumnConfig) (transformer.Transformer, error) {
	key := transformer.Key{Table: table, Column: column.Name}

	r.mu.RLock()
	cached, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	t, err := r.registry.Resolve(table, column.Name, column.Transformer)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[key] = t
	r.mu.Unlock()
	return t, nil
}

// TableRewriter rewrites rows of a single table. Rows are independent
// transformation units: the only shared state between rows is the uniqueness
// tracker inside unique-configured transformers, so one TableRewriter may be
// shared across workers.
type TableRewriter struct {
	table        string
	columns      []model.ColumnConfig
	transformers []transformer.Transformer
}

// Table returns the table this rewriter is bound to.
func (t *TableRewriter) Table() string {
	return t.table
}

// ColumnCount returns the number of columns this rewriter expects per row.
func (t *TableRewriter) ColumnCount() int {
	return len(t.columns)
}

// RewriteValue applies the transformer at column position i to one value.
// The dump adapter uses this to keep SQL NULLs out of transformers entirely:
// a null never reaches generation, so unique bookkeeping is not consumed
// for it.
func (t *TableRewriter) RewriteValue(i int, value string) (string, error) {
	replaced, err := t.transformers[i].Apply(value)
	if err != nil {
		return "", &RowError{
			Column: model.SimpleColumn{TableName: t.table, ColumnName: t.columns[i].Name},
			Value:  value,
			Err:    err,
		}
	}
	return replaced, nil
}

// RewriteRow produces the replacement row for values, preserving column
// order. The input row is never mutated.
func (t *TableRewriter) RewriteRow(values model.Row) (model.Row, error) {
	if len(values) != len(t.transformers) {
		return nil, &ArityError{
			Table:   t.table,
			Columns: len(t.transformers),
			Values:  len(values),
		}
	}

	out := make(model.Row, len(values))
	for i, value := range values {
		replaced, err := t.RewriteValue(i, value)
		if err != nil {
			return nil, err
		}
		out[i] = replaced
	}
	return out, nil
}
