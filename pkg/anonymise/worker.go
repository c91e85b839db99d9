// pkg/anonymise/worker.go
package anonymise

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/pgshield/anonymiser/pkg/config"
	"github.com/pgshield/anonymiser/pkg/dump"
	"github.com/pgshield/anonymiser/pkg/rewrite"
	"github.com/pgshield/anonymiser/pkg/transformer"
)

// ErrSkipBudgetExceeded aborts a skip-row run once too many rows have been
// dropped; an output missing that much data is not a useful anonymised dump.
var ErrSkipBudgetExceeded = errors.New("skipped row budget exceeded")

// rowBatch is one unit of worker input: a slice of raw COPY data lines
// belonging to the current table, tagged with a sequence number so output
// order can be restored after parallel processing.
type rowBatch struct {
	seq  int
	rows [][]string // raw (escaped) fields per row
}

// batchResult carries rewritten rows back to the collector. A nil row slot
// marks a row skipped under the skip-row policy.
type batchResult struct {
	seq  int
	rows [][]string
	err  error
}

// worker rewrites batches until the jobs channel closes or the context is
// cancelled. Rows are independent transformation units; the only shared
// mutable state is the uniqueness tracker inside the table rewriter's
// transformers, which synchronises itself per key.
func (r *Runner) worker(
	ctx context.Context,
	id int,
	tw *rewrite.TableRewriter,
	jobs <-chan rowBatch,
	results chan<- batchResult,
	wg *sync.WaitGroup,
) {
	defer wg.Done()
	logger := r.logger.With(zap.Int("workerID", id), zap.String("table", tw.Table()))

	for batch := range jobs {
		select {
		case <-ctx.Done():
			results <- batchResult{seq: batch.seq, err: ctx.Err()}
			continue
		default:
		}

		out, err := r.rewriteBatch(tw, batch)
		if err != nil {
			logger.Error("Batch rewrite failed", zap.Int("batch", batch.seq), zap.Error(err))
		}
		results <- batchResult{seq: batch.seq, rows: out, err: err}
	}
}

// rewriteBatch rewrites every row of one batch, applying the failure policy
// to per-row data errors.
func (r *Runner) rewriteBatch(tw *rewrite.TableRewriter, batch rowBatch) ([][]string, error) {
	out := make([][]string, len(batch.rows))
	for i, fields := range batch.rows {
		rewritten, err := r.rewriteFields(tw, fields)
		if err != nil {
			var rowErr *rewrite.RowError
			if r.cfg.FailurePolicy == config.FailSkipRow && errors.As(err, &rowErr) && transformer.IsDataError(rowErr.Err) {
				skipped := r.metrics.RecordSkippedRow(rowErr.Column, rowErr.Err)
				if skipped > int64(r.cfg.MaxSkippedRows) {
					return nil, fmt.Errorf("%w after %d rows", ErrSkipBudgetExceeded, skipped)
				}
				continue // out[i] stays nil
			}
			return nil, err
		}
		out[i] = rewritten
	}
	return out, nil
}

// rewriteFields rewrites one row's raw COPY fields. SQL NULLs pass through
// without touching the transformer, so null rows never consume generated or
// unique values.
func (r *Runner) rewriteFields(tw *rewrite.TableRewriter, fields []string) ([]string, error) {
	if len(fields) != tw.ColumnCount() {
		return nil, &rewrite.ArityError{
			Table:   tw.Table(),
			Columns: tw.ColumnCount(),
			Values:  len(fields),
		}
	}

	out := make([]string, len(fields))
	for i, field := range fields {
		if dump.IsNull(field) {
			out[i] = field
			continue
		}
		value, err := tw.RewriteValue(i, dump.UnescapeValue(field))
		if err != nil {
			return nil, err
		}
		out[i] = dump.EscapeValue(value)
	}
	return out, nil
}

// collectResults writes batch results in sequence order until results is
// closed, returning the first error encountered. After an error it keeps
// draining so workers never block on send, but writes nothing further.
func (r *Runner) collectResults(results <-chan batchResult, writer *dump.Writer) error {
	var firstErr error
	next := 0
	pending := make(map[int]batchResult)

	flush := func() error {
		for {
			result, ok := pending[next]
			if !ok {
				return nil
			}
			delete(pending, next)
			next++
			for _, fields := range result.rows {
				if fields == nil {
					continue
				}
				if err := writer.WriteRow(fields); err != nil {
					return err
				}
				r.metrics.RecordRowsWritten(1)
			}
		}
	}

	for result := range results {
		if firstErr != nil {
			continue
		}
		if result.err != nil {
			firstErr = result.err
			continue
		}
		pending[result.seq] = result
		if err := flush(); err != nil {
			firstErr = err
		}
	}
	return firstErr
}
