// pkg/anonymise/runner.go
package anonymise

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pgshield/anonymiser/pkg/config"
	"github.com/pgshield/anonymiser/pkg/dump"
	"github.com/pgshield/anonymiser/pkg/model"
	"github.com/pgshield/anonymiser/pkg/rewrite"
	"github.com/pgshield/anonymiser/pkg/strategy"
	"github.com/pgshield/anonymiser/pkg/transformer"
)

// Runner orchestrates one anonymisation run: it streams the dump through the
// parser, fans table rows out to a worker pool, and reassembles the output
// in the original order. Tables are processed sequentially; rows within a
// table in parallel.
type Runner struct {
	cfg        *config.Config
	strategies *strategy.Strategies
	rewriter   *rewrite.Rewriter
	metrics    *RunMetrics
	logger     *zap.Logger
}

// NewRunner wires a runner from validated strategies and a transformer
// registry. The registry's uniqueness tracker is scoped to this runner's
// lifetime; build a fresh registry per run.
func NewRunner(
	cfg *config.Config,
	strategies *strategy.Strategies,
	registry *transformer.Registry,
	logger *zap.Logger,
) *Runner {
	return &Runner{
		cfg:        cfg,
		strategies: strategies,
		rewriter:   rewrite.New(strategies, registry, logger),
		metrics:    NewRunMetrics(logger),
		logger:     logger.Named("anonymise"),
	}
}

// Run anonymises the dump read from in and writes the result to out. Any
// error means the output is incomplete and must be discarded.
func (r *Runner) Run(ctx context.Context, in io.Reader, out io.Writer) (RunSummary, error) {
	r.logger.Info("Starting anonymisation",
		zap.Int("workers", r.cfg.WorkerCount),
		zap.Int("batchSize", r.cfg.BatchSize),
		zap.String("failurePolicy", string(r.cfg.FailurePolicy)))

	reader := dump.NewReader(in)
	writer := dump.NewWriter(out)

	if err := r.run(ctx, reader, writer); err != nil {
		return RunSummary{}, err
	}
	if err := writer.Flush(); err != nil {
		return RunSummary{}, err
	}

	summary := r.metrics.Summary()
	summary.Log(r.logger)
	return summary, nil
}

func (r *Runner) run(ctx context.Context, reader *dump.Reader, writer *dump.Writer) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		event, err := reader.Next()
		if err == io.EOF {
			r.checkDumpSchema(reader)
			return nil
		}
		if err != nil {
			return err
		}

		switch event.Type {
		case dump.EventCopyStart:
			if err := r.processCopyBlock(ctx, reader, writer, event); err != nil {
				return err
			}
		default:
			if err := writer.WriteLine(event.Line); err != nil {
				return err
			}
		}
	}
}

// checkDumpSchema diffs the strategy against the schema recovered from the
// dump's CREATE TABLE blocks, when the dump carries any. Missing coverage is
// already a hard error at COPY time; this catches the other direction,
// strategy entries for columns the dump no longer has.
func (r *Runner) checkDumpSchema(reader *dump.Reader) {
	tables := reader.Schema()
	if len(tables) == 0 {
		return
	}

	err := r.strategies.ValidateAgainstSchema(model.SimpleColumns(tables))
	var errs *strategy.ConfigErrors
	if errors.As(err, &errs) && len(errs.MissingFromSchema) > 0 {
		for _, col := range errs.MissingFromSchema {
			r.logger.Warn("Strategy column not present in dump schema",
				zap.String("table", col.TableName),
				zap.String("column", col.ColumnName))
		}
	}
}

// processCopyBlock handles one table's COPY block, from header to `\.`
// terminator.
func (r *Runner) processCopyBlock(ctx context.Context, reader *dump.Reader, writer *dump.Writer, start dump.Event) error {
	tableStart := time.Now()

	ts, ok := r.strategies.ForTable(start.Table)
	if !ok {
		return &strategy.UnknownTableError{Table: start.Table}
	}

	if err := writer.WriteLine(start.Line); err != nil {
		return err
	}

	if ts.Truncate {
		if err := r.truncateTable(reader, writer, start.Table); err != nil {
			return err
		}
		r.metrics.RecordTable(start.Table, true, time.Since(tableStart))
		return nil
	}

	tw, err := r.rewriter.ForTable(start.Table, start.Columns)
	if err != nil {
		return err
	}
	if err := r.processTable(ctx, reader, writer, tw); err != nil {
		return fmt.Errorf("table %s: %w", start.Table, err)
	}

	r.metrics.RecordTable(start.Table, false, time.Since(tableStart))
	r.logger.Info("Table anonymised",
		zap.String("table", start.Table),
		zap.Duration("duration", time.Since(tableStart)))
	return nil
}

// truncateTable drops every data row of the block, keeping the terminator so
// the output stays loadable with zero rows.
func (r *Runner) truncateTable(reader *dump.Reader, writer *dump.Writer, table string) error {
	dropped := 0
	for {
		event, err := reader.Next()
		if err != nil {
			return fmt.Errorf("table %s: unterminated COPY block: %w", table, err)
		}
		switch event.Type {
		case dump.EventCopyRow:
			dropped++
		case dump.EventCopyEnd:
			r.metrics.RecordRowsRead(dropped)
			r.logger.Info("Table truncated",
				zap.String("table", table),
				zap.Int("rowsDropped", dropped))
			return writer.WriteLine(event.Line)
		}
	}
}

// processTable streams one table's rows through the worker pool. Batches are
// tagged with sequence numbers and the collector restores their order, so
// output row order matches input row order regardless of worker scheduling.
func (r *Runner) processTable(ctx context.Context, reader *dump.Reader, writer *dump.Writer, tw *rewrite.TableRewriter) error {
	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan rowBatch, r.cfg.WorkerCount)
	results := make(chan batchResult, r.cfg.WorkerCount)

	var wg sync.WaitGroup
	for i := 0; i < r.cfg.WorkerCount; i++ {
		wg.Add(1)
		go r.worker(workerCtx, i, tw, jobs, results, &wg)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	collectDone := make(chan error, 1)
	go func() {
		collectDone <- r.collectResults(results, writer)
	}()

	submit := func(batch rowBatch) error {
		select {
		case jobs <- batch:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	seq := 0
	rows := make([][]string, 0, r.cfg.BatchSize)
	for {
		event, err := reader.Next()
		if err != nil {
			close(jobs)
			<-collectDone
			return fmt.Errorf("unterminated COPY block: %w", err)
		}

		switch event.Type {
		case dump.EventCopyRow:
			rows = append(rows, event.Fields)
			r.metrics.RecordRowsRead(1)
			if len(rows) == r.cfg.BatchSize {
				// Cancellation is checked here, between batches, never
				// mid-row.
				if err := submit(rowBatch{seq: seq, rows: rows}); err != nil {
					close(jobs)
					<-collectDone
					return err
				}
				seq++
				rows = make([][]string, 0, r.cfg.BatchSize)
			}

		case dump.EventCopyEnd:
			if len(rows) > 0 {
				if err := submit(rowBatch{seq: seq, rows: rows}); err != nil {
					close(jobs)
					<-collectDone
					return err
				}
			}
			close(jobs)
			if err := <-collectDone; err != nil {
				return err
			}
			return writer.WriteLine(event.Line)
		}
	}
}
