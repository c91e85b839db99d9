// pkg/anonymise/metrics.go
package anonymise

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pgshield/anonymiser/pkg/model"
)

// RunMetrics tracks progress of one anonymisation run.
type RunMetrics struct {
	mu     sync.Mutex
	logger *zap.Logger

	startTime       time.Time
	rowsRead        int64
	rowsWritten     int64
	rowsSkipped     int64
	tablesProcessed int
	tablesTruncated int
	tableDurations  map[string]time.Duration
}

// NewRunMetrics creates a metrics collector for one run.
func NewRunMetrics(logger *zap.Logger) *RunMetrics {
	return &RunMetrics{
		logger:         logger.Named("metrics"),
		startTime:      time.Now(),
		tableDurations: make(map[string]time.Duration),
	}
}

// RecordRowsRead counts rows consumed from the input stream.
func (m *RunMetrics) RecordRowsRead(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rowsRead += int64(n)
}

// RecordRowsWritten counts rewritten rows emitted to the output stream.
func (m *RunMetrics) RecordRowsWritten(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rowsWritten += int64(n)
}

// RecordSkippedRow counts one row dropped under the skip-row failure policy
// and returns the new total so the caller can enforce the skip budget.
func (m *RunMetrics) RecordSkippedRow(column model.SimpleColumn, err error) int64 {
	m.mu.Lock()
	m.rowsSkipped++
	skipped := m.rowsSkipped
	m.mu.Unlock()

	m.logger.Warn("Skipped row",
		zap.String("table", column.TableName),
		zap.String("column", column.ColumnName),
		zap.Error(err))
	return skipped
}

// RecordTable records completion of one table pass.
func (m *RunMetrics) RecordTable(table string, truncated bool, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tablesProcessed++
	if truncated {
		m.tablesTruncated++
	}
	m.tableDurations[table] = duration
}

// Summary snapshots the run totals.
func (m *RunMetrics) Summary() RunSummary {
	m.mu.Lock()
	defer m.mu.Unlock()

	duration := time.Since(m.startTime)
	summary := RunSummary{
		TablesProcessed: m.tablesProcessed,
		TablesTruncated: m.tablesTruncated,
		RowsRead:        m.rowsRead,
		RowsWritten:     m.rowsWritten,
		RowsSkipped:     m.rowsSkipped,
		Duration:        duration,
	}
	if duration.Seconds() > 0 {
		summary.Throughput = float64(m.rowsWritten) / duration.Seconds()
	}
	return summary
}

// RunSummary is the final report of one run.
type RunSummary struct {
	TablesProcessed int
	TablesTruncated int
	RowsRead        int64
	RowsWritten     int64
	RowsSkipped     int64
	Duration        time.Duration
	Throughput      float64 // rows/second
}

// Log writes the summary through the given logger.
func (s RunSummary) Log(logger *zap.Logger) {
	logger.Info("Anonymisation completed",
		zap.Int("tablesProcessed", s.TablesProcessed),
		zap.Int("tablesTruncated", s.TablesTruncated),
		zap.Int64("rowsRead", s.RowsRead),
		zap.Int64("rowsWritten", s.RowsWritten),
		zap.Int64("rowsSkipped", s.RowsSkipped),
		zap.Duration("duration", s.Duration),
		zap.Float64("rowsPerSecond", s.Throughput))
}
