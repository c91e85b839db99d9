// pkg/dump/writer.go
package dump

import (
	"bufio"
	"fmt"
	"io"
)

// Writer emits dump lines, preserving the line framing the Reader consumed.
type Writer struct {
	w *bufio.Writer
}

// NewWriter wraps w in a buffered dump writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriterSize(w, 1<<20)}
}

// WriteLine writes one raw line.
func (w *Writer) WriteLine(line string) error {
	if _, err := w.w.WriteString(line); err != nil {
		return fmt.Errorf("failed to write dump line: %w", err)
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write dump line: %w", err)
	}
	return nil
}

// WriteRow writes one COPY data line from raw (escaped) fields.
func (w *Writer) WriteRow(fields []string) error {
	return w.WriteLine(JoinRow(fields))
}

// Flush flushes buffered output to the underlying writer.
func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("failed to flush dump output: %w", err)
	}
	return nil
}
