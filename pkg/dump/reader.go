// pkg/dump/reader.go
package dump

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pgshield/anonymiser/pkg/model"
)

// EventType identifies what a parsed dump line means to the engine.
type EventType int

const (
	// EventLine is any line outside a COPY block: DDL, comments, settings.
	// It passes through to the output byte for byte.
	EventLine EventType = iota
	// EventCopyStart is a `COPY table (columns...) FROM stdin;` header.
	EventCopyStart
	// EventCopyRow is one data line inside a COPY block, split into raw
	// fields.
	EventCopyRow
	// EventCopyEnd is the `\.` terminator of a COPY block.
	EventCopyEnd
)

// Event is one parsed unit of the dump stream.
type Event struct {
	Type    EventType
	Line    string   // raw line without trailing newline; valid for all types
	Table   string   // EventCopyStart, EventCopyRow, EventCopyEnd
	Columns []string // EventCopyStart
	Fields  []string // EventCopyRow; raw (escaped) COPY fields
}

type position int

const (
	positionNormal position = iota
	positionInCopy
	positionInCreateTable
)

// Reader is a streaming parser for plain-format pg_dump output. It tracks a
// small line state machine (normal, inside CREATE TABLE, inside COPY) and
// accumulates the column names and SQL types it sees in CREATE TABLE blocks,
// so the schema can be recovered from the dump itself.
type Reader struct {
	r        *bufio.Reader
	position position

	copyTable string

	createTable   string
	createColumns []model.ColumnSchema

	schemaOrder []string
	schema      map[string][]model.ColumnSchema
}

// NewReader wraps r in a dump parser.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		r:      bufio.NewReaderSize(r, 1<<20),
		schema: make(map[string][]model.ColumnSchema),
	}
}

// Next returns the next event, or io.EOF when the stream is exhausted.
func (r *Reader) Next() (Event, error) {
	line, err := r.r.ReadString('\n')
	if err == io.EOF && line == "" {
		return Event{}, io.EOF
	}
	if err != nil && err != io.EOF {
		return Event{}, fmt.Errorf("failed to read dump line: %w", err)
	}
	line = strings.TrimSuffix(line, "\n")

	switch r.position {
	case positionInCopy:
		if line == `\.` {
			table := r.copyTable
			r.position = positionNormal
			r.copyTable = ""
			return Event{Type: EventCopyEnd, Line: line, Table: table}, nil
		}
		return Event{
			Type:   EventCopyRow,
			Line:   line,
			Table:  r.copyTable,
			Fields: SplitRow(line),
		}, nil

	case positionInCreateTable:
		r.parseCreateTableLine(line)
		return Event{Type: EventLine, Line: line}, nil

	default:
		if table, columns, ok := parseCopyHeader(line); ok {
			r.position = positionInCopy
			r.copyTable = table
			return Event{
				Type:    EventCopyStart,
				Line:    line,
				Table:   table,
				Columns: columns,
			}, nil
		}
		if table, ok := parseCreateTableHeader(line); ok {
			r.position = positionInCreateTable
			r.createTable = table
			r.createColumns = nil
		}
		return Event{Type: EventLine, Line: line}, nil
	}
}

// Schema returns the table schemas collected from CREATE TABLE blocks so
// far, in order of appearance.
func (r *Reader) Schema() []model.TableSchema {
	tables := make([]model.TableSchema, 0, len(r.schemaOrder))
	for _, name := range r.schemaOrder {
		tables = append(tables, model.TableSchema{
			TableName: name,
			Columns:   r.schema[name],
		})
	}
	return tables
}

// parseCreateTableLine consumes one line inside a CREATE TABLE block,
// collecting column definitions until the closing `);`.
func (r *Reader) parseCreateTableLine(line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == ");" {
		if _, seen := r.schema[r.createTable]; !seen {
			r.schemaOrder = append(r.schemaOrder, r.createTable)
		}
		r.schema[r.createTable] = r.createColumns
		r.position = positionNormal
		r.createTable = ""
		r.createColumns = nil
		return
	}
	if col, ok := parseColumnDefinition(trimmed); ok {
		r.createColumns = append(r.createColumns, col)
	}
}

// parseCopyHeader recognises `COPY table (col, ...) FROM stdin;` lines.
func parseCopyHeader(line string) (table string, columns []string, ok bool) {
	if !strings.HasPrefix(line, "COPY ") || !strings.HasSuffix(line, " FROM stdin;") {
		return "", nil, false
	}
	body := strings.TrimSuffix(strings.TrimPrefix(line, "COPY "), " FROM stdin;")

	open := strings.Index(body, "(")
	end := strings.LastIndex(body, ")")
	if open < 0 || end < open {
		return "", nil, false
	}

	table = strings.TrimSpace(body[:open])
	for _, col := range strings.Split(body[open+1:end], ",") {
		columns = append(columns, unquoteIdentifier(strings.TrimSpace(col)))
	}
	return table, columns, true
}

// parseCreateTableHeader recognises `CREATE TABLE table (` lines.
func parseCreateTableHeader(line string) (string, bool) {
	if !strings.HasPrefix(line, "CREATE TABLE ") || !strings.HasSuffix(line, "(") {
		return "", false
	}
	table := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(line, "CREATE TABLE "), "("))
	table = strings.TrimSpace(strings.TrimPrefix(table, "IF NOT EXISTS"))
	if table == "" {
		return "", false
	}
	return table, true
}

// parseColumnDefinition extracts the column name and SQL type from one body
// line of a CREATE TABLE block. Constraint lines are ignored.
func parseColumnDefinition(line string) (model.ColumnSchema, bool) {
	line = strings.TrimSuffix(line, ",")
	if line == "" {
		return model.ColumnSchema{}, false
	}

	fields := strings.Fields(line)
	if len(fields) < 2 {
		return model.ColumnSchema{}, false
	}
	switch strings.ToUpper(fields[0]) {
	case "CONSTRAINT", "PRIMARY", "FOREIGN", "UNIQUE", "CHECK", "EXCLUDE", "LIKE":
		return model.ColumnSchema{}, false
	}

	return model.ColumnSchema{
		Name:     unquoteIdentifier(fields[0]),
		DataType: strings.Join(fields[1:], " "),
	}, true
}

func unquoteIdentifier(ident string) string {
	if len(ident) >= 2 && ident[0] == '"' && ident[len(ident)-1] == '"' {
		return strings.ReplaceAll(ident[1:len(ident)-1], `""`, `"`)
	}
	return ident
}
