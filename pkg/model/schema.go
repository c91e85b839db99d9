// pkg/model/schema.go
package model

import "strings"

// TableSchema describes the structure of one table as observed in the
// source database or dump.
type TableSchema struct {
	TableName string         // Schema-qualified table name, e.g. "public.person"
	Columns   []ColumnSchema // Column definitions in table order
}

// ColumnSchema is metadata about one database column.
type ColumnSchema struct {
	Name     string // Column name
	DataType string // SQL type as reported by the source, e.g. "character varying"
}

// ColumnNames returns the column names in table order.
func (t *TableSchema) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// GetColumnByName returns a column by name (case-insensitive).
// Returns nil if the column is not found.
func (t *TableSchema) GetColumnByName(name string) *ColumnSchema {
	normalized := normalizeColumnName(name)
	for i, col := range t.Columns {
		if normalizeColumnName(col.Name) == normalized {
			return &t.Columns[i]
		}
	}
	return nil
}

// SimpleColumns flattens a set of table schemas into (table, column) pairs.
func SimpleColumns(tables []TableSchema) []SimpleColumn {
	var columns []SimpleColumn
	for _, table := range tables {
		for _, col := range table.Columns {
			columns = append(columns, SimpleColumn{
				TableName:  table.TableName,
				ColumnName: col.Name,
			})
		}
	}
	return columns
}

func normalizeColumnName(name string) string {
	return strings.ToLower(name)
}
