// pkg/model/column.go
package model

import "fmt"

// DataType classifies the sensitivity of a column's contents.
type DataType string

const (
	CommerciallySensitive DataType = "CommerciallySensitive"
	General               DataType = "General"
	PotentialPii          DataType = "PotentialPii"
	Pii                   DataType = "Pii"
	Security              DataType = "Security"
	// Unknown marks a column that has not been classified yet. A strategy
	// containing Unknown columns fails validation before any row is touched.
	Unknown DataType = "Unknown"
)

// DataTypes lists every valid classification, Unknown included.
var DataTypes = []DataType{
	CommerciallySensitive,
	General,
	PotentialPii,
	Pii,
	Security,
	Unknown,
}

// IsValid reports whether d is one of the declared classifications.
func (d DataType) IsValid() bool {
	for _, dt := range DataTypes {
		if d == dt {
			return true
		}
	}
	return false
}

// TransformerKind names a value-transformation rule.
type TransformerKind string

const (
	EmptyJson TransformerKind = "EmptyJson"
	// Error marks a column whose transformer has not been chosen yet. Like
	// Unknown it is rejected at validation time, never at row time.
	Error                      TransformerKind = "Error"
	FakeBase16String           TransformerKind = "FakeBase16String"
	FakeBase32String           TransformerKind = "FakeBase32String"
	FakeCity                   TransformerKind = "FakeCity"
	FakeCompanyName            TransformerKind = "FakeCompanyName"
	FakeEmail                  TransformerKind = "FakeEmail"
	FakeFirstName              TransformerKind = "FakeFirstName"
	FakeFullAddress            TransformerKind = "FakeFullAddress"
	FakeFullName               TransformerKind = "FakeFullName"
	FakeIPv4                   TransformerKind = "FakeIPv4"
	FakeLastName               TransformerKind = "FakeLastName"
	FakeNationalIdentityNumber TransformerKind = "FakeNationalIdentityNumber"
	FakePhoneNumber            TransformerKind = "FakePhoneNumber"
	FakePostCode               TransformerKind = "FakePostCode"
	FakeState                  TransformerKind = "FakeState"
	FakeStreetAddress          TransformerKind = "FakeStreetAddress"
	FakeUsername               TransformerKind = "FakeUsername"
	FakeUUID                   TransformerKind = "FakeUUID"
	Fixed                      TransformerKind = "Fixed"
	Identity                   TransformerKind = "Identity"
	ObfuscateDay               TransformerKind = "ObfuscateDay"
	Scramble                   TransformerKind = "Scramble"
	ScrambleBlank              TransformerKind = "ScrambleBlank"
)

// TransformerSpec is a transformer selection plus its arguments as they
// appear in a strategy file. Argument names are transformer-specific, e.g.
// "value" for Fixed and "unique" for the identity-like fakes.
type TransformerSpec struct {
	Name TransformerKind   `yaml:"name" json:"name"`
	Args map[string]string `yaml:"args,omitempty" json:"args,omitempty"`
}

// Arg returns the named argument and whether it was provided.
func (s TransformerSpec) Arg(name string) (string, bool) {
	v, ok := s.Args[name]
	return v, ok
}

// Unique reports whether the spec requests globally unique output values.
func (s TransformerSpec) Unique() bool {
	return s.Args["unique"] == "true"
}

// ColumnConfig declares how a single column is classified and transformed.
type ColumnConfig struct {
	Name        string          `yaml:"name" json:"name"`
	Description string          `yaml:"description" json:"description"`
	DataType    DataType        `yaml:"data_type" json:"data_type"`
	Transformer TransformerSpec `yaml:"transformer" json:"transformer"`
}

// TableConfig groups the column configs for one table. A truncated table
// contributes no rows to the output and needs no column configs.
type TableConfig struct {
	TableName   string         `yaml:"table_name" json:"table_name"`
	Description string         `yaml:"description" json:"description"`
	Truncate    bool           `yaml:"truncate,omitempty" json:"truncate,omitempty"`
	Columns     []ColumnConfig `yaml:"columns" json:"columns"`
}

// SimpleColumn identifies a column by table for error reporting and
// schema diffing.
type SimpleColumn struct {
	TableName  string
	ColumnName string
}

func (c SimpleColumn) String() string {
	return fmt.Sprintf("%s.%s", c.TableName, c.ColumnName)
}

// Row is one table row as text-encoded values, positionally aligned to the
// table's column order. Rows are transient; the engine never retains them.
type Row []string
