// pkg/strategy/generate_test.go
package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgshield/anonymiser/pkg/model"
)

func sampleSchema() []model.TableSchema {
	return []model.TableSchema{
		{
			TableName: "public.person",
			Columns: []model.ColumnSchema{
				{Name: "id", DataType: "integer"},
				{Name: "first_name", DataType: "character varying"},
			},
		},
		{
			TableName: "public.account",
			Columns: []model.ColumnSchema{
				{Name: "balance", DataType: "numeric"},
			},
		},
	}
}

func TestGenerateSkeletonUsesFailLoudDefaults(t *testing.T) {
	configs := GenerateSkeleton(sampleSchema())
	require.Len(t, configs, 2)

	// Sorted by table name.
	assert.Equal(t, "public.account", configs[0].TableName)
	assert.Equal(t, "public.person", configs[1].TableName)

	firstName := configs[1].Columns[1]
	assert.Equal(t, "first_name", firstName.Name)
	assert.Equal(t, "character varying", firstName.Description)
	assert.Equal(t, model.Unknown, firstName.DataType)
	assert.Equal(t, model.Error, firstName.Transformer.Name)
}

func TestGeneratedSkeletonFailsValidationUntilClassified(t *testing.T) {
	_, err := New(GenerateSkeleton(sampleSchema()), None())
	errs := configErrors(t, err)
	assert.Len(t, errs.UnknownDataTypes, 3)
	assert.Len(t, errs.ErrorTransformers, 3)
}

func TestMergeSkeletonKeepsConfiguredColumns(t *testing.T) {
	existing := []model.TableConfig{
		table("public.person",
			column("id", model.General, model.Identity),
			column("first_name", model.Pii, model.FakeFirstName),
			column("retired_field", model.General, model.Identity),
		),
	}

	merged := MergeSkeleton(existing, []model.TableSchema{
		{
			TableName: "public.person",
			Columns: []model.ColumnSchema{
				{Name: "id", DataType: "integer"},
				{Name: "first_name", DataType: "character varying"},
				{Name: "email", DataType: "character varying"},
			},
		},
		{
			TableName: "public.account",
			Columns:   []model.ColumnSchema{{Name: "balance", DataType: "numeric"}},
		},
	})
	require.Len(t, merged, 2)

	assert.Equal(t, "public.account", merged[0].TableName)
	assert.Equal(t, model.Unknown, merged[0].Columns[0].DataType)

	person := merged[1]
	require.Len(t, person.Columns, 4)
	// Configured columns are untouched, including ones the schema dropped.
	assert.Equal(t, model.FakeFirstName, person.Columns[1].Transformer.Name)
	assert.Equal(t, "retired_field", person.Columns[2].Name)
	// Newly discovered columns arrive with skeleton defaults.
	assert.Equal(t, "email", person.Columns[3].Name)
	assert.Equal(t, model.Error, person.Columns[3].Transformer.Name)
}
