// pkg/strategy/validate_test.go
package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgshield/anonymiser/pkg/model"
	"github.com/pgshield/anonymiser/pkg/transformer"
)

type staticGenerator struct{}

func (staticGenerator) GenerateFake(category transformer.Category) string {
	return string(category)
}

func TestValidateTransformersPassesOnWellFormedSpecs(t *testing.T) {
	strategies, err := New([]model.TableConfig{
		table("public.person",
			column("first_name", model.Pii, model.FakeFirstName),
			model.ColumnConfig{
				Name:     "status",
				DataType: model.General,
				Transformer: model.TransformerSpec{
					Name: model.Fixed,
					Args: map[string]string{"value": "active"},
				},
			},
		),
	}, None())
	require.NoError(t, err)

	assert.NoError(t, strategies.ValidateTransformers(transformer.NewRegistry(staticGenerator{})))
}

func TestValidateTransformersCollectsEveryResolutionFailure(t *testing.T) {
	strategies, err := New([]model.TableConfig{
		table("public.person",
			column("status", model.General, model.Fixed),
			column("shape", model.General, "FakeDodecahedron"),
			column("id", model.General, model.Identity),
		),
	}, None())
	require.NoError(t, err)

	err = strategies.ValidateTransformers(transformer.NewRegistry(staticGenerator{}))
	errs := configErrors(t, err)
	require.Len(t, errs.InvalidTransformers, 2)

	// Sorted by column identifier.
	assert.Equal(t, "shape", errs.InvalidTransformers[0].Column.ColumnName)
	assert.Equal(t, "status", errs.InvalidTransformers[1].Column.ColumnName)

	var missing *transformer.MissingArgumentError
	assert.ErrorAs(t, errs.InvalidTransformers[1].Err, &missing)
	var unknown *transformer.UnknownTransformerError
	assert.ErrorAs(t, errs.InvalidTransformers[0].Err, &unknown)
}

func TestValidateAgainstSchemaPassesWhenAligned(t *testing.T) {
	strategies, err := New([]model.TableConfig{
		table("public.person",
			column("id", model.General, model.Identity),
			column("first_name", model.Pii, model.FakeFirstName),
		),
	}, None())
	require.NoError(t, err)

	assert.NoError(t, strategies.ValidateAgainstSchema([]model.SimpleColumn{
		{TableName: "public.person", ColumnName: "id"},
		{TableName: "public.person", ColumnName: "first_name"},
	}))
}

func TestValidateAgainstSchemaDiffsBothDirections(t *testing.T) {
	strategies, err := New([]model.TableConfig{
		table("public.person",
			column("id", model.General, model.Identity),
			column("retired_field", model.General, model.Identity),
		),
	}, None())
	require.NoError(t, err)

	err = strategies.ValidateAgainstSchema([]model.SimpleColumn{
		{TableName: "public.person", ColumnName: "id"},
		{TableName: "public.person", ColumnName: "new_field"},
		{TableName: "public.account", ColumnName: "balance"},
	})
	errs := configErrors(t, err)

	assert.Equal(t, []model.SimpleColumn{
		{TableName: "public.account", ColumnName: "balance"},
		{TableName: "public.person", ColumnName: "new_field"},
	}, errs.MissingFromStrategy)
	assert.Equal(t, []model.SimpleColumn{
		{TableName: "public.person", ColumnName: "retired_field"},
	}, errs.MissingFromSchema)
}

func TestValidateAgainstSchemaIgnoresTruncatedTables(t *testing.T) {
	strategies, err := New([]model.TableConfig{
		{TableName: "public.sessions", Truncate: true},
		table("public.person", column("id", model.General, model.Identity)),
	}, None())
	require.NoError(t, err)

	// Truncated tables carry no column strategies, so their schema columns
	// still show up as unconfigured.
	err = strategies.ValidateAgainstSchema([]model.SimpleColumn{
		{TableName: "public.person", ColumnName: "id"},
		{TableName: "public.sessions", ColumnName: "token"},
	})
	errs := configErrors(t, err)
	assert.Equal(t, []model.SimpleColumn{
		{TableName: "public.sessions", ColumnName: "token"},
	}, errs.MissingFromStrategy)
}

func TestValidateAllAggregatesBothChecks(t *testing.T) {
	strategies, err := New([]model.TableConfig{
		table("public.person",
			column("status", model.General, model.Fixed),
		),
	}, None())
	require.NoError(t, err)

	err = strategies.ValidateAll(transformer.NewRegistry(staticGenerator{}), []model.SimpleColumn{
		{TableName: "public.person", ColumnName: "status"},
		{TableName: "public.person", ColumnName: "id"},
	})
	errs := configErrors(t, err)

	assert.Len(t, errs.InvalidTransformers, 1)
	assert.Len(t, errs.MissingFromStrategy, 1)
	assert.Equal(t, 2, errs.Count())
}
