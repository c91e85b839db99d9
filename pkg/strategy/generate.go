// pkg/strategy/generate.go
package strategy

import (
	"sort"

	"github.com/pgshield/anonymiser/pkg/model"
)

// GenerateSkeleton builds a strategy document covering every column of the
// given schema, with each column left at the fail-loud defaults (Unknown
// classification, Error transformer). The generated file will not validate
// until an operator classifies each column explicitly.
func GenerateSkeleton(tables []model.TableSchema) []model.TableConfig {
	configs := make([]model.TableConfig, 0, len(tables))
	for _, table := range tables {
		cfg := model.TableConfig{
			TableName: table.TableName,
			Columns:   make([]model.ColumnConfig, 0, len(table.Columns)),
		}
		for _, column := range table.Columns {
			cfg.Columns = append(cfg.Columns, model.ColumnConfig{
				Name:        column.Name,
				Description: column.DataType,
				DataType:    model.Unknown,
				Transformer: model.TransformerSpec{Name: model.Error},
			})
		}
		configs = append(configs, cfg)
	}

	sort.Slice(configs, func(i, j int) bool {
		return configs[i].TableName < configs[j].TableName
	})
	return configs
}

// MergeSkeleton folds newly discovered columns into an existing strategy,
// keeping every already-configured column untouched. Columns present in the
// strategy but absent from the schema are left in place; the schema diff
// reports those separately.
func MergeSkeleton(existing []model.TableConfig, tables []model.TableSchema) []model.TableConfig {
	byTable := make(map[string]int, len(existing))
	merged := make([]model.TableConfig, len(existing))
	copy(merged, existing)
	for i, table := range merged {
		byTable[table.TableName] = i
	}

	for _, skeleton := range GenerateSkeleton(tables) {
		idx, ok := byTable[skeleton.TableName]
		if !ok {
			merged = append(merged, skeleton)
			continue
		}

		known := make(map[string]struct{}, len(merged[idx].Columns))
		for _, column := range merged[idx].Columns {
			known[column.Name] = struct{}{}
		}
		for _, column := range skeleton.Columns {
			if _, ok := known[column.Name]; !ok {
				merged[idx].Columns = append(merged[idx].Columns, column)
			}
		}
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].TableName < merged[j].TableName
	})
	return merged
}
