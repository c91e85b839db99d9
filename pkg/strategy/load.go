// pkg/strategy/load.go
package strategy

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pgshield/anonymiser/pkg/model"
)

// Load reads and decodes a strategy file. The file is YAML; JSON strategy
// files decode as well since JSON is a YAML subset.
func Load(path string) ([]model.TableConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open strategy file: %w", err)
	}
	defer f.Close()

	configs, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode strategy file %s: %w", path, err)
	}
	return configs, nil
}

// Decode decodes a strategy document from r.
func Decode(r io.Reader) ([]model.TableConfig, error) {
	var configs []model.TableConfig
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&configs); err != nil {
		return nil, err
	}

	for _, table := range configs {
		for _, column := range table.Columns {
			if !column.DataType.IsValid() {
				return nil, fmt.Errorf("column %s.%s: invalid data_type %q",
					table.TableName, column.Name, column.DataType)
			}
		}
	}
	return configs, nil
}

// Save writes a strategy document to path, used by strategy generation.
func Save(path string, configs []model.TableConfig) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create strategy file: %w", err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(configs); err != nil {
		return fmt.Errorf("failed to encode strategy file: %w", err)
	}
	return enc.Close()
}
