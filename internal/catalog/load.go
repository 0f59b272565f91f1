package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads and validates an options catalog from a YAML file.
// Environment variables in the file are expanded before parsing.
// A catalog that fails validation is a configuration error; the caller
// must not start the pipeline with it.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path) //nolint:gosec // catalog path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cat := &Catalog{}
	if err := yaml.Unmarshal([]byte(expanded), cat); err != nil {
		return nil, fmt.Errorf("parsing catalog YAML: %w", err)
	}

	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("validating catalog: %w", err)
	}

	return cat, nil
}
