package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"wasmindexer/internal/types"
)

// LoadMatcherConfig reads and parses the YAML matcher catalogue at path.
// The result is immutable for the lifetime of the MatcherConfig.
func LoadMatcherConfig(path string) (*types.MatcherConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading matcher config %s: %w", path, err)
	}

	var cfg types.MatcherConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing matcher config %s: %w", path, err)
	}

	for i, evt := range cfg.Events {
		if evt.Name == "" {
			return nil, fmt.Errorf("config: matcher event at index %d has no name", i)
		}
		if len(evt.Patterns) == 0 {
			return nil, fmt.Errorf("config: matcher event %q has no patterns", evt.Name)
		}
	}

	return &cfg, nil
}
