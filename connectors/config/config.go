package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"agency-stats/domain/capacity"
)

// LoadCapacity parses the client capacity policy (absence types and rules)
// from the YAML file at path.
func LoadCapacity(path string) (*capacity.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c capacity.Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse capacity config %s: %w", path, err)
	}
	slog.Info(fmt.Sprintf("Loaded capacity config: %s", path))
	return &c, nil
}
