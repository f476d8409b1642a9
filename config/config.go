package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	DEBUG             = os.Getenv("DEBUG") != ""
	DEBUG_DUMP_JSON   = os.Getenv("DEBUG_DUMP_JSON") != ""
	DEBUG_DUMP_BINARY = os.Getenv("DEBUG_DUMP_BINARY") != ""
)

// BatchConfig mirrors the optional YAML file the CLI accepts in place of
// repeating flags. Flags given explicitly win over the file.
type BatchConfig struct {
	Parallelism int      `yaml:"parallelism"`
	Schema      string   `yaml:"schema"`
	Out         string   `yaml:"out"`
	Overwrite   bool     `yaml:"overwrite"`
	Inputs      []string `yaml:"inputs"`
}

func LoadBatchConfig(path string) (*BatchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg BatchConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}
