// Package config loads run defaults from an optional YAML file. CLI flags
// always win over file values.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	defaultJournalDir = "journal"
)

// Config holds the file-configurable defaults of a run.
type Config struct {
	Workers    int    `yaml:"workers"`
	JournalDir string `yaml:"journal_dir"`
	Strict     bool   `yaml:"strict"`
	Verbose    bool   `yaml:"verbose"`
}

// Default returns the built-in defaults. Workers 0 means "decide at pool
// construction" (hardware parallelism).
func Default() Config {
	return Config{
		Workers:    0,
		JournalDir: defaultJournalDir,
	}
}

// Load reads YAML config from path. A missing or empty file yields the
// defaults with no error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if len(data) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	if cfg.Workers < 0 {
		return cfg, fmt.Errorf("invalid workers: %d (must be >= 0)", cfg.Workers)
	}
	if cfg.JournalDir == "" {
		cfg.JournalDir = defaultJournalDir
	}
	return cfg, nil
}
