// Package config loads the CLI's optional YAML configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the settings the CLI reads at startup. Flags override it.
type Config struct {
	// DBPath is the SQLite database file holding the library state.
	DBPath string `yaml:"db_path"`
	// DefaultMembership is the tier used by register-member when no
	// --tier flag is given. Must parse as a membership type name.
	DefaultMembership string `yaml:"default_membership"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		DBPath:            "library.db",
		DefaultMembership: "Regular",
	}
}

// Load reads the YAML file at path over the defaults. A missing file is not
// an error; the defaults are returned unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = Default().DBPath
	}
	if cfg.DefaultMembership == "" {
		cfg.DefaultMembership = Default().DefaultMembership
	}
	return cfg, nil
}
