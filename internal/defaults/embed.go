// Package defaults provides the embedded default configuration for gh-fwbump.
package defaults

import (
	_ "embed"

	"gopkg.in/yaml.v3"

	"github.com/oakmont-embedded/gh-fwbump/internal/config"
)

//go:embed defaults.yml
var defaultsYAML []byte

// Load parses and returns the embedded default configuration.
func Load() (*config.Config, error) {
	var cfg config.Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad parses and returns the embedded defaults, panicking on error.
func MustLoad() *config.Config {
	cfg, err := Load()
	if err != nil {
		panic("failed to load embedded defaults: " + err.Error())
	}
	return cfg
}
