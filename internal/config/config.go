package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/oakmont-embedded/gh-fwbump/internal/policy"
)

// ConfigFileName is the default configuration file name
const ConfigFileName = ".gh-fwbump.yml"

// Config represents the .gh-fwbump.yml configuration file
type Config struct {
	Version   string          `yaml:"version,omitempty"`
	Header    string          `yaml:"header,omitempty"`
	Remote    string          `yaml:"remote,omitempty"`
	Committer Committer       `yaml:"committer,omitempty"`
	Policies  []policy.Policy `yaml:"policies,omitempty"`
}

// Committer is the git identity used for version-bump commits
type Committer struct {
	Name  string `yaml:"name,omitempty"`
	Email string `yaml:"email,omitempty"`
}

// Load reads and parses a configuration file from the given path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// LoadFromDirectory finds and loads the config file from the given directory.
// It searches up the directory tree until it finds a .gh-fwbump.yml file or
// reaches the filesystem root.
func LoadFromDirectory(dir string) (*Config, error) {
	configPath, err := FindConfigFile(dir)
	if err != nil {
		return nil, err
	}
	return Load(configPath)
}

// FindConfigFile searches for .gh-fwbump.yml starting from dir and walking up
// the directory tree until found or filesystem root is reached.
func FindConfigFile(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", fmt.Errorf("no %s found in %s or any parent directory", ConfigFileName, startDir)
		}
		dir = parent
	}
}

// Save writes the configuration to the given path
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Overlay returns a copy of c with non-empty fields from o applied on top.
// Policies replace wholesale when o defines any.
func (c *Config) Overlay(o *Config) *Config {
	merged := *c
	if o == nil {
		return &merged
	}
	if o.Version != "" {
		merged.Version = o.Version
	}
	if o.Header != "" {
		merged.Header = o.Header
	}
	if o.Remote != "" {
		merged.Remote = o.Remote
	}
	if o.Committer.Name != "" {
		merged.Committer.Name = o.Committer.Name
	}
	if o.Committer.Email != "" {
		merged.Committer.Email = o.Committer.Email
	}
	if len(o.Policies) > 0 {
		merged.Policies = o.Policies
	}
	return &merged
}

// Validate checks that required configuration fields are present
func (c *Config) Validate() error {
	if c.Header == "" {
		return fmt.Errorf("header is required")
	}
	if c.Committer.Name == "" || c.Committer.Email == "" {
		return fmt.Errorf("committer.name and committer.email are required")
	}
	return nil
}
