// Package config loads the statement-recon.yaml configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kasbuku/statement-recon/internal/recon"
)

// Config represents the top-level statement-recon.yaml configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Statement StatementConfig `yaml:"statement"`
	Matcher   recon.Config    `yaml:"matcher"`
	LogLevel  string          `yaml:"log_level"`
}

// ServerConfig controls the HTTP API listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// StoreConfig locates the ledger database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// StatementConfig sets parsing defaults.
type StatementConfig struct {
	Currency string `yaml:"currency"`
}

// Load reads a statement-recon.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new deployment.
func Default() *Config {
	return &Config{
		Server:    ServerConfig{Addr: ":8080"},
		Store:     StoreConfig{Path: "statement-recon.db"},
		Statement: StatementConfig{Currency: "IDR"},
		Matcher:   recon.DefaultConfig(),
		LogLevel:  "info",
	}
}
