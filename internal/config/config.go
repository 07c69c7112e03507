// Package config loads the vault's on-disk configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cascadehq/memvault/internal/vault"
)

// EnvHome overrides the vault home directory.
const EnvHome = "MEMVAULT_HOME"

// Config holds vault paths and tunables. All fields have working defaults;
// a config file is optional.
type Config struct {
	Home    string        `yaml:"home,omitempty"`
	KeyID   string        `yaml:"key_id,omitempty"`
	Pricing vault.Pricing `yaml:"pricing,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{KeyID: "default", Pricing: vault.DefaultPricing()}
}

// Load resolves configuration with precedence: explicit home argument, then
// $MEMVAULT_HOME, then ~/.memvault. A config.yaml inside the home, if
// present, fills in the rest.
func Load(home string) (Config, error) {
	cfg := Default()

	if home == "" {
		home = os.Getenv(EnvHome)
	}
	if home == "" {
		dir, err := os.UserHomeDir()
		if err != nil {
			return cfg, fmt.Errorf("resolve home dir: %w", err)
		}
		home = filepath.Join(dir, ".memvault")
	}
	cfg.Home = home

	data, err := os.ReadFile(filepath.Join(home, "config.yaml"))
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Home == "" {
		cfg.Home = home
	}
	if cfg.KeyID == "" {
		cfg.KeyID = "default"
	}
	return cfg, nil
}

// IndexPath is the SQLite database location inside the vault home.
func (c Config) IndexPath() string {
	return filepath.Join(c.Home, "index.db")
}

// BlobDir is the content-addressed blob root.
func (c Config) BlobDir() string {
	return filepath.Join(c.Home, "blobs")
}

// KeyDir holds the file keyring.
func (c Config) KeyDir() string {
	return filepath.Join(c.Home, "keys")
}
