package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

// DefaultConfigPath returns the full path to the config file
func DefaultConfigPath() (string, error) {
	path, err := xdg.ConfigFile(filepath.Join(ConfigDirName, ConfigFileName))
	if err != nil {
		return "", fmt.Errorf("failed to resolve config file path: %w", err)
	}
	return path, nil
}

// LoadConfig loads configuration from path, creating it with defaults when it
// does not exist. Unreadable, unparseable or invalid files give the defaults;
// the shell must always be able to start.
func LoadConfig(path string, log zerolog.Logger) *AppConfig {
	log = componentLogger(log, "config")

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Info().Str("path", path).Msg("config file not found, creating with default values")
		cfg := DefaultConfig()
		if err := SaveConfig(path, cfg); err != nil {
			log.Warn().Err(err).Msg("failed to write default config")
		}
		return cfg
	}
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("failed to read config file, using defaults")
		return DefaultConfig()
	}

	// Fields missing from the file keep their defaults.
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("failed to parse config file, using defaults")
		return DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("invalid config, using defaults")
		return DefaultConfig()
	}

	log.Info().Str("path", path).Msg("config loaded")
	return cfg
}

// SaveConfig writes cfg to path.
func SaveConfig(path string, cfg *AppConfig) error {
	if cfg == nil {
		return fmt.Errorf("config is nil, cannot save")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", filepath.Dir(path), err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, ConfigFileMode); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}
