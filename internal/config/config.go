package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const configFileName = "config.yaml"

// Config holds user preferences loaded from ~/.config/invigil/config.yaml.
type Config struct {
	// Redis connection for best-effort restart recovery of timer state
	RedisEnabled bool   `yaml:"redis_enabled"`
	RedisAddr    string `yaml:"redis_addr"`

	// Defaults applied by `invigil new` when flags are omitted
	DefaultExamMinutes    int `yaml:"default_exam_minutes"`
	DefaultReadingMinutes int `yaml:"default_reading_minutes"`
	DefaultDeskCount      int `yaml:"default_desk_count"`
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	return Config{
		RedisEnabled:          false,
		RedisAddr:             "localhost:6379",
		DefaultExamMinutes:    90,
		DefaultReadingMinutes: 10,
		DefaultDeskCount:      20,
	}
}

// Load reads user preferences from YAML. A missing config file is not an
// error; defaults are returned.
func Load() (Config, error) {
	cfg := Default()

	path, err := resolveConfigPath()
	if err != nil {
		return cfg, err
	}

	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(rawData, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config yaml: %w", err)
	}

	return cfg, nil
}

// Save writes user preferences to YAML.
func Save(cfg Config) error {
	path, err := resolveConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	serialized, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config yaml: %w", err)
	}

	if err := os.WriteFile(path, serialized, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

func resolveConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, "invigil", configFileName), nil
}
