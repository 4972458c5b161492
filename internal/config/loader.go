package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the daemon.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr     string `json:"addr" yaml:"addr" toml:"addr"`
	LogLevel string `json:"log_level" yaml:"log_level" toml:"log_level"`
	// UpdateIntervalMS is the minimum gap between accepted notifications for
	// one attribute key, in milliseconds (0 = library default of 50).
	UpdateIntervalMS int  `json:"update_interval_ms" yaml:"update_interval_ms" toml:"update_interval_ms"`
	Demo             Demo `json:"demo" yaml:"demo" toml:"demo"`
}

// Demo configures the built-in simulation sources.
type Demo struct {
	Enabled bool    `json:"enabled" yaml:"enabled" toml:"enabled"`
	TickMS  int     `json:"tick_ms" yaml:"tick_ms" toml:"tick_ms"`
	Width   float64 `json:"width" yaml:"width" toml:"width"`
	Height  float64 `json:"height" yaml:"height" toml:"height"`
	Gravity float64 `json:"gravity" yaml:"gravity" toml:"gravity"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	path, err := ExpandHome(path)
	if err != nil {
		return cfg, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}
