// Package config loads the pagecraft config file. All fields are optional;
// missing values fall back to defaults so a fresh install runs with no file
// at all.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the decoded ~/.pagecraft/config.toml.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Autosave AutosaveConfig `toml:"autosave"`
	Theme    ThemeConfig    `toml:"theme"`
}

// ServerConfig holds the autosave server settings.
type ServerConfig struct {
	Addr    string `toml:"addr"`
	Project string `toml:"project"` // project id state is saved under
}

// AutosaveConfig holds the client-side autosave settings.
type AutosaveConfig struct {
	Enabled    bool   `toml:"enabled"`
	Endpoint   string `toml:"endpoint"`
	DebounceMs int    `toml:"debounce_ms"`
}

// ThemeConfig holds editor appearance settings.
type ThemeConfig struct {
	DarkMode bool `toml:"dark_mode"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:    "localhost:8788",
			Project: "default",
		},
		Autosave: AutosaveConfig{
			Enabled:    true,
			Endpoint:   "http://localhost:8788",
			DebounceMs: 1000,
		},
		Theme: ThemeConfig{DarkMode: true},
	}
}

// Debounce returns the autosave debounce window as a duration.
func (c *Config) Debounce() time.Duration {
	if c.Autosave.DebounceMs <= 0 {
		return time.Second
	}
	return time.Duration(c.Autosave.DebounceMs) * time.Millisecond
}

// Read decodes a Config from the reader, filling unset fields with defaults.
func Read(r io.Reader) (*Config, error) {
	cfg := Default()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Load reads the config file at path. A missing file is not an error: the
// defaults are returned.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultPath resolves the config file location: PAGECRAFT_CONFIG if set,
// otherwise ~/.pagecraft/config.toml.
func DefaultPath() (string, error) {
	if p := os.Getenv("PAGECRAFT_CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".pagecraft", "config.toml"), nil
}

// StatePath resolves the local state document: PAGECRAFT_STATE if set,
// otherwise ~/.pagecraft/state.json.
func StatePath() (string, error) {
	if p := os.Getenv("PAGECRAFT_STATE"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".pagecraft", "state.json"), nil
}
