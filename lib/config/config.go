// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/wutag/lib/tag"
)

// EnvironmentVariable names the variable that points at a config file.
const EnvironmentVariable = "WUTAG_CONFIG"

// FileName is the name of the config file in the user config directory.
const FileName = "wutag.yml"

// Config holds the wutag settings.
type Config struct {
	// MaxDepth bounds how far glob patterns descend below the base
	// directory. Default: 2.
	MaxDepth int `yaml:"max_depth"`

	// Colors is the palette new tags draw a random color from, as color
	// names or hex values. Empty means the built-in palette.
	Colors []string `yaml:"colors"`

	// PrettyOutput renders listings with color. Default: false.
	PrettyOutput bool `yaml:"pretty_output"`

	// SocketPath overrides the per-user daemon socket.
	// Default: empty, meaning $XDG_RUNTIME_DIR/wutag-<user>.sock.
	SocketPath string `yaml:"socket_path"`

	// RegistryPath is where the daemon persists its registry.
	// Default: ${XDG_DATA_HOME:-$HOME/.local/share}/wutag/registry.cbor.
	RegistryPath string `yaml:"registry_path"`

	// PollInterval is how often the daemon reconciles filesystem
	// events. Default: 200ms.
	PollInterval string `yaml:"poll_interval"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		MaxDepth:     2,
		RegistryPath: "${XDG_DATA_HOME:-${HOME}/.local/share}/wutag/registry.cbor",
		PollInterval: "200ms",
	}
}

// DefaultPath returns <user config dir>/wutag/wutag.yml.
func DefaultPath() (string, error) {
	directory, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config directory: %w", err)
	}
	return filepath.Join(directory, "wutag", FileName), nil
}

// Resolve loads the configuration from flagPath if set, else from
// WUTAG_CONFIG if set, else from DefaultPath. Only the default file may
// be missing.
func Resolve(flagPath string) (*Config, error) {
	if flagPath != "" {
		return LoadFile(flagPath)
	}
	if environmentPath := os.Getenv(EnvironmentVariable); environmentPath != "" {
		return LoadFile(environmentPath)
	}
	defaultPath, err := DefaultPath()
	if err != nil {
		cfg := Default()
		cfg.expandVariables()
		return cfg, nil
	}
	cfg, err := LoadFile(defaultPath)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Default()
		cfg.expandVariables()
		return cfg, nil
	}
	return cfg, err
}

// LoadFile loads configuration from path on top of the defaults and
// validates it.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.expandVariables()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} in path fields.
func (c *Config) expandVariables() {
	c.SocketPath = expandVars(c.SocketPath)
	c.RegistryPath = expandVars(c.RegistryPath)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-((?:[^{}]|\$\{[^}]*\})*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns. A default may
// itself contain one level of ${VAR} references.
func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		if len(parts) >= 3 {
			return expandVars(parts[2])
		}
		return ""
	})
}

// Palette returns the parsed color palette, or tag.DefaultPalette when
// none is configured.
func (c *Config) Palette() ([]tag.Color, error) {
	if len(c.Colors) == 0 {
		return tag.DefaultPalette, nil
	}
	palette := make([]tag.Color, 0, len(c.Colors))
	for _, text := range c.Colors {
		color, err := tag.ParseColor(text)
		if err != nil {
			return nil, fmt.Errorf("colors: %w", err)
		}
		palette = append(palette, color)
	}
	return palette, nil
}

// PollIntervalDuration returns PollInterval parsed as a duration.
func (c *Config) PollIntervalDuration() (time.Duration, error) {
	interval, err := time.ParseDuration(c.PollInterval)
	if err != nil {
		return 0, fmt.Errorf("poll_interval: %w", err)
	}
	if interval <= 0 {
		return 0, fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	}
	return interval, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.MaxDepth < 1 {
		errs = append(errs, fmt.Errorf("max_depth must be at least 1, got %d", c.MaxDepth))
	}
	if _, err := c.Palette(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.PollIntervalDuration(); err != nil {
		errs = append(errs, err)
	}
	if c.RegistryPath == "" {
		errs = append(errs, fmt.Errorf("registry_path is required"))
	}

	return errors.Join(errs...)
}
