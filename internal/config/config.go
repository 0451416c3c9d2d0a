// Package config provides configuration management for informer.
//
// Config file locations (priority order):
//  1. $INFORMER_CONFIG (must exist when set)
//  2. ./informer.yaml
//  3. $XDG_CONFIG_HOME/informer/config.yaml (~/.config when unset)
//  4. /etc/salt/informer.yaml
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path, err := FindConfigPath()
	if err != nil {
		return nil, "", err
	}

	if path == "" {
		// No config found - return defaults
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Mine.Backend == "" {
		c.Mine.Backend = BackendSQLite
	}
	if c.Mine.Database == "" {
		c.Mine.Database = "./informer.db"
	}
	if c.Mine.File == "" {
		c.Mine.File = "./mine.yaml"
	}
	if c.Collector.User == "" {
		c.Collector.User = "root"
	}
	if c.Collector.Port == 0 {
		c.Collector.Port = 22
	}
	if c.Collector.Timeout == 0 {
		c.Collector.Timeout = Duration(10 * time.Second)
	}
	c.Collector.KeyFile = expandHome(c.Collector.KeyFile)
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// Validate checks values that defaults cannot repair
func (c *Config) Validate() error {
	var errs []error

	switch c.Mine.Backend {
	case BackendSQLite, BackendFile:
	default:
		errs = append(errs, fmt.Errorf("mine.backend: unknown backend %q", c.Mine.Backend))
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}

	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}

	seen := make(map[string]bool)
	for i, t := range c.Collector.Targets {
		if t.ID == "" || t.Host == "" {
			errs = append(errs, fmt.Errorf("collector.targets[%d]: id and host are required", i))
			continue
		}
		if seen[t.ID] {
			errs = append(errs, fmt.Errorf("collector.targets[%d]: duplicate id %q", i, t.ID))
		}
		seen[t.ID] = true
	}

	return errors.Join(errs...)
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	source := c.Mine.Database
	if c.Mine.Backend == BackendFile {
		source = c.Mine.File
	}
	summary := fmt.Sprintf("Mine: %s (%s)\n", c.Mine.Backend, source)
	summary += fmt.Sprintf("Collector: user %s, port %d, timeout %s, %d targets\n",
		c.Collector.User, c.Collector.Port, c.Collector.Timeout.Duration(), len(c.Collector.Targets))
	summary += fmt.Sprintf("Server: %s, Log: %s/%s", c.Server.Addr, c.Log.Level, c.Log.Format)
	return summary
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
