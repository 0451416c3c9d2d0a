package config

import (
	"time"
)

// Mine backends
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// Config is the root configuration structure
type Config struct {
	Version   int             `yaml:"version"`
	Mine      MineConfig      `yaml:"mine"`
	Collector CollectorConfig `yaml:"collector"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
}

// MineConfig selects where mine data is read from
type MineConfig struct {
	Backend  string `yaml:"backend"`  // sqlite, file
	Database string `yaml:"database"` // sqlite cache path
	File     string `yaml:"file"`     // YAML snapshot path
}

// CollectorConfig holds SSH settings for refreshing the cache
type CollectorConfig struct {
	User       string         `yaml:"user"`
	KeyFile    string         `yaml:"key_file,omitempty"`
	Passphrase string         `yaml:"passphrase,omitempty"`
	Password   string         `yaml:"password,omitempty"`
	Port       int            `yaml:"port"`
	Timeout    Duration       `yaml:"timeout"`
	Targets    []TargetConfig `yaml:"targets,omitempty"`
}

// TargetConfig is one minion reachable over SSH
type TargetConfig struct {
	ID   string `yaml:"id"`
	Host string `yaml:"host"`
	Port int    `yaml:"port,omitempty"` // 0 = collector port
}

// ServerConfig holds HTTP settings
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
