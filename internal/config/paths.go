package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath is the environment variable for explicit config path
	EnvConfigPath = "INFORMER_CONFIG"
	// ConfigFileName is the default config file name
	ConfigFileName = "informer.yaml"
	// ConfigDirName is the config directory name under XDG
	ConfigDirName = "informer"
	// SaltConfigDir holds the system-wide config, next to the salt master's
	SaltConfigDir = "/etc/salt"
)

// FindConfigPath returns the config file to load, or "" when none exists.
// $INFORMER_CONFIG, when set, must name an existing file; otherwise the
// searchPaths candidates are tried in order.
func FindConfigPath() (string, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		if !fileExists(path) {
			return "", fmt.Errorf("%s=%s: config file not found", EnvConfigPath, path)
		}
		return path, nil
	}

	for _, path := range searchPaths() {
		if fileExists(path) {
			return path, nil
		}
	}
	return "", nil
}

// searchPaths lists the implicit config locations, highest priority first:
// the working directory, the user's XDG config dir, then /etc/salt.
func searchPaths() []string {
	paths := []string{ConfigFileName}
	if abs, err := filepath.Abs(ConfigFileName); err == nil {
		paths[0] = abs
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		if home := os.Getenv("HOME"); home != "" {
			configHome = filepath.Join(home, ".config")
		}
	}
	if configHome != "" {
		paths = append(paths, filepath.Join(configHome, ConfigDirName, "config.yaml"))
	}

	return append(paths, filepath.Join(SaltConfigDir, ConfigFileName))
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir(configPath string) error {
	dir := filepath.Dir(configPath)
	return os.MkdirAll(dir, 0755)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
