// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
)

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), "lbview", "config.toml")
}

// DefaultEnvPath returns the .env file read from the working directory.
func DefaultEnvPath() string {
	return ".env"
}

// DefaultExportDir returns the directory exports land in when none is configured.
func DefaultExportDir() string {
	return "."
}
