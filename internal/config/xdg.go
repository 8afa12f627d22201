// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
)

const appDir = "tiertype"

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

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultTextsDir returns the directory holding optional per-tier text files.
func DefaultTextsDir() string {
	return filepath.Join(XDGConfigHome(), appDir, "texts")
}

// DefaultDBPath returns the default path for the SQLite database.
func DefaultDBPath() string {
	return filepath.Join(XDGDataHome(), appDir, "tiertype.db")
}

// DefaultTokenPath returns where the current login token is kept.
func DefaultTokenPath() string {
	return filepath.Join(XDGDataHome(), appDir, "session.jwt")
}

// DefaultSecretPath returns where the generated signing key is kept.
func DefaultSecretPath() string {
	return filepath.Join(XDGDataHome(), appDir, "signing.key")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appDir, "config.toml")
}
