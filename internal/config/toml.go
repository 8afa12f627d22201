// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Auth     AuthConfig     `toml:"auth"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Difficulty *string `toml:"difficulty"`
	TextsDir   *string `toml:"texts-dir"`
	Bell       *bool   `toml:"bell"`
}

// AuthConfig maps account and login-token settings.
type AuthConfig struct {
	BcryptCost *int    `toml:"bcrypt-cost"`
	TokenTTL   *string `toml:"token-ttl"`
	Secret     *string `toml:"secret"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// TokenTTLOr parses the configured token lifetime, returning def when unset.
func (a AuthConfig) TokenTTLOr(def time.Duration) (time.Duration, error) {
	if a.TokenTTL == nil {
		return def, nil
	}
	d, err := time.ParseDuration(*a.TokenTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid token-ttl %q: %w", *a.TokenTTL, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("token-ttl must be positive")
	}
	return d, nil
}
