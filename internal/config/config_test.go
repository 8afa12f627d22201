package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Practice.Difficulty != nil || cfg.Auth.BcryptCost != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfigValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[practice]
difficulty = "medium"
texts-dir = "/tmp/texts"
bell = true

[auth]
bcrypt-cost = 12
token-ttl = "2h"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Practice.Difficulty == nil || *cfg.Practice.Difficulty != "medium" {
		t.Fatalf("unexpected difficulty: %v", cfg.Practice.Difficulty)
	}
	if cfg.Practice.TextsDir == nil || *cfg.Practice.TextsDir != "/tmp/texts" {
		t.Fatalf("unexpected texts dir: %v", cfg.Practice.TextsDir)
	}
	if cfg.Practice.Bell == nil || !*cfg.Practice.Bell {
		t.Fatalf("expected bell to be enabled")
	}
	if cfg.Auth.BcryptCost == nil || *cfg.Auth.BcryptCost != 12 {
		t.Fatalf("unexpected bcrypt cost: %v", cfg.Auth.BcryptCost)
	}
	if cfg.Auth.Secret != nil {
		t.Fatalf("secret should be unset")
	}
	ttl, err := cfg.Auth.TokenTTLOr(time.Hour)
	if err != nil || ttl != 2*time.Hour {
		t.Fatalf("unexpected ttl %v (%v)", ttl, err)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[practice]\nlang = \"en\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "practice.lang") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestTokenTTLOr(t *testing.T) {
	var a AuthConfig
	if d, err := a.TokenTTLOr(time.Minute); err != nil || d != time.Minute {
		t.Fatalf("expected default, got %v (%v)", d, err)
	}
	bad := "soon"
	a.TokenTTL = &bad
	if _, err := a.TokenTTLOr(time.Minute); err == nil {
		t.Fatalf("expected parse error")
	}
	neg := "-1h"
	a.TokenTTL = &neg
	if _, err := a.TokenTTLOr(time.Minute); err == nil {
		t.Fatalf("expected error for negative ttl")
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	cases := map[string]string{
		DefaultConfigPath(): filepath.Join("/cfg", "tiertype", "config.toml"),
		DefaultTextsDir():   filepath.Join("/cfg", "tiertype", "texts"),
		DefaultDBPath():     filepath.Join("/data", "tiertype", "tiertype.db"),
		DefaultTokenPath():  filepath.Join("/data", "tiertype", "session.jwt"),
		DefaultSecretPath(): filepath.Join("/data", "tiertype", "signing.key"),
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("got %q, want %q", got, want)
		}
	}
}
