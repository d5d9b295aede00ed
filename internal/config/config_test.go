package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, _, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Addr != "0.0.0.0:8080" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.Storage.Driver != "sqlite" || cfg.Storage.DSN != "play4peace.db" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.MaxConns != 1024 {
		t.Errorf("MaxConns = %d, want 1024", cfg.MaxConns)
	}
	if cfg.Roster.MaxAttempts != 3 {
		t.Errorf("Roster.MaxAttempts = %d, want 3", cfg.Roster.MaxAttempts)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("Auth.TokenTTL = %v, want 24h", cfg.Auth.TokenTTL)
	}
	if !reflect.DeepEqual(cfg.CORS.Origins, []string{"*"}) {
		t.Errorf("CORS.Origins = %v", cfg.CORS.Origins)
	}
	if !cfg.Seed.Enabled {
		t.Error("Seed.Enabled = false, want true")
	}
}

func TestLoadFlagsAndEnv(t *testing.T) {
	t.Setenv("P4P_STORAGE_DRIVER", "memory")
	t.Setenv("P4P_ROSTER_MAX_ATTEMPTS", "5")
	t.Setenv("P4P_LOG_LEVEL", "warn")

	cfg, _, err := Load([]string{"--addr", "127.0.0.1:9000", "--log_level", "debug"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Addr != "127.0.0.1:9000" {
		t.Errorf("Addr = %q, want flag value", cfg.Addr)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, flag should win over env", cfg.LogLevel)
	}
	if cfg.Storage.Driver != "memory" {
		t.Errorf("Storage.Driver = %q, want memory", cfg.Storage.Driver)
	}
	if cfg.Roster.MaxAttempts != 5 {
		t.Errorf("Roster.MaxAttempts = %d, want 5", cfg.Roster.MaxAttempts)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "play4peace.yaml")
	content := `
addr: ":7000"
auth:
  token_ttl: 90m
media:
  dir: /srv/media
cors:
  origins:
    - https://example.org
    - https://club.example.org
seed:
  enabled: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, v, err := Load([]string{"--config", path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if v.ConfigFileUsed() != path {
		t.Errorf("ConfigFileUsed() = %q", v.ConfigFileUsed())
	}
	if cfg.Addr != ":7000" || cfg.Media.Dir != "/srv/media" || cfg.Seed.Enabled {
		t.Errorf("Load() = %+v", cfg)
	}
	if cfg.Auth.TokenTTL != 90*time.Minute {
		t.Errorf("Auth.TokenTTL = %v, want 90m", cfg.Auth.TokenTTL)
	}
	want := []string{"https://example.org", "https://club.example.org"}
	if !reflect.DeepEqual(cfg.CORS.Origins, want) {
		t.Errorf("CORS.Origins = %v, want %v", cfg.CORS.Origins, want)
	}
	// Untouched keys keep their defaults.
	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("Storage.Driver = %q", cfg.Storage.Driver)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if _, _, err := Load([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml")}); err == nil {
			t.Error("Load() with a missing explicit config file should fail")
		}
	})
	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("P4P_STORAGE_DRIVER", "postgres")
		if _, _, err := Load(nil); err == nil {
			t.Error("Load() accepted an unknown storage driver")
		}
	})
	t.Run("unknown flag", func(t *testing.T) {
		if _, _, err := Load([]string{"--nope"}); err == nil {
			t.Error("Load() accepted an unknown flag")
		}
	})
}
