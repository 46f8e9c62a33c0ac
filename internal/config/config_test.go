package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("RUSH24_PORT", "")
	t.Setenv("RUSH24_ENV", "")
	t.Setenv("RUSH24_CONFIG", "")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":8081" || cfg.Dev() || cfg.Heartbeat() != 30*time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("RUSH24_ENV", "dev")
	t.Setenv("RUSH24_CONFIG", "")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":9090" || !cfg.Dev() {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rush24.yaml")
	if err := os.WriteFile(path, []byte("addr: \":7000\"\nheartbeat_seconds: 5\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "")
	t.Setenv("RUSH24_PORT", "")
	t.Setenv("RUSH24_CONFIG", path)
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":7000" || cfg.Heartbeat() != 5*time.Second {
		t.Fatalf("yaml overrides not applied: %+v", cfg)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Setenv("RUSH24_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
