package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"BOOSTLY_DB", "BOOSTLY_LOG_LEVEL", "BOOSTLY_HTTP_ADDR",
		"BOOSTLY_TOKEN_SECRET", "BOOSTLY_MONOTONIC_LEVELS", "BOOSTLY_TIMEZONE",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Log.Level != "warn" {
		t.Errorf("expected log level warn, got %s", cfg.Log.Level)
	}
	if cfg.Progression.MonotonicLevels {
		t.Errorf("expected monotonic levels off by default")
	}
	if cfg.HTTP.TokenTTL != 24*time.Hour {
		t.Errorf("expected token ttl 24h, got %s", cfg.HTTP.TokenTTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTP.Addr != "127.0.0.1:8080" {
		t.Errorf("expected default addr, got %s", cfg.HTTP.Addr)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "boostly", "config.yaml")

	cfg := DefaultConfig()
	cfg.DB = "/tmp/boostly-test.db"
	cfg.Timezone = "UTC"
	cfg.Progression.MonotonicLevels = true
	cfg.HTTP.TokenTTL = 90 * time.Minute
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.DB != cfg.DB || loaded.Timezone != "UTC" || !loaded.Progression.MonotonicLevels {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
	if loaded.HTTP.TokenTTL != 90*time.Minute {
		t.Errorf("expected ttl 1h30m, got %s", loaded.HTTP.TokenTTL)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected debug, got %s", cfg.Log.Level)
	}
	if cfg.HTTP.Addr != "127.0.0.1:8080" {
		t.Errorf("expected default addr kept, got %s", cfg.HTTP.Addr)
	}
}

func TestLoad_Malformed(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestFallback_AppliesValidEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BOOSTLY_DB", "/data/b.db")
	t.Setenv("BOOSTLY_LOG_LEVEL", "trace")
	t.Setenv("BOOSTLY_TIMEZONE", "Mars/Olympus")
	t.Setenv("BOOSTLY_MONOTONIC_LEVELS", "true")

	if _, err := Load(path); err == nil {
		t.Fatal("expected load error")
	}
	cfg := Fallback()
	if cfg.DB != "/data/b.db" {
		t.Errorf("expected DB override, got %s", cfg.DB)
	}
	if !cfg.Progression.MonotonicLevels {
		t.Errorf("expected monotonic override")
	}
	def := DefaultConfig()
	if cfg.Log.Level != def.Log.Level {
		t.Errorf("invalid level should reset to %s, got %s", def.Log.Level, cfg.Log.Level)
	}
	if cfg.Timezone != def.Timezone {
		t.Errorf("invalid timezone should reset to %q, got %q", def.Timezone, cfg.Timezone)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("fallback should validate: %v", err)
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOOSTLY_DB", "/data/b.db")
	t.Setenv("BOOSTLY_LOG_LEVEL", "DEBUG")
	t.Setenv("BOOSTLY_HTTP_ADDR", ":9999")
	t.Setenv("BOOSTLY_TOKEN_SECRET", "s3cret")
	t.Setenv("BOOSTLY_MONOTONIC_LEVELS", "true")
	t.Setenv("BOOSTLY_TIMEZONE", "UTC")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	if cfg.DB != "/data/b.db" {
		t.Errorf("expected DB override, got %s", cfg.DB)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected level debug, got %s", cfg.Log.Level)
	}
	if cfg.HTTP.Addr != ":9999" || cfg.HTTP.TokenSecret != "s3cret" {
		t.Errorf("expected http overrides, got %+v", cfg.HTTP)
	}
	if !cfg.Progression.MonotonicLevels {
		t.Errorf("expected monotonic override")
	}
	if loc, err := cfg.Location(); err != nil || loc != time.UTC {
		t.Errorf("expected UTC location, got %v, %v", loc, err)
	}

	t.Setenv("BOOSTLY_MONOTONIC_LEVELS", "maybe")
	cfg = DefaultConfig()
	cfg.applyEnvOverrides()
	if cfg.Progression.MonotonicLevels {
		t.Errorf("unparseable bool should be ignored")
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Log.Level = "loud"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for log level")
	}

	cfg = DefaultConfig()
	cfg.HTTP.Addr = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for empty addr")
	}

	cfg = DefaultConfig()
	cfg.Timezone = "Mars/Olympus"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for timezone")
	}
}

func TestResolveDBPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	cfg := DefaultConfig()
	got, err := cfg.ResolveDBPath()
	if err != nil || got != filepath.Join(home, ".boostly.db") {
		t.Errorf("default path=%s, %v", got, err)
	}

	cfg.DB = "~/x/y.db"
	got, _ = cfg.ResolveDBPath()
	if got != filepath.Join(home, "x", "y.db") {
		t.Errorf("expanded path=%s", got)
	}

	cfg.DB = "/abs/z.db"
	got, _ = cfg.ResolveDBPath()
	if got != "/abs/z.db" {
		t.Errorf("absolute path=%s", got)
	}
}
