package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/omarnaeem59-commits/Modern-Boostly/internal/storage"
)

// Config is the on-disk configuration at ~/.config/boostly/config.yaml.
type Config struct {
	// DB is the SQLite file. Empty selects ~/.boostly.db.
	DB          string            `yaml:"db"`
	Timezone    string            `yaml:"timezone"`
	Log         LogConfig         `yaml:"log"`
	HTTP        HTTPConfig        `yaml:"http"`
	Progression ProgressionConfig `yaml:"progression"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr" validate:"required"`
	// TokenSecret signs API tokens. Empty means a random per-process secret.
	TokenSecret string        `yaml:"token_secret"`
	TokenTTL    time.Duration `yaml:"token_ttl" validate:"gte=0"`
}

type ProgressionConfig struct {
	// MonotonicLevels keeps level and badge at their high-water mark when points drop.
	MonotonicLevels bool `yaml:"monotonic_levels"`
}

var validate = validator.New()

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Timezone: "Local",
		Log:      LogConfig{Level: "warn"},
		HTTP: HTTPConfig{
			Addr:     "127.0.0.1:8080",
			TokenTTL: 24 * time.Hour,
		},
	}
}

// DefaultPath returns the config file location. BOOSTLY_CONFIG overrides it.
func DefaultPath() (string, error) {
	if p := os.Getenv("BOOSTLY_CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "boostly", "config.yaml"), nil
}

// Load reads the YAML file at path over the defaults and applies environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Fallback returns the defaults with environment overrides applied, for use
// when the config file cannot be loaded. Overrides that would not validate
// are reset to their defaults.
func Fallback() *Config {
	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	def := DefaultConfig()
	if err := validate.Var(cfg.Log.Level, "oneof=debug info warn error"); err != nil {
		cfg.Log.Level = def.Log.Level
	}
	if _, err := cfg.Location(); err != nil {
		cfg.Timezone = def.Timezone
	}
	return cfg
}

// Save writes the configuration as YAML, creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("BOOSTLY_DB"); v != "" {
		c.DB = v
	}
	if v := os.Getenv("BOOSTLY_LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("BOOSTLY_HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("BOOSTLY_TOKEN_SECRET"); v != "" {
		c.HTTP.TokenSecret = v
	}
	if v := os.Getenv("BOOSTLY_MONOTONIC_LEVELS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Progression.MonotonicLevels = b
		}
	}
	if v := os.Getenv("BOOSTLY_TIMEZONE"); v != "" {
		c.Timezone = v
	}
}

// Validate checks field constraints and that the timezone resolves.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone. Empty and "Local" select the system zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ResolveDBPath returns the database file, expanding a leading ~/.
func (c *Config) ResolveDBPath() (string, error) {
	if c.DB == "" {
		return storage.DefaultDBPath()
	}
	if rest, ok := strings.CutPrefix(c.DB, "~/"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home dir: %w", err)
		}
		return filepath.Join(home, rest), nil
	}
	return c.DB, nil
}
