package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all hostbounce configuration.
type Config struct {
	Listen   string         `yaml:"listen"`
	Store    StoreConfig    `yaml:"store"`
	Cache    CacheConfig    `yaml:"cache"`
	Redirect RedirectConfig `yaml:"redirect"`
	HitLog   HitLogConfig   `yaml:"hit_log"`
}

// StoreConfig selects and configures the durable store backend.
type StoreConfig struct {
	Backend string      `yaml:"backend"` // "sqlite" or "redis"
	DBPath  string      `yaml:"db_path"`
	Table   string      `yaml:"table"`
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig holds connection parameters for the redis backend.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// CacheConfig controls the in-memory lookup cache.
type CacheConfig struct {
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"` // 0 disables the sweep
}

// RedirectConfig controls the emitted redirect response.
type RedirectConfig struct {
	Status int `yaml:"status"`
}

// HitLogConfig controls the persistent redirect decision log.
type HitLogConfig struct {
	Enabled       bool   `yaml:"enabled"`
	DBPath        string `yaml:"db_path"`
	RetentionDays int    `yaml:"retention_days"`
}

var tablePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Listen: ":8080",
		Store: StoreConfig{
			Backend: "sqlite",
			DBPath:  "hostbounce.db",
			Table:   "redirects",
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
		},
		Cache: CacheConfig{
			TTL:           5 * time.Minute,
			SweepInterval: 10 * time.Minute,
		},
		Redirect: RedirectConfig{
			Status: 307,
		},
		HitLog: HitLogConfig{
			Enabled:       true,
			DBPath:        "hostbounce_hits.db",
			RetentionDays: 30,
		},
	}
}

// Load reads a YAML config file, expands environment variables and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the server cannot run
// with.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "sqlite", "redis":
	default:
		return fmt.Errorf("unknown store backend %q, must be sqlite or redis", c.Store.Backend)
	}

	if !tablePattern.MatchString(c.Store.Table) {
		return fmt.Errorf("invalid store table %q", c.Store.Table)
	}

	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive, got %s", c.Cache.TTL)
	}
	if c.Cache.SweepInterval < 0 {
		return fmt.Errorf("cache sweep_interval must not be negative, got %s", c.Cache.SweepInterval)
	}

	switch c.Redirect.Status {
	case 301, 302, 307, 308:
	default:
		return fmt.Errorf("redirect status must be 301, 302, 307 or 308, got %d", c.Redirect.Status)
	}

	if c.HitLog.Enabled && c.HitLog.RetentionDays <= 0 {
		return fmt.Errorf("hit_log retention_days must be positive, got %d", c.HitLog.RetentionDays)
	}

	return nil
}
