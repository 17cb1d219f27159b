// Package config loads trainr's TOML configuration and TRAINR_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/sadopc/trainr/internal/history"
)

var ErrNoConfig = errors.New("config file not found")

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type Config struct {
	Store   StoreConfig   `toml:"store"`
	Log     LogConfig     `toml:"log"`
	Sentry  SentryConfig  `toml:"sentry"`
	Program ProgramConfig `toml:"program"`
}

type StoreConfig struct {
	Backend       string `toml:"backend"`
	DBPath        string `toml:"db_path"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisPrefix   string `toml:"redis_prefix"`
	CacheSizeMB   int    `toml:"cache_size_mb"` // 0 disables the read cache
}

type LogConfig struct {
	Level  string `toml:"level"`
	File   string `toml:"file"`
	JSON   bool   `toml:"json"`
	Stdout bool   `toml:"stdout"`
}

type SentryConfig struct {
	Enabled     bool   `toml:"enabled"`
	DSN         string `toml:"dsn"`
	Environment string `toml:"environment"`
}

type ProgramConfig struct {
	HistoryRetention int `toml:"history_retention"`
}

// Dir is where trainr keeps its config, database and logs.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "trainr"), nil
}

func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func DefaultConfig() *Config {
	cfg := &Config{
		Store: StoreConfig{
			Backend:     BackendSQLite,
			RedisAddr:   "localhost:6379",
			RedisPrefix: "trainr:",
			CacheSizeMB: 4,
		},
		Log: LogConfig{
			Level: "info",
		},
		Sentry: SentryConfig{
			Environment: "production",
		},
		Program: ProgramConfig{
			HistoryRetention: history.DefaultLimit,
		},
	}
	if dir, err := Dir(); err == nil {
		cfg.Store.DBPath = filepath.Join(dir, "trainr.db")
		cfg.Log.File = filepath.Join(dir, "trainr.log")
	}
	return cfg
}

// Load reads path on top of the defaults, then applies environment overrides.
// A missing file is not an error unless required is set, in which case ErrNoConfig is returned.
func Load(path string, required bool) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
		if required {
			return nil, fmt.Errorf("%s: %w", path, ErrNoConfig)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides reads:
//
//	TRAINR_STORE_BACKEND, TRAINR_DB_PATH,
//	TRAINR_REDIS_ADDR, TRAINR_REDIS_PASSWORD, TRAINR_REDIS_DB,
//	TRAINR_LOG_LEVEL, TRAINR_LOG_FILE, TRAINR_SENTRY_DSN
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRAINR_STORE_BACKEND"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("TRAINR_DB_PATH"); v != "" {
		cfg.Store.DBPath = v
	}
	if v := os.Getenv("TRAINR_REDIS_ADDR"); v != "" {
		cfg.Store.RedisAddr = v
	}
	if v := os.Getenv("TRAINR_REDIS_PASSWORD"); v != "" {
		cfg.Store.RedisPassword = v
	}
	if v := os.Getenv("TRAINR_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Store.RedisDB = db
		}
	}
	if v := os.Getenv("TRAINR_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("TRAINR_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("TRAINR_SENTRY_DSN"); v != "" {
		cfg.Sentry.DSN = v
		cfg.Sentry.Enabled = true
	}
}

func (c *Config) validate() error {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	switch c.Store.Backend {
	case BackendSQLite:
		if c.Store.DBPath == "" {
			return fmt.Errorf("store.db_path is required for the sqlite backend")
		}
	case BackendRedis:
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("store.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("store.backend %q is not one of sqlite, redis", c.Store.Backend)
	}
	if c.Store.CacheSizeMB < 0 {
		return fmt.Errorf("store.cache_size_mb must not be negative")
	}
	if c.Program.HistoryRetention < 1 {
		return fmt.Errorf("program.history_retention must be at least 1")
	}
	if c.Sentry.Enabled && c.Sentry.DSN == "" {
		return fmt.Errorf("sentry.dsn is required when sentry is enabled")
	}
	return nil
}
