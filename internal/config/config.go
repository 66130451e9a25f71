// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - New returns a Config populated with defaults.
//   - Load layers defaults, an optional YAML file and ROSTER_* env vars.
//   - Validation errors wrap ErrInvalidConfig, loading errors ErrLoadConfig.
package config

import (
	"fmt"
	"time"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreSQL    = "sql"
	StoreRedis  = "redis"
)

// SQL drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Store selects the persistence backend: memory, sql or redis.
	Store string `koanf:"store"`

	// SQLDriver and SQLDSN configure the sql backend.
	SQLDriver string `koanf:"sql_driver"`
	SQLDSN    string `koanf:"sql_dsn"`

	// RedisURL configures the redis backend, e.g. redis://localhost:6379/0.
	RedisURL string `koanf:"redis_url"`

	// DefaultPageSize applies when a list request omits pageSize.
	DefaultPageSize int `koanf:"default_page_size"`

	// Timezone names the IANA zone used to derive birthday years.
	// Empty means the process local zone.
	Timezone string `koanf:"timezone"`

	// RequestTimeoutMS bounds every HTTP request.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":8080",
		Store:            StoreMemory,
		SQLDriver:        DriverSQLite,
		SQLDSN:           "file:roster.db?_pragma=busy_timeout(5000)",
		RedisURL:         "redis://localhost:6379/0",
		DefaultPageSize:  3,
		RequestTimeoutMS: 5000,
	}
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.Store {
	case StoreMemory, StoreRedis:
	case StoreSQL:
		if c.SQLDriver != DriverPostgres && c.SQLDriver != DriverSQLite {
			return fmt.Errorf("%w: unknown sql_driver %q", ErrInvalidConfig, c.SQLDriver)
		}
		if c.SQLDSN == "" {
			return fmt.Errorf("%w: sql_dsn must not be empty", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, c.Store)
	}
	if c.DefaultPageSize <= 0 {
		return fmt.Errorf("%w: default_page_size must be positive", ErrInvalidConfig)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// RequestTimeout returns RequestTimeoutMS as a duration; zero disables it.
func (c *Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutMS <= 0 {
		return 0
	}
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}
