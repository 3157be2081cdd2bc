package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration.
type Config struct {
	Env      string `env:"PICKUP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL"  envDefault:"info"`
	Database DatabaseConfig
}

// DatabaseConfig holds SurrealDB connection settings.
type DatabaseConfig struct {
	Host      string `env:"DB_HOST"      envDefault:"localhost"`
	Port      string `env:"DB_PORT"      envDefault:"8000"`
	Namespace string `env:"DB_NAMESPACE" envDefault:"pickup"`
	Database  string `env:"DB_DATABASE"  envDefault:"main"`
	User      string `env:"DB_USER"      envDefault:"root"`
	Password  string `env:"DB_PASSWORD"  envDefault:"root"`
}

// Load parses configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that all required configuration values are present and
// valid. It returns an error describing all validation failures, or nil.
func (c *Config) Validate() error {
	var errs []error

	if c.Env != "development" && c.Env != "production" && c.Env != "test" {
		errs = append(errs, fmt.Errorf("PICKUP_ENV must be 'development', 'production', or 'test', got '%s'", c.Env))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}

	if c.Database.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.Database.Port == "" {
		errs = append(errs, errors.New("DB_PORT is required"))
	}
	if c.Database.Namespace == "" {
		errs = append(errs, errors.New("DB_NAMESPACE is required"))
	}
	if c.Database.Database == "" {
		errs = append(errs, errors.New("DB_DATABASE is required"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// SlogLevel maps LOG_LEVEL onto a slog level.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL must be debug, info, warn, or error, got '%s'", c.LogLevel)
	}
}
