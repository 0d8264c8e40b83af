package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Tasks    TasksConfig    `mapstructure:"tasks" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// ShutdownTimeout returns the graceful shutdown deadline.
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// DatabaseConfig selects and configures the task store backend.
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	URL          string `mapstructure:"url" validate:"required_if=Driver postgres,omitempty,url"`
	SQLitePath   string `mapstructure:"sqlite_path" validate:"required_if=Driver sqlite"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gt=0"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
}

// CacheConfig configures the optional Redis read-through cache.
type CacheConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	RedisAddr     string `mapstructure:"redis_addr" validate:"required_if=Enabled true"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db" validate:"gte=0"`
	TTLSeconds    int    `mapstructure:"ttl_seconds" validate:"gt=0"`
}

// TTL returns how long a cached task stays valid.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// TasksConfig holds the task rules that are tunable per deployment.
type TasksConfig struct {
	DefaultDueDays int    `mapstructure:"default_due_days" validate:"gt=0"`
	Timezone       string `mapstructure:"timezone" validate:"required,timezone"`
}

// DefaultDueIn is the due date offset for tasks created without one.
func (c TasksConfig) DefaultDueIn() time.Duration {
	return time.Duration(c.DefaultDueDays) * 24 * time.Hour
}

// Location resolves the reference time zone used for status derivation.
func (c TasksConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid tasks timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
