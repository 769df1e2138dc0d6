// Package config loads daemon configuration for services embedding the
// governance engine: engine limits, state store backend, definition
// directory, logging, and metrics.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all embedding-service configuration.
type Config struct {
	Engine      EngineConfig      `mapstructure:"engine"`
	Store       StoreConfig       `mapstructure:"store"`
	Definitions DefinitionsConfig `mapstructure:"definitions"`
	Logger      LoggerConfig      `mapstructure:"logger"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
}

// EngineConfig holds engine limits.
type EngineConfig struct {
	StepTimeout        time.Duration `mapstructure:"step_timeout"`
	MaxAutoTransitions int           `mapstructure:"max_auto_transitions"`
}

// StoreConfig selects and configures the state store backend.
type StoreConfig struct {
	Backend string      `mapstructure:"backend"` // "memory" or "redis"
	Redis   RedisConfig `mapstructure:"redis"`
}

// RedisConfig holds Redis connection settings for the redis backend.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
	Prefix   string        `mapstructure:"prefix"`
}

// DefinitionsConfig holds workflow definition discovery settings.
type DefinitionsConfig struct {
	Dir string `mapstructure:"dir"`
}

// LoggerConfig holds logger configuration.
type LoggerConfig struct {
	Level string `mapstructure:"level"`
}

// MetricsConfig holds the Prometheus exporter settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("WARDEN")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("engine.step_timeout", 30*time.Minute)
	v.SetDefault("engine.max_auto_transitions", 3)

	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.ttl", 24*time.Hour)
	v.SetDefault("store.redis.prefix", "warden")

	v.SetDefault("definitions.dir", "workflows")

	v.SetDefault("logger.level", "info")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":9090")
}

// Validate checks configuration consistency.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "memory":
	case "redis":
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("store.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("store.backend must be \"memory\" or \"redis\", got %q", c.Store.Backend)
	}

	if c.Engine.MaxAutoTransitions <= 0 {
		return fmt.Errorf("engine.max_auto_transitions must be positive")
	}
	if c.Definitions.Dir == "" {
		return fmt.Errorf("definitions.dir is required")
	}

	switch c.Logger.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logger.level must be one of debug, info, warn, error")
	}

	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr is required when metrics are enabled")
	}
	return nil
}
