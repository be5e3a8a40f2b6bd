// Package config loads storefront settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "STOREFRONT"

type Config struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// DatabaseURL selects PostgreSQL; empty keeps orders and products in memory.
	DatabaseURL  string `envconfig:"DATABASE_URL"`
	SeedProducts bool   `envconfig:"SEED_PRODUCTS" default:"true"`

	// KafkaBrokers selects Kafka; empty uses the in-process broker.
	KafkaBrokers  []string `envconfig:"KAFKA_BROKERS"`
	ConsumerGroup string   `envconfig:"CONSUMER_GROUP" default:"storefront-notifications"`

	// RedisAddr selects Redis cart storage; empty keeps carts in memory.
	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	CartTTL       time.Duration `envconfig:"CART_TTL" default:"720h"`

	// Idle sessions are flushed to cart storage and dropped from memory.
	SessionIdleTimeout   time.Duration `envconfig:"SESSION_IDLE_TIMEOUT" default:"30m"`
	SessionSweepInterval time.Duration `envconfig:"SESSION_SWEEP_INTERVAL" default:"1m"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load reads STOREFRONT_* variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format %q: want json or text", c.LogFormat)
	}
	if c.CartTTL < 0 {
		return fmt.Errorf("invalid cart ttl %s", c.CartTTL)
	}
	if c.SessionIdleTimeout <= 0 || c.SessionSweepInterval <= 0 {
		return fmt.Errorf("invalid session eviction settings: idle %s, sweep %s", c.SessionIdleTimeout, c.SessionSweepInterval)
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
