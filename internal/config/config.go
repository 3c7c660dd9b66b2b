package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/utafrali/CoffeeOrderGo/pkg/config"
	"github.com/utafrali/CoffeeOrderGo/pkg/database"
)

// Config holds all configuration for the coffee cart service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"CART_HTTP_PORT" envDefault:"8080"`

	// PostgreSQL
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"postgres"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"postgres"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"coffee_cart"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	// Redis (catalog cache)
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Catalog service
	CatalogBaseURL     string `env:"CATALOG_BASE_URL" envDefault:"http://localhost:8081"`
	CatalogCacheTTLMin int    `env:"CATALOG_CACHE_TTL_MINUTES" envDefault:"10"`

	// Cart persistence flush deadline in seconds.
	FlushTimeoutSec int `env:"CART_FLUSH_TIMEOUT_SECONDS" envDefault:"5"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load cart config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.CatalogBaseURL == "" {
		return fmt.Errorf("catalog base URL is required")
	}
	if c.CatalogCacheTTLMin < 1 {
		return fmt.Errorf("catalog cache TTL must be at least 1 minute, got %d", c.CatalogCacheTTLMin)
	}
	if c.FlushTimeoutSec < 1 {
		return fmt.Errorf("flush timeout must be at least 1 second, got %d", c.FlushTimeoutSec)
	}
	return nil
}

// PostgresConfig converts the flat env fields to the database package's config.
func (c *Config) PostgresConfig() database.PostgresConfig {
	return database.PostgresConfig{
		Host:     c.PostgresHost,
		Port:     c.PostgresPort,
		User:     c.PostgresUser,
		Password: c.PostgresPassword,
		DBName:   c.PostgresDB,
		SSLMode:  c.PostgresSSLMode,
	}
}

// CatalogCacheTTL returns the catalog cache TTL as a duration.
func (c *Config) CatalogCacheTTL() time.Duration {
	return time.Duration(c.CatalogCacheTTLMin) * time.Minute
}

// FlushTimeout returns the persistence flush deadline as a duration.
func (c *Config) FlushTimeout() time.Duration {
	return time.Duration(c.FlushTimeoutSec) * time.Second
}
