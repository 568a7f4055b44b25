// Package config loads application configuration from the environment,
// with optional .env file support for local development.
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "homemart"

// Store backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendDynamo   = "dynamo"
)

type Config struct {
	Environment string `default:"development"`
	HTTPAddr    string `split_words:"true" default:":8080"`

	Store    StoreConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	WhatsApp WhatsAppConfig
	Admin    AdminConfig
}

type StoreConfig struct {
	Backend             string `default:"memory"`
	DatabaseURL         string `split_words:"true"`
	DynamoProductsTable string `split_words:"true" default:"homemart-products"`
	DynamoOrdersTable   string `split_words:"true" default:"homemart-orders"`
	DynamoEndpoint      string `split_words:"true"`
}

type RedisConfig struct {
	URL             string
	CacheTTLSeconds int `split_words:"true" default:"30"`
}

type KafkaConfig struct {
	Brokers []string
	Topic   string   `default:"homemart-orders"`
	GroupID string   `split_words:"true" default:"order-feed"`
}

type WhatsAppConfig struct {
	Phone string `default:"50584016969"`
}

type AdminConfig struct {
	PasswordHash    string `split_words:"true"`
	JWTSecret       string `split_words:"true"`
	TokenTTLMinutes int    `split_words:"true" default:"60"`
}

// Enabled reports whether Kafka publishing is configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0 && k.Brokers[0] != ""
}

// Enabled reports whether the Redis cache is configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != ""
}

// Enabled reports whether the admin surface is configured.
func (a AdminConfig) Enabled() bool {
	return a.PasswordHash != "" && a.JWTSecret != ""
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("process config: %w", err)
	}

	switch cfg.Store.Backend {
	case BackendMemory, BackendPostgres, BackendDynamo:
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	if cfg.Store.Backend == BackendPostgres && cfg.Store.DatabaseURL == "" {
		return nil, fmt.Errorf("postgres backend requires HOMEMART_STORE_DATABASE_URL")
	}
	if cfg.Admin.Enabled() && len(cfg.Admin.JWTSecret) < 32 {
		return nil, fmt.Errorf("admin JWT secret must be at least 32 characters long")
	}

	return &cfg, nil
}
