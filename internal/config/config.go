package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/mcoot/homeguess/internal/pubsub"
	"github.com/mcoot/homeguess/internal/realtime"
	"github.com/mcoot/homeguess/internal/services/session"
	redisstorage "github.com/mcoot/homeguess/internal/storage/redis"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	StorageType   string        `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL      string        `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	RedisPoolSize int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	AdvanceLockTTL time.Duration `env:"ADVANCE_LOCK_TTL" envDefault:"2s"`
	StoreTimeout   time.Duration `env:"STORE_TIMEOUT" envDefault:"3s"`

	CatalogPath string `env:"CATALOG_PATH" envDefault:"data/items.json"`

	Fanout  string `env:"FANOUT" envDefault:"none"`
	NATSURL string `env:"NATS_URL" envDefault:"nats://127.0.0.1:4222"`

	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads an optional .env file and then the process environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Parse builds a config from an explicit environment
func Parse(environ map[string]string) (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Environment: environ})
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageType {
	case "memory", "redis":
	default:
		return fmt.Errorf("STORAGE_TYPE must be memory or redis, got %q", c.StorageType)
	}
	switch c.Fanout {
	case "none", "nats":
	case "redis":
		if c.StorageType != "redis" {
			return errors.New("FANOUT=redis requires STORAGE_TYPE=redis")
		}
	default:
		return fmt.Errorf("FANOUT must be none, redis or nats, got %q", c.Fanout)
	}
	if c.AdvanceLockTTL <= 0 || c.StoreTimeout <= 0 || c.SessionTTL <= 0 {
		return errors.New("ADVANCE_LOCK_TTL, STORE_TIMEOUT and SESSION_TTL must be positive")
	}
	return nil
}

// Redis returns the store settings
func (c *Config) Redis() redisstorage.Config {
	cfg := redisstorage.DefaultConfig()
	cfg.URL = c.RedisURL
	cfg.PoolSize = c.RedisPoolSize
	cfg.SessionTTL = c.SessionTTL
	return cfg
}

// NATS returns the fan-out bus settings
func (c *Config) NATS() pubsub.NATSConfig {
	cfg := pubsub.DefaultNATSConfig()
	cfg.URL = c.NATSURL
	return cfg
}

// Session returns the state machine timeouts
func (c *Config) Session() session.Config {
	return session.Config{
		LockTTL:      c.AdvanceLockTTL,
		StoreTimeout: c.StoreTimeout,
	}
}

// Realtime returns the websocket settings
func (c *Config) Realtime() realtime.Config {
	cfg := realtime.DefaultConfig()
	cfg.StoreTimeout = c.StoreTimeout
	cfg.AllowedOrigins = c.CORSOrigins
	return cfg
}
