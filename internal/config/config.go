package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/DelphiTri/website/internal/models/entities"
)

// Config aggregates all runtime settings required by the admin service.
type Config struct {
	AppEnv    string `env:"APP_ENV" envDefault:"development"`
	HTTP      HTTPConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Commerce  CommerceConfig
}

type HTTPConfig struct {
	Addr         string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"15s"`
}

type DatabaseConfig struct {
	Driver      string `env:"DB_DRIVER" envDefault:"postgres"`
	Host        string `env:"PG_HOST" envDefault:"localhost"`
	Port        string `env:"PG_PORT" envDefault:"5432"`
	User        string `env:"PG_USER"`
	Password    string `env:"PG_PASSWORD"`
	Name        string `env:"PG_DB"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"admin.db"`
	AutoMigrate bool   `env:"DB_AUTO_MIGRATE" envDefault:"false"`
}

// DSN builds the postgres connection string the same way for GORM and sqlx.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", d.User, d.Password, d.Host, d.Port, d.Name)
}

type RedisConfig struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     string `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

type AuthConfig struct {
	JWTSecret   string        `env:"JWT_SECRET"`
	SnapshotTTL time.Duration `env:"AUTHZ_SNAPSHOT_TTL" envDefault:"15m"`
}

type CacheConfig struct {
	// Backend is "redis" or "memory"
	Backend         string        `env:"CACHE_BACKEND" envDefault:"redis"`
	DefaultTTL      time.Duration `env:"CACHE_DEFAULT_TTL" envDefault:"1h"`
	CleanupInterval time.Duration `env:"CACHE_CLEANUP_INTERVAL" envDefault:"10m"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
	Burst             int     `env:"RATE_LIMIT_BURST" envDefault:"10"`
}

type CommerceConfig struct {
	DefaultSource string `env:"SUBSCRIPTION_DEFAULT_SOURCE" envDefault:"destiny.gg"`
	TypesFile     string `env:"SUBSCRIPTION_TYPES_FILE"`

	// SubscriptionTypes is resolved by Load from TypesFile or the built-in table
	SubscriptionTypes map[string]entities.SubscriptionType
}

var (
	ErrMissingJWTSecret = errors.New("JWT_SECRET must be set")
	ErrUnknownDriver    = errors.New("DB_DRIVER must be postgres or sqlite")
	ErrUnknownCache     = errors.New("CACHE_BACKEND must be redis or memory")
)

// Load reads an optional .env file, parses the environment and resolves the
// subscription type table.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("error getting env configs: %w", err)
	}

	types, err := loadSubscriptionTypes(cfg.Commerce)
	if err != nil {
		return nil, err
	}
	cfg.Commerce.SubscriptionTypes = types

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	if c.Database.Driver != "postgres" && c.Database.Driver != "sqlite" {
		return ErrUnknownDriver
	}
	if c.Cache.Backend != "redis" && c.Cache.Backend != "memory" {
		return ErrUnknownCache
	}
	return nil
}

func loadSubscriptionTypes(c CommerceConfig) (map[string]entities.SubscriptionType, error) {
	if c.TypesFile == "" {
		return entities.DefaultSubscriptionTypes(c.DefaultSource), nil
	}

	data, err := os.ReadFile(c.TypesFile)
	if err != nil {
		return nil, fmt.Errorf("error reading subscription types: %w", err)
	}

	types := map[string]entities.SubscriptionType{}
	if err := json.Unmarshal(data, &types); err != nil {
		return nil, fmt.Errorf("error parsing subscription types: %w", err)
	}
	for key, t := range types {
		if t.ID == "" {
			t.ID = key
		}
		if t.Source == "" {
			t.Source = c.DefaultSource
		}
		types[key] = t
	}
	return types, nil
}
