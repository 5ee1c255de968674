package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Store backends accepted by STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendMongo    = "mongo"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`

	Store    StoreConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Postgres PostgresConfig
	Auth     AuthConfig
	Notify   NotifyConfig
	Sessions SessionsConfig

	SeedFile string `env:"SEED_FILE"`
}

type StoreConfig struct {
	Backend string `env:"STORE_BACKEND, default=memory"`
	File    string `env:"STORE_FILE,    default=data/directory.json"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=kalakrut_portal"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type PostgresConfig struct {
	DSN string `env:"POSTGRES_DSN, default=postgres://localhost:5432/kalakrut_portal?sslmode=disable"`
}

type AuthConfig struct {
	AutoRegister bool `env:"AUTO_REGISTER, default=true"`
	BcryptCost   int  `env:"BCRYPT_COST,   default=10"`
}

type NotifyConfig struct {
	Workers int  `env:"NOTIFY_WORKERS, default=8"`
	Redis   bool `env:"NOTIFY_REDIS,   default=false"`
}

type SessionsConfig struct {
	IdleTTL time.Duration `env:"SESSION_IDLE_TTL, default=30m"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

// MustLoad is Load that panics on error.
func MustLoad() *Config {
	cfg, err := Load(context.Background())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// NeedsRedis reports whether any component talks to Redis.
func (c *Config) NeedsRedis() bool {
	return c.Store.Backend == BackendRedis || c.Notify.Redis
}

func (c *Config) validate() error {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendMongo, BackendRedis, BackendPostgres:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}
	if c.Store.Backend == BackendFile && c.Store.File == "" {
		return fmt.Errorf("STORE_FILE is required for the file backend")
	}
	if c.Env == "production" && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	return nil
}
