package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`

	Database   DatabaseConfig
	Mongo      MongoConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	Allocation AllocationConfig
	HTTP       HTTPConfig
	Bootstrap  BootstrapConfig
}

type DatabaseConfig struct {
	Driver   string `env:"DB_DRIVER,     default=sqlite"`
	URL      string `env:"DATABASE_URL,  default=unity_nodes.db"`
	MaxConns int    `env:"DB_MAX_CONNS,  default=10"`
}

type MongoConfig struct {
	URI         string `env:"MONGO_URI,       default=mongodb://localhost:27017"`
	Database    string `env:"MONGO_DB,        default=unity_nodes"`
	MaxPoolSize uint64 `env:"MONGO_MAX_POOL,  default=50"`
}

// RedisConfig is optional: an empty Addr disables idempotency keys.
type RedisConfig struct {
	Addr           string        `env:"REDIS_ADDR"`
	Password       string        `env:"REDIS_PASSWORD"`
	DB             int           `env:"REDIS_DB,         default=0"`
	PoolSize       int           `env:"REDIS_POOL_SIZE,  default=10"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL,  default=24h"`
}

// KafkaConfig is optional: without brokers events go to the log.
type KafkaConfig struct {
	Brokers []string `env:"KAFKA_BROKERS"`
	Topic   string   `env:"KAFKA_TOPIC,   default=unity-nodes.events"`
	Workers int      `env:"EVENT_WORKERS, default=4"`
}

type AllocationConfig struct {
	MaxAttempts int `env:"ALLOCATION_MAX_ATTEMPTS, default=3"`
}

type HTTPConfig struct {
	RateLimitRPS   float64  `env:"RATE_LIMIT_RPS,       default=5"`
	RateLimitBurst int      `env:"RATE_LIMIT_BURST,     default=10"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS, default=*"`
}

// BootstrapConfig seeds the first admin operator when both fields are set.
type BootstrapConfig struct {
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects combinations the service cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite", "mongo":
	default:
		return fmt.Errorf("config: DB_DRIVER must be postgres, sqlite or mongo, got %q", c.Database.Driver)
	}
	if c.JWTSecret == "" && c.IsProduction() {
		return fmt.Errorf("config: JWT_SECRET is required in production")
	}
	if c.Allocation.MaxAttempts < 1 {
		return fmt.Errorf("config: ALLOCATION_MAX_ATTEMPTS must be at least 1")
	}
	if c.HTTP.RateLimitRPS < 0 || c.HTTP.RateLimitBurst < 0 {
		return fmt.Errorf("config: rate limit values must not be negative")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}
