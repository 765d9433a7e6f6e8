package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every storefront environment variable.
const EnvPrefix = "storefront"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	StoreBackendRedis = "redis"
	StoreBackendSQL   = "sql"
)

type Config struct {
	App      AppConfig
	HTTP     HTTPConfig
	Redis    RedisConfig
	Store    StoreConfig
	Upstream UpstreamConfig
	Cart     CartConfig
	Auth     AuthConfig
	Kafka    KafkaConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Store.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type HTTPConfig struct {
	Port            string        `envconfig:"STOREFRONT_HTTP_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"STOREFRONT_HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"STOREFRONT_HTTP_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"STOREFRONT_HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// StoreConfig selects where durable session state (cart snapshots,
// preferences) lives: redis, or an embedded/remote SQL database.
type StoreConfig struct {
	Backend string `envconfig:"STOREFRONT_STORE_BACKEND" default:"redis"`

	DSN         string `envconfig:"STOREFRONT_STORE_DSN"`
	Driver      string `envconfig:"STOREFRONT_STORE_DRIVER" default:"sqlite"`
	AutoMigrate bool   `envconfig:"STOREFRONT_STORE_AUTO_MIGRATE" default:"true"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_STORE_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_STORE_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_STORE_CONN_MAX_LIFETIME" default:"1h"`
}

func (s StoreConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(s.Backend)) {
	case StoreBackendRedis:
		return nil
	case StoreBackendSQL:
		if s.DSN == "" {
			return fmt.Errorf("%s store backend requires STOREFRONT_STORE_DSN", StoreBackendSQL)
		}
		switch s.Driver {
		case "sqlite", "postgres":
			return nil
		default:
			return fmt.Errorf("unsupported store driver %q", s.Driver)
		}
	default:
		return fmt.Errorf("unsupported store backend %q", s.Backend)
	}
}

// UpstreamConfig points at the marketplace platform API.
type UpstreamConfig struct {
	BaseURL string        `envconfig:"STOREFRONT_UPSTREAM_BASE_URL" required:"true"`
	APIKey  string        `envconfig:"STOREFRONT_UPSTREAM_API_KEY"`
	Timeout time.Duration `envconfig:"STOREFRONT_UPSTREAM_TIMEOUT" default:"30s"`
}

type CartConfig struct {
	PlaceholderImageURL string        `envconfig:"STOREFRONT_CART_PLACEHOLDER_IMAGE" default:"https://cdn.gebeyalink.et/assets/placeholder-product.png"`
	TTL                 time.Duration `envconfig:"STOREFRONT_CART_TTL" default:"720h"`
}

type AuthConfig struct {
	JWTSecret string `envconfig:"STOREFRONT_JWT_SECRET"`
	Issuer    string `envconfig:"STOREFRONT_JWT_ISSUER" default:"gebeyalink"`
}

// KafkaConfig feeds the storefront analytics stream; leaving brokers empty
// disables publishing entirely.
type KafkaConfig struct {
	Brokers []string `envconfig:"STOREFRONT_KAFKA_BROKERS"`
	Topic   string   `envconfig:"STOREFRONT_KAFKA_TOPIC" default:"storefront-events"`
}

// Enabled reports whether analytics publishing is configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}
