package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"quotewatch/pkg/errors"
)

type Config struct {
	App           AppConfig
	Persistence   PersistenceConfig
	Redis         RedisConfig
	Postgres      PostgresConfig
	ClickHouse    ClickHouseConfig
	Kafka         KafkaConfig
	QuoteService  QuoteServiceConfig
	Refresh       RefreshConfig
	Session       SessionConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"quotewatch"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	Version  string `envconfig:"APP_VERSION" default:"dev"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
}

// Persistence backends
const (
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type PersistenceConfig struct {
	Backend   string `envconfig:"PERSISTENCE_BACKEND" default:"redis"`
	KeyPrefix string `envconfig:"PERSISTENCE_KEY_PREFIX" default:"watchlists"`
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" default:"quotewatch"`
	Password string `envconfig:"POSTGRES_PASSWORD"`
	Database string `envconfig:"POSTGRES_DB" default:"quotewatch"`
	SSLMode  string `envconfig:"POSTGRES_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"POSTGRES_MAX_CONNS" default:"5"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// ClickHouseConfig configures the optional quote history sink
type ClickHouseConfig struct {
	Enabled       bool          `envconfig:"QUOTE_HISTORY_ENABLED" default:"false"`
	Host          string        `envconfig:"CLICKHOUSE_HOST" default:"localhost"`
	Port          int           `envconfig:"CLICKHOUSE_PORT" default:"9000"`
	User          string        `envconfig:"CLICKHOUSE_USER" default:"default"`
	Password      string        `envconfig:"CLICKHOUSE_PASSWORD"`
	Database      string        `envconfig:"CLICKHOUSE_DB" default:"quotewatch"`
	FlushInterval time.Duration `envconfig:"QUOTE_HISTORY_FLUSH_INTERVAL" default:"5s"`
	BatchSize     int           `envconfig:"QUOTE_HISTORY_BATCH_SIZE" default:"500"`
}

// KafkaConfig configures the optional data-changed event stream
type KafkaConfig struct {
	Enabled         bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	Brokers         []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	WatchlistsTopic string   `envconfig:"KAFKA_TOPIC_WATCHLISTS" default:"watchlists.refreshed"`
}

type QuoteServiceConfig struct {
	QuotesURL  string        `envconfig:"QUOTE_SERVICE_URL" default:"http://finance.yahoo.com/d/quotes.csv?f=sabl1&s="`
	SearchURL  string        `envconfig:"SYMBOL_SEARCH_URL" default:"https://trade.tastyworks.com/symbol_search/search/"`
	Timeout    time.Duration `envconfig:"QUOTE_SERVICE_TIMEOUT" default:"10s"`
	RPS        float64       `envconfig:"QUOTE_SERVICE_RPS" default:"2"`
	StagingDir string        `envconfig:"QUOTE_STAGING_DIR"` // empty = os.TempDir()
}

// RefreshConfig holds the two scheduler timings: quiet for GraceDelay, then tick every Interval
type RefreshConfig struct {
	GraceDelay time.Duration `envconfig:"REFRESH_GRACE_DELAY" default:"10s"`
	Interval   time.Duration `envconfig:"REFRESH_INTERVAL" default:"5s"`
}

type SessionConfig struct {
	UserID   string `envconfig:"SESSION_USER_ID"`
	UserName string `envconfig:"SESSION_USER_NAME" default:"My"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express
func (c *Config) Validate() error {
	if c.Refresh.GraceDelay <= 0 || c.Refresh.Interval <= 0 {
		return errors.NewValidationError("refresh", "delays must be positive", c.Refresh)
	}
	if c.Refresh.Interval >= c.Refresh.GraceDelay {
		return errors.NewValidationError("REFRESH_INTERVAL", "must be shorter than REFRESH_GRACE_DELAY", c.Refresh.Interval)
	}

	switch c.Persistence.Backend {
	case BackendRedis, BackendPostgres:
	default:
		return errors.NewValidationError("PERSISTENCE_BACKEND", "unknown backend", c.Persistence.Backend)
	}

	if c.QuoteService.RPS <= 0 {
		return errors.NewValidationError("QUOTE_SERVICE_RPS", "must be positive", c.QuoteService.RPS)
	}

	return nil
}
