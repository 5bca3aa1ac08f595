package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"sampahkita/pkg/errors"
)

type Config struct {
	App           AppConfig
	HTTP          HTTPConfig
	Data          DataConfig
	Model         ModelConfig
	Postgres      PostgresConfig
	ClickHouse    ClickHouseConfig
	Redis         RedisConfig
	ErrorTracking ErrorTrackingConfig
	RateLimit     RateLimitConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"sampahkita"`
	Version  string `envconfig:"APP_VERSION" default:"dev"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

type HTTPConfig struct {
	Port            int           `envconfig:"HTTP_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
}

// DataConfig locates the per-year CSV files and the boundary file
type DataConfig struct {
	Dir          string `envconfig:"DATA_DIR" default:"data"`
	FilePattern  string `envconfig:"DATA_FILE_PATTERN" default:"data%d.csv"`
	GeoJSONPath  string `envconfig:"GEOJSON_PATH" default:"geo/jabar_kabupaten.geojson"`
	NameProperty string `envconfig:"GEOJSON_NAME_PROPERTY" default:"KABKOT"`
}

// YearFile returns the dataset path for one year
func (c DataConfig) YearFile(year int) string {
	return filepath.Join(c.Dir, fmt.Sprintf(c.FilePattern, year))
}

// ModelConfig locates fitted artifacts and carries trainer defaults
type ModelConfig struct {
	Dir         string `envconfig:"MODEL_DIR" default:"."`
	Clusters    int    `envconfig:"MODEL_CLUSTERS" default:"3"`
	Seed        int64  `envconfig:"MODEL_SEED" default:"42"`
	NInit       int    `envconfig:"MODEL_N_INIT" default:"10"`
	MaxIter     int    `envconfig:"MODEL_MAX_ITER" default:"300"`
	WarmOnStart bool   `envconfig:"MODEL_WARM_ON_START" default:"true"`
	Pooled      bool   `envconfig:"MODEL_POOLED" default:"false"` // serve pooled/ for every year
}

type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" default:"postgres"`
	Password string `envconfig:"POSTGRES_PASSWORD"`
	Database string `envconfig:"POSTGRES_DB" default:"sampahkita"`
	SSLMode  string `envconfig:"POSTGRES_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"POSTGRES_MAX_CONNS" default:"10"`
}

// Enabled reports whether a host is configured; the registry is optional
func (c PostgresConfig) Enabled() bool { return c.Host != "" }

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

type ClickHouseConfig struct {
	Host     string `envconfig:"CLICKHOUSE_HOST"`
	Port     int    `envconfig:"CLICKHOUSE_PORT" default:"9000"`
	User     string `envconfig:"CLICKHOUSE_USER" default:"default"`
	Password string `envconfig:"CLICKHOUSE_PASSWORD"`
	Database string `envconfig:"CLICKHOUSE_DB" default:"sampahkita"`
}

func (c ClickHouseConfig) Enabled() bool { return c.Host != "" }

type RedisConfig struct {
	Host     string        `envconfig:"REDIS_HOST"`
	Port     int           `envconfig:"REDIS_PORT" default:"6379"`
	Password string        `envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	TTL      time.Duration `envconfig:"REDIS_REPORT_TTL" default:"1h"`
}

func (c RedisConfig) Enabled() bool { return c.Host != "" }

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	Provider    string `envconfig:"ERROR_TRACKING_PROVIDER" default:"sentry"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// RateLimitConfig throttles the JSON API per client address
type RateLimitConfig struct {
	Enabled bool    `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	RPS     float64 `envconfig:"RATE_LIMIT_RPS" default:"20"`
	Burst   int     `envconfig:"RATE_LIMIT_BURST" default:"40"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}
	if cfg.Model.Clusters < 1 {
		return nil, errors.NewValidationError("MODEL_CLUSTERS", "must be at least 1", cfg.Model.Clusters)
	}

	return &cfg, nil
}
