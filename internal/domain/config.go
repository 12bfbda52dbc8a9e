package domain

import (
	"time"
)

// Config is the complete application configuration.
type Config struct {
	Environment string           `mapstructure:"environment"`
	Server      ServerConfig     `mapstructure:"server"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Gateway     GatewayConfig    `mapstructure:"gateway"`
	Cache       CacheConfig      `mapstructure:"cache"`
	Catalog     CatalogConfig    `mapstructure:"catalog"`
	Automation  AutomationConfig `mapstructure:"automation"`
	Feedback    FeedbackConfig   `mapstructure:"feedback"`
	Logging     LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig holds PostgreSQL settings for the catalog repository.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// GatewayConfig holds payer-gateway (nphies) connector settings. Retry,
// timeout and backoff policy belong to the connector, not the engine.
type GatewayConfig struct {
	BaseURL            string        `mapstructure:"base_url"`
	ClientID           string        `mapstructure:"client_id"`
	ClientSecret       string        `mapstructure:"client_secret"`
	Timeout            time.Duration `mapstructure:"timeout"`
	RateLimit          int           `mapstructure:"rate_limit"`
	BreakerMaxFailures uint32        `mapstructure:"breaker_max_failures"`
	BreakerOpenPeriod  time.Duration `mapstructure:"breaker_open_period"`
}

// CacheConfig holds Redis settings for the gateway claim-status cache.
type CacheConfig struct {
	RedisURL    string        `mapstructure:"redis_url"`
	DefaultTTL  time.Duration `mapstructure:"default_ttl"`
	MaxRetries  int           `mapstructure:"max_retries"`
	PoolSize    int           `mapstructure:"pool_size"`
	PoolTimeout time.Duration `mapstructure:"pool_timeout"`
}

// CatalogConfig controls where the term catalog is loaded from. When Path is
// empty the built-in dataset is used; Source may also select the database.
type CatalogConfig struct {
	Source string `mapstructure:"source"` // "builtin", "file" or "database"
	Path   string `mapstructure:"path"`
}

// AutomationConfig holds the phase-decision thresholds. They are configuration
// so deployments can tighten automation without touching decision logic.
type AutomationConfig struct {
	AutonomousThreshold     float64 `mapstructure:"autonomous_threshold"`
	SemiAutonomousThreshold float64 `mapstructure:"semi_autonomous_threshold"`
	LowComplexityTag        string  `mapstructure:"low_complexity_tag"`
}

// FeedbackConfig selects and configures the coder-feedback store.
type FeedbackConfig struct {
	Driver     string `mapstructure:"driver"` // "sqlite" or "postgres"
	SQLitePath string `mapstructure:"sqlite_path"`
	DSN        string `mapstructure:"dsn"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
