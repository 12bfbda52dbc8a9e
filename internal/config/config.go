// Package config provides configuration management for the coding suite.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/brainsait/drg-suite/internal/domain"
)

// Manager implements the ConfigManager interface using Viper.
type Manager struct {
	config *domain.Config
}

// NewManager loads configuration from config files, environment variables and
// defaults, in that order of precedence.
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

func (m *Manager) loadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/drg-suite/")

	viper.SetEnvPrefix("DRG_SUITE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	m.setDefaults()

	// Config file is optional; defaults and env vars suffice.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

func (m *Manager) setDefaults() {
	viper.SetDefault("environment", "development")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.database", "drg_suite")
	viper.SetDefault("database.username", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.max_conns", 25)
	viper.SetDefault("database.min_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", "5m")
	viper.SetDefault("database.conn_max_idle_time", "1m")

	// Payer gateway defaults
	viper.SetDefault("gateway.base_url", "https://sandbox.nphies.sa/api")
	viper.SetDefault("gateway.client_id", "")
	viper.SetDefault("gateway.client_secret", "")
	viper.SetDefault("gateway.timeout", "15s")
	viper.SetDefault("gateway.rate_limit", 10)
	viper.SetDefault("gateway.breaker_max_failures", 5)
	viper.SetDefault("gateway.breaker_open_period", "60s")

	// Cache defaults
	viper.SetDefault("cache.redis_url", "redis://localhost:6379")
	viper.SetDefault("cache.default_ttl", "5m")
	viper.SetDefault("cache.max_retries", 3)
	viper.SetDefault("cache.pool_size", 10)
	viper.SetDefault("cache.pool_timeout", "4s")

	// Catalog defaults
	viper.SetDefault("catalog.source", "builtin")
	viper.SetDefault("catalog.path", "")

	// Automation defaults
	viper.SetDefault("automation.autonomous_threshold", 0.95)
	viper.SetDefault("automation.semi_autonomous_threshold", 0.75)
	viper.SetDefault("automation.low_complexity_tag", "low-complexity outpatient")

	// Feedback defaults
	viper.SetDefault("feedback.driver", "sqlite")
	viper.SetDefault("feedback.sqlite_path", "./data/feedback.db")
	viper.SetDefault("feedback.dsn", "")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")
}

// GetConfig returns the complete configuration.
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns server configuration.
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetGatewayConfig returns payer-gateway configuration.
func (m *Manager) GetGatewayConfig() *domain.GatewayConfig {
	return &m.config.Gateway
}

// GetDatabaseConfig returns database configuration.
func (m *Manager) GetDatabaseConfig() *domain.DatabaseConfig {
	return &m.config.Database
}

// Reload reloads the configuration.
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration.
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Gateway.BaseURL == "" {
		return fmt.Errorf("gateway base URL is required")
	}

	switch config.Catalog.Source {
	case "builtin":
	case "file":
		if config.Catalog.Path == "" {
			return fmt.Errorf("catalog path is required for file source")
		}
	case "database":
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required for database catalog source")
		}
		if config.Database.Database == "" {
			return fmt.Errorf("database name is required for database catalog source")
		}
	default:
		return fmt.Errorf("invalid catalog source: %s", config.Catalog.Source)
	}

	auto := config.Automation
	if auto.AutonomousThreshold <= 0 || auto.AutonomousThreshold > 1 {
		return fmt.Errorf("autonomous threshold %.2f out of (0,1]", auto.AutonomousThreshold)
	}
	if auto.SemiAutonomousThreshold <= 0 || auto.SemiAutonomousThreshold > auto.AutonomousThreshold {
		return fmt.Errorf("semi-autonomous threshold %.2f must be in (0, %.2f]",
			auto.SemiAutonomousThreshold, auto.AutonomousThreshold)
	}

	switch config.Feedback.Driver {
	case "sqlite":
		if config.Feedback.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required for sqlite feedback driver")
		}
	case "postgres":
		if config.Feedback.DSN == "" {
			return fmt.Errorf("DSN is required for postgres feedback driver")
		}
	default:
		return fmt.Errorf("invalid feedback driver: %s", config.Feedback.Driver)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// IsProduction reports whether the suite runs in production mode.
func (m *Manager) IsProduction() bool {
	return strings.ToLower(m.config.Environment) == "production"
}
