// Package config loads the server configuration from environment
// variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Config holds the full server configuration
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	APIToken string `env:"API_TOKEN" envDefault:"dev-token"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DB        DBConfig
	Refresh   RefreshConfig
	CacheTTL  int `env:"CACHE_TTL_SECONDS" envDefault:"300"`
	CacheSize int `env:"CACHE_MAX_ENTRIES" envDefault:"10000"`
}

// DBConfig holds the PostgreSQL connection settings
type DBConfig struct {
	ConnStr  string `env:"DB_CONN_STR"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
	Name     string `env:"DB_NAME" envDefault:"riskparity"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

// RefreshConfig controls the background price refresh job
type RefreshConfig struct {
	Enabled  bool   `env:"REFRESH_ENABLED" envDefault:"true"`
	Schedule string `env:"REFRESH_SCHEDULE" envDefault:"@hourly"`
}

// Load parses the configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// ConnectionString builds the lib/pq connection string, preferring an
// explicit DB_CONN_STR when set
func (c DBConfig) ConnectionString() string {
	if c.ConnStr != "" {
		return c.ConnStr
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}
