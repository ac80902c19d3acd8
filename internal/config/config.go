package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the attribution service.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Redis       RedisConfig       `yaml:"redis"`
	Warehouse   WarehouseConfig   `yaml:"warehouse"`
	Attribution AttributionConfig `yaml:"attribution"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the configured host, defaulting to all interfaces.
func (c ServerConfig) GetHost() string {
	if c.Host == "" {
		return "0.0.0.0"
	}
	return c.Host
}

// DatabaseConfig holds the primary Postgres event store settings.
type DatabaseConfig struct {
	URL             string `yaml:"url"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime_minutes"`
}

// RedisConfig holds the report-cache settings. The cache is optional; an
// empty URL disables it.
type RedisConfig struct {
	URL             string `yaml:"url"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
}

// CacheTTL returns the report cache TTL with the 5-minute default.
func (c RedisConfig) CacheTTL() time.Duration {
	if c.CacheTTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// WarehouseConfig holds the optional Snowflake bulk event source used for
// date ranges beyond the hot store's retention.
type WarehouseConfig struct {
	Enabled       bool   `yaml:"enabled"`
	DSN           string `yaml:"dsn"`
	RetentionDays int    `yaml:"hot_retention_days"`
}

// AttributionConfig holds engine defaults applied when an organization has
// no explicit settings row.
type AttributionConfig struct {
	DefaultModel        string  `yaml:"default_model"`
	DefaultWindowDays   int     `yaml:"default_window_days"`
	DefaultHalfLifeDays float64 `yaml:"default_half_life_days"`
	ComparisonTopN      int     `yaml:"comparison_top_n"`
	MaxDateRangeDays    int     `yaml:"max_date_range_days"`
	MaxEventsPerRequest int     `yaml:"max_events_per_request"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	RedactPII *bool  `yaml:"redact_pii"`
}

// Load reads the YAML config file and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// LoadFromEnv loads the config file, then overrides settings from the
// environment (.env is honored when present). A missing config file is not
// an error; env-only deployments run on defaults plus overrides.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = &Config{}
		cfg.applyDefaults()
	} else if err != nil {
		return nil, err
	}

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("SNOWFLAKE_DSN"); v != "" {
		cfg.Warehouse.DSN = v
		cfg.Warehouse.Enabled = true
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Attribution.DefaultModel == "" {
		c.Attribution.DefaultModel = "last_touch"
	}
	if c.Attribution.DefaultWindowDays == 0 {
		c.Attribution.DefaultWindowDays = 30
	}
	if c.Attribution.DefaultHalfLifeDays == 0 {
		c.Attribution.DefaultHalfLifeDays = 7
	}
	if c.Attribution.ComparisonTopN == 0 {
		c.Attribution.ComparisonTopN = 10
	}
	if c.Attribution.MaxDateRangeDays == 0 {
		c.Attribution.MaxDateRangeDays = 365
	}
	if c.Warehouse.RetentionDays == 0 {
		c.Warehouse.RetentionDays = 90
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}
