package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"
)

// Settings sources.
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Store settings
	SettingsSource string `envconfig:"SETTINGS_SOURCE" default:"file"`
	SettingsDir    string `envconfig:"SETTINGS_DIR" default:"./stores"`
	DatabaseURL    string `envconfig:"DATABASE_URL"`

	// Fallbacks for settings a store left empty
	DefaultCurrency   string `envconfig:"DEFAULT_CURRENCY" default:"USD"`
	DefaultCountry    string `envconfig:"DEFAULT_COUNTRY" default:"US"`
	DefaultWeightUnit string `envconfig:"DEFAULT_WEIGHT_UNIT" default:"kg"`

	// Calculator cache
	CacheTTL             time.Duration `envconfig:"CACHE_TTL" default:"10m"`
	CacheCleanupInterval time.Duration `envconfig:"CACHE_CLEANUP_INTERVAL" default:"20m"`
	PreloadStores        bool          `envconfig:"PRELOAD_STORES" default:"false"`

	// Per-client rate limiting; zero RPS disables it
	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"20"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"40"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"shiprate"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables. Variables from
// CONFIG_FILE, or from .env when CONFIG_FILE is unset, are loaded first
// without overriding the environment.
func Load() (*Config, error) {
	if err := loadDotenv(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotenv() error {
	if file := os.Getenv("CONFIG_FILE"); file != "" {
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("loading config file %s: %w", file, err)
		}
		return nil
	}
	// .env is optional
	_ = godotenv.Load()
	return nil
}

// Validate checks rules spanning several variables.
func (c *Config) Validate() error {
	switch c.SettingsSource {
	case SourceFile:
		if c.SettingsDir == "" {
			return fmt.Errorf("SETTINGS_DIR is required when SETTINGS_SOURCE=%s", SourceFile)
		}
	case SourcePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when SETTINGS_SOURCE=%s", SourcePostgres)
		}
	default:
		return fmt.Errorf("SETTINGS_SOURCE must be %q or %q, got %q", SourceFile, SourcePostgres, c.SettingsSource)
	}
	if len(strings.TrimSpace(c.DefaultCountry)) != 2 {
		return fmt.Errorf("DEFAULT_COUNTRY must be a 2-letter code, got %q", c.DefaultCountry)
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}
	return nil
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.String("settings.source", c.SettingsSource),
		attribute.String("settings.default_currency", c.DefaultCurrency),
	}
}
