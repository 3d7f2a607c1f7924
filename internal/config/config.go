package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8000"`
	OpsAddr         string        `env:"OPS_ADDR" envDefault:":8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Location assumed when a request names none.
	DefaultLocation string `env:"DEFAULT_LOCATION" envDefault:"Seattle"`

	// Storage. An empty path selects the in-memory store.
	StorePath string `env:"STORE_PATH"`

	// Background capture sweeps.
	CaptureEnabled     bool          `env:"CAPTURE_ENABLED" envDefault:"true"`
	CaptureInterval    time.Duration `env:"CAPTURE_INTERVAL" envDefault:"1h"`
	CaptureConcurrency int           `env:"CAPTURE_CONCURRENCY" envDefault:"4"`

	// Observation stream. No brokers means publishing is disabled.
	KafkaBrokers []string `env:"KAFKA_BROKERS"`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"forest.observations"`

	// Satellite vegetation provider.
	SatelliteURL       string        `env:"SATELLITE_URL"`
	SatelliteAPIKey    string        `env:"SATELLITE_API_KEY"`
	SatelliteEnabled   bool          `env:"-"`
	SatelliteTimeout   time.Duration `env:"SATELLITE_TIMEOUT" envDefault:"5s"`
	SatelliteCacheSize int           `env:"SATELLITE_CACHE_SIZE" envDefault:"1000"`

	// Trend window bounds.
	TrendDefaultDays int `env:"TREND_DEFAULT_DAYS" envDefault:"30"`
	TrendMaxDays     int `env:"TREND_MAX_DAYS" envDefault:"365"`
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	// A configured URL implies the provider is on; SATELLITE_ENABLED
	// overrides either way.
	cfg.SatelliteEnabled = cfg.SatelliteURL != ""
	if v := os.Getenv("SATELLITE_ENABLED"); v != "" {
		cfg.SatelliteEnabled = v == "true"
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("HTTP_ADDR is required")
	}
	if cfg.OpsAddr == "" {
		return nil, errors.New("OPS_ADDR is required")
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, errors.New("invalid SHUTDOWN_TIMEOUT")
	}
	if len(strings.TrimSpace(cfg.DefaultLocation)) < 2 {
		return nil, errors.New("invalid DEFAULT_LOCATION")
	}
	if cfg.CaptureInterval <= 0 {
		return nil, errors.New("invalid CAPTURE_INTERVAL")
	}
	if cfg.CaptureConcurrency <= 0 {
		return nil, errors.New("invalid CAPTURE_CONCURRENCY")
	}
	if cfg.SatelliteTimeout <= 0 {
		return nil, errors.New("invalid SATELLITE_TIMEOUT")
	}
	if cfg.SatelliteCacheSize <= 0 {
		return nil, errors.New("invalid SATELLITE_CACHE_SIZE")
	}
	if cfg.SatelliteEnabled && cfg.SatelliteURL == "" {
		return nil, errors.New("SATELLITE_ENABLED is true but SATELLITE_URL is not set")
	}
	if cfg.TrendMaxDays < 1 {
		return nil, errors.New("invalid TREND_MAX_DAYS")
	}
	if cfg.TrendDefaultDays < 1 || cfg.TrendDefaultDays > cfg.TrendMaxDays {
		return nil, errors.New("invalid TREND_DEFAULT_DAYS")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// KafkaEnabled reports whether observation publishing is configured.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}
