package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSatelliteURL = "https://satellite.example.com/v1"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.HTTPAddr)
	assert.Equal(t, ":8080", cfg.OpsAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "Seattle", cfg.DefaultLocation)
	assert.Empty(t, cfg.StorePath)
	assert.True(t, cfg.CaptureEnabled)
	assert.Equal(t, time.Hour, cfg.CaptureInterval)
	assert.Equal(t, 4, cfg.CaptureConcurrency)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "forest.observations", cfg.KafkaTopic)
	assert.False(t, cfg.KafkaEnabled())
	assert.False(t, cfg.SatelliteEnabled)
	assert.Empty(t, cfg.SatelliteURL)
	assert.Equal(t, 5*time.Second, cfg.SatelliteTimeout)
	assert.Equal(t, 1000, cfg.SatelliteCacheSize)
	assert.Equal(t, 30, cfg.TrendDefaultDays)
	assert.Equal(t, 365, cfg.TrendMaxDays)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("OPS_ADDR", ":9100")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("DEFAULT_LOCATION", "Mumbai")
	t.Setenv("STORE_PATH", "/var/lib/ecomind/forest.db")
	t.Setenv("CAPTURE_ENABLED", "false")
	t.Setenv("CAPTURE_INTERVAL", "15m")
	t.Setenv("CAPTURE_CONCURRENCY", "8")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom.observations")
	t.Setenv("SATELLITE_URL", testSatelliteURL)
	t.Setenv("SATELLITE_API_KEY", "sat-key-123")
	t.Setenv("SATELLITE_TIMEOUT", "10s")
	t.Setenv("SATELLITE_CACHE_SIZE", "500")
	t.Setenv("TREND_DEFAULT_DAYS", "14")
	t.Setenv("TREND_MAX_DAYS", "180")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, ":9100", cfg.OpsAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "Mumbai", cfg.DefaultLocation)
	assert.Equal(t, "/var/lib/ecomind/forest.db", cfg.StorePath)
	assert.False(t, cfg.CaptureEnabled)
	assert.Equal(t, 15*time.Minute, cfg.CaptureInterval)
	assert.Equal(t, 8, cfg.CaptureConcurrency)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom.observations", cfg.KafkaTopic)
	assert.True(t, cfg.KafkaEnabled())
	assert.True(t, cfg.SatelliteEnabled)
	assert.Equal(t, testSatelliteURL, cfg.SatelliteURL)
	assert.Equal(t, "sat-key-123", cfg.SatelliteAPIKey)
	assert.Equal(t, 10*time.Second, cfg.SatelliteTimeout)
	assert.Equal(t, 500, cfg.SatelliteCacheSize)
	assert.Equal(t, 14, cfg.TrendDefaultDays)
	assert.Equal(t, 180, cfg.TrendMaxDays)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
}

func TestLoad_NegativeShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_DefaultLocationTooShort(t *testing.T) {
	t.Setenv("DEFAULT_LOCATION", " x ")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEFAULT_LOCATION")
}

func TestLoad_InvalidCaptureInterval(t *testing.T) {
	t.Setenv("CAPTURE_INTERVAL", "0s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CAPTURE_INTERVAL")
}

func TestLoad_InvalidCaptureConcurrency(t *testing.T) {
	t.Setenv("CAPTURE_CONCURRENCY", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CAPTURE_CONCURRENCY")
}

func TestLoad_InvalidSatelliteTimeout(t *testing.T) {
	t.Setenv("SATELLITE_TIMEOUT", "-5s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SATELLITE_TIMEOUT")
}

func TestLoad_InvalidSatelliteCacheSize(t *testing.T) {
	t.Setenv("SATELLITE_CACHE_SIZE", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SATELLITE_CACHE_SIZE")
}

func TestLoad_SatelliteEnabledWithoutURL(t *testing.T) {
	t.Setenv("SATELLITE_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SATELLITE_URL")
}

func TestLoad_SatelliteURLImpliesEnabled(t *testing.T) {
	t.Setenv("SATELLITE_URL", testSatelliteURL)
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.SatelliteEnabled)
}

func TestLoad_SatelliteExplicitlyDisabled(t *testing.T) {
	t.Setenv("SATELLITE_URL", testSatelliteURL)
	t.Setenv("SATELLITE_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.SatelliteEnabled)
}

func TestLoad_InvalidTrendDefaultDays(t *testing.T) {
	t.Setenv("TREND_DEFAULT_DAYS", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TREND_DEFAULT_DAYS")
}

func TestLoad_TrendDefaultAboveMax(t *testing.T) {
	t.Setenv("TREND_DEFAULT_DAYS", "400")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TREND_DEFAULT_DAYS")
}

func TestLoad_SingleKafkaBroker(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker1:9092")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"broker1:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
}
