package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/outage-timeline-service/internal/domain"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "outages_data_", cfg.SnapshotPrefix)
	assert.Equal(t, 8, cfg.SnapshotCacheSize)
	assert.Equal(t, 15*time.Minute, cfg.SnapshotRefreshInterval)
	assert.Equal(t, domain.PolicyOverlap, cfg.TemporalPolicy)
	assert.Equal(t, 26280*time.Hour, cfg.MaxRange)
	assert.Empty(t, cfg.PaletteFile)
	assert.InDelta(t, 0.3, cfg.OverlayAlpha, 1e-9)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "outage-timeline", cfg.KafkaTimelineTopic)
	assert.Equal(t, "SNAPPY", cfg.ExportCompression)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("DATA_DIR", "/srv/hjks")
	t.Setenv("SNAPSHOT_PREFIX", "hjks_")
	t.Setenv("SNAPSHOT_CACHE_SIZE", "3")
	t.Setenv("SNAPSHOT_REFRESH_INTERVAL", "1h")
	t.Setenv("TEMPORAL_POLICY", "endpoint")
	t.Setenv("MAX_RANGE", "720h")
	t.Setenv("PALETTE_FILE", "/etc/palette.yaml")
	t.Setenv("OVERLAY_ALPHA", "0.5")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TIMELINE_TOPIC", "custom-timeline")
	t.Setenv("EXPORT_COMPRESSION", "gzip")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/hjks", cfg.DataDir)
	assert.Equal(t, "hjks_", cfg.SnapshotPrefix)
	assert.Equal(t, 3, cfg.SnapshotCacheSize)
	assert.Equal(t, time.Hour, cfg.SnapshotRefreshInterval)
	assert.Equal(t, domain.PolicyEndpoint, cfg.TemporalPolicy)
	assert.Equal(t, 720*time.Hour, cfg.MaxRange)
	assert.Equal(t, "/etc/palette.yaml", cfg.PaletteFile)
	assert.InDelta(t, 0.5, cfg.OverlayAlpha, 1e-9)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-timeline", cfg.KafkaTimelineTopic)
	assert.Equal(t, "GZIP", cfg.ExportCompression)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidRefreshInterval(t *testing.T) {
	t.Setenv("SNAPSHOT_REFRESH_INTERVAL", "-5m")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SNAPSHOT_REFRESH_INTERVAL")
}

func TestLoad_InvalidMaxRange(t *testing.T) {
	for _, v := range []string{"3y", "0s", "-1h"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("MAX_RANGE", v)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "MAX_RANGE")
		})
	}
}

func TestLoad_InvalidTemporalPolicy(t *testing.T) {
	t.Setenv("TEMPORAL_POLICY", "intersect")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TEMPORAL_POLICY")
}

func TestLoad_InvalidOverlayAlpha(t *testing.T) {
	for _, v := range []string{"abc", "-0.1", "1.5"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("OVERLAY_ALPHA", v)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "OVERLAY_ALPHA")
		})
	}
}

func TestLoad_InvalidCompression(t *testing.T) {
	t.Setenv("EXPORT_COMPRESSION", "lz4")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EXPORT_COMPRESSION")
}

func TestLoad_InvalidCacheSizeFallsBack(t *testing.T) {
	t.Setenv("SNAPSHOT_CACHE_SIZE", "zero")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.SnapshotCacheSize)
}
