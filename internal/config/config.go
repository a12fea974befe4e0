package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/outage-timeline-service/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataDir                 string
	SnapshotPrefix          string
	SnapshotCacheSize       int
	SnapshotRefreshInterval time.Duration

	TemporalPolicy domain.TemporalPolicy
	MaxRange       time.Duration
	PaletteFile    string
	OverlayAlpha   float64

	HTTPAddr           string
	CORSAllowedOrigins []string
	LogLevel           string
	LogFormat          string
	ShutdownTimeout    time.Duration

	// Kafka publishing of refreshed timelines.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaTimelineTopic string

	ExportCompression string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	refreshStr := sharedcfg.EnvOrDefault("SNAPSHOT_REFRESH_INTERVAL", "15m")
	refresh, err := time.ParseDuration(refreshStr)
	if err != nil || refresh <= 0 {
		return nil, errors.New("invalid SNAPSHOT_REFRESH_INTERVAL")
	}

	policy, err := domain.ParseTemporalPolicy(sharedcfg.EnvOrDefault("TEMPORAL_POLICY", "overlap"))
	if err != nil {
		return nil, fmt.Errorf("invalid TEMPORAL_POLICY: %w", err)
	}

	maxRange, err := time.ParseDuration(sharedcfg.EnvOrDefault("MAX_RANGE", "26280h"))
	if err != nil || maxRange <= 0 {
		return nil, errors.New("invalid MAX_RANGE")
	}

	alpha, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("OVERLAY_ALPHA", "0.3"), 64)
	if err != nil || alpha < 0 || alpha > 1 {
		return nil, errors.New("invalid OVERLAY_ALPHA: must be within 0..1")
	}

	compression := strings.ToUpper(sharedcfg.EnvOrDefault("EXPORT_COMPRESSION", "SNAPPY"))
	switch compression {
	case "SNAPPY", "GZIP", "NONE":
	default:
		return nil, fmt.Errorf("invalid EXPORT_COMPRESSION %q", compression)
	}

	cfg := &Config{
		DataDir:                 sharedcfg.EnvOrDefault("DATA_DIR", "./data"),
		SnapshotPrefix:          sharedcfg.EnvOrDefault("SNAPSHOT_PREFIX", "outages_data_"),
		SnapshotCacheSize:       parseSnapshotCacheSize(),
		SnapshotRefreshInterval: refresh,

		TemporalPolicy: policy,
		MaxRange:       maxRange,
		PaletteFile:    os.Getenv("PALETTE_FILE"),
		OverlayAlpha:   alpha,

		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		CORSAllowedOrigins: splitList(sharedcfg.EnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,

		KafkaEnabled:       os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTimelineTopic: sharedcfg.EnvOrDefault("KAFKA_TIMELINE_TOPIC", "outage-timeline"),

		ExportCompression: compression,
	}

	if cfg.DataDir == "" {
		return nil, errors.New("DATA_DIR is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaTimelineTopic == "" {
		return nil, errors.New("KAFKA_TIMELINE_TOPIC is required when KAFKA_ENABLED is true")
	}

	return cfg, nil
}

func parseSnapshotCacheSize() int {
	if s := os.Getenv("SNAPSHOT_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 8
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
