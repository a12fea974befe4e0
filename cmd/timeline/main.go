package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/outage-timeline-service/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/outage-timeline-service/internal/adapter/kafka"
	"github.com/couchcryptid/outage-timeline-service/internal/adapter/source"
	"github.com/couchcryptid/outage-timeline-service/internal/config"
	"github.com/couchcryptid/outage-timeline-service/internal/domain"
	"github.com/couchcryptid/outage-timeline-service/internal/observability"
	"github.com/couchcryptid/outage-timeline-service/internal/pipeline"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	palette, err := domain.LoadPaletteFile(cfg.PaletteFile)
	if err != nil {
		logger.Error("failed to load palette", "error", err, "path", cfg.PaletteFile)
		os.Exit(1)
	}

	builder := pipeline.NewBuilder(palette, cfg.OverlayAlpha, clock, logger, metrics)
	loader := source.NewCachedLoader(cfg.SnapshotCacheSize, metrics)
	store := source.NewStore(cfg.DataDir, cfg.SnapshotPrefix, loader, clock, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Published on every new snapshot when Kafka is enabled.
	var publisher *kafkaadapter.Publisher
	var onChange func(context.Context, source.Snapshot)
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, logger, metrics)
		onChange = func(ctx context.Context, snap source.Snapshot) {
			req := pipeline.DefaultRequest(clock)
			req.Policy = cfg.TemporalPolicy
			req.MaxRange = cfg.MaxRange
			res, err := builder.Build(ctx, snap.Records, req)
			if err != nil {
				logger.Warn("skipping timeline publish", "snapshot", snap.Name, "error", err)
				return
			}
			if err := publisher.Publish(ctx, res); err != nil {
				logger.Error("timeline publish failed", "snapshot", snap.Name, "error", err)
			}
		}
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaTimelineTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	if snap, _, err := store.Refresh(ctx); err != nil {
		logger.Warn("initial snapshot load failed", "error", err, "dir", cfg.DataDir)
	} else if onChange != nil {
		onChange(ctx, snap)
	}

	srv := httpadapter.NewServer(httpadapter.Options{
		Addr:               cfg.HTTPAddr,
		AllowedOrigins:     cfg.CORSAllowedOrigins,
		DefaultPolicy:      cfg.TemporalPolicy,
		MaxRange:           cfg.MaxRange,
		ParquetCompression: cfg.ExportCompression,
	}, store, store, builder, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Watch the data directory for newer snapshots.
	go store.Watch(ctx, cfg.SnapshotRefreshInterval, onChange)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
