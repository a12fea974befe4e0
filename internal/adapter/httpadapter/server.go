package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/outage-timeline-service/internal/domain"
	"github.com/couchcryptid/outage-timeline-service/internal/pipeline"
)

// Options configures the HTTP boundary.
type Options struct {
	Addr           string
	AllowedOrigins []string

	// DefaultPolicy applies when a request has no policy parameter.
	DefaultPolicy      domain.TemporalPolicy
	MaxRange           time.Duration
	ParquetCompression string
}

// Server exposes health, readiness, metrics and the read-only timeline API.
type Server struct {
	httpServer *http.Server
	snapshots  Snapshots
	builder    *pipeline.Builder
	opts       Options
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the
// /v1 timeline, palette and snapshot routes.
func NewServer(opts Options, ready sharedobs.ReadinessChecker, snapshots Snapshots, builder *pipeline.Builder, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		snapshots: snapshots,
		builder:   builder,
		opts:      opts,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /v1/timeline", s.handleTimeline)
	mux.HandleFunc("GET /v1/palette", s.handlePalette)
	mux.HandleFunc("GET /v1/snapshots", s.handleSnapshots)

	cors := handlers.CORS(
		handlers.AllowedOrigins(opts.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError)),
	)

	s.httpServer = &http.Server{
		Addr:         opts.Addr,
		Handler:      recovery(cors(mux)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
