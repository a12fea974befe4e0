// Command export builds one timeline from a snapshot file and writes it as
// CSV, JSON or Parquet.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/couchcryptid/outage-timeline-service/internal/adapter/export"
	"github.com/couchcryptid/outage-timeline-service/internal/adapter/source"
	"github.com/couchcryptid/outage-timeline-service/internal/config"
	"github.com/couchcryptid/outage-timeline-service/internal/domain"
	"github.com/couchcryptid/outage-timeline-service/internal/observability"
	"github.com/couchcryptid/outage-timeline-service/internal/pipeline"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "export:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read .env: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	snapshot := fs.String("snapshot", "", "snapshot file (default: newest in DATA_DIR)")
	areas := fs.String("areas", domain.AllToken, "comma-separated areas")
	categories := fs.String("categories", domain.AllToken, "comma-separated generation types")
	start := fs.String("start", "", "range start, e.g. 2024-01-01 (default: a week before today)")
	end := fs.String("end", "", "range end, e.g. 2024-01-07 (default: today)")
	policy := fs.String("policy", cfg.TemporalPolicy.String(), "temporal policy: overlap or endpoint")
	format := fs.String("format", "csv", "output format: csv, json or parquet")
	out := fs.String("out", "", "output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	write, err := writerFor(*format, cfg.ExportCompression)
	if err != nil {
		return err
	}

	clock := clockwork.NewRealClock()
	req := pipeline.DefaultRequest(clock)
	req.MaxRange = cfg.MaxRange
	req.Areas = splitList(*areas)
	req.Categories = splitList(*categories)
	if req.Policy, err = domain.ParseTemporalPolicy(*policy); err != nil {
		return err
	}
	if *start != "" {
		if req.Start, err = pipeline.ParseRangeBound(*start, false); err != nil {
			return err
		}
	}
	if *end != "" {
		if req.End, err = pipeline.ParseRangeBound(*end, true); err != nil {
			return err
		}
	}

	var snap source.Snapshot
	if *snapshot != "" {
		snap, err = source.LoadFile(*snapshot)
	} else {
		snap, err = source.LatestSnapshot(cfg.DataDir, cfg.SnapshotPrefix)
	}
	if err != nil {
		return err
	}

	palette, err := domain.LoadPaletteFile(cfg.PaletteFile)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	builder := pipeline.NewBuilder(palette, cfg.OverlayAlpha, clock, logger, observability.NewMetricsWithRegistry(prometheus.NewRegistry()))

	res, err := builder.Build(context.Background(), snap.Records, req)
	if err != nil {
		return err
	}

	if *out == "" {
		return write(stdout, res.Timeline)
	}

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	if err := write(f, res.Timeline); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// writerFor resolves an output format to its serializer.
func writerFor(format, compression string) (func(io.Writer, domain.Timeline) error, error) {
	switch strings.ToLower(format) {
	case "csv":
		return export.WriteCSV, nil
	case "json":
		return export.WriteJSON, nil
	case "parquet":
		return func(w io.Writer, tl domain.Timeline) error {
			return export.WriteParquet(w, tl, compression)
		}, nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
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
