package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/outage-timeline-service/internal/domain"
	"github.com/couchcryptid/outage-timeline-service/internal/observability"
)

// ErrNoData is returned when no record passes the selection. Aggregation is
// not attempted, so callers can tell "nothing to draw" apart from an
// all-zero timeline.
var ErrNoData = errors.New("no records match the selection")

// Build outcomes recorded on the builds counter.
const (
	outcomeOK        = "ok"
	outcomeNoData    = "no_data"
	outcomeMalformed = "malformed"
	outcomeInvalid   = "invalid"
)

// Result is one built timeline with the colours its layers are drawn in.
type Result struct {
	RunID       uuid.UUID
	Request     Request
	Timeline    domain.Timeline
	Palette     domain.Palette
	Selected    int
	GeneratedAt time.Time
}

// Overlay pairs a primary timeline with one built from a comparison
// snapshot. Comparison is nil when the comparison selection is empty.
type Overlay struct {
	Primary         Result
	Comparison      *Result
	ComparisonEmpty bool
}

// Builder runs the filter and aggregation stages and records their outcome.
type Builder struct {
	palette      domain.Palette
	overlayAlpha float64
	clock        clockwork.Clock
	logger       *slog.Logger
	metrics      *observability.Metrics
}

// NewBuilder creates a Builder. The palette colours primary timelines; the
// comparison layer of an overlay uses the same colours at overlayAlpha.
func NewBuilder(palette domain.Palette, overlayAlpha float64, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Builder {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Builder{
		palette:      palette,
		overlayAlpha: overlayAlpha,
		clock:        clock,
		logger:       logger,
		metrics:      metrics,
	}
}

// Clock returns the time source the builder stamps results with.
func (b *Builder) Clock() clockwork.Clock { return b.clock }

// Palette returns the primary palette.
func (b *Builder) Palette() domain.Palette { return b.palette }

// Build filters raws by req and aggregates the survivors onto the hourly
// grid. It returns ErrNoData when nothing is selected and the filter's
// *multierror.Error when any candidate record is malformed.
func (b *Builder) Build(ctx context.Context, raws []domain.RawRecord, req Request) (Result, error) {
	return b.build(ctx, raws, req, b.palette)
}

// BuildOverlay builds the primary and comparison timelines concurrently with
// the same request. An empty comparison selection is reported through
// Overlay.ComparisonEmpty rather than as an error.
func (b *Builder) BuildOverlay(ctx context.Context, primary, comparison []domain.RawRecord, req Request) (Overlay, error) {
	var (
		out     Overlay
		cmpRes  Result
		cmpErr  error
		faded   = b.palette.WithAlpha(b.overlayAlpha)
		g, gctx = errgroup.WithContext(ctx)
	)
	g.Go(func() error {
		res, err := b.build(gctx, primary, req, b.palette)
		if err != nil {
			return err
		}
		out.Primary = res
		return nil
	})
	g.Go(func() error {
		cmpRes, cmpErr = b.build(gctx, comparison, req, faded)
		if cmpErr != nil && !errors.Is(cmpErr, ErrNoData) {
			return fmt.Errorf("comparison: %w", cmpErr)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Overlay{}, err
	}

	if errors.Is(cmpErr, ErrNoData) {
		out.ComparisonEmpty = true
		return out, nil
	}
	cmpRes.RunID = out.Primary.RunID
	out.Comparison = &cmpRes
	return out, nil
}

func (b *Builder) build(ctx context.Context, raws []domain.RawRecord, req Request, palette domain.Palette) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := req.Validate(); err != nil {
		b.metrics.Builds.WithLabelValues(outcomeInvalid).Inc()
		return Result{}, err
	}

	started := b.clock.Now()
	b.metrics.RecordsLoaded.Add(float64(len(raws)))

	records, err := domain.Filter(raws, req.Selection())
	if err != nil {
		n := 1
		var merr *multierror.Error
		if errors.As(err, &merr) {
			n = len(merr.Errors)
		}
		b.metrics.MalformedRecords.Add(float64(n))
		b.metrics.Builds.WithLabelValues(outcomeMalformed).Inc()
		b.logger.Warn("malformed records in batch", "count", n, "error", err)
		return Result{}, fmt.Errorf("filter records: %w", err)
	}

	if len(records) == 0 {
		b.metrics.Builds.WithLabelValues(outcomeNoData).Inc()
		b.logger.Info("no records selected",
			"areas", req.Areas,
			"categories", req.Categories,
			"policy", req.Policy.String(),
		)
		return Result{}, ErrNoData
	}
	b.metrics.RecordsSelected.Add(float64(len(records)))

	tl := domain.Aggregate(records, req.Start, req.End)
	if tl.Unmapped > 0 {
		b.metrics.UnmappedRecords.Add(float64(tl.Unmapped))
		b.logger.Debug("unmapped categories dropped", "count", tl.Unmapped)
	}
	if tl.EmptyIntervals > 0 {
		b.metrics.EmptyIntervals.Add(float64(tl.EmptyIntervals))
		b.logger.Debug("records with empty interval", "count", tl.EmptyIntervals)
	}

	colours := make(domain.Palette, len(tl.Columns))
	for _, c := range tl.Categories() {
		if col, ok := palette[c]; ok {
			colours[c] = col
		}
	}

	b.metrics.Builds.WithLabelValues(outcomeOK).Inc()
	b.metrics.GridRows.Observe(float64(tl.Rows()))
	b.metrics.BuildDuration.Observe(b.clock.Since(started).Seconds())

	return Result{
		RunID:       uuid.New(),
		Request:     req,
		Timeline:    tl,
		Palette:     colours,
		Selected:    len(records),
		GeneratedAt: b.clock.Now(),
	}, nil
}
