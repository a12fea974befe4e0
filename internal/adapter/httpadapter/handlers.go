package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/couchcryptid/outage-timeline-service/internal/adapter/export"
	"github.com/couchcryptid/outage-timeline-service/internal/adapter/source"
	"github.com/couchcryptid/outage-timeline-service/internal/domain"
	"github.com/couchcryptid/outage-timeline-service/internal/pipeline"
)

// Snapshots is the read side of the snapshot store.
type Snapshots interface {
	Current() (source.Snapshot, bool)
	Load(name string) (source.Snapshot, error)
	List() ([]string, error)
}

var errNoSnapshot = errors.New("no snapshot loaded yet")

// colour is a palette entry as sent to renderers.
type colour struct {
	Hex   string  `json:"hex"`
	Alpha float64 `json:"alpha"`
}

type layer struct {
	Snapshot string                     `json:"snapshot"`
	Colors   map[domain.Category]colour `json:"colors"`
	export.Document
}

type timelineResponse struct {
	RunID       uuid.UUID `json:"run_id"`
	Policy      string    `json:"policy"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Selected    int       `json:"selected"`
	GeneratedAt time.Time `json:"generated_at"`
	layer

	Comparison      *layer `json:"comparison,omitempty"`
	ComparisonEmpty bool   `json:"comparison_empty,omitempty"`
}

type paletteEntry struct {
	Category domain.Category `json:"category"`
	Raw      string          `json:"raw"`
	colour
}

type paletteResponse struct {
	Stacking []paletteEntry   `json:"stacking"`
	Legend   []domain.Category `json:"legend"`
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req, err := s.parseRequest(q)
	if err != nil {
		s.writeError(w, err)
		return
	}

	format := strings.ToLower(q.Get("format"))
	if format == "" {
		format = "json"
	}
	compare := q.Get("compare")
	if compare != "" && format != "json" {
		s.writeError(w, fmt.Errorf("%w: compare is only supported with json output", pipeline.ErrInvalidRequest))
		return
	}

	primary, err := s.snapshot(q.Get("snapshot"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	if compare == "" {
		res, err := s.builder.Build(r.Context(), primary.Records, req)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeTimeline(w, format, primary.Name, res)
		return
	}

	comparison, err := s.snapshots.Load(compare)
	if err != nil {
		s.writeError(w, err)
		return
	}
	ov, err := s.builder.BuildOverlay(r.Context(), primary.Records, comparison.Records, req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	body := newTimelineResponse(primary.Name, ov.Primary)
	body.ComparisonEmpty = ov.ComparisonEmpty
	if ov.Comparison != nil {
		l := newLayer(comparison.Name, *ov.Comparison)
		body.Comparison = &l
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) writeTimeline(w http.ResponseWriter, format, snapshot string, res pipeline.Result) {
	switch format {
	case "json":
		writeJSON(w, http.StatusOK, newTimelineResponse(snapshot, res))
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", attachment(res, "csv"))
		if err := export.WriteCSV(w, res.Timeline); err != nil {
			s.logger.Error("write csv response", "error", err)
		}
	case "parquet":
		w.Header().Set("Content-Type", "application/vnd.apache.parquet")
		w.Header().Set("Content-Disposition", attachment(res, "parquet"))
		if err := export.WriteParquet(w, res.Timeline, s.opts.ParquetCompression); err != nil {
			s.logger.Error("write parquet response", "error", err)
		}
	default:
		s.writeError(w, fmt.Errorf("%w: unknown format %q", pipeline.ErrInvalidRequest, format))
	}
}

func (s *Server) handlePalette(w http.ResponseWriter, _ *http.Request) {
	palette := s.builder.Palette()
	order := domain.StackingOrder()

	body := paletteResponse{
		Stacking: make([]paletteEntry, 0, len(order)),
		Legend:   domain.LegendOrder(order),
	}
	for _, c := range order {
		raw, _ := domain.RawIdentifier(c)
		body.Stacking = append(body.Stacking, paletteEntry{Category: c, Raw: raw, colour: toColour(palette[c])})
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleSnapshots(w http.ResponseWriter, _ *http.Request) {
	names, err := s.snapshots.List()
	if err != nil {
		s.writeError(w, err)
		return
	}
	current := ""
	if snap, ok := s.snapshots.Current(); ok {
		current = snap.Name
	}
	writeJSON(w, http.StatusOK, map[string]any{"current": current, "snapshots": names})
}

// parseRequest builds a request from query parameters. Missing parameters
// take the default request's values.
func (s *Server) parseRequest(q url.Values) (pipeline.Request, error) {
	req := pipeline.DefaultRequest(s.builder.Clock())
	req.Policy = s.opts.DefaultPolicy
	req.MaxRange = s.opts.MaxRange

	if _, ok := q["areas"]; ok {
		req.Areas = splitParam(q["areas"])
	}
	if _, ok := q["categories"]; ok {
		req.Categories = splitParam(q["categories"])
	}
	if v := q.Get("start"); v != "" {
		t, err := pipeline.ParseRangeBound(v, false)
		if err != nil {
			return pipeline.Request{}, err
		}
		req.Start = t
	}
	if v := q.Get("end"); v != "" {
		t, err := pipeline.ParseRangeBound(v, true)
		if err != nil {
			return pipeline.Request{}, err
		}
		req.End = t
	}
	if v := q.Get("policy"); v != "" {
		p, err := domain.ParseTemporalPolicy(v)
		if err != nil {
			return pipeline.Request{}, fmt.Errorf("%w: %w", pipeline.ErrInvalidRequest, err)
		}
		req.Policy = p
	}
	return req, req.Validate()
}

func (s *Server) snapshot(name string) (source.Snapshot, error) {
	if name != "" {
		return s.snapshots.Load(name)
	}
	snap, ok := s.snapshots.Current()
	if !ok {
		return source.Snapshot{}, errNoSnapshot
	}
	return snap, nil
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("timeline request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	var malformed *domain.MalformedRecordError
	switch {
	case errors.Is(err, pipeline.ErrInvalidRequest), errors.Is(err, source.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrNoData), errors.Is(err, os.ErrNotExist):
		return http.StatusNotFound
	case errors.As(err, &malformed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errNoSnapshot):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func newTimelineResponse(snapshot string, res pipeline.Result) timelineResponse {
	return timelineResponse{
		RunID:       res.RunID,
		Policy:      res.Request.Policy.String(),
		Start:       res.Request.Start,
		End:         res.Request.End,
		Selected:    res.Selected,
		GeneratedAt: res.GeneratedAt,
		layer:       newLayer(snapshot, res),
	}
}

func newLayer(snapshot string, res pipeline.Result) layer {
	colors := make(map[domain.Category]colour, len(res.Palette))
	for c, col := range res.Palette {
		colors[c] = toColour(col)
	}
	return layer{Snapshot: snapshot, Colors: colors, Document: export.NewDocument(res.Timeline)}
}

func toColour(c drawing.Color) colour {
	return colour{
		Hex:   fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B),
		Alpha: float64(c.A) / 255,
	}
}

func attachment(res pipeline.Result, ext string) string {
	return fmt.Sprintf("attachment; filename=\"timeline_%s.%s\"", res.RunID, ext)
}

// splitParam accepts both repeated parameters and comma-separated lists.
func splitParam(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response body
}
