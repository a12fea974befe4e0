package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/outage-timeline-service/internal/domain"
)

// ErrInvalidRequest wraps every request validation failure.
var ErrInvalidRequest = errors.New("invalid request")

// defaultLookback is the span of the default request range, ending today.
const defaultLookback = 7 * 24 * time.Hour

// DefaultMaxRange caps the span of a request when Request.MaxRange is unset:
// three years, a little over 26 000 hourly rows.
const DefaultMaxRange = 3 * 365 * 24 * time.Hour

// Request describes one timeline build: the selection predicates and the
// inclusive hourly range of the output grid.
type Request struct {
	Areas      []string              `json:"areas"`
	Categories []string              `json:"categories"`
	Start      time.Time             `json:"start"`
	End        time.Time             `json:"end"`
	Policy     domain.TemporalPolicy `json:"-"`

	// MaxRange bounds End minus Start. Zero means DefaultMaxRange.
	MaxRange time.Duration `json:"-"`
}

// DefaultRequest selects every area and category over the last seven days,
// from midnight a week ago to 23:00 today in JST.
func DefaultRequest(clock clockwork.Clock) Request {
	today := domain.CivilDate(clock.Now())
	return Request{
		Areas:      []string{domain.AllToken},
		Categories: []string{domain.AllToken},
		Start:      today.Add(-defaultLookback),
		End:        today.Add(23 * time.Hour),
		Policy:     domain.PolicyOverlap,
	}
}

// Validate checks the range and policy. It does not reject unknown areas or
// categories; those simply match nothing.
func (r Request) Validate() error {
	limit := r.MaxRange
	if limit <= 0 {
		limit = DefaultMaxRange
	}
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrInvalidRequest)
	}
	if r.End.Before(r.Start) {
		return fmt.Errorf("%w: end %s is before start %s", ErrInvalidRequest,
			r.End.Format(time.RFC3339), r.Start.Format(time.RFC3339))
	}
	// Sub saturates for spans beyond ~292 years, which still exceeds limit.
	if r.End.Sub(r.Start) > limit {
		return fmt.Errorf("%w: range %s to %s exceeds the maximum of %s", ErrInvalidRequest,
			r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339), limit)
	}
	switch r.Policy {
	case domain.PolicyOverlap, domain.PolicyEndpoint:
	default:
		return fmt.Errorf("%w: unknown policy %s", ErrInvalidRequest, r.Policy)
	}
	return nil
}

// Selection converts the request into filter predicates.
func (r Request) Selection() domain.Selection {
	return domain.Selection{
		Areas:      r.Areas,
		Categories: r.Categories,
		Start:      r.Start,
		End:        r.End,
		Policy:     r.Policy,
	}
}

var (
	dateLayouts      = []string{"2006-01-02", "2006/01/02", "20060102"}
	timestampLayouts = []string{"2006-01-02T15:04", "2006-01-02 15:04", "2006/01/02 15:04"}
)

// ParseRangeBound parses a range bound in JST. RFC 3339 values keep their
// own offset. A date without a time of day is midnight for a start bound and
// 23:00 for an end bound, the last hourly row of that day.
func ParseRangeBound(s string, end bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty range bound", ErrInvalidRequest)
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(domain.JST), nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, domain.JST); err == nil {
			return t, nil
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, domain.JST); err == nil {
			if end {
				t = t.Add(23 * time.Hour)
			}
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized time %q", ErrInvalidRequest, s)
}
