package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
)

// TemporalPolicy selects how a record's interval is matched against the
// requested range.
type TemporalPolicy int

const (
	// PolicyOverlap keeps records whose outage dates intersect the range,
	// ignoring time of day.
	PolicyOverlap TemporalPolicy = iota
	// PolicyEndpoint keeps records whose start or end timestamp lies inside
	// the range, inclusive at both ends.
	PolicyEndpoint
)

func (p TemporalPolicy) String() string {
	switch p {
	case PolicyOverlap:
		return "overlap"
	case PolicyEndpoint:
		return "endpoint"
	default:
		return fmt.Sprintf("TemporalPolicy(%d)", int(p))
	}
}

// ParseTemporalPolicy parses "overlap" or "endpoint". The empty string
// selects the default, PolicyOverlap.
func ParseTemporalPolicy(s string) (TemporalPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "overlap":
		return PolicyOverlap, nil
	case "endpoint":
		return PolicyEndpoint, nil
	default:
		return 0, fmt.Errorf("unknown temporal policy %q (want overlap or endpoint)", s)
	}
}

// Selection is the set of predicates a record must satisfy to be aggregated.
type Selection struct {
	Areas      []string
	Categories []string
	Start      time.Time
	End        time.Time
	Policy     TemporalPolicy
}

// Filter returns the records of batch that pass sel, parsed and with
// defaults applied. Input records are never modified.
//
// Only records passing the area and category predicates are parsed. If any
// of those is malformed the whole call fails with a *multierror.Error holding
// one *MalformedRecordError per offending record.
func Filter(batch []RawRecord, sel Selection) ([]OutageRecord, error) {
	areaOK := newMatcher(sel.Areas, NormalizeArea)
	categoryOK := newMatcher(sel.Categories, rawCategoryKey)

	var (
		out  []OutageRecord
		errs *multierror.Error
	)
	for i, raw := range batch {
		if !areaOK(raw.Area) || !categoryOK(raw.Format) {
			continue
		}
		rec, err := ParseRecord(i, raw)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if !sel.inRange(rec) {
			continue
		}
		out = append(out, rec)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return out, nil
}

func (sel Selection) inRange(rec OutageRecord) bool {
	switch sel.Policy {
	case PolicyEndpoint:
		return within(rec.Start, sel.Start, sel.End) || within(rec.End, sel.Start, sel.End)
	default:
		return !CivilDate(rec.Start).After(CivilDate(sel.End)) &&
			!CivilDate(rec.End).Before(CivilDate(sel.Start))
	}
}

func within(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

// newMatcher builds a membership predicate over normalized values. A
// universal token anywhere in selected matches everything; an empty
// selection matches nothing.
func newMatcher(selected []string, normalize func(string) string) func(string) bool {
	set := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		if IsAll(s) {
			return func(string) bool { return true }
		}
		set[normalize(s)] = struct{}{}
	}
	return func(v string) bool {
		_, ok := set[normalize(v)]
		return ok
	}
}

// rawCategoryKey folds canonical labels onto their raw identifier so a
// selection may use either form.
func rawCategoryKey(s string) string {
	s = strings.TrimSpace(s)
	if c, ok := ParseCategory(s); ok {
		raw, _ := RawIdentifier(c)
		return raw
	}
	return s
}
