package export

import (
	"encoding/json"
	"io"
	"time"

	"github.com/couchcryptid/outage-timeline-service/internal/domain"
)

// Peak is the hour with the largest stacked total.
type Peak struct {
	Hour  time.Time `json:"hour"`
	KW    int64     `json:"kw"`
	Label string    `json:"label"`
}

// Document is the JSON form of a timeline.
type Document struct {
	Categories     []domain.Category `json:"categories"`
	Legend         []domain.Category `json:"legend"`
	Rows           []Row             `json:"rows"`
	Peak           *Peak             `json:"peak,omitempty"`
	Unmapped       int               `json:"unmapped"`
	EmptyIntervals int               `json:"empty_intervals"`
}

// NewDocument builds the JSON document for tl. Peak is omitted for an empty grid.
func NewDocument(tl domain.Timeline) Document {
	cats := tl.Categories()
	doc := Document{
		Categories:     cats,
		Legend:         domain.LegendOrder(cats),
		Rows:           Rows(tl),
		Unmapped:       tl.Unmapped,
		EmptyIntervals: tl.EmptyIntervals,
	}
	if tl.Rows() > 0 {
		at, kw := tl.Peak()
		doc.Peak = &Peak{Hour: at, KW: kw, Label: domain.FormatMW(kw)}
	}
	return doc
}

// WriteJSON writes tl as a single Document.
func WriteJSON(w io.Writer, tl domain.Timeline) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(tl))
}
