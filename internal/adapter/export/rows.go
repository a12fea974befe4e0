// Package export serializes timelines for downstream renderers and analysis.
// CSV and JSON carry the wide table (one row per hour, one column per
// category); Parquet carries the long table (one row per hour and category).
package export

import (
	"time"

	"github.com/couchcryptid/outage-timeline-service/internal/domain"
)

// Row is one hour of the wide table. Values follow Document.Categories.
type Row struct {
	Hour   time.Time `json:"hour"`
	Values []int64   `json:"values"`
	Total  int64     `json:"total"`
}

// Rows flattens tl into hourly rows with per-row stack totals.
func Rows(tl domain.Timeline) []Row {
	totals := tl.Totals()
	out := make([]Row, tl.Rows())
	for i, h := range tl.Hours {
		vals := make([]int64, len(tl.Columns))
		for j, col := range tl.Columns {
			vals[j] = col.Values[i]
		}
		out[i] = Row{Hour: h, Values: vals, Total: totals[i]}
	}
	return out
}
