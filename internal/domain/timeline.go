package domain

import (
	"math"
	"sort"
	"strconv"
	"time"
)

// Column is one category's hourly down capacity, in kW, aligned to Timeline.Hours.
type Column struct {
	Category Category
	Values   []int64
}

// Timeline is a dense hour × category table. Columns follow the stacking
// order and only include categories present in the aggregated records.
type Timeline struct {
	Hours   []time.Time
	Columns []Column

	// Unmapped counts records dropped because their category has no canonical label.
	Unmapped int
	// EmptyIntervals counts records whose end is not after their start.
	EmptyIntervals int
}

// HourCount returns the number of grid rows for [start, end]: one per whole
// hour elapsed plus the start row. It is zero when end precedes start.
func HourCount(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	if d := end.Sub(start); d < math.MaxInt64 {
		return int(d/time.Hour) + 1
	}
	// Sub saturated; fall back to whole seconds.
	return int((end.Unix()-start.Unix())/3600) + 1
}

// Aggregate spreads each record over the hourly grid spanning [start, end]
// and sums magnitudes per category. Row t receives a record's magnitude
// when record.Start <= t < record.End.
func Aggregate(records []OutageRecord, start, end time.Time) Timeline {
	n := HourCount(start, end)
	tl := Timeline{Hours: make([]time.Time, n)}
	for i := range tl.Hours {
		tl.Hours[i] = start.Add(time.Duration(i) * time.Hour)
	}

	sums := make(map[Category][]int64)
	for _, rec := range records {
		if !rec.Mapped {
			tl.Unmapped++
			continue
		}
		col, ok := sums[rec.Category]
		if !ok {
			col = make([]int64, n)
			sums[rec.Category] = col
		}
		if !rec.End.After(rec.Start) {
			tl.EmptyIntervals++
			continue
		}
		lo, hi := tl.span(rec.Start, rec.End)
		for i := lo; i < hi; i++ {
			col[i] += rec.Magnitude
		}
	}

	for _, c := range stackingOrder {
		if col, ok := sums[c]; ok {
			tl.Columns = append(tl.Columns, Column{Category: c, Values: col})
		}
	}
	return tl
}

// span returns the row range [lo, hi) whose timestamps fall in [from, to).
// Hours is sorted, so both bounds are found by binary search.
func (tl Timeline) span(from, to time.Time) (int, int) {
	lo := sort.Search(len(tl.Hours), func(i int) bool { return !tl.Hours[i].Before(from) })
	hi := sort.Search(len(tl.Hours), func(i int) bool { return !tl.Hours[i].Before(to) })
	return lo, hi
}

// Rows returns the number of hourly rows.
func (tl Timeline) Rows() int { return len(tl.Hours) }

// Categories returns the column categories in stacking order.
func (tl Timeline) Categories() []Category {
	out := make([]Category, len(tl.Columns))
	for i, col := range tl.Columns {
		out[i] = col.Category
	}
	return out
}

// Column returns the values for c, or false if c is not a column.
func (tl Timeline) Column(c Category) ([]int64, bool) {
	for _, col := range tl.Columns {
		if col.Category == c {
			return col.Values, true
		}
	}
	return nil, false
}

// Value returns the cell at row for c, zero when c is not a column.
func (tl Timeline) Value(row int, c Category) int64 {
	vals, ok := tl.Column(c)
	if !ok || row < 0 || row >= len(vals) {
		return 0
	}
	return vals[row]
}

// Totals returns the stack height of every row.
func (tl Timeline) Totals() []int64 {
	out := make([]int64, len(tl.Hours))
	for _, col := range tl.Columns {
		for i, v := range col.Values {
			out[i] += v
		}
	}
	return out
}

// Peak returns the tallest stack and the hour it occurs at. The zero time is
// returned for an empty grid.
func (tl Timeline) Peak() (time.Time, int64) {
	var (
		at  time.Time
		top int64 = -1
	)
	for i, v := range tl.Totals() {
		if v > top {
			at, top = tl.Hours[i], v
		}
	}
	if top < 0 {
		return time.Time{}, 0
	}
	return at, top
}

// FormatMW renders a kW figure as megawatts with thousands separators and
// two decimals, e.g. 1234567 → "1,234.57 MW".
func FormatMW(kw int64) string {
	neg := kw < 0
	if neg {
		kw = -kw
	}
	// Round to 10 kW, the resolution of two MW decimals.
	centi := (kw + 5) / 10
	whole, frac := centi/100, centi%100

	digits := strconv.FormatInt(whole, 10)
	grouped := make([]byte, 0, len(digits)+len(digits)/3)
	for i := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped = append(grouped, ',')
		}
		grouped = append(grouped, digits[i])
	}

	s := string(grouped) + "." + pad2(frac) + " MW"
	if neg {
		s = "-" + s
	}
	return s
}

func pad2(v int64) string {
	if v < 10 {
		return "0" + strconv.FormatInt(v, 10)
	}
	return strconv.FormatInt(v, 10)
}
