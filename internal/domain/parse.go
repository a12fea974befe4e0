package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// JST is the fixed UTC+09:00 zone every HJKS timestamp is expressed in.
var JST = time.FixedZone("JST", 9*60*60)

// FarFuture stands in for a missing scheduled restart.
var FarFuture = time.Date(2100, time.January, 1, 0, 0, 0, 0, JST)

// timestampLayouts are tried in order. Restart dates are frequently published
// without a time of day.
var timestampLayouts = []string{
	"2006/01/02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02",
}

// ParseRecord validates a raw record and applies the field defaults.
// A missing or unparsable start, or an unparsable end or capacity, yields a
// *MalformedRecordError.
func ParseRecord(index int, raw RawRecord) (OutageRecord, error) {
	rec := OutageRecord{
		Index:       index,
		Area:        NormalizeArea(raw.Area),
		RawCategory: strings.TrimSpace(raw.Format),
		Plant:       raw.PlantName,
		Unit:        raw.UnitName,
	}
	rec.Category, rec.Mapped = Translate(rec.RawCategory)

	startStr := strings.TrimSpace(raw.StartDT)
	if startStr == "" {
		return OutageRecord{}, &MalformedRecordError{Index: index, Field: "startdt", Err: ErrMissingField}
	}
	start, err := parseTimestamp(startStr)
	if err != nil {
		return OutageRecord{}, &MalformedRecordError{Index: index, Field: "startdt", Value: startStr, Err: err}
	}
	rec.Start = start

	rec.End = FarFuture
	rec.EndDefaulted = true
	if s, ok := present(raw.RestartSchDT); ok {
		end, err := parseTimestamp(s)
		if err != nil {
			return OutageRecord{}, &MalformedRecordError{Index: index, Field: "restartschdt", Value: s, Err: err}
		}
		rec.End = end
		rec.EndDefaulted = false
	}

	if down, ok := present(raw.DownCapacity); ok {
		v, err := parseCapacity(down)
		if err != nil {
			return OutageRecord{}, &MalformedRecordError{Index: index, Field: "downcapacity", Value: down, Err: err}
		}
		rec.Magnitude = v
	} else if maxStr, ok := present(raw.MaxCapacity); ok {
		v, err := parseCapacity(maxStr)
		if err != nil {
			return OutageRecord{}, &MalformedRecordError{Index: index, Field: "maxcapacity", Value: maxStr, Err: err}
		}
		rec.Magnitude = v
		rec.CapacityFromMax = true
	}

	return rec, nil
}

// present reports the trimmed value of an optional field, treating blank as absent.
func present(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	s := strings.TrimSpace(*p)
	return s, s != ""
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, JST); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp, want YYYY/MM/DD[ HH:MM]")
}

// parseCapacity parses a comma-grouped kW figure such as "1,200,000".
// Numeric JSON values arrive as plain decimal strings and are accepted too.
func parseCapacity(s string) (int64, error) {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a kW figure")
	}
	return int64(math.Round(f)), nil
}

// CivilDate truncates t to midnight of its calendar day in JST.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.In(JST).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, JST)
}
