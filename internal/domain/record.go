package domain

import (
	"errors"
	"fmt"
	"time"
)

// RawRecord is the flat JSON object published by HJKS for one unit outage.
// Optional fields are pointers so that an absent key can be told apart from
// an explicit value.
type RawRecord struct {
	Area         string  `mapstructure:"area" json:"area"`
	Format       string  `mapstructure:"format" json:"format"`
	StartDT      string  `mapstructure:"startdt" json:"startdt"`
	RestartSchDT *string `mapstructure:"restartschdt" json:"restartschdt,omitempty"`
	DownCapacity *string `mapstructure:"downcapacity" json:"downcapacity,omitempty"`
	MaxCapacity  *string `mapstructure:"maxcapacity" json:"maxcapacity,omitempty"`

	PlantCode string `mapstructure:"plantcd" json:"plantcd,omitempty"`
	PlantName string `mapstructure:"plantnm" json:"plantnm,omitempty"`
	UnitCode  string `mapstructure:"unitcd" json:"unitcd,omitempty"`
	UnitName  string `mapstructure:"unitnm" json:"unitnm,omitempty"`
	UpdatedAt string `mapstructure:"upddt" json:"upddt,omitempty"`
}

// OutageRecord is a parsed record with defaults applied.
type OutageRecord struct {
	// Index is the position of the record in its source batch.
	Index int

	Area        string
	RawCategory string
	Category    Category
	Mapped      bool

	Start time.Time
	End   time.Time

	// Magnitude is the capacity taken offline, in kW.
	Magnitude int64

	EndDefaulted    bool
	CapacityFromMax bool

	Plant string
	Unit  string
}

// Duration returns the outage length, or zero when the interval is empty.
func (r OutageRecord) Duration() time.Duration {
	if !r.End.After(r.Start) {
		return 0
	}
	return r.End.Sub(r.Start)
}

// ErrMissingField marks a required field that is absent or blank.
var ErrMissingField = errors.New("required field missing")

// MalformedRecordError identifies a record whose required fields could not be parsed.
type MalformedRecordError struct {
	Index int
	Field string
	Value string
	Err   error
}

func (e *MalformedRecordError) Error() string {
	if errors.Is(e.Err, ErrMissingField) {
		return fmt.Sprintf("record %d: %s: %v", e.Index, e.Field, e.Err)
	}
	return fmt.Sprintf("record %d: invalid %s %q: %v", e.Index, e.Field, e.Value, e.Err)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }
