package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testArea      = "東京"
	testGasFormat = "火力（ガス）"
)

func strPtr(s string) *string { return &s }

func TestParseRecord(t *testing.T) {
	t.Run("full record", func(t *testing.T) {
		raw := RawRecord{
			Area:         testArea,
			Format:       testGasFormat,
			StartDT:      "2024/01/01 09:30",
			RestartSchDT: strPtr("2024/01/03 18:00"),
			DownCapacity: strPtr("1,200,000"),
			MaxCapacity:  strPtr("1,500,000"),
			PlantName:    "富津",
			UnitName:     "1号",
		}
		rec, err := ParseRecord(3, raw)

		require.NoError(t, err)
		assert.Equal(t, 3, rec.Index)
		assert.Equal(t, testArea, rec.Area)
		assert.Equal(t, ThermalGas, rec.Category)
		assert.True(t, rec.Mapped)
		assert.Equal(t, time.Date(2024, 1, 1, 9, 30, 0, 0, JST), rec.Start)
		assert.Equal(t, time.Date(2024, 1, 3, 18, 0, 0, 0, JST), rec.End)
		assert.Equal(t, int64(1_200_000), rec.Magnitude)
		assert.False(t, rec.EndDefaulted)
		assert.False(t, rec.CapacityFromMax)
		assert.Equal(t, "富津", rec.Plant)
		assert.Equal(t, 56*time.Hour+30*time.Minute, rec.Duration())
	})

	t.Run("date-only restart", func(t *testing.T) {
		rec, err := ParseRecord(0, RawRecord{Format: "水力", StartDT: "2024/01/01 00:00", RestartSchDT: strPtr("2024/01/05")})
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, JST), rec.End)
	})

	t.Run("missing restart defaults to far future", func(t *testing.T) {
		rec, err := ParseRecord(0, RawRecord{Format: "水力", StartDT: "2024/01/01 00:00"})
		require.NoError(t, err)
		assert.Equal(t, FarFuture, rec.End)
		assert.True(t, rec.EndDefaulted)
	})

	t.Run("blank restart defaults to far future", func(t *testing.T) {
		rec, err := ParseRecord(0, RawRecord{Format: "水力", StartDT: "2024/01/01 00:00", RestartSchDT: strPtr("  ")})
		require.NoError(t, err)
		assert.Equal(t, FarFuture, rec.End)
	})

	t.Run("missing down capacity falls back to max capacity", func(t *testing.T) {
		rec, err := ParseRecord(0, RawRecord{Format: "原子力", StartDT: "2024/01/01 00:00", MaxCapacity: strPtr("1,356,000")})
		require.NoError(t, err)
		assert.Equal(t, int64(1_356_000), rec.Magnitude)
		assert.True(t, rec.CapacityFromMax)
	})

	t.Run("no capacity at all is zero", func(t *testing.T) {
		rec, err := ParseRecord(0, RawRecord{Format: "原子力", StartDT: "2024/01/01 00:00"})
		require.NoError(t, err)
		assert.Equal(t, int64(0), rec.Magnitude)
		assert.False(t, rec.CapacityFromMax)
	})

	t.Run("numeric capacity", func(t *testing.T) {
		rec, err := ParseRecord(0, RawRecord{Format: "風力", StartDT: "2024/01/01 00:00", DownCapacity: strPtr("2400")})
		require.NoError(t, err)
		assert.Equal(t, int64(2400), rec.Magnitude)
	})

	t.Run("english area alias", func(t *testing.T) {
		rec, err := ParseRecord(0, RawRecord{Area: " Kansai ", Format: "風力", StartDT: "2024/01/01 00:00"})
		require.NoError(t, err)
		assert.Equal(t, "関西", rec.Area)
	})

	t.Run("unknown category parses but is unmapped", func(t *testing.T) {
		rec, err := ParseRecord(0, RawRecord{Format: "蓄電池", StartDT: "2024/01/01 00:00"})
		require.NoError(t, err)
		assert.False(t, rec.Mapped)
		assert.Equal(t, "蓄電池", rec.RawCategory)
	})
}

func TestParseRecord_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		raw   RawRecord
		field string
	}{
		{"missing start", RawRecord{Format: "水力"}, "startdt"},
		{"garbage start", RawRecord{StartDT: "yesterday"}, "startdt"},
		{"iso start", RawRecord{StartDT: "2024-01-01T00:00:00"}, "startdt"},
		{"garbage restart", RawRecord{StartDT: "2024/01/01 00:00", RestartSchDT: strPtr("TBD")}, "restartschdt"},
		{"garbage down capacity", RawRecord{StartDT: "2024/01/01 00:00", DownCapacity: strPtr("約100")}, "downcapacity"},
		{"garbage max capacity", RawRecord{StartDT: "2024/01/01 00:00", MaxCapacity: strPtr("n/a")}, "maxcapacity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecord(7, tt.raw)
			require.Error(t, err)

			var mre *MalformedRecordError
			require.True(t, errors.As(err, &mre))
			assert.Equal(t, 7, mre.Index)
			assert.Equal(t, tt.field, mre.Field)
			assert.Contains(t, err.Error(), "record 7")
		})
	}
}

func TestMalformedRecordError_MissingField(t *testing.T) {
	_, err := ParseRecord(2, RawRecord{StartDT: "   "})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingField)
	assert.Equal(t, "record 2: startdt: required field missing", err.Error())
}

func TestCivilDate(t *testing.T) {
	// 2024-01-01 20:00 UTC is already Jan 2 in Japan.
	utc := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, JST), CivilDate(utc))
}
