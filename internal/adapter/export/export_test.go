package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/couchcryptid/outage-timeline-service/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTimeline() domain.Timeline {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, domain.JST)
	recs := []domain.OutageRecord{
		{Category: domain.Nuclear, Mapped: true, Start: start, End: start.Add(2 * time.Hour), Magnitude: 1000},
		{Category: domain.Wind, Mapped: true, Start: start.Add(time.Hour), End: start.Add(3 * time.Hour), Magnitude: 25},
	}
	return domain.Aggregate(recs, start, start.Add(2*time.Hour))
}

func TestRows(t *testing.T) {
	tl := sampleTimeline()
	rows := Rows(tl)
	require.Len(t, rows, 3)

	want := [][]int64{{1000, 0}, {1000, 25}, {0, 25}}
	for i, row := range rows {
		assert.Equal(t, tl.Hours[i], row.Hour)
		if diff := cmp.Diff(want[i], row.Values); diff != "" {
			t.Errorf("row %d (-want +got):\n%s", i, diff)
		}
	}
	assert.Equal(t, int64(1025), rows[1].Total)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTimeline()))

	lines, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"hour", "Nuclear", "Wind", "total"}, lines[0])
	assert.Equal(t, []string{"2024-01-01T01:00:00+09:00", "1000", "25", "1025"}, lines[2])
}

func TestWriteCSV_NoColumns(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, domain.JST)
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, domain.Aggregate(nil, start, start.Add(time.Hour))))

	lines, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"hour", "total"}, lines[0])
	assert.Equal(t, []string{"2024-01-01T00:00:00+09:00", "0"}, lines[1])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleTimeline()))

	var doc Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, []domain.Category{domain.Nuclear, domain.Wind}, doc.Categories)
	assert.Equal(t, []domain.Category{domain.Wind, domain.Nuclear}, doc.Legend)
	require.Len(t, doc.Rows, 3)
	assert.Equal(t, []int64{1000, 25}, doc.Rows[1].Values)

	require.NotNil(t, doc.Peak)
	assert.Equal(t, int64(1025), doc.Peak.KW)
	assert.Equal(t, "1.03 MW", doc.Peak.Label)
}

func TestNewDocument_EmptyGridHasNoPeak(t *testing.T) {
	doc := NewDocument(domain.Timeline{})
	assert.Nil(t, doc.Peak)
	assert.Empty(t, doc.Rows)
}

func TestWriteParquet(t *testing.T) {
	for _, codec := range []string{"SNAPPY", "gzip", "NONE"} {
		t.Run(codec, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteParquet(&buf, sampleTimeline(), codec))

			out := buf.Bytes()
			require.Greater(t, len(out), 8)
			assert.Equal(t, "PAR1", string(out[:4]))
			assert.Equal(t, "PAR1", string(out[len(out)-4:]))
		})
	}
}

func TestWriteParquet_UnknownCompression(t *testing.T) {
	var buf bytes.Buffer
	err := WriteParquet(&buf, sampleTimeline(), "lz4")
	require.Error(t, err)
	assert.Zero(t, buf.Len())
}

func TestCompressionCodec(t *testing.T) {
	_, err := CompressionCodec("")
	require.NoError(t, err)
	_, err = CompressionCodec("brotli")
	assert.Error(t, err)
}
