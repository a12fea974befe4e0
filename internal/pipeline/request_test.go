package pipeline_test

import (
	"testing"
	"time"

	"github.com/couchcryptid/outage-timeline-service/internal/domain"
	"github.com/couchcryptid/outage-timeline-service/internal/pipeline"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRequest(t *testing.T) {
	// 2024-03-10 01:30 UTC is 10:30 JST on the same day.
	clock := clockwork.NewFakeClockAt(time.Date(2024, time.March, 10, 1, 30, 0, 0, time.UTC))

	req := pipeline.DefaultRequest(clock)
	assert.Equal(t, jst(2024, 3, 3, 0), req.Start)
	assert.Equal(t, jst(2024, 3, 10, 23), req.End)
	assert.Equal(t, []string{domain.AllToken}, req.Areas)
	assert.Equal(t, []string{domain.AllToken}, req.Categories)
	assert.Equal(t, domain.PolicyOverlap, req.Policy)
	require.NoError(t, req.Validate())
}

func TestDefaultRequest_JSTDayBoundary(t *testing.T) {
	// 2024-03-09 16:00 UTC is already 2024-03-10 01:00 JST.
	clock := clockwork.NewFakeClockAt(time.Date(2024, time.March, 9, 16, 0, 0, 0, time.UTC))
	assert.Equal(t, jst(2024, 3, 10, 23), pipeline.DefaultRequest(clock).End)
}

func TestRequest_Validate(t *testing.T) {
	base := dayRequest()

	equal := base
	equal.End = equal.Start
	require.NoError(t, equal.Validate(), "single-row range is valid")

	reversed := base
	reversed.End = base.Start.Add(-time.Minute)
	assert.ErrorIs(t, reversed.Validate(), pipeline.ErrInvalidRequest)

	missing := base
	missing.Start = time.Time{}
	assert.ErrorIs(t, missing.Validate(), pipeline.ErrInvalidRequest)

	badPolicy := base
	badPolicy.Policy = domain.TemporalPolicy(7)
	assert.ErrorIs(t, badPolicy.Validate(), pipeline.ErrInvalidRequest)
}

func TestRequest_ValidateMaxRange(t *testing.T) {
	base := dayRequest()

	atLimit := base
	atLimit.End = base.Start.Add(pipeline.DefaultMaxRange)
	require.NoError(t, atLimit.Validate())

	tooLong := base
	tooLong.End = base.Start.Add(pipeline.DefaultMaxRange + time.Hour)
	assert.ErrorIs(t, tooLong.Validate(), pipeline.ErrInvalidRequest)

	custom := base
	custom.MaxRange = 48 * time.Hour
	custom.End = base.Start.Add(49 * time.Hour)
	assert.ErrorIs(t, custom.Validate(), pipeline.ErrInvalidRequest)

	custom.End = base.Start.Add(48 * time.Hour)
	require.NoError(t, custom.Validate())
}

func TestRequest_ValidateRejectsSaturatingRange(t *testing.T) {
	req := dayRequest()
	req.Start = time.Date(1, time.January, 1, 0, 0, 0, 0, domain.JST)
	req.End = time.Date(9999, time.December, 31, 23, 0, 0, 0, domain.JST)
	assert.ErrorIs(t, req.Validate(), pipeline.ErrInvalidRequest)
}

func TestRequest_Selection(t *testing.T) {
	req := dayRequest()
	req.Policy = domain.PolicyEndpoint

	sel := req.Selection()
	assert.Equal(t, req.Areas, sel.Areas)
	assert.Equal(t, req.Categories, sel.Categories)
	assert.Equal(t, req.Start, sel.Start)
	assert.Equal(t, req.End, sel.End)
	assert.Equal(t, domain.PolicyEndpoint, sel.Policy)
}

func TestParseRangeBound(t *testing.T) {
	tests := []struct {
		in   string
		end  bool
		want time.Time
	}{
		{"2024-01-05", false, jst(2024, 1, 5, 0)},
		{"2024-01-05", true, jst(2024, 1, 5, 23)},
		{"2024/01/05", true, jst(2024, 1, 5, 23)},
		{"20240105", false, jst(2024, 1, 5, 0)},
		{"2024-01-05T07:00", true, jst(2024, 1, 5, 7)},
		{"2024/01/05 07:00", false, jst(2024, 1, 5, 7)},
		{"2024-01-04T22:00:00Z", false, jst(2024, 1, 5, 7)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := pipeline.ParseRangeBound(tt.in, tt.end)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
			assert.Equal(t, domain.JST, got.Location())
		})
	}
}

func TestParseRangeBound_Invalid(t *testing.T) {
	for _, in := range []string{"", "  ", "next tuesday", "2024-13-01"} {
		_, err := pipeline.ParseRangeBound(in, false)
		assert.ErrorIs(t, err, pipeline.ErrInvalidRequest, in)
	}
}
