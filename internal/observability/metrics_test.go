package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsWithRegistry(reg)

	m.Builds.WithLabelValues("ok").Inc()
	m.SnapshotCache.WithLabelValues("hit").Add(2)
	m.RecordsLoaded.Add(3)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["outage_timeline_builds_total"])
	assert.True(t, names["outage_timeline_snapshot_cache_total"])
	assert.True(t, names["outage_timeline_records_loaded_total"])
	assert.InDelta(t, 2, testutil.ToFloat64(m.SnapshotCache.WithLabelValues("hit")), 0)
}

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()
	a.MalformedRecords.Inc()
	assert.InDelta(t, 0, testutil.ToFloat64(b.MalformedRecords), 0)
}
