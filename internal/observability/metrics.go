package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for timeline builds.
type Metrics struct {
	RecordsLoaded    prometheus.Counter
	RecordsSelected  prometheus.Counter
	MalformedRecords prometheus.Counter
	UnmappedRecords  prometheus.Counter
	EmptyIntervals   prometheus.Counter

	// Builds by outcome: ok, no_data, malformed, invalid.
	Builds        *prometheus.CounterVec
	BuildDuration prometheus.Histogram
	GridRows      prometheus.Histogram

	// Snapshot metrics.
	SnapshotAge     prometheus.Gauge
	SnapshotRecords prometheus.Gauge
	SnapshotCache   *prometheus.CounterVec // labels: result={hit,miss}

	// Kafka metrics.
	TimelineRowsSent prometheus.Counter
	PublishFailures  prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return NewMetricsWithRegistry(prometheus.NewRegistry())
}

// NewMetricsWithRegistry creates all metrics and registers them with reg.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RecordsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "outage_timeline",
			Name:      "records_loaded_total",
			Help:      "Total raw outage records handed to the filter.",
		}),
		RecordsSelected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "outage_timeline",
			Name:      "records_selected_total",
			Help:      "Total records passing the area, category and range predicates.",
		}),
		MalformedRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "outage_timeline",
			Name:      "malformed_records_total",
			Help:      "Total selected records rejected for unparsable required fields.",
		}),
		UnmappedRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "outage_timeline",
			Name:      "unmapped_records_total",
			Help:      "Total records left out of the timeline because their generation type is unknown.",
		}),
		EmptyIntervals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "outage_timeline",
			Name:      "empty_intervals_total",
			Help:      "Total records whose restart is not after their start.",
		}),
		Builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "outage_timeline",
			Name:      "builds_total",
			Help:      "Timeline builds by outcome.",
		}, []string{"outcome"}),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "outage_timeline",
			Name:      "build_duration_seconds",
			Help:      "Duration of a filter and aggregate pass.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		GridRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "outage_timeline",
			Name:      "grid_rows",
			Help:      "Number of hourly rows per built timeline.",
			Buckets:   []float64{24, 168, 720, 2160, 4380, 8784},
		}),
		SnapshotAge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "outage_timeline",
			Name:      "snapshot_age_seconds",
			Help:      "Age of the current snapshot file at its last load.",
		}),
		SnapshotRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "outage_timeline",
			Name:      "snapshot_records",
			Help:      "Number of records in the current snapshot.",
		}),
		SnapshotCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "outage_timeline",
			Name:      "snapshot_cache_total",
			Help:      "Comparison snapshot cache lookups by result.",
		}, []string{"result"}),
		TimelineRowsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "outage_timeline",
			Name:      "timeline_rows_published_total",
			Help:      "Total timeline rows written to the Kafka topic.",
		}),
		PublishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "outage_timeline",
			Name:      "publish_failures_total",
			Help:      "Total failed timeline publishes.",
		}),
	}

	reg.MustRegister(
		m.RecordsLoaded,
		m.RecordsSelected,
		m.MalformedRecords,
		m.UnmappedRecords,
		m.EmptyIntervals,
		m.Builds,
		m.BuildDuration,
		m.GridRows,
		m.SnapshotAge,
		m.SnapshotRecords,
		m.SnapshotCache,
		m.TimelineRowsSent,
		m.PublishFailures,
	)

	return m
}
