package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "treemap"

// Metrics holds the Prometheus counters and histograms for cleaning runs and
// map rendering.
type Metrics struct {
	RowsRead          prometheus.Counter
	RowsDropped       *prometheus.CounterVec // labels: reason={unknown_genus,planting_year}
	RecordsWritten    *prometheus.CounterVec // labels: sink={csv,xlsx,sqlite,postgres,kafka}
	NormalizeDuration prometheus.Histogram
	PipelineRunning   prometheus.Gauge

	// Map metrics.
	MapRenders  *prometheus.CounterVec // labels: outcome={rendered,declined,empty,error}
	MarkerCount prometheus.Histogram
	MarkerCache *prometheus.CounterVec // labels: result={hit,miss}
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_read_total",
			Help:      "Total raw inventory rows read.",
		}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "Raw rows dropped during cleaning, by reason.",
		}, []string{"reason"}),
		RecordsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_written_total",
			Help:      "Cleaned records written, by sink.",
		}, []string{"sink"}),
		NormalizeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "normalize_duration_seconds",
			Help:      "Duration of a complete import-normalize-export run.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while a cleaning run is active.",
		}),
		MapRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "map_renders_total",
			Help:      "Map requests by outcome.",
		}, []string{"outcome"}),
		MarkerCount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "map_markers",
			Help:      "Number of markers per query.",
			Buckets:   []float64{0, 10, 100, 500, 1000, 5000, 10000, 50000},
		}),
		MarkerCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "marker_cache_total",
			Help:      "Marker cache lookups by result.",
		}, []string{"result"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RowsRead,
		m.RowsDropped,
		m.RecordsWritten,
		m.NormalizeDuration,
		m.PipelineRunning,
		m.MapRenders,
		m.MarkerCount,
		m.MarkerCache,
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics registered on a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	prometheus.NewRegistry().MustRegister(m.collectors()...)
	return m
}
