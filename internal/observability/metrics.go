package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// grid-building pipeline and the station data source.
type Metrics struct {
	GridsBuilt        *prometheus.CounterVec // labels: season, outcome={ok,argument_error,empty_range,empty_extremes,schema_error}
	GridBuildDuration prometheus.Histogram

	DatasetFetches       *prometheus.CounterVec // labels: outcome={ok,error}
	DatasetFetchDuration prometheus.Histogram
	DatasetsCached       prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.GridsBuilt,
		m.GridBuildDuration,
		m.DatasetFetches,
		m.DatasetFetchDuration,
		m.DatasetsCached,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		GridsBuilt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "heatgrid",
			Name:      "grids_built_total",
			Help:      "Calendar grid builds by season and outcome.",
		}, []string{"season", "outcome"}),
		GridBuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "heatgrid",
			Name:      "grid_build_duration_seconds",
			Help:      "Duration of a complete validate-resolve-classify-assemble cycle.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}),
		DatasetFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "heatgrid",
			Name:      "dataset_fetches_total",
			Help:      "Station dataset downloads by outcome.",
		}, []string{"outcome"}),
		DatasetFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "heatgrid",
			Name:      "dataset_fetch_duration_seconds",
			Help:      "Duration of a station archive download and parse.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		DatasetsCached: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "heatgrid",
			Name:      "datasets_cached",
			Help:      "Number of station datasets currently held in the in-memory cache.",
		}),
	}
}
