package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// forest-monitoring API.
type Metrics struct {
	APIRequests       *prometheus.CounterVec // labels: endpoint, outcome={ok,client_error,server_error}
	LocationsCreated  prometheus.Counter
	RecordsPersisted  prometheus.Counter
	StoreErrors       prometheus.Counter
	SynthesisDuration prometheus.Histogram

	// Background capture metrics.
	CaptureRuns     *prometheus.CounterVec // labels: outcome={success,error}
	CaptureDuration prometheus.Histogram
	CaptureRunning  prometheus.Gauge

	// Satellite provider metrics.
	SatelliteRequests    *prometheus.CounterVec // labels: outcome={success,error}
	SatelliteCache       *prometheus.CounterVec // labels: result={hit,miss}
	SatelliteAPIDuration prometheus.Histogram
	SatelliteEnabled     prometheus.Gauge

	// Observation stream metrics.
	ObservationsPublished prometheus.Counter
	PublishErrors         prometheus.Counter
}

// NewMetrics creates and registers all API metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		APIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ecomind",
			Name:      "api_requests_total",
			Help:      "API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		LocationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecomind",
			Name:      "locations_created_total",
			Help:      "Total locations committed to the store.",
		}),
		RecordsPersisted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecomind",
			Name:      "records_persisted_total",
			Help:      "Total observation records written to the store.",
		}),
		StoreErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecomind",
			Name:      "store_errors_total",
			Help:      "Failed store operations on the serving path.",
		}),
		SynthesisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ecomind",
			Name:      "synthesis_duration_seconds",
			Help:      "Duration of one synthesize-and-persist cycle.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		CaptureRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ecomind",
			Name:      "capture_runs_total",
			Help:      "Scheduled capture sweeps by outcome.",
		}, []string{"outcome"}),
		CaptureDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ecomind",
			Name:      "capture_duration_seconds",
			Help:      "Duration of a complete capture sweep across locations.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		CaptureRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ecomind",
			Name:      "capture_running",
			Help:      "1 while a capture sweep is in flight, 0 otherwise.",
		}),
		SatelliteRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ecomind",
			Name:      "satellite_requests_total",
			Help:      "Satellite index requests by outcome.",
		}, []string{"outcome"}),
		SatelliteCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ecomind",
			Name:      "satellite_cache_total",
			Help:      "Satellite index cache lookups by result.",
		}, []string{"result"}),
		SatelliteAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ecomind",
			Name:      "satellite_api_duration_seconds",
			Help:      "Satellite provider request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		SatelliteEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ecomind",
			Name:      "satellite_enabled",
			Help:      "1 when a satellite provider is configured, 0 otherwise.",
		}),
		ObservationsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecomind",
			Name:      "observations_published_total",
			Help:      "Observation records published to the Kafka topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecomind",
			Name:      "publish_errors_total",
			Help:      "Failed observation publishes.",
		}),
	}

	prometheus.MustRegister(
		m.APIRequests,
		m.LocationsCreated,
		m.RecordsPersisted,
		m.StoreErrors,
		m.SynthesisDuration,
		m.CaptureRuns,
		m.CaptureDuration,
		m.CaptureRunning,
		m.SatelliteRequests,
		m.SatelliteCache,
		m.SatelliteAPIDuration,
		m.SatelliteEnabled,
		m.ObservationsPublished,
		m.PublishErrors,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		APIRequests:           prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "ecomind", Name: "api_requests_total"}, []string{"endpoint", "outcome"}),
		LocationsCreated:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "ecomind", Name: "locations_created_total"}),
		RecordsPersisted:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "ecomind", Name: "records_persisted_total"}),
		StoreErrors:           prometheus.NewCounter(prometheus.CounterOpts{Namespace: "ecomind", Name: "store_errors_total"}),
		SynthesisDuration:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "ecomind", Name: "synthesis_duration_seconds"}),
		CaptureRuns:           prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "ecomind", Name: "capture_runs_total"}, []string{"outcome"}),
		CaptureDuration:       prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "ecomind", Name: "capture_duration_seconds"}),
		CaptureRunning:        prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "ecomind", Name: "capture_running"}),
		SatelliteRequests:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "ecomind", Name: "satellite_requests_total"}, []string{"outcome"}),
		SatelliteCache:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "ecomind", Name: "satellite_cache_total"}, []string{"result"}),
		SatelliteAPIDuration:  prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "ecomind", Name: "satellite_api_duration_seconds"}),
		SatelliteEnabled:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "ecomind", Name: "satellite_enabled"}),
		ObservationsPublished: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "ecomind", Name: "observations_published_total"}),
		PublishErrors:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "ecomind", Name: "publish_errors_total"}),
	}
}
