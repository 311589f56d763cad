package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the engine's Prometheus collectors. Each instance owns
// its registry so tests and multiple engines never collide on
// registration.
type Metrics struct {
	registry *prometheus.Registry

	BatchesStarted   prometheus.Counter
	BatchesCompleted prometheus.Counter
	BatchesDiscarded prometheus.Counter
	BatchesFailed    prometheus.Counter
	BatchDuration    prometheus.Histogram
	RouteRequests    *prometheus.CounterVec
	StorageReadFails *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		BatchesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "howfar",
			Subsystem: "aggregator",
			Name:      "batches_started_total",
			Help:      "Routing batches started",
		}),
		BatchesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "howfar",
			Subsystem: "aggregator",
			Name:      "batches_completed_total",
			Help:      "Routing batches whose results were merged into state",
		}),
		BatchesDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "howfar",
			Subsystem: "aggregator",
			Name:      "batches_discarded_total",
			Help:      "Routing batches dropped because a newer batch superseded them",
		}),
		BatchesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "howfar",
			Subsystem: "aggregator",
			Name:      "batches_failed_total",
			Help:      "Routing batches in which every request failed",
		}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "howfar",
			Subsystem: "aggregator",
			Name:      "batch_duration_seconds",
			Help:      "Wall time of one routing batch",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		RouteRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "howfar",
			Subsystem: "routing",
			Name:      "requests_total",
			Help:      "Per-landmark routing requests by outcome",
		}, []string{"outcome"}),
		StorageReadFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "howfar",
			Subsystem: "storage",
			Name:      "read_failures_total",
			Help:      "Persisted payloads that could not be read and fell back to defaults",
		}, []string{"key"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "howfar",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method and status",
		}, []string{"method", "status"}),
	}

	reg.MustRegister(
		m.BatchesStarted,
		m.BatchesCompleted,
		m.BatchesDiscarded,
		m.BatchesFailed,
		m.BatchDuration,
		m.RouteRequests,
		m.StorageReadFails,
		m.HTTPRequests,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for gathering in tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
