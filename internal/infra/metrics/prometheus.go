package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	activeSessions  prometheus.Gauge
	eventStreams    prometheus.Gauge
	geocodeRequests *prometheus.CounterVec
	geocodeDuration prometheus.Histogram
	placeMutations  *prometheus.CounterVec
}

// NewMetrics creates the collectors on a dedicated registry so that tests can build more than one.
func NewMetrics() *Metrics {
	metrics := &Metrics{
		registry: prometheus.NewRegistry(),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "placemap_active_sessions",
			Help: "The number of signed-in map sessions",
		}),
		eventStreams: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "placemap_event_streams",
			Help: "The number of open session event websockets",
		}),
		geocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "placemap_geocode_requests_total",
			Help: "Geocoder lookups by outcome",
		}, []string{"outcome"}),
		geocodeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "placemap_geocode_duration_seconds",
			Help:    "Latency of upstream geocoder requests",
			Buckets: prometheus.DefBuckets,
		}),
		placeMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "placemap_place_mutations_total",
			Help: "Place creates and deletes by result",
		}, []string{"op", "result"}),
	}
	metrics.register()

	return metrics
}

func (m *Metrics) register() {
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.activeSessions,
		m.eventStreams,
		m.geocodeRequests,
		m.geocodeDuration,
		m.placeMutations,
	)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) SetActiveSessions(n int) {
	m.activeSessions.Set(float64(n))
}

func (m *Metrics) IncrementEventStreams() {
	m.eventStreams.Inc()
}

func (m *Metrics) DecrementEventStreams() {
	m.eventStreams.Dec()
}

// ObserveGeocode records one upstream lookup. outcome is "ok", "error" or "cache_hit".
func (m *Metrics) ObserveGeocode(outcome string, elapsed time.Duration) {
	m.geocodeRequests.WithLabelValues(outcome).Inc()
	if outcome != "cache_hit" {
		m.geocodeDuration.Observe(elapsed.Seconds())
	}
}

func (m *Metrics) RecordPlaceMutation(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.placeMutations.WithLabelValues(op, result).Inc()
}
