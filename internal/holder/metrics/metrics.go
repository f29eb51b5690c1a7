// Package metrics exposes holder counters to Prometheus and serves them,
// together with a health probe, on a small admin HTTP endpoint.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type Metrics struct {
	registry *prometheus.Registry

	loginAttempts  *prometheus.CounterVec
	authorizations *prometheus.CounterVec
	pending        prometheus.Gauge
	rpcDuration    *prometheus.HistogramVec
}

// New builds the holder metrics on a private registry, along with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quickauth",
			Name:      "login_attempts_total",
			Help:      "Login and registration submissions by outcome.",
		}, []string{"outcome"}), // accepted|rejected|registered|taken

		authorizations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quickauth",
			Name:      "authorizations_total",
			Help:      "Resolved authorization requests by outcome.",
		}, []string{"outcome"}), // approved|denied|abandoned

		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quickauth",
			Name:      "authorizations_pending",
			Help:      "Authorization requests waiting for the user.",
		}),

		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "quickauth",
			Name:      "grpc_request_duration_seconds",
			Help:      "Latency of gRPC calls, including time spent waiting for consent.",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 15, 30, 60, 300},
		}, []string{"method", "code"}),
	}

	m.registry.MustRegister(
		m.loginAttempts,
		m.authorizations,
		m.pending,
		m.rpcDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) LoginAttempt(outcome string) {
	m.loginAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RequestQueued() {
	m.pending.Inc()
}

func (m *Metrics) RequestResolved(outcome string) {
	m.pending.Dec()
	m.authorizations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRPC(method, code string, d time.Duration) {
	m.rpcDuration.WithLabelValues(method, code).Observe(d.Seconds())
}
