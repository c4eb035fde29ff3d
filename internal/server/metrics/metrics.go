// Package metrics exposes Prometheus counters for the authentication gate,
// logins and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login result label values.
const (
	LoginSuccess = "success"
	LoginFailure = "failure"
)

// Metrics holds the server collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	GateDecisions *prometheus.CounterVec
	Logins        *prometheus.CounterVec
	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		GateDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vivamos_gate_decisions_total",
				Help: "Authentication gate decisions by outcome",
			},
			[]string{"outcome"},
		),
		Logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vivamos_logins_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vivamos_http_requests_total",
				Help: "HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vivamos_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.GateDecisions,
		m.Logins,
		m.HTTPRequests,
		m.HTTPDuration,
	)

	return m
}

// RecordGateDecision counts one gate outcome ("exempt", "authenticated", "rejected").
func (m *Metrics) RecordGateDecision(outcome string) {
	if m == nil {
		return
	}
	m.GateDecisions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordLogin(success bool) {
	if m == nil {
		return
	}
	result := LoginFailure
	if success {
		result = LoginSuccess
	}
	m.Logins.WithLabelValues(result).Inc()
}

// RecordHTTPRequest counts a finished request. route is the registered
// pattern, not the raw path, to keep label cardinality bounded.
func (m *Metrics) RecordHTTPRequest(route string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
