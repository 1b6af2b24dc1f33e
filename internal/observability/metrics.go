package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for HTTP traffic and order lifecycle steps.
type Metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	errors   *prometheus.CounterVec
	steps    *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg. A nil registerer yields a no-op instance.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by route, method and status.",
	}, []string{"path", "method", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "method"})
	errs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_errors_total",
		Help: "HTTP requests that ended with a domain error.",
	}, []string{"path", "method", "code"})
	steps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_lifecycle_steps_total",
		Help: "Order lifecycle step outcomes.",
	}, []string{"step", "outcome"})
	reg.MustRegister(requests, latency, errs, steps)
	return &Metrics{
		requests: requests,
		latency:  latency,
		errors:   errs,
		steps:    steps,
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	m.requests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil || m.errors == nil {
		return
	}
	m.errors.WithLabelValues(path, method, code).Inc()
}

// RecordStep counts the outcome of a lifecycle step.
func (m *Metrics) RecordStep(step, outcome string) {
	if m == nil || m.steps == nil {
		return
	}
	m.steps.WithLabelValues(normalizeLabel(step), normalizeLabel(outcome)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
