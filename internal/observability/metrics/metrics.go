// Package metrics registers the storefront's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	obserrors "github.com/jerseyretro/storefront/internal/observability/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result constants for metric labels.
const (
	ResultSuccess  = "success"
	ResultError    = "error"
	ResultRejected = "rejected"
)

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	bootstrapAttempts *prometheus.CounterVec
	signups           *prometheus.CounterVec
	rateLimited       *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	uploads           *prometheus.CounterVec
}

// New creates a private registry with process and Go runtime collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		bootstrapAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "admin_bootstrap_attempts_total",
			Help:      "Admin bootstrap login attempts by result.",
		}, []string{"result", "error_class"}),
		signups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "signups_total",
			Help:      "Signup requests by result and assigned role.",
		}, []string{"result", "role", "error_class"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "rate_limit_decisions_total",
			Help:      "Rate limiter decisions by route and outcome.",
		}, []string{"route", "decision"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storefront",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "image_uploads_total",
			Help:      "Product image uploads by result.",
		}, []string{"result", "error_class"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.bootstrapAttempts, m.signups, m.rateLimited, m.httpRequests, m.httpDuration, m.uploads,
	)
	return m
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// BootstrapAttempt records an admin bootstrap outcome.
func (m *Metrics) BootstrapAttempt(result string, err error) {
	if m == nil {
		return
	}
	m.bootstrapAttempts.WithLabelValues(result, obserrors.Classify(err)).Inc()
}

// Signup records a signup outcome.
func (m *Metrics) Signup(result, role string, err error) {
	if m == nil {
		return
	}
	m.signups.WithLabelValues(result, role, obserrors.Classify(err)).Inc()
}

// RateLimit records a limiter decision.
func (m *Metrics) RateLimit(route string, allowed bool) {
	if m == nil {
		return
	}
	decision := "allowed"
	if !allowed {
		decision = ResultRejected
	}
	m.rateLimited.WithLabelValues(route, decision).Inc()
}

// HTTPRequest records a served request.
func (m *Metrics) HTTPRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Upload records a product image upload outcome.
func (m *Metrics) Upload(result string, err error) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(result, obserrors.Classify(err)).Inc()
}
