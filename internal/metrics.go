package internal

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics collection for HTTP requests and the
// asset workflows
type Metrics struct {
	reqTotal      *prometheus.CounterVec
	reqLatency    *prometheus.HistogramVec
	logins        *prometheus.CounterVec
	assetRequests *prometheus.CounterVec
	workflow      *prometheus.CounterVec
	registry      *prometheus.Registry
}

// NewMetrics creates a new Metrics instance with a private Prometheus registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		reqTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		reqLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logins_total",
				Help: "Successful logins by role",
			},
			[]string{"role"},
		),
		assetRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "asset_requests_total",
				Help: "Submitted asset requests",
			},
			[]string{"category", "priority"},
		),
		workflow: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "asset_workflow_events_total",
				Help: "Issue, return, maintenance and decision events",
			},
			[]string{"event"},
		),
		registry: registry,
	}

	registry.MustRegister(m.reqTotal, m.reqLatency, m.logins, m.assetRequests, m.workflow)
	return m
}

// Middleware returns a Chi middleware that collects metrics
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &statusRecorder{ResponseWriter: w, code: http.StatusOK}

			next.ServeHTTP(rw, r)

			// Label by route pattern so ids do not explode cardinality
			path := r.URL.Path
			if chiCtx := chi.RouteContext(r.Context()); chiCtx != nil {
				if p := chiCtx.RoutePattern(); p != "" {
					path = p
				}
			}

			status := strconv.Itoa(rw.code)
			m.reqTotal.WithLabelValues(r.Method, path, status).Inc()
			m.reqLatency.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
		})
	}
}

// RecordLogin counts a successful login
func (m *Metrics) RecordLogin(role string) {
	m.logins.WithLabelValues(role).Inc()
}

// RecordAssetRequest counts a submitted request
func (m *Metrics) RecordAssetRequest(category, priority string) {
	m.assetRequests.WithLabelValues(category, priority).Inc()
}

// RecordWorkflow counts a workflow event such as "issued" or "returned"
func (m *Metrics) RecordWorkflow(event string) {
	m.workflow.WithLabelValues(event).Inc()
}

// Handler returns an http.Handler that serves Prometheus metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// statusRecorder captures the HTTP status code for metrics
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.code = code
	sr.ResponseWriter.WriteHeader(code)
}
