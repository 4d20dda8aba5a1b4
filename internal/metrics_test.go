package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestMetricsMiddlewareUsesRoutePattern(t *testing.T) {
	metrics := NewMetrics()
	router := chi.NewRouter()
	router.Use(metrics.Middleware())
	router.Get("/assets/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, path := range []string{"/assets/1", "/assets/2", "/health"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, nil))
	}

	body := scrape(t, metrics)
	assert.Contains(t, body, `http_requests_total{method="GET",path="/assets/{id}",status="404"} 2`)
	assert.Contains(t, body, `http_requests_total{method="GET",path="/health",status="200"} 1`)
	assert.Contains(t, body, "http_request_duration_seconds_bucket")
	assert.NotContains(t, body, `path="/assets/1"`)
}

func TestMetricsDomainCounters(t *testing.T) {
	metrics := NewMetrics()
	metrics.RecordLogin("hr")
	metrics.RecordLogin("hr")
	metrics.RecordAssetRequest("Laptop", "high")
	metrics.RecordWorkflow("asset_issued")

	body := scrape(t, metrics)
	assert.Contains(t, body, `logins_total{role="hr"} 2`)
	assert.Contains(t, body, `asset_requests_total{category="Laptop",priority="high"} 1`)
	assert.Contains(t, body, `asset_workflow_events_total{event="asset_issued"} 1`)
}

func TestMetricsRegistriesAreIndependent(t *testing.T) {
	a, b := NewMetrics(), NewMetrics()
	a.RecordLogin("admin")
	assert.NotContains(t, scrape(t, b), `logins_total{role="admin"}`)
}
