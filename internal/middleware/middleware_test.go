package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/annel0/terrain-noise/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) (*gin.Engine, *PrometheusMiddleware, *prometheus.Registry, *bytes.Buffer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	reg := prometheus.NewRegistry()
	pm := NewPrometheusMiddleware("test", reg)

	r := gin.New()
	r.Use(NewRequestLogger(logging.NewConsoleLogger("api", &buf)).Handler(), pm.Handler())
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, TraceID(c)) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	pm.RegisterMetricsEndpoint(r, reg)
	return r, pm, reg, &buf
}

func TestRequestLogger_SetsTraceID(t *testing.T) {
	r, _, _, buf := newRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	require.Equal(t, http.StatusOK, w.Code)
	traceID := w.Body.String()
	assert.NotEmpty(t, traceID)
	assert.Equal(t, traceID, w.Header().Get("X-Trace-ID"))
	assert.Contains(t, buf.String(), "trace="+traceID)
}

func TestPrometheusMiddleware_CountsErrors(t *testing.T) {
	r, pm, _, _ := newRouter(t)

	for _, path := range []string{"/ok", "/bad", "/bad", "/missing"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(pm.reqErrors.WithLabelValues("GET", "/bad", "400")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pm.reqErrors.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(pm.reqInflight))
}

func TestPrometheusMiddleware_MetricsEndpoint(t *testing.T) {
	r, _, _, _ := newRouter(t)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "test_http_request_duration_seconds"))
}
