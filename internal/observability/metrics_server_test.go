package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsHandler_ServesRegistry(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "race_pipeline_test_total", Help: "test"})
	require.NoError(t, reg.Register(counter))
	counter.Add(3)

	handler := NewMetricsHandler(reg)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "race_pipeline_test_total 3"), rec.Body.String())

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestShouldTraceRequest(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"/metrics":          false,
		"/healthz":          false,
		"/debug/pprof/heap": false,
		"/debug/pprof/":     false,
		"/something-else":   true,
	}
	for path, want := range cases {
		if got := shouldTraceRequest(path); got != want {
			t.Fatalf("shouldTraceRequest(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestStartMetricsServer_DisabledWithoutAddr(t *testing.T) {
	t.Parallel()

	if srv := StartMetricsServer(" ", prometheus.NewRegistry(), nil); srv != nil {
		t.Fatalf("expected nil server for empty addr")
	}
	if err := StopMetricsServer(nil, nil, 0); err != nil {
		t.Fatalf("stopping a nil server should be a no-op: %v", err)
	}
}
