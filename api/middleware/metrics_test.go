package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gebeyalink/storefront/pkg/metrics"
)

func TestMetricsObservesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewStorefrontMetrics(reg)

	r := chi.NewRouter()
	r.Use(Metrics(m))
	r.Get("/cart/{productID}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/cart/prod-1", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	require.Equal(t, http.StatusNoContent, resp.Code)

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, mf := range families {
		if mf.GetName() != "http_request_duration_seconds" {
			continue
		}
		require.Len(t, mf.GetMetric(), 1)
		labels := map[string]string{}
		for _, pair := range mf.GetMetric()[0].GetLabel() {
			labels[pair.GetName()] = pair.GetValue()
		}
		assert.Equal(t, "/cart/{productID}", labels["route"])
		assert.Equal(t, http.MethodGet, labels["method"])
		assert.Equal(t, "204", labels["status"])
		found = true
	}
	require.True(t, found, "histogram not registered")
}

func TestMetricsNilSafe(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics(nil))
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, resp.Code)
}
