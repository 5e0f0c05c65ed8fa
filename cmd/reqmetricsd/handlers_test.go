package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reqmetrics/internal/binding"
	"reqmetrics/internal/meta"
)

func newTestRouter(t *testing.T) (http.Handler, *prometheus.Registry) {
	registry := prometheus.NewRegistry()
	cfg := &meta.Config{Metrics: &meta.MetricsConfig{Backend: meta.BackendPrometheus}}

	return newRouter(binding.New(binding.NewSinkFactory(cfg, registry), nil)), registry
}

// gathered returns counter and gauge values and histogram sample counts by metric name.
func gathered(t *testing.T, registry *prometheus.Registry) map[string]float64 {
	families, err := registry.Gather()
	require.NoError(t, err)

	values := make(map[string]float64)
	for _, family := range families {
		for _, m := range family.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				values[family.GetName()] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				values[family.GetName()] = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				values[family.GetName()] = float64(m.GetHistogram().GetSampleCount())
			}
		}
	}

	return values
}

func serveRequest(router http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))

	return rec
}

func TestHome(t *testing.T) {
	router, registry := newTestRouter(t)

	assert.Equal(t, http.StatusOK, serveRequest(router, http.MethodGet, "/").Code)
	assert.Equal(t, http.StatusOK, serveRequest(router, http.MethodGet, "/").Code)

	values := gathered(t, registry)
	assert.Equal(t, float64(2), values["pageviews_total"])
	assert.Equal(t, float64(2), values["route_home_pageviews_total"])
}

func TestCheckout(t *testing.T) {
	router, registry := newTestRouter(t)

	assert.Equal(t, http.StatusOK, serveRequest(router, http.MethodPost, "/checkout?items=3").Code)

	values := gathered(t, registry)
	assert.Equal(t, float64(3), values["route_checkout_cart_items"])
	assert.Equal(t, float64(1), values["checkout_process_seconds"])
	assert.Equal(t, float64(1), values["route_checkout_checkout_process_seconds"])
	assert.Equal(t, float64(1), values["route_checkout_checkout_completed_total"])
}

func TestCheckoutFailureSuffix(t *testing.T) {
	router, registry := newTestRouter(t)

	assert.Equal(t, http.StatusUnprocessableEntity, serveRequest(router, http.MethodPost, "/checkout").Code)

	values := gathered(t, registry)
	assert.Equal(t, float64(1), values["checkout_process_exc_seconds"])
	assert.Equal(t, float64(1), values["route_checkout_checkout_process_exc_seconds"])
	assert.Equal(t, float64(1), values["checkout_rejected_total"])
	assert.NotContains(t, values, "checkout_process_seconds")
}

func TestReport(t *testing.T) {
	router, registry := newTestRouter(t)

	assert.Equal(t, http.StatusOK, serveRequest(router, http.MethodGet, "/report").Code)

	values := gathered(t, registry)
	assert.Equal(t, float64(1), values["report_section_0_seconds"])
	assert.Equal(t, float64(1), values["route_report_report_section_2_seconds"])
	assert.Equal(t, float64(1), values["report_done_seconds"])
}

func TestOrderResourceRoute(t *testing.T) {
	router, registry := newTestRouter(t)

	assert.Equal(t, http.StatusOK, serveRequest(router, http.MethodGet, "/orders/7").Code)

	values := gathered(t, registry)
	assert.Equal(t, float64(1), values["route_main_order_lookups_total"])
}

func TestVersionFlag(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())
}
