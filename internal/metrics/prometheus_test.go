package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeMetricName(t *testing.T) {
	tests := map[string]string{
		"":                 "",
		"x":                "x",
		"route.checkout.x": "route_checkout_x",
		"db-query.p99":     "db_query_p99",
		"200.ok":           "_200_ok",
	}
	for in, want := range tests {
		if got := sanitizeMetricName(in); got != want {
			t.Errorf("sanitizeMetricName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPrometheusSinkCounter(t *testing.T) {
	registry := prometheus.NewRegistry()
	sink := NewPrometheusSink(registry, "app")

	require.NoError(t, sink.Incr("route.checkout.x", 1, nil))
	require.NoError(t, sink.Incr("route.checkout.x", 2, nil))

	assert.Equal(t, float64(3), testutil.ToFloat64(sink.counters["route_checkout_x_total"]))
	assert.Error(t, sink.Incr("route.checkout.x", -1, nil))
}

func TestPrometheusSinkGauge(t *testing.T) {
	sink := NewPrometheusSink(prometheus.NewRegistry(), "")

	require.NoError(t, sink.Gauge("queue", 10, nil, false))
	require.NoError(t, sink.Gauge("queue", -3, nil, true))

	assert.Equal(t, float64(7), testutil.ToFloat64(sink.gauges["queue"]))
}

func TestPrometheusSinkTiming(t *testing.T) {
	registry := prometheus.NewRegistry()
	sink := NewPrometheusSink(registry, "app")

	require.NoError(t, sink.Timing("render", 120, nil))

	count, err := testutil.GatherAndCount(registry, "app_render_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPrometheusSinkSharedRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := NewPrometheusSink(registry, "app")
	second := NewPrometheusSink(registry, "app")

	require.NoError(t, first.Incr("x", 1, nil))
	require.NoError(t, second.Incr("x", 1, nil))

	assert.Equal(t, float64(2), testutil.ToFloat64(first.counters["x_total"]))
}

func TestPrometheusSinkThroughUtility(t *testing.T) {
	sink := NewPrometheusSink(prometheus.NewRegistry(), "")
	u := NewUtility(sink, "checkout")

	require.NoError(t, u.Incr(Name("x"), 1, PerRoute(true)))
	require.NoError(t, u.Timing(Name("render"), 40*time.Millisecond))

	assert.Equal(t, float64(1), testutil.ToFloat64(sink.counters["x_total"]))
	assert.Equal(t, float64(1), testutil.ToFloat64(sink.counters["route_checkout_x_total"]))
	assert.NoError(t, u.Close())
}

func TestPrometheusSinkKindCollision(t *testing.T) {
	sink := NewPrometheusSink(prometheus.NewRegistry(), "")
	u := NewUtility(sink, "checkout")

	require.NoError(t, u.Incr(Name("x"), 1))
	assert.Error(t, u.Gauge(Path("x", "total"), 1))

	// The counter registered first is unaffected.
	require.NoError(t, u.Incr(Name("x"), 1))
	assert.Equal(t, float64(2), testutil.ToFloat64(sink.counters["x_total"]))
}

func TestPrometheusSinkEmptyKey(t *testing.T) {
	sink := NewPrometheusSink(prometheus.NewRegistry(), "")
	u := NewUtility(sink, "checkout")

	assert.Error(t, u.Incr(nil, 1))
	assert.Error(t, u.Gauge(nil, 1))
	assert.Error(t, u.Timing(Name(""), time.Second))
}
