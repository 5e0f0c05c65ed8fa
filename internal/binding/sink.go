package binding

import (
	"github.com/prometheus/client_golang/prometheus"

	"reqmetrics/internal/meta"
	"reqmetrics/internal/metrics"
)

// StatsdSinkFactory returns a factory opening a new statsd connection per request, configured
// from the process-wide metrics settings.
func StatsdSinkFactory(cfg meta.MetricsConfig) SinkFactory {
	return func() (metrics.Sink, error) {
		return metrics.NewStatsdSink(cfg.Host, cfg.Port, metrics.StatsdOpts{
			Prefix:      cfg.Prefix,
			DefaultTags: metrics.HostTags(),
			SampleRate:  float32(cfg.SampleRate),
		})
	}
}

// SharedSinkFactory returns a factory handing every request the same sink. The sink must tolerate
// being closed once per request.
func SharedSinkFactory(sink metrics.Sink) SinkFactory {
	return func() (metrics.Sink, error) {
		return sink, nil
	}
}

// NewSinkFactory selects the sink factory for the configured metrics backend. Prometheus
// collectors are registered with registerer.
func NewSinkFactory(cfg *meta.Config, registerer prometheus.Registerer) SinkFactory {
	switch cfg.MetricsBackend() {
	case meta.BackendStatsd:
		return StatsdSinkFactory(*cfg.Metrics)
	case meta.BackendPrometheus:
		return SharedSinkFactory(metrics.NewPrometheusSink(registerer, cfg.Metrics.Prefix))
	default:
		return SharedSinkFactory(metrics.NewNoopSink())
	}
}
