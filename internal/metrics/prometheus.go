package metrics

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// LatencyBucketsSeconds defines the histogram buckets used for timer samples.
var LatencyBucketsSeconds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

var errEmptyKey = errors.New("prometheus: empty metric key")

// PrometheusSink is a Sink that records emissions into Prometheus collectors, registered lazily
// on first use of each key. Tags are ignored, since Prometheus requires a fixed label set per
// metric. Unlike the statsd sink it holds no connection, so a single instance may be shared by
// all requests; it is safe for concurrent use.
//
// Keys are mapped onto Prometheus names by replacing invalid characters with underscores, and
// counters and timers get a _total and _seconds suffix. Distinct keys of different kinds can
// therefore collide: Incr("x") and Gauge("x.total") both want x_total. The emission that loses
// returns the registration error. Empty keys are rejected.
type PrometheusSink struct {
	registerer prometheus.Registerer
	namespace  string

	mutex      sync.Mutex
	counters   map[string]prometheus.Counter
	gauges     map[string]prometheus.Gauge
	histograms map[string]prometheus.Histogram
}

// NewPrometheusSink creates a sink registering its collectors with registerer. The namespace,
// if non-empty, prefixes every metric name.
func NewPrometheusSink(registerer prometheus.Registerer, namespace string) *PrometheusSink {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &PrometheusSink{
		registerer: registerer,
		namespace:  sanitizeMetricName(namespace),
		counters:   make(map[string]prometheus.Counter),
		gauges:     make(map[string]prometheus.Gauge),
		histograms: make(map[string]prometheus.Histogram),
	}
}

// Incr adds count to the counter named after key. Counters are monotonic; a negative count is
// rejected.
func (s *PrometheusSink) Incr(key string, count int64, tags Tags) error {
	if key == "" {
		return errEmptyKey
	}

	if count < 0 {
		return fmt.Errorf("prometheus: negative counter increment: key=%s count=%d", key, count)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	name := sanitizeMetricName(key) + "_total"
	counter, ok := s.counters[name]
	if !ok {
		collector, err := s.register(prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: s.namespace,
			Name:      name,
			Help:      "Counter " + key,
		}))
		if err != nil {
			return err
		}

		if counter, ok = collector.(prometheus.Counter); !ok {
			return fmt.Errorf("prometheus: metric registered with another type: name=%s", name)
		}
		s.counters[name] = counter
	}

	counter.Add(float64(count))

	return nil
}

// Gauge sets, or adjusts if delta is set, the gauge named after key.
func (s *PrometheusSink) Gauge(key string, value int64, tags Tags, delta bool) error {
	if key == "" {
		return errEmptyKey
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	name := sanitizeMetricName(key)
	gauge, ok := s.gauges[name]
	if !ok {
		collector, err := s.register(prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: s.namespace,
			Name:      name,
			Help:      "Gauge " + key,
		}))
		if err != nil {
			return err
		}

		if gauge, ok = collector.(prometheus.Gauge); !ok {
			return fmt.Errorf("prometheus: metric registered with another type: name=%s", name)
		}
		s.gauges[name] = gauge
	}

	if delta {
		gauge.Add(float64(value))
	} else {
		gauge.Set(float64(value))
	}

	return nil
}

// Timing observes a sample, converted to seconds, in the histogram named after key.
func (s *PrometheusSink) Timing(key string, milliseconds int64, tags Tags) error {
	if key == "" {
		return errEmptyKey
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	name := sanitizeMetricName(key) + "_seconds"
	histogram, ok := s.histograms[name]
	if !ok {
		collector, err := s.register(prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: s.namespace,
			Name:      name,
			Help:      "Timer " + key,
			Buckets:   LatencyBucketsSeconds,
		}))
		if err != nil {
			return err
		}

		if histogram, ok = collector.(prometheus.Histogram); !ok {
			return fmt.Errorf("prometheus: metric registered with another type: name=%s", name)
		}
		s.histograms[name] = histogram
	}

	histogram.Observe(float64(milliseconds) / 1000)

	return nil
}

// Close noops; collectors stay registered for scraping.
func (s *PrometheusSink) Close() error {
	return nil
}

// register registers collector, returning the collector already registered under the same
// descriptor if there is one.
func (s *PrometheusSink) register(collector prometheus.Collector) (prometheus.Collector, error) {
	if err := s.registerer.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector, nil
		}

		return nil, fmt.Errorf("prometheus: error registering collector: err=%v", err)
	}

	return collector, nil
}

// sanitizeMetricName maps a dotted metric key onto the Prometheus metric name charset.
func sanitizeMetricName(key string) string {
	if key == "" {
		return ""
	}

	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == ':':
			return r
		default:
			return '_'
		}
	}, key)

	if name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}

	return name
}
