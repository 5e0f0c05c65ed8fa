package metrics

// Tags is a set of key/value pairs attached to a single emission. Sinks that do not support
// tagging may ignore them.
type Tags map[string]string

// Sink is a metrics transport capable of emitting counters, gauges, and timers.
type Sink interface {
	// Incr increments the counter at key by count.
	Incr(key string, count int64, tags Tags) error

	// Gauge sets the gauge at key to value, or adjusts it by value if delta is set.
	Gauge(key string, value int64, tags Tags, delta bool) error

	// Timing records a single timer sample, in milliseconds.
	Timing(key string, milliseconds int64, tags Tags) error

	// Close releases the sink's underlying connection.
	Close() error
}

// NoopSink implements the Sink interface but noops on all emissions.
type NoopSink struct{}

// NewNoopSink creates a noop implementation of Sink.
func NewNoopSink() Sink {
	return &NoopSink{}
}

// Incr noops.
func (s *NoopSink) Incr(key string, count int64, tags Tags) error { return nil }

// Gauge noops.
func (s *NoopSink) Gauge(key string, value int64, tags Tags, delta bool) error { return nil }

// Timing noops.
func (s *NoopSink) Timing(key string, milliseconds int64, tags Tags) error { return nil }

// Close noops.
func (s *NoopSink) Close() error { return nil }
