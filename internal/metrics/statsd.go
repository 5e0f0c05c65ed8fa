package metrics

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/cactus/go-statsd-client/statsd"
)

// StatsdSink is a Sink emitting to a statsd server over UDP.
type StatsdSink struct {
	backend     statsd.Statter
	defaultTags Tags
	sampleRate  float32
}

// StatsdOpts formalizes statsd sink configuration options.
type StatsdOpts struct {
	// Prefix is prepended to every metric key by the statsd client. It may be empty.
	Prefix string
	// DefaultTags are included with every metric, in addition to the per-emission tags. Per-emission
	// tags take precedence on conflicting keys.
	DefaultTags Tags
	// SampleRate is the statsd sample rate in (0, 1]. Non-positive values mean 1.
	SampleRate float32
}

// NewStatsdSink creates a sink pointing at the statsd server listening on host and port.
func NewStatsdSink(host string, port int, opts StatsdOpts) (*StatsdSink, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	client, err := statsd.NewClient(addr, opts.Prefix)
	if err != nil {
		return nil, fmt.Errorf("statsd: error creating statsd client: addr=%s err=%v", addr, err)
	}

	if opts.SampleRate <= 0 {
		opts.SampleRate = 1
	}

	return &StatsdSink{
		backend:     client,
		defaultTags: opts.DefaultTags,
		sampleRate:  opts.SampleRate,
	}, nil
}

// HostTags returns default tags identifying the current host, or no tags if the hostname is
// unavailable.
func HostTags() Tags {
	hostname, err := os.Hostname()
	if err != nil {
		return Tags{}
	}

	return Tags{"host": hostname}
}

// Incr emits a count metric.
func (s *StatsdSink) Incr(key string, count int64, tags Tags) error {
	return s.backend.Inc(s.formatMetric(key, tags), count, s.sampleRate)
}

// Gauge emits a gauge metric, or a gauge delta if delta is set.
func (s *StatsdSink) Gauge(key string, value int64, tags Tags, delta bool) error {
	if delta {
		return s.backend.GaugeDelta(s.formatMetric(key, tags), value, s.sampleRate)
	}

	return s.backend.Gauge(s.formatMetric(key, tags), value, s.sampleRate)
}

// Timing emits a timer sample in milliseconds.
func (s *StatsdSink) Timing(key string, milliseconds int64, tags Tags) error {
	return s.backend.Timing(s.formatMetric(key, tags), milliseconds, s.sampleRate)
}

// Close closes the client's UDP socket.
func (s *StatsdSink) Close() error {
	return s.backend.Close()
}

// formatMetric serializes a metric and a map of tags (in addition to any default tags) into a
// single string to ship to the time-series database backend.
func (s *StatsdSink) formatMetric(metric string, tags Tags) string {
	// Some characters, like colons, are incompatible with the statsd protocol.
	// This standardizes on URL escaping to encode such characters that may appear in the metric
	// name or tag keys/values.
	escapedMetric := url.QueryEscape(metric)

	if len(s.defaultTags)+len(tags) == 0 {
		return escapedMetric
	}

	mergedTags := make(Tags, len(s.defaultTags)+len(tags))
	for key, value := range s.defaultTags {
		mergedTags[key] = value
	}
	for key, value := range tags {
		mergedTags[key] = value
	}

	keys := make([]string, 0, len(mergedTags))
	for key := range mergedTags {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	// Tags are delimited InfluxDB-style.
	components := make([]string, 0, len(keys))
	for _, key := range keys {
		components = append(
			components,
			fmt.Sprintf("%s=%s", url.QueryEscape(key), url.QueryEscape(mergedTags[key])),
		)
	}

	return fmt.Sprintf("%s,%s", escapedMetric, strings.Join(components, ","))
}
