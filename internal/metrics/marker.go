package metrics

import (
	"time"
)

// Marker is a named point in time marking the start of a timed interval.
type Marker struct {
	name  string
	start time.Time
}

// NewMarker creates a marker for the composed key name, started at the specified time.
func NewMarker(name string, start time.Time) *Marker {
	return &Marker{
		name:  name,
		start: start,
	}
}

// Name returns the composed key the marker was started under.
func (m *Marker) Name() string {
	return m.name
}

// Start returns the time at which the marker was placed.
func (m *Marker) Start() time.Time {
	return m.start
}

// Elapsed returns the amount of time between the marker's start and now.
func (m *Marker) Elapsed(now time.Time) time.Duration {
	return now.Sub(m.start)
}
