package metrics

import (
	"sync"
	"time"
)

// UnknownRoute is the route name used when the serving route could not be resolved.
const UnknownRoute = "unknown"

// Utility emits metrics on behalf of a single unit of work, typically one request. It owns its
// sink exclusively and tracks the timers started with MarkStart.
type Utility struct {
	sink      Sink
	routeName string
	now       func() time.Time

	mutex         sync.Mutex
	activeMarkers map[string]*Marker
}

// NewUtility creates a Utility emitting to sink. An empty routeName is replaced by UnknownRoute.
func NewUtility(sink Sink, routeName string) *Utility {
	if routeName == "" {
		routeName = UnknownRoute
	}

	return &Utility{
		sink:          sink,
		routeName:     routeName,
		activeMarkers: make(map[string]*Marker),
		now:           time.Now,
	}
}

// RouteName returns the name of the route the utility is bound to.
func (u *Utility) RouteName() string {
	return u.routeName
}

// Incr emits a counter increment of count at the key composed from stat.
func (u *Utility) Incr(stat Key, count int64, opts ...Option) error {
	o := buildOpts(false, opts)

	return u.emit(stat, o.perRoute, func(key string) error {
		return u.sink.Incr(key, count, o.tags)
	})
}

// Gauge emits a gauge value at the key composed from stat. With the Delta option the value
// adjusts the gauge instead of replacing it.
func (u *Utility) Gauge(stat Key, value int64, opts ...Option) error {
	o := buildOpts(false, opts)

	return u.emit(stat, o.perRoute, func(key string) error {
		return u.sink.Gauge(key, value, o.tags, o.delta)
	})
}

// Timing emits a timer sample at the key composed from stat. The duration is sent in whole
// milliseconds, truncated.
func (u *Utility) Timing(stat Key, duration time.Duration, opts ...Option) error {
	o := buildOpts(false, opts)
	milliseconds := duration.Milliseconds()

	return u.emit(stat, o.perRoute, func(key string) error {
		return u.sink.Timing(key, milliseconds, o.tags)
	})
}

// MarkStart places a start marker under the key composed from stat, replacing any marker already
// started under the same key.
func (u *Utility) MarkStart(stat Key) {
	name := Compose(stat)
	marker := NewMarker(name, u.now())

	u.mutex.Lock()
	u.activeMarkers[name] = marker
	u.mutex.Unlock()
}

// MarkStop consumes the marker started under the key composed from stat and emits the elapsed
// time as a timer sample. The emitted key is the marker key, preceded by the WithPrefix key and
// followed by the WithSuffix key when those are non-empty. Per-route mirroring is on by default.
//
// Stopping a marker that was never started is a noop.
func (u *Utility) MarkStop(stat Key, opts ...Option) error {
	o := buildOpts(true, opts)
	name := Compose(stat)

	u.mutex.Lock()
	marker, ok := u.activeMarkers[name]
	delete(u.activeMarkers, name)
	u.mutex.Unlock()

	if !ok {
		return nil
	}

	segments := Segments{Name(marker.Name())}
	if prefix := Compose(o.prefix); prefix != "" {
		segments = append(Segments{Name(prefix)}, segments...)
	}
	if suffix := Compose(o.suffix); suffix != "" {
		segments = append(segments, Name(suffix))
	}

	return u.Timing(segments, marker.Elapsed(u.now()), WithTags(o.tags), PerRoute(o.perRoute))
}

// Active reports whether a marker is currently started under the key composed from stat.
func (u *Utility) Active(stat Key) bool {
	u.mutex.Lock()
	defer u.mutex.Unlock()

	_, ok := u.activeMarkers[Compose(stat)]
	return ok
}

// Close releases the underlying sink.
func (u *Utility) Close() error {
	return u.sink.Close()
}

// emit invokes send with the composed key and, if requested, with the route-qualified key. The
// first sink error is returned as is.
func (u *Utility) emit(stat Key, perRoute bool, send func(key string) error) error {
	key := Compose(stat)

	if err := send(key); err != nil {
		return err
	}

	if perRoute {
		return send(RouteKey(u.routeName, key))
	}

	return nil
}
