package metrics

// Option customizes a single emission.
type Option func(*emitOpts)

type emitOpts struct {
	tags     Tags
	perRoute bool
	delta    bool
	prefix   Key
	suffix   Key
}

// WithTags attaches tags to the emission.
func WithTags(tags Tags) Option {
	return func(o *emitOpts) {
		o.tags = tags
	}
}

// PerRoute controls whether the emission is mirrored under the route-qualified key. It is off by
// default for Incr, Gauge, and Timing, and on by default for MarkStop.
func PerRoute(enabled bool) Option {
	return func(o *emitOpts) {
		o.perRoute = enabled
	}
}

// Delta makes a Gauge emission adjust the current value instead of replacing it.
func Delta() Option {
	return func(o *emitOpts) {
		o.delta = true
	}
}

// WithPrefix prepends a key to the one emitted by MarkStop.
func WithPrefix(prefix Key) Option {
	return func(o *emitOpts) {
		o.prefix = prefix
	}
}

// WithSuffix appends a key to the one emitted by MarkStop.
func WithSuffix(suffix Key) Option {
	return func(o *emitOpts) {
		o.suffix = suffix
	}
}

func buildOpts(perRoute bool, opts []Option) emitOpts {
	o := emitOpts{perRoute: perRoute}
	for _, opt := range opts {
		opt(&o)
	}

	if o.tags == nil {
		o.tags = Tags{}
	}

	return o
}
