package binding

import (
	"context"
	"errors"
	"net/http"

	"github.com/getsentry/raven-go"
	"lib.kevinlin.info/aperture/lib"

	"reqmetrics/internal/log"
	"reqmetrics/internal/metrics"
)

// ErrUnavailable is returned when a metrics utility is requested outside of an active request.
var ErrUnavailable = errors.New("binding: metrics utility unavailable: no active request")

// SinkFactory constructs the sink for a single request.
type SinkFactory func() (metrics.Sink, error)

// Binding produces one metrics.Utility per request.
type Binding struct {
	newSink SinkFactory
	logger  log.Logger
	capture func(err error, tags map[string]string)
}

// New creates a Binding constructing per-request sinks with newSink.
func New(newSink SinkFactory, logger log.Logger) *Binding {
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	return &Binding{
		newSink: newSink,
		logger:  logger,
		capture: func(err error, tags map[string]string) {
			raven.CaptureError(err, tags)
		},
	}
}

// NewScope creates the per-request scope for r. The caller must call Finish once the request
// completes.
func (b *Binding) NewScope(r *http.Request) *Scope {
	return &Scope{
		binding: b,
		request: r,
	}
}

// Middleware wraps next so that every request carries a Scope in its context. The scope is
// finished when next returns or panics.
func (b *Binding) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stopwatch := lib.NewStopwatch()
		scope := b.NewScope(r)

		defer func() {
			scope.Finish()
			b.logger.Debug(
				"binding: finished request: route=%s path=%s elapsed=%v",
				scope.RouteName(),
				r.URL.Path,
				stopwatch.Elapsed(),
			)
		}()

		next.ServeHTTP(w, r.WithContext(WithScope(r.Context(), scope)))
	})
}

// ConsumeError logs an error raised while serving a request and reports it to Sentry, tagged with
// the request's route.
func (b *Binding) ConsumeError(ctx context.Context, err error) {
	route := metrics.UnknownRoute
	if scope, ok := ScopeFromContext(ctx); ok {
		route = scope.RouteName()
	}

	b.logger.Error("binding: error serving request: route=%s err=%v", route, err)
	b.capture(err, map[string]string{"route": route})
}

// WithScope returns a copy of ctx carrying scope.
func WithScope(ctx context.Context, scope *Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey, scope)
}

// ScopeFromContext returns the Scope carried by ctx, if any.
func ScopeFromContext(ctx context.Context) (*Scope, bool) {
	scope, ok := ctx.Value(scopeContextKey).(*Scope)
	return scope, ok && scope != nil
}

// Metrics returns the metrics utility of the request carried by ctx, constructing it on first
// use. It returns ErrUnavailable if ctx carries no active request.
func Metrics(ctx context.Context) (*metrics.Utility, error) {
	scope, ok := ScopeFromContext(ctx)
	if !ok {
		return nil, ErrUnavailable
	}

	return scope.Metrics()
}
