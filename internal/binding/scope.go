package binding

import (
	"fmt"
	"net/http"
	"sync"

	"reqmetrics/internal/metrics"
)

// Scope holds the state of a single request: its lazily constructed metrics utility and the
// callbacks to run when the request finishes.
type Scope struct {
	binding   *Binding
	request   *http.Request
	utility   *metrics.Utility
	callbacks []func()
	finished  bool
	mutex     sync.Mutex
}

// Metrics returns the request's metrics utility. The first call constructs the sink and the
// utility and schedules the sink's release for the end of the request; later calls return the
// same utility. A failed construction is not memoized.
func (s *Scope) Metrics() (*metrics.Utility, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.finished {
		return nil, ErrUnavailable
	}

	if s.utility != nil {
		return s.utility, nil
	}

	sink, err := s.binding.newSink()
	if err != nil {
		return nil, fmt.Errorf("binding: error creating metrics sink: err=%v", err)
	}

	routeName, _ := ResolveRouteName(s.request)
	utility := metrics.NewUtility(sink, routeName)

	s.binding.logger.Debug("binding: created metrics utility: route=%s", utility.RouteName())

	s.callbacks = append(s.callbacks, func() {
		if err := utility.Close(); err != nil {
			s.binding.logger.Warn(
				"binding: error releasing metrics sink: route=%s err=%v",
				utility.RouteName(),
				err,
			)
		}
	})
	s.utility = utility

	return utility, nil
}

// SetResource attaches the resource the request resolved to. It only affects the route name if
// the utility has not been constructed yet.
func (s *Scope) SetResource(resource interface{}) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.request = s.request.WithContext(WithResource(s.request.Context(), resource))
}

// RouteName returns the route name the request's utility is, or would be, bound to.
func (s *Scope) RouteName() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.utility != nil {
		return s.utility.RouteName()
	}

	if name, ok := ResolveRouteName(s.request); ok {
		return name
	}

	return metrics.UnknownRoute
}

// OnFinish registers a callback to run when the request finishes. Callbacks registered after the
// request finished run immediately.
func (s *Scope) OnFinish(fn func()) {
	s.mutex.Lock()
	if !s.finished {
		s.callbacks = append(s.callbacks, fn)
		s.mutex.Unlock()
		return
	}
	s.mutex.Unlock()

	fn()
}

// Finish runs the registered callbacks in registration order. Only the first call has any effect.
func (s *Scope) Finish() {
	s.mutex.Lock()
	if s.finished {
		s.mutex.Unlock()
		return
	}
	s.finished = true
	callbacks := s.callbacks
	s.callbacks = nil
	s.mutex.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}
