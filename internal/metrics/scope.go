package metrics

import (
	"errors"
)

// Outcome describes how the block timed by a Scope completed.
type Outcome int

const (
	// Success means the timed block completed normally.
	Success Outcome = iota
	// Failure means the timed block failed.
	Failure
)

// FailureSuffix is appended to the key of a timer whose block failed.
const FailureSuffix = Name("exc")

// ErrScopeState is returned when a Scope is acquired or released out of order.
var ErrScopeState = errors.New("metrics: scope used out of order")

type scopeState int

const (
	scopeIdle scopeState = iota
	scopeStarted
	scopeStopped
)

// Scope times a block of code. It is single use: Acquire starts the timer and Release stops it
// exactly once.
type Scope struct {
	utility  *Utility
	stat     Key
	tags     Tags
	perRoute bool
	state    scopeState
}

// Timer creates an idle Scope timing stat. Only the WithTags and PerRoute options apply.
func (u *Utility) Timer(stat Key, opts ...Option) *Scope {
	o := buildOpts(false, opts)

	return &Scope{
		utility:  u,
		stat:     stat,
		tags:     o.tags,
		perRoute: o.perRoute,
	}
}

// Acquire starts the scope's marker.
func (s *Scope) Acquire() error {
	if s.state != scopeIdle {
		return ErrScopeState
	}

	s.utility.MarkStart(s.stat)
	s.state = scopeStarted

	return nil
}

// Release stops the scope's marker and emits the timer sample. A Failure outcome suffixes the
// emitted key with FailureSuffix.
func (s *Scope) Release(outcome Outcome) error {
	if s.state != scopeStarted {
		return ErrScopeState
	}
	s.state = scopeStopped

	opts := []Option{WithTags(s.tags), PerRoute(s.perRoute)}
	if outcome == Failure {
		opts = append(opts, WithSuffix(FailureSuffix))
	}

	return s.utility.MarkStop(s.stat, opts...)
}

// Time runs fn inside the scope. The scope is released with Failure if fn returns an error or
// panics; a panic is re-raised with its original value after the timer is emitted. The error
// returned by fn is returned unchanged. If fn succeeds, any error from the release is returned.
func (s *Scope) Time(fn func() error) error {
	if err := s.Acquire(); err != nil {
		return err
	}

	completed := false
	defer func() {
		if completed {
			return
		}

		// fn panicked, or exited its goroutine
		recovered := recover()
		_ = s.Release(Failure)
		if recovered != nil {
			panic(recovered)
		}
	}()

	fnErr := fn()
	completed = true

	releaseErr := s.Release(OutcomeOf(fnErr))
	if fnErr != nil {
		return fnErr
	}

	return releaseErr
}

// OutcomeOf maps an error to the Outcome it represents.
func OutcomeOf(err error) Outcome {
	if err != nil {
		return Failure
	}

	return Success
}
