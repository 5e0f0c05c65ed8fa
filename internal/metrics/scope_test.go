package metrics

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeSuccess(t *testing.T) {
	u, sink, clock := newTestUtility("checkout")
	scope := u.Timer(Name("render"))

	require.NoError(t, scope.Acquire())
	clock.advance(40 * time.Millisecond)
	require.NoError(t, scope.Release(Success))

	assert.Equal(t, []call{{kind: "timing", key: "render", value: 40, tags: Tags{}}}, sink.calls)
}

func TestScopeFailureSuffix(t *testing.T) {
	u, sink, _ := newTestUtility("checkout")
	scope := u.Timer(Name("render"), PerRoute(true))

	require.NoError(t, scope.Acquire())
	require.NoError(t, scope.Release(Failure))

	assert.Equal(t, []string{"render.exc", "route.checkout.render.exc"}, sink.keys())
}

func TestScopeTags(t *testing.T) {
	u, sink, _ := newTestUtility("checkout")
	tags := Tags{"shard": "3"}

	require.NoError(t, u.Timer(Name("render"), WithTags(tags)).Time(func() error { return nil }))

	require.Len(t, sink.calls, 1)
	assert.Equal(t, tags, sink.calls[0].tags)
}

func TestScopeSingleUse(t *testing.T) {
	u, sink, _ := newTestUtility("checkout")
	scope := u.Timer(Name("render"))

	assert.ErrorIs(t, scope.Release(Success), ErrScopeState)

	require.NoError(t, scope.Acquire())
	assert.ErrorIs(t, scope.Acquire(), ErrScopeState)

	require.NoError(t, scope.Release(Success))
	assert.ErrorIs(t, scope.Release(Success), ErrScopeState)
	assert.ErrorIs(t, scope.Acquire(), ErrScopeState)

	assert.Len(t, sink.calls, 1)
}

func TestScopeTimeSuccess(t *testing.T) {
	u, sink, clock := newTestUtility("checkout")

	err := u.Timer(Name("work")).Time(func() error {
		clock.advance(7 * time.Millisecond)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []call{{kind: "timing", key: "work", value: 7, tags: Tags{}}}, sink.calls)
}

func TestScopeTimeErrorPassesThrough(t *testing.T) {
	u, sink, _ := newTestUtility("checkout")
	failure := errors.New("payment declined")

	err := u.Timer(Name("work")).Time(func() error { return failure })

	assert.Same(t, failure, err)
	assert.Equal(t, []string{"work.exc"}, sink.keys())
}

func TestScopeTimeReturnsSinkError(t *testing.T) {
	u, sink, _ := newTestUtility("checkout")
	boom := errors.New("transport down")
	sink.err = boom

	assert.Equal(t, boom, u.Timer(Name("work")).Time(func() error { return nil }))

	failure := errors.New("payment declined")
	assert.Same(t, failure, u.Timer(Name("work")).Time(func() error { return failure }))
}

func TestScopeTimePanicPassesThrough(t *testing.T) {
	u, sink, _ := newTestUtility("checkout")
	payload := errors.New("nil map write")

	assert.PanicsWithValue(t, payload, func() {
		_ = u.Timer(Name("work")).Time(func() error { panic(payload) })
	})

	assert.Equal(t, []string{"work.exc"}, sink.keys())
	assert.False(t, u.Active(Name("work")))
}

func TestOutcomeOf(t *testing.T) {
	assert.Equal(t, Success, OutcomeOf(nil))
	assert.Equal(t, Failure, OutcomeOf(errors.New("x")))
}

func TestScopeTimeGoexit(t *testing.T) {
	u, sink, _ := newTestUtility("checkout")
	done := make(chan struct{})

	go func() {
		defer close(done)
		_ = u.Timer(Name("work")).Time(func() error {
			runtime.Goexit()
			return nil
		})
	}()
	<-done

	assert.Equal(t, []string{"work.exc"}, sink.keys())
	assert.False(t, u.Active(Name("work")))
}
