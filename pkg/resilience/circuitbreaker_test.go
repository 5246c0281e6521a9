package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

var errUpstream = errors.New("upstream 502")

func newTestBreaker(clock *fakeClock) *CircuitBreaker {
	return NewCircuitBreaker(Config{
		Name:             "storage",
		FailureThreshold: 3,
		SuccessThreshold: 1,
		OpenTimeout:      time.Minute,
		Now:              clock.Now,
	}, nil)
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	cb := newTestBreaker(clock)

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(func() error { return errUpstream }), errUpstream)
	}
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
	assert.Equal(t, uint64(1), cb.Metrics().Rejected)
}

func TestBreakerHalfOpenRecovers(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	cb := newTestBreaker(clock)
	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errUpstream })
	}

	clock.Advance(2 * time.Minute)
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	cb := newTestBreaker(clock)
	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errUpstream })
	}

	clock.Advance(2 * time.Minute)
	_ = cb.Execute(func() error { return errUpstream })

	assert.Equal(t, StateOpen, cb.State())
	assert.Equal(t, uint64(2), cb.Metrics().OpenCount)
}

func TestBreakerIgnoresNonFailures(t *testing.T) {
	errMissing := errors.New("object not found")
	cb := NewCircuitBreaker(Config{
		Name:             "storage",
		FailureThreshold: 1,
		IsFailure:        func(err error) bool { return !errors.Is(err, errMissing) },
	}, nil)

	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, cb.Execute(func() error { return errMissing }), errMissing)
	}
	assert.Equal(t, StateClosed, cb.State())
}

func TestBreakerIgnoresCallerCancellation(t *testing.T) {
	cb := NewCircuitBreaker(Config{Name: "storage", FailureThreshold: 1}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := cb.ExecuteContext(ctx, func(ctx context.Context) error { return ctx.Err() })

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, cb.State())
}
