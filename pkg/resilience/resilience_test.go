package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errFlaky = errors.New("flaky")

func fastRetry() RetryConfig {
	return RetryConfig{MaxAttempts: 4, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestRetrySucceedsEventually(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "flaky", fastRetry(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errFlaky
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestRetryGivesUp(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "down", fastRetry(), func(context.Context) error {
		calls++
		return errFlaky
	})
	require.ErrorIs(t, err, errFlaky)
	require.Equal(t, 4, calls)
}

func TestRetryStopsOnPermanent(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "bad row", fastRetry(), func(context.Context) error {
		calls++
		return Permanent(errFlaky)
	})
	require.ErrorIs(t, err, errFlaky)
	require.True(t, IsPermanent(err))
	require.Equal(t, 1, calls)
	require.NoError(t, Permanent(nil))
}

func TestRetryHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, "cancelled", RetryConfig{MaxAttempts: 3, InitialDelay: time.Hour}, func(context.Context) error {
		return errFlaky
	})
	require.ErrorIs(t, err, context.Canceled)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestBreakerOpensAndRecovers(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	b := NewBreaker("redis", BreakerConfig{FailureThreshold: 2, ResetTimeout: time.Second})
	b.now = clock.now
	ctx := context.Background()
	fail := func(context.Context) error { return errFlaky }
	ok := func(context.Context) error { return nil }

	require.ErrorIs(t, b.Do(ctx, fail), errFlaky)
	require.Equal(t, StateClosed, b.State())
	require.ErrorIs(t, b.Do(ctx, fail), errFlaky)
	require.Equal(t, StateOpen, b.State())

	called := false
	err := b.Do(ctx, func(context.Context) error { called = true; return nil })
	require.ErrorIs(t, err, ErrCircuitOpen)
	require.False(t, called)

	clock.advance(time.Second)
	require.ErrorIs(t, b.Do(ctx, fail), errFlaky)
	require.Equal(t, StateOpen, b.State())

	clock.advance(time.Second)
	require.NoError(t, b.Do(ctx, ok))
	require.Equal(t, StateClosed, b.State())
}

func TestBreakerCallTimeout(t *testing.T) {
	b := NewBreaker("slow", BreakerConfig{FailureThreshold: 1, CallTimeout: 10 * time.Millisecond})
	err := b.Do(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, StateOpen, b.State())
}

func TestBreakerIgnoresCallerCancellation(t *testing.T) {
	b := NewBreaker("cancel", BreakerConfig{FailureThreshold: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := b.Do(ctx, func(ctx context.Context) error { return ctx.Err() })
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, StateClosed, b.State())
}
