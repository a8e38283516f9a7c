package retrylimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, nil, fastConfig(5))
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryExhaustionWrapsLastError(t *testing.T) {
	sentinel := errors.New("still broken")
	calls := 0
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		return sentinel
	}, nil, fastConfig(3))
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 3, calls)
}

func TestFatalErrorStopsImmediately(t *testing.T) {
	calls := 0
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		return &FatalError{Err: errors.New("bad request")}
	}, nil, fastConfig(5))
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestContextCancellationStopsRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := WithRetryConfig(ctx, func() error {
		calls++
		cancel()
		return errors.New("transient")
	}, nil, fastConfig(10))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestOnRetryCallback(t *testing.T) {
	var seen []int
	cfg := fastConfig(3)
	cfg.OnRetry = func(attempt int, err error) { seen = append(seen, attempt) }
	_ = WithRetryConfig(context.Background(), func() error {
		return errors.New("transient")
	}, nil, cfg)
	assert.Equal(t, []int{1, 2, 3}, seen)
}

func TestAdaptiveLimiterAdjusts(t *testing.T) {
	lim := NewAdaptiveLimiter(2, 1, 6, 1, 0.5)
	require.Equal(t, 2.0, lim.CurrentLimit())

	lim.Failure()
	assert.Equal(t, 1.0, lim.CurrentLimit(), "halved then clamped to min")

	lim.Failure()
	assert.Equal(t, 1.0, lim.CurrentLimit(), "never below min")
}

func TestAdaptiveLimiterBounds(t *testing.T) {
	lim := NewAdaptiveLimiter(10, 1, 6, 1, 0.5)
	// initial above max is still capped on first adjustment
	lim.Failure()
	assert.LessOrEqual(t, lim.CurrentLimit(), 6.0)
}

func TestWithRetryMaxUsesLimiter(t *testing.T) {
	lim := NewAdaptiveLimiter(100, 1, 100, 1, 0.5)
	calls := 0
	err := WithRetryMax(context.Background(), func() error {
		calls++
		return nil
	}, lim, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestAddJitterBounds(t *testing.T) {
	base := 100 * time.Millisecond
	for i := 0; i < 100; i++ {
		d := addJitter(base)
		assert.GreaterOrEqual(t, d, base)
		assert.LessOrEqual(t, d, base+base/4)
	}
}
