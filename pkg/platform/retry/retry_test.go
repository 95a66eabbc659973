package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExponentialSchedule(t *testing.T) {
	backoff := Exponential(500*time.Millisecond, 5*time.Second)

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 500 * time.Millisecond},
		{1, 1 * time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 5 * time.Second}, // capped
		{10, 5 * time.Second},
		{40, 5 * time.Second}, // shift overflow still capped
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, backoff(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestDoStopsOnSuccess(t *testing.T) {
	calls := 0
	p := Policy{
		MaxAttempts: 5,
		Backoff:     func(int) time.Duration { return 0 },
		Sleep:       func(context.Context, time.Duration) error { return nil },
	}
	err := p.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	var slept []time.Duration
	p := Policy{
		MaxAttempts: 3,
		Backoff:     Exponential(time.Second, 10*time.Second),
		Sleep: func(_ context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		},
	}
	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		return errors.New("still failing")
	}, nil)
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	// No sleep after the final attempt.
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, slept)
}

func TestDoPermanentErrorShortCircuits(t *testing.T) {
	permanent := errors.New("404")
	calls := 0
	p := Policy{
		MaxAttempts: 5,
		Backoff:     func(int) time.Duration { return 0 },
		Sleep:       func(context.Context, time.Duration) error { return nil },
	}
	err := p.Do(context.Background(), func() error {
		calls++
		return permanent
	}, func(err error) bool { return errors.Is(err, permanent) })
	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDoContextCancelledDuringSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := Policy{
		MaxAttempts: 3,
		Backoff:     func(int) time.Duration { return time.Hour },
	}
	err := p.Do(ctx, func() error { return errors.New("transient") }, nil)
	require.ErrorIs(t, err, context.Canceled)
}
