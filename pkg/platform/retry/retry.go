// Package retry implements bounded retries with exponential backoff. The
// delay schedule is a pure function of the attempt number so tests can verify
// it without sleeping, and the sleeper is injectable for the same reason.
package retry

import (
	"context"
	"time"
)

// BackoffFunc maps a zero-based attempt number to the delay before the next
// attempt.
type BackoffFunc func(attempt int) time.Duration

// Exponential returns base * 2^attempt, capped at max.
func Exponential(base, max time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		d := base << uint(attempt)
		if d <= 0 || d > max {
			return max
		}
		return d
	}
}

// Policy bounds a retry loop.
type Policy struct {
	MaxAttempts int
	Backoff     BackoffFunc
	// Sleep defaults to a context-aware wait; tests inject a recorder.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultPolicy retries transient failures a small fixed number of times:
// 3 attempts, 500ms doubling, capped at 5s.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		Backoff:     Exponential(500*time.Millisecond, 5*time.Second),
	}
}

// Do invokes fn up to MaxAttempts times, sleeping per the backoff schedule
// between attempts. It stops early when fn succeeds, when fn reports the
// error as permanent, or when ctx is done. The last error is returned.
func (p Policy) Do(ctx context.Context, fn func() error, permanent func(error) bool) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = wait
	}
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if permanent != nil && permanent(err) {
			return err
		}
		if attempt == attempts-1 {
			break
		}
		if serr := sleep(ctx, p.Backoff(attempt)); serr != nil {
			return serr
		}
	}
	return err
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
