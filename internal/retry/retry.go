package retry

import (
	"context"
	"errors"
	"time"

	"github.com/sametyasit/cryptobuddy/internal/core"
)

// BackoffFunc returns the wait before the next attempt, given the 1-based
// index of the attempt that just failed.
type BackoffFunc func(attempt int) time.Duration

// Linear grows the wait linearly with the attempt index. This is the
// engine's default shape; it is deliberately not exponential.
func Linear(step time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * step
	}
}

// Fixed waits the same duration after every retry-worthy failure.
func Fixed(d time.Duration) BackoffFunc {
	return func(int) time.Duration {
		return d
	}
}

// Policy bounds a single provider invocation.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// Backoff computes the wait after a rate-limited attempt.
	Backoff BackoffFunc

	// TimeoutDelay is the short fixed wait after a timed-out attempt.
	TimeoutDelay time.Duration
}

// DefaultPolicy matches the primary provider tuning: 3 attempts, linear
// attempt*2s backoff on rate limits, 1s pause on timeouts.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  3,
		Backoff:      Linear(2 * time.Second),
		TimeoutDelay: time.Second,
	}
}

func (p Policy) normalized() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.Backoff == nil {
		p.Backoff = Linear(2 * time.Second)
	}
	if p.TimeoutDelay <= 0 {
		p.TimeoutDelay = time.Second
	}
	return p
}

// retryable classifies an attempt's failure. Rate limits and timeouts are
// worth re-attempting; a missing network path and every fatal class
// (unauthorized, server error, malformed, invalid request) are not.
func retryable(err error) (wait bool, rateLimited bool) {
	switch {
	case errors.Is(err, core.ErrRateLimited):
		return true, true
	case errors.Is(err, core.ErrTimeout):
		return true, false
	default:
		return false, false
	}
}

// Do runs fn under the policy. The terminal error of an exhausted
// retry-worthy class is the error of the last attempt.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	p = p.normalized()

	var zero T
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		retry, rateLimited := retryable(err)
		if !retry || attempt == p.MaxAttempts {
			return zero, lastErr
		}

		delay := p.TimeoutDelay
		if rateLimited {
			delay = p.Backoff(attempt)
		}
		if err := sleep(ctx, delay); err != nil {
			return zero, err
		}
	}
	return zero, lastErr
}

// sleep waits for d or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
