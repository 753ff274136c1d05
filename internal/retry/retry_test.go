package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sametyasit/cryptobuddy/internal/core"
)

func fastPolicy(attempts int) Policy {
	return Policy{
		MaxAttempts:  attempts,
		Backoff:      Fixed(time.Millisecond),
		TimeoutDelay: time.Millisecond,
	}
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), fastPolicy(3), func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil || got != "ok" {
		t.Fatalf("unexpected result: %q, %v", got, err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDo_RateLimitedRetriesUpToBound(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastPolicy(3), func(ctx context.Context) (string, error) {
		calls++
		return "", core.ErrRateLimited
	})
	if !errors.Is(err, core.ErrRateLimited) {
		t.Fatalf("expected RATE_LIMITED as terminal error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", calls)
	}
}

func TestDo_TimeoutRetries(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), fastPolicy(2), func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, core.WrapError(core.ErrTimeout, errors.New("deadline"))
		}
		return 7, nil
	})
	if err != nil || got != 7 {
		t.Fatalf("unexpected result: %d, %v", got, err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestDo_FatalClassesFailImmediately(t *testing.T) {
	fatals := []error{
		core.ErrInvalidRequest,
		core.ErrUnauthorized,
		core.ServerError(500),
		core.ErrMalformed,
		core.ErrNotConnected,
	}

	for _, fatal := range fatals {
		calls := 0
		_, err := Do(context.Background(), fastPolicy(3), func(ctx context.Context) (string, error) {
			calls++
			return "", fatal
		})
		if !errors.Is(err, fatal) {
			t.Errorf("%v: expected error to propagate, got %v", fatal, err)
		}
		if calls != 1 {
			t.Errorf("%v: expected no retry, got %d calls", fatal, calls)
		}
	}
}

func TestDo_LinearBackoffGrowth(t *testing.T) {
	b := Linear(2 * time.Second)
	for attempt, want := range map[int]time.Duration{
		1: 2 * time.Second,
		2: 4 * time.Second,
		3: 6 * time.Second,
	} {
		if got := b(attempt); got != want {
			t.Errorf("Linear backoff attempt %d: got %v, want %v", attempt, got, want)
		}
	}
}

func TestDo_CancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	policy := Policy{
		MaxAttempts: 3,
		Backoff:     Fixed(5 * time.Second),
	}

	calls := 0
	done := make(chan error, 1)
	go func() {
		_, err := Do(ctx, policy, func(ctx context.Context) (string, error) {
			calls++
			return "", core.ErrRateLimited
		})
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("retry wait did not abort on cancellation")
	}
	if calls != 1 {
		t.Errorf("expected 1 call before cancellation, got %d", calls)
	}
}

func TestPolicy_Normalized(t *testing.T) {
	p := Policy{}.normalized()
	if p.MaxAttempts != 1 {
		t.Errorf("expected MaxAttempts floor of 1, got %d", p.MaxAttempts)
	}
	if p.Backoff == nil || p.TimeoutDelay <= 0 {
		t.Error("expected backoff and timeout delay defaults")
	}
}
