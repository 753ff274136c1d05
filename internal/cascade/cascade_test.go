package cascade

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sametyasit/cryptobuddy/internal/core"
	"github.com/sametyasit/cryptobuddy/internal/retry"
	"go.uber.org/zap"
)

func src(name string, calls *int, result string, err error) Source[string] {
	return Source[string]{
		Name:   name,
		Policy: retry.Policy{MaxAttempts: 1},
		Fetch: func(ctx context.Context) (string, error) {
			*calls++
			return result, err
		},
	}
}

func TestResolve_FirstSuccessWins(t *testing.T) {
	var a, b, c int
	sources := []Source[string]{
		src("first", &a, "", core.ServerError(500)),
		src("second", &b, "payload", nil),
		src("third", &c, "never", nil),
	}

	got, providerName, err := Resolve(context.Background(), core.CapabilityListing, zap.NewNop(), sources)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != "payload" || providerName != "second" {
		t.Errorf("expected payload from 'second', got %q from %q", got, providerName)
	}
	if a != 1 || b != 1 {
		t.Errorf("expected first and second tried once, got %d/%d", a, b)
	}
	if c != 0 {
		t.Error("providers after the first success must not be invoked")
	}
}

func TestResolve_AllFail(t *testing.T) {
	var a, b int
	sources := []Source[string]{
		src("one", &a, "", core.ErrMalformed),
		src("two", &b, "", core.ErrUnauthorized),
	}

	_, _, err := Resolve(context.Background(), core.CapabilityNews, zap.NewNop(), sources)
	if !errors.Is(err, core.ErrAllProvidersFailed) {
		t.Fatalf("expected ALL_PROVIDERS_FAILED, got %v", err)
	}

	var cascadeErr *core.CascadeError
	if !errors.As(err, &cascadeErr) {
		t.Fatal("expected *core.CascadeError")
	}
	if len(cascadeErr.Failures) != 2 {
		t.Fatalf("expected 2 recorded failures, got %d", len(cascadeErr.Failures))
	}
	if cascadeErr.Failures[0].Provider != "one" || cascadeErr.Failures[1].Provider != "two" {
		t.Errorf("failure order must match provider order: %+v", cascadeErr.Failures)
	}
}

func TestResolve_RetryBoundPerProvider(t *testing.T) {
	var rateLimitedCalls, successCalls int
	sources := []Source[string]{
		{
			Name: "always-429",
			Policy: retry.Policy{
				MaxAttempts:  3,
				Backoff:      retry.Fixed(time.Millisecond),
				TimeoutDelay: time.Millisecond,
			},
			Fetch: func(ctx context.Context) (string, error) {
				rateLimitedCalls++
				return "", core.ErrRateLimited
			},
		},
		{
			Name:   "healthy",
			Policy: retry.Policy{MaxAttempts: 1},
			Fetch: func(ctx context.Context) (string, error) {
				successCalls++
				return "from-healthy", nil
			},
		},
	}

	got, providerName, err := Resolve(context.Background(), core.CapabilityListing, zap.NewNop(), sources)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if rateLimitedCalls != 3 {
		t.Errorf("rate-limited provider should be tried exactly maxAttempts times, got %d", rateLimitedCalls)
	}
	if got != "from-healthy" || providerName != "healthy" || successCalls != 1 {
		t.Errorf("unexpected outcome: %q from %q (%d calls)", got, providerName, successCalls)
	}
}

func TestResolve_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int
	sources := []Source[string]{src("any", &calls, "x", nil)}

	_, _, err := Resolve(ctx, core.CapabilityListing, zap.NewNop(), sources)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Error("no provider should run after cancellation")
	}
}
