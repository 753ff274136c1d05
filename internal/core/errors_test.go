package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Is(t *testing.T) {
	wrapped := WrapError(ErrRateLimited, fmt.Errorf("429 from upstream"))

	if !errors.Is(wrapped, ErrRateLimited) {
		t.Error("wrapped error should match its base by code")
	}
	if errors.Is(wrapped, ErrTimeout) {
		t.Error("wrapped error should not match a different code")
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	wrapped := WrapError(ErrTimeout, cause)

	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is should reach the cause through Unwrap")
	}
}

func TestServerError_CarriesStatus(t *testing.T) {
	err := ServerError(503)

	if !errors.Is(err, ErrServerError) {
		t.Error("ServerError should match ErrServerError")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("expected status in message, got %q", err.Error())
	}
}

func TestCascadeError_MatchesAllProvidersFailed(t *testing.T) {
	err := &CascadeError{
		Capability: CapabilityListing,
		Failures: []ProviderFailure{
			{Provider: "coingecko", Err: ErrRateLimited},
			{Provider: "coinlore", Err: ServerError(500)},
		},
	}

	if !errors.Is(err, ErrAllProvidersFailed) {
		t.Error("CascadeError should match ErrAllProvidersFailed")
	}

	msg := err.Error()
	for _, want := range []string{"coingecko", "coinlore", "listing"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in diagnostic message, got %q", want, msg)
		}
	}
}
