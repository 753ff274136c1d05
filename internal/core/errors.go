// internal/core/errors.go
package core

import (
	"fmt"
	"strings"
)

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Request construction / credentials
	ErrInvalidRequest = &Error{Code: "INVALID_REQUEST", Message: "request could not be built"}
	ErrUnauthorized   = &Error{Code: "UNAUTHORIZED", Message: "bad or missing credentials"}

	// Transport / upstream
	ErrRateLimited  = &Error{Code: "RATE_LIMITED", Message: "provider rate limit hit"}
	ErrServerError  = &Error{Code: "SERVER_ERROR", Message: "provider returned server error"}
	ErrMalformed    = &Error{Code: "MALFORMED_RESPONSE", Message: "response shape mismatch"}
	ErrTimeout      = &Error{Code: "NETWORK_TIMEOUT", Message: "request timed out"}
	ErrNotConnected = &Error{Code: "NOT_CONNECTED", Message: "no network path available"}

	// Aggregate outcomes
	ErrAssetNotFound      = &Error{Code: "ASSET_NOT_FOUND", Message: "asset not found"}
	ErrAllProvidersFailed = &Error{Code: "ALL_PROVIDERS_FAILED", Message: "every provider failed"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)

// ServerError wraps ErrServerError with the upstream HTTP status.
func ServerError(status int) *Error {
	return WrapError(ErrServerError, fmt.Errorf("status %d", status))
}

// ProviderFailure records one provider's terminal error within a cascade.
type ProviderFailure struct {
	Provider string
	Err      error
}

// CascadeError is returned when every provider in a cascade has been
// exhausted. It carries the ordered per-provider failure list for
// diagnostics; individual failures never cross the facade boundary on
// their own.
type CascadeError struct {
	Capability Capability
	Failures   []ProviderFailure
}

// Error implements the error interface.
func (e *CascadeError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Provider, f.Err))
	}
	return fmt.Sprintf("[ALL_PROVIDERS_FAILED] %s cascade exhausted: %s",
		e.Capability, strings.Join(parts, "; "))
}

// Is matches ErrAllProvidersFailed so callers can classify with errors.Is.
func (e *CascadeError) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return t.Code == ErrAllProvidersFailed.Code
	}
	return false
}
