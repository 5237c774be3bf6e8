// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Reference-data errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Provider errors.
	ErrRateLimit      = errors.New("rate limit exceeded")
	ErrAuthentication = errors.New("authentication failed")

	// Model errors.
	ErrInsufficientData = errors.New("insufficient data points for training")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// FetchErrorKind tags the failure taxonomy of a window fetch.
type FetchErrorKind string

// Fetch error kinds.
const (
	FetchAuth        FetchErrorKind = "auth"
	FetchRateLimited FetchErrorKind = "rate_limited"
	FetchInvalidDate FetchErrorKind = "invalid_date"
	FetchUpstream    FetchErrorKind = "upstream"
	FetchConversion  FetchErrorKind = "conversion"
)

// FetchError is the tagged failure value returned at the fetcher boundary.
// Callers branch on Kind instead of inspecting payload shapes.
type FetchError struct {
	Err     error
	Kind    FetchErrorKind
	Message string
	Status  int
}

func (e *FetchError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s error (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a tagged fetch failure.
func NewFetchError(kind FetchErrorKind, status int, message string, err error) *FetchError {
	return &FetchError{Kind: kind, Status: status, Message: message, Err: err}
}

// FetchErrorKindOf extracts the taxonomy kind from an error chain.
// Returns false when the error is not a FetchError.
func FetchErrorKindOf(err error) (FetchErrorKind, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return "", false
}

// RetryableError wraps an error with retry-specific metadata.
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind == FetchRateLimited
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
