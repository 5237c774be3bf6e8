package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() RetryOptions {
	return RetryOptions{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestWithRetry_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return nil
	}, fastRetry())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_RecoversWithinBudget(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return ErrRateLimit
		}
		return nil
	}, fastRetry())
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_ExhaustsBudget(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return ErrRateLimit
	}, fastRetry())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMaxRetries)
	assert.ErrorIs(t, err, ErrRateLimit, "the operation error survives exhaustion")
	assert.Equal(t, 3, calls)
}

func TestWithRetry_ExhaustionKeepsTaxonomy(t *testing.T) {
	throttled := NewFetchError(FetchRateLimited, 429, "throttled", ErrRateLimit)
	err := WithRetry(context.Background(), func() error {
		return throttled
	}, fastRetry())
	require.ErrorIs(t, err, ErrMaxRetries)

	kind, ok := FetchErrorKindOf(err)
	require.True(t, ok, "the fetch error must stay in the chain")
	assert.Equal(t, FetchRateLimited, kind)
	assert.ErrorIs(t, err, ErrRateLimit)
}

func TestWithRetry_NonRetryableAbortsImmediately(t *testing.T) {
	boom := errors.New("schema mismatch")
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return boom
	}, fastRetry())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_HonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(ctx, func() error {
		return ErrRateLimit
	}, RetryOptions{MaxAttempts: 3, InitialDelay: time.Minute, MaxDelay: time.Minute})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithRetry_RetryableWrapper(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return &RetryableError{Err: errors.New("flaky"), Retryable: true}
	}, fastRetry())
	require.ErrorIs(t, err, ErrMaxRetries)
	assert.Equal(t, 3, calls)
}
