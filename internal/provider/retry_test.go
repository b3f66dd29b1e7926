package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WoldamlakDebasu/Cognidoc/internal/domain"
)

func transientErr() error {
	return &domain.ProviderError{Provider: "test", Op: "op", Err: errors.New("transient")}
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, func(context.Context) error {
		calls++
		if calls < 3 {
			return transientErr()
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, func(context.Context) error {
		calls++
		return transientErr()
	})

	var provErr *domain.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, 3, calls)
}

func TestRetryDoesNotRetryOtherErrors(t *testing.T) {
	valErr := &domain.ValidationError{Reason: "bad input"}
	calls := 0
	err := Retry(context.Background(), 3, func(context.Context) error {
		calls++
		return valErr
	})

	require.ErrorIs(t, err, valErr)
	assert.Equal(t, 1, calls, "only provider errors are transient")
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, 5, func(context.Context) error {
		calls++
		cancel()
		return transientErr()
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls, "no retry once the context is done")
}

func TestBackoffGrowsAndCaps(t *testing.T) {
	assert.Equal(t, 200*time.Millisecond, Backoff(0))
	assert.Equal(t, 400*time.Millisecond, Backoff(1))
	assert.Equal(t, 800*time.Millisecond, Backoff(2))
	assert.Equal(t, 5*time.Second, Backoff(10))
	assert.Equal(t, 200*time.Millisecond, Backoff(-1))
}
