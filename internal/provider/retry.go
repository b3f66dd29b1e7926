package provider

import (
	"context"
	"errors"
	"time"

	"github.com/WoldamlakDebasu/Cognidoc/internal/domain"
)

// DefaultMaxAttempts bounds how often an idempotent provider call is
// retried during ingestion.
const DefaultMaxAttempts = 3

// Backoff returns the delay before retry number attempt (0-based):
// exponential from 200ms, capped at 5s.
func Backoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := 200 * time.Millisecond << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}

// Retry runs op up to attempts times, backing off between tries. Only
// *domain.ProviderError values are retried; anything else, including
// context cancellation, fails immediately. The retry decision is a pure
// function over the returned error.
func Retry(ctx context.Context, attempts int, op func(ctx context.Context) error) error {
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(Backoff(attempt - 1)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		var provErr *domain.ProviderError
		if !errors.As(lastErr, &provErr) {
			return lastErr
		}
	}
	return lastErr
}
