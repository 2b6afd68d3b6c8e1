package http

import (
	"context"
	"time"
)

// DefaultRetryDelays returns the delays between save attempts: a single
// retry after 500ms.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{500 * time.Millisecond}
}

// withRetry calls fn until it succeeds or returns a non-transient error,
// waiting delays[i] before retry i+1. A cancelled context abandons the
// remaining retries.
func withRetry[T any](ctx context.Context, delays []time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	maxAttempts := len(delays) + 1

	var zero T
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if !isTransient(err) || attempt >= maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return zero, lastErr
}

// transientError marks a failure of the channel itself, as opposed to a
// request the coordinator rejected.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func isTransient(err error) bool {
	_, ok := err.(*transientError)
	return ok
}
