package upstream

import (
	"context"
	"time"
)

// WithBackoff invokes op and retries any failure with exponential backoff:
// baseDelay * 2^attempt, no jitter, up to maxRetries additional attempts.
// Errors are never classified; the last one is returned as-is.
func WithBackoff[T any](ctx context.Context, op func(ctx context.Context) (T, error), maxRetries int, baseDelay time.Duration) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err
		if attempt == maxRetries {
			break
		}

		delay := baseDelay * (1 << attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
	return zero, lastErr
}
