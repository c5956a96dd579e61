package upstream_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeero-shorts/zeero/internal/infrastructure/upstream"
)

func TestWithBackoffFirstTrySucceeds(t *testing.T) {
	calls := 0
	v, err := upstream.WithBackoff(context.Background(), func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	}, 3, time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)
}

func TestWithBackoffRetriesUntilSuccess(t *testing.T) {
	calls := 0
	v, err := upstream.WithBackoff(context.Background(), func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("flaky")
		}
		return "ok", nil
	}, 5, time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 3, calls)
}

func TestWithBackoffPropagatesLastError(t *testing.T) {
	calls := 0
	lastErr := errors.New("still down")
	_, err := upstream.WithBackoff(context.Background(), func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("earlier failure")
		}
		return 0, lastErr
	}, 2, time.Millisecond)

	assert.ErrorIs(t, err, lastErr)
	assert.Equal(t, 3, calls, "one initial try plus maxRetries attempts")
}

func TestWithBackoffStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := upstream.WithBackoff(ctx, func(ctx context.Context) (int, error) {
		calls++
		cancel()
		return 0, errors.New("fail")
	}, 5, time.Hour)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls, "no retry once the context is gone")
}
