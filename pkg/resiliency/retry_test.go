package resiliency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/require"
)

func fastBackoff() backoff.BackOff {
	return backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(time.Millisecond),
		backoff.WithMaxInterval(5*time.Millisecond),
		backoff.WithMaxElapsedTime(time.Second),
	)
}

func TestRetryGetSucceedsAfterTransientErrors(t *testing.T) {
	t.Parallel()

	attempts := 0
	val, err := RetryGet(context.Background(), fastBackoff(), func() (int, error) {
		attempts++
		if attempts < 3 {
			return 0, errors.New("not yet")
		}
		return 42, nil
	})

	require.NoError(t, err)
	require.Equal(t, 42, val)
	require.Equal(t, 3, attempts)
}

func TestRetryGetStopsOnPermanentError(t *testing.T) {
	t.Parallel()

	attempts := 0
	permanentErr := errors.New("permanent")
	_, err := RetryGet(context.Background(), fastBackoff(), func() (int, error) {
		attempts++
		return 0, Permanent(permanentErr)
	})

	require.ErrorIs(t, err, permanentErr)
	require.Equal(t, 1, attempts)
}

func TestRetryGetReportsLastErrorOnCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	attemptErr := errors.New("attempt failed")
	attempts := 0
	_, err := RetryGet(ctx, fastBackoff(), func() (int, error) {
		attempts++
		if attempts > 1 {
			cancel()
		}
		return 0, attemptErr
	})

	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, err, attemptErr)
}
