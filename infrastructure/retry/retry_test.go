package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ca-srg/usagemon/domain/valueobject"
)

func fastPolicy(maxAttempts int) valueobject.RetryPolicy {
	return valueobject.RetryPolicy{
		InitialDelay: time.Millisecond,
		Multiplier:   2.0,
		MaxAttempts:  maxAttempts,
		MaxDelay:     10 * time.Millisecond,
	}
}

func TestDo(t *testing.T) {
	t.Run("first attempt succeeds", func(t *testing.T) {
		calls := 0
		result, err := Do(context.Background(), fastPolicy(4), nil, func(ctx context.Context) (int, error) {
			calls++
			return 42, nil
		})

		require.NoError(t, err)
		assert.Equal(t, 42, result)
		assert.Equal(t, 1, calls)
	})

	t.Run("recovers after transient failures", func(t *testing.T) {
		calls := 0
		result, err := Do(context.Background(), fastPolicy(4), nil, func(ctx context.Context) (string, error) {
			calls++
			if calls < 3 {
				return "", errors.New("transient")
			}
			return "recovered", nil
		})

		require.NoError(t, err)
		assert.Equal(t, "recovered", result)
		assert.Equal(t, 3, calls)
	})

	t.Run("max attempts bounds total calls", func(t *testing.T) {
		calls := 0
		lastErr := errors.New("attempt specific")
		_, err := Do(context.Background(), fastPolicy(4), nil, func(ctx context.Context) (int, error) {
			calls++
			return 0, lastErr
		})

		assert.Equal(t, 4, calls)
		assert.Same(t, lastErr, err)
	})

	t.Run("last error is returned verbatim", func(t *testing.T) {
		calls := 0
		_, err := Do(context.Background(), fastPolicy(3), nil, func(ctx context.Context) (int, error) {
			calls++
			if calls < 3 {
				return 0, errors.New("earlier")
			}
			return 0, errors.New("final failure")
		})

		require.Error(t, err)
		assert.Equal(t, "final failure", err.Error())
	})

	t.Run("single attempt policy never retries", func(t *testing.T) {
		calls := 0
		_, err := Do(context.Background(), fastPolicy(1), nil, func(ctx context.Context) (int, error) {
			calls++
			return 0, errors.New("fail")
		})

		assert.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("cancellation interrupts the backoff wait", func(t *testing.T) {
		policy := valueobject.RetryPolicy{
			InitialDelay: time.Minute,
			Multiplier:   2.0,
			MaxAttempts:  4,
			MaxDelay:     time.Hour,
		}
		ctx, cancel := context.WithCancel(context.Background())

		calls := 0
		done := make(chan error, 1)
		go func() {
			_, err := Do(ctx, policy, nil, func(ctx context.Context) (int, error) {
				calls++
				return 0, errors.New("fail")
			})
			done <- err
		}()

		time.Sleep(50 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
			assert.Equal(t, 1, calls)
		case <-time.After(5 * time.Second):
			t.Fatal("Do did not return after cancellation")
		}
	})

	t.Run("invalid policy fails before the first call", func(t *testing.T) {
		calls := 0
		_, err := Do(context.Background(), valueobject.RetryPolicy{}, nil, func(ctx context.Context) (int, error) {
			calls++
			return 0, nil
		})

		assert.Error(t, err)
		assert.Equal(t, 0, calls)
	})
}
