// Package retry wraps fallible operations with exponential backoff.
package retry

import (
	"context"
	"time"

	"github.com/ca-srg/usagemon/domain"
	"github.com/ca-srg/usagemon/domain/valueobject"
)

// Operation is a re-callable unit of work. It must be idempotent from the
// caller's perspective; Do does not deduplicate or memoize results.
type Operation[T any] func(ctx context.Context) (T, error)

// Do runs op under the given policy. MaxAttempts bounds the total number of
// calls, not the number of retries. On exhaustion the last error is returned
// verbatim; earlier errors are not retained. The inter-attempt wait is a
// non-blocking suspension that honors context cancellation.
func Do[T any](ctx context.Context, policy valueobject.RetryPolicy, logger domain.Logger, op Operation[T]) (T, error) {
	var zero T
	if err := policy.Validate(); err != nil {
		return zero, err
	}

	attempt := 0
	delay := policy.InitialDelay
	for {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}

		attempt++
		if attempt >= policy.MaxAttempts {
			return zero, err
		}

		if logger != nil {
			logger.Warn(ctx, "retrying after failure",
				domain.NewField("attempt", attempt),
				domain.NewField("maxAttempts", policy.MaxAttempts),
				domain.NewField("delayMs", delay.Milliseconds()),
				domain.NewField("error", err.Error()))
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
		delay = policy.NextDelay(delay)
	}
}
