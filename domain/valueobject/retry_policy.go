package valueobject

import (
	"time"

	"github.com/ca-srg/usagemon/domain"
)

// RetryPolicy describes exponential backoff for a fallible operation.
// The delay before attempt k+1 is min(InitialDelay * Multiplier^(k-1),
// MaxDelay), so the sequence is non-decreasing. MaxAttempts bounds the total
// number of calls, not the number of retries.
type RetryPolicy struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxAttempts  int
	MaxDelay     time.Duration
}

// DefaultRetryPolicy returns the default backoff policy (1s initial delay
// doubling up to 60s, four attempts total)
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		InitialDelay: 1000 * time.Millisecond,
		Multiplier:   2.0,
		MaxAttempts:  4,
		MaxDelay:     60000 * time.Millisecond,
	}
}

// Validate checks the policy invariants
func (p RetryPolicy) Validate() error {
	if p.InitialDelay < 0 {
		return domain.ErrInvalidInput("initialDelay", "must not be negative")
	}
	if p.Multiplier < 1.0 {
		return domain.ErrInvalidInput("multiplier", "must be at least 1.0")
	}
	if p.MaxAttempts < 1 {
		return domain.ErrInvalidInput("maxAttempts", "must be at least 1")
	}
	if p.MaxDelay < p.InitialDelay {
		return domain.ErrInvalidInput("maxDelay", "must not be below initialDelay")
	}
	return nil
}

// NextDelay computes the delay that follows current, applying the multiplier
// and the MaxDelay ceiling
func (p RetryPolicy) NextDelay(current time.Duration) time.Duration {
	next := time.Duration(float64(current) * p.Multiplier)
	if next > p.MaxDelay {
		return p.MaxDelay
	}
	return next
}
