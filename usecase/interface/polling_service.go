package usecase

import (
	"time"

	"github.com/ca-srg/usagemon/domain/entity"
)

// PollingService owns the background polling loop. Only two states exist,
// stopped and running; Start and Stop are synchronous with respect to the
// state flip and asynchronous with respect to the loop's eventual cessation.
type PollingService interface {
	// Start launches the polling loop with the given fixed period. The
	// first poll happens after one full period. Fails with already_running
	// when the loop is active.
	Start(interval time.Duration) error

	// Stop flips the state and cancels the loop. An invocation already in
	// flight may still emit; callers must treat post-stop events as best
	// effort. Fails with not_running when the loop is stopped.
	Stop() error

	// IsRunning reports the current state
	IsRunning() bool

	// LastData returns the most recent successful poll result, or nil
	LastData() *entity.UsageData

	// LastPollTime returns the time of the most recent successful poll,
	// or nil
	LastPollTime() *time.Time
}

// PollingServiceError represents an error from polling service operations
type PollingServiceError struct {
	Code    string
	Message string
}

func (e *PollingServiceError) Error() string {
	return e.Message
}

// NewPollingServiceError creates a new polling service error
func NewPollingServiceError(code, message string) *PollingServiceError {
	return &PollingServiceError{
		Code:    code,
		Message: message,
	}
}

// Polling service error codes
const (
	// ErrCodeAlreadyRunning is returned by Start when the loop is active
	ErrCodeAlreadyRunning = "already_running"

	// ErrCodeNotRunning is returned by Stop when the loop is stopped
	ErrCodeNotRunning = "not_running"
)
