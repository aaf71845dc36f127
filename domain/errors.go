package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents the type of domain error
type ErrorCode string

const (
	// ErrCodeIoFailure indicates that spawning the scraper process or reading
	// its output streams failed
	ErrCodeIoFailure ErrorCode = "IO_FAILURE"

	// ErrCodeTimeout indicates that the scraper did not produce output within
	// the configured deadline
	ErrCodeTimeout ErrorCode = "TIMEOUT"

	// ErrCodeProtocolViolation indicates that the scraper output did not
	// conform to the stdout/stderr JSON contract
	ErrCodeProtocolViolation ErrorCode = "PROTOCOL_VIOLATION"

	// ErrCodeExecutionFailure indicates that the scraper explicitly reported
	// failure, exited non-zero, or could not be invoked at all
	ErrCodeExecutionFailure ErrorCode = "EXECUTION_FAILURE"

	// ErrCodeInvalidInput indicates that the input provided is invalid
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrCodeInvalidState indicates an invalid state transition
	ErrCodeInvalidState ErrorCode = "INVALID_STATE"

	// ErrCodeRepository indicates a repository operation error
	ErrCodeRepository ErrorCode = "REPOSITORY_ERROR"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithDetails adds details to the error
func (e *DomainError) WithDetails(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// NewDomainErrorWithCause creates a new domain error with an underlying cause
func NewDomainErrorWithCause(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

// Scraper error constructors. A poll result is exactly one of a usage payload
// or one of these errors; nothing is ever partially populated.

// ErrIoFailure creates an I/O failure error
func ErrIoFailure(operation string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeIoFailure, fmt.Sprintf("i/o failure during %s", operation), err).
		WithDetails("operation", operation)
}

// ErrTimeout creates a timeout error
func ErrTimeout(operation string, seconds float64) *DomainError {
	return NewDomainError(ErrCodeTimeout, fmt.Sprintf("%s timed out after %.0fs", operation, seconds)).
		WithDetails("operation", operation).
		WithDetails("timeoutSeconds", seconds)
}

// ErrProtocolViolation creates a protocol violation error naming the missing
// or invalid part of the payload
func ErrProtocolViolation(reason string) *DomainError {
	return NewDomainError(ErrCodeProtocolViolation, fmt.Sprintf("scraper protocol violation: %s", reason)).
		WithDetails("reason", reason)
}

// ErrExecutionFailure creates an execution failure error
func ErrExecutionFailure(message string) *DomainError {
	return NewDomainError(ErrCodeExecutionFailure, message)
}

// ErrExecutionFailureWithCause creates an execution failure error with an
// underlying cause
func ErrExecutionFailureWithCause(message string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeExecutionFailure, message, err)
}

// ErrInvalidInput creates an invalid input error
func ErrInvalidInput(field string, reason string) *DomainError {
	return NewDomainError(ErrCodeInvalidInput, fmt.Sprintf("invalid %s: %s", field, reason)).
		WithDetails("field", field).
		WithDetails("reason", reason)
}

// ErrInvalidState creates an invalid state error
func ErrInvalidState(entity string, currentState string, attemptedAction string) *DomainError {
	return NewDomainError(ErrCodeInvalidState,
		fmt.Sprintf("invalid state transition for %s: cannot %s in state %s", entity, attemptedAction, currentState)).
		WithDetails("entity", entity).
		WithDetails("currentState", currentState).
		WithDetails("attemptedAction", attemptedAction)
}

// ErrRepository creates a repository error
func ErrRepository(operation string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeRepository, fmt.Sprintf("repository error in %s", operation), err).
		WithDetails("operation", operation)
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// AsDomainError extracts a DomainError from an error chain
func AsDomainError(err error) (*DomainError, bool) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr, true
	}
	return nil, false
}
