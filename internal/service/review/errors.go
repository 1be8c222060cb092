package review

import (
	"errors"
	"fmt"
)

// Common error types for the review service
var (
	// ErrUnknownCard indicates an outcome referenced a card identifier
	// that is not present in the static catalog. Such outcomes are
	// rejected synchronously and never enter the write queue.
	ErrUnknownCard = errors.New("unknown card identifier")

	// ErrInvalidOutcome indicates an outcome failed validation.
	ErrInvalidOutcome = errors.New("invalid review outcome")
)

// ServiceError wraps errors from the review service with additional
// context, so consumers can differentiate failures with errors.As
// instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "submit_outcome")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError for the given operation.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
