// Package service provides application-level services for question
// generation, question management, bookmarks, and profiles.
package service

import (
	"errors"
	"fmt"
)

// Common service errors. Callers check these with errors.Is; the API
// layer maps them to HTTP status codes.
var (
	// ErrNotOwned indicates a resource is owned by a different user than
	// the one making the request. Maps to 404 so resource existence is
	// not leaked across owners.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrActiveJobExists indicates the user already has a generation job
	// in flight. Maps to 409 Conflict.
	ErrActiveJobExists = errors.New("a generation job is already in progress")
)

// ServiceError wraps unexpected errors from a service with operation
// context.
type ServiceError struct {
	// Operation is the operation that failed, e.g. "request_generation".
	Operation string
	// Message is a human-readable description of the failure.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is and errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError wraps err with operation context. Nil errors pass
// through as nil.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
