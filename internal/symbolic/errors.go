package symbolic

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout is returned when the collaborator does not answer in time.
	ErrTimeout = errors.New("symbolic service timed out")
	// ErrUnavailable is returned when the collaborator cannot be reached.
	ErrUnavailable = errors.New("symbolic service unavailable")
	// ErrInvalidOperation is returned for an unknown operation.
	ErrInvalidOperation = errors.New("invalid symbolic operation")
)

// ServiceError is an error payload returned by the collaborator.
type ServiceError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("symbolic service error (status %d): %s", e.Status, e.Message)
}

// NewServiceError creates a new ServiceError.
func NewServiceError(status int, message string) *ServiceError {
	return &ServiceError{Status: status, Message: message}
}
