package dispatch

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies dispatch failures.
type ErrorCategory string

const (
	ErrorTimeout        ErrorCategory = "timeout"
	ErrorOutage         ErrorCategory = "responder_outage"
	ErrorRejected       ErrorCategory = "rejected"
	ErrorAuthentication ErrorCategory = "authentication"
	ErrorCircuitOpen    ErrorCategory = "circuit_open"
	ErrorInternal       ErrorCategory = "internal"
)

// DispatchError describes why the responder did not accept a request.
type DispatchError struct {
	Category   ErrorCategory
	Message    string
	StatusCode int
	Underlying error
	// Transient is set for failures that count against the circuit breaker.
	Transient bool
}

func (e *DispatchError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("dispatch [%s]: %s: %v", e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("dispatch [%s]: %s", e.Category, e.Message)
}

func (e *DispatchError) Unwrap() error {
	return e.Underlying
}

// NewDispatchError classifies timeouts and outages as transient.
func NewDispatchError(category ErrorCategory, message string, statusCode int, underlying error) *DispatchError {
	return &DispatchError{
		Category:   category,
		Message:    message,
		StatusCode: statusCode,
		Underlying: underlying,
		Transient:  category == ErrorTimeout || category == ErrorOutage,
	}
}

// CategoryOf returns the category of a dispatch error, or ErrorInternal.
func CategoryOf(err error) ErrorCategory {
	var de *DispatchError
	if errors.As(err, &de) {
		return de.Category
	}
	return ErrorInternal
}

func isTransient(err error) bool {
	var de *DispatchError
	if errors.As(err, &de) {
		return de.Transient
	}
	return true
}
