package domain

import (
	"errors"
	"fmt"
)

// Error types for consistent error handling across the coach. Each carries
// a stable machine-readable code returned to API clients next to the message.

// Error codes.
const (
	CodeNotFound           = "not_found"
	CodeExternalService    = "external_service_error"
	CodeTimeout            = "timeout"
	CodeCircuitOpen        = "service_unavailable"
	CodeValidation         = "validation_failed"
	CodeUnauthorized       = "unauthorized"
	CodeMalformedNarrative = "malformed_narrative"
	CodeInternal           = "internal_error"
)

// CodeOf returns the code of the first coded error in err's chain, or
// CodeInternal.
func CodeOf(err error) string {
	var c interface{ Code() string }
	if errors.As(err, &c) {
		return c.Code()
	}
	return CodeInternal
}

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *ErrNotFound) Code() string { return CodeNotFound }

// ErrExternalService indicates a failure in an external service call.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Code() string { return CodeExternalService }

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrTimeout indicates an operation exceeded its deadline.
type ErrTimeout struct {
	Operation string
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("operation timed out: %s", e.Operation)
}

func (e *ErrTimeout) Code() string { return CodeTimeout }

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

func (e *ErrCircuitOpen) Code() string { return CodeCircuitOpen }

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

func (e *ErrValidation) Code() string { return CodeValidation }

// ErrUnauthorized indicates a missing or invalid token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

func (e *ErrUnauthorized) Code() string { return CodeUnauthorized }

// ErrMalformedNarrative indicates the narrator answered with unusable content.
type ErrMalformedNarrative struct {
	Reason string
}

func (e *ErrMalformedNarrative) Error() string {
	return fmt.Sprintf("malformed narrative: %s", e.Reason)
}

func (e *ErrMalformedNarrative) Code() string { return CodeMalformedNarrative }
