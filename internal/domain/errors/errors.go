package errors

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrCapacityExceeded    = errors.New("capacity exceeded")
	ErrUnknownDate         = errors.New("date is not available")
	ErrZeroTotal           = errors.New("order total must be greater than zero for card payments")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrPersistence         = errors.New("persistence failure")
	ErrAlreadyExists       = errors.New("already exists")
	ErrNotFound            = errors.New("not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidSignature    = errors.New("invalid signature")
)

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid builds a ValidationError for field.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// CapacityExceededError carries the numbers behind a rejected pickup order.
type CapacityExceededError struct {
	Day       string
	Remaining int
	Requested int
}

func (e *CapacityExceededError) Error() string {
	if e.Day == "" {
		return fmt.Sprintf("not enough pickup slots: remaining %d, requested %d", e.Remaining, e.Requested)
	}
	return fmt.Sprintf("not enough pickup slots for %s: remaining %d, requested %d", e.Day, e.Remaining, e.Requested)
}

func (e *CapacityExceededError) Is(target error) bool {
	return target == ErrCapacityExceeded
}
