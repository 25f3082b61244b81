package model

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks missing required fields and malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is used by the presentation layer; repositories return
	// not-found as data.
	ErrNotFound = errors.New("record not found")
	// ErrMissingReference marks an order pointing at a customer that does not exist.
	ErrMissingReference = errors.New("missing referenced customer")
	// ErrHasOrders is returned when the restrict policy blocks a customer delete.
	ErrHasOrders = errors.New("customer still has orders")
	// ErrIO marks failures of the backing store.
	ErrIO = errors.New("storage unavailable")
)

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) hold.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid builds a *ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
