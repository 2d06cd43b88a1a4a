// Package apperr defines the error taxonomy shared by repositories, services and handlers.
// Errors are wrapped with %w and matched with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a missing or malformed field. Nothing is written to the store.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a referenced id that does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a write rejected by a store uniqueness constraint.
	ErrConflict = errors.New("conflict")
	// ErrUnavailable marks a timeout, a connection failure or an open circuit.
	ErrUnavailable = errors.New("service unavailable")
	// ErrForbidden marks an attempt to act on another user's record.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials is returned for both unknown emails and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

var (
	ErrSelfFollow      = fmt.Errorf("%w: cannot follow yourself", ErrValidation)
	ErrDuplicateFollow = fmt.Errorf("%w: already following this user", ErrConflict)
	ErrDuplicateEmail  = fmt.Errorf("%w: email already registered", ErrConflict)
)

// Invalid builds a validation error for a single field.
func Invalid(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrValidation, field, reason)
}

// NotFound builds a not-found error naming the entity.
func NotFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

// Unavailable wraps a transient store or network failure.
func Unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
