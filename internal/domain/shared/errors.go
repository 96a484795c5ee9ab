// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidID       = errors.New("invalid ID")
	ErrEmptyValue      = errors.New("value cannot be empty")

	// Store errors
	ErrStoreUnavailable = errors.New("backing store unavailable")
	ErrTxConflict       = errors.New("transaction conflict")

	// Integrity errors
	// ErrIntegrityDrift marks a read that yielded a logically impossible value,
	// such as a negative like aggregate. Clamped and logged, never fatal.
	ErrIntegrityDrift = errors.New("data integrity drift detected")

	// Authorization errors
	ErrForbidden = errors.New("forbidden")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "engagement", "follow", "notification"
	Op      string // Operation that failed, e.g., "ToggleLike", "MarkRead"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidArgument checks if the error is a validation error.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrEmptyValue)
}

// IsStoreUnavailable checks if the error comes from an unreachable backing store.
// Callers decide whether to retry; the core never retries internally.
func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// IsIntegrityDrift checks if the error marks a clamped impossible value.
func IsIntegrityDrift(err error) bool {
	return errors.Is(err, ErrIntegrityDrift)
}
