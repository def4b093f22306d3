package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when a resource or a requested change is not valid.
	ErrNotValid = errors.New("not valid")
	// ErrNotAllowed is returned when the acting user role can't perform an operation.
	ErrNotAllowed = errors.New("not allowed")
)

// ValidationErrorKind identifies why a change was rejected so callers can re-prompt.
type ValidationErrorKind string

const (
	ValidationKindBlockReasonRequired ValidationErrorKind = "block-reason-required"
	ValidationKindPhotosRequired      ValidationErrorKind = "photos-required"
	ValidationKindGateNotReachable    ValidationErrorKind = "gate-not-reachable"
	ValidationKindInvalidValue        ValidationErrorKind = "invalid-value"
	ValidationKindNotBlocked          ValidationErrorKind = "not-blocked"
)

// ValidationError is a rejected change. It matches ErrNotValid with errors.Is.
type ValidationError struct {
	Kind ValidationErrorKind
	Msg  string
}

// NewValidationError returns a new validation error.
func NewValidationError(kind ValidationErrorKind, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s (%s): %s", e.Msg, e.Kind, ErrNotValid)
}

func (e *ValidationError) Unwrap() error { return ErrNotValid }

// PermissionError is an operation attempted by a role that can't perform it.
// It matches ErrNotAllowed with errors.Is.
type PermissionError struct {
	Role   Role
	Action Action
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("role %q can't %s: %s", e.Role, e.Action, ErrNotAllowed)
}

func (e *PermissionError) Unwrap() error { return ErrNotAllowed }

// ValidationKindOf returns the validation kind of err, if err is a validation error.
func ValidationKindOf(err error) (ValidationErrorKind, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Kind, true
	}
	return "", false
}
