package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the actor may not mutate the entity.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSelfFollow is returned on an attempt to subscribe to oneself.
	ErrSelfFollow = errors.New("subscribing to yourself is not possible")
)

// ConflictError reports a redundant relationship change: adding a pair
// that already exists or removing one that does not.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func conflictf(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// FieldError is a validation failure scoped to a single request field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}
