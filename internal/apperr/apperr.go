// Package apperr defines the error kinds shared by every handler and store.
//
// Stores wrap backing-store failures in ErrPersistence; handlers turn any error into
// an HTTP status with Status and never copy the wrapped cause into a response body.
package apperr

import (
	"errors"
	"net/http"
)

// Error kinds
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrPersistence     = errors.New("persistence failure")
)

// FieldErrors maps a form field name to a user-facing message.
type FieldErrors map[string]string

// Error carries a kind, a message safe to show to the user, and the internal cause.
type Error struct {
	Kind    error
	Message string
	Fields  FieldErrors
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.Error() + ": " + e.Err.Error()
	}
	if e.Message != "" {
		return e.Kind.Error() + ": " + e.Message
	}
	return e.Kind.Error()
}

// Is lets errors.Is match the kind sentinel.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Persistence wraps a backing-store failure.
func Persistence(err error) error {
	return &Error{Kind: ErrPersistence, Err: err}
}

// NotFound builds a NotFound error with a user-facing message.
func NotFound(message string) error {
	return &Error{Kind: ErrNotFound, Message: message}
}

// Validation builds a ValidationError from per-field messages.
func Validation(fields FieldErrors) error {
	return &Error{Kind: ErrValidation, Fields: fields}
}

// Invalid builds a ValidationError whose headline message is shown next to the form.
func Invalid(message string, fields FieldErrors) error {
	return &Error{Kind: ErrValidation, Message: message, Fields: fields}
}

// Forbidden builds a Forbidden error with a generic message.
func Forbidden() error {
	return &Error{Kind: ErrForbidden, Message: "Forbidden"}
}

// Status maps an error to the HTTP status code a handler should answer with.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message attached to err, or fallback when the error
// carries none. Persistence failures always resolve to fallback.
func PublicMessage(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" && appErr.Kind != ErrPersistence {
		return appErr.Message
	}
	return fallback
}

// Fields returns the per-field messages of a validation error, or nil.
func Fields(err error) FieldErrors {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Fields
	}
	return nil
}
