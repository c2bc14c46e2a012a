// Package apperror defines the domain error taxonomy for the booking service.
//
// Services return these errors; the HTTP layer maps them to status codes in
// exactly one place (handler.writeError). Every error is recoverable at the
// caller — operations report failure with a reason, they never abort the
// process.
package apperror

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Callers use errors.Is against these to classify a failure
// without parsing messages.
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrRouteNotCovered  = errors.New("route not covered")
	ErrInvalidDate      = errors.New("invalid date")
	ErrOutOfRange       = errors.New("index out of range")
	ErrConflict         = errors.New("conflict")
	ErrPersistence      = errors.New("persistence error")
)

type AppError struct {
	Err     error  // sentinel identifying the category
	Message string // human-readable error message
	Field   string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotAuthenticated is returned by every session-scoped operation when no user
// is bound to the session.
func NotAuthenticated() *AppError {
	return &AppError{
		Err:     ErrNotAuthenticated,
		Message: "please log in first",
	}
}

// InvalidCredentials is the single failure returned for a bad login,
// whether the name was unknown or the credential wrong. Failing closed with
// one message avoids revealing which factor failed.
func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrNotAuthenticated,
		Message: "invalid name or credential",
	}
}

// MissingFields reports blank required fields by name, e.g. "from, date".
func MissingFields(fields ...string) *AppError {
	msg := "missing/empty fields"
	if len(fields) > 0 {
		msg = fmt.Sprintf("missing/empty fields: %s", strings.Join(fields, ", "))
	}
	return &AppError{
		Err:     ErrValidation,
		Message: msg,
		Field:   strings.Join(fields, ", "),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func NotFound(resource, key string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, key),
	}
}

// RouteNotCovered distinguishes "train exists but doesn't run that
// direction/order" from a plain lookup miss, so callers get a specific
// rejection reason.
func RouteNotCovered(trainNo, from, to string) *AppError {
	return &AppError{
		Err:     ErrRouteNotCovered,
		Message: fmt.Sprintf("train %s does not cover %s -> %s", trainNo, from, to),
	}
}

func InvalidDate(input, layout string) *AppError {
	return &AppError{
		Err:     ErrInvalidDate,
		Message: fmt.Sprintf("invalid date %q, use %s", input, layout),
	}
}

func IndexOutOfRange(index, size int) *AppError {
	return &AppError{
		Err:     ErrOutOfRange,
		Message: fmt.Sprintf("index %d out of range 1..%d", index, size),
	}
}

func Conflict(resource, key string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s already exists: %s", resource, key),
	}
}

// Persistence wraps a failed collection write. The in-memory state may be
// ahead of the on-disk snapshot when this is returned.
func Persistence(op string, err error) *AppError {
	return &AppError{
		Err:     ErrPersistence,
		Message: fmt.Sprintf("persisting %s: %v", op, err),
	}
}
