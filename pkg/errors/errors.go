package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")

	// Course access denials. Each carries its own code so monitoring can tell
	// denial reasons apart; callers must never branch on them to grant access.
	ErrProfileIncomplete = New("PROFILE_INCOMPLETE", http.StatusForbidden, "student profile is incomplete or has no group")
	ErrNotPublished      = New("NOT_PUBLISHED", http.StatusForbidden, "course is not published")
	ErrNotValidated      = New("NOT_VALIDATED", http.StatusForbidden, "course has not been validated yet")
	ErrNotDistributed    = New("NOT_DISTRIBUTED", http.StatusForbidden, "course is not distributed to your group")
	ErrWindowNotOpen     = New("WINDOW_NOT_OPEN", http.StatusForbidden, "course is not yet available")
	ErrWindowClosed      = New("WINDOW_CLOSED", http.StatusForbidden, "course availability window has closed")

	// ErrStorageInconsistent flags a course row whose file is missing from
	// storage. Kept distinct from the permission errors above so "data is
	// broken" never shows up as "user lacks access".
	ErrStorageInconsistent = New("STORAGE_INCONSISTENT", http.StatusInternalServerError, "stored file is missing")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Is reports whether err carries the same code as target, unwrapping as needed.
func Is(err error, target *Error) bool {
	if err == nil || target == nil {
		return false
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code == target.Code
	}
	return false
}
