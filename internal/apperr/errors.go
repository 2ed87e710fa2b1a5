package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an operational error carrying the HTTP status it maps to.
// Handlers translate these centrally; anything else becomes a 500 with
// no detail leaked.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports malformed or missing input.
func Validation(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

// Conflict reports a duplicate resource, e.g. a taken handle.
func Conflict(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

// Unauthorized reports a bad credential or token.
func Unauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

// NotFound reports a missing resource, e.g. a token for a deleted user.
func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

// QuotaExceeded reports a chat that hit its token or message cap.
func QuotaExceeded(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

// Provider reports an LLM call failure. The wrapped cause is logged but
// never serialized to the client.
func Provider(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: "Failed to generate response", Err: err}
}

// Internal wraps an unexpected error as a generic 500.
func Internal(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: "Internal server error", Err: err}
}

// StatusOf returns the HTTP status for err, defaulting to 500 for
// non-operational errors.
func StatusOf(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// MessageOf returns the client-facing message for err. Unexpected errors
// yield a generic message so internals never leak.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Internal server error"
}
