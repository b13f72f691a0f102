package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the single error type crossing the service boundary.
// Code is a plain HTTP status; the error handler middleware does the
// fiber mapping, so services and repositories never touch fiber.
type AppError struct {
	Code    int    // HTTP status category
	Message string // safe for the client
	Field   string // offending field, validation errors only
	Err     error  // wrapped cause, never serialized
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Unauthorized(message string) *AppError {
	return &AppError{Code: http.StatusUnauthorized, Message: message}
}

func Validation(field, message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message, Field: field}
}

func NotFound(message string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: message}
}

// Storage wraps a persistence failure. The cause stays server-side; the
// client only ever sees the generic message.
func Storage(err error) *AppError {
	return &AppError{Code: http.StatusInternalServerError, Message: "internal server error", Err: err}
}

func IsNotFound(err error) bool {
	return hasCode(err, http.StatusNotFound)
}

func IsValidation(err error) bool {
	return hasCode(err, http.StatusBadRequest)
}

func IsUnauthorized(err error) bool {
	return hasCode(err, http.StatusUnauthorized)
}

func hasCode(err error, code int) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
