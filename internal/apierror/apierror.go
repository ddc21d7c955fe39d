// Package apierror defines the JSON error contract shared by the HTTP shell,
// its middleware and the mounted route groups.
package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/leslieo2/hotel-booking-mock/internal/constants"
)

// ErrNotFound marks a request no registered route matched
var ErrNotFound = errors.New("route not found")

// Error is an error that knows the HTTP status and code it maps to
type Error struct {
	Status  int
	Code    string
	Message string
	Err     error
	Fields  map[string]string
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

// New creates an Error with the given status, code and message
func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

// Wrap creates an Error that keeps err as its cause
func Wrap(err error, status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message, Err: err}
}

// NotFound reports that nothing is served at path
func NotFound(path string) *Error {
	return &Error{
		Status:  http.StatusNotFound,
		Code:    constants.ErrorCodeNotFound,
		Message: "Not Found - " + path,
		Err:     ErrNotFound,
	}
}

// BadRequest reports a client mistake
func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, constants.ErrorCodeBadRequest, message)
}

// Validation reports request fields that failed validation
func Validation(fields map[string]string) *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Code:    constants.ErrorCodeValidation,
		Message: "Request validation failed",
		Fields:  fields,
	}
}

// Unauthorized reports missing or rejected credentials
func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, constants.ErrorCodeUnauthorized, message)
}

// Conflict reports a request that clashes with the resource state
func Conflict(message string) *Error {
	return New(http.StatusConflict, constants.ErrorCodeConflict, message)
}

// PayloadTooLarge reports a body above the configured ceiling
func PayloadTooLarge(limit int64) *Error {
	return New(http.StatusRequestEntityTooLarge, constants.ErrorCodePayloadTooLarge,
		fmt.Sprintf("Request body too large, max size: %d bytes", limit))
}

// Internal wraps an unexpected failure
func Internal(err error) *Error {
	return Wrap(err, http.StatusInternalServerError, constants.ErrorCodeInternal, "Internal Server Error")
}

// From converts any error into an *Error. Errors that are not *Error become
// 500s that keep the original as their cause.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if apiErr.Status < 400 || apiErr.Status > 599 {
			clone := *apiErr
			clone.Status = http.StatusInternalServerError
			return &clone
		}
		return apiErr
	}
	return Internal(err)
}
