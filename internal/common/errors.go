package common

import (
	"fmt"
	"net/http"
)

// ErrorResponse is an error that already knows its HTTP status.
type ErrorResponse struct {
	StatusCode int
	Message    string
}

func (e *ErrorResponse) Error() string {
	return e.Message
}

func NewError(status int, format string, args ...interface{}) *ErrorResponse {
	return &ErrorResponse{StatusCode: status, Message: fmt.Sprintf(format, args...)}
}

func BadRequest(format string, args ...interface{}) *ErrorResponse {
	return NewError(http.StatusBadRequest, format, args...)
}

func Unauthorized(format string, args ...interface{}) *ErrorResponse {
	return NewError(http.StatusUnauthorized, format, args...)
}

func Forbidden(format string, args ...interface{}) *ErrorResponse {
	return NewError(http.StatusForbidden, format, args...)
}

func NotFound(format string, args ...interface{}) *ErrorResponse {
	return NewError(http.StatusNotFound, format, args...)
}

func Internal(format string, args ...interface{}) *ErrorResponse {
	return NewError(http.StatusInternalServerError, format, args...)
}

// ResourceNotFound is the message used for unknown or malformed ids.
func ResourceNotFound(id string) *ErrorResponse {
	return NotFound("Resource not found with id of %s", id)
}

// ErrNotAuthorized is returned for every authentication failure so the
// reason is never leaked to the client.
var ErrNotAuthorized = Unauthorized("Not authorized to access this route")
