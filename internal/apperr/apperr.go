// Package apperr carries the single application error shape: an HTTP status,
// a machine-readable code, and optional per-field details. Services build these
// and the central fiber error handler maps them to the JSON envelope.
package apperr

import "fmt"

type Error struct {
	Status  int               `json:"-"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func Validation(message string, fields map[string]string) *Error {
	return &Error{Status: 400, Code: "VALIDATION_ERROR", Message: message, Fields: fields}
}

func Unauthorized(message string) *Error {
	return &Error{Status: 401, Code: "UNAUTHORIZED", Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Status: 403, Code: "FORBIDDEN", Message: message}
}

func NotFound(message string) *Error {
	return &Error{Status: 404, Code: "NOT_FOUND", Message: message}
}

func Conflict(message string) *Error {
	return &Error{Status: 409, Code: "CONFLICT", Message: message}
}

func RateLimited(message string) *Error {
	return &Error{Status: 429, Code: "RATE_LIMITED", Message: message}
}

func Internal(message string) *Error {
	return &Error{Status: 500, Code: "INTERNAL_ERROR", Message: message}
}
