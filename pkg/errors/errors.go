// Package errors defines the typed errors the API maps onto HTTP
// responses. Services return these (or wrap causes into them); handlers
// never inspect raw error strings.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors. Use Clone to attach a request-specific message
// without mutating the shared value.
var (
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrPreconditionFailed = New("PRECONDITION_FAILED", http.StatusPreconditionFailed, "precondition failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")

	ErrNoCoursesSelected = New("NO_COURSES_SELECTED", http.StatusBadRequest, "no courses selected for scheduling")
	ErrDatasetMissing    = New("DATASET_MISSING", http.StatusPreconditionFailed, "enrollment or room dataset not loaded")
	ErrReportsDisabled   = New("REPORTS_DISABLED", http.StatusServiceUnavailable, "report generation is disabled")
)

// Error carries a stable machine code, the HTTP status it maps to, and a
// human message. Err holds the wrapped cause and stays out of responses.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.Err != nil:
		return e.Message + ": " + e.Err.Error()
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New builds an Error with no cause.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap builds an Error around a cause.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Clone copies err, overriding the message when one is given. Sentinels
// must be cloned before customizing so concurrent requests never race on
// the shared value.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	out := *err
	if message != "" {
		out.Message = message
	}
	return &out
}

// Clonef is Clone with a formatted message.
func Clonef(err *Error, format string, args ...interface{}) *Error {
	return Clone(err, fmt.Sprintf(format, args...))
}

// FromError coerces any error into an *Error, treating unknown errors as
// internal so their details never leak to clients.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}
