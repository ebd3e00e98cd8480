// Package errors defines the sentinel errors shared across the service and
// maps them to HTTP status codes for the non-API surfaces.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrQueryFailed      = errors.New("query failed")
	ErrTimeout          = errors.New("operation timed out")
	ErrCacheUnavailable = errors.New("cache unavailable")
	ErrTemplate         = errors.New("template rendering failed")
	ErrInternal         = errors.New("internal error")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// QueryError records which endpoint query failed and the driver's error.
// Message returns the driver text that is shown to API clients.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrQueryFailed, e.Query, e.Err)
}

func (e *QueryError) Unwrap() []error {
	return []error{ErrQueryFailed, e.Err}
}

// Message is the client-facing description of the failure.
func (e *QueryError) Message() string {
	return e.Err.Error()
}

// ClientMessage returns the text to put in an API error envelope.
func ClientMessage(err error) string {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Message()
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrQueryFailed), errors.Is(err, ErrCacheUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
