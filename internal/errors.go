package internal

import (
	"errors"
	"net/http"
)

// HTTPError represents an HTTP error with all data needed for rendering.
// Err is logged; Message is shown to the client.
type HTTPError struct {
	// Err is the underlying error (for logging, not exposed to users).
	Err error

	// Message is the user-facing error message.
	Message string

	// ErrorCode is an application-specific error code for client handling.
	ErrorCode string

	// RequestID is the request tracking ID.
	RequestID string

	// Code is the HTTP status code (e.g., 404, 500).
	Code int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) StatusCode() int {
	return e.Code
}

func (e *HTTPError) StatusText() string {
	return http.StatusText(e.Code)
}

// HTTPErrorOption configures an HTTPError.
type HTTPErrorOption func(*HTTPError)

// NewHTTPError creates a new HTTPError with the given status code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

func WithErrorCode(code string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.ErrorCode = code
	}
}

func WithRequestID(id string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.RequestID = id
	}
}

func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Err = err
	}
}

func newHTTPError(code int, message string, opts []HTTPErrorOption) *HTTPError {
	e := NewHTTPError(code, message)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Convenience constructors for the statuses the API returns.

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return newHTTPError(http.StatusBadRequest, message, opts)
}

func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return newHTTPError(http.StatusUnauthorized, message, opts)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return newHTTPError(http.StatusForbidden, message, opts)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return newHTTPError(http.StatusNotFound, message, opts)
}

func ErrRequestTooLarge(message string, opts ...HTTPErrorOption) *HTTPError {
	return newHTTPError(http.StatusRequestEntityTooLarge, message, opts)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return newHTTPError(http.StatusInternalServerError, message, opts)
}

// AsHTTPError extracts the HTTPError from an error chain.
// Returns nil if there is none.
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}

// ErrStartupHook wraps the error of a startup hook that aborted Run.
var ErrStartupHook = errors.New("startup hook failed")
