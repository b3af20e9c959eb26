package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/drive/pkg/logger"
)

// Context provides request/response access and helper methods.
// It also implements context.Context by delegating to the underlying request context.
type Context interface {
	context.Context

	// Request returns the underlying *http.Request.
	Request() *http.Request

	// Response returns the underlying http.ResponseWriter.
	Response() http.ResponseWriter

	// Context returns the request's context.Context.
	Context() context.Context

	// Param returns the URL parameter by name.
	Param(name string) string

	// Query returns the query parameter by name.
	Query(name string) string

	// FormFile returns the first file for the multipart form key.
	FormFile(name string) (multipart.File, *multipart.FileHeader, error)

	// FormValue returns the first value for the form key.
	FormValue(name string) string

	// Header returns the request header value by name.
	Header(name string) string

	// SetHeader sets a response header.
	SetHeader(name, value string)

	// AccountID returns the account resolved for this request, or "".
	AccountID() string

	// BindJSON decodes the request body into v.
	// Decoding failures are returned as 400 HTTPErrors.
	BindJSON(v any) error

	// JSON writes a JSON response with the given status code.
	JSON(code int, v any) error

	// String writes a plain text response.
	String(code int, s string) error

	// NoContent writes a response with no body.
	NoContent(code int) error

	// Stream copies r to the response with the given content type.
	Stream(code int, contentType string, r io.Reader) error

	// Error creates an HTTPError for the handler to return.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError

	// Written reports whether the response has been started.
	Written() bool

	// Set stores a value in the request context.
	Set(key, value any)

	// Get retrieves a value from the request context.
	Get(key any) any

	// Logger returns the app logger.
	Logger() *slog.Logger

	LogDebug(msg string, attrs ...any)
	LogInfo(msg string, attrs ...any)
	LogWarn(msg string, attrs ...any)
	LogError(msg string, attrs ...any)
}

// requestContext implements the Context interface.
type requestContext struct {
	request        *http.Request
	responseWriter *ResponseWriter
	logger         *slog.Logger
	maxBodyBytes   int64
}

func newContext(w http.ResponseWriter, r *http.Request, app *App) *requestContext {
	rw, ok := w.(*ResponseWriter)
	if !ok {
		rw = NewResponseWriter(w)
	}
	return &requestContext{
		request:        r,
		responseWriter: rw,
		logger:         app.logger,
		maxBodyBytes:   app.maxBodyBytes,
	}
}

func (c *requestContext) Request() *http.Request {
	return c.request
}

func (c *requestContext) Response() http.ResponseWriter {
	return c.responseWriter
}

func (c *requestContext) Context() context.Context {
	return c.request.Context()
}

func (c *requestContext) Deadline() (time.Time, bool) {
	return c.request.Context().Deadline()
}

func (c *requestContext) Done() <-chan struct{} {
	return c.request.Context().Done()
}

func (c *requestContext) Err() error {
	return c.request.Context().Err()
}

func (c *requestContext) Value(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Param(name string) string {
	return chi.URLParam(c.request, name)
}

func (c *requestContext) Query(name string) string {
	return c.request.URL.Query().Get(name)
}

func (c *requestContext) FormFile(name string) (multipart.File, *multipart.FileHeader, error) {
	c.limitBody()
	return c.request.FormFile(name)
}

func (c *requestContext) FormValue(name string) string {
	c.limitBody()
	return c.request.FormValue(name)
}

func (c *requestContext) Header(name string) string {
	return c.request.Header.Get(name)
}

func (c *requestContext) SetHeader(name, value string) {
	c.responseWriter.Header().Set(name, value)
}

func (c *requestContext) AccountID() string {
	id, _ := logger.AccountIDFromContext(c.request.Context())
	return id
}

func (c *requestContext) BindJSON(v any) error {
	c.limitBody()
	dec := json.NewDecoder(c.request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ErrRequestTooLarge("request body too large", WithError(err))
		}
		return ErrBadRequest(fmt.Sprintf("invalid JSON body: %v", err), WithError(err))
	}
	return nil
}

func (c *requestContext) JSON(code int, v any) error {
	c.responseWriter.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.responseWriter.WriteHeader(code)
	return json.NewEncoder(c.responseWriter).Encode(v)
}

func (c *requestContext) String(code int, s string) error {
	c.responseWriter.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.responseWriter.WriteHeader(code)
	_, err := c.responseWriter.Write([]byte(s))
	return err
}

func (c *requestContext) NoContent(code int) error {
	c.responseWriter.WriteHeader(code)
	return nil
}

func (c *requestContext) Stream(code int, contentType string, r io.Reader) error {
	if contentType != "" {
		c.responseWriter.Header().Set("Content-Type", contentType)
	}
	c.responseWriter.Header().Set("X-Content-Type-Options", "nosniff")
	c.responseWriter.WriteHeader(code)
	_, err := io.Copy(c.responseWriter, r)
	return err
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	err := NewHTTPError(code, message)
	for _, opt := range opts {
		opt(err)
	}
	return err
}

func (c *requestContext) Written() bool {
	return c.responseWriter.Written()
}

func (c *requestContext) Set(key, value any) {
	ctx := context.WithValue(c.request.Context(), key, value)
	c.request = c.request.WithContext(ctx)
}

func (c *requestContext) Get(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Logger() *slog.Logger {
	return c.logger
}

func (c *requestContext) LogDebug(msg string, attrs ...any) {
	c.logger.DebugContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.logger.InfoContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.logger.WarnContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogError(msg string, attrs ...any) {
	c.logger.ErrorContext(c.request.Context(), msg, attrs...)
}

// limitBody caps the request body once per request.
func (c *requestContext) limitBody() {
	if c.maxBodyBytes <= 0 {
		return
	}
	if _, ok := c.request.Body.(*maxBytesBody); ok {
		return
	}
	c.request.Body = &maxBytesBody{http.MaxBytesReader(c.responseWriter, c.request.Body, c.maxBodyBytes)}
}

type maxBytesBody struct {
	io.ReadCloser
}
