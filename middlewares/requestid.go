package middlewares

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/drive/internal"
	"github.com/dmitrymomot/drive/pkg/id"
	"github.com/dmitrymomot/drive/pkg/logger"
)

// requestIDKey is the context key for storing the request ID.
type requestIDKey struct{}

// maxUpstreamRequestID bounds request ids accepted from clients and proxies.
const maxUpstreamRequestID = 128

// DefaultRequestIDHeaders are the headers checked (in order) for an existing request ID.
var DefaultRequestIDHeaders = []string{"X-Request-ID", "X-Correlation-ID"}

// RequestIDConfig configures the request ID middleware.
type RequestIDConfig struct {
	Generator      func() string
	ResponseHeader string
	Headers        []string
}

// RequestIDOption configures RequestIDConfig.
type RequestIDOption func(*RequestIDConfig)

// WithRequestIDHeaders sets the headers to check for existing request IDs.
func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		cfg.Headers = headers
	}
}

// WithRequestIDGenerator sets a custom ID generator function.
func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		if gen != nil {
			cfg.Generator = gen
		}
	}
}

// RequestID returns middleware that assigns an ID to each request.
// An upstream ID is reused when present and printable, otherwise a ULID is
// generated. The ID is stored in the context and echoed in X-Request-ID.
func RequestID(opts ...RequestIDOption) internal.Middleware {
	cfg := &RequestIDConfig{
		Headers:        DefaultRequestIDHeaders,
		Generator:      id.NewULID,
		ResponseHeader: "X-Request-ID",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			var reqID string
			for _, header := range cfg.Headers {
				if v := c.Header(header); validUpstreamID(v) {
					reqID = v
					break
				}
			}
			if reqID == "" {
				reqID = cfg.Generator()
			}

			c.Set(requestIDKey{}, reqID)
			c.SetHeader(cfg.ResponseHeader, reqID)

			return next(c)
		}
	}
}

func validUpstreamID(v string) bool {
	if v == "" || len(v) > maxUpstreamRequestID {
		return false
	}
	for i := 0; i < len(v); i++ {
		if v[i] < 0x21 || v[i] > 0x7e {
			return false
		}
	}
	return true
}

// GetRequestID extracts the request ID from the context.
// Returns an empty string if no request ID is set.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// RequestIDExtractor returns a ContextExtractor for use with WithLogger.
// Adds "request_id" to all log entries.
func RequestIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v := GetRequestID(ctx); v != "" {
			return slog.String("request_id", v), true
		}
		return slog.Attr{}, false
	}
}
