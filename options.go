package drive

import (
	"log/slog"

	"github.com/dmitrymomot/drive/internal"
	"github.com/dmitrymomot/drive/pkg/health"
)

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithHandlers registers handlers that declare routes.
func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

// WithErrorHandler sets a custom error handler for handler errors.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithNotFoundHandler sets a handler for unknown routes.
func WithNotFoundHandler(h HandlerFunc) Option {
	return internal.WithNotFoundHandler(h)
}

// WithHealthChecks enables /health/live and /health/ready.
//
// Example:
//
//	drive.WithHealthChecks(
//	    drive.WithReadinessCheck("db", db.Healthcheck(pool)),
//	    drive.WithReadinessCheck("blobs", store.Healthcheck()),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithReadinessCheck adds a named readiness check.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// WithLivenessPath sets a custom liveness endpoint path.
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath sets a custom readiness endpoint path.
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithLogger creates a JSON logger with a component name and context extractors.
func WithLogger(component string, extractors ...ContextExtractor) Option {
	return internal.WithLogger(component, extractors...)
}

// WithCustomLogger sets a fully configured logger.
func WithCustomLogger(l *slog.Logger) Option {
	return internal.WithCustomLogger(l)
}

// WithWorkers ties background workers, such as the job manager, to the
// server lifecycle.
func WithWorkers(w ...Worker) Option {
	return internal.WithWorkers(w...)
}

// WithMaxBodyBytes caps request bodies, uploads included. Default: 64MB.
func WithMaxBodyBytes(n int64) Option {
	return internal.WithMaxBodyBytes(n)
}
