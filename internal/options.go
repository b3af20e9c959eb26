package internal

import (
	"log/slog"

	"github.com/dmitrymomot/drive/pkg/health"
	"github.com/dmitrymomot/drive/pkg/logger"
)

// Option configures the application.
type Option func(*App)

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithHandlers registers handlers that declare routes.
// Each handler's Routes method is called during setup.
func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, h...)
	}
}

// WithErrorHandler sets a custom error handler for handler errors.
// If it returns an error, DefaultErrorHandler renders the original one.
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		a.errorHandler = h
	}
}

// WithNotFoundHandler sets a handler for unknown routes and methods.
func WithNotFoundHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.notFoundHandler = h
	}
}

// WithHealthChecks enables health check endpoints.
// Liveness (/health/live) always returns OK while the process runs.
// Readiness (/health/ready) runs all configured checks.
//
// Example:
//
//	drive.WithHealthChecks(
//	    drive.WithReadinessCheck("db", db.Healthcheck(pool)),
//	    drive.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
			checks:        make(health.Checks),
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

// WithLogger creates a JSON logger with a component name and extractors
// that pull request-scoped values (request_id, account_id) from context.
func WithLogger(component string, extractors ...logger.ContextExtractor) Option {
	return func(a *App) {
		a.logger = logger.New(logger.WithExtractors(extractors...)).With("component", component)
	}
}

// WithCustomLogger sets a fully configured logger.
func WithCustomLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithWorkers registers background workers started and stopped with the server.
//
// Example:
//
//	drive.WithWorkers(jobManager)
func WithWorkers(w ...Worker) Option {
	return func(a *App) {
		for _, worker := range w {
			if worker != nil {
				a.workers = append(a.workers, worker)
			}
		}
	}
}

// WithMaxBodyBytes caps request bodies, uploads included. Default: 64MB.
func WithMaxBodyBytes(n int64) Option {
	return func(a *App) {
		if n > 0 {
			a.maxBodyBytes = n
		}
	}
}
