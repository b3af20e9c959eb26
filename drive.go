package drive

import (
	"github.com/dmitrymomot/drive/internal"
	"github.com/dmitrymomot/drive/internal/httpapi"
	"github.com/dmitrymomot/drive/middlewares"
	"github.com/dmitrymomot/drive/pkg/logger"
)

// Type aliases - public API
type (
	// App orchestrates the application lifecycle.
	// It manages HTTP routing, middleware, workers and graceful shutdown.
	App = internal.App

	// Router is the interface handlers use to declare routes.
	Router = internal.Router

	// Context provides request/response access and helper methods.
	Context = internal.Context

	// Handler declares routes on a router.
	Handler = internal.Handler

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc to add cross-cutting concerns.
	Middleware = internal.Middleware

	// ErrorHandler handles errors returned from handlers.
	ErrorHandler = internal.ErrorHandler

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// Worker is a background component tied to the server lifecycle.
	Worker = internal.Worker

	// HTTPError is an error with a status code and a client-facing message.
	HTTPError = internal.HTTPError

	// ContextExtractor extracts a slog attribute from context.
	ContextExtractor = logger.ContextExtractor

	// AccountResolver returns the authenticated account for a request.
	AccountResolver = middlewares.AccountResolver
)

// New creates an application with the given options and nothing else.
//
// Example:
//
//	app := drive.New(
//	    drive.WithMiddleware(middlewares.RequestID()),
//	    drive.WithHandlers(handlers.NewStatus()),
//	)
//	err := app.Run(":8080")
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// NewAPI creates the storage API application: request ids, panic recovery,
// JSON errors mapped from the tree error taxonomy and the /api/storage
// routes backed by engine. opts are applied after the defaults, so
// WithErrorHandler and friends still override them.
//
// Example:
//
//	engine, _ := tree.NewEngine(store, tokens)
//	app := drive.NewAPI(engine,
//	    drive.WithLogger("drive", middlewares.RequestIDExtractor(), logger.AccountIDExtractor()),
//	    drive.WithHealthChecks(drive.WithReadinessCheck("db", db.Healthcheck(pool))),
//	)
func NewAPI(engine httpapi.Engine, opts ...Option) *App {
	return NewAPIWithResolver(engine, nil, opts...)
}

// NewAPIWithResolver is NewAPI with a custom account resolver.
// A nil resolver trusts the X-Account-ID header.
func NewAPIWithResolver(engine httpapi.Engine, resolver AccountResolver, opts ...Option) *App {
	defaults := []Option{
		internal.WithMiddleware(
			middlewares.RequestID(),
			middlewares.Recover(),
		),
		internal.WithErrorHandler(httpapi.ErrorHandler),
		internal.WithNotFoundHandler(httpapi.NotFound),
		internal.WithHandlers(httpapi.NewStorageHandler(engine, httpapi.WithAccountResolver(resolver))),
	}
	return internal.New(append(defaults, opts...)...)
}
