package internal

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/drive/pkg/health"
	"github.com/dmitrymomot/drive/pkg/logger"
)

// Default server timeouts. WriteTimeout is generous because downloads
// stream whole blobs.
const (
	defaultReadTimeout       = 60 * time.Second
	defaultWriteTimeout      = 5 * time.Minute
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
	defaultMaxBodyBytes      = 64 << 20 // 64MB
)

// Worker is a background component started with the server and stopped
// during shutdown, e.g. *job.Manager.
type Worker interface {
	Start(ctx context.Context) error
	Shutdown() func(context.Context) error
}

// App orchestrates the application lifecycle.
// It manages HTTP routing, middleware, and graceful shutdown.
// App is immutable after creation; all configuration is done via New().
type App struct {
	router          chi.Router
	errorHandler    ErrorHandler
	notFoundHandler HandlerFunc
	healthConfig    *healthConfig
	logger          *slog.Logger
	middlewares     []Middleware
	handlers        []Handler
	workers         []Worker
	maxBodyBytes    int64
}

// New creates a new application with the given options.
//
// Example:
//
//	app := drive.New(
//	    drive.WithMiddleware(middlewares.RequestID()),
//	    drive.WithHandlers(httpapi.NewStorageHandler(engine)),
//	)
func New(opts ...Option) *App {
	a := &App{
		router:       chi.NewRouter(),
		logger:       logger.NewNope(),
		maxBodyBytes: defaultMaxBodyBytes,
	}

	for _, opt := range opts {
		opt(a)
	}

	a.setupRoutes()
	return a
}

// Router returns the root http.Handler.
func (a *App) Router() http.Handler {
	return a.router
}

// Run starts the HTTP server and blocks until shutdown.
// Workers start before the listener accepts requests and stop after it
// has drained.
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)
	if cfg.logger == nil {
		cfg.logger = a.logger
	}

	startupHooks := cfg.startupHooks
	shutdownHooks := make([]func(context.Context) error, 0, len(a.workers)+len(cfg.shutdownHooks))
	for _, w := range a.workers {
		startupHooks = append(startupHooks, w.Start)
		shutdownHooks = append(shutdownHooks, w.Shutdown())
	}
	shutdownHooks = append(shutdownHooks, cfg.shutdownHooks...)

	return runServer(runtimeConfig{
		handler:         a.router,
		address:         addr,
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		startupHooks:    startupHooks,
		shutdownHooks:   shutdownHooks,
		baseCtx:         cfg.baseCtx,
	})
}

func (a *App) setupRoutes() {
	if a.notFoundHandler != nil {
		a.router.NotFound(a.wrapHandler(a.notFoundHandler))
		a.router.MethodNotAllowed(a.wrapHandler(a.notFoundHandler))
	}

	for _, mw := range a.middlewares {
		a.router.Use(a.adaptMiddleware(mw))
	}

	if a.healthConfig != nil {
		a.router.Get(a.healthConfig.livenessPath, health.LivenessHandler())
		a.router.Get(a.healthConfig.readinessPath, health.ReadinessHandler(
			a.healthConfig.checks,
			health.WithLogger(a.logger),
		))
	}

	r := &routerAdapter{router: a.router, app: a}
	for _, h := range a.handlers {
		h.Routes(r)
	}
}

// wrapHandler converts a HandlerFunc to http.HandlerFunc using the app's error handler.
func (a *App) wrapHandler(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := newContext(w, r, a)
		if err := h(c); err != nil {
			a.handleError(c, err)
		}
	}
}

// handleError renders err unless the response has already started.
func (a *App) handleError(c Context, err error) {
	if c.Written() {
		c.LogWarn("error after response started", slog.Any("error", err))
		return
	}
	if a.errorHandler != nil {
		if herr := a.errorHandler(c, err); herr == nil {
			return
		}
	}
	_ = DefaultErrorHandler(c, err)
}

// DefaultErrorHandler writes HTTPErrors as JSON and anything else as a
// 500 without details. Server errors are logged.
func DefaultErrorHandler(c Context, err error) error {
	httpErr := AsHTTPError(err)
	if httpErr == nil {
		httpErr = ErrInternal(http.StatusText(http.StatusInternalServerError), WithError(err))
	}

	if httpErr.Code >= http.StatusInternalServerError {
		c.LogError("request failed",
			slog.Int("status", httpErr.Code),
			slog.Any("error", err),
		)
	}

	return c.JSON(httpErr.Code, errorBody{
		Error:     httpErr.Message,
		Code:      httpErr.ErrorCode,
		RequestID: httpErr.RequestID,
	})
}

type errorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check.
//
// Example:
//
//	drive.WithReadinessCheck("db", db.Healthcheck(pool))
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if fn == nil {
			return
		}
		if c.checks == nil {
			c.checks = make(health.Checks)
		}
		c.checks[name] = fn
	}
}
