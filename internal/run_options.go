package internal

import (
	"context"
	"log/slog"
	"time"
)

// RunOption configures the server runtime.
type RunOption func(*runConfig)

type runConfig struct {
	logger          *slog.Logger
	baseCtx         context.Context
	startupHooks    []func(context.Context) error
	shutdownHooks   []func(context.Context) error
	shutdownTimeout time.Duration
}

func buildRunConfig(opts ...RunOption) *runConfig {
	cfg := &runConfig{
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Logger sets the server logger. Defaults to the app logger.
func Logger(l *slog.Logger) RunOption {
	return func(c *runConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// ShutdownTimeout sets the timeout for graceful shutdown.
// This applies to both the HTTP server and shutdown hooks.
// Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		if d > 0 {
			c.shutdownTimeout = d
		}
	}
}

// StartupHook registers a function that runs before the listener opens.
// A failing hook aborts startup.
func StartupHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.startupHooks = append(c.startupHooks, fn)
		}
	}
}

// ShutdownHook registers a cleanup function to run during shutdown.
// Hooks are called in the order they were registered, after workers stop.
//
// Example:
//
//	drive.ShutdownHook(db.Shutdown(pool))
func ShutdownHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.shutdownHooks = append(c.shutdownHooks, fn)
		}
	}
}

// WithContext sets a custom base context for signal handling.
// Canceling it shuts the server down. Defaults to context.Background().
func WithContext(ctx context.Context) RunOption {
	return func(c *runConfig) {
		if ctx != nil {
			c.baseCtx = ctx
		}
	}
}
