package drive

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/drive/internal"
)

// Logger sets the server logger. Defaults to the app logger.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout bounds draining requests and running shutdown hooks.
// Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook runs fn before the listener opens. A failing hook aborts startup.
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook registers a cleanup function to run during shutdown.
//
// Example:
//
//	drive.ShutdownHook(db.Shutdown(pool))
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// WithContext sets the base context; canceling it stops the server.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}
