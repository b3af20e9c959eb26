package middlewares

import (
	"runtime"

	"github.com/dmitrymomot/drive/internal"
)

// DefaultStackSize is the default maximum stack trace size in bytes.
const DefaultStackSize = 4096

// RecoverOption configures the recover middleware.
type RecoverOption func(*recoverConfig)

type recoverConfig struct {
	stackSize         int
	disablePrintStack bool
}

// WithRecoverStackSize sets the maximum stack trace size.
func WithRecoverStackSize(size int) RecoverOption {
	return func(cfg *recoverConfig) {
		if size > 0 {
			cfg.stackSize = size
		}
	}
}

// WithRecoverDisablePrintStack leaves the stack trace out of logs.
func WithRecoverDisablePrintStack() RecoverOption {
	return func(cfg *recoverConfig) {
		cfg.disablePrintStack = true
	}
}

// Recover returns middleware that turns handler panics into a PanicError
// for the app's error handler, which renders it as a 500.
func Recover(opts ...RecoverOption) internal.Middleware {
	cfg := &recoverConfig{stackSize: DefaultStackSize}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				var stack []byte
				if !cfg.disablePrintStack {
					stack = make([]byte, cfg.stackSize)
					stack = stack[:runtime.Stack(stack, false)]
					c.LogError("panic recovered", "panic", r, "stack", string(stack))
				} else {
					c.LogError("panic recovered", "panic", r)
				}

				err = &PanicError{Value: r, Stack: stack}
			}()

			return next(c)
		}
	}
}
