package tree

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/drive/pkg/cache"
	"github.com/dmitrymomot/drive/pkg/logger"
)

// DefaultEligibilityTTL is how long a download token stays valid.
const DefaultEligibilityTTL = time.Minute

// Option configures an Engine.
type Option func(*options)

type options struct {
	logger         *slog.Logger
	dispatcher     Dispatcher
	rootCache      cache.Cache[string]
	newToken       func() string
	localOpts      []LocalOption
	eligibilityTTL time.Duration
	rootGuard      bool
}

func defaultOptions() *options {
	return &options{
		logger:         logger.NewNope(),
		newToken:       uuid.NewString,
		eligibilityTTL: DefaultEligibilityTTL,
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithDispatcher replaces the in-process LocalDispatcher, e.g. with a
// JobDispatcher backed by the job queue.
func WithDispatcher(d Dispatcher) Option {
	return func(o *options) {
		o.dispatcher = d
	}
}

// WithLocalDispatcher configures the default in-process dispatcher.
// Ignored when WithDispatcher is also given.
func WithLocalDispatcher(opts ...LocalOption) Option {
	return func(o *options) {
		o.localOpts = append(o.localOpts, opts...)
	}
}

// WithEligibilityTTL sets the lifetime of download tokens. Default: 60s.
func WithEligibilityTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.eligibilityTTL = d
		}
	}
}

// WithTokenGenerator overrides download token generation. Default: random UUIDv4.
func WithTokenGenerator(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.newToken = fn
		}
	}
}

// WithRootGuard makes ProvisionRoot return the existing root instead of
// creating a second one. Without it, provisioning twice creates two roots
// and GetRoot fails with ErrInternal afterwards.
func WithRootGuard() Option {
	return func(o *options) {
		o.rootGuard = true
	}
}

// WithRootCache memoizes GetRoot. Roots are never moved or deleted.
func WithRootCache(c cache.Cache[string]) Option {
	return func(o *options) {
		o.rootCache = c
	}
}
