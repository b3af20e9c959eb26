package blobstore

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/drive/pkg/id"
	"github.com/dmitrymomot/drive/pkg/logger"
	"github.com/dmitrymomot/drive/pkg/storage"
)

// Option configures a store.
type Option func(*options)

type options struct {
	objects           storage.Storage
	logger            *slog.Logger
	newID             func() string
	now               func() time.Time
	deleteConcurrency int
}

func defaultOptions() *options {
	return &options{
		logger:            logger.NewNope(),
		newID:             id.NewULID,
		now:               time.Now,
		deleteConcurrency: 10,
	}
}

// WithObjectStorage sets where blob bytes are written.
// Memory defaults to storage.NewMemory; Postgres requires it.
func WithObjectStorage(s storage.Storage) Option {
	return func(o *options) {
		o.objects = s
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

// WithDeleteConcurrency bounds parallel object deletions in DeleteMany. Default: 10.
func WithDeleteConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.deleteConcurrency = n
		}
	}
}

// WithClock overrides the upload date source.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithIDGenerator overrides blob id generation. Ids must be unique.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.newID = fn
		}
	}
}
