package cache

import "time"

// MemoryOption configures the in-memory cache.
type MemoryOption func(*memoryOptions)

type memoryOptions struct {
	now             func() time.Time
	defaultTTL      time.Duration
	cleanupInterval time.Duration
}

func defaultMemoryOptions() *memoryOptions {
	return &memoryOptions{
		now:             time.Now,
		defaultTTL:      time.Hour,
		cleanupInterval: time.Minute,
	}
}

// WithDefaultTTL sets the expiry used when Set is called with a zero TTL.
// Default: 1 hour.
func WithDefaultTTL(d time.Duration) MemoryOption {
	return func(o *memoryOptions) {
		o.defaultTTL = d
	}
}

// WithCleanupInterval sets how often the janitor removes expired entries.
// Zero disables the janitor.
// Default: 1 minute.
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(o *memoryOptions) {
		o.cleanupInterval = d
	}
}

// WithClock replaces time.Now. Intended for tests that need to cross an
// expiry boundary without sleeping.
func WithClock(now func() time.Time) MemoryOption {
	return func(o *memoryOptions) {
		if now != nil {
			o.now = now
		}
	}
}
