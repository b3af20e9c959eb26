package cache

import (
	"context"
	"sync"
	"time"
)

type entry[V any] struct {
	expiresAt time.Time // zero value = never expires
	value     V
}

func (e entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Memory is an in-process cache with TTL expiry.
// Expired entries are invisible to Get immediately and are physically
// removed by a background janitor.
type Memory[V any] struct {
	items map[string]entry[V]
	opts  *memoryOptions
	done  chan struct{}
	mu    sync.RWMutex

	closed bool
}

// NewMemory creates an in-memory cache.
//
// Example:
//
//	tokens := cache.NewMemory[string](cache.WithCleanupInterval(30 * time.Second))
//	defer tokens.Close()
func NewMemory[V any](opts ...MemoryOption) *Memory[V] {
	o := defaultMemoryOptions()
	for _, opt := range opts {
		opt(o)
	}

	m := &Memory[V]{
		items: make(map[string]entry[V]),
		opts:  o,
		done:  make(chan struct{}),
	}

	if o.cleanupInterval > 0 {
		go m.janitor()
	}

	return m
}

// Get returns ErrNotFound for missing or expired keys.
func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.RLock()
	e, ok := m.items[key]
	m.mu.RUnlock()

	if !ok || e.expired(m.opts.now()) {
		var zero V
		return zero, ErrNotFound
	}
	return e.value, nil
}

// Set stores value under key.
func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if ttl == 0 {
		ttl = m.opts.defaultTTL
	}

	e := entry[V]{value: value}
	if ttl > 0 {
		e.expiresAt = m.opts.now().Add(ttl)
	}
	m.items[key] = e

	return nil
}

// Delete removes key.
func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	delete(m.items, key)
	return nil
}

// Len returns the number of stored entries, including expired ones the
// janitor has not removed yet.
func (m *Memory[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Close stops the janitor. Close is idempotent.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	close(m.done)
	return nil
}

func (m *Memory[V]) janitor() {
	ticker := time.NewTicker(m.opts.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.deleteExpired()
		}
	}
}

func (m *Memory[V]) deleteExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.opts.now()
	for key, e := range m.items {
		if e.expired(now) {
			delete(m.items, key)
		}
	}
}

var _ Cache[any] = (*Memory[any])(nil)
