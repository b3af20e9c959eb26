package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache is a key/value store with per-key expiry.
//
// TTL semantics for Set:
//   - Positive duration: item expires after this duration
//   - Zero: use the cache's configured default TTL
//   - Negative: item never expires
type Cache[V any] interface {
	// Get returns ErrNotFound if the key does not exist or has expired.
	Get(ctx context.Context, key string) (V, error)

	// Set stores value under key with the given TTL.
	Set(ctx context.Context, key string, value V, ttl time.Duration) error

	// Delete removes a key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Marshaler converts values to and from bytes for backends that store raw bytes.
type Marshaler[V any] interface {
	Marshal(v V) ([]byte, error)
	Unmarshal(data []byte) (V, error)
}

type jsonMarshaler[V any] struct{}

func (jsonMarshaler[V]) Marshal(v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return data, nil
}

func (jsonMarshaler[V]) Unmarshal(data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}

var sfGroup singleflight.Group

// GetOrSet returns the cached value for key, or computes it with fn on a miss.
// Concurrent misses for the same key share a single fn call.
// Errors from fn are returned and nothing is cached.
func GetOrSet[V any](ctx context.Context, c Cache[V], key string, ttl time.Duration, fn func(ctx context.Context) (V, error)) (V, error) {
	if v, err := c.Get(ctx, key); err == nil {
		return v, nil
	}

	v, err, _ := sfGroup.Do(key, func() (any, error) {
		val, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		// Best effort: a failed write only costs a recomputation later.
		_ = c.Set(ctx, key, val, ttl)
		return val, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}

	return v.(V), nil
}
