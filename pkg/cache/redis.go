package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a cache backed by Redis. Values are serialized with the
// configured Marshaler (JSON by default).
type Redis[V any] struct {
	client    redis.UniversalClient
	opts      *redisOptions
	marshaler Marshaler[V]
}

// NewRedis creates a Redis-backed cache. Obtain the client from pkg/redis.Open.
// A nil Marshaler selects JSON.
//
// Example:
//
//	client, _ := redis.Open(ctx, redis.Config{URL: os.Getenv("REDIS_URL")})
//	tokens := cache.NewRedis[string](client, nil, cache.WithPrefix("drive"))
func NewRedis[V any](client redis.UniversalClient, m Marshaler[V], opts ...RedisOption) *Redis[V] {
	o := defaultRedisOptions()
	for _, opt := range opts {
		opt(o)
	}

	if m == nil {
		m = jsonMarshaler[V]{}
	}

	return &Redis[V]{client: client, opts: o, marshaler: m}
}

// Get returns ErrNotFound when the key is absent or expired.
func (r *Redis[V]) Get(ctx context.Context, key string) (V, error) {
	var zero V

	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return zero, ErrNotFound
		}
		return zero, err
	}

	return r.marshaler.Unmarshal(data)
}

// Set stores value with SET ... PX so expiry is enforced by Redis itself.
func (r *Redis[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	data, err := r.marshaler.Marshal(value)
	if err != nil {
		return err
	}

	if ttl == 0 {
		ttl = r.opts.defaultTTL
	}

	// go-redis treats 0 as "no expiration", which is our negative-TTL semantic.
	return r.client.Set(ctx, r.key(key), data, max(ttl, 0)).Err()
}

// Delete removes key.
func (r *Redis[V]) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

// Close is a no-op; the client is closed by pkg/redis.Shutdown.
func (r *Redis[V]) Close() error {
	return nil
}

func (r *Redis[V]) key(key string) string {
	if r.opts.prefix == "" {
		return key
	}
	return r.opts.prefix + ":" + key
}

var _ Cache[any] = (*Redis[any])(nil)
