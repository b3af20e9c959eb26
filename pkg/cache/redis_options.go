package cache

import "time"

// RedisOption configures the Redis cache.
type RedisOption func(*redisOptions)

type redisOptions struct {
	prefix     string
	defaultTTL time.Duration
}

func defaultRedisOptions() *redisOptions {
	return &redisOptions{defaultTTL: time.Hour}
}

// WithRedisDefaultTTL sets the expiry used when Set is called with a zero TTL.
// Default: 1 hour.
func WithRedisDefaultTTL(d time.Duration) RedisOption {
	return func(o *redisOptions) {
		o.defaultTTL = d
	}
}

// WithPrefix namespaces keys as "{prefix}:{key}".
func WithPrefix(prefix string) RedisOption {
	return func(o *redisOptions) {
		o.prefix = prefix
	}
}
