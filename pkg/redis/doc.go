// Package redis opens the [github.com/redis/go-redis/v9] client used by the
// Redis-backed eligibility token cache.
//
//	client, err := redis.Open(ctx, redis.Config{URL: "redis://localhost:6379/0"})
//	if err != nil {
//		return err
//	}
//	tokens := cache.NewRedis[string](client, nil, cache.WithPrefix("drive"))
//
// [Healthcheck] and [Shutdown] return closures for the readiness probe and
// the server's shutdown hooks.
package redis
