// Package cache provides the TTL key/value store behind download eligibility
// tokens and root-id lookups.
//
// Two implementations share the [Cache] interface: [Memory] for a single
// process and tests, and [Redis] for deployments with several API replicas,
// where a token issued by one replica must be accepted by another.
//
//	tokens := cache.NewMemory[string]()
//	_ = tokens.Set(ctx, "blob-download/01H...", token, time.Minute)
//	v, err := tokens.Get(ctx, "blob-download/01H...")
//	if errors.Is(err, cache.ErrNotFound) {
//		// expired or never issued
//	}
//
// [GetOrSet] deduplicates concurrent misses for the same key with
// singleflight.
package cache
