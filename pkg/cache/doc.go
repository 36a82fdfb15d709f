// Package cache provides the snapshot store for the tenders API.
//
// A Store holds whole values under string keys with an absolute expiration.
// Writers replace values atomically; readers see either the previous or the
// new value, never a partial one. Two backends are provided:
//
//   - MemoryStore keeps entries in process memory (default)
//   - RedisStore keeps JSON-encoded entries in Redis with a native TTL
//
// # Basic Usage
//
//	store := cache.NewMemoryStore[[]model.Tender](clock.New())
//
//	// Publish a snapshot for one hour
//	if err := store.Set(ctx, cache.AllTendersKey, tenders, time.Hour); err != nil {
//		return err
//	}
//
//	// Read it back
//	tenders, err := store.Get(ctx, cache.AllTendersKey)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// never published, or expired
//	}
//
// # Redis Backend
//
//	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	store := cache.NewRedisStore[[]model.Tender](redisClient, "tenders-api:")
//
// The Redis backend is a drop-in replacement for a single writer. It does not
// coordinate refreshes between processes sharing the same Redis.
//
// # Metrics
//
// Both backends export Prometheus metrics:
//
//   - tenders_cache_hits_total{backend} - Cache hits
//   - tenders_cache_misses_total{backend} - Cache misses, expired entries included
//   - tenders_cache_sets_total{backend} - Successful writes
//   - tenders_cache_errors_total{backend,operation} - Cache operation errors
package cache
