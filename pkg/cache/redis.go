package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/redis/go-redis/v9"
)

// RedisStore is a Store backed by Redis.
//
// Entries are JSON-encoded and written with a native TTL, so Redis drops them
// on expiry. The entry's own Expires field is checked on read as well.
type RedisStore[T any] struct {
	redis  *redis.Client
	prefix string
	clock  clock.Clock
}

// NewRedisStore creates a store that namespaces its keys with prefix.
func NewRedisStore[T any](redisClient *redis.Client, prefix string) *RedisStore[T] {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore[T]{
		redis:  redisClient,
		prefix: prefix,
		clock:  clock.New(),
	}
}

func (s *RedisStore[T]) redisKey(key Key) string {
	return s.prefix + key.String()
}

// Get retrieves the value stored under key.
// Returns ErrCacheMiss if the key doesn't exist or the entry is expired.
func (s *RedisStore[T]) Get(ctx context.Context, key Key) (T, error) {
	var zero T

	// Get data from Redis
	data, err := s.redis.Get(ctx, s.redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			CacheMisses.WithLabelValues(backendRedis).Inc()
			return zero, ErrCacheMiss
		}
		CacheErrors.WithLabelValues(backendRedis, "get").Inc()
		return zero, fmt.Errorf("redis get: %w", err)
	}

	// Unmarshal entry
	var entry Entry[T]
	if err := json.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues(backendRedis, "get").Inc()
		return zero, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	// Check if expired
	if entry.IsExpiredAt(s.clock.Now()) {
		// Delete expired entry
		_ = s.Delete(ctx, key)
		CacheMisses.WithLabelValues(backendRedis).Inc()
		return zero, ErrCacheMiss
	}

	// Cache hit
	CacheHits.WithLabelValues(backendRedis).Inc()

	return entry.Value, nil
}

// Set stores value under key for ttl.
// The entry will be automatically removed from Redis when it expires.
func (s *RedisStore[T]) Set(ctx context.Context, key Key, value T, ttl time.Duration) error {
	if ttl <= 0 {
		return s.Delete(ctx, key)
	}

	now := s.clock.Now()
	entry := Entry[T]{
		Value:    value,
		Expires:  now.Add(ttl),
		CachedAt: now,
	}

	// Marshal entry
	data, err := json.Marshal(entry)
	if err != nil {
		CacheErrors.WithLabelValues(backendRedis, "set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	// Store in Redis with TTL
	if err := s.redis.Set(ctx, s.redisKey(key), data, entry.TTLAt(now)).Err(); err != nil {
		CacheErrors.WithLabelValues(backendRedis, "set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	CacheSets.WithLabelValues(backendRedis).Inc()
	return nil
}

// Delete removes a cache entry.
func (s *RedisStore[T]) Delete(ctx context.Context, key Key) error {
	if err := s.redis.Del(ctx, s.redisKey(key)).Err(); err != nil {
		CacheErrors.WithLabelValues(backendRedis, "delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}

	return nil
}

// Ping checks connectivity to Redis.
func (s *RedisStore[T]) Ping(ctx context.Context) error {
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
