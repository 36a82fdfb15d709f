package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCacheMiss indicates the requested key was never set, was deleted or has expired
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Store is a keyed cache of whole values with absolute expiration.
type Store[T any] interface {
	// Get returns the value stored under key, or ErrCacheMiss.
	Get(ctx context.Context, key Key) (T, error)

	// Set replaces the value under key. The entry expires ttl after the call;
	// a non-positive ttl removes it.
	Set(ctx context.Context, key Key, value T, ttl time.Duration) error

	// Delete removes the value under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key Key) error
}
