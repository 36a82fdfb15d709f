package cache

import (
	"time"
)

// Entry is a cached value with its absolute expiration.
type Entry[T any] struct {
	// Value is the cached value
	Value T `json:"value"`

	// Expires is when the entry stops being served
	Expires time.Time `json:"expires"`

	// CachedAt is when the entry was written
	CachedAt time.Time `json:"cached_at"`
}

// IsExpiredAt reports whether the entry has expired at now.
// An entry is expired from its Expires instant onwards.
func (e *Entry[T]) IsExpiredAt(now time.Time) bool {
	return !now.Before(e.Expires)
}

// TTLAt returns the time left until expiration at now.
// Returns 0 if already expired.
func (e *Entry[T]) TTLAt(now time.Time) time.Duration {
	ttl := e.Expires.Sub(now)
	if ttl < 0 {
		return 0
	}
	return ttl
}
