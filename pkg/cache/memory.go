package cache

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// MemoryStore is an in-process Store.
//
// Values are stored by reference. Callers must treat values returned by Get as
// read-only, and must not mutate a value after passing it to Set.
type MemoryStore[T any] struct {
	mu      sync.RWMutex
	entries map[string]*Entry[T]
	clock   clock.Clock
}

// NewMemoryStore creates an empty store. A nil clock uses the wall clock.
func NewMemoryStore[T any](clk clock.Clock) *MemoryStore[T] {
	if clk == nil {
		clk = clock.New()
	}
	return &MemoryStore[T]{
		entries: make(map[string]*Entry[T]),
		clock:   clk,
	}
}

// Get retrieves the value stored under key.
// Returns ErrCacheMiss if the key doesn't exist or the entry is expired.
func (s *MemoryStore[T]) Get(ctx context.Context, key Key) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	k := key.String()
	now := s.clock.Now()

	s.mu.RLock()
	entry, ok := s.entries[k]
	s.mu.RUnlock()

	if !ok {
		CacheMisses.WithLabelValues(backendMemory).Inc()
		return zero, ErrCacheMiss
	}

	if entry.IsExpiredAt(now) {
		s.evict(k, entry)
		CacheMisses.WithLabelValues(backendMemory).Inc()
		return zero, ErrCacheMiss
	}

	CacheHits.WithLabelValues(backendMemory).Inc()
	return entry.Value, nil
}

// Set replaces the value under key with an absolute expiration of now+ttl.
func (s *MemoryStore[T]) Set(ctx context.Context, key Key, value T, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		CacheErrors.WithLabelValues(backendMemory, "set").Inc()
		return err
	}
	if ttl <= 0 {
		return s.Delete(ctx, key)
	}

	now := s.clock.Now()
	entry := &Entry[T]{
		Value:    value,
		Expires:  now.Add(ttl),
		CachedAt: now,
	}

	s.mu.Lock()
	s.entries[key.String()] = entry
	s.mu.Unlock()

	CacheSets.WithLabelValues(backendMemory).Inc()
	return nil
}

// Delete removes the value under key.
func (s *MemoryStore[T]) Delete(_ context.Context, key Key) error {
	s.mu.Lock()
	delete(s.entries, key.String())
	s.mu.Unlock()
	return nil
}

// Len returns the number of entries held, expired ones included.
func (s *MemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// evict removes k if it still holds the expired entry.
func (s *MemoryStore[T]) evict(k string, expired *Entry[T]) {
	s.mu.Lock()
	if s.entries[k] == expired {
		delete(s.entries, k)
	}
	s.mu.Unlock()
}
