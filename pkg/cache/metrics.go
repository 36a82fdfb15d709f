package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Backend labels.
const (
	backendMemory = "memory"
	backendRedis  = "redis"
)

var (
	// CacheHits tracks cache hits by backend
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenders_cache_hits_total",
			Help: "Total number of snapshot cache hits",
		},
		[]string{"backend"}, // "memory", "redis"
	)

	// CacheMisses tracks cache misses by backend
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenders_cache_misses_total",
			Help: "Total number of snapshot cache misses",
		},
		[]string{"backend"},
	)

	// CacheSets tracks successful writes by backend
	CacheSets = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenders_cache_sets_total",
			Help: "Total number of snapshot cache writes",
		},
		[]string{"backend"},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenders_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"backend", "operation"}, // "get", "set", "delete"
	)
)
