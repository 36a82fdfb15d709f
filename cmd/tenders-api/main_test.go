package main

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/Sternrassler/tenders-api/internal/testutil"
	"github.com/Sternrassler/tenders-api/pkg/cache"
	"github.com/Sternrassler/tenders-api/pkg/config"
	"github.com/Sternrassler/tenders-api/pkg/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(upstreamURL string) config.Config {
	return config.Config{
		ServerAddress:          "127.0.0.1:0",
		HTTPRequestTimeout:     time.Second,
		ShutdownTimeout:        time.Second,
		LogLevel:               "info",
		UpstreamBaseURL:        upstreamURL,
		UpstreamUserAgent:      "tenders-api-test/1.0",
		UpstreamPagesCount:     2,
		UpstreamRequestTimeout: time.Second,
		UpstreamMaxRetries:     0,
		FetchConcurrency:       2,
		FetchPageTimeout:       5 * time.Second,
		RefreshInterval:        time.Minute,
		CacheTTL:               2 * time.Minute,
		CacheBackend:           config.BackendMemory,
	}
}

func TestNewStore_Memory(t *testing.T) {
	store, closeStore, err := newStore(context.Background(), testConfig("http://localhost/"))
	require.NoError(t, err)
	defer closeStore()

	_, ok := store.(*cache.MemoryStore[[]model.Tender])
	assert.True(t, ok, "expected memory store, got %T", store)
}

func TestNewStore_UnknownBackend(t *testing.T) {
	cfg := testConfig("http://localhost/")
	cfg.CacheBackend = "memcached"

	_, _, err := newStore(context.Background(), cfg)
	assert.EqualError(t, err, "unknown cache backend memcached")
}

func TestNewStore_RedisUnreachable(t *testing.T) {
	cfg := testConfig("http://localhost/")
	cfg.CacheBackend = config.BackendRedis
	cfg.RedisAddr = "127.0.0.1:1"

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, _, err := newStore(ctx, cfg)
	assert.Error(t, err)
}

func TestRun_RefreshesAndStops(t *testing.T) {
	mock := testutil.NewMockUpstream()
	defer mock.Close()
	mock.SetPage(1, testutil.Tender("1", "2024-03-01", "Road", "10"))
	mock.FailPage(2, http.StatusNotFound)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, testConfig(mock.URL()), zerolog.Nop()) }()

	require.Eventually(t, func() bool {
		return mock.CallsFor(1) == 1 && mock.CallsFor(2) == 1
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancellation")
	}
}

func TestRun_InvalidUpstream(t *testing.T) {
	cfg := testConfig("not a url")
	err := run(context.Background(), cfg, zerolog.Nop())
	assert.ErrorContains(t, err, "create upstream client")
}
