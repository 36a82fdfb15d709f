// Command tenders-api serves a periodically refreshed snapshot of public
// tenders over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sternrassler/tenders-api/internal/api"
	"github.com/Sternrassler/tenders-api/pkg/cache"
	"github.com/Sternrassler/tenders-api/pkg/config"
	"github.com/Sternrassler/tenders-api/pkg/logging"
	"github.com/Sternrassler/tenders-api/pkg/mapper"
	"github.com/Sternrassler/tenders-api/pkg/model"
	"github.com/Sternrassler/tenders-api/pkg/pagination"
	"github.com/Sternrassler/tenders-api/pkg/query"
	"github.com/Sternrassler/tenders-api/pkg/refresher"
	"github.com/Sternrassler/tenders-api/pkg/upstream"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "tenders-api: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
		Output: os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mainLog := logging.NewLogger("main")
	if err := run(ctx, cfg, logger); err != nil {
		mainLog.Error().Err(err).Msg("Service stopped with error")
		os.Exit(1)
	}
	mainLog.Info().Msg("Service stopped")
}

// run wires the pipeline and blocks until ctx is cancelled or a component fails.
func run(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	store, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	client, err := upstream.New(upstream.Config{
		BaseURL:        cfg.UpstreamBaseURL,
		UserAgent:      cfg.UpstreamUserAgent,
		RequestTimeout: cfg.UpstreamRequestTimeout,
		MaxRetries:     cfg.UpstreamMaxRetries,
		RetryWaitMin:   cfg.UpstreamRetryWaitMin,
		RetryWaitMax:   cfg.UpstreamRetryWaitMax,
	}, logger)
	if err != nil {
		return fmt.Errorf("create upstream client: %w", err)
	}

	fetcher := pagination.NewBatchFetcher[upstream.Item](client, pagination.Config{
		MaxConcurrency: cfg.FetchConcurrency,
		Timeout:        cfg.FetchPageTimeout,
	})

	refCfg := refresher.DefaultConfig()
	refCfg.PageCount = cfg.UpstreamPagesCount
	refCfg.RefreshInterval = cfg.RefreshInterval
	refCfg.CacheTTL = cfg.CacheTTL
	ref, err := refresher.New(fetcher, mapper.New(logger), store, refCfg, logger)
	if err != nil {
		return fmt.Errorf("create refresher: %w", err)
	}

	srv, err := api.NewServer(api.Config{
		Address:         cfg.ServerAddress,
		RequestTimeout:  cfg.HTTPRequestTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, query.NewService(store, refCfg.Key, logger), ref, logger)
	if err != nil {
		return fmt.Errorf("create api server: %w", err)
	}

	logger.Info().
		Str("address", cfg.ServerAddress).
		Str("upstream", cfg.UpstreamBaseURL).
		Str("cache_backend", cfg.CacheBackend).
		Int("pages", cfg.UpstreamPagesCount).
		Dur("refresh_interval", cfg.RefreshInterval).
		Msg("Starting tenders-api")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ref.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return srv.Run(gctx)
	})
	return g.Wait()
}

// newStore builds the snapshot store for the configured backend.
func newStore(ctx context.Context, cfg config.Config) (cache.Store[[]model.Tender], func(), error) {
	switch cfg.CacheBackend {
	case config.BackendMemory:
		return cache.NewMemoryStore[[]model.Tender](nil), func() {}, nil
	case config.BackendRedis:
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store := cache.NewRedisStore[[]model.Tender](redisClient, cfg.RedisKeyPrefix)
		if err := store.Ping(ctx); err != nil {
			_ = redisClient.Close()
			return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		return store, func() { _ = redisClient.Close() }, nil
	default:
		return nil, nil, errors.New("unknown cache backend " + cfg.CacheBackend)
	}
}
