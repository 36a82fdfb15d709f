// Package refresher keeps the tender snapshot in the cache up to date.
//
// A Refresher runs one cycle immediately on start and then one cycle per
// refresh interval until its context is cancelled. Each cycle fetches every
// configured upstream page, maps the items and replaces the cached snapshot
// in a single write. A failed cycle leaves the previous snapshot in place.
//
// A cycle in which every page failed counts as failed. The previous snapshot
// keeps being served rather than being replaced by an empty one; clients see
// stale data until the cache TTL expires instead of an empty list.
package refresher

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Sternrassler/tenders-api/pkg/cache"
	"github.com/Sternrassler/tenders-api/pkg/logging"
	"github.com/Sternrassler/tenders-api/pkg/model"
	"github.com/Sternrassler/tenders-api/pkg/pagination"
	"github.com/Sternrassler/tenders-api/pkg/upstream"
	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrNoPagesFetched is returned when every requested page failed.
	ErrNoPagesFetched = errors.New("no upstream pages fetched")

	// ErrCyclePanicked is returned when a cycle panicked.
	ErrCyclePanicked = errors.New("refresh cycle panicked")
)

// Fetcher fetches upstream pages 1..pageCount.
type Fetcher interface {
	FetchAll(ctx context.Context, pageCount int) ([]upstream.Item, pagination.Report)
}

// Mapper converts upstream items to tenders.
type Mapper interface {
	Map(items []upstream.Item) []model.Tender
}

// Config holds the refresher configuration.
type Config struct {
	// PageCount is the number of upstream pages fetched per cycle
	PageCount int

	// RefreshInterval is the pause between the end of one cycle and the start of the next
	RefreshInterval time.Duration

	// CacheTTL is the lifetime of a published snapshot; must exceed RefreshInterval
	CacheTTL time.Duration

	// Key is the cache key the snapshot is published under
	Key cache.Key

	// Clock drives the interval timer and timestamps (default: wall clock)
	Clock clock.Clock
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		PageCount:       100,
		RefreshInterval: 30 * time.Minute,
		CacheTTL:        time.Hour,
		Key:             cache.AllTendersKey,
	}
}

// Refresher periodically republishes the tender snapshot.
type Refresher struct {
	fetcher Fetcher
	mapper  Mapper
	store   cache.Store[[]model.Tender]
	config  Config
	clock   clock.Clock
	logger  zerolog.Logger

	state       atomic.Int32
	lastSuccess atomic.Pointer[time.Time]
}

// New creates a refresher. It does not start it.
func New(fetcher Fetcher, mapper Mapper, store cache.Store[[]model.Tender], cfg Config, logger zerolog.Logger) (*Refresher, error) {
	if fetcher == nil || mapper == nil || store == nil {
		return nil, fmt.Errorf("fetcher, mapper and store are required")
	}
	if cfg.PageCount <= 0 {
		return nil, fmt.Errorf("page count must be > 0 (got %d)", cfg.PageCount)
	}
	if cfg.RefreshInterval <= 0 {
		return nil, fmt.Errorf("refresh interval must be positive (got %s)", cfg.RefreshInterval)
	}
	if cfg.CacheTTL <= cfg.RefreshInterval {
		return nil, fmt.Errorf("cache ttl (%s) must be greater than refresh interval (%s)", cfg.CacheTTL, cfg.RefreshInterval)
	}
	if cfg.Key.String() == "" {
		cfg.Key = cache.AllTendersKey
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}

	return &Refresher{
		fetcher: fetcher,
		mapper:  mapper,
		store:   store,
		config:  cfg,
		clock:   cfg.Clock,
		logger:  logging.WithComponent(logger, logging.ComponentRefresher),
	}, nil
}

// Run refreshes immediately and then every RefreshInterval until ctx is cancelled.
// Cycle failures are logged and never stop the loop.
func (r *Refresher) Run(ctx context.Context) {
	r.setState(StateStarting)
	r.logger.Info().
		Int("page_count", r.config.PageCount).
		Dur("interval", r.config.RefreshInterval).
		Dur("ttl", r.config.CacheTTL).
		Msg("Refresher starting")

	for ctx.Err() == nil {
		r.setState(StateRefreshing)
		_ = r.Refresh(ctx)

		if !r.sleep(ctx) {
			break
		}
	}

	r.setState(StateStopping)
	r.logger.Info().Msg("Refresher stopping")
	r.setState(StateStopped)
}

// sleep waits one RefreshInterval. It returns false if ctx was cancelled first.
func (r *Refresher) sleep(ctx context.Context) bool {
	timer := r.clock.Timer(r.config.RefreshInterval)
	defer timer.Stop()
	r.setState(StateIdle)

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Refresh runs one fetch, map and publish cycle.
//
// The snapshot is only replaced when at least one page was fetched and ctx
// was not cancelled during the fetch.
func (r *Refresher) Refresh(ctx context.Context) (err error) {
	logger := r.logger.With().Str("cycle_id", uuid.NewString()).Logger()
	start := r.clock.Now()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrCyclePanicked, p)
		}
		r.observe(logger, start, err)
	}()

	logger.Info().Msg("Refresh cycle started")

	items, report := r.fetcher.FetchAll(ctx, r.config.PageCount)
	if ctx.Err() != nil {
		return fmt.Errorf("refresh cancelled: %w", ctx.Err())
	}
	if report.AllFailed() {
		return fmt.Errorf("%w (%d pages): %w", ErrNoPagesFetched, report.Failed, report.Err)
	}
	if report.Err != nil {
		logger.Warn().
			Err(report.Err).
			Int("failed", report.Failed).
			Int("succeeded", report.Succeeded).
			Bool("transient", upstream.IsRetryable(report.Err)).
			Msg("Some upstream pages failed")
	}

	tenders := r.mapper.Map(items)

	if err := r.store.Set(ctx, r.config.Key, tenders, r.config.CacheTTL); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}

	now := r.clock.Now()
	r.lastSuccess.Store(&now)
	snapshotTenders.Set(float64(len(tenders)))
	snapshotLastSuccess.Set(float64(now.Unix()))

	logger.Info().
		Int("tenders", len(tenders)).
		Int("pages", report.Succeeded).
		Str("key", r.config.Key.String()).
		Msg("Snapshot published")

	return nil
}

// observe records the outcome of a cycle.
func (r *Refresher) observe(logger zerolog.Logger, start time.Time, err error) {
	duration := r.clock.Since(start)
	refreshDuration.Observe(duration.Seconds())

	switch {
	case err == nil:
		refreshCycles.WithLabelValues(outcomeSuccess).Inc()
		logger.Info().Dur("duration", duration).Msg("Refresh cycle completed")
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		refreshCycles.WithLabelValues(outcomeCancelled).Inc()
		logger.Info().Err(err).Dur("duration", duration).Msg("Refresh cycle cancelled")
	default:
		refreshCycles.WithLabelValues(outcomeFailure).Inc()
		logger.Error().Err(err).Dur("duration", duration).Msg("Refresh cycle failed")
	}
}

// State returns the current lifecycle state.
func (r *Refresher) State() State {
	return State(r.state.Load())
}

func (r *Refresher) setState(s State) {
	r.state.Store(int32(s))
}

// LastSuccess returns when a snapshot was last published.
// The boolean is false until the first successful cycle.
func (r *Refresher) LastSuccess() (time.Time, bool) {
	t := r.lastSuccess.Load()
	if t == nil {
		return time.Time{}, false
	}
	return *t, true
}

// Ready reports whether at least one snapshot has been published.
func (r *Refresher) Ready() bool {
	_, ok := r.LastSuccess()
	return ok
}
