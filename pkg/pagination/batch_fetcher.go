// Package pagination provides parallel batch fetching for paginated upstream endpoints
package pagination

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for batch fetching.
var (
	pagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tenders_upstream_pages_total",
		Help: "Total pages processed by the batch fetcher by outcome",
	}, []string{"outcome"})

	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tenders_fetch_duration_seconds",
		Help:    "Duration of a full batch fetch in seconds",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	})
)

// Page outcomes used as metric labels.
const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
	outcomeSkipped = "skipped"
)

// Config holds batch fetcher configuration
type Config struct {
	// MaxConcurrency is the maximum number of parallel page requests
	MaxConcurrency int
	// Timeout per page fetch, retries included
	Timeout time.Duration
	// Buffer size for the result channel (default: page count)
	BufferSize int
}

// DefaultConfig returns the default configuration for tenders.guru
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		Timeout:        360 * time.Second,
	}
}

// PageFetcher fetches a single page of items.
type PageFetcher[T any] interface {
	FetchPage(ctx context.Context, page int) ([]T, error)
}

// PageFetcherFunc adapts a function to PageFetcher.
type PageFetcherFunc[T any] func(ctx context.Context, page int) ([]T, error)

// FetchPage implements PageFetcher.
func (f PageFetcherFunc[T]) FetchPage(ctx context.Context, page int) ([]T, error) {
	return f(ctx, page)
}

// PageResult represents the result of fetching a single page
type PageResult[T any] struct {
	PageNumber int
	Items      []T
	Error      error
	Skipped    bool
}

// Report summarizes a FetchAll call.
type Report struct {
	Requested int
	Succeeded int
	Failed    int
	Skipped   int
	Duration  time.Duration
	// Err aggregates every page failure; nil when all attempted pages succeeded.
	Err error
}

// AllFailed reports whether pages were requested and none succeeded.
func (r Report) AllFailed() bool {
	return r.Requested > 0 && r.Succeeded == 0
}

// BatchFetcher handles parallel fetching of multiple pages
type BatchFetcher[T any] struct {
	fetcher PageFetcher[T]
	config  Config
}

// NewBatchFetcher creates a new batch fetcher
func NewBatchFetcher[T any](fetcher PageFetcher[T], config Config) *BatchFetcher[T] {
	defaults := DefaultConfig()
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = defaults.MaxConcurrency
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}

	return &BatchFetcher[T]{
		fetcher: fetcher,
		config:  config,
	}
}

// FetchAll fetches pages 1..pageCount using a worker pool.
//
// A failed page contributes no items and never aborts the batch. Items are
// returned concatenated in ascending page order. Pages not yet started when
// ctx is cancelled are reported as skipped.
func (bf *BatchFetcher[T]) FetchAll(ctx context.Context, pageCount int) ([]T, Report) {
	start := time.Now()
	report := Report{Requested: max(pageCount, 0)}
	if pageCount <= 0 {
		return nil, report
	}

	workers := min(bf.config.MaxConcurrency, pageCount)
	bufferSize := bf.config.BufferSize
	if bufferSize <= 0 {
		bufferSize = pageCount
	}

	log.Info().
		Int("pages", pageCount).
		Int("workers", workers).
		Msg("Starting parallel page fetch")

	pageQueue := make(chan int, pageCount)
	for page := 1; page <= pageCount; page++ {
		pageQueue <- page
	}
	close(pageQueue)

	pageResults := make(chan PageResult[T], bufferSize)

	// Start worker pool
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go bf.worker(ctx, pageQueue, pageResults, &wg, i)
	}

	// Close results channel when all workers done
	go func() {
		wg.Wait()
		close(pageResults)
	}()

	// Collect results
	byPage := make([][]T, pageCount+1)
	var errs *multierror.Error
	total := 0
	for result := range pageResults {
		switch {
		case result.Skipped:
			report.Skipped++
			pagesTotal.WithLabelValues(outcomeSkipped).Inc()
		case result.Error != nil:
			report.Failed++
			pagesTotal.WithLabelValues(outcomeFailure).Inc()
			errs = multierror.Append(errs, fmt.Errorf("page %d: %w", result.PageNumber, result.Error))
		default:
			report.Succeeded++
			pagesTotal.WithLabelValues(outcomeSuccess).Inc()
			byPage[result.PageNumber] = result.Items
			total += len(result.Items)

			// Progress logging every 50 pages
			if report.Succeeded%50 == 0 {
				log.Info().
					Int("fetched", report.Succeeded).
					Int("total", pageCount).
					Float64("progress_pct", float64(report.Succeeded)/float64(pageCount)*100).
					Msg("Fetch progress")
			}
		}
	}

	items := make([]T, 0, total)
	for _, pageItems := range byPage {
		items = append(items, pageItems...)
	}

	report.Err = errs.ErrorOrNil()
	report.Duration = time.Since(start)
	fetchDuration.Observe(report.Duration.Seconds())

	log.Info().
		Int("pages", report.Succeeded).
		Int("failed", report.Failed).
		Int("skipped", report.Skipped).
		Int("total", pageCount).
		Int("items", len(items)).
		Dur("duration", report.Duration).
		Msg("Fetch complete")

	return items, report
}

// worker processes pages from the queue
func (bf *BatchFetcher[T]) worker(ctx context.Context, pageQueue <-chan int, results chan<- PageResult[T], wg *sync.WaitGroup, workerID int) {
	defer wg.Done()
	pagesProcessed := 0

	for pageNum := range pageQueue {
		// Drain the queue as skipped once cancelled so every page is accounted for
		if ctx.Err() != nil {
			results <- PageResult[T]{PageNumber: pageNum, Skipped: true}
			continue
		}

		items, err := bf.fetchPage(ctx, pageNum)
		if err != nil {
			log.Warn().
				Err(err).
				Int("worker_id", workerID).
				Int("page", pageNum).
				Msg("Page fetch failed")
		}

		results <- PageResult[T]{PageNumber: pageNum, Items: items, Error: err}
		pagesProcessed++
	}

	if pagesProcessed > 0 {
		log.Debug().
			Int("worker_id", workerID).
			Int("pages_processed", pagesProcessed).
			Msg("Worker completed")
	}
}

// fetchPage fetches one page with its own timeout and turns a panic into an error.
func (bf *BatchFetcher[T]) fetchPage(ctx context.Context, pageNum int) (items []T, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Int("page", pageNum).
				Interface("panic", r).
				Msg("Page fetcher panicked")
			items, err = nil, fmt.Errorf("panic fetching page %d: %v", pageNum, r)
		}
	}()

	pageCtx, cancel := context.WithTimeout(ctx, bf.config.Timeout)
	defer cancel()

	return bf.fetcher.FetchPage(pageCtx, pageNum)
}
