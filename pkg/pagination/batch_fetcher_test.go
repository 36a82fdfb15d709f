package pagination

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// mockFetcher returns items "p<page>-<n>" and fails pages listed in failPages.
type mockFetcher struct {
	perPage   int
	failPages map[int]bool
	panicPage int
	delay     func(page int) time.Duration

	mu       sync.Mutex
	calls    []int
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (m *mockFetcher) FetchPage(ctx context.Context, page int) ([]string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, page)
	m.mu.Unlock()

	cur := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		old := m.peak.Load()
		if cur <= old || m.peak.CompareAndSwap(old, cur) {
			break
		}
	}

	if m.delay != nil {
		select {
		case <-time.After(m.delay(page)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if page == m.panicPage {
		panic("boom")
	}
	if m.failPages[page] {
		return nil, fmt.Errorf("page %d unavailable", page)
	}

	items := make([]string, m.perPage)
	for i := range items {
		items[i] = fmt.Sprintf("p%d-%d", page, i)
	}
	return items, nil
}

func TestNewBatchFetcher_Defaults(t *testing.T) {
	bf := NewBatchFetcher[string](&mockFetcher{}, Config{})
	if bf.config.MaxConcurrency != 4 {
		t.Errorf("MaxConcurrency = %d, want 4", bf.config.MaxConcurrency)
	}
	if bf.config.Timeout != 360*time.Second {
		t.Errorf("Timeout = %v, want 360s", bf.config.Timeout)
	}
}

func TestFetchAll_AllPagesInOrder(t *testing.T) {
	// later pages finish first
	fetcher := &mockFetcher{
		perPage: 2,
		delay:   func(page int) time.Duration { return time.Duration(6-page) * 5 * time.Millisecond },
	}
	bf := NewBatchFetcher[string](fetcher, Config{MaxConcurrency: 5, Timeout: time.Second})

	items, report := bf.FetchAll(context.Background(), 5)

	if report.Requested != 5 || report.Succeeded != 5 || report.Failed != 0 || report.Skipped != 0 {
		t.Errorf("unexpected report: %+v", report)
	}
	if report.Err != nil {
		t.Errorf("Err = %v, want nil", report.Err)
	}
	if len(items) != 10 {
		t.Fatalf("expected 10 items, got %d", len(items))
	}
	for i, item := range items {
		want := fmt.Sprintf("p%d-%d", i/2+1, i%2)
		if item != want {
			t.Errorf("items[%d] = %q, want %q", i, item, want)
		}
	}
}

func TestFetchAll_FailedPagesAreEmpty(t *testing.T) {
	fetcher := &mockFetcher{perPage: 1, failPages: map[int]bool{2: true, 4: true}}
	bf := NewBatchFetcher[string](fetcher, Config{MaxConcurrency: 2, Timeout: time.Second})

	items, report := bf.FetchAll(context.Background(), 5)

	want := []string{"p1-0", "p3-0", "p5-0"}
	if len(items) != len(want) {
		t.Fatalf("items = %v, want %v", items, want)
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("items[%d] = %q, want %q", i, items[i], want[i])
		}
	}
	if report.Succeeded != 3 || report.Failed != 2 {
		t.Errorf("unexpected report: %+v", report)
	}
	if report.Err == nil {
		t.Fatal("expected aggregated error")
	}
	if report.AllFailed() {
		t.Error("AllFailed should be false")
	}
}

func TestFetchAll_AllPagesFail(t *testing.T) {
	fetcher := &mockFetcher{failPages: map[int]bool{1: true, 2: true, 3: true}}
	bf := NewBatchFetcher[string](fetcher, Config{MaxConcurrency: 4, Timeout: time.Second})

	items, report := bf.FetchAll(context.Background(), 3)

	if len(items) != 0 {
		t.Errorf("expected no items, got %v", items)
	}
	if !report.AllFailed() {
		t.Errorf("AllFailed should be true: %+v", report)
	}
	if report.Failed != 3 {
		t.Errorf("Failed = %d, want 3", report.Failed)
	}
}

func TestFetchAll_PanicIsIsolated(t *testing.T) {
	fetcher := &mockFetcher{perPage: 1, panicPage: 2}
	bf := NewBatchFetcher[string](fetcher, Config{MaxConcurrency: 2, Timeout: time.Second})

	items, report := bf.FetchAll(context.Background(), 3)

	if len(items) != 2 {
		t.Errorf("expected 2 items, got %v", items)
	}
	if report.Failed != 1 || report.Succeeded != 2 {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestFetchAll_BoundedConcurrency(t *testing.T) {
	fetcher := &mockFetcher{
		perPage: 1,
		delay:   func(int) time.Duration { return 10 * time.Millisecond },
	}
	bf := NewBatchFetcher[string](fetcher, Config{MaxConcurrency: 3, Timeout: time.Second})

	_, report := bf.FetchAll(context.Background(), 12)

	if report.Succeeded != 12 {
		t.Errorf("Succeeded = %d, want 12", report.Succeeded)
	}
	if peak := fetcher.peak.Load(); peak > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", peak)
	}
	if len(fetcher.calls) != 12 {
		t.Errorf("expected 12 calls, got %d", len(fetcher.calls))
	}
}

func TestFetchAll_PageTimeout(t *testing.T) {
	fetcher := &mockFetcher{
		perPage: 1,
		delay: func(page int) time.Duration {
			if page == 2 {
				return time.Minute
			}
			return 0
		},
	}
	bf := NewBatchFetcher[string](fetcher, Config{MaxConcurrency: 2, Timeout: 20 * time.Millisecond})

	items, report := bf.FetchAll(context.Background(), 3)

	if len(items) != 2 || report.Failed != 1 {
		t.Errorf("items = %v, report = %+v", items, report)
	}
	if !errors.Is(report.Err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded in %v", report.Err)
	}
}

func TestFetchAll_CancelledContextSkipsPages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &mockFetcher{perPage: 1}
	bf := NewBatchFetcher[string](fetcher, Config{MaxConcurrency: 2, Timeout: time.Second})

	items, report := bf.FetchAll(ctx, 4)

	if len(items) != 0 {
		t.Errorf("expected no items, got %v", items)
	}
	if report.Skipped != 4 {
		t.Errorf("Skipped = %d, want 4", report.Skipped)
	}
	if len(fetcher.calls) != 0 {
		t.Errorf("fetcher should not be called, got %v", fetcher.calls)
	}
}

func TestFetchAll_ZeroPages(t *testing.T) {
	bf := NewBatchFetcher[string](&mockFetcher{}, DefaultConfig())
	items, report := bf.FetchAll(context.Background(), 0)
	if items != nil || report.Requested != 0 || report.AllFailed() {
		t.Errorf("items = %v, report = %+v", items, report)
	}
}

func TestPageFetcherFunc(t *testing.T) {
	f := PageFetcherFunc[int](func(_ context.Context, page int) ([]int, error) {
		return []int{page * 10}, nil
	})
	items, report := NewBatchFetcher[int](f, Config{MaxConcurrency: 1}).FetchAll(context.Background(), 3)
	if report.Succeeded != 3 || len(items) != 3 || items[2] != 30 {
		t.Errorf("items = %v, report = %+v", items, report)
	}
}
