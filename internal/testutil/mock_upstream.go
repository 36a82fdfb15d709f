// Package testutil provides testing utilities for the tenders service.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"
)

// MockPageResponse overrides the response for one page.
type MockPageResponse struct {
	StatusCode int
	Body       string
	Delay      time.Duration
}

// MockUpstream is a configurable mock of the paginated tenders endpoint.
// It serves GET /tenders?page=N.
type MockUpstream struct {
	server *httptest.Server

	mu        sync.RWMutex
	pages     map[int][]map[string]any
	overrides map[int]MockPageResponse
	calls     map[int]int

	RequestCount      int
	LastRequestHeader http.Header
}

// NewMockUpstream creates and starts a mock upstream server.
func NewMockUpstream() *MockUpstream {
	m := &MockUpstream{
		pages:     make(map[int][]map[string]any),
		overrides: make(map[int]MockPageResponse),
		calls:     make(map[int]int),
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.serve))
	return m
}

// URL returns the base URL to configure the upstream client with.
func (m *MockUpstream) URL() string {
	return m.server.URL + "/"
}

// Close shuts down the mock server.
func (m *MockUpstream) Close() {
	m.server.Close()
}

// Reset clears counters. Pages and overrides are kept.
func (m *MockUpstream) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastRequestHeader = nil
	m.calls = make(map[int]int)
}

// SetPage sets the raw items served for page. Pages not set return an empty data array.
func (m *MockUpstream) SetPage(page int, items ...map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[page] = items
}

// SetResponse overrides the response for page.
func (m *MockUpstream) SetResponse(page int, resp MockPageResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[page] = resp
}

// FailPage makes page answer with status.
func (m *MockUpstream) FailPage(page, status int) {
	m.SetResponse(page, MockPageResponse{StatusCode: status, Body: `{"error":"mock failure"}`})
}

// GetRequestCount returns the total number of requests served.
func (m *MockUpstream) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// CallsFor returns how often page was requested.
func (m *MockUpstream) CallsFor(page int) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[page]
}

// Tender builds a raw upstream item the way tenders.guru returns it.
func Tender(id, date, title, amount string, suppliers ...map[string]any) map[string]any {
	if suppliers == nil {
		suppliers = []map[string]any{}
	}
	return map[string]any{
		"id":          id,
		"date":        date,
		"title":       title,
		"description": "Description of " + title,
		"amount_eur":  amount,
		"suppliers":   suppliers,
	}
}

// Supplier builds a raw upstream supplier.
func Supplier(id int, name string) map[string]any {
	return map[string]any{"id": id, "name": name}
}

func (m *MockUpstream) serve(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if r.URL.Path != "/tenders" || err != nil {
		http.NotFound(w, r)
		return
	}

	m.mu.Lock()
	m.RequestCount++
	m.calls[page]++
	m.LastRequestHeader = r.Header.Clone()
	override, overridden := m.overrides[page]
	items := m.pages[page]
	pageCount := len(m.pages)
	m.mu.Unlock()

	if overridden {
		if override.Delay > 0 {
			select {
			case <-time.After(override.Delay):
			case <-r.Context().Done():
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(override.StatusCode)
		if override.Body != "" {
			_, _ = w.Write([]byte(override.Body))
		}
		return
	}

	if items == nil {
		items = []map[string]any{}
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"page_count": pageCount,
		"page_size":  len(items),
		"data":       items,
	})
}
