// Package metrics provides the Prometheus registry and exposition handler for
// the tenders API. All metrics are defined in their respective packages
// (upstream, pagination, cache, refresher, api) to maintain modularity and
// avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the service.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Handler returns the /metrics exposition handler for the default gatherer.
func Handler() http.Handler {
	return promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Upstream Metrics (pkg/upstream):
//   - tenders_upstream_requests_total{status} (Counter): HTTP attempts by status
//   - tenders_upstream_request_duration_seconds (Histogram): Page fetch duration, retries included
//   - tenders_upstream_errors_total{class} (Counter): Failed page fetches by class
//   - tenders_upstream_retries_total (Counter): Retry attempts
//
// Fetch Metrics (pkg/pagination):
//   - tenders_upstream_pages_total{outcome} (Counter): Pages by outcome (success, failure, skipped)
//   - tenders_fetch_duration_seconds (Histogram): Full batch fetch duration
//
// Cache Metrics (pkg/cache):
//   - tenders_cache_hits_total{backend} (Counter): Cache hits by backend
//   - tenders_cache_misses_total{backend} (Counter): Cache misses by backend
//   - tenders_cache_sets_total{backend} (Counter): Snapshot writes by backend
//   - tenders_cache_errors_total{backend, operation} (Counter): Cache operation errors
//
// Refresh Metrics (pkg/refresher):
//   - tenders_refresh_cycles_total{outcome} (Counter): Cycles by outcome (success, failure, cancelled)
//   - tenders_refresh_duration_seconds (Histogram): Cycle duration
//   - tenders_snapshot_tenders (Gauge): Tenders in the last published snapshot
//   - tenders_snapshot_last_success_timestamp_seconds (Gauge): Unix time of the last publish
//
// API Metrics (internal/api):
//   - tenders_http_requests_total{route, code} (Counter): API requests by route and status
//   - tenders_http_request_duration_seconds{route} (Histogram): API request duration
//
// Example Prometheus Queries:
//
//   # Snapshot age
//   time() - tenders_snapshot_last_success_timestamp_seconds
//
//   # Page failure ratio per cycle window
//   sum(rate(tenders_upstream_pages_total{outcome="failure"}[1h])) /
//   sum(rate(tenders_upstream_pages_total[1h]))
//
//   # Failed refresh cycles
//   increase(tenders_refresh_cycles_total{outcome="failure"}[2h])
//
//   # P95 API latency
//   histogram_quantile(0.95, rate(tenders_http_request_duration_seconds_bucket[5m]))
