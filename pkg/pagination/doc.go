// Package pagination provides parallel batch fetching for paginated upstream endpoints.
//
// tenders.guru exposes its catalogue as numbered pages and the service fetches a
// fixed number of them on every refresh. This package implements a worker pool
// that fetches those pages with bounded parallelism and isolates failures per page.
//
// Example usage:
//
//	config := pagination.DefaultConfig()
//	fetcher := pagination.NewBatchFetcher[upstream.Item](client, config)
//	items, report := fetcher.FetchAll(ctx, 100)
//	if report.AllFailed() {
//		// nothing to publish
//	}
//
// The batch fetcher:
//   - Queues pages 1..N
//   - Spawns a worker pool (default 4 workers, never more than N)
//   - Gives every page its own timeout
//   - Treats a failed or panicking page as empty and records it in the Report
//   - Returns items in page order regardless of completion order
package pagination
