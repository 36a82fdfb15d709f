// Package query filters, sorts and paginates the tender snapshot.
package query

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Sort keys accepted in Spec.SortBy.
const (
	SortByPrice = "price"
	SortByDate  = "date"
)

// Sort orders accepted in Spec.SortOrder.
const (
	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)

// Default pagination applied by the HTTP layer when parameters are omitted.
const (
	DefaultPageNumber = 1
	DefaultPageSize   = 10
	MaxPageSize       = 100
	MaxPageNumber     = 1_000_000
)

// Spec describes one list query. Nil filters are not applied.
type Spec struct {
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	DateFrom   *time.Time
	DateTo     *time.Time
	SupplierID *int
	SortBy     string
	SortOrder  string
	PageNumber int
	PageSize   int
}

// sortKey returns the normalized sort key, or "" when no sort applies.
func (s Spec) sortKey() string {
	switch key := strings.ToLower(strings.TrimSpace(s.SortBy)); key {
	case SortByPrice, SortByDate:
		return key
	default:
		return ""
	}
}

// ascending reports whether SortOrder selects ascending order.
// Anything other than "asc" sorts descending.
func (s Spec) ascending() bool {
	return strings.EqualFold(strings.TrimSpace(s.SortOrder), SortOrderAsc)
}
