// Package mapper converts upstream tender records into domain tenders.
//
// Mapping never fails: malformed fields fall back to defaults so that one bad
// record cannot drop a page.
package mapper

import (
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/tenders-api/pkg/logging"
	"github.com/Sternrassler/tenders-api/pkg/model"
	"github.com/Sternrassler/tenders-api/pkg/upstream"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// dateLayouts are tried in order when parsing upstream dates.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

// Mapper converts upstream items to tenders.
type Mapper struct {
	logger zerolog.Logger
}

// New creates a mapper that reports malformed ids on logger.
func New(logger zerolog.Logger) *Mapper {
	return &Mapper{logger: logging.WithComponent(logger, logging.ComponentMapper)}
}

// Map converts items one to one, preserving order.
func (m *Mapper) Map(items []upstream.Item) []model.Tender {
	tenders := make([]model.Tender, 0, len(items))
	for _, item := range items {
		tenders = append(tenders, m.mapItem(item))
	}
	return tenders
}

func (m *Mapper) mapItem(item upstream.Item) model.Tender {
	id, ok := ParseID(item.ID)
	if !ok {
		m.logger.Warn().
			Str("raw_id", item.ID.Value).
			Bool("present", item.ID.Valid).
			Msg("invalid tender id")
	}

	suppliers := make([]model.Supplier, 0, len(item.Suppliers))
	for _, s := range item.Suppliers {
		suppliers = append(suppliers, model.Supplier{ID: s.ID, Name: deref(s.Name)})
	}

	return model.Tender{
		ID:          id,
		Date:        ParseDate(item.Date),
		Title:       deref(item.Title),
		Description: deref(item.Description),
		AmountEur:   ParseAmount(item.AmountEur),
		Suppliers:   suppliers,
	}
}

// ParseID parses a tender id. It returns 0 and false when t is absent or not
// an integer.
func ParseID(t upstream.Text) (int, bool) {
	if !t.Valid {
		return 0, false
	}
	id, err := strconv.Atoi(strings.TrimSpace(t.Value))
	if err != nil {
		return 0, false
	}
	return id, true
}

// ParseAmount parses a locale-invariant decimal. Comma thousands separators,
// a leading plus sign and exponents are accepted. Anything else yields zero.
func ParseAmount(t upstream.Text) decimal.Decimal {
	if !t.Valid {
		return decimal.Zero
	}
	s := strings.TrimSpace(t.Value)
	s = strings.TrimPrefix(s, "+")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseDate parses an upstream date, returning model.MinDate when no known
// layout matches.
func ParseDate(t upstream.Text) time.Time {
	if !t.Valid {
		return model.MinDate
	}
	s := strings.TrimSpace(t.Value)
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d
		}
	}
	return model.MinDate
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
