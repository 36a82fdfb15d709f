// Package model holds the domain types served by the tenders API.
package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// MinDate is the date assigned to tenders whose upstream date cannot be parsed.
// It is the zero time.Time, the earliest instant the type can represent.
var MinDate = time.Time{}

// Supplier is a company attached to a tender.
type Supplier struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Tender is a single public procurement record.
//
// Tenders are built by the mapper and published as part of a cache snapshot.
// A published tender must not be modified; readers share it without copying.
type Tender struct {
	ID          int             `json:"id"`
	Date        time.Time       `json:"date"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	AmountEur   decimal.Decimal `json:"amountEur"`
	Suppliers   []Supplier      `json:"suppliers"`
}

// HasSupplier reports whether any supplier of the tender has the given id.
func (t Tender) HasSupplier(id int) bool {
	for _, s := range t.Suppliers {
		if s.ID == id {
			return true
		}
	}
	return false
}

// MarshalJSON encodes AmountEur as a JSON number instead of decimal's default quoted string.
func (t Tender) MarshalJSON() ([]byte, error) {
	type tender Tender
	return json.Marshal(struct {
		tender
		AmountEur json.Number `json:"amountEur"`
	}{
		tender:    tender(t),
		AmountEur: json.Number(t.AmountEur.String()),
	})
}
