package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Text is a loosely typed scalar from the upstream payload.
//
// tenders.guru sends identifiers, dates and amounts as strings, but some
// records carry bare numbers or null. Text accepts all three and keeps the
// raw textual form for the mapper to parse.
type Text struct {
	Value string
	Valid bool
}

// NewText returns a present Text holding s.
func NewText(s string) Text {
	return Text{Value: s, Valid: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*t = Text{}
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = NewText(s)
		return nil
	case b[0] == '-' || (b[0] >= '0' && b[0] <= '9'):
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*t = NewText(n.String())
		return nil
	default:
		return fmt.Errorf("upstream: cannot decode %s into text", string(b))
	}
}

// MarshalJSON implements json.Marshaler.
func (t Text) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.Value)
}

// Supplier is a supplier as sent by tenders.guru.
type Supplier struct {
	ID   int     `json:"id"`
	Name *string `json:"name"`
}

// Item is a single tender record as sent by tenders.guru.
type Item struct {
	ID          Text       `json:"id"`
	Date        Text       `json:"date"`
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	AmountEur   Text       `json:"amount_eur"`
	Suppliers   []Supplier `json:"suppliers"`
}

// Response is the page envelope returned by GET /tenders.
type Response struct {
	Data []Item `json:"data"`
}
