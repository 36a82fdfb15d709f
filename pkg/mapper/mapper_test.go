package mapper

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/Sternrassler/tenders-api/pkg/model"
	"github.com/Sternrassler/tenders-api/pkg/upstream"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func strPtr(s string) *string { return &s }

func text(s string) upstream.Text { return upstream.NewText(s) }

func TestMap_ValidItem(t *testing.T) {
	m := New(zerolog.Nop())
	items := []upstream.Item{{
		ID:          text("42"),
		Date:        text("2024-01-15"),
		Title:       strPtr("Road repair"),
		Description: strPtr("Resurfacing"),
		AmountEur:   text("1000.50"),
		Suppliers: []upstream.Supplier{
			{ID: 1, Name: strPtr("ACME")},
			{ID: 2, Name: nil},
		},
	}}

	got := m.Map(items)
	if len(got) != 1 {
		t.Fatalf("expected 1 tender, got %d", len(got))
	}
	tender := got[0]

	if tender.ID != 42 {
		t.Errorf("ID = %d, want 42", tender.ID)
	}
	if !tender.Date.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Date = %v", tender.Date)
	}
	if tender.Title != "Road repair" || tender.Description != "Resurfacing" {
		t.Errorf("unexpected text fields: %q / %q", tender.Title, tender.Description)
	}
	if !tender.AmountEur.Equal(decimal.RequireFromString("1000.50")) {
		t.Errorf("AmountEur = %s, want 1000.50", tender.AmountEur)
	}
	want := []model.Supplier{{ID: 1, Name: "ACME"}, {ID: 2, Name: ""}}
	if len(tender.Suppliers) != len(want) {
		t.Fatalf("suppliers = %+v", tender.Suppliers)
	}
	for i := range want {
		if tender.Suppliers[i] != want[i] {
			t.Errorf("supplier[%d] = %+v, want %+v", i, tender.Suppliers[i], want[i])
		}
	}
}

func TestMap_PreservesOrderAndLength(t *testing.T) {
	m := New(zerolog.Nop())
	items := []upstream.Item{{ID: text("3")}, {ID: text("bad")}, {ID: text("1")}}

	got := m.Map(items)
	if len(got) != 3 {
		t.Fatalf("expected 3 tenders, got %d", len(got))
	}
	for i, want := range []int{3, 0, 1} {
		if got[i].ID != want {
			t.Errorf("tender[%d].ID = %d, want %d", i, got[i].ID, want)
		}
	}

	if empty := m.Map(nil); len(empty) != 0 || empty == nil {
		t.Errorf("Map(nil) = %#v, want empty non-nil slice", empty)
	}
}

func TestMap_InvalidIDLogsOnce(t *testing.T) {
	var buf bytes.Buffer
	m := New(zerolog.New(&buf))

	got := m.Map([]upstream.Item{{ID: text("abc"), AmountEur: text("100"), Date: text("2024-01-01")}})
	if got[0].ID != 0 {
		t.Errorf("ID = %d, want 0", got[0].ID)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected exactly one log line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["level"] != "warn" {
		t.Errorf("level = %v, want warn", entry["level"])
	}
	if entry["message"] != "invalid tender id" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry["raw_id"] != "abc" {
		t.Errorf("raw_id = %v, want abc", entry["raw_id"])
	}
}

func TestMap_ValidIDDoesNotLog(t *testing.T) {
	var buf bytes.Buffer
	m := New(zerolog.New(&buf))
	m.Map([]upstream.Item{{ID: text(" 7 ")}, {ID: text("-2")}})
	if buf.Len() != 0 {
		t.Errorf("expected no logs, got %q", buf.String())
	}
}

func TestMap_NilFieldsDefault(t *testing.T) {
	m := New(zerolog.Nop())
	got := m.Map([]upstream.Item{{ID: text("1")}})[0]

	if got.Title != "" || got.Description != "" {
		t.Errorf("expected empty strings, got %q / %q", got.Title, got.Description)
	}
	if got.Suppliers == nil || len(got.Suppliers) != 0 {
		t.Errorf("Suppliers = %#v, want empty non-nil slice", got.Suppliers)
	}
	if !got.AmountEur.IsZero() {
		t.Errorf("AmountEur = %s, want 0", got.AmountEur)
	}
	if !got.Date.Equal(model.MinDate) {
		t.Errorf("Date = %v, want MinDate", got.Date)
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		name   string
		input  upstream.Text
		want   int
		wantOK bool
	}{
		{"plain", text("123"), 123, true},
		{"whitespace", text("  5 "), 5, true},
		{"negative", text("-4"), -4, true},
		{"empty", text(""), 0, false},
		{"letters", text("12a"), 0, false},
		{"decimal", text("1.5"), 0, false},
		{"absent", upstream.Text{}, 0, false},
		{"overflow", text("99999999999999999999"), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseID(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseID(%+v) = (%d, %v), want (%d, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input upstream.Text
		want  string
	}{
		{text("1234.56"), "1234.56"},
		{text("100"), "100"},
		{text(" 42.5 "), "42.5"},
		{text("1,234,567.89"), "1234567.89"},
		{text("+7"), "7"},
		{text("-3.25"), "-3.25"},
		{text("1e3"), "1000"},
		{text("invalid"), "0"},
		{text("12,5x"), "0"},
		{text(""), "0"},
		{upstream.Text{}, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.input.Value, func(t *testing.T) {
			got := ParseAmount(tt.input)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.input.Value, got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input upstream.Text
		want  time.Time
	}{
		{text("2024-01-15"), time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{text("2024-01-15T10:30:00"), time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{text("2024-01-15 10:30:00"), time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{text("2024-01-15T10:30:00Z"), time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{text("2024/01/15"), time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{text("01/15/2024"), time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{text("invalid-date"), model.MinDate},
		{text(""), model.MinDate},
		{upstream.Text{}, model.MinDate},
	}

	for _, tt := range tests {
		t.Run(tt.input.Value, func(t *testing.T) {
			got := ParseDate(tt.input)
			if !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input.Value, got, tt.want)
			}
		})
	}
}
