package model

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestPage_Derived(t *testing.T) {
	tests := []struct {
		name         string
		page         Page[int]
		wantPages    int
		wantPrevious bool
		wantNext     bool
	}{
		{
			name:      "empty collection",
			page:      Page[int]{PageNumber: 1, PageSize: 10, TotalCount: 0},
			wantPages: 0,
		},
		{
			name:      "exact multiple",
			page:      Page[int]{PageNumber: 1, PageSize: 10, TotalCount: 20},
			wantPages: 2,
			wantNext:  true,
		},
		{
			name:         "partial last page",
			page:         Page[int]{PageNumber: 3, PageSize: 10, TotalCount: 21},
			wantPages:    3,
			wantPrevious: true,
		},
		{
			name:         "beyond last page",
			page:         Page[int]{PageNumber: 7, PageSize: 10, TotalCount: 21},
			wantPages:    3,
			wantPrevious: true,
		},
		{
			name:      "page size near max int",
			page:      Page[int]{PageNumber: 1, PageSize: math.MaxInt, TotalCount: 5},
			wantPages: 1,
		},
		{
			name:      "non-positive page size",
			page:      Page[int]{PageNumber: 1, PageSize: 0, TotalCount: 5},
			wantPages: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.page.TotalPages(); got != tt.wantPages {
				t.Errorf("TotalPages() = %d, want %d", got, tt.wantPages)
			}
			if got := tt.page.HasPreviousPage(); got != tt.wantPrevious {
				t.Errorf("HasPreviousPage() = %v, want %v", got, tt.wantPrevious)
			}
			if got := tt.page.HasNextPage(); got != tt.wantNext {
				t.Errorf("HasNextPage() = %v, want %v", got, tt.wantNext)
			}
		})
	}
}

func TestPage_MarshalJSON_EmptyDataIsArray(t *testing.T) {
	b, err := json.Marshal(Page[Tender]{PageNumber: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	out := string(b)
	if !strings.Contains(out, `"data":[]`) {
		t.Errorf("expected empty data array, got %s", out)
	}
	if !strings.Contains(out, `"totalPages":0`) {
		t.Errorf("expected totalPages field, got %s", out)
	}
}

func TestPage_RoundTrip(t *testing.T) {
	in := Page[int]{Data: []int{4, 5}, PageNumber: 2, PageSize: 2, TotalCount: 5}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var out Page[int]
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if out.TotalCount != 5 || out.PageNumber != 2 || len(out.Data) != 2 {
		t.Errorf("unexpected page after round trip: %+v", out)
	}
	if !out.HasNextPage() || !out.HasPreviousPage() {
		t.Errorf("derived fields wrong after round trip: %+v", out)
	}
}

func TestTender_HasSupplier(t *testing.T) {
	tender := Tender{Suppliers: []Supplier{{ID: 1, Name: "A"}, {ID: 7, Name: "B"}}}
	if !tender.HasSupplier(7) {
		t.Error("expected supplier 7")
	}
	if tender.HasSupplier(3) {
		t.Error("did not expect supplier 3")
	}
	if (Tender{}).HasSupplier(1) {
		t.Error("tender without suppliers should not match")
	}
}

func TestTender_MarshalJSON(t *testing.T) {
	tender := Tender{
		ID:        3,
		AmountEur: decimal.RequireFromString("1000.5"),
		Suppliers: []Supplier{{ID: 1, Name: "ACME"}},
	}
	b, err := json.Marshal(tender)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	out := string(b)
	for _, want := range []string{`"amountEur":1000.5`, `"date":"0001-01-01T00:00:00Z"`, `"suppliers":[{"id":1,"name":"ACME"}]`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in %s", want, out)
		}
	}

	var back Tender
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !back.AmountEur.Equal(tender.AmountEur) {
		t.Errorf("AmountEur = %s after round trip", back.AmountEur)
	}
}

func TestTender_MarshalJSON_LeavesDecimalDefault(t *testing.T) {
	b, err := json.Marshal(decimal.RequireFromString("12.5"))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(b) != `"12.5"` {
		t.Errorf("plain decimal encoded as %s, want quoted string", b)
	}
	if decimal.MarshalJSONWithoutQuotes {
		t.Error("package must not change decimal.MarshalJSONWithoutQuotes")
	}

	page := Page[Tender]{Data: []Tender{{ID: 1, AmountEur: decimal.RequireFromString("12.5")}}, PageNumber: 1, PageSize: 1, TotalCount: 1}
	b, err = json.Marshal(page)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(b), `"amountEur":12.5`) {
		t.Errorf("expected numeric amount in %s", b)
	}
}
