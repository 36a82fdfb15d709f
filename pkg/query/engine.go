package query

import (
	"slices"

	"github.com/Sternrassler/tenders-api/pkg/model"
)

// Run applies spec to snapshot: price filter, date filter, supplier filter,
// sort, then pagination. snapshot is never modified.
func Run(snapshot []model.Tender, spec Spec) model.Page[model.Tender] {
	filtered := make([]model.Tender, 0, len(snapshot))
	for _, t := range snapshot {
		if matches(t, spec) {
			filtered = append(filtered, t)
		}
	}

	sortTenders(filtered, spec)

	page := model.Page[model.Tender]{
		Data:       []model.Tender{},
		PageNumber: spec.PageNumber,
		PageSize:   spec.PageSize,
		TotalCount: len(filtered),
	}
	if spec.PageSize <= 0 {
		return page
	}

	// Compare page indexes before multiplying; large page numbers overflow skip.
	skip := 0
	if spec.PageNumber > 1 {
		if spec.PageNumber-1 >= page.TotalPages() {
			return page
		}
		skip = (spec.PageNumber - 1) * spec.PageSize
	}
	if skip >= len(filtered) {
		return page
	}
	end := skip + min(spec.PageSize, len(filtered)-skip)
	page.Data = filtered[skip:end:end]

	return page
}

func matches(t model.Tender, spec Spec) bool {
	if spec.MinPrice != nil && t.AmountEur.LessThan(*spec.MinPrice) {
		return false
	}
	if spec.MaxPrice != nil && t.AmountEur.GreaterThan(*spec.MaxPrice) {
		return false
	}
	if spec.DateFrom != nil && t.Date.Before(*spec.DateFrom) {
		return false
	}
	if spec.DateTo != nil && t.Date.After(*spec.DateTo) {
		return false
	}
	if spec.SupplierID != nil && !t.HasSupplier(*spec.SupplierID) {
		return false
	}
	return true
}

// sortTenders sorts in place with a stable sort so ties keep snapshot order.
func sortTenders(tenders []model.Tender, spec Spec) {
	var cmp func(a, b model.Tender) int
	switch spec.sortKey() {
	case SortByPrice:
		cmp = func(a, b model.Tender) int { return a.AmountEur.Cmp(b.AmountEur) }
	case SortByDate:
		cmp = func(a, b model.Tender) int { return a.Date.Compare(b.Date) }
	default:
		return
	}

	if !spec.ascending() {
		asc := cmp
		cmp = func(a, b model.Tender) int { return asc(b, a) }
	}
	slices.SortStableFunc(tenders, cmp)
}
