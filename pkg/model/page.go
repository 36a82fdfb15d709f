package model

import "encoding/json"

// Page is one page of a filtered, sorted collection.
//
// Only Data, PageNumber, PageSize and TotalCount are stored. The remaining
// pagination fields are derived from them and included when encoding to JSON.
type Page[T any] struct {
	Data       []T
	PageNumber int
	PageSize   int
	TotalCount int
}

// TotalPages returns ceil(TotalCount / PageSize), or 0 when PageSize is not positive.
func (p Page[T]) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	pages := p.TotalCount / p.PageSize
	if p.TotalCount%p.PageSize != 0 {
		pages++
	}
	return pages
}

// HasPreviousPage reports whether a page precedes this one.
func (p Page[T]) HasPreviousPage() bool {
	return p.PageNumber > 1
}

// HasNextPage reports whether a page follows this one.
func (p Page[T]) HasNextPage() bool {
	return p.PageNumber < p.TotalPages()
}

type pageJSON[T any] struct {
	Data            []T  `json:"data"`
	PageNumber      int  `json:"pageNumber"`
	PageSize        int  `json:"pageSize"`
	TotalCount      int  `json:"totalCount"`
	TotalPages      int  `json:"totalPages"`
	HasPreviousPage bool `json:"hasPreviousPage"`
	HasNextPage     bool `json:"hasNextPage"`
}

// MarshalJSON encodes the page with its derived fields. Data is always an array.
func (p Page[T]) MarshalJSON() ([]byte, error) {
	data := p.Data
	if data == nil {
		data = []T{}
	}
	return json.Marshal(pageJSON[T]{
		Data:            data,
		PageNumber:      p.PageNumber,
		PageSize:        p.PageSize,
		TotalCount:      p.TotalCount,
		TotalPages:      p.TotalPages(),
		HasPreviousPage: p.HasPreviousPage(),
		HasNextPage:     p.HasNextPage(),
	})
}

// UnmarshalJSON decodes the stored fields and ignores the derived ones.
func (p *Page[T]) UnmarshalJSON(b []byte) error {
	var aux pageJSON[T]
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	p.Data = aux.Data
	p.PageNumber = aux.PageNumber
	p.PageSize = aux.PageSize
	p.TotalCount = aux.TotalCount
	return nil
}
