package query

import (
	"encoding/json"
)

// PagedList is one page of a larger result set
type PagedList[T any] struct {
	Items       []T
	TotalCount  int
	PageSize    int
	CurrentPage int
	TotalPages  int
}

// Metadata describes where a page sits within the whole result
type Metadata struct {
	TotalCount  int  `json:"total_count"`
	PageSize    int  `json:"page_size"`
	CurrentPage int  `json:"current_page"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// NewPagedList wraps items that were already sliced from count results
func NewPagedList[T any](items []T, count, pageNumber, pageSize int) *PagedList[T] {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (count + pageSize - 1) / pageSize
	}
	if items == nil {
		items = []T{}
	}
	return &PagedList[T]{
		Items:       items,
		TotalCount:  count,
		PageSize:    pageSize,
		CurrentPage: pageNumber,
		TotalPages:  totalPages,
	}
}

// ToPagedList slices page pageNumber out of source. A page past the end
// is empty.
func ToPagedList[T any](source []T, pageNumber, pageSize int) *PagedList[T] {
	count := len(source)
	var items []T
	// Compare page indexes before multiplying so huge page numbers can't wrap
	if pageSize > 0 && pageNumber-1 < (count+pageSize-1)/pageSize {
		skip := 0
		if pageNumber > 1 {
			skip = (pageNumber - 1) * pageSize
		}
		end := skip + pageSize
		if end > count {
			end = count
		}
		items = append([]T(nil), source[skip:end]...)
	}
	return NewPagedList(items, count, pageNumber, pageSize)
}

func (p *PagedList[T]) HasPrevious() bool {
	return p.CurrentPage > 1
}

func (p *PagedList[T]) HasNext() bool {
	return p.CurrentPage < p.TotalPages
}

// Metadata returns the page position without the items
func (p *PagedList[T]) Metadata() Metadata {
	return Metadata{
		TotalCount:  p.TotalCount,
		PageSize:    p.PageSize,
		CurrentPage: p.CurrentPage,
		TotalPages:  p.TotalPages,
		HasNext:     p.HasNext(),
		HasPrevious: p.HasPrevious(),
	}
}

// HeaderValue renders the metadata for the X-Pagination response header
func (p *PagedList[T]) HeaderValue() string {
	data, _ := json.Marshal(p.Metadata())
	return string(data)
}
