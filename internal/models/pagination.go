package models

// Listings default to their largest page.
const (
	DefaultPageSize = 200
	MaxPageSize     = 200
)

// Pagination describes the page returned by a list endpoint.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// NewPagination clamps the requested page into range.
func NewPagination(page, size int) Pagination {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Pagination{Page: page, PageSize: size}
}

// Offset is the number of rows preceding the page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}
