package store

import "math"

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// PaginationParams describes one page of a listing.
type PaginationParams struct {
	Page     int
	PageSize int
	Search   string
}

// PaginationResult describes where a page sits in the full result set.
type PaginationResult struct {
	Total       int64
	CurrentPage int
	PageSize    int
	TotalPages  int
	HasPrev     bool
	HasNext     bool
}

// NewPaginationParams normalises page and pageSize: page defaults to 1 and
// pageSize to 10, capped at 50.
func NewPaginationParams(page, pageSize int, search string) PaginationParams {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return PaginationParams{Page: page, PageSize: pageSize, Search: search}
}

func (p PaginationParams) offset() int {
	return (p.Page - 1) * p.PageSize
}

func newPaginationResult(total int64, params PaginationParams) PaginationResult {
	totalPages := int(math.Ceil(float64(total) / float64(params.PageSize)))
	return PaginationResult{
		Total:       total,
		CurrentPage: params.Page,
		PageSize:    params.PageSize,
		TotalPages:  totalPages,
		HasPrev:     params.Page > 1,
		HasNext:     params.Page < totalPages,
	}
}
