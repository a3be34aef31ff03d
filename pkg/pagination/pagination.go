package pagination

import (
	"net/http"
	"strconv"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 24
	MaxPageSize     = 100
)

// Params holds pagination parameters parsed from a request.
type Params struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// FromRequest parses page and page_size query parameters, clamping values to
// safe bounds. Missing or malformed values fall back to defaults.
func FromRequest(r *http.Request) Params {
	p := Params{Page: DefaultPage, PageSize: DefaultPageSize}

	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.Page = n
		}
	}
	if v := r.URL.Query().Get("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.PageSize = n
		}
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the slice offset for the current page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Result wraps a page of items with paging metadata.
type Result[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// Paginate slices items according to params and fills in metadata. It never
// returns a nil Items slice.
func Paginate[T any](items []T, p Params) Result[T] {
	total := len(items)
	totalPages := (total + p.PageSize - 1) / p.PageSize

	start := p.Offset()
	if start > total {
		start = total
	}
	end := start + p.PageSize
	if end > total {
		end = total
	}

	page := items[start:end]
	if page == nil {
		page = []T{}
	}

	return Result[T]{
		Items:      page,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalItems: int64(total),
		TotalPages: totalPages,
	}
}
