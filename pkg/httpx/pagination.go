package httpx

import (
	"math"
	"net/http"
	"strconv"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest is a zero-based page request parsed from ?page=&size=.
type PageRequest struct {
	Page int
	Size int
}

// Limit is the SQL LIMIT for the request.
func (p PageRequest) Limit() int { return p.Size }

// Offset is the SQL OFFSET for the request. It never exceeds math.MaxInt32,
// the width of the OFFSET parameter in every query.
func (p PageRequest) Offset() int {
	if p.Size > 0 && p.Page > math.MaxInt32/p.Size {
		return math.MaxInt32 / p.Size * p.Size
	}
	return p.Page * p.Size
}

// ParsePage reads page and size from the query string. Invalid or missing
// values fall back to page 0 and DefaultPageSize; size is capped at MaxPageSize
// and page so that the offset fits an int32.
func ParsePage(r *http.Request) PageRequest {
	q := r.URL.Query()
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 0 {
		page = 0
	}
	size, err := strconv.Atoi(q.Get("size"))
	if err != nil || size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if maxPage := math.MaxInt32 / size; page > maxPage {
		page = maxPage
	}
	return PageRequest{Page: page, Size: size}
}

// Page is the paginated list envelope.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	Size       int `json:"size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPage builds a Page, never returning a nil Items slice.
func NewPage[T any](items []T, req PageRequest, total int) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if req.Size > 0 {
		pages = (total + req.Size - 1) / req.Size
	}
	return Page[T]{
		Items:      items,
		Page:       req.Page,
		Size:       req.Size,
		Total:      total,
		TotalPages: pages,
	}
}
