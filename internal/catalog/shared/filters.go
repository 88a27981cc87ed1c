// Package shared carries the list-page plumbing common to every catalog
// package: pagination, keyword search and sort sanitisation.
package shared

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPage = 1
	DefaultSize = 10
	MaxSize     = 100

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// ListFilters represents standard list endpoint query parameters.
type ListFilters struct {
	Page    int
	Size    int
	Keyword string
	Sort    string
	Order   string
}

// ParseListFilters reads pagination and search parameters from a query
// string, clamping out-of-range values to their defaults.
func ParseListFilters(q url.Values) ListFilters {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = DefaultPage
	}
	size, _ := strconv.Atoi(q.Get("size"))
	if size < 1 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	order := strings.ToLower(q.Get("order"))
	if order != OrderAsc && order != OrderDesc {
		order = OrderAsc
	}
	return ListFilters{
		Page:    page,
		Size:    size,
		Keyword: strings.TrimSpace(q.Get("keyword")),
		Sort:    q.Get("sort"),
		Order:   order,
	}
}

// Offset converts page/size to a SQL offset.
func (f ListFilters) Offset() int {
	return (f.Page - 1) * f.Size
}

// OrderClause maps the requested sort column through an allow-list of
// column names. Unknown columns fall back to the given default, so user
// input never reaches the SQL text.
func (f ListFilters) OrderClause(allowed map[string]string, fallback string) string {
	column, ok := allowed[f.Sort]
	if !ok {
		column = fallback
	}
	dir := "ASC"
	if f.Order == OrderDesc {
		dir = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s", column, dir)
}

// Paged is the list endpoint response shape.
type Paged[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Size  int `json:"size"`
}

// NewPaged assembles a page, normalising a nil slice to an empty one so the
// JSON body always carries an array.
func NewPaged[T any](items []T, total int, f ListFilters) Paged[T] {
	if items == nil {
		items = []T{}
	}
	return Paged[T]{Items: items, Total: total, Page: f.Page, Size: f.Size}
}
