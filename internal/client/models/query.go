package models

import (
	"net/url"
	"strconv"
	"strings"
)

// CategoryAll is the "no category filter" sentinel used by the UI.
const CategoryAll = "All"

// InventoryQuery is the server query for one inventory page. Empty Search
// and Category mean "no filter" and are left out of the request.
type InventoryQuery struct {
	Page     int
	Limit    int
	Search   string
	Category string
}

// NewInventoryQuery normalises raw UI inputs: search is trimmed, the
// CategoryAll sentinel becomes no filter, and page is at least 1.
func NewInventoryQuery(page, limit int, search, category string) InventoryQuery {
	if page < 1 {
		page = 1
	}
	category = strings.TrimSpace(category)
	if category == CategoryAll {
		category = ""
	}
	return InventoryQuery{
		Page:     page,
		Limit:    limit,
		Search:   strings.TrimSpace(search),
		Category: category,
	}
}

// Values renders the query string parameters.
func (q InventoryQuery) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	return v
}

// Key identifies the query for caching and deduplication.
func (q InventoryQuery) Key() string {
	return q.Values().Encode()
}

// Shape identifies the filter combination regardless of page.
func (q InventoryQuery) Shape() string {
	v := url.Values{}
	v.Set("search", q.Search)
	v.Set("category", q.Category)
	return v.Encode()
}
