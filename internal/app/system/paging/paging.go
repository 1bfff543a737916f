// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// Defaults for page/limit query parameters.
const (
	DefaultPage  = 1
	DefaultLimit = 4
)

// ParsePageLimit reads the 1-based "page" and "limit" query parameters.
// Missing, malformed or non-positive values fall back to the defaults.
func ParsePageLimit(r *http.Request) (page, limit int) {
	return positive(query.Get(r, "page"), DefaultPage), positive(query.Get(r, "limit"), DefaultLimit)
}

func positive(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// Paginate returns the page-th slice of size limit from items, which must
// already be sorted. Pages past the end are empty, never nil.
func Paginate[T any](items []T, page, limit int) []T {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	pages := len(items) / limit
	if len(items)%limit != 0 {
		pages++
	}
	if page > pages {
		return []T{}
	}
	start := (page - 1) * limit
	return items[start : start+min(limit, len(items)-start)]
}
