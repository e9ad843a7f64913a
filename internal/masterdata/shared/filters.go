package shared

import "strconv"

// ListFilters represents standard list page filters
type ListFilters struct {
	Page    int
	Limit   int
	Search  string
	SortBy  string
	SortDir string
}

const (
	// Default pagination
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 200

	// Sort directions
	SortAsc  = "asc"
	SortDesc = "desc"
)

// FromQuery builds ListFilters from raw query values, applying defaults.
func FromQuery(page, limit, search, sortBy, sortDir string) ListFilters {
	f := ListFilters{
		Search:  search,
		SortBy:  sortBy,
		SortDir: sortDir,
	}
	f.Page, _ = strconv.Atoi(page)
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	f.Limit, _ = strconv.Atoi(limit)
	if f.Limit < 1 || f.Limit > MaxLimit {
		f.Limit = DefaultLimit
	}
	return f
}
