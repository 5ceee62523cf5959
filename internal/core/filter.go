package core

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Filter selects the transactions of one calendar month (any year),
// optionally narrowed by a free-text search and to sold records only.
type Filter struct {
	Month    time.Month
	Search   string
	SoldOnly bool
}

// NewFilter validates the month parameter and normalises the search text.
func NewFilter(month, search string) (Filter, error) {
	mo, err := ParseMonth(month)
	if err != nil {
		return Filter{}, err
	}
	return Filter{Month: mo, Search: strings.TrimSpace(search)}, nil
}

// Sold returns a copy of f restricted to sold records.
func (f Filter) Sold() Filter {
	f.SoldOnly = true
	return f
}

// HasSearch reports whether the filter carries a search term.
func (f Filter) HasSearch() bool {
	return f.Search != ""
}

// Matches is the in-memory form of the filter. Store implementations that
// translate the filter to a query must select exactly the same records.
func (f Filter) Matches(t Transaction) bool {
	if t.SaleMonth() != f.Month {
		return false
	}
	if f.SoldOnly && !t.Sold {
		return false
	}
	if !f.HasSearch() {
		return true
	}
	fold := cases.Fold()
	needle := fold.String(f.Search)
	return strings.Contains(fold.String(t.Title), needle) ||
		strings.Contains(fold.String(t.Description), needle) ||
		strings.Contains(PriceString(t.Price), f.Search)
}

// PriceString renders a price the way the search filter compares it:
// shortest decimal form, no exponent, no trailing zeros.
func PriceString(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
