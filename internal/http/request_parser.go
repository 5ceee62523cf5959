package http

import (
	"net/url"
	"strconv"
	"strings"

	"salesdash/internal/services"
)

// DefaultDashboardMonth is shown when the dashboard is opened without a month.
const DefaultDashboardMonth = "March"

// parseIntDefault parses v as an integer, returning def when v is empty or
// not a number.
func parseIntDefault(v string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

// ParseListQuery extracts the listing parameters. Unparseable page and
// perPage values fall back to the defaults; month is passed through for the
// service to validate.
func ParseListQuery(query url.Values) services.ListQuery {
	return services.ListQuery{
		Month:   query.Get("month"),
		Search:  query.Get("search"),
		Page:    parseIntDefault(query.Get("page"), 1),
		PerPage: parseIntDefault(query.Get("perPage"), 0),
	}
}

// dashboardQuery is ParseListQuery with the dashboard's default month.
func dashboardQuery(query url.Values) services.ListQuery {
	q := ParseListQuery(query)
	if strings.TrimSpace(q.Month) == "" {
		q.Month = DefaultDashboardMonth
	}
	return q
}

// pageURL links to another page of the same dashboard view.
func pageURL(path string, q services.ListQuery, page int) string {
	v := url.Values{}
	v.Set("month", q.Month)
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.PerPage > 0 {
		v.Set("perPage", strconv.Itoa(q.PerPage))
	}
	v.Set("page", strconv.Itoa(page))
	return path + "?" + v.Encode()
}
