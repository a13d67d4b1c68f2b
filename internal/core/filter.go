package core

import (
	"net/url"
	"strings"
)

// Filter holds the four independent optional transaction filters. Empty
// fields are omitted from the query; field order is stable.
type Filter struct {
	Type      string
	Category  string
	StartDate string
	EndDate   string
}

// IsZero reports whether no filter is set.
func (f Filter) IsZero() bool {
	return f.Type == "" && f.Category == "" && f.StartDate == "" && f.EndDate == ""
}

// Query encodes the non-empty filters as a URL query string in the fixed
// order type, category, startDate, endDate. Returns "" when nothing is set.
func (f Filter) Query() string {
	var parts []string
	add := func(key, val string) {
		val = strings.TrimSpace(val)
		if val != "" {
			parts = append(parts, key+"="+url.QueryEscape(val))
		}
	}
	add("type", f.Type)
	add("category", f.Category)
	add("startDate", f.StartDate)
	add("endDate", f.EndDate)
	return strings.Join(parts, "&")
}
