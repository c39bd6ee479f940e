package cohort

import (
	"fmt"
	"strings"
)

// SeriesYear is the year the quarterly comparison series covers. It appears
// in both the series keys (Q4_2025) and the filter labels (Q4 2025).
const SeriesYear = 2025

// Filter selects the signup quarter a view is restricted to.
type Filter string

// Filter values accepted by ParseFilter.
const (
	All Filter = "all"
	Q1  Filter = "q1"
	Q2  Filter = "q2"
	Q3  Filter = "q3"
	Q4  Filter = "q4"
)

// Quarters lists the quarter filters in calendar order.
var Quarters = []Filter{Q1, Q2, Q3, Q4}

// Filters lists every filter in the order the dashboard offers them.
var Filters = []Filter{All, Q4, Q3, Q2, Q1}

// monthQuarter maps a three-letter month abbreviation to its quarter.
var monthQuarter = map[string]Filter{
	"Jan": Q1, "Feb": Q1, "Mar": Q1,
	"Apr": Q2, "May": Q2, "Jun": Q2,
	"Jul": Q3, "Aug": Q3, "Sep": Q3,
	"Oct": Q4, "Nov": Q4, "Dec": Q4,
}

// ParseFilter parses a user-supplied filter. It is case-insensitive and
// treats an empty string as All.
func ParseFilter(s string) (Filter, error) {
	f := Filter(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return All, nil
	}
	if f == All || f.IsQuarter() {
		return f, nil
	}
	return "", fmt.Errorf("cohort: unknown filter %q (want all, q1, q2, q3 or q4)", s)
}

// IsQuarter reports whether f selects a single quarter.
func (f Filter) IsQuarter() bool {
	switch f {
	case Q1, Q2, Q3, Q4:
		return true
	default:
		return false
	}
}

// Label returns the display label for f: "All Months" or "Q4 2025".
func (f Filter) Label() string {
	if f == All {
		return "All Months"
	}
	if !f.IsQuarter() {
		return string(f)
	}
	return fmt.Sprintf("%s %d", strings.ToUpper(string(f)), SeriesYear)
}

// SeriesKey returns the comparison-series field for f ("Q4_2025"), or ""
// when f is not a quarter.
func (f Filter) SeriesKey() string {
	if !f.IsQuarter() {
		return ""
	}
	return fmt.Sprintf("%s_%d", strings.ToUpper(string(f)), SeriesYear)
}

// QuarterForKey is the inverse of SeriesKey.
func QuarterForKey(key string) (Filter, bool) {
	for _, q := range Quarters {
		if q.SeriesKey() == key {
			return q, true
		}
	}
	return "", false
}

// ClassifyMonth returns the quarter of a cohort label such as "Oct 2025".
// Only the first whitespace-delimited token is considered and it must be an
// exact three-letter month abbreviation. The year token is ignored, so
// "Oct 2024" and "Oct 2025" both classify as Q4.
func ClassifyMonth(label string) (Filter, bool) {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return "", false
	}
	q, ok := monthQuarter[fields[0]]
	return q, ok
}
