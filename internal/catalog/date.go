package catalog

import (
	"strings"
	"time"
)

// dateLayouts are tried in order when ordering posts by date.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"2006-1-2",
}

// ParseDate parses a header date string. ok is false for empty or
// unrecognized input.
func ParseDate(s string) (t time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Year returns the calendar year of a header date, or 0 when it cannot be
// parsed.
func Year(s string) int {
	if t, ok := ParseDate(s); ok {
		return t.Year()
	}
	return 0
}

// newer reports whether date a sorts before date b in date-descending order.
// Parsed dates compare chronologically and always precede unparsed ones;
// two unparsed dates fall back to lexical comparison.
func newer(a, b string) bool {
	ta, okA := ParseDate(a)
	tb, okB := ParseDate(b)
	switch {
	case okA && okB:
		return ta.After(tb)
	case okA != okB:
		return okA
	default:
		return a > b
	}
}
