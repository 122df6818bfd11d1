package records

import (
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order. Day-first layouts come first because the
// source records dates as dd-mm-yyyy; ISO and month-name forms are accepted
// as a courtesy for hand-edited rows.
var dateLayouts = []string{
	"2-1-2006",
	"2/1/2006",
	"2-1-2006 15:04:05",
	"2/1/2006 15:04:05",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2-Jan-2006",
	"2 Jan 2006",
}

// ParseDate parses a cell permissively into a calendar day (UTC midnight).
// Returns ok=false for cells that cannot be parsed; such rows stay in the
// dataset but are excluded from every date-bounded operation.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), true
		}
	}
	return time.Time{}, false
}

// Day truncates a time to its calendar day at UTC midnight. All date
// comparisons in the engine happen at this granularity.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Number coerces a cell to a float64. Returns ok=false for empty or
// malformed cells.
func Number(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// NumberOrZero coerces a cell to a float64, contributing exactly 0 when
// coercion fails. Summation never aborts on malformed cells.
func NumberOrZero(s string) float64 {
	f, _ := Number(s)
	return f
}
