// Package aggregate implements pure numeric reductions over normalized
// datasets: whole-table sums, time-windowed sums and grouped sums. Every
// operation is total; malformed cells contribute zero and never abort a
// computation.
package aggregate

import (
	"time"

	"github.com/dairyops/dairytrack-go/internal/records"
)

type windowKind int

const (
	windowLifetime windowKind = iota
	windowMonth
	windowDay
)

// Window is a time scope for aggregation: lifetime (everything on or after
// a start date), a calendar month, or a single calendar day.
type Window struct {
	kind  windowKind
	start time.Time
	year  int
	month time.Month
	day   time.Time
	floor time.Time
}

// Lifetime returns a window covering every day on or after start.
func Lifetime(start time.Time) Window {
	return Window{kind: windowLifetime, start: records.Day(start)}
}

// Month returns a window covering one calendar month.
func Month(year int, month time.Month) Window {
	return Window{kind: windowMonth, year: year, month: month}
}

// SingleDay returns a window covering exactly one calendar day.
func SingleDay(day time.Time) Window {
	return Window{kind: windowDay, day: records.Day(day)}
}

// From returns a copy of the window additionally bounded below by start.
// Keeps a calendar-month window from reaching days before the validation
// start when the window opens mid-month.
func (w Window) From(start time.Time) Window {
	w.floor = records.Day(start)
	return w
}

// Contains reports whether the calendar day d falls inside the window.
func (w Window) Contains(d time.Time) bool {
	d = records.Day(d)
	if !w.floor.IsZero() && d.Before(w.floor) {
		return false
	}
	switch w.kind {
	case windowLifetime:
		return !d.Before(w.start)
	case windowMonth:
		return d.Year() == w.year && d.Month() == w.month
	case windowDay:
		return d.Equal(w.day)
	}
	return false
}
