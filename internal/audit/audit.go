// Package audit scans the validation window for missing expected records:
// per-entity per-shift production entries and per-channel per-day
// distribution entries. The scan is a pure function of its inputs; the
// reference day is always passed in explicitly so results are
// deterministic and testable.
package audit

import (
	"strings"
	"time"

	"github.com/dairyops/dairytrack-go/internal/keyword"
	"github.com/dairyops/dairytrack-go/internal/records"
)

// Shift is a named sub-period of a day during which production or
// distribution is recorded.
type Shift string

const (
	ShiftMorning Shift = "Morning"
	ShiftEvening Shift = "Evening"
)

// trackedShifts fixes the audit order: Morning before Evening.
var trackedShifts = []Shift{ShiftMorning, ShiftEvening}

// shiftKeywords recognizes a shift from free-text cells. "सुबह" and "शाम"
// are the source-locale tokens for morning and evening.
var shiftKeywords = map[Shift]keyword.Set{
	ShiftMorning: keyword.NewSet("morning", "mor", "am", "सुबह"),
	ShiftEvening: keyword.NewSet("evening", "eve", "pm", "शाम"),
}

// Kind distinguishes the two gap categories.
type Kind string

const (
	KindEntityShift Kind = "entity-shift"
	KindChannelDay  Kind = "channel-day"
)

// Gap describes one missing expected record. Entity is empty for
// channel-day gaps and for the date-only fallback scan. The descriptor is
// self-contained: a remediation collaborator can build an action link from
// it without further state.
type Gap struct {
	Entity string    `json:"entity,omitempty"`
	Date   time.Time `json:"date"`
	Shift  Shift     `json:"shift"`
	Kind   Kind      `json:"kind"`
}

// Channel is one aggregate distribution dataset covering a single shift.
type Channel struct {
	Name  string
	Shift Shift
	Data  *records.Dataset
}

// FindGaps scans [windowStart, today] (inclusive, calendar days) and
// returns all entity-shift gaps grouped by entity in first-encounter
// order, dates ascending, Morning before Evening, followed by all
// channel-day gaps, one channel fully ascending after the other.
func FindGaps(entityLog *records.Dataset, channels []Channel, windowStart, today time.Time) []Gap {
	windowStart = records.Day(windowStart)
	today = records.Day(today)

	var gaps []Gap
	gaps = append(gaps, entityShiftGaps(entityLog, windowStart, today)...)
	for _, ch := range channels {
		gaps = append(gaps, channelDayGaps(ch, windowStart, today)...)
	}
	return gaps
}

// entityIndex is built in one pass over the log so that the day/shift scan
// runs in O(entities x days x shifts) instead of rescanning rows.
type entityIndex struct {
	order     []string                             // first-encounter display names
	firstDate map[string]time.Time                 // earliest valid date per entity key
	satisfied map[string]map[time.Time]map[Shift]bool // entity key -> day -> shifts seen
}

func entityKey(cell string) string {
	return keyword.Fold(cell)
}

func entityShiftGaps(log *records.Dataset, windowStart, today time.Time) []Gap {
	if log.Empty() || today.Before(windowStart) {
		return nil
	}
	if log.Roles.Entity == "" || log.Roles.Shift == "" {
		return dateOnlyFallbackGaps(log, windowStart, today)
	}

	idx := buildEntityIndex(log)

	var gaps []Gap
	for _, name := range idx.order {
		key := entityKey(name)
		entityStart := windowStart
		if first, ok := idx.firstDate[key]; ok && first.After(windowStart) {
			entityStart = first
		}
		if entityStart.After(today) {
			// Entity not yet active inside the window.
			continue
		}
		for d := entityStart; !d.After(today); d = d.AddDate(0, 0, 1) {
			for _, shift := range trackedShifts {
				if idx.satisfied[key][d][shift] {
					continue
				}
				gaps = append(gaps, Gap{Entity: name, Date: d, Shift: shift, Kind: KindEntityShift})
			}
		}
	}
	return gaps
}

func buildEntityIndex(log *records.Dataset) *entityIndex {
	idx := &entityIndex{
		firstDate: make(map[string]time.Time),
		satisfied: make(map[string]map[time.Time]map[Shift]bool),
	}
	for i := range log.Table.Rows {
		name := strings.TrimSpace(log.Value(i, log.Roles.Entity))
		if name == "" {
			continue
		}
		key := entityKey(name)
		if _, seen := idx.satisfied[key]; !seen {
			idx.order = append(idx.order, name)
			idx.satisfied[key] = make(map[time.Time]map[Shift]bool)
		}

		d, ok := log.Date(i)
		if !ok {
			// Unparseable date: the row exists but can satisfy nothing.
			continue
		}
		if first, has := idx.firstDate[key]; !has || d.Before(first) {
			idx.firstDate[key] = d
		}

		shiftText := log.Value(i, log.Roles.Shift)
		for _, shift := range trackedShifts {
			if !shiftKeywords[shift].Matches(shiftText) {
				continue
			}
			if idx.satisfied[key][d] == nil {
				idx.satisfied[key][d] = make(map[Shift]bool)
			}
			idx.satisfied[key][d][shift] = true
		}
	}
	return idx
}

// dateOnlyFallbackGaps is the best-effort scan used when the entity or
// shift column cannot be resolved: a single date-only presence check with
// no entity dimension, at most one Morning/Evening gap pair per absent
// day.
func dateOnlyFallbackGaps(log *records.Dataset, windowStart, today time.Time) []Gap {
	present := make(map[time.Time]bool)
	for i := range log.Table.Rows {
		if d, ok := log.Date(i); ok {
			present[d] = true
		}
	}
	var gaps []Gap
	for d := windowStart; !d.After(today); d = d.AddDate(0, 0, 1) {
		if present[d] {
			continue
		}
		for _, shift := range trackedShifts {
			gaps = append(gaps, Gap{Date: d, Shift: shift, Kind: KindEntityShift})
		}
	}
	return gaps
}

// channelDayGaps checks each day of the window for at least one dated row
// in the channel dataset. Channel data is recorded in aggregate, so
// presence of any row satisfies the day.
func channelDayGaps(ch Channel, windowStart, today time.Time) []Gap {
	if today.Before(windowStart) {
		return nil
	}
	present := make(map[time.Time]bool)
	if ch.Data != nil {
		for i := range ch.Data.Table.Rows {
			if d, ok := ch.Data.Date(i); ok {
				present[d] = true
			}
		}
	}
	var gaps []Gap
	for d := windowStart; !d.After(today); d = d.AddDate(0, 0, 1) {
		if !present[d] {
			gaps = append(gaps, Gap{Date: d, Shift: ch.Shift, Kind: KindChannelDay})
		}
	}
	return gaps
}
