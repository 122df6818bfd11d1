// Package reconcile combines aggregates across the production,
// distribution and ledger datasets: produced vs distributed quantities,
// the signed remaining balance, ledger totals and named-party fund
// balances.
package reconcile

import (
	"sort"
	"time"

	"github.com/dairyops/dairytrack-go/internal/aggregate"
	"github.com/dairyops/dairytrack-go/internal/keyword"
	"github.com/dairyops/dairytrack-go/internal/records"
)

// Ledger party columns. Matching is case-folded substring containment on
// the trimmed cell value; an absent column yields a zero term.
const (
	investmentPartyColumn = "Paid To"
	paymentPartyColumn    = "Received By"
	expensePartyColumn    = "Expense By"
)

// Calculator holds the normalized datasets of one refresh cycle. It is
// pure: every method is a function of the datasets and its arguments, so
// repeated calls return identical results.
type Calculator struct {
	Production *records.Dataset
	Morning    *records.Dataset
	Evening    *records.Dataset
	Expense    *records.Dataset
	Payment    *records.Dataset
	Investment *records.Dataset

	// TimestampColumn is excluded from all-numeric distribution sums in
	// case a source served it despite the strip on ingest.
	TimestampColumn string
}

// Produced returns the metric total of the production log inside the window.
func (c *Calculator) Produced(w aggregate.Window) float64 {
	return aggregate.WindowedSum(c.Production, metricColumn(c.Production), w)
}

func metricColumn(ds *records.Dataset) string {
	if ds == nil {
		return ""
	}
	return ds.Roles.Metric
}

// Distributed returns the combined morning and evening channel totals
// inside the window. Distribution is recorded per customer column, so each
// channel contributes its windowed all-numeric sum.
func (c *Calculator) Distributed(w aggregate.Window) float64 {
	return c.channelSum(c.Morning, w) + c.channelSum(c.Evening, w)
}

// Remaining returns produced minus distributed for the window. The value
// is signed and never clamped: a negative result means more was
// distributed than recorded as produced and must be surfaced as-is.
func (c *Calculator) Remaining(w aggregate.Window) float64 {
	return c.Produced(w) - c.Distributed(w)
}

func (c *Calculator) channelSum(ds *records.Dataset, w aggregate.Window) float64 {
	return aggregate.SumAllNumericWindowed(ds, c.channelExcluded(ds), w)
}

func (c *Calculator) channelExcluded(ds *records.Dataset) []string {
	excluded := []string{c.TimestampColumn}
	if ds != nil && ds.Roles.Date != "" {
		excluded = append(excluded, ds.Roles.Date)
	}
	return excluded
}

// Fund returns the balance held by the named party inside the window:
// investments paid to them, plus payments received by them, minus expenses
// they made.
func (c *Calculator) Fund(party string, w aggregate.Window) float64 {
	return sumWhere(c.Investment, investmentPartyColumn, party, w) +
		sumWhere(c.Payment, paymentPartyColumn, party, w) -
		sumWhere(c.Expense, expensePartyColumn, party, w)
}

// sumWhere totals the ledger amount column over windowed rows whose
// matchColumn cell contains the party name. Absent match column or unbound
// amount column yields 0, never an error.
func sumWhere(ds *records.Dataset, matchColumn, party string, w aggregate.Window) float64 {
	if ds.Empty() || ds.Roles.Metric == "" || !ds.Table.HasColumn(matchColumn) {
		return 0
	}
	var total float64
	for i := range ds.Table.Rows {
		d, ok := ds.Date(i)
		if !ok || !w.Contains(d) {
			continue
		}
		if !keyword.Contains(ds.Value(i, matchColumn), party) {
			continue
		}
		if v, ok := ds.MetricValue(i); ok {
			total += v
		}
	}
	return total
}

// LedgerTotals holds the amount totals of the three financial ledgers.
type LedgerTotals struct {
	Expense    float64 `json:"expense"`
	Payment    float64 `json:"payment"`
	Investment float64 `json:"investment"`
}

// Ledgers returns the amount totals of all three ledgers for the window.
func (c *Calculator) Ledgers(w aggregate.Window) LedgerTotals {
	return LedgerTotals{
		Expense:    aggregate.WindowedSum(c.Expense, metricColumn(c.Expense), w),
		Payment:    aggregate.WindowedSum(c.Payment, metricColumn(c.Payment), w),
		Investment: aggregate.WindowedSum(c.Investment, metricColumn(c.Investment), w),
	}
}

// DailyRow is one row of the daily produced-vs-distributed comparison.
type DailyRow struct {
	Date        time.Time `json:"date"`
	Produced    float64   `json:"produced"`
	Distributed float64   `json:"distributed"`
	Remaining   float64   `json:"remaining"`
}

// DailyComparison outer-joins per-day produced and per-day distributed
// totals over the window: every in-window day present on either side
// appears once, zero-filled on the missing side, with the signed remaining
// per day. Rows are ordered by ascending date.
func (c *Calculator) DailyComparison(w aggregate.Window) []DailyRow {
	produced := aggregate.DailyMetricTotals(c.Production, metricColumn(c.Production), w)
	distributed := aggregate.DailyAllNumericTotals(c.Morning, c.channelExcluded(c.Morning), w)
	for d, v := range aggregate.DailyAllNumericTotals(c.Evening, c.channelExcluded(c.Evening), w) {
		distributed[d] += v
	}

	days := make(map[time.Time]struct{}, len(produced)+len(distributed))
	for d := range produced {
		days[d] = struct{}{}
	}
	for d := range distributed {
		days[d] = struct{}{}
	}

	rows := make([]DailyRow, 0, len(days))
	for d := range days {
		rows = append(rows, DailyRow{
			Date:        d,
			Produced:    produced[d],
			Distributed: distributed[d],
			Remaining:   produced[d] - distributed[d],
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	return rows
}
