package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dairyops/dairytrack-go/internal/aggregate"
	"github.com/dairyops/dairytrack-go/internal/records"
)

func day(yyyy int, m time.Month, d int) time.Time {
	return time.Date(yyyy, m, d, 0, 0, 0, 0, time.UTC)
}

func dataset(columns []string, rows []records.Row, hints records.Hints) *records.Dataset {
	return records.Normalize(records.Table{Columns: columns, Rows: rows}, hints)
}

func emptyDataset() *records.Dataset {
	return records.Normalize(records.Table{}, records.Hints{})
}

func ledgerHints() records.Hints {
	return records.Hints{Metric: "Amount"}
}

func testCalculator() *Calculator {
	return &Calculator{
		Production: dataset(
			[]string{"Date", "CowID", "Milk (L)", "Shift"},
			[]records.Row{
				{"Date": "01-11-2025", "CowID": "C1", "Milk (L)": "60", "Shift": "Morning"},
				{"Date": "02-11-2025", "CowID": "C2", "Milk (L)": "40", "Shift": "Evening"},
			},
			records.Hints{},
		),
		Morning: dataset(
			[]string{"Date", "CustomerA", "CustomerB"},
			[]records.Row{
				{"Date": "01-11-2025", "CustomerA": "25", "CustomerB": "15"},
			},
			records.Hints{},
		),
		Evening: dataset(
			[]string{"Date", "CustomerA"},
			[]records.Row{
				{"Date": "01-11-2025", "CustomerA": "30"},
			},
			records.Hints{},
		),
		Expense: dataset(
			[]string{"Date", "Expense Type", "Expense By", "Amount"},
			[]records.Row{
				{"Date": "03-11-2025", "Expense Type": "Feed", "Expense By": "Bipin Kumar", "Amount": "100"},
				{"Date": "04-11-2025", "Expense Type": "Vet", "Expense By": "Someone Else", "Amount": "50"},
			},
			ledgerHints(),
		),
		Payment: dataset(
			[]string{"Date", "Received By", "Amount"},
			[]records.Row{
				{"Date": "05-11-2025", "Received By": "bipin kumar", "Amount": "200"},
			},
			ledgerHints(),
		),
		Investment: dataset(
			[]string{"Date", "Paid To", "Amount"},
			[]records.Row{
				{"Date": "01-11-2025", "Paid To": "Paid to Bipin Kumar", "Amount": "500"},
			},
			ledgerHints(),
		),
		TimestampColumn: "Timestamp",
	}
}

func november() aggregate.Window {
	return aggregate.Month(2025, time.November)
}

func TestCalculator_ProducedDistributedRemaining(t *testing.T) {
	t.Parallel()

	c := testCalculator()
	w := november()

	assert.InDelta(t, 100.0, c.Produced(w), 1e-9)
	assert.InDelta(t, 70.0, c.Distributed(w), 1e-9)
	assert.InDelta(t, 30.0, c.Remaining(w), 1e-9)
}

func TestCalculator_RemainingIsSignedNotClamped(t *testing.T) {
	t.Parallel()

	c := testCalculator()
	// Correct the evening channel upward so distribution exceeds production.
	c.Evening = dataset(
		[]string{"Date", "CustomerA"},
		[]records.Row{{"Date": "01-11-2025", "CustomerA": "80"}},
		records.Hints{},
	)
	w := november()

	assert.InDelta(t, 120.0, c.Distributed(w), 1e-9)
	assert.InDelta(t, -20.0, c.Remaining(w), 1e-9)
}

func TestCalculator_Fund(t *testing.T) {
	t.Parallel()

	c := testCalculator()

	// investment 500 + payment 200 - expense 100
	got := c.Fund("Bipin Kumar", aggregate.Lifetime(day(2025, time.November, 1)))
	assert.InDelta(t, 600.0, got, 1e-9)
}

func TestCalculator_FundUnknownParty(t *testing.T) {
	t.Parallel()

	c := testCalculator()
	got := c.Fund("Nobody", aggregate.Lifetime(day(2025, time.November, 1)))
	assert.InDelta(t, 0.0, got, 1e-9)
}

func TestCalculator_FundAbsentMatchColumn(t *testing.T) {
	t.Parallel()

	c := testCalculator()
	// Ledger without the "Paid To" column: that term becomes 0, no error.
	c.Investment = dataset(
		[]string{"Date", "Amount"},
		[]records.Row{{"Date": "01-11-2025", "Amount": "500"}},
		ledgerHints(),
	)

	got := c.Fund("Bipin Kumar", aggregate.Lifetime(day(2025, time.November, 1)))
	assert.InDelta(t, 100.0, got, 1e-9) // 0 + 200 - 100
}

func TestCalculator_Ledgers(t *testing.T) {
	t.Parallel()

	c := testCalculator()
	totals := c.Ledgers(aggregate.Lifetime(day(2025, time.November, 1)))

	assert.InDelta(t, 150.0, totals.Expense, 1e-9)
	assert.InDelta(t, 200.0, totals.Payment, 1e-9)
	assert.InDelta(t, 500.0, totals.Investment, 1e-9)
}

func TestCalculator_DailyComparison(t *testing.T) {
	t.Parallel()

	c := testCalculator()
	rows := c.DailyComparison(aggregate.Lifetime(day(2025, time.November, 1)))

	require.Len(t, rows, 2)

	assert.Equal(t, day(2025, time.November, 1), rows[0].Date)
	assert.InDelta(t, 60.0, rows[0].Produced, 1e-9)
	assert.InDelta(t, 70.0, rows[0].Distributed, 1e-9)
	assert.InDelta(t, -10.0, rows[0].Remaining, 1e-9)

	// Nov 2 has production but no distribution: outer join zero-fills.
	assert.Equal(t, day(2025, time.November, 2), rows[1].Date)
	assert.InDelta(t, 40.0, rows[1].Produced, 1e-9)
	assert.InDelta(t, 0.0, rows[1].Distributed, 1e-9)
	assert.InDelta(t, 40.0, rows[1].Remaining, 1e-9)
}

func TestCalculator_DailyComparison_DistributionOnlyDay(t *testing.T) {
	t.Parallel()

	c := testCalculator()
	c.Production = emptyDataset()

	rows := c.DailyComparison(aggregate.Lifetime(day(2025, time.November, 1)))
	require.Len(t, rows, 1)
	assert.InDelta(t, 0.0, rows[0].Produced, 1e-9)
	assert.InDelta(t, 70.0, rows[0].Distributed, 1e-9)
	assert.InDelta(t, -70.0, rows[0].Remaining, 1e-9)
}

func TestCalculator_EmptySourcesDegradeToZero(t *testing.T) {
	t.Parallel()

	c := &Calculator{
		Production:      emptyDataset(),
		Morning:         emptyDataset(),
		Evening:         emptyDataset(),
		Expense:         emptyDataset(),
		Payment:         emptyDataset(),
		Investment:      emptyDataset(),
		TimestampColumn: "Timestamp",
	}
	w := november()

	assert.InDelta(t, 0.0, c.Produced(w), 1e-9)
	assert.InDelta(t, 0.0, c.Distributed(w), 1e-9)
	assert.InDelta(t, 0.0, c.Remaining(w), 1e-9)
	assert.InDelta(t, 0.0, c.Fund("Bipin Kumar", w), 1e-9)
	assert.Empty(t, c.DailyComparison(w))
}

func TestCalculator_DailyComparison_ExcludesPreWindowDays(t *testing.T) {
	t.Parallel()

	c := testCalculator()
	c.Production = dataset(
		[]string{"Date", "CowID", "Milk (L)", "Shift"},
		[]records.Row{
			{"Date": "15-10-2025", "CowID": "C1", "Milk (L)": "80", "Shift": "Morning"},
			{"Date": "01-11-2025", "CowID": "C1", "Milk (L)": "60", "Shift": "Morning"},
		},
		records.Hints{},
	)

	rows := c.DailyComparison(aggregate.Lifetime(day(2025, time.November, 1)))

	require.Len(t, rows, 1)
	assert.Equal(t, day(2025, time.November, 1), rows[0].Date)
	assert.InDelta(t, 60.0, rows[0].Produced, 1e-9)
}

func TestCalculator_Idempotent(t *testing.T) {
	t.Parallel()

	c := testCalculator()
	w := november()

	first := c.Remaining(w)
	second := c.Remaining(w)
	assert.Equal(t, first, second)

	funds1 := c.Fund("Bipin Kumar", aggregate.Lifetime(day(2025, time.November, 1)))
	funds2 := c.Fund("Bipin Kumar", aggregate.Lifetime(day(2025, time.November, 1)))
	assert.Equal(t, funds1, funds2)
}
