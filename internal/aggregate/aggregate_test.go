package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dairyops/dairytrack-go/internal/records"
)

func day(yyyy int, m time.Month, d int) time.Time {
	return time.Date(yyyy, m, d, 0, 0, 0, 0, time.UTC)
}

func distributionDataset() *records.Dataset {
	table := records.Table{
		Columns: []string{"Date", "CustomerA", "CustomerB"},
		Rows: []records.Row{
			{"Date": "01-11-2025", "CustomerA": "5", "CustomerB": "3"},
			{"Date": "02-11-2025", "CustomerA": "4", "CustomerB": "oops"},
			{"Date": "bad date", "CustomerA": "100", "CustomerB": "100"},
		},
	}
	return records.Normalize(table, records.Hints{})
}

func productionDataset() *records.Dataset {
	table := records.Table{
		Columns: []string{"Date", "CowID", "Milk (L)", "Shift"},
		Rows: []records.Row{
			{"Date": "01-11-2025", "CowID": "C1", "Milk (L)": "10", "Shift": "Morning"},
			{"Date": "01-11-2025", "CowID": "C2", "Milk (L)": "6", "Shift": "Morning"},
			{"Date": "02-11-2025", "CowID": "C1", "Milk (L)": "9", "Shift": "Evening"},
			{"Date": "01-12-2025", "CowID": "C2", "Milk (L)": "7", "Shift": "Morning"},
		},
	}
	return records.Normalize(table, records.Hints{})
}

func TestSumAllNumeric(t *testing.T) {
	t.Parallel()

	ds := distributionDataset()

	// All customer cells: 5+3+4+0(oops)+100+100; date column excluded
	got := SumAllNumeric(ds, []string{"Date"})
	assert.InDelta(t, 212.0, got, 1e-9)
}

func TestSumAllNumeric_SingleRow(t *testing.T) {
	t.Parallel()

	table := records.Table{
		Columns: []string{"Date", "CustomerA", "CustomerB"},
		Rows:    []records.Row{{"Date": "01-11-2025", "CustomerA": "5", "CustomerB": "3"}},
	}
	ds := records.Normalize(table, records.Hints{})

	assert.InDelta(t, 8.0, SumAllNumeric(ds, []string{"Date"}), 1e-9)
}

func TestSumAllNumeric_EmptyDataset(t *testing.T) {
	t.Parallel()

	ds := records.Normalize(records.Table{}, records.Hints{})
	assert.InDelta(t, 0.0, SumAllNumeric(ds, nil), 1e-9)
}

func TestSumAllNumericWindowed_ExcludesUndatedRows(t *testing.T) {
	t.Parallel()

	ds := distributionDataset()
	w := Lifetime(day(2025, time.November, 1))

	// The "bad date" row (200) must not be counted even though lifetime
	// covers everything.
	got := SumAllNumericWindowed(ds, []string{"Date"}, w)
	assert.InDelta(t, 12.0, got, 1e-9)
}

func TestWindowedSum(t *testing.T) {
	t.Parallel()

	ds := productionDataset()

	tests := []struct {
		name string
		w    Window
		want float64
	}{
		{"lifetime", Lifetime(day(2025, time.November, 1)), 32},
		{"lifetime from later start", Lifetime(day(2025, time.November, 2)), 16},
		{"november", Month(2025, time.November), 25},
		{"december", Month(2025, time.December), 7},
		{"single day", SingleDay(day(2025, time.November, 1)), 16},
		{"empty month", Month(2026, time.January), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := WindowedSum(ds, ds.Roles.Metric, tt.w)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestWindowedSum_UnboundMetric(t *testing.T) {
	t.Parallel()

	ds := productionDataset()
	assert.InDelta(t, 0.0, WindowedSum(ds, "", Lifetime(day(2025, time.November, 1))), 1e-9)
}

func TestWindowedSum_Idempotent(t *testing.T) {
	t.Parallel()

	ds := productionDataset()
	w := Month(2025, time.November)

	first := WindowedSum(ds, ds.Roles.Metric, w)
	second := WindowedSum(ds, ds.Roles.Metric, w)
	assert.Equal(t, first, second)
}

func TestGroupedSum(t *testing.T) {
	t.Parallel()

	ds := productionDataset()
	got := GroupedSum(ds, ds.Roles.Entity, ds.Roles.Metric, Lifetime(day(2025, time.November, 1)))

	require.Len(t, got, 2)
	assert.Equal(t, GroupTotal{Key: "C1", Total: 19}, got[0])
	assert.Equal(t, GroupTotal{Key: "C2", Total: 13}, got[1])
}

func TestGroupedSum_ExcludesPreWindowRows(t *testing.T) {
	t.Parallel()

	table := records.Table{
		Columns: []string{"Date", "CowID", "Milk (L)"},
		Rows: []records.Row{
			{"Date": "15-10-2025", "CowID": "C1", "Milk (L)": "50"},
			{"Date": "01-11-2025", "CowID": "C1", "Milk (L)": "10"},
			{"Date": "01-11-2025", "CowID": "C2", "Milk (L)": "6"},
		},
	}
	ds := records.Normalize(table, records.Hints{})
	got := GroupedSum(ds, "CowID", "Milk (L)", Lifetime(day(2025, time.November, 1)))

	// The October row must not inflate C1 or promote it past honest totals.
	require.Len(t, got, 2)
	assert.Equal(t, GroupTotal{Key: "C1", Total: 10}, got[0])
	assert.Equal(t, GroupTotal{Key: "C2", Total: 6}, got[1])
}

func TestGroupedSum_EntityOnlyBeforeWindowAbsent(t *testing.T) {
	t.Parallel()

	table := records.Table{
		Columns: []string{"Date", "CowID", "Milk (L)"},
		Rows: []records.Row{
			{"Date": "15-10-2025", "CowID": "Old", "Milk (L)": "50"},
			{"Date": "01-11-2025", "CowID": "C1", "Milk (L)": "10"},
		},
	}
	ds := records.Normalize(table, records.Hints{})
	got := GroupedSum(ds, "CowID", "Milk (L)", Lifetime(day(2025, time.November, 1)))

	require.Len(t, got, 1)
	assert.Equal(t, "C1", got[0].Key)
}

func TestGroupedSum_TiesKeepFirstEncounterOrder(t *testing.T) {
	t.Parallel()

	table := records.Table{
		Columns: []string{"Date", "CowID", "Milk (L)"},
		Rows: []records.Row{
			{"Date": "01-11-2025", "CowID": "B", "Milk (L)": "5"},
			{"Date": "01-11-2025", "CowID": "A", "Milk (L)": "5"},
		},
	}
	ds := records.Normalize(table, records.Hints{})
	got := GroupedSum(ds, "CowID", "Milk (L)", Lifetime(day(2025, time.November, 1)))

	require.Len(t, got, 2)
	assert.Equal(t, "B", got[0].Key)
	assert.Equal(t, "A", got[1].Key)
}

func TestGroupedSum_TrimsKeys(t *testing.T) {
	t.Parallel()

	table := records.Table{
		Columns: []string{"Date", "CowID", "Milk (L)"},
		Rows: []records.Row{
			{"Date": "01-11-2025", "CowID": " C1 ", "Milk (L)": "5"},
			{"Date": "02-11-2025", "CowID": "C1", "Milk (L)": "3"},
		},
	}
	ds := records.Normalize(table, records.Hints{})
	got := GroupedSum(ds, "CowID", "Milk (L)", Lifetime(day(2025, time.November, 1)))

	require.Len(t, got, 1)
	assert.Equal(t, GroupTotal{Key: "C1", Total: 8}, got[0])
}

func TestDailyMetricTotals(t *testing.T) {
	t.Parallel()

	ds := productionDataset()
	totals := DailyMetricTotals(ds, ds.Roles.Metric, Lifetime(day(2025, time.November, 1)))

	require.Len(t, totals, 3)
	assert.InDelta(t, 16.0, totals[day(2025, time.November, 1)], 1e-9)
	assert.InDelta(t, 9.0, totals[day(2025, time.November, 2)], 1e-9)
	assert.InDelta(t, 7.0, totals[day(2025, time.December, 1)], 1e-9)
}

func TestDailyMetricTotals_ExcludesPreWindowDays(t *testing.T) {
	t.Parallel()

	ds := productionDataset()
	totals := DailyMetricTotals(ds, ds.Roles.Metric, Lifetime(day(2025, time.November, 2)))

	require.Len(t, totals, 2)
	assert.NotContains(t, totals, day(2025, time.November, 1))
}

func TestDailyAllNumericTotals(t *testing.T) {
	t.Parallel()

	ds := distributionDataset()
	totals := DailyAllNumericTotals(ds, []string{"Date"}, Lifetime(day(2025, time.November, 1)))

	require.Len(t, totals, 2)
	assert.InDelta(t, 8.0, totals[day(2025, time.November, 1)], 1e-9)
	assert.InDelta(t, 4.0, totals[day(2025, time.November, 2)], 1e-9)

	clamped := DailyAllNumericTotals(ds, []string{"Date"}, Lifetime(day(2025, time.November, 2)))
	require.Len(t, clamped, 1)
	assert.NotContains(t, clamped, day(2025, time.November, 1))
}

func TestDistinctDays(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 3, DistinctDays(productionDataset(), Lifetime(day(2025, time.November, 1))))
	assert.Equal(t, 2, DistinctDays(distributionDataset(), Lifetime(day(2025, time.November, 1))))

	// Days before the window start do not count.
	assert.Equal(t, 2, DistinctDays(productionDataset(), Lifetime(day(2025, time.November, 2))))
}

func TestMonthWindow_FromClampsStart(t *testing.T) {
	t.Parallel()

	w := Month(2025, time.November).From(day(2025, time.November, 10))

	assert.False(t, w.Contains(day(2025, time.November, 9)))
	assert.True(t, w.Contains(day(2025, time.November, 10)))
	assert.True(t, w.Contains(day(2025, time.November, 30)))
	assert.False(t, w.Contains(day(2025, time.December, 1)))
}
