package aggregate

import (
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/dairyops/dairytrack-go/internal/records"
)

// SumAllNumeric sums every cell of every column not in excluded, coercing
// cell by cell; non-numeric cells contribute 0. Returns 0 for an empty
// dataset.
func SumAllNumeric(ds *records.Dataset, excluded []string) float64 {
	return sumAllNumericRows(ds, excluded, nil)
}

// SumAllNumericWindowed is SumAllNumeric restricted to rows whose date
// falls inside the window. Rows without a parseable date are excluded.
func SumAllNumericWindowed(ds *records.Dataset, excluded []string, w Window) float64 {
	return sumAllNumericRows(ds, excluded, func(i int) bool {
		d, ok := ds.Date(i)
		return ok && w.Contains(d)
	})
}

func sumAllNumericRows(ds *records.Dataset, excluded []string, include func(int) bool) float64 {
	if ds.Empty() {
		return 0
	}
	columns := make([]string, 0, len(ds.Table.Columns))
	for _, col := range ds.Table.Columns {
		if !slices.Contains(excluded, col) {
			columns = append(columns, col)
		}
	}
	var total float64
	for i := range ds.Table.Rows {
		if include != nil && !include(i) {
			continue
		}
		for _, col := range columns {
			total += records.NumberOrZero(ds.Value(i, col))
		}
	}
	return total
}

// WindowedSum sums the metric column over rows whose date falls inside the
// window. Rows without a parseable date are excluded. Returns 0 when the
// metric column is empty (unbound) or the dataset is empty.
func WindowedSum(ds *records.Dataset, metricColumn string, w Window) float64 {
	if ds.Empty() || metricColumn == "" {
		return 0
	}
	useCached := metricColumn == ds.Roles.Metric
	var total float64
	for i := range ds.Table.Rows {
		d, ok := ds.Date(i)
		if !ok || !w.Contains(d) {
			continue
		}
		if useCached {
			if v, ok := ds.MetricValue(i); ok {
				total += v
			}
			continue
		}
		total += records.NumberOrZero(ds.Value(i, metricColumn))
	}
	return total
}

// GroupTotal is one entry of a grouped sum, ordered by descending total.
type GroupTotal struct {
	Key   string  `json:"key"`
	Total float64 `json:"total"`
}

// GroupedSum groups windowed rows by the trimmed, case-preserved value of
// groupColumn and totals the metric column within each group. Rows without
// a parseable date are excluded. The result is ordered by descending
// total; ties keep first-encounter order.
func GroupedSum(ds *records.Dataset, groupColumn, metricColumn string, w Window) []GroupTotal {
	if ds.Empty() || groupColumn == "" || metricColumn == "" {
		return nil
	}
	useCached := metricColumn == ds.Roles.Metric
	totals := make(map[string]float64)
	var order []string
	for i := range ds.Table.Rows {
		if d, ok := ds.Date(i); !ok || !w.Contains(d) {
			continue
		}
		key := strings.TrimSpace(ds.Value(i, groupColumn))
		if key == "" {
			continue
		}
		if _, seen := totals[key]; !seen {
			order = append(order, key)
			totals[key] = 0
		}
		if useCached {
			if v, ok := ds.MetricValue(i); ok {
				totals[key] += v
			}
			continue
		}
		totals[key] += records.NumberOrZero(ds.Value(i, metricColumn))
	}

	result := make([]GroupTotal, 0, len(order))
	for _, key := range order {
		result = append(result, GroupTotal{Key: key, Total: totals[key]})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Total > result[j].Total
	})
	return result
}

// DailyMetricTotals totals the metric column per in-window calendar day.
// Rows without a parseable date are skipped.
func DailyMetricTotals(ds *records.Dataset, metricColumn string, w Window) map[time.Time]float64 {
	totals := make(map[time.Time]float64)
	if ds.Empty() || metricColumn == "" {
		return totals
	}
	useCached := metricColumn == ds.Roles.Metric
	for i := range ds.Table.Rows {
		d, ok := ds.Date(i)
		if !ok || !w.Contains(d) {
			continue
		}
		if useCached {
			if v, ok := ds.MetricValue(i); ok {
				totals[d] += v
			}
			continue
		}
		totals[d] += records.NumberOrZero(ds.Value(i, metricColumn))
	}
	return totals
}

// DailyAllNumericTotals totals all non-excluded columns per in-window
// calendar day. Used for distribution tables where quantities are spread
// across per-customer columns.
func DailyAllNumericTotals(ds *records.Dataset, excluded []string, w Window) map[time.Time]float64 {
	totals := make(map[time.Time]float64)
	if ds.Empty() {
		return totals
	}
	columns := make([]string, 0, len(ds.Table.Columns))
	for _, col := range ds.Table.Columns {
		if !slices.Contains(excluded, col) {
			columns = append(columns, col)
		}
	}
	for i := range ds.Table.Rows {
		d, ok := ds.Date(i)
		if !ok || !w.Contains(d) {
			continue
		}
		for _, col := range columns {
			totals[d] += records.NumberOrZero(ds.Value(i, col))
		}
	}
	return totals
}

// DistinctDays counts the distinct in-window calendar days with at least
// one dated row.
func DistinctDays(ds *records.Dataset, w Window) int {
	if ds.Empty() {
		return 0
	}
	seen := make(map[time.Time]struct{})
	for i := range ds.Table.Rows {
		if d, ok := ds.Date(i); ok && w.Contains(d) {
			seen[d] = struct{}{}
		}
	}
	return len(seen)
}
