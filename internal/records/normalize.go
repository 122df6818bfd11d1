package records

import "time"

// Dataset is a normalized table: the raw rows plus resolved role bindings,
// per-row parsed dates and the eagerly coerced metric column.
type Dataset struct {
	Table Table
	Roles Bindings

	dates    []time.Time
	dateOK   []bool
	metric   []float64
	metricOK []bool
}

// Normalize resolves column roles for the table and pre-parses the date and
// metric columns. An empty table yields an empty dataset with no bound
// roles. Never fails: unresolvable roles stay unbound and malformed cells
// are marked missing.
func Normalize(table Table, hints Hints) *Dataset {
	ds := &Dataset{Table: table}
	if table.Empty() {
		return ds
	}

	ds.Roles = ResolveRoles(table.Columns, hints)

	n := len(table.Rows)
	ds.dates = make([]time.Time, n)
	ds.dateOK = make([]bool, n)
	ds.metric = make([]float64, n)
	ds.metricOK = make([]bool, n)

	for i, row := range table.Rows {
		if ds.Roles.Date != "" {
			ds.dates[i], ds.dateOK[i] = ParseDate(row[ds.Roles.Date])
		}
		if ds.Roles.Metric != "" {
			ds.metric[i], ds.metricOK[i] = Number(row[ds.Roles.Metric])
		}
	}
	return ds
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Table.Rows)
}

// Empty reports whether the dataset has no rows.
func (d *Dataset) Empty() bool {
	return d.Len() == 0
}

// Date returns the parsed calendar day for row i. ok is false when the date
// role is unbound or the cell failed to parse; such rows are absent for all
// date-bounded purposes.
func (d *Dataset) Date(i int) (time.Time, bool) {
	if d == nil || i < 0 || i >= len(d.dates) {
		return time.Time{}, false
	}
	return d.dates[i], d.dateOK[i]
}

// MetricValue returns the coerced metric cell for row i. ok is false when
// the metric role is unbound or coercion failed; the row then contributes
// nothing to metric sums.
func (d *Dataset) MetricValue(i int) (float64, bool) {
	if d == nil || i < 0 || i >= len(d.metric) {
		return 0, false
	}
	return d.metric[i], d.metricOK[i]
}

// Value returns the raw cell for row i and the given column.
func (d *Dataset) Value(i int, column string) string {
	if d == nil || i < 0 || i >= len(d.Table.Rows) {
		return ""
	}
	return d.Table.Rows[i][column]
}
