// Package records normalizes raw tabular source data: it resolves which
// columns play the date / metric / entity / shift roles, parses dates and
// coerces the metric column, producing a Dataset the aggregation and audit
// layers can consume without re-deriving schema.
package records

import "slices"

// Row is one record of a source table, keyed by column name. Cells are kept
// as raw strings; numeric coercion happens lazily at aggregation time.
type Row map[string]string

// Table is an ordered sequence of rows plus the column order of the source.
type Table struct {
	Columns []string
	Rows    []Row
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// HasColumn reports whether the table has a column with the exact name.
func (t *Table) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	return slices.Contains(t.Columns, name)
}

// DropColumn removes a column and its cells from every row. Used to strip
// the audit timestamp column before normalization. No-op when absent.
func (t *Table) DropColumn(name string) {
	if t == nil || !t.HasColumn(name) {
		return
	}
	t.Columns = slices.DeleteFunc(t.Columns, func(c string) bool { return c == name })
	for _, row := range t.Rows {
		delete(row, name)
	}
}
