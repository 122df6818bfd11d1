package records

import (
	"strings"

	"github.com/dairyops/dairytrack-go/internal/keyword"
)

// Role identifies the semantic meaning of a resolved column.
type Role string

const (
	RoleDate   Role = "date"   // calendar date of the record
	RoleMetric Role = "metric" // numeric quantity of interest (milk volume)
	RoleEntity Role = "entity" // tracked subject id (cow)
	RoleShift  Role = "shift"  // daily sub-period label
)

// Bindings holds the resolved column name per role. An empty string means
// the role is unbound: no candidate column matched.
type Bindings struct {
	Date   string
	Metric string
	Entity string
	Shift  string
}

// Column returns the bound column for a role, "" if unbound.
func (b Bindings) Column(role Role) string {
	switch role {
	case RoleDate:
		return b.Date
	case RoleMetric:
		return b.Metric
	case RoleEntity:
		return b.Entity
	case RoleShift:
		return b.Shift
	}
	return ""
}

// Hints optionally pins a role to an exact column name, taking precedence
// over the candidate table when that column exists. Ledger tables use this
// to bind the metric role to their "Amount" column.
type Hints struct {
	Date   string
	Metric string
	Entity string
	Shift  string
}

func (h Hints) column(role Role) string {
	switch role {
	case RoleDate:
		return h.Date
	case RoleMetric:
		return h.Metric
	case RoleEntity:
		return h.Entity
	case RoleShift:
		return h.Shift
	}
	return ""
}

// columnMatcher is one named predicate over a column name.
type columnMatcher struct {
	name  string
	match func(column string) bool
}

func exact(want string) columnMatcher {
	return columnMatcher{
		name:  "exact:" + want,
		match: func(column string) bool { return column == want },
	}
}

func foldedEqual(want string) columnMatcher {
	folded := keyword.Fold(want)
	return columnMatcher{
		name:  "equals:" + want,
		match: func(column string) bool { return keyword.Fold(column) == folded },
	}
}

func contains(token string) columnMatcher {
	folded := keyword.Fold(token)
	return columnMatcher{
		name:  "contains:" + token,
		match: func(column string) bool { return strings.Contains(keyword.Fold(column), folded) },
	}
}

// roleCandidates is the declarative resolution table: per role an ordered
// list of predicates, first match wins. "दूध" is the source-locale token
// for milk and "पाली" for shift.
var roleCandidates = map[Role][]columnMatcher{
	RoleDate: {
		exact("Date"),
	},
	RoleMetric: {
		contains("milk"),
		contains("दूध"),
	},
	RoleEntity: {
		foldedEqual("CowID"),
		contains("cow"),
	},
	RoleShift: {
		contains("shift"),
		contains("पाली"),
	},
}

// roleOrder fixes the resolution order so bindings are deterministic.
var roleOrder = []Role{RoleDate, RoleMetric, RoleEntity, RoleShift}

// ResolveRoles binds each role to a column. A hint naming an existing
// column wins outright; otherwise candidates are tried in order and the
// first column (in table order) matching a candidate is bound.
func ResolveRoles(columns []string, hints Hints) Bindings {
	var b Bindings
	for _, role := range roleOrder {
		col := resolveRole(columns, role, hints.column(role))
		switch role {
		case RoleDate:
			b.Date = col
		case RoleMetric:
			b.Metric = col
		case RoleEntity:
			b.Entity = col
		case RoleShift:
			b.Shift = col
		}
	}
	return b
}

func resolveRole(columns []string, role Role, hint string) string {
	if hint != "" {
		for _, col := range columns {
			if col == hint {
				return col
			}
		}
		// A hint naming a missing column falls through to the candidates;
		// the caller opted in to best-effort resolution.
	}
	for _, cand := range roleCandidates[role] {
		for _, col := range columns {
			if cand.match(col) {
				return col
			}
		}
	}
	return ""
}
