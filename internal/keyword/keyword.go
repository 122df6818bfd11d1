// Package keyword implements a small case-insensitive substring matcher
// shared by shift detection and party matching on ledger columns.
package keyword

import (
	"strings"

	"golang.org/x/text/cases"
)

var folder = cases.Fold()

// Fold returns the Unicode case-folded form of s, trimmed of surrounding
// whitespace. Folding rather than lowercasing keeps matching correct for
// non-Latin tokens in source data.
func Fold(s string) string {
	return folder.String(strings.TrimSpace(s))
}

// Set matches text against a fixed list of keywords by case-folded
// substring containment.
type Set struct {
	keywords []string // stored case-folded
}

// NewSet builds a Set from the given keywords. Empty keywords are dropped.
func NewSet(keywords ...string) Set {
	folded := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if f := Fold(kw); f != "" {
			folded = append(folded, f)
		}
	}
	return Set{keywords: folded}
}

// Matches reports whether the folded text contains any keyword in the set.
func (s Set) Matches(text string) bool {
	if len(s.keywords) == 0 {
		return false
	}
	folded := Fold(text)
	if folded == "" {
		return false
	}
	for _, kw := range s.keywords {
		if strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}

// Contains reports whether text contains the single keyword, case-folded.
// Convenience for call sites that match one dynamic token, e.g. a party name.
func Contains(text, keyword string) bool {
	kw := Fold(keyword)
	if kw == "" {
		return false
	}
	return strings.Contains(Fold(text), kw)
}
