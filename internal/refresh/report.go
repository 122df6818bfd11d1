package refresh

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/dairyops/dairytrack-go/internal/audit"
)

// WriteText renders the result as a plain-text report for the CLI.
func (r *Result) WriteText(w io.Writer) error {
	fmt.Fprintf(w, "Refresh %s generated at %s (as of %s)\n",
		r.CycleID, r.GeneratedAt.Format("2006-01-02 15:04:05"), r.Today.Format("2006-01-02"))
	fmt.Fprintf(w, "Validation window starts %s\n\n", r.ValidationStart.Format("2006-01-02"))

	writeSummary(w, "Lifetime", &r.Lifetime)
	writeSummary(w, fmt.Sprintf("Current month (%s)", r.Today.Format("January 2006")), &r.CurrentMonth)

	if len(r.EntityTotals) > 0 {
		fmt.Fprintf(w, "Per-entity production (%d days recorded):\n", r.DaysRecorded)
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, et := range r.EntityTotals {
			fmt.Fprintf(tw, "  %s\t%.2f\n", et.Key, et.Total)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	entityGaps, channelGaps := r.gapCounts()
	fmt.Fprintf(w, "Audit: %d missing entity/shift records, %d missing channel days\n",
		entityGaps, channelGaps)
	if len(r.Gaps) > 0 {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, g := range r.Gaps {
			name := g.Entity
			if name == "" {
				name = "(distribution)"
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", name, g.Date.Format("2006-01-02"), g.Shift, g.Kind)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "\nWarnings:")
		for _, warning := range r.Warnings {
			fmt.Fprintf(w, "  - %s\n", warning)
		}
	}
	return nil
}

func writeSummary(w io.Writer, title string, s *Summary) {
	fmt.Fprintf(w, "%s:\n", title)
	fmt.Fprintf(w, "  Produced:    %.2f\n", s.Produced)
	fmt.Fprintf(w, "  Distributed: %.2f\n", s.Distributed)
	fmt.Fprintf(w, "  Remaining:   %.2f\n", s.Remaining)
	fmt.Fprintf(w, "  Expenses:    %.2f  Payments: %.2f  Investments: %.2f\n",
		s.Ledgers.Expense, s.Ledgers.Payment, s.Ledgers.Investment)
	for _, party := range slices.Sorted(maps.Keys(s.Funds)) {
		fmt.Fprintf(w, "  Fund %s: %.2f\n", party, s.Funds[party])
	}
	fmt.Fprintln(w)
}

func (r *Result) gapCounts() (entityGaps, channelGaps int) {
	for _, g := range r.Gaps {
		if g.Kind == audit.KindEntityShift {
			entityGaps++
		} else {
			channelGaps++
		}
	}
	return
}
