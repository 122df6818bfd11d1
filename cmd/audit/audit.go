package audit

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/dairyops/dairytrack-go/internal/audit"
	"github.com/dairyops/dairytrack-go/internal/conf"
	"github.com/dairyops/dairytrack-go/internal/observability/metrics"
	"github.com/dairyops/dairytrack-go/internal/refresh"
	"github.com/dairyops/dairytrack-go/internal/sheets"
)

// Command creates the audit command: list every expected record that is
// missing from the sources.
func Command(settings *conf.Settings) *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "List missing expected records",
		Long:  "Scan the entity log and distribution channels for missing day/shift records inside the validation window.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			today := time.Now()
			if asOf != "" {
				parsed, err := time.Parse("2006-01-02", asOf)
				if err != nil {
					return fmt.Errorf("invalid --as-of date %q, expected YYYY-MM-DD", asOf)
				}
				today = parsed
			}
			return runAudit(cmd, settings, today)
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "Audit as of this date instead of today (YYYY-MM-DD)")
	return cmd
}

func runAudit(cmd *cobra.Command, settings *conf.Settings, today time.Time) error {
	dairyMetrics, err := metrics.NewDairyMetrics(prometheus.NewRegistry())
	if err != nil {
		return fmt.Errorf("error creating metrics: %w", err)
	}

	client := sheets.NewClient(sheets.ConfigFromSettings(&settings.Sheets), dairyMetrics)
	defer client.Close()

	service := refresh.NewService(settings, client, dairyMetrics)
	result := service.Run(cmd.Context(), today)

	out := cmd.OutOrStdout()
	if len(result.Gaps) == 0 {
		fmt.Fprintf(out, "No missing records between %s and %s\n",
			result.ValidationStart.Format("2006-01-02"), result.Today.Format("2006-01-02"))
		return nil
	}

	fmt.Fprintf(out, "%d missing records between %s and %s:\n",
		len(result.Gaps), result.ValidationStart.Format("2006-01-02"), result.Today.Format("2006-01-02"))
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, g := range result.Gaps {
		name := g.Entity
		if g.Kind == audit.KindChannelDay {
			name = "(distribution)"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", name, g.Date.Format("2006-01-02"), g.Shift, g.Kind)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, warning := range result.Warnings {
		fmt.Fprintf(out, "warning: %s\n", warning)
	}
	return nil
}
