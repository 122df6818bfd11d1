package refresh

import (
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/dairyops/dairytrack-go/internal/conf"
	"github.com/dairyops/dairytrack-go/internal/observability/metrics"
	"github.com/dairyops/dairytrack-go/internal/refresh"
	"github.com/dairyops/dairytrack-go/internal/sheets"
)

// Command creates the refresh command: fetch all sources once and print
// the reconciliation report.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Fetch all sources and print the reconciliation report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRefresh(cmd, settings, time.Now())
		},
	}
	return cmd
}

func runRefresh(cmd *cobra.Command, settings *conf.Settings, today time.Time) error {
	dairyMetrics, err := metrics.NewDairyMetrics(prometheus.NewRegistry())
	if err != nil {
		return fmt.Errorf("error creating metrics: %w", err)
	}

	client := sheets.NewClient(sheets.ConfigFromSettings(&settings.Sheets), dairyMetrics)
	defer client.Close()

	service := refresh.NewService(settings, client, dairyMetrics)
	result := service.Run(cmd.Context(), today)

	if err := result.WriteText(cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("error writing report: %w", err)
	}
	if len(result.Warnings) > 0 {
		fmt.Fprintln(os.Stderr, "refresh completed with degraded sources")
	}
	return nil
}
