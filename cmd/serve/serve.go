package serve

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dairyops/dairytrack-go/internal/api"
	"github.com/dairyops/dairytrack-go/internal/conf"
	"github.com/dairyops/dairytrack-go/internal/observability/metrics"
	"github.com/dairyops/dairytrack-go/internal/refresh"
	"github.com/dairyops/dairytrack-go/internal/sheets"
)

// Command creates the serve command: run the HTTP API server.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long:  "Serve reconciliation summaries, daily comparisons and audit results over HTTP.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe(settings)
		},
	}

	cmd.Flags().StringVar(&settings.WebServer.Port, "port", viper.GetString("webserver.port"), "Port to listen on")
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		cobra.CheckErr(fmt.Errorf("error binding flags: %v", err))
	}

	return cmd
}

func runServe(settings *conf.Settings) error {
	registry := prometheus.NewRegistry()
	dairyMetrics, err := metrics.NewDairyMetrics(registry)
	if err != nil {
		return fmt.Errorf("error creating metrics: %w", err)
	}

	client := sheets.NewClient(sheets.ConfigFromSettings(&settings.Sheets), dairyMetrics)
	defer client.Close()

	service := refresh.NewService(settings, client, dairyMetrics)

	e := echo.New()
	e.HideBanner = true
	controller := api.New(e, settings, service, registry)
	defer controller.Shutdown()

	return controller.Start()
}
