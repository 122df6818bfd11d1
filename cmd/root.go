package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	auditcmd "github.com/dairyops/dairytrack-go/cmd/audit"
	refreshcmd "github.com/dairyops/dairytrack-go/cmd/refresh"
	servecmd "github.com/dairyops/dairytrack-go/cmd/serve"
	"github.com/dairyops/dairytrack-go/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dairytrack",
		Short: "DairyTrack-Go CLI",
		Long:  "Reconcile dairy production against distribution and ledgers, and audit record completeness.",
	}

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd, settings); err != nil {
		cobra.CheckErr(err)
	}

	subcommands := []*cobra.Command{
		refreshcmd.Command(settings),
		auditcmd.Command(settings),
		servecmd.Command(settings),
	}
	rootCmd.AddCommand(subcommands...)

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Validation.StartDate, "validation-start", viper.GetString("validation.startdate"), "Start of the validation window (YYYY-MM-DD)")
	rootCmd.PersistentFlags().StringSliceVar(&settings.Validation.Parties, "party", viper.GetStringSlice("validation.parties"), "Party to compute a fund balance for (repeatable)")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}

	return nil
}
