package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func cleanupCMD(cfgPath *string) *cobra.Command {
	var hours float64

	var cleanup = &cobra.Command{
		Use:   "cleanup",
		Short: "Delete reports older than --hours (default from config)",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			defer app.Close()

			if !cmd.Flags().Changed("hours") {
				res, err := app.Reports.CleanupDefault(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			}
			if hours < 0 {
				return fmt.Errorf("--hours must not be negative")
			}
			res, err := app.Reports.Cleanup(cmd.Context(), hours)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cleanup.Flags().Float64Var(&hours, "hours", 24, "maximum age in hours")
	return cleanup
}
