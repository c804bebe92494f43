package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func historyCMD(cfgPath *string) *cobra.Command {
	var page, size int

	var hist = &cobra.Command{
		Use:   "history",
		Short: "Show generation history (requires a database)",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			defer app.Close()

			recs, err := app.Reports.ListHistory(cmd.Context(), page, size)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), recs)
		},
	}
	hist.Flags().IntVar(&page, "page", 1, "page number")
	hist.Flags().IntVar(&size, "page-size", 20, "records per page")
	return hist
}

func pruneHistoryCMD(cfgPath *string) *cobra.Command {
	var olderThan time.Duration

	var prune = &cobra.Command{
		Use:   "prune-history",
		Short: "Delete generation records older than --older-than",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			defer app.Close()

			if app.Reports.History == nil {
				return fmt.Errorf("no database configured")
			}
			n, err := app.Reports.PruneHistory(cmd.Context(), olderThan)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pruned %d records\n", n)
			return nil
		},
	}
	prune.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "maximum record age")
	return prune
}
