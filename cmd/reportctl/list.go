package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func listCMD(cfgPath *string) *cobra.Command {
	var asJSON bool

	var list = &cobra.Command{
		Use:   "list",
		Short: "List generated reports, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			defer app.Close()

			items, err := app.Reports.List(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), items)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FILENAME\tSIZE\tMODIFIED")
			for _, r := range items {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", r.Filename, r.Size, r.ModifiedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return list
}
