package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	appreports "github.com/bryanwahyu/procdoc/internal/application/reports"
	"github.com/bryanwahyu/procdoc/internal/domain/reports"
)

func generateCMD(cfgPath *string) *cobra.Command {
	var (
		input     string
		subject   string
		query     string
		template  string
		timestamp string
		project   string
		company   string
		color     string
	)

	var generate = &cobra.Command{
		Use:   "generate",
		Short: "Render analysis text into a report (reads stdin when --input is - or empty)",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd.InOrStdin(), input)
			if err != nil {
				return err
			}

			var at time.Time
			if timestamp != "" {
				at, err = time.Parse(time.RFC3339, timestamp)
				if err != nil {
					return fmt.Errorf("--timestamp must be RFC3339: %w", err)
				}
			}

			app, err := loadApp(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			defer app.Close()

			res, err := app.Reports.Generate(cmd.Context(), appreports.GenerateCommand{
				AnalysisText: text,
				Subject:      subject,
				Query:        query,
				Template:     template,
				Timestamp:    at,
				Branding: &reports.Branding{
					ProjectName: project,
					CompanyName: company,
					Color:       color,
				},
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	generate.Flags().StringVarP(&input, "input", "i", "-", "analysis text file, - for stdin")
	generate.Flags().StringVarP(&subject, "subject", "s", "", "process or subject name")
	generate.Flags().StringVarP(&query, "query", "q", "", "originating query")
	generate.Flags().StringVarP(&template, "template", "t", "", "report template (default from config)")
	generate.Flags().StringVar(&timestamp, "timestamp", "", "generation time, RFC3339 (default now)")
	generate.Flags().StringVar(&project, "project", "", "project name override")
	generate.Flags().StringVar(&company, "company", "", "company name override")
	generate.Flags().StringVar(&color, "color", "", "brand color override (#RRGGBB)")
	return generate
}

func readInput(stdin io.Reader, path string) (string, error) {
	if path == "" || path == "-" {
		b, err := io.ReadAll(stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("input file %s not found", path)
	}
	return string(b), err
}
