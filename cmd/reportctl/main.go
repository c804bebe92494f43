package main

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bryanwahyu/procdoc/internal/bootstrap"
	"github.com/bryanwahyu/procdoc/internal/config"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("dotenv: %v", err)
	}

	if err := newRootCMD().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCMD() *cobra.Command {
	var cfgPath string
	var root = &cobra.Command{
		Use:          "reportctl",
		Short:        "Generate and maintain process documentation reports",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", getenv("CONFIG_PATH", "config.yaml"), "config file")

	root.AddCommand(
		generateCMD(&cfgPath),
		listCMD(&cfgPath),
		cleanupCMD(&cfgPath),
		historyCMD(&cfgPath),
		pruneHistoryCMD(&cfgPath),
	)
	return root
}

// loadApp reads config and wires the services for one command
func loadApp(ctx context.Context, cfgPath string) (*bootstrap.App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	return bootstrap.Build(ctx, cfg)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
