package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/bryanwahyu/procdoc/internal/config"
)

func TestBuildWithoutOptionalBackends(t *testing.T) {
	cfg := config.Default()
	cfg.Reports.OutputDir = filepath.Join(t.TempDir(), "out")

	app, err := Build(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer app.Close()

	if app.Reports == nil || app.Reports.History != nil || app.Reports.Mirror != nil {
		t.Fatalf("reports service = %+v", app.Reports)
	}
	if app.AI == nil || app.AI.Client != nil {
		t.Fatalf("ai client should be unset without an api key")
	}
	if _, ok := app.Health["output_dir"]; !ok || len(app.Health) != 1 {
		t.Fatalf("health checks = %v", app.Health)
	}
	if err := app.Health["output_dir"].Check(context.Background()); err != nil {
		t.Fatalf("output dir check: %v", err)
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Database.Driver = "sqlite"
	if _, err := Build(context.Background(), cfg); err == nil {
		t.Fatal("expected error")
	}
}
