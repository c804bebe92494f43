// Package bootstrap builds the services from configuration. Both the API
// server and the CLI start from here.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/bryanwahyu/procdoc/internal/application"
	appai "github.com/bryanwahyu/procdoc/internal/application/ai"
	appreports "github.com/bryanwahyu/procdoc/internal/application/reports"
	"github.com/bryanwahyu/procdoc/internal/config"
	"github.com/bryanwahyu/procdoc/internal/domain/history"
	"github.com/bryanwahyu/procdoc/internal/infra/ai/openai"
	mysqlp "github.com/bryanwahyu/procdoc/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/procdoc/internal/infra/db/postgres"
	"github.com/bryanwahyu/procdoc/internal/infra/docx"
	"github.com/bryanwahyu/procdoc/internal/infra/storage"
	"github.com/bryanwahyu/procdoc/internal/middleware"
)

// App holds the wired services and what must be closed on shutdown.
type App struct {
	Config  *config.Config
	Reports *appreports.Service
	AI      *appai.Service
	Metrics *middleware.Metrics
	Health  map[string]middleware.HealthChecker

	db *sql.DB
}

type historyRepo interface {
	history.Repository
	Migrate(ctx context.Context) error
}

// Build connects the optional backends (database, bucket, generator) and
// assembles the services. A configured backend that cannot be reached is
// an error.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app := &App{
		Config:  cfg,
		Metrics: middleware.NewMetrics(reg),
		Health:  map[string]middleware.HealthChecker{},
	}

	store := storage.NewFileStore(cfg.Reports.OutputDir, log.New(log.Writer(), "[storage] ", log.LstdFlags))
	app.Health["output_dir"] = store

	svc := &appreports.Service{
		Store:               store,
		Renderer:            docx.NewWriter(),
		Metrics:             app.Metrics,
		Clock:               application.SystemClock{},
		Logger:              log.New(log.Writer(), "[reports] ", log.LstdFlags),
		Branding:            cfg.Branding,
		Prefix:              cfg.Reports.Prefix,
		DefaultTemplate:     cfg.Reports.DefaultTemplate,
		DefaultCleanupHours: cfg.Reports.DefaultCleanupHours,
	}

	if cfg.Database.Driver != "" {
		repo, err := app.connectHistory(ctx, cfg)
		if err != nil {
			return nil, err
		}
		svc.History = repo
	}

	if cfg.Minio.Enabled {
		mirror, err := storage.NewBucketMirror(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.Prefix,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("minio init: %w", err)
		}
		svc.Mirror = mirror
		app.Health["bucket"] = mirror
	}

	app.Reports = svc

	var client *openai.Client
	if cfg.OpenAI.APIKey != "" {
		client = openai.NewClient(openai.Options{
			APIKey:      cfg.OpenAI.APIKey,
			Model:       cfg.OpenAI.Model,
			BaseURL:     cfg.OpenAI.BaseURL,
			MaxTokens:   cfg.OpenAI.MaxTokens,
			Temperature: cfg.OpenAI.Temperature,
		})
	} else {
		log.Printf("openai.apiKey not set, /v1/analyze is disabled")
	}
	app.AI = appai.NewService(nil, svc, cfg.OpenAI.PromptTemplate, cfg.OpenAI.CustomPrompt)
	if client != nil {
		app.AI.Client = client
	}

	return app, nil
}

func (a *App) connectHistory(ctx context.Context, cfg *config.Config) (historyRepo, error) {
	var (
		db   *sql.DB
		repo historyRepo
		err  error
	)
	switch cfg.Database.Driver {
	case "mysql":
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err == nil {
			repo = mysqlp.NewHistoryRepository(db)
		}
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err == nil {
			repo = postgresp.NewHistoryRepository(db)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("%s connect: %w", cfg.Database.Driver, err)
	}
	a.db = db
	if err := repo.Migrate(ctx); err != nil {
		db.Close()
		a.db = nil
		return nil, fmt.Errorf("%s migrate: %w", cfg.Database.Driver, err)
	}
	a.Health["database"] = &middleware.DatabaseHealthChecker{DB: db}
	return repo, nil
}

// Close releases the database handle.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	if err != nil && !errors.Is(err, sql.ErrConnDone) {
		return err
	}
	return nil
}
