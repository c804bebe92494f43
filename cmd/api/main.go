package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bryanwahyu/procdoc/internal/bootstrap"
	"github.com/bryanwahyu/procdoc/internal/config"
	"github.com/bryanwahyu/procdoc/internal/infra/httpserver"
	"github.com/bryanwahyu/procdoc/internal/middleware"
)

func main() {
	// .env is optional
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("dotenv: %v", err)
	}

	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("init error: %v", err)
	}
	defer app.Close()

	var limiter *middleware.RateLimiter
	if cfg.Server.RateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateRefill)
		defer limiter.Stop()
	}

	handler := httpserver.NewRouter(httpserver.Options{
		Reports:     app.Reports,
		AI:          app.AI,
		Metrics:     app.Metrics,
		RateLimiter: limiter,
		Health:      app.Health,
		APIKeys:     cfg.Server.APIKeys,
		CORSOrigins: cfg.Server.CORSOrigins,
	})
	if len(cfg.Server.APIKeys) == 0 {
		log.Printf("server.apiKeys empty, API key auth disabled")
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute, // analyze waits on the generator
		IdleTimeout:       60 * time.Second,
	}

	if cfg.Reports.CleanupInterval > 0 {
		log.Printf("scheduled cleanup every %s (hours=%g)", cfg.Reports.CleanupInterval, cfg.Reports.DefaultCleanupHours)
		go app.Reports.RunCleanupLoop(ctx, cfg.Reports.CleanupInterval)
	}

	// run server
	go func() {
		log.Printf("server listening on %s output_dir=%s", addr, cfg.Reports.OutputDir)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")
	cancel()

	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx2, cancel2 := context.WithTimeout(context.Background(), timeout)
	defer cancel2()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
