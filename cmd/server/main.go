package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/satjeet/ClinePythonDividis/internal/app"
	"github.com/satjeet/ClinePythonDividis/internal/config"
	pkgconfig "github.com/satjeet/ClinePythonDividis/pkg/config"
	"github.com/satjeet/ClinePythonDividis/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("dashboard server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	if err := pkgconfig.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(app.ServiceName, cfg.LogLevel)
	slog.SetDefault(log)
	log.Info("starting dashboard server",
		slog.String("environment", cfg.Environment),
		slog.Int("http_port", cfg.HTTPPort),
		slog.String("credential_backend", cfg.CredentialBackend),
		slog.String("api_base_url", cfg.APIBaseURL),
	)

	a, err := app.NewApp(cfg, log)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}

	// SIGTERM is what the container runtime sends on stop.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil {
		return fmt.Errorf("run application: %w", err)
	}
	log.Info("dashboard server stopped")
	return nil
}
