// Package app wires together the dashboard server and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/satjeet/ClinePythonDividis/internal/config"
	"github.com/satjeet/ClinePythonDividis/internal/credential"
	"github.com/satjeet/ClinePythonDividis/internal/handler"
	"github.com/satjeet/ClinePythonDividis/internal/workspace"
	"github.com/satjeet/ClinePythonDividis/pkg/health"
	"github.com/satjeet/ClinePythonDividis/pkg/tracing"
)

// ServiceName identifies the dashboard server in logs, traces and metrics.
const ServiceName = "dividis-dashboard"

// App wires together all dependencies and runs the dashboard server.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	components     *Components
	registry       *workspace.Registry
	httpServer     *http.Server
	tracerShutdown tracing.ShutdownFunc

	// bg bounds the workspace sweeper and the rate limiter cleanup.
	bg       context.Context
	bgCancel context.CancelFunc
	swept    chan struct{}
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, cfg.TracingConfig(ServiceName))
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	components, err := Build(ctx, cfg, "dashboard", logger)
	if err != nil {
		_ = tracerShutdown(context.Background())
		return nil, err
	}

	registry := workspace.NewRegistry(components.WorkspaceDeps(), cfg.SessionTTL)

	// Health checks.
	healthHandler := health.NewHandler()
	if p, ok := components.Credentials.(credential.Pinger); ok {
		healthHandler.RegisterCritical("credentials", p.Ping)
	}
	if components.producer != nil {
		healthHandler.RegisterNonCritical("kafka", components.producer.Ping)
	}
	healthHandler.RegisterNonCritical("api", func(ctx context.Context) error {
		return dialBackend(ctx, cfg.APIBaseURL)
	})

	bg, bgCancel := context.WithCancel(context.Background())
	router := handler.NewRouter(bg, cfg, registry, healthHandler, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		components:     components,
		registry:       registry,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
		bg:             bg,
		bgCancel:       bgCancel,
	}, nil
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.swept = make(chan struct{})
	go func() {
		defer close(a.swept)
		a.registry.Run(a.bg)
	}()

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
			slog.String("api", a.cfg.APIBaseURL),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return errors.Join(err, a.Shutdown())
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Workspaces (stop the sweeper, cancel pending toast timers)
// 3. Activity publisher and credential store
// 4. Tracer (flush pending spans)
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// 1. Drain in-flight HTTP requests (5s budget).
	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 2. The sweeper closes every workspace when bg is canceled.
	a.bgCancel()
	if a.swept != nil {
		<-a.swept
	}

	// 3. Flush activity events before the credential store goes away.
	if err := a.components.Close(); err != nil {
		a.logger.Error("components close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 4. Flush pending spans after HTTP drain so in-flight request spans are captured.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

func dialBackend(ctx context.Context, baseURL string) error {
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("parse API base URL: %w", err)
	}
	host := u.Host
	if u.Port() == "" {
		port := "80"
		if u.Scheme == "https" {
			port = "443"
		}
		host = net.JoinHostPort(u.Hostname(), port)
	}
	d := net.Dialer{Timeout: 2 * time.Second}
	conn, err := d.DialContext(ctx, "tcp", host)
	if err != nil {
		return fmt.Errorf("api unreachable: %w", err)
	}
	_ = conn.Close()
	return nil
}
