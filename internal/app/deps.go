package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/satjeet/ClinePythonDividis/internal/config"
	"github.com/satjeet/ClinePythonDividis/internal/credential"
	"github.com/satjeet/ClinePythonDividis/internal/event"
	"github.com/satjeet/ClinePythonDividis/internal/workspace"
	"github.com/satjeet/ClinePythonDividis/pkg/database"
	"github.com/satjeet/ClinePythonDividis/pkg/httpclient"
	pkgkafka "github.com/satjeet/ClinePythonDividis/pkg/kafka"
)

// Components are the process-wide dependencies shared by every workspace.
// Both the dashboard server and the CLI build them the same way.
type Components struct {
	Credentials credential.Store
	Events      *event.Emitter
	Doer        httpclient.Doer

	producer *pkgkafka.Producer
	cfg      *config.Config
	logger   *slog.Logger
}

// Build opens the credential store, the activity publisher and the backend
// HTTP client.
func Build(ctx context.Context, cfg *config.Config, metricsService string, logger *slog.Logger) (*Components, error) {
	creds, err := OpenCredentialStore(ctx, cfg, metricsService, logger)
	if err != nil {
		return nil, err
	}

	var publisher pkgkafka.Publisher = pkgkafka.NopPublisher{}
	var producer *pkgkafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = producer
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	return &Components{
		Credentials: creds,
		Events:      event.NewEmitter(publisher, logger),
		Doer:        NewDoer(cfg, logger),
		producer:    producer,
		cfg:         cfg,
		logger:      logger,
	}, nil
}

// WorkspaceDeps returns the dependencies a workspace is built from.
func (c *Components) WorkspaceDeps() workspace.Deps {
	return workspace.Deps{
		BaseURL:     c.cfg.APIBaseURL,
		Doer:        c.Doer,
		Credentials: c.Credentials,
		Events:      c.Events,
		Logger:      c.logger,
	}
}

// Close flushes the activity publisher, then closes the credential store.
func (c *Components) Close() error {
	var errs []error
	if err := c.Events.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Credentials.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close credential store: %w", err))
	}
	return errors.Join(errs...)
}

// NewDoer returns the backend HTTP client, behind a circuit breaker when
// enabled.
func NewDoer(cfg *config.Config, logger *slog.Logger) httpclient.Doer {
	client := httpclient.New(cfg.HTTPClientConfig())
	if !cfg.APIBreakerEnable {
		return client
	}
	return httpclient.NewCircuitBreakerClient(client, httpclient.DefaultCircuitBreakerConfig("dividis-api"), logger)
}

// OpenCredentialStore opens the store selected by CREDENTIAL_BACKEND.
func OpenCredentialStore(ctx context.Context, cfg *config.Config, metricsService string, logger *slog.Logger) (credential.Store, error) {
	if cfg.SlowQuery > 0 {
		database.SetSlowQueryLogging(cfg.SlowQuery, logger)
	}

	switch cfg.CredentialBackend {
	case config.BackendMemory:
		return credential.NewMemoryStore(), nil

	case config.BackendSQLite:
		store, err := credential.OpenSQLite(ctx, cfg.SQLiteConfig())
		if err != nil {
			return nil, fmt.Errorf("open sqlite credential store: %w", err)
		}
		logger.Info("credential store opened",
			slog.String("backend", cfg.CredentialBackend),
			slog.String("path", cfg.SQLitePath),
		)
		return store, nil

	case config.BackendPostgres:
		pgCfg := cfg.PostgresConfig()
		pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("connected to PostgreSQL",
			slog.String("host", cfg.PostgresHost),
			slog.Int("port", cfg.PostgresPort),
			slog.String("database", cfg.PostgresDB),
		)
		if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, metricsService); err != nil {
			logger.Warn("register pool metrics", slog.String("error", err.Error()))
		}
		store, err := credential.NewPostgresStore(ctx, pool, pool.Close, logger)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return store, nil

	case config.BackendRedis:
		client, err := database.NewRedisClient(ctx, cfg.RedisConfig())
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis", slog.String("addr", cfg.RedisAddr))
		return credential.NewRedisStore(client, cfg.CredentialTTL), nil

	default:
		return nil, fmt.Errorf("unknown credential backend %q", cfg.CredentialBackend)
	}
}
