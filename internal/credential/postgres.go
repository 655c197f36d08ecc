package credential

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/satjeet/ClinePythonDividis/internal/credential/migrations"
	"github.com/satjeet/ClinePythonDividis/pkg/database"
)

// PgxPool is the part of *pgxpool.Pool the store needs.
type PgxPool interface {
	database.Migrator
	Ping(ctx context.Context) error
}

// PostgresStore persists credentials in Postgres, for dashboard servers that
// share state across replicas.
type PostgresStore struct {
	pool    PgxPool
	closeFn func()
}

var (
	_ Store  = (*PostgresStore)(nil)
	_ Pinger = (*PostgresStore)(nil)
)

// NewPostgresStore applies the embedded migrations and returns the store.
// closeFn, when non-nil, is called by Close.
func NewPostgresStore(ctx context.Context, pool PgxPool, closeFn func(), logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		return nil, fmt.Errorf("migrate credential store: %w", err)
	}
	return &PostgresStore{pool: pool, closeFn: closeFn}, nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) (value string, err error) {
	const q = `SELECT value FROM credentials WHERE key = $1`
	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "GetCredential", q)
	defer func() { end(err) }()

	err = s.pool.QueryRow(ctx, q, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("postgres get credential: %w", err)
	}
	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, key, value string) (err error) {
	if err := checkKey(key); err != nil {
		return err
	}
	const q = `INSERT INTO credentials (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "SetCredential", q)
	defer func() { end(err) }()

	if _, err = s.pool.Exec(ctx, q, key, value); err != nil {
		return fmt.Errorf("postgres set credential: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) (err error) {
	const q = `DELETE FROM credentials WHERE key = $1`
	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "DeleteCredential", q)
	defer func() { end(err) }()

	if _, err = s.pool.Exec(ctx, q, key); err != nil {
		return fmt.Errorf("postgres delete credential: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}
