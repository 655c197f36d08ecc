package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"path"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Migrator is the part of *pgxpool.Pool that applies migrations. pgxmock
// pools satisfy it too.
type Migrator interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

const (
	createVersionsSQL = `CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`
	versionAppliedSQL = "SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)"
	recordVersionSQL  = "INSERT INTO schema_migrations (version) VALUES ($1)"
)

// transientMarkers are driver messages for a dropped or unreachable server.
var transientMarkers = []string{
	"connection refused",
	"connection reset",
	"connection timed out",
	"broken pipe",
	"no such host",
	"i/o timeout",
	"dial tcp",
	"EOF",
	"server closed the connection unexpectedly",
	"could not connect",
}

// isConnectionError reports whether err came from the connection rather
// than from the SQL. A server-reported error is never transient.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	msg := err.Error()
	for _, m := range transientMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

type migration struct {
	version string
	sql     string
}

// loadMigrations reads the *.up.sql files at the root of fsys in lexical
// order. Down migrations are ignored.
func loadMigrations(fsys fs.FS) ([]migration, error) {
	names, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	out := make([]migration, 0, len(names))
	for _, name := range names {
		b, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		out = append(out, migration{version: path.Base(name), sql: string(b)})
	}
	return out, nil
}

// RunMigrations applies the pending *.up.sql files of migrations, each in
// its own transaction, recording versions in schema_migrations. Connection
// errors are retried with backoff; SQL errors fail at once.
func RunMigrations(ctx context.Context, db Migrator, migrations fs.FS, logger *slog.Logger) error {
	pending, err := loadMigrations(migrations)
	if err != nil {
		return err
	}

	r := retrier{op: "run migrations", retryable: isConnectionError, logger: logger}
	return r.run(ctx, func() error { return migrate(ctx, db, pending, logger) })
}

func migrate(ctx context.Context, db Migrator, all []migration, logger *slog.Logger) error {
	if _, err := db.Exec(ctx, createVersionsSQL); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	for _, m := range all {
		var applied bool
		if err := db.QueryRow(ctx, versionAppliedSQL, m.version).Scan(&applied); err != nil {
			return fmt.Errorf("check migration %s: %w", m.version, err)
		}
		if applied {
			logger.Debug("migration already applied", slog.String("version", m.version))
			continue
		}
		if err := apply(ctx, db, m); err != nil {
			return err
		}
		logger.Info("migration applied", slog.String("version", m.version))
	}
	return nil
}

func apply(ctx context.Context, db Migrator, m migration) (err error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx for migration %s: %w", m.version, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, m.sql); err != nil {
		return fmt.Errorf("execute migration %s: %w", m.version, err)
	}
	if _, err = tx.Exec(ctx, recordVersionSQL, m.version); err != nil {
		return fmt.Errorf("record migration %s: %w", m.version, err)
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit migration %s: %w", m.version, err)
	}
	return nil
}
