package credential

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/satjeet/ClinePythonDividis/pkg/database"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS credentials (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteStore persists credentials in a local SQLite file. It is the CLI
// default.
type SQLiteStore struct {
	db *sql.DB
}

var (
	_ Store  = (*SQLiteStore)(nil)
	_ Pinger = (*SQLiteStore)(nil)
)

// OpenSQLite opens the database at cfg.Path and creates the schema.
func OpenSQLite(ctx context.Context, cfg database.SQLiteConfig) (*SQLiteStore, error) {
	db, err := database.OpenSQLite(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create credentials table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (value string, err error) {
	const q = `SELECT value FROM credentials WHERE key = ?`
	ctx, end := database.TraceQuery(ctx, database.SystemSQLite, "GetCredential", q)
	defer func() { end(err) }()

	err = s.db.QueryRowContext(ctx, q, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("sqlite get credential: %w", err)
	}
	return value, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) (err error) {
	if err := checkKey(key); err != nil {
		return err
	}
	const q = `INSERT INTO credentials (key, value, updated_at)
		VALUES (?, ?, strftime('%s','now'))
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	ctx, end := database.TraceQuery(ctx, database.SystemSQLite, "SetCredential", q)
	defer func() { end(err) }()

	if _, err = s.db.ExecContext(ctx, q, key, value); err != nil {
		return fmt.Errorf("sqlite set credential: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) (err error) {
	const q = `DELETE FROM credentials WHERE key = ?`
	ctx, end := database.TraceQuery(ctx, database.SystemSQLite, "DeleteCredential", q)
	defer func() { end(err) }()

	if _, err = s.db.ExecContext(ctx, q, key); err != nil {
		return fmt.Errorf("sqlite delete credential: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
