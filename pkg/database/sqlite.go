package database

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteConfig holds SQLite connection configuration.
type SQLiteConfig struct {
	// Path is the database file, or ":memory:" for a private in-memory database.
	Path string
}

// DSN returns the modernc.org/sqlite connection string.
func (c SQLiteConfig) DSN() string {
	path := c.Path
	if path != ":memory:" {
		path = filepath.Clean(path)
	}
	return path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
}

// OpenSQLite opens and pings a SQLite database. The pool is capped at one
// connection: writes are serialized anyway and an in-memory database exists
// per connection.
func OpenSQLite(ctx context.Context, cfg SQLiteConfig) (*sql.DB, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	db, err := sql.Open("sqlite", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	return db, nil
}
