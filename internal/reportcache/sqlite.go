package reportcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite persists reports to a local database so pre-warmed results survive
// process restarts. The upsert writes the whole payload in one statement,
// which keeps the atomic-or-nothing contract.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the report database at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open report cache: %w", err)
	}

	const tbl = `
	CREATE TABLE IF NOT EXISTS reports (
		key         TEXT PRIMARY KEY,
		payload     BLOB NOT NULL,
		computed_at INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(tbl); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure reports table: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, bool, error) {
	const query = `SELECT payload FROM reports WHERE key = ?;`
	var payload []byte
	err := s.db.QueryRowContext(ctx, query, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read report %q: %w", key, err)
	}
	return payload, true, nil
}

func (s *SQLite) Put(ctx context.Context, key string, payload []byte) error {
	const stmt = `
	INSERT INTO reports (key, payload, computed_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, computed_at = excluded.computed_at;
	`
	if _, err := s.db.ExecContext(ctx, stmt, key, payload, time.Now().UnixMicro()); err != nil {
		return fmt.Errorf("write report %q: %w", key, err)
	}
	return nil
}
