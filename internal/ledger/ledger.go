// Package ledger persists the set of post identifiers whose assets have all
// been downloaded. It is the pipeline's only durable dedup state: an id is
// added only after every asset of a post succeeded, and is consulted before
// any download attempt.
//
// The ledger is backed by SQLite (modernc.org/sqlite, pure Go) so it survives
// process restarts; a *sql.DB serializes access, which satisfies the
// single-writer requirement under real threads.
//
// Usage:
//
//	led, err := ledger.Open("/downloads/records.db")
//	defer led.Close()
//
//	done, err := led.Contains(ctx, id)
//	...
//	err = led.Add(ctx, id) // idempotent
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS download_records (
	id TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL
);
`

// Ledger is a durable set of completed post identifiers.
type Ledger struct {
	db *sql.DB
}

// Open opens (creating if necessary) the ledger database at path.
//
// Parent directories are created, WAL journaling and a busy timeout are
// applied, and the schema is ensured.
func Open(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("ledger: create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("ledger: open: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("ledger: %s: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ledger: apply schema: %w", err)
	}

	return &Ledger{db: db}, nil
}

// Contains reports whether id has been recorded as fully downloaded.
func (l *Ledger) Contains(ctx context.Context, id string) (bool, error) {
	var one int
	err := l.db.QueryRowContext(ctx, "SELECT 1 FROM download_records WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ledger: select %s: %w", id, err)
	}
	return true, nil
}

// Add records id as fully downloaded. Adding an already-present id is a no-op.
func (l *Ledger) Add(ctx context.Context, id string) error {
	_, err := l.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO download_records (id, created_at) VALUES (?, ?)",
		id, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("ledger: insert %s: %w", id, err)
	}
	return nil
}

// All returns every recorded id, newest first. Used by front-ends to show
// download history.
func (l *Ledger) All(ctx context.Context) ([]string, error) {
	rows, err := l.db.QueryContext(ctx, "SELECT id FROM download_records ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("ledger: list: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ledger: scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Remove deletes an id so its post will be downloaded again. Removing an
// absent id is a no-op.
func (l *Ledger) Remove(ctx context.Context, id string) error {
	_, err := l.db.ExecContext(ctx, "DELETE FROM download_records WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("ledger: delete %s: %w", id, err)
	}
	return nil
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}
