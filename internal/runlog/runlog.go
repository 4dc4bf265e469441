// Package runlog persists per-model run timings so long batch runs can be
// reviewed after the fact.
package runlog

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Entry is one recorded model run.
type Entry struct {
	ID        string
	Project   string
	RunTitle  string
	Model     string
	Duration  time.Duration
	Outputs   string
	CreatedAt time.Time
}

// Store records and lists run entries.
type Store interface {
	Record(ctx context.Context, e Entry) error
	List(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "runlog: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	project     TEXT NOT NULL,
	run_title   TEXT NOT NULL,
	model       TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	outputs     TEXT,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE(project, run_title, model)
);

CREATE INDEX IF NOT EXISTS idx_runs_project ON runs(project, run_title);
`

// Migrate creates the schema if needed.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "runlog: migrate")
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Record upserts the timing entry for one model run, keyed by
// (project, run title, model name). Re-running a model overwrites its
// previous timing rather than appending a duplicate.
func (s *SQLiteStore) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, project, run_title, model, duration_ms, outputs, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(project, run_title, model)
		 DO UPDATE SET duration_ms = excluded.duration_ms, outputs = excluded.outputs, created_at = excluded.created_at`,
		e.ID, e.Project, e.RunTitle, e.Model, e.Duration.Milliseconds(), e.Outputs, now,
	)
	if err != nil {
		return eris.Wrapf(err, "runlog: record %s/%s/%s", e.Project, e.RunTitle, e.Model)
	}
	return nil
}

// List returns the most recent entries, newest first.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project, run_title, model, duration_ms, COALESCE(outputs, ''), created_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: list")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ms int64
		if err := rows.Scan(&e.ID, &e.Project, &e.RunTitle, &e.Model, &ms, &e.Outputs, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "runlog: scan row")
		}
		e.Duration = time.Duration(ms) * time.Millisecond
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "runlog: iterate rows")
	}
	return entries, nil
}
