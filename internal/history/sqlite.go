package history

import (
	"context"
	"database/sql"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/continuity/internal/foundation/errors"
	"git.home.luguber.info/inful/continuity/internal/report"
)

const defaultLimit = 20

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (and if needed creates) the history database.
// Use ":memory:" for an in-memory database, or a file path for persistent storage.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryStorage, "open sqlite database").
			WithContext("path", dbPath).
			Build()
	}
	if dbPath == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, errors.WrapError(err, errors.CategoryStorage, "initialize schema").
			WithContext("path", dbPath).
			Build()
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		series_path TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		revision TEXT,
		digest TEXT,
		documents INTEGER NOT NULL,
		unreadable INTEGER NOT NULL,
		total_issues INTEGER NOT NULL,
		link_issues INTEGER NOT NULL,
		consistency_issues INTEGER NOT NULL,
		dependency_issues INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_series ON runs(series_path);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record stores a summary of r.
func (s *SQLiteStore) Record(ctx context.Context, r *report.Report, digest string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := FromReport(r, digest)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, series_path, timestamp, revision, digest, documents, unreadable,
			total_issues, link_issues, consistency_issues, dependency_issues)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.SeriesPath, run.Timestamp.UnixNano(), run.Revision, run.Digest, run.Documents, run.Unreadable,
		run.TotalIssues, run.LinkIssues, run.ConsistencyIssues, run.DependencyIssues,
	)
	if err != nil {
		return errors.WrapError(err, errors.CategoryStorage, "insert run").
			WithContext("run_id", run.RunID).
			Build()
	}
	return nil
}

// List returns runs newest first.
func (s *SQLiteStore) List(ctx context.Context, q Query) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	query := `SELECT id, run_id, series_path, timestamp, revision, digest, documents, unreadable,
		total_issues, link_issues, consistency_issues, dependency_issues FROM runs`
	args := []any{}
	if q.SeriesPath != "" {
		query += " WHERE series_path = ?"
		args = append(args, q.SeriesPath)
	}
	query += " ORDER BY timestamp DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryStorage, "query runs").Build()
	}
	defer rows.Close()

	return scanRuns(rows)
}

// Latest returns the newest run for seriesPath, or nil when there is none.
func (s *SQLiteStore) Latest(ctx context.Context, seriesPath string) (*Run, error) {
	runs, err := s.List(ctx, Query{SeriesPath: seriesPath, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	var runs []Run
	for rows.Next() {
		var r Run
		var ts int64
		var revision, digest sql.NullString
		err := rows.Scan(&r.ID, &r.RunID, &r.SeriesPath, &ts, &revision, &digest, &r.Documents, &r.Unreadable,
			&r.TotalIssues, &r.LinkIssues, &r.ConsistencyIssues, &r.DependencyIssues)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryStorage, "scan run").Build()
		}
		r.Timestamp = time.Unix(0, ts)
		r.Revision = revision.String
		r.Digest = digest.String
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapError(err, errors.CategoryStorage, "iterate rows").Build()
	}
	return runs, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
