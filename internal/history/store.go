// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records conversion runs in a local SQLite database so
// past conversions can be listed and their output digests compared.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/parseyaml/pkg/types"
)

const (
	// DefaultDBPath is used when HistoryConfig.DBPath is empty.
	DefaultDBPath     = ".parseyaml/history.db"
	defaultMaxResults = 20

	// timeLayout is fixed-width so started_at sorts correctly as text.
	timeLayout = "2006-01-02T15:04:05.000000000Z"
)

// ErrNoHistory is returned by Open when no database has been created yet.
var ErrNoHistory = errors.New("no history recorded")

// Store manages the run history database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the history database at cfg.DBPath, creating
// its directory and schema if needed.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	dbPath := dbPathOf(cfg)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	s, err := open(dbPath, cfg.MaxResults)
	if err != nil {
		return nil, err
	}
	if err := s.createSchema(); err != nil {
		s.db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Open opens an existing history database for listing. It returns
// ErrNoHistory when the database file does not exist and creates nothing.
func Open(cfg types.HistoryConfig) (*Store, error) {
	dbPath := dbPathOf(cfg)
	if _, err := os.Stat(dbPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoHistory
		}
		return nil, fmt.Errorf("checking history database: %w", err)
	}
	return open(dbPath, cfg.MaxResults)
}

func dbPathOf(cfg types.HistoryConfig) string {
	if cfg.DBPath == "" {
		return DefaultDBPath
	}
	return cfg.DBPath
}

func open(dbPath string, maxResults int) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	return &Store{db: db, maxResults: maxResults}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			input TEXT NOT NULL,
			output TEXT NOT NULL,
			status TEXT NOT NULL,
			error_kind TEXT,
			error TEXT,
			bytes INTEGER NOT NULL DEFAULT 0,
			sha256 TEXT,
			started_at TEXT NOT NULL,
			duration_ns INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts run and returns its assigned ID.
func (s *Store) Record(ctx context.Context, run types.ConversionRun) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (input, output, status, error_kind, error, bytes, sha256, started_at, duration_ns)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Input, run.Output, string(run.Status), run.ErrorKind, run.Error,
		run.Bytes, run.SHA256, run.StartedAt.UTC().Format(timeLayout), int64(run.Duration),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}
	return id, nil
}

// Recent returns up to limit runs, newest first. A limit of zero or less
// uses the configured maximum.
func (s *Store) Recent(ctx context.Context, limit int) ([]types.ConversionRun, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, input, output, status, COALESCE(error_kind, ''), COALESCE(error, ''),
		        bytes, COALESCE(sha256, ''), started_at, duration_ns
		 FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []types.ConversionRun
	for rows.Next() {
		var (
			r         types.ConversionRun
			status    string
			startedAt string
			duration  int64
		)
		if err := rows.Scan(&r.ID, &r.Input, &r.Output, &status, &r.ErrorKind, &r.Error,
			&r.Bytes, &r.SHA256, &startedAt, &duration); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Status = types.ConversionStatus(status)
		r.Duration = time.Duration(duration)
		r.StartedAt, err = time.Parse(timeLayout, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing started_at for run %d: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
