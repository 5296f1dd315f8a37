// Package report persists validation run history.
//
// Every CLI validation run is recorded in a small SQLite database: one row
// per run with the analysis identifiers and overall outcome, plus one row
// per validation check with its status and diagnostic note. The history
// backs the `surveyor history` command and lets operators see when an
// analysis output first went bad.
package report

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS validation_runs (
	id TEXT PRIMARY KEY,
	analysis_id TEXT NOT NULL,
	results_id TEXT,
	root_dir TEXT NOT NULL,
	is_valid INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS validation_checks (
	run_id TEXT NOT NULL REFERENCES validation_runs(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	name TEXT NOT NULL,
	status INTEGER NOT NULL,
	note TEXT,
	PRIMARY KEY (run_id, position)
);

CREATE INDEX IF NOT EXISTS idx_runs_analysis ON validation_runs(analysis_id, created_at);
`

// Check is one recorded validation check outcome.
type Check struct {
	Name   string
	Status bool
	Note   string
}

// Run is one recorded validation run.
type Run struct {
	ID         string
	AnalysisID string
	ResultsID  string
	RootDir    string
	IsValid    bool
	CreatedAt  time.Time
	Checks     []Check
}

// Store manages the SQLite database of validation runs.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore creates a Store and initializes the database schema.
func NewStore(dbPath string) (*Store, error) {
	// Ensure parent directory exists for file-based databases
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// busy_timeout first so subsequent statements wait on locks instead of
	// failing under concurrent initialization
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// execWithRetry executes a SQL statement with exponential backoff retry on
// lock errors.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRun inserts a validation run and its per-check results in one
// transaction. A missing run ID is assigned a fresh UUID; a zero CreatedAt
// is set to the current time.
func (s *Store) RecordRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO validation_runs (id, analysis_id, results_id, root_dir, is_valid, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.AnalysisID, run.ResultsID, run.RootDir, run.IsValid, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert validation run: %w", err)
	}

	for i, check := range run.Checks {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO validation_checks (run_id, position, name, status, note)
			VALUES (?, ?, ?, ?, ?)`,
			run.ID, i, check.Name, check.Status, check.Note)
		if err != nil {
			return fmt.Errorf("insert validation check %s: %w", check.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit validation run: %w", err)
	}
	return nil
}

// Runs retrieves recorded runs for an analysis, most recent first. A zero
// or negative limit returns every run. Empty analysisID matches all
// analyses.
func (s *Store) Runs(ctx context.Context, analysisID string, limit int) ([]*Run, error) {
	query := `SELECT id, analysis_id, results_id, root_dir, is_valid, created_at
		FROM validation_runs`
	args := []interface{}{}
	if analysisID != "" {
		query += ` WHERE analysis_id = ?`
		args = append(args, analysisID)
	}
	// rowid breaks ties between runs recorded in the same instant
	query += ` ORDER BY created_at DESC, rowid DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query validation runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		var resultsID sql.NullString
		if err := rows.Scan(&run.ID, &run.AnalysisID, &resultsID, &run.RootDir, &run.IsValid, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan validation run: %w", err)
		}
		run.ResultsID = resultsID.String
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate validation runs: %w", err)
	}

	for _, run := range runs {
		if err := s.loadChecks(ctx, run); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// loadChecks attaches the per-check rows to a run, in battery order.
func (s *Store) loadChecks(ctx context.Context, run *Run) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, status, note FROM validation_checks WHERE run_id = ? ORDER BY position`,
		run.ID)
	if err != nil {
		return fmt.Errorf("query validation checks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var check Check
		var note sql.NullString
		if err := rows.Scan(&check.Name, &check.Status, &note); err != nil {
			return fmt.Errorf("scan validation check: %w", err)
		}
		check.Note = note.String
		run.Checks = append(run.Checks, check)
	}
	return rows.Err()
}
