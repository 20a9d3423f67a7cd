// Package history keeps a local SQLite log of dispatch runs and every send attempt.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"fair-invitations/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS dispatch_runs (
	id            TEXT PRIMARY KEY,
	exhibition_id TEXT NOT NULL,
	template_id   TEXT NOT NULL,
	total         INTEGER NOT NULL,
	success       INTEGER NOT NULL,
	failed        INTEGER NOT NULL,
	aborted       INTEGER NOT NULL DEFAULT 0,
	finished_at   TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS send_attempts (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     TEXT NOT NULL,
	row_number INTEGER NOT NULL,
	full_name  TEXT NOT NULL,
	email      TEXT NOT NULL,
	status     TEXT NOT NULL,
	error      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_send_attempts_run ON send_attempts(run_id);
`

// Run summarizes one finished dispatch run
type Run struct {
	ID           string    `json:"id"`
	ExhibitionID string    `json:"exhibition_id"`
	TemplateID   string    `json:"template_id"`
	Total        int       `json:"total"`
	Success      int       `json:"success"`
	Failed       int       `json:"failed"`
	Aborted      bool      `json:"aborted"`
	FinishedAt   time.Time `json:"finished_at"`
}

// Attempt is one terminal send outcome within a run
type Attempt struct {
	RunID     string            `json:"run_id"`
	Row       int               `json:"row"`
	FullName  string            `json:"full_name"`
	Email     string            `json:"email"`
	Status    models.SendStatus `json:"status"`
	Error     string            `json:"error,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

type Store struct {
	db *sql.DB
}

// Open opens (and migrates) the history database at path
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordAttempt stores the terminal outcome of one record
func (s *Store) RecordAttempt(ctx context.Context, runID string, rec models.GuestRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO send_attempts (run_id, row_number, full_name, email, status, error, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, rec.Row, rec.FullName, rec.Email, string(rec.Status), rec.Error, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record send attempt: %w", err)
	}
	return nil
}

// RecordRun stores the summary of a finished run
func (s *Store) RecordRun(ctx context.Context, exhibitionID, templateID string, result models.DispatchResult) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO dispatch_runs (id, exhibition_id, template_id, total, success, failed, aborted, finished_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		result.RunID, exhibitionID, templateID, result.Total, result.Success, result.Failed, result.Aborted, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record dispatch run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs for an exhibition, newest first
func (s *Store) ListRuns(ctx context.Context, exhibitionID string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, exhibition_id, template_id, total, success, failed, aborted, finished_at
		 FROM dispatch_runs WHERE exhibition_id = ? ORDER BY finished_at DESC, rowid DESC LIMIT ?`,
		exhibitionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query dispatch runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.ExhibitionID, &r.TemplateID, &r.Total, &r.Success, &r.Failed, &r.Aborted, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dispatch run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ListAttempts returns the attempts of one run in send order
func (s *Store) ListAttempts(ctx context.Context, runID string) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, row_number, full_name, email, status, error, created_at
		 FROM send_attempts WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query send attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		var status string
		if err := rows.Scan(&a.RunID, &a.Row, &a.FullName, &a.Email, &status, &a.Error, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan send attempt: %w", err)
		}
		a.Status = models.SendStatus(status)
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
