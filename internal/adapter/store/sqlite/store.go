package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/codeforesight/foresight/internal/domain"
	"github.com/codeforesight/foresight/internal/usecase/scan"
)

// Store persists scan run history using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a new SQLite store at the given path.
// Use ":memory:" for an in-memory database (useful for testing).
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db}

	if err := s.createSchema(); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return s, nil
}

// createSchema creates all tables and indexes if they don't exist.
func (s *Store) createSchema() error {
	schema := `
	-- Stores metadata about each scan run
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		timestamp INTEGER NOT NULL,
		input TEXT NOT NULL,
		language TEXT NOT NULL,
		stage TEXT NOT NULL,
		finding_count INTEGER NOT NULL DEFAULT 0,
		risk_score REAL NOT NULL DEFAULT 0.0
	);

	-- Individual rule findings from each run
	CREATE TABLE IF NOT EXISTS findings (
		finding_id TEXT NOT NULL,
		run_id TEXT NOT NULL,
		rule_id TEXT NOT NULL,
		cwe TEXT NOT NULL,
		name TEXT NOT NULL,
		severity TEXT NOT NULL,
		file TEXT NOT NULL,
		line INTEGER NOT NULL,
		snippet TEXT,
		fix TEXT,
		PRIMARY KEY (finding_id, run_id),
		FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
	);

	-- Indexes for history queries
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_findings_run ON findings(run_id);
	CREATE INDEX IF NOT EXISTS idx_findings_cwe ON findings(cwe);
	`

	_, err := s.db.Exec(schema)
	return err
}

// RecordRun stores a run and its findings in a single transaction.
func (s *Store) RecordRun(ctx context.Context, run scan.RunRecord, findings []domain.Finding) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (run_id, timestamp, input, language, stage, finding_count, risk_score)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		run.RunID,
		run.Timestamp.Unix(),
		run.Input,
		run.Language,
		run.Stage,
		run.FindingCount,
		run.RiskScore,
	); err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO findings (finding_id, run_id, rule_id, cwe, name, severity, file, line, snippet, fix)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, finding := range findings {
		if _, err := stmt.ExecContext(ctx,
			finding.ID,
			run.RunID,
			finding.RuleID,
			finding.CWE,
			finding.Name,
			finding.Severity,
			finding.File,
			finding.Line,
			finding.Snippet,
			finding.Fix,
		); err != nil {
			return fmt.Errorf("failed to insert finding: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (scan.RunRecord, error) {
	query := `
		SELECT run_id, timestamp, input, language, stage, finding_count, risk_score
		FROM runs
		WHERE run_id = ?
	`

	var run scan.RunRecord
	var timestamp int64

	err := s.db.QueryRowContext(ctx, query, runID).Scan(
		&run.RunID,
		&timestamp,
		&run.Input,
		&run.Language,
		&run.Stage,
		&run.FindingCount,
		&run.RiskScore,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return scan.RunRecord{}, fmt.Errorf("run not found: %s", runID)
		}
		return scan.RunRecord{}, fmt.Errorf("failed to get run: %w", err)
	}

	run.Timestamp = time.Unix(timestamp, 0)
	return run, nil
}

// ListRuns retrieves the most recent runs, limited by the given count.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]scan.RunRecord, error) {
	query := `
		SELECT run_id, timestamp, input, language, stage, finding_count, risk_score
		FROM runs
		ORDER BY timestamp DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []scan.RunRecord
	for rows.Next() {
		var run scan.RunRecord
		var timestamp int64

		if err := rows.Scan(
			&run.RunID,
			&timestamp,
			&run.Input,
			&run.Language,
			&run.Stage,
			&run.FindingCount,
			&run.RiskScore,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.Timestamp = time.Unix(timestamp, 0)
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// GetFindingsByRun retrieves all findings for a given run.
func (s *Store) GetFindingsByRun(ctx context.Context, runID string) ([]domain.Finding, error) {
	query := `
		SELECT finding_id, rule_id, cwe, name, severity, file, line, snippet, fix
		FROM findings
		WHERE run_id = ?
		ORDER BY line ASC
	`

	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get findings by run: %w", err)
	}
	defer rows.Close()

	var findings []domain.Finding
	for rows.Next() {
		var finding domain.Finding

		if err := rows.Scan(
			&finding.ID,
			&finding.RuleID,
			&finding.CWE,
			&finding.Name,
			&finding.Severity,
			&finding.File,
			&finding.Line,
			&finding.Snippet,
			&finding.Fix,
		); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}

		findings = append(findings, finding)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating findings: %w", err)
	}

	return findings, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
