// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a local SQLite record of batch runs so operators can
// look back at what was converted and what failed.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/SYKhayyat/docx2org/pkg/types"
)

const (
	// FileName is the database file name inside the history directory.
	FileName = "history.db"

	defaultLimit = 20

	// timeLayout is fixed width so stored timestamps sort lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// ErrRunNotFound is returned when a run ID is not in the database.
var ErrRunNotFound = errors.New("run not found")

// Store manages the run history database.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the history database location under the user cache
// directory, e.g. ~/.cache/docx2org/history.db.
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locating cache directory: %w", err)
	}
	return filepath.Join(dir, "docx2org", FileName), nil
}

// Open opens or creates the history database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			root TEXT NOT NULL,
			policy TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			total INTEGER NOT NULL,
			converted INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			failed INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			input_path TEXT NOT NULL,
			output_path TEXT,
			status TEXT NOT NULL,
			diagnostic TEXT,
			duration_ms INTEGER,
			PRIMARY KEY (run_id, seq)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_results_status ON results(run_id, status)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores run and its results in one transaction.
func (s *Store) Record(ctx context.Context, run types.Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, root, policy, started_at, finished_at, total, converted, skipped, failed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Root, string(run.Policy),
		run.StartedAt.UTC().Format(timeLayout), run.FinishedAt.UTC().Format(timeLayout),
		run.Summary.Total, run.Summary.Converted, run.Summary.Skipped, run.Summary.Failed,
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO results (run_id, seq, input_path, output_path, status, diagnostic, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing result insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range run.Results {
		if _, err := stmt.ExecContext(ctx, run.ID, i, r.InputPath, r.OutputPath,
			string(r.Status), r.Diagnostic, r.Duration.Milliseconds()); err != nil {
			return fmt.Errorf("inserting result for %s: %w", r.InputPath, err)
		}
	}

	return tx.Commit()
}

// Recent returns up to limit runs, newest first, without per-file results.
// A limit of zero or less selects the default of 20.
func (s *Store) Recent(ctx context.Context, limit int) ([]types.Run, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, root, policy, started_at, finished_at, total, converted, skipped, failed
		FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []types.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Get returns one run with all of its results.
func (s *Store) Get(ctx context.Context, id string) (types.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, root, policy, started_at, finished_at, total, converted, skipped, failed
		FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return types.Run{}, err
	}

	run.Results, err = s.results(ctx, id, "")
	if err != nil {
		return types.Run{}, err
	}
	return run, nil
}

// Failures returns the failed results of one run in processing order. An
// unknown run ID yields ErrRunNotFound.
func (s *Store) Failures(ctx context.Context, id string) ([]types.ConversionResult, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up run %s: %w", id, err)
	}
	return s.results(ctx, id, types.ConversionFailed)
}

func (s *Store) results(ctx context.Context, id string, status types.ConversionStatus) ([]types.ConversionResult, error) {
	query := `SELECT input_path, output_path, status, diagnostic, duration_ms FROM results WHERE run_id = ?`
	args := []any{id}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying results for %s: %w", id, err)
	}
	defer rows.Close()

	var results []types.ConversionResult
	for rows.Next() {
		var (
			r          types.ConversionResult
			output     sql.NullString
			diagnostic sql.NullString
			status     string
			durationMS sql.NullInt64
		)
		if err := rows.Scan(&r.InputPath, &output, &status, &diagnostic, &durationMS); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		r.OutputPath = output.String
		r.Status = types.ConversionStatus(status)
		r.Diagnostic = diagnostic.String
		r.Duration = time.Duration(durationMS.Int64) * time.Millisecond
		results = append(results, r)
	}
	return results, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (types.Run, error) {
	var (
		run               types.Run
		policy            string
		started, finished string
	)
	err := sc.Scan(&run.ID, &run.Root, &policy, &started, &finished,
		&run.Summary.Total, &run.Summary.Converted, &run.Summary.Skipped, &run.Summary.Failed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Run{}, err
		}
		return types.Run{}, fmt.Errorf("scanning run: %w", err)
	}
	run.Policy = types.ConflictPolicy(policy)
	if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return types.Run{}, fmt.Errorf("parsing started_at for %s: %w", run.ID, err)
	}
	if run.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
		return types.Run{}, fmt.Errorf("parsing finished_at for %s: %w", run.ID, err)
	}
	return run, nil
}
