package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Store defines the interface for run catalog operations.
type Store interface {
	BeginRun(ctx context.Context, run *Run) (int64, error)
	FinishRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id int64) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	RunsForHash(ctx context.Context, hash string) ([]Run, error)
	GetSummary(ctx context.Context) (*Summary, error)
	Close() error
}

// SQLiteStore implements Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB

	// Prepared statements
	insertRun *sql.Stmt
	updateRun *sql.Stmt
	getRun    *sql.Stmt
}

// NewSQLiteStore creates a new SQLiteStore from an already-opened and
// migrated database.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}

	if err := s.prepareStatements(); err != nil {
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.insertRun, err = s.db.Prepare(`
		INSERT INTO runs (input_file, input_hash, periodicity, only_last, timestamps, started_at, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}

	s.updateRun, err = s.db.Prepare(`
		UPDATE runs
		SET pages = ?, revisions = ?, skipped = ?, pairs = ?, finished_at = ?, status = ?, error = ?
		WHERE id = ?
	`)
	if err != nil {
		return err
	}

	s.getRun, err = s.db.Prepare(`
		SELECT id, input_file, input_hash, periodicity, only_last, timestamps,
		       pages, revisions, skipped, pairs, started_at, finished_at, status, error
		FROM runs WHERE id = ?
	`)
	return err
}

// BeginRun records a new run in the "running" state and returns its id.
func (s *SQLiteStore) BeginRun(ctx context.Context, run *Run) (int64, error) {
	started := run.StartedAt
	if started.IsZero() {
		started = time.Now().UTC()
	}

	res, err := s.insertRun.ExecContext(ctx,
		run.InputFile, run.InputHash, run.Periodicity, run.OnlyLast,
		run.Timestamps, started, StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}
	run.ID = id
	run.StartedAt = started
	run.Status = StatusRunning
	return id, nil
}

// FinishRun records the final counters and status of a run. Status must
// be StatusCompleted or StatusFailed; Error carries the failure message.
func (s *SQLiteStore) FinishRun(ctx context.Context, run *Run) error {
	if run.Status != StatusCompleted && run.Status != StatusFailed {
		return fmt.Errorf("finish run %d: invalid status %q", run.ID, run.Status)
	}

	finished := run.FinishedAt
	if finished.IsZero() {
		finished = time.Now().UTC()
	}

	res, err := s.updateRun.ExecContext(ctx,
		run.Pages, run.Revisions, run.Skipped, run.Pairs,
		finished, run.Status, run.Error, run.ID,
	)
	if err != nil {
		return fmt.Errorf("update run %d: %w", run.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update run %d: %w", run.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %d: not found", run.ID)
	}
	run.FinishedAt = finished
	return nil
}

// GetRun fetches a single run by id.
func (s *SQLiteStore) GetRun(ctx context.Context, id int64) (*Run, error) {
	row := s.getRun.QueryRowContext(ctx, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %d: %w", id, err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, input_file, input_hash, periodicity, only_last, timestamps,
		       pages, revisions, skipped, pairs, started_at, finished_at, status, error
		FROM runs ORDER BY started_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	return collectRuns(rows)
}

// RunsForHash returns all runs recorded for an input fingerprint, newest
// first. Used to detect re-processing of an already-extracted dump.
func (s *SQLiteStore) RunsForHash(ctx context.Context, hash string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, input_file, input_hash, periodicity, only_last, timestamps,
		       pages, revisions, skipped, pairs, started_at, finished_at, status, error
		FROM runs WHERE input_hash = ? ORDER BY started_at DESC, id DESC
	`, hash)
	if err != nil {
		return nil, fmt.Errorf("runs for hash: %w", err)
	}
	defer rows.Close()

	return collectRuns(rows)
}

// GetSummary aggregates catalog-wide statistics.
func (s *SQLiteStore) GetSummary(ctx context.Context) (*Summary, error) {
	sum := &Summary{}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(status = 'completed'), 0),
		       COALESCE(SUM(status = 'failed'), 0),
		       COALESCE(SUM(pages), 0),
		       COALESCE(SUM(revisions), 0),
		       COALESCE(SUM(pairs), 0)
		FROM runs
	`).Scan(
		&sum.TotalRuns, &sum.CompletedRuns, &sum.FailedRuns,
		&sum.TotalPages, &sum.TotalRevisions, &sum.TotalPairs,
	)
	if err != nil {
		return nil, fmt.Errorf("catalog summary: %w", err)
	}

	// Aggregate results lose the column's declared type, so MAX comes
	// back as text; scan a string and parse it (handle empty catalog).
	if sum.TotalRuns > 0 {
		var lastStr string
		err = s.db.QueryRowContext(ctx, "SELECT MAX(started_at) FROM runs").Scan(&lastStr)
		if err != nil {
			return nil, fmt.Errorf("catalog summary: last run: %w", err)
		}
		sum.LastRun, _ = parseSQLiteTime(lastStr)
	}
	return sum, nil
}

// parseSQLiteTime tries the timestamp formats SQLite hands back for
// aggregate expressions.
func parseSQLiteTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp: %s", s)
}

// Close releases prepared statements. The caller owns the *sql.DB.
func (s *SQLiteStore) Close() error {
	for _, stmt := range []*sql.Stmt{s.insertRun, s.updateRun, s.getRun} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var r Run
	var finished sql.NullTime
	err := row.Scan(
		&r.ID, &r.InputFile, &r.InputHash, &r.Periodicity, &r.OnlyLast,
		&r.Timestamps, &r.Pages, &r.Revisions, &r.Skipped, &r.Pairs,
		&r.StartedAt, &finished, &r.Status, &r.Error,
	)
	if err != nil {
		return nil, err
	}
	if finished.Valid {
		r.FinishedAt = finished.Time
	}
	return &r, nil
}

func collectRuns(rows *sql.Rows) ([]Run, error) {
	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}
