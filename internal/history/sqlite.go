package history

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists runs to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	logger *zap.Logger
	mu     sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(logger *zap.Logger, dbPath string) (*SQLiteRecorder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Debug("sqlite history opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			total_savings REAL NOT NULL,
			chosen_plan   TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS allocations (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id   INTEGER NOT NULL REFERENCES runs(id),
			card     TEXT NOT NULL,
			category TEXT NOT NULL,
			amount   REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_allocations_run ON allocations(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores one run and its allocation rows in a transaction.
func (r *SQLiteRecorder) RecordRun(run Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := run.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.Exec(`INSERT INTO runs (timestamp, total_savings, chosen_plan) VALUES (?,?,?)`,
		ts.Unix(), run.TotalSavings, run.ChosenPlan)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	runID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}

	for _, a := range run.Allocations {
		if _, err := tx.Exec(`INSERT INTO allocations (run_id, card, category, amount) VALUES (?,?,?,?)`,
			runID, a.Card, a.Category, a.Amount); err != nil {
			return fmt.Errorf("insert allocation: %w", err)
		}
	}

	return tx.Commit()
}

// RecentRuns returns up to limit runs, newest first, without allocations.
func (r *SQLiteRecorder) RecentRuns(limit int) ([]Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(
		`SELECT timestamp, total_savings, chosen_plan FROM runs ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var ts int64
		var run Run
		if err := rows.Scan(&ts, &run.TotalSavings, &run.ChosenPlan); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Timestamp = time.Unix(ts, 0)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close releases the database handle.
func (r *SQLiteRecorder) Close() error {
	r.logger.Debug("closing sqlite history")
	return r.db.Close()
}
