package db

import (
	"database/sql"
	"fmt"
	"time"
)

// Run statuses.
const (
	StatusRunning = "running"
	StatusOK      = "ok"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// Run is one recorded stage execution.
type Run struct {
	RunID      int64
	Day        string
	Stage      string
	Status     string
	StartedAt  time.Time
	FinishedAt time.Time
	Total      int64
	Stored     int64
	Skipped    int64
	Failures   int64
	Detail     string
}

// RunTotals carries the counters recorded when a run finishes.
type RunTotals struct {
	Total    int64
	Stored   int64
	Skipped  int64
	Failures int64
}

// StartRun records a stage starting and returns its run ID.
func (db *DB) StartRun(day, stage string) (int64, error) {
	result, err := db.Exec(
		`INSERT INTO runs (day, stage, status, started_at) VALUES (?, ?, ?, ?)`,
		day, stage, StatusRunning, time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record run start: %w", err)
	}
	return result.LastInsertId()
}

// FinishRun records a run's terminal status and counters.
func (db *DB) FinishRun(runID int64, status string, totals RunTotals, detail string) error {
	_, err := db.Exec(
		`UPDATE runs
		 SET status = ?, finished_at = ?, total = ?, stored = ?, skipped = ?, failures = ?, detail = ?
		 WHERE run_id = ?`,
		status, time.Now().UTC(), totals.Total, totals.Stored, totals.Skipped, totals.Failures, detail, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to record run finish: %w", err)
	}
	return nil
}

// RecentRuns lists the most recent runs, newest first.
func (db *DB) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(
		`SELECT run_id, day, stage, status, started_at, finished_at, total, stored, skipped, failures, detail
		 FROM runs ORDER BY run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var finished sql.NullTime
		var detail sql.NullString
		if err := rows.Scan(&r.RunID, &r.Day, &r.Stage, &r.Status, &r.StartedAt, &finished,
			&r.Total, &r.Stored, &r.Skipped, &r.Failures, &detail); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if finished.Valid {
			r.FinishedAt = finished.Time
		}
		if detail.Valid {
			r.Detail = detail.String
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
