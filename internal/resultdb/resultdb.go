// Package resultdb persists TS-map run summaries in a local sqlite database
// so repeated runs over the same field can be compared later.
package resultdb

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/skywatch-data/significance.report/internal/monitoring"
)

// schemaSQL contains the statements creating the run summary table.
//
//go:embed schema.sql
var schemaSQL string

// DB wraps the sqlite handle holding run summaries.
type DB struct {
	*sql.DB
}

// RunRecord is one stored run summary.
type RunRecord struct {
	ID         int64
	RunID      string
	CreatedAt  time.Time
	ConfigJSON string
	NPixels    int
	PeakTS     float64
	PeakSqrtTS float64
	PeakRow    int
	PeakCol    int
	PeakFlux   float64
	Elapsed    time.Duration
	ReportPath string
}

// Open opens (creating if needed) the run store at path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialise run store schema: %w", err)
	}
	monitoring.Logf("initialised run store at %s", path)
	return &DB{db}, nil
}

// SaveRun inserts a run summary and returns its row id.
func (db *DB) SaveRun(r *RunRecord) (int64, error) {
	query := `
		INSERT INTO ts_runs (run_id, config_json, n_pixels, peak_ts, peak_sqrt_ts,
			peak_row, peak_col, peak_flux, elapsed_ms, report_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := db.Exec(query, r.RunID, r.ConfigJSON, r.NPixels, r.PeakTS, r.PeakSqrtTS,
		r.PeakRow, r.PeakCol, r.PeakFlux, r.Elapsed.Milliseconds(), r.ReportPath)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run %s: %w", r.RunID, err)
	}
	return res.LastInsertId()
}

// ListRuns returns the most recent run summaries, newest first.
func (db *DB) ListRuns(limit int) ([]RunRecord, error) {
	query := `
		SELECT id, run_id, created_at, config_json, n_pixels, peak_ts, peak_sqrt_ts,
			peak_row, peak_col, peak_flux, elapsed_ms, report_path
		FROM ts_runs ORDER BY created_at DESC, id DESC LIMIT ?
	`
	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		var elapsedMS int64
		if err := rows.Scan(&r.ID, &r.RunID, &r.CreatedAt, &r.ConfigJSON, &r.NPixels,
			&r.PeakTS, &r.PeakSqrtTS, &r.PeakRow, &r.PeakCol, &r.PeakFlux,
			&elapsedMS, &r.ReportPath); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		r.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRun looks a run summary up by its run id.
func (db *DB) GetRun(runID string) (*RunRecord, error) {
	query := `
		SELECT id, run_id, created_at, config_json, n_pixels, peak_ts, peak_sqrt_ts,
			peak_row, peak_col, peak_flux, elapsed_ms, report_path
		FROM ts_runs WHERE run_id = ?
	`
	var r RunRecord
	var elapsedMS int64
	err := db.QueryRow(query, runID).Scan(&r.ID, &r.RunID, &r.CreatedAt, &r.ConfigJSON,
		&r.NPixels, &r.PeakTS, &r.PeakSqrtTS, &r.PeakRow, &r.PeakCol, &r.PeakFlux,
		&elapsedMS, &r.ReportPath)
	if err != nil {
		return nil, err
	}
	r.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	return &r, nil
}
