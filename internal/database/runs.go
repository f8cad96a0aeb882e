package database

import (
	"crypto/rand"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"
)

// sqliteTimeLayout matches the format of SQLite's datetime('now').
const sqliteTimeLayout = "2006-01-02 15:04:05"

var runEntropy = ulid.Monotonic(rand.Reader, 0)

// NewRunID returns a time-ordered identifier for an export run.
func NewRunID(at time.Time) string {
	return ulid.MustNew(ulid.Timestamp(at), runEntropy).String()
}

// InsertExportRun records an export run. An empty ID is filled with a new ULID.
func (db *DB) InsertExportRun(r ExportRun) (string, error) {
	if r.ID == "" {
		r.ID = NewRunID(time.Now())
	}
	_, err := db.conn.Exec(
		`INSERT INTO export_runs
		(id, mode, note_id, selected_count, exported_count, failed_count, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Mode, r.NoteID, r.SelectedCount, r.ExportedCount, r.FailedCount,
		r.StartedAt, r.FinishedAt,
	)
	if err != nil {
		return "", err
	}
	return r.ID, nil
}

// GetRecentExportRuns returns the latest export runs, newest first.
func (db *DB) GetRecentExportRuns(limit int) ([]ExportRun, error) {
	rows, err := db.conn.Query(
		`SELECT id, mode, note_id, selected_count, exported_count, failed_count, started_at, finished_at
		FROM export_runs ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []ExportRun
	for rows.Next() {
		var r ExportRun
		if err := rows.Scan(&r.ID, &r.Mode, &r.NoteID, &r.SelectedCount, &r.ExportedCount,
			&r.FailedCount, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetLastExportRun returns the most recent export run, or nil if none exist.
func (db *DB) GetLastExportRun() (*ExportRun, error) {
	row := db.conn.QueryRow(
		`SELECT id, mode, note_id, selected_count, exported_count, failed_count, started_at, finished_at
		FROM export_runs ORDER BY id DESC LIMIT 1`,
	)
	var r ExportRun
	if err := row.Scan(&r.ID, &r.Mode, &r.NoteID, &r.SelectedCount, &r.ExportedCount,
		&r.FailedCount, &r.StartedAt, &r.FinishedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

// FormatTime formats t the way the store records timestamps.
func FormatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}
