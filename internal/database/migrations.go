package database

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
//
// Version 1 mirrors the columns of the upstream note tables that the exporter
// reads and updates. Existing upstream databases are stamped as version 1
// without running it (see isUpstreamDB).
var migrations = []Migration{
	{
		Version:     1,
		Description: "note tables",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS raw_notes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    content TEXT NOT NULL,
    content_hash TEXT,
    source_type TEXT DEFAULT 'drafts',
    word_count INTEGER DEFAULT 0,
    character_count INTEGER DEFAULT 0,
    tags TEXT,
    created_at TEXT NOT NULL,
    imported_at TEXT DEFAULT (datetime('now')),
    processed_at TEXT,
    exported_at TEXT,
    status TEXT DEFAULT 'pending',
    exported_to_obsidian INTEGER DEFAULT 0,
    test_run TEXT
);

CREATE TABLE IF NOT EXISTS processed_notes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    raw_note_id INTEGER NOT NULL UNIQUE REFERENCES raw_notes(id),
    concepts TEXT,
    primary_theme TEXT,
    secondary_themes TEXT,
    overall_sentiment TEXT,
    sentiment_score REAL,
    emotional_tone TEXT,
    energy_level TEXT,
    sentiment_data TEXT,
    sentiment_analyzed INTEGER DEFAULT 0,
    processed_at TEXT DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_raw_notes_status ON raw_notes(status);
CREATE INDEX IF NOT EXISTS idx_raw_notes_exported ON raw_notes(exported_to_obsidian);
CREATE INDEX IF NOT EXISTS idx_raw_notes_created ON raw_notes(created_at);
CREATE INDEX IF NOT EXISTS idx_processed_notes_raw ON processed_notes(raw_note_id);
`)
			return err
		},
	},
	{
		Version:     2,
		Description: "export run reports",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS export_runs (
    id TEXT PRIMARY KEY,
    mode TEXT NOT NULL CHECK(mode IN ('batch', 'single')),
    note_id INTEGER,
    selected_count INTEGER DEFAULT 0,
    exported_count INTEGER DEFAULT 0,
    failed_count INTEGER DEFAULT 0,
    started_at TEXT NOT NULL,
    finished_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_export_runs_finished ON export_runs(finished_at);
`)
			return err
		},
	},
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
