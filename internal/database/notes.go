package database

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultBatchLimit caps how many notes a batch pass selects.
const DefaultBatchLimit = 50

const exportColumns = `rn.id, rn.title, rn.content, rn.created_at, rn.tags, rn.word_count,
		pn.concepts, pn.primary_theme, pn.secondary_themes,
		pn.overall_sentiment, pn.sentiment_score, pn.emotional_tone,
		pn.energy_level, pn.sentiment_data, rn.exported_at`

// GetNotesForExport returns notes that are processed, sentiment-analyzed and
// not yet exported, most recent first. A limit <= 0 or above
// DefaultBatchLimit uses DefaultBatchLimit.
func (db *DB) GetNotesForExport(limit int) ([]ExportableNote, error) {
	if limit <= 0 || limit > DefaultBatchLimit {
		limit = DefaultBatchLimit
	}
	rows, err := db.conn.Query(
		`SELECT `+exportColumns+`
		FROM raw_notes rn JOIN processed_notes pn ON rn.id = pn.raw_note_id
		WHERE rn.exported_to_obsidian = 0
			AND rn.status = 'processed'
			AND pn.sentiment_analyzed = 1
		ORDER BY rn.created_at DESC
		LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanExportableNotes(rows)
}

// GetNoteForExport returns the note with the given ID if it is processed and
// sentiment-analyzed, regardless of its export flag. Returns nil if no such
// note exists.
func (db *DB) GetNoteForExport(id int64) (*ExportableNote, error) {
	row := db.conn.QueryRow(
		`SELECT `+exportColumns+`
		FROM raw_notes rn JOIN processed_notes pn ON rn.id = pn.raw_note_id
		WHERE rn.id = ?
			AND rn.status = 'processed'
			AND pn.sentiment_analyzed = 1`, id,
	)
	n, err := scanExportableNote(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

// GetExportedNotes returns exported notes, most recently exported first.
// A limit <= 0 returns all of them.
func (db *DB) GetExportedNotes(limit int) ([]ExportableNote, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.conn.Query(
		`SELECT `+exportColumns+`
		FROM raw_notes rn JOIN processed_notes pn ON rn.id = pn.raw_note_id
		WHERE rn.exported_to_obsidian = 1
		ORDER BY rn.exported_at DESC, rn.id DESC
		LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanExportableNotes(rows)
}

// MarkExported flips the export flag and records the export time.
func (db *DB) MarkExported(id int64, at time.Time) error {
	_, err := db.conn.Exec(
		`UPDATE raw_notes SET exported_to_obsidian = 1, exported_at = ? WHERE id = ?`,
		FormatTime(at), id,
	)
	return err
}

// GetExportState returns the export bookkeeping for a raw note, or nil.
func (db *DB) GetExportState(id int64) (*ExportState, error) {
	row := db.conn.QueryRow(
		`SELECT id, title, created_at, status, exported_to_obsidian, exported_at
		FROM raw_notes WHERE id = ?`, id,
	)
	var s ExportState
	var exported int
	if err := row.Scan(&s.ID, &s.Title, &s.CreatedAt, &s.Status, &exported, &s.ExportedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	s.Exported = exported != 0
	return &s, nil
}

// InsertRawNote inserts a raw note and returns its ID. Word and character
// counts are derived from the content. An empty status defaults to "pending".
func (db *DB) InsertRawNote(n NewRawNote) (int64, error) {
	status := n.Status
	if status == "" {
		status = "pending"
	}
	tags, err := json.Marshal(nonNil(n.Tags))
	if err != nil {
		return 0, err
	}
	result, err := db.conn.Exec(
		`INSERT INTO raw_notes (title, content, tags, word_count, character_count, created_at, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.Title, n.Content, string(tags), len(strings.Fields(n.Content)),
		utf8.RuneCountInString(n.Content), n.CreatedAt, status,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// InsertProcessedNote stores enrichment for a raw note and marks the raw note
// as processed.
func (db *DB) InsertProcessedNote(p NewProcessedNote) (int64, error) {
	concepts, err := json.Marshal(nonNil(p.Concepts))
	if err != nil {
		return 0, err
	}
	secondary, err := json.Marshal(nonNil(p.SecondaryThemes))
	if err != nil {
		return 0, err
	}
	sentiment := []byte("{}")
	if p.SentimentData != nil {
		if sentiment, err = json.Marshal(p.SentimentData); err != nil {
			return 0, err
		}
	}
	analyzed := 0
	if p.SentimentAnalyzed {
		analyzed = 1
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() //nolint:errcheck

	result, err := tx.Exec(
		`INSERT INTO processed_notes
		(raw_note_id, concepts, primary_theme, secondary_themes, overall_sentiment,
		 sentiment_score, emotional_tone, energy_level, sentiment_data, sentiment_analyzed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.RawNoteID, string(concepts), p.PrimaryTheme, string(secondary), p.OverallSentiment,
		p.SentimentScore, p.EmotionalTone, p.EnergyLevel, string(sentiment), analyzed,
	)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	if _, err := tx.Exec(
		`UPDATE raw_notes SET status = 'processed', processed_at = datetime('now') WHERE id = ?`,
		p.RawNoteID,
	); err != nil {
		return 0, err
	}
	return id, tx.Commit()
}

// GetStats returns aggregate database statistics.
func (db *DB) GetStats() (*Stats, error) {
	s := &Stats{}

	queries := []struct {
		sql  string
		dest *int
	}{
		{"SELECT COUNT(*) FROM raw_notes", &s.TotalNotes},
		{"SELECT COUNT(*) FROM raw_notes WHERE status = 'processed'", &s.ProcessedNotes},
		{"SELECT COUNT(*) FROM processed_notes WHERE sentiment_analyzed = 1", &s.AnalyzedNotes},
		{"SELECT COUNT(*) FROM raw_notes WHERE exported_to_obsidian = 1", &s.ExportedNotes},
		{`SELECT COUNT(*) FROM raw_notes rn JOIN processed_notes pn ON rn.id = pn.raw_note_id
			WHERE rn.exported_to_obsidian = 0 AND rn.status = 'processed' AND pn.sentiment_analyzed = 1`, &s.PendingExport},
		{"SELECT COUNT(*) FROM export_runs", &s.ExportRuns},
	}

	for _, q := range queries {
		if err := db.conn.QueryRow(q.sql).Scan(q.dest); err != nil {
			return nil, err
		}
	}

	return s, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExportableNotes(rows *sql.Rows) ([]ExportableNote, error) {
	var notes []ExportableNote
	for rows.Next() {
		n, err := scanExportableNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

func scanExportableNote(row rowScanner) (*ExportableNote, error) {
	var n ExportableNote
	var wordCount sql.NullInt64
	if err := row.Scan(&n.ID, &n.Title, &n.Content, &n.CreatedAt, &n.Tags, &wordCount,
		&n.Concepts, &n.PrimaryTheme, &n.SecondaryThemes,
		&n.OverallSentiment, &n.SentimentScore, &n.EmotionalTone,
		&n.EnergyLevel, &n.SentimentData, &n.ExportedAt); err != nil {
		return nil, err
	}
	n.WordCount = int(wordCount.Int64)
	return &n, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
