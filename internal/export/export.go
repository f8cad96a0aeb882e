// Package export runs export passes: select notes, render them, publish every
// view and mark each note exported once all of its writes succeeded.
package export

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/SlowSpeedChase/selene-n8n/internal/database"
	"github.com/SlowSpeedChase/selene-n8n/internal/notes"
	"github.com/SlowSpeedChase/selene-n8n/internal/render"
	"github.com/SlowSpeedChase/selene-n8n/internal/vault"
)

// ErrInvalidNoteID is returned by ParseNoteID for non-integer arguments.
var ErrInvalidNoteID = errors.New("invalid note ID")

// Store is the part of the note store an export pass uses.
type Store interface {
	GetNotesForExport(limit int) ([]database.ExportableNote, error)
	GetNoteForExport(id int64) (*database.ExportableNote, error)
	MarkExported(id int64, at time.Time) error
	InsertExportRun(r database.ExportRun) (string, error)
}

const (
	ModeBatch  = "batch"
	ModeSingle = "single"
)

// Outcome is the result of exporting one note.
type Outcome struct {
	NoteID      int64
	Title       string
	Placements  []vault.Placement
	HubsCreated []string
	Err         error
}

// Result holds the results of one export pass.
type Result struct {
	Mode        string
	RequestedID *int64
	RunID       string
	DryRun      bool
	Selected    int
	Exported    int
	Failed      int
	Outcomes    []Outcome
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Exporter runs export passes against one store and one vault.
type Exporter struct {
	store      Store
	pub        *vault.Publisher
	batchLimit int
	now        func() time.Time
}

// New creates an Exporter. A batchLimit <= 0 uses the store default.
func New(store Store, pub *vault.Publisher, batchLimit int) *Exporter {
	return &Exporter{store: store, pub: pub, batchLimit: batchLimit, now: time.Now}
}

// Run exports the note with the given ID, or a batch of pending notes when
// noteID is nil. Per-note failures are logged and counted; only a failed
// selection query is returned as an error.
func (e *Exporter) Run(ctx context.Context, noteID *int64) (*Result, error) {
	r := e.newResult(noteID)

	rows, err := e.selectNotes(noteID)
	if err != nil {
		return r, err
	}
	r.Selected = len(rows)

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			log.Printf("Export interrupted, %d note(s) left for the next pass", r.Selected-len(r.Outcomes))
			break
		}
		out := e.exportOne(row)
		r.Outcomes = append(r.Outcomes, out)
		if out.Err != nil {
			log.Printf("Error exporting note %d: %v", row.ID, out.Err)
			r.Failed++
			continue
		}
		r.Exported++
	}
	r.FinishedAt = e.now()

	if r.Selected > 0 {
		e.recordRun(r)
	}
	return r, nil
}

// DryRun shows what a pass would export without writing or marking anything.
func (e *Exporter) DryRun(noteID *int64) (*Result, error) {
	r := e.newResult(noteID)
	r.DryRun = true

	rows, err := e.selectNotes(noteID)
	if err != nil {
		return r, err
	}
	r.Selected = len(rows)

	for _, row := range rows {
		out := Outcome{NoteID: row.ID, Title: row.Title}
		n, err := notes.FromRow(row)
		if err != nil {
			out.Err = err
			r.Failed++
		} else {
			out.Placements = e.pub.Plan(render.RoutingFor(n))
			r.Exported++
		}
		r.Outcomes = append(r.Outcomes, out)
	}
	r.FinishedAt = e.now()
	return r, nil
}

func (e *Exporter) newResult(noteID *int64) *Result {
	r := &Result{Mode: ModeBatch, RequestedID: noteID, StartedAt: e.now()}
	if noteID != nil {
		r.Mode = ModeSingle
	}
	return r
}

func (e *Exporter) selectNotes(noteID *int64) ([]database.ExportableNote, error) {
	if noteID == nil {
		rows, err := e.store.GetNotesForExport(e.batchLimit)
		if err != nil {
			return nil, fmt.Errorf("selecting notes for export: %w", err)
		}
		return rows, nil
	}
	row, err := e.store.GetNoteForExport(*noteID)
	if err != nil {
		return nil, fmt.Errorf("selecting note %d: %w", *noteID, err)
	}
	if row == nil {
		return nil, nil
	}
	return []database.ExportableNote{*row}, nil
}

// exportOne renders and publishes one note, then flips its export flag.
// The flag is only set after every view write succeeded.
func (e *Exporter) exportOne(row database.ExportableNote) Outcome {
	out := Outcome{NoteID: row.ID, Title: row.Title}

	n, err := notes.FromRow(row)
	if err != nil {
		out.Err = fmt.Errorf("decode: %w", err)
		return out
	}

	now := e.now()
	doc := render.Render(n, now)
	res, err := e.pub.Publish(doc)
	out.Placements = res.Placements
	out.HubsCreated = res.HubsCreated
	if err != nil {
		out.Err = err
		return out
	}

	if err := e.store.MarkExported(row.ID, now); err != nil {
		out.Err = fmt.Errorf("mark exported: %w", err)
		return out
	}
	return out
}

func (e *Exporter) recordRun(r *Result) {
	run := database.ExportRun{
		ID:            database.NewRunID(r.StartedAt),
		Mode:          r.Mode,
		NoteID:        r.RequestedID,
		SelectedCount: r.Selected,
		ExportedCount: r.Exported,
		FailedCount:   r.Failed,
		StartedAt:     database.FormatTime(r.StartedAt),
		FinishedAt:    database.FormatTime(r.FinishedAt),
	}
	id, err := e.store.InsertExportRun(run)
	if err != nil {
		log.Printf("Warning: failed to record export run: %v", err)
		return
	}
	r.RunID = id
}

// ParseNoteID parses the optional note ID argument.
func ParseNoteID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNoteID, arg)
	}
	return id, nil
}
