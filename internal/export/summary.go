package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Summary is the JSON object printed after an export pass.
type Summary struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	ExportedCount int    `json:"exported_count"`
	NoteID        *int64 `json:"note_id,omitempty"`
	Timestamp     string `json:"timestamp,omitempty"`
}

// ErrorSummary is the JSON object printed for usage errors.
type ErrorSummary struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// InvalidNoteIDSummary is reported when the note ID argument is not an integer.
func InvalidNoteIDSummary() ErrorSummary {
	return ErrorSummary{
		Success: false,
		Error:   "Invalid noteId provided",
		Message: "noteId must be an integer",
	}
}

// Summary builds the JSON summary of a pass. A pass that selected nothing
// reports success with a zero count and no timestamp.
func (r *Result) Summary() Summary {
	if r.Selected == 0 {
		msg := "No notes ready for export"
		if r.RequestedID != nil {
			msg = fmt.Sprintf("Note %d not found or not ready for export", *r.RequestedID)
		}
		return Summary{Success: true, Message: msg}
	}

	var msg string
	switch {
	case r.DryRun:
		msg = fmt.Sprintf("[dry-run] Would export %d note(s)", r.Exported)
	case r.RequestedID != nil:
		msg = "Successfully exported specific note"
	default:
		msg = fmt.Sprintf("Successfully exported %d note(s)", r.Exported)
	}
	return Summary{
		Success:       true,
		Message:       msg,
		ExportedCount: r.Exported,
		NoteID:        r.RequestedID,
		Timestamp:     r.FinishedAt.Format(time.RFC3339),
	}
}

// WriteJSON writes v as a single JSON line.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
