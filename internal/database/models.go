package database

// ExportableNote is one row of the export selection: a raw note joined with
// its processing results. JSON-encoded columns are kept as raw text and
// decoded leniently by the notes package.
type ExportableNote struct {
	ID               int64
	Title            string
	Content          string
	CreatedAt        string
	Tags             *string // JSON array
	WordCount        int
	Concepts         *string // JSON array
	PrimaryTheme     *string
	SecondaryThemes  *string // JSON array
	OverallSentiment *string
	SentimentScore   *float64
	EmotionalTone    *string
	EnergyLevel      *string
	SentimentData    *string // JSON object
	ExportedAt       *string
}

// ExportState is the export bookkeeping of a raw note.
type ExportState struct {
	ID         int64
	Title      string
	CreatedAt  string
	Status     string
	Exported   bool
	ExportedAt *string
}

// NewRawNote holds the fields needed to insert a raw note.
type NewRawNote struct {
	Title     string
	Content   string
	Tags      []string
	CreatedAt string
	Status    string
}

// NewProcessedNote holds the enrichment written by the processing stage.
type NewProcessedNote struct {
	RawNoteID         int64
	Concepts          []string
	PrimaryTheme      string
	SecondaryThemes   []string
	OverallSentiment  string
	SentimentScore    *float64
	EmotionalTone     string
	EnergyLevel       string
	SentimentData     map[string]any
	SentimentAnalyzed bool
}

// ExportRun records one export invocation that selected at least one note.
type ExportRun struct {
	ID            string
	Mode          string // "batch" or "single"
	NoteID        *int64
	SelectedCount int
	ExportedCount int
	FailedCount   int
	StartedAt     string
	FinishedAt    string
}

// Stats contains aggregate database statistics.
type Stats struct {
	TotalNotes     int
	ProcessedNotes int
	AnalyzedNotes  int
	ExportedNotes  int
	PendingExport  int
	ExportRuns     int
}
