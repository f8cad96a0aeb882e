// Package notes decodes enriched note rows into the values the renderer works with.
package notes

import (
	"fmt"
	"strings"
	"time"

	"github.com/SlowSpeedChase/selene-n8n/internal/database"
)

// Note is a processed, sentiment-analyzed note ready to be rendered.
type Note struct {
	ID        int64
	Title     string
	Content   string
	CreatedAt time.Time
	WordCount int
	Tags      []string

	PrimaryTheme     string
	SecondaryThemes  []string
	Concepts         []string
	OverallSentiment string
	SentimentScore   *float64 // nil when the analysis stage left it unset
	EmotionalTone    string
	EnergyLevel      string
	Sentiment        SentimentData
}

// ADHDMarkers are the attention-related flags set by the analysis stage.
type ADHDMarkers struct {
	Overwhelm            bool
	Hyperfocus           bool
	ExecutiveDysfunction bool
}

// SentimentData is the structured sentiment bundle of a note.
type SentimentData struct {
	ADHDMarkers        ADHDMarkers
	KeyEmotions        []string
	StressIndicators   bool
	AnalysisConfidence *float64
	Raw                map[string]any
}

// Score returns the sentiment score, or 0.5 when it is absent.
func (n Note) Score() float64 {
	if n.SentimentScore == nil {
		return 0.5
	}
	return *n.SentimentScore
}

// Confidence returns the analysis confidence, or 0.5 when it is absent.
func (s SentimentData) Confidence() float64 {
	if s.AnalysisConfidence == nil {
		return 0.5
	}
	return *s.AnalysisConfidence
}

// FromRow converts a store row into a Note. Malformed JSON columns degrade
// to empty values; only an unparseable creation timestamp is an error.
func FromRow(r database.ExportableNote) (Note, error) {
	created, err := ParseCreatedAt(r.CreatedAt)
	if err != nil {
		return Note{}, err
	}
	return Note{
		ID:               r.ID,
		Title:            r.Title,
		Content:          r.Content,
		CreatedAt:        created,
		WordCount:        r.WordCount,
		Tags:             ParseList(r.Tags),
		PrimaryTheme:     deref(r.PrimaryTheme),
		SecondaryThemes:  ParseList(r.SecondaryThemes),
		Concepts:         ParseList(r.Concepts),
		OverallSentiment: deref(r.OverallSentiment),
		SentimentScore:   r.SentimentScore,
		EmotionalTone:    deref(r.EmotionalTone),
		EnergyLevel:      deref(r.EnergyLevel),
		Sentiment:        DecodeSentiment(ParseObject(r.SentimentData)),
	}, nil
}

// DecodeSentiment extracts the known fields of a sentiment bundle. Fields of
// the wrong type are treated as absent.
func DecodeSentiment(raw map[string]any) SentimentData {
	if raw == nil {
		raw = map[string]any{}
	}
	s := SentimentData{Raw: raw}

	if markers, ok := raw["adhd_markers"].(map[string]any); ok {
		s.ADHDMarkers = ADHDMarkers{
			Overwhelm:            truthy(markers["overwhelm"]),
			Hyperfocus:           truthy(markers["hyperfocus"]),
			ExecutiveDysfunction: truthy(markers["executive_dysfunction"]),
		}
	}
	if emotions, ok := raw["key_emotions"].([]any); ok {
		s.KeyEmotions = stringsOf(emotions)
	}
	s.StressIndicators = truthy(raw["stress_indicators"])
	if c, ok := raw["analysis_confidence"].(float64); ok {
		s.AnalysisConfidence = &c
	}
	return s
}

var createdAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseCreatedAt parses an ISO-8601 creation timestamp. A trailing "Z" is
// read as +00:00. The wall clock of the stored offset is preserved; values
// without an offset are read as UTC.
func ParseCreatedAt(s string) (time.Time, error) {
	v := strings.TrimSpace(s)
	if strings.HasSuffix(v, "Z") || strings.HasSuffix(v, "z") {
		v = v[:len(v)-1] + "+00:00"
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid created_at %q", s)
}

// truthy follows the loose truth of the upstream JSON: false, 0, "", null,
// and empty containers are false.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
