package notes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SlowSpeedChase/selene-n8n/internal/database"
)

func sp(s string) *string { return &s }

func TestParseList(t *testing.T) {
	tests := []struct {
		name string
		in   *string
		want []string
	}{
		{"nil", nil, []string{}},
		{"empty", sp(""), []string{}},
		{"null", sp("null"), []string{}},
		{"malformed", sp("[kilns"), []string{}},
		{"object", sp(`{"a":1}`), []string{}},
		{"strings", sp(`["kilns","glazes"]`), []string{"kilns", "glazes"}},
		{"mixed", sp(`["a", 2, null, true]`), []string{"a", "2", "true"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseList(tt.in))
		})
	}
}

func TestParseObject(t *testing.T) {
	assert.Empty(t, ParseObject(nil))
	assert.Empty(t, ParseObject(sp("not json")))
	assert.Empty(t, ParseObject(sp(`["list"]`)))
	assert.Equal(t, map[string]any{"k": "v"}, ParseObject(sp(`{"k":"v"}`)))
}

func TestParseCreatedAt(t *testing.T) {
	tests := []struct {
		in       string
		wantDate string
		wantTime string
	}{
		{"2026-02-06T10:15:00Z", "2026-02-06", "10:15"},
		{"2026-02-06T10:15:00.123Z", "2026-02-06", "10:15"},
		{"2026-02-06T23:30:00-05:00", "2026-02-06", "23:30"},
		{"2026-02-06 10:15:00", "2026-02-06", "10:15"},
		{"2026-02-06T10:15:00", "2026-02-06", "10:15"},
		{"2026-02-06", "2026-02-06", "00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCreatedAt(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDate, got.Format("2006-01-02"))
			assert.Equal(t, tt.wantTime, got.Format("15:04"))
		})
	}

	_, err := ParseCreatedAt("yesterday")
	assert.Error(t, err)
}

func TestParseCreatedAtNormalizesZ(t *testing.T) {
	z, err := ParseCreatedAt("2026-02-06T10:15:00Z")
	require.NoError(t, err)
	_, offset := z.Zone()
	assert.Equal(t, 0, offset)
	assert.True(t, z.Equal(time.Date(2026, 2, 6, 10, 15, 0, 0, time.UTC)))
}

func TestDecodeSentiment(t *testing.T) {
	s := DecodeSentiment(ParseObject(sp(`{
		"adhd_markers": {"overwhelm": true, "hyperfocus": false, "executive_dysfunction": 1},
		"key_emotions": ["joy", "relief"],
		"stress_indicators": true,
		"analysis_confidence": 0.9,
		"extra": "kept"
	}`)))

	assert.True(t, s.ADHDMarkers.Overwhelm)
	assert.False(t, s.ADHDMarkers.Hyperfocus)
	assert.True(t, s.ADHDMarkers.ExecutiveDysfunction)
	assert.Equal(t, []string{"joy", "relief"}, s.KeyEmotions)
	assert.True(t, s.StressIndicators)
	assert.InDelta(t, 0.9, s.Confidence(), 1e-9)
	assert.Equal(t, "kept", s.Raw["extra"])
}

func TestDecodeSentimentWrongTypes(t *testing.T) {
	s := DecodeSentiment(ParseObject(sp(`{
		"adhd_markers": "yes",
		"key_emotions": "joy",
		"analysis_confidence": "high"
	}`)))

	assert.Equal(t, ADHDMarkers{}, s.ADHDMarkers)
	assert.Empty(t, s.KeyEmotions)
	assert.InDelta(t, 0.5, s.Confidence(), 1e-9)
}

func TestFromRow(t *testing.T) {
	row := database.ExportableNote{
		ID:              3,
		Title:           "Kiln log",
		Content:         "Fired the kiln.",
		CreatedAt:       "2026-02-06T10:15:00Z",
		Tags:            sp(`["pottery"]`),
		WordCount:       3,
		Concepts:        sp(`["kilns","glazes"]`),
		PrimaryTheme:    sp("craft"),
		SecondaryThemes: sp("broken"),
		EnergyLevel:     sp("high"),
		SentimentData:   nil,
	}

	n, err := FromRow(row)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n.ID)
	assert.Equal(t, []string{"pottery"}, n.Tags)
	assert.Equal(t, []string{"kilns", "glazes"}, n.Concepts)
	assert.Empty(t, n.SecondaryThemes)
	assert.Equal(t, "craft", n.PrimaryTheme)
	assert.Equal(t, "", n.EmotionalTone)
	assert.InDelta(t, 0.5, n.Score(), 1e-9)
	assert.NotNil(t, n.Sentiment.Raw)
}

func TestFromRowKeepsZeroScore(t *testing.T) {
	zero := 0.0
	n, err := FromRow(database.ExportableNote{CreatedAt: "2026-02-06", SentimentScore: &zero})
	require.NoError(t, err)
	assert.Equal(t, 0.0, n.Score())
}

func TestFromRowBadTimestamp(t *testing.T) {
	_, err := FromRow(database.ExportableNote{ID: 9, CreatedAt: "not a date"})
	assert.Error(t, err)
}
