package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/SlowSpeedChase/selene-n8n/internal/notes"
)

func fp(f float64) *float64 { return &f }

func sampleNote() notes.Note {
	conf := 0.83
	return notes.Note{
		ID:               12,
		Title:            `Kiln "test" firing`,
		Content:          "Fired the kiln today. Glazes came out glossy! I need to order more cone 6 clay.\n- [ ] clean the shelves",
		CreatedAt:        time.Date(2026, 2, 6, 10, 15, 0, 0, time.UTC),
		WordCount:        20,
		Tags:             []string{"pottery"},
		PrimaryTheme:     "craft",
		SecondaryThemes:  []string{"learning"},
		Concepts:         []string{"kilns", "glazes"},
		OverallSentiment: "positive",
		SentimentScore:   fp(0.8),
		EmotionalTone:    "excited",
		EnergyLevel:      "high",
		Sentiment: notes.SentimentData{
			ADHDMarkers:        notes.ADHDMarkers{Hyperfocus: true},
			KeyEmotions:        []string{"pride"},
			AnalysisConfidence: &conf,
		},
	}
}

type frontmatterFields struct {
	Title          string   `yaml:"title"`
	Date           string   `yaml:"date"`
	Time           string   `yaml:"time"`
	Day            string   `yaml:"day"`
	Theme          string   `yaml:"theme"`
	Energy         string   `yaml:"energy"`
	SentimentScore float64  `yaml:"sentiment_score"`
	Concepts       []string `yaml:"concepts"`
	Tags           []string `yaml:"tags"`
	ADHDMarkers    struct {
		Hyperfocus bool `yaml:"hyperfocus"`
	} `yaml:"adhd_markers"`
	ActionItems int  `yaml:"action_items"`
	ReadingTime int  `yaml:"reading_time"`
	Automated   bool `yaml:"automated"`
}

func parseFrontmatter(t *testing.T, md string) frontmatterFields {
	t.Helper()
	require.True(t, strings.HasPrefix(md, "---\n"))
	end := strings.Index(md[4:], "\n---")
	require.GreaterOrEqual(t, end, 0)
	var fm frontmatterFields
	require.NoError(t, yaml.Unmarshal([]byte(md[4:4+end]), &fm))
	return fm
}

func TestRenderFrontmatter(t *testing.T) {
	doc := Render(sampleNote(), time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC))
	fm := parseFrontmatter(t, doc.Markdown)

	assert.Equal(t, `Kiln "test" firing`, fm.Title)
	assert.Equal(t, "2026-02-06", fm.Date)
	assert.Equal(t, "10:15", fm.Time)
	assert.Equal(t, "Friday", fm.Day)
	assert.Equal(t, "craft", fm.Theme)
	assert.InDelta(t, 0.8, fm.SentimentScore, 1e-9)
	assert.Equal(t, []string{"kilns", "glazes"}, fm.Concepts)
	assert.Equal(t, []string{"craft", "learning", "pottery", "energy-high", "mood-excited",
		"sentiment-positive", "adhd/hyperfocus"}, fm.Tags)
	assert.True(t, fm.ADHDMarkers.Hyperfocus)
	assert.Equal(t, 2, fm.ActionItems)
	assert.Equal(t, 1, fm.ReadingTime)
	assert.True(t, fm.Automated)
}

func TestRenderSections(t *testing.T) {
	doc := Render(sampleNote(), time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC))
	md := doc.Markdown

	ordered := []string{
		"# 🚀 Kiln \"test\" firing",
		"## 🎯 Status at a Glance",
		"| Energy | ⚡ HIGH |",
		"| Sentiment | ✅ positive | Overall tone (80%) |",
		"| ADHD | 🎯 HYPERFOCUS |",
		"| Actions | 🎯 2 items |",
		"**🏷️ Theme**: [[Themes/craft]] • [[Themes/learning]]",
		"**💡 Concepts**: [[Concepts/kilns]] • [[Concepts/glazes]]",
		"> Fired the kiln today. Glazes came out glossy",
		"> **Why this matters:** Related to kilns, glazes",
		"## ✅ Action Items Detected",
		"- [ ] clean the shelves",
		"- [ ] order more cone 6 clay.",
		"## 📝 Full Content",
		"## 🧠 ADHD Insights",
		"  - ⚡ Great time for complex tasks",
		"  - 🎯 Hyperfocus detected - valuable insights likely!",
		"### Key Emotions",
		"- **What was I thinking about?** kilns, glazes",
		"## 📊 Processing Metadata",
		"- **Processed**: 2026-02-07",
		"- **Sentiment Confidence**: 83%",
	}
	pos := 0
	for _, want := range ordered {
		idx := strings.Index(md[pos:], want)
		require.GreaterOrEqual(t, idx, 0, "missing or out of order: %q", want)
		pos += idx + len(want)
	}

	assert.Equal(t, []string{"clean the shelves", "order more cone 6 clay."}, doc.ActionItems)
}

func TestRenderOmitsEmptyActionItems(t *testing.T) {
	n := sampleNote()
	n.Content = "Quiet afternoon."
	doc := Render(n, time.Now())
	assert.NotContains(t, doc.Markdown, "Action Items Detected")
	assert.Contains(t, doc.Markdown, "| Actions | 🎯 0 items |")
	assert.Empty(t, doc.ActionItems)
}

func TestRenderDefaults(t *testing.T) {
	n := notes.Note{
		Title:       "Bare",
		Content:     "Nothing much.",
		CreatedAt:   time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC),
		EnergyLevel: "volcanic",
		Sentiment:   notes.DecodeSentiment(nil),
	}
	doc := Render(n, time.Now())
	md := doc.Markdown

	assert.Contains(t, md, "sentiment_score: 0.5\n")
	assert.Contains(t, md, "| Energy | 🔋 VOLCANIC |")
	assert.Contains(t, md, "| ADHD | ✨ BASELINE |")
	assert.Contains(t, md, "Overall tone (50%)")
	assert.Contains(t, md, "- **Sentiment Confidence**: 50%")
	assert.Contains(t, md, "concepts: []\n")
	assert.Contains(t, md, "Related to general notes")

	fm := parseFrontmatter(t, md)
	assert.Empty(t, fm.Concepts)
}

func TestRenderDeterministic(t *testing.T) {
	n := sampleNote()
	at := time.Date(2026, 2, 7, 9, 0, 0, 0, time.UTC)
	a := Render(n, at)
	b := Render(n, at)
	assert.Equal(t, a.Markdown, b.Markdown)

	// Only the processing date line differs across days.
	c := Render(n, at.AddDate(0, 0, 3))
	diff := 0
	aLines, cLines := strings.Split(a.Markdown, "\n"), strings.Split(c.Markdown, "\n")
	require.Equal(t, len(aLines), len(cLines))
	for i := range aLines {
		if aLines[i] != cLines[i] {
			diff++
			assert.True(t, strings.HasPrefix(aLines[i], "- **Processed**:"))
		}
	}
	assert.Equal(t, 1, diff)
}

func TestRoutingFor(t *testing.T) {
	r := RoutingFor(sampleNote())
	assert.Equal(t, Routing{
		Date:     "2026-02-06",
		Year:     "2026",
		Month:    "02",
		Title:    `Kiln "test" firing`,
		Concepts: []string{"kilns", "glazes"},
		Theme:    "craft",
		Energy:   "high",
	}, r)
}

func TestQuoteTitle(t *testing.T) {
	assert.Equal(t, `"plain"`, QuoteTitle("plain"))
	assert.Equal(t, `"say \"hi\""`, QuoteTitle(`say "hi"`))
	assert.Equal(t, `"back\\slash"`, QuoteTitle(`back\slash`))
}

func TestScalarQuotesAmbiguousValues(t *testing.T) {
	assert.Equal(t, "craft", scalar("craft"))
	assert.Equal(t, `"yes"`, scalar("yes"))
	assert.Equal(t, `"0.5"`, scalar("0.5"))
	assert.Equal(t, `"a: b"`, scalar("a: b"))
	assert.Equal(t, `""`, scalar(""))
}

func TestHub(t *testing.T) {
	h := Hub("kilns", time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC))
	assert.True(t, strings.HasPrefix(h, "# kilns\n"))
	assert.Contains(t, h, "**Created**: 2026-02-07")
	assert.Contains(t, h, "notes related to **kilns**")
}
