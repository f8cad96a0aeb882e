// Package render turns an enriched note into the Markdown document published
// to the vault. Output is a pure function of the note and the processing time.
package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/SlowSpeedChase/selene-n8n/internal/actions"
	"github.com/SlowSpeedChase/selene-n8n/internal/display"
	"github.com/SlowSpeedChase/selene-n8n/internal/notes"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"

	sectionBreak = "---"
)

// Routing carries the note fields that decide where a document is published.
type Routing struct {
	Date     string
	Year     string
	Month    string
	Title    string
	Concepts []string
	Theme    string
	Energy   string
}

// Document is a rendered note plus its routing metadata.
type Document struct {
	NoteID      int64
	Markdown    string
	Routing     Routing
	ActionItems []string
}

// Render builds the document for n. processedAt only affects the
// "Processed" line of the metadata footer.
func Render(n notes.Note, processedAt time.Time) Document {
	items := actions.Extract(n.Content)
	v := newView(n, items)

	sections := []string{
		frontmatter(v),
		statusHeader(v),
		metadataSection(v),
	}
	if len(items) > 0 {
		sections = append(sections, actionItemsSection(items))
	}
	sections = append(sections,
		contentSection(n.Content),
		insightsSection(v),
		footer(v, processedAt),
	)

	return Document{
		NoteID:      n.ID,
		Markdown:    strings.Join(sections, "\n\n") + "\n",
		Routing:     RoutingFor(n),
		ActionItems: items,
	}
}

// RoutingFor derives the routing metadata of n without rendering it.
func RoutingFor(n notes.Note) Routing {
	return Routing{
		Date:     n.CreatedAt.Format(dateLayout),
		Year:     n.CreatedAt.Format("2006"),
		Month:    n.CreatedAt.Format("01"),
		Title:    n.Title,
		Concepts: n.Concepts,
		Theme:    n.PrimaryTheme,
		Energy:   n.EnergyLevel,
	}
}

// view holds the derived display values shared by several sections.
type view struct {
	n              notes.Note
	items          []string
	date, clock    string
	day            string
	energyEmoji    string
	toneEmoji      string
	sentimentEmoji string
	badges         string
	tags           []string
	readingTime    int
	score          float64
}

func newView(n notes.Note, items []string) view {
	return view{
		n:              n,
		items:          items,
		date:           n.CreatedAt.Format(dateLayout),
		clock:          n.CreatedAt.Format(timeLayout),
		day:            n.CreatedAt.Format("Monday"),
		energyEmoji:    display.EnergyEmoji(n.EnergyLevel),
		toneEmoji:      display.ToneEmoji(n.EmotionalTone),
		sentimentEmoji: display.SentimentEmoji(n.OverallSentiment),
		badges:         display.BadgeString(n.Sentiment),
		tags:           display.Tags(n),
		readingTime:    display.ReadingTime(n.WordCount),
		score:          n.Score(),
	}
}

func frontmatter(v view) string {
	n := v.n
	m := n.Sentiment.ADHDMarkers

	var b strings.Builder
	b.WriteString(sectionBreak + "\n")
	fmt.Fprintf(&b, "title: %s\n", QuoteTitle(n.Title))
	fmt.Fprintf(&b, "date: %s\n", v.date)
	fmt.Fprintf(&b, "time: %s\n", strconv.Quote(v.clock))
	fmt.Fprintf(&b, "day: %s\n", v.day)
	fmt.Fprintf(&b, "theme: %s\n", scalar(n.PrimaryTheme))
	fmt.Fprintf(&b, "energy: %s\n", scalar(n.EnergyLevel))
	fmt.Fprintf(&b, "mood: %s\n", scalar(n.EmotionalTone))
	fmt.Fprintf(&b, "sentiment: %s\n", scalar(n.OverallSentiment))
	fmt.Fprintf(&b, "sentiment_score: %s\n", formatScore(v.score))
	writeList(&b, "concepts", n.Concepts)
	writeList(&b, "tags", v.tags)
	b.WriteString("adhd_markers:\n")
	fmt.Fprintf(&b, "  overwhelm: %t\n", m.Overwhelm)
	fmt.Fprintf(&b, "  hyperfocus: %t\n", m.Hyperfocus)
	fmt.Fprintf(&b, "  executive_dysfunction: %t\n", m.ExecutiveDysfunction)
	fmt.Fprintf(&b, "stress: %t\n", n.Sentiment.StressIndicators)
	fmt.Fprintf(&b, "action_items: %d\n", len(v.items))
	fmt.Fprintf(&b, "reading_time: %d\n", v.readingTime)
	fmt.Fprintf(&b, "word_count: %d\n", n.WordCount)
	b.WriteString("source: Selene\n")
	b.WriteString("automated: true\n")
	b.WriteString(sectionBreak)
	return b.String()
}

func statusHeader(v view) string {
	n := v.n
	var b strings.Builder
	fmt.Fprintf(&b, "# %s %s\n\n", v.toneEmoji, n.Title)
	b.WriteString("## 🎯 Status at a Glance\n\n")
	b.WriteString("| Indicator | Status | Details |\n")
	b.WriteString("|-----------|--------|---------|\n")
	fmt.Fprintf(&b, "| Energy | %s %s | Brain capacity indicator |\n", v.energyEmoji, strings.ToUpper(n.EnergyLevel))
	fmt.Fprintf(&b, "| Mood | %s %s | Emotional state |\n", v.toneEmoji, n.EmotionalTone)
	fmt.Fprintf(&b, "| Sentiment | %s %s | Overall tone (%d%%) |\n", v.sentimentEmoji, n.OverallSentiment, display.Percent(v.score))
	fmt.Fprintf(&b, "| ADHD | %s | Markers detected |\n", v.badges)
	fmt.Fprintf(&b, "| Actions | 🎯 %d items | Tasks extracted |\n\n", len(v.items))
	b.WriteString(sectionBreak)
	return b.String()
}

func metadataSection(v view) string {
	n := v.n
	themes := append([]string{n.PrimaryTheme}, n.SecondaryThemes...)

	var b strings.Builder
	fmt.Fprintf(&b, "**🏷️ Theme**: %s\n", links("Themes", themes))
	fmt.Fprintf(&b, "**💡 Concepts**: %s\n", links("Concepts", n.Concepts))
	fmt.Fprintf(&b, "**📅 Created**: %s (%s) at %s\n", v.date, v.day, v.clock)
	fmt.Fprintf(&b, "**⏱️ Reading Time**: %d min\n\n", v.readingTime)
	b.WriteString(sectionBreak + "\n\n")

	related := "general notes"
	if len(n.Concepts) > 0 {
		related = strings.Join(firstN(n.Concepts, 2), ", ")
	}
	b.WriteString("> **⚡ Quick Context**\n")
	fmt.Fprintf(&b, "> %s\n", display.QuickContext(n.Content))
	b.WriteString(">\n")
	fmt.Fprintf(&b, "> **Why this matters:** Related to %s\n", related)
	fmt.Fprintf(&b, "> **Reading time:** %d min\n", v.readingTime)
	fmt.Fprintf(&b, "> **Brain state:** %s energy, %s\n\n", n.EnergyLevel, n.EmotionalTone)
	b.WriteString(sectionBreak)
	return b.String()
}

func actionItemsSection(items []string) string {
	var b strings.Builder
	b.WriteString("## ✅ Action Items Detected\n\n")
	for _, item := range items {
		fmt.Fprintf(&b, "- [ ] %s\n", item)
	}
	b.WriteString("\n> **Tip:** Copy these to your daily todo list or use Obsidian Tasks plugin\n\n")
	b.WriteString(sectionBreak)
	return b.String()
}

func contentSection(content string) string {
	return "## 📝 Full Content\n\n" + content + "\n\n" + sectionBreak
}

func insightsSection(v view) string {
	n := v.n
	var b strings.Builder
	b.WriteString("## 🧠 ADHD Insights\n\n")
	b.WriteString("### Brain State Analysis\n\n")
	fmt.Fprintf(&b, "- **Energy Level**: %s %s\n", n.EnergyLevel, v.energyEmoji)
	if interp := display.EnergyInterpretation(n.EnergyLevel); interp != "" {
		fmt.Fprintf(&b, "  - %s\n", interp)
	}
	fmt.Fprintf(&b, "\n- **Emotional Tone**: %s %s\n", n.EmotionalTone, v.toneEmoji)
	for _, line := range display.Insights(n.Sentiment) {
		fmt.Fprintf(&b, "  - %s\n", line)
	}
	fmt.Fprintf(&b, "\n- **Sentiment**: %s (%d%%)\n", n.OverallSentiment, display.Percent(v.score))

	if emotions := n.Sentiment.KeyEmotions; len(emotions) > 0 {
		b.WriteString("\n### Key Emotions\n\n")
		for _, e := range emotions {
			fmt.Fprintf(&b, "- %s\n", e)
		}
	}

	b.WriteString("\n### Context Clues\n\n")
	fmt.Fprintf(&b, "- **When was this?** %s, %s at %s\n", v.day, v.date, v.clock)
	fmt.Fprintf(&b, "- **What was I thinking about?** %s\n", strings.Join(firstN(n.Concepts, 3), ", "))
	fmt.Fprintf(&b, "- **Theme**: %s\n", n.PrimaryTheme)
	fmt.Fprintf(&b, "- **How did I feel?** %s, %s\n\n", n.EmotionalTone, n.OverallSentiment)
	b.WriteString("> **Memory Trigger**: Look for related notes tagged with these concepts to restore full context\n\n")
	b.WriteString(sectionBreak)
	return b.String()
}

func footer(v view, processedAt time.Time) string {
	n := v.n
	var b strings.Builder
	b.WriteString("## 📊 Processing Metadata\n\n")
	fmt.Fprintf(&b, "- **Processed**: %s\n", processedAt.Format(dateLayout))
	b.WriteString("- **Source**: Selene Knowledge Management System\n")
	fmt.Fprintf(&b, "- **Concept Count**: %d\n", len(n.Concepts))
	fmt.Fprintf(&b, "- **Word Count**: %d\n", n.WordCount)
	fmt.Fprintf(&b, "- **Sentiment Confidence**: %d%%\n\n", display.Percent(n.Sentiment.Confidence()))
	b.WriteString("## 🔗 Related Notes\n\n")
	b.WriteString("*Obsidian will automatically show backlinks here based on shared concepts and tags*\n\n")
	b.WriteString(sectionBreak + "\n\n")
	b.WriteString("*🤖 This note was automatically processed and optimized for ADHD by Selene*")
	return b.String()
}

// QuoteTitle renders a title as a double-quoted YAML scalar.
func QuoteTitle(title string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`)
	return `"` + r.Replace(title) + `"`
}

var plainScalar = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 _./-]*$`)

var yamlKeywords = map[string]bool{
	"true": true, "false": true, "yes": true, "no": true,
	"on": true, "off": true, "null": true, "~": true,
}

// scalar emits v unquoted when YAML reads it back as the same string.
func scalar(v string) string {
	if plainScalar.MatchString(v) && !yamlKeywords[strings.ToLower(v)] && !strings.HasSuffix(v, " ") {
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return v
		}
	}
	return QuoteTitle(v)
}

func writeList(b *strings.Builder, key string, values []string) {
	if len(values) == 0 {
		fmt.Fprintf(b, "%s: []\n", key)
		return
	}
	fmt.Fprintf(b, "%s:\n", key)
	for _, v := range values {
		fmt.Fprintf(b, "  - %s\n", scalar(v))
	}
}

func formatScore(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func links(dir string, values []string) string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, fmt.Sprintf("[[%s/%s]]", dir, v))
		}
	}
	return strings.Join(out, " • ")
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
