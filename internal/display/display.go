// Package display maps note enrichment to the badges, emoji and short
// summaries shown in exported documents. Every mapping is total: unknown
// values render the documented default.
package display

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/SlowSpeedChase/selene-n8n/internal/notes"
)

const (
	DefaultEnergyEmoji    = "🔋"
	DefaultToneEmoji      = "💭"
	DefaultSentimentEmoji = "⚪"

	BaselineBadge = "✨ BASELINE"

	wordsPerMinute  = 200
	quickContextMax = 200
)

var energyEmoji = map[string]string{
	"high":   "⚡",
	"medium": "🔋",
	"low":    "🪫",
}

var toneEmoji = map[string]string{
	"excited":     "🚀",
	"calm":        "😌",
	"anxious":     "😰",
	"frustrated":  "😤",
	"content":     "😊",
	"overwhelmed": "🤯",
	"motivated":   "💪",
	"focused":     "🎯",
}

var sentimentEmoji = map[string]string{
	"positive": "✅",
	"negative": "⚠️",
	"neutral":  "⚪",
	"mixed":    "🔀",
}

var energyInterpretation = map[string]string{
	"high":   "⚡ Great time for complex tasks",
	"low":    "🪫 Consider rest or easy tasks",
	"medium": "🔋 Moderate capacity available",
}

// EnergyEmoji maps an energy level to its emoji.
func EnergyEmoji(level string) string {
	return lookup(energyEmoji, level, DefaultEnergyEmoji)
}

// ToneEmoji maps an emotional tone to its emoji.
func ToneEmoji(tone string) string {
	return lookup(toneEmoji, tone, DefaultToneEmoji)
}

// SentimentEmoji maps an overall sentiment to its emoji.
func SentimentEmoji(sentiment string) string {
	return lookup(sentimentEmoji, sentiment, DefaultSentimentEmoji)
}

// EnergyInterpretation returns advice for an energy level, or "" if unknown.
func EnergyInterpretation(level string) string {
	return lookup(energyInterpretation, level, "")
}

func lookup(m map[string]string, key, fallback string) string {
	if v, ok := m[key]; ok {
		return v
	}
	return fallback
}

// Badges returns one badge per set ADHD marker or stress flag.
func Badges(s notes.SentimentData) []string {
	var badges []string
	if s.ADHDMarkers.Overwhelm {
		badges = append(badges, "🧠 OVERWHELM")
	}
	if s.ADHDMarkers.Hyperfocus {
		badges = append(badges, "🎯 HYPERFOCUS")
	}
	if s.ADHDMarkers.ExecutiveDysfunction {
		badges = append(badges, "⚠️ EXEC-DYS")
	}
	if s.StressIndicators {
		badges = append(badges, "😰 STRESS")
	}
	return badges
}

// BadgeString joins the badges of s, or returns the baseline badge.
func BadgeString(s notes.SentimentData) string {
	badges := Badges(s)
	if len(badges) == 0 {
		return BaselineBadge
	}
	return strings.Join(badges, " | ")
}

// Insights returns the advisory lines for set markers, in fixed order.
func Insights(s notes.SentimentData) []string {
	var out []string
	if s.ADHDMarkers.Overwhelm {
		out = append(out, "⚠️ Signs of overwhelm detected - consider breaking tasks down")
	}
	if s.ADHDMarkers.Hyperfocus {
		out = append(out, "🎯 Hyperfocus detected - valuable insights likely!")
	}
	if s.StressIndicators {
		out = append(out, "😰 Stress indicators present - be gentle with yourself")
	}
	return out
}

var sentenceEnd = regexp.MustCompile(`[.!?]\s+`)

// QuickContext returns the first two sentences of content joined by ". ",
// truncated to 200 characters with a trailing ellipsis.
func QuickContext(content string) string {
	sentences := sentenceEnd.Split(content, 3)
	if len(sentences) > 2 {
		sentences = sentences[:2]
	}
	summary := strings.Join(sentences, ". ")
	if utf8.RuneCountInString(summary) > quickContextMax {
		return string([]rune(summary)[:quickContextMax]) + "..."
	}
	return summary
}

// ReadingTime estimates minutes at 200 words per minute, at least one.
func ReadingTime(words int) int {
	minutes := int(math.RoundToEven(float64(words) / wordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// Percent renders a [0,1] fraction as a whole percentage.
func Percent(v float64) int {
	return int(math.RoundToEven(v * 100))
}

// Tags builds the ordered, deduplicated tag set of a note.
func Tags(n notes.Note) []string {
	all := []string{n.PrimaryTheme}
	all = append(all, n.SecondaryThemes...)
	all = append(all, n.Tags...)
	all = append(all,
		prefixed("energy-", n.EnergyLevel),
		prefixed("mood-", n.EmotionalTone),
		prefixed("sentiment-", n.OverallSentiment),
	)

	s := n.Sentiment
	if s.ADHDMarkers.Overwhelm {
		all = append(all, "adhd/overwhelm")
	}
	if s.ADHDMarkers.Hyperfocus {
		all = append(all, "adhd/hyperfocus")
	}
	if s.ADHDMarkers.ExecutiveDysfunction {
		all = append(all, "adhd/executive-dysfunction")
	}
	if s.StressIndicators {
		all = append(all, "state/stressed")
	}

	out := make([]string, 0, len(all))
	seen := make(map[string]bool, len(all))
	for _, t := range all {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func prefixed(prefix, v string) string {
	if v == "" {
		return ""
	}
	return prefix + v
}
