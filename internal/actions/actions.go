// Package actions extracts candidate to-do items from free-text note content.
package actions

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MaxItems caps the number of action items returned for one note.
	MaxItems = 10

	minLen = 6
	maxLen = 199
)

// Scope selects whether a rule is matched per line or across the whole text.
type Scope int

const (
	PerLine Scope = iota
	WholeText
)

// Rule is one pattern family. Group is the capture group holding the item.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Group   int
	Scope   Scope
}

// DefaultRules returns the pattern families in precedence order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:    "checklist",
			Pattern: regexp.MustCompile(`(?i)^[-*]\s*\[[ x]\]\s*(.+)$`),
			Group:   1,
			Scope:   PerLine,
		},
		{
			Name:    "task-marker",
			Pattern: regexp.MustCompile(`(?i)^[-*]\s*(?:todo|task|action)[:)]\s*(.+)$`),
			Group:   1,
			Scope:   PerLine,
		},
		{
			Name:    "intention",
			Pattern: regexp.MustCompile(`(?i)\b(?:need to|should|must|have to|remember to)\s+([^.!?]+[.!?]?)`),
			Group:   1,
			Scope:   WholeText,
		},
	}
}

// Extractor runs an ordered list of rules over note content.
type Extractor struct {
	Rules []Rule
	Limit int
}

// New returns an Extractor with the default rules and limit.
func New() *Extractor {
	return &Extractor{Rules: DefaultRules(), Limit: MaxItems}
}

var defaultExtractor = New()

// Extract runs the default extractor over content.
func Extract(content string) []string {
	return defaultExtractor.Extract(content)
}

// Apply returns the raw captures of a single rule, in match order.
func (e *Extractor) Apply(r Rule, text string) []string {
	var out []string
	switch r.Scope {
	case PerLine:
		for _, line := range strings.Split(text, "\n") {
			if m := r.Pattern.FindStringSubmatch(line); m != nil {
				out = append(out, m[r.Group])
			}
		}
	case WholeText:
		for _, m := range r.Pattern.FindAllStringSubmatch(text, -1) {
			out = append(out, m[r.Group])
		}
	}
	return out
}

// Extract concatenates the captures of every rule in order, then trims,
// filters by length, removes exact duplicates and applies the limit.
func (e *Extractor) Extract(content string) []string {
	var candidates []string
	for _, r := range e.Rules {
		candidates = append(candidates, e.Apply(r, content)...)
	}

	items := []string{}
	seen := make(map[string]bool)
	for _, c := range candidates {
		item := strings.TrimSpace(c)
		n := utf8.RuneCountInString(item)
		if n < minLen || n > maxLen || seen[item] {
			continue
		}
		seen[item] = true
		items = append(items, item)
		if e.Limit > 0 && len(items) == e.Limit {
			break
		}
	}
	return items
}
