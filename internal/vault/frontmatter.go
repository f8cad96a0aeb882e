package vault

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoFrontmatter is returned for documents without a YAML header.
var ErrNoFrontmatter = errors.New("no frontmatter")

// Frontmatter is the YAML header of an exported document.
type Frontmatter struct {
	Title          string   `yaml:"title"`
	Date           string   `yaml:"date"`
	Time           string   `yaml:"time"`
	Day            string   `yaml:"day"`
	Theme          string   `yaml:"theme"`
	Energy         string   `yaml:"energy"`
	Mood           string   `yaml:"mood"`
	Sentiment      string   `yaml:"sentiment"`
	SentimentScore float64  `yaml:"sentiment_score"`
	Concepts       []string `yaml:"concepts"`
	Tags           []string `yaml:"tags"`
	ADHDMarkers    struct {
		Overwhelm            bool `yaml:"overwhelm"`
		Hyperfocus           bool `yaml:"hyperfocus"`
		ExecutiveDysfunction bool `yaml:"executive_dysfunction"`
	} `yaml:"adhd_markers"`
	Stress      bool   `yaml:"stress"`
	ActionItems int    `yaml:"action_items"`
	ReadingTime int    `yaml:"reading_time"`
	WordCount   int    `yaml:"word_count"`
	Source      string `yaml:"source"`
	Automated   bool   `yaml:"automated"`
}

// ParseDocument splits an exported document into its frontmatter and body.
func ParseDocument(data []byte) (Frontmatter, string, error) {
	const delim = "---"
	var fm Frontmatter

	trimmed := bytes.TrimLeft(data, "\n\r")
	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return fm, string(data), ErrNoFrontmatter
	}
	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return fm, string(data), ErrNoFrontmatter
	}

	if err := yaml.Unmarshal(rest[:idx], &fm); err != nil {
		return fm, string(data), fmt.Errorf("decode frontmatter: %w", err)
	}
	body := strings.TrimLeft(string(rest[idx+1+len(delim):]), "\n\r")
	return fm, body, nil
}
