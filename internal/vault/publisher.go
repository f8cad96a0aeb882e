package vault

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/SlowSpeedChase/selene-n8n/internal/render"
)

// DefaultFolder is the vault folder that holds all exported views.
const DefaultFolder = "Selene"

const uncategorized = "uncategorized"

// View is one organizational tree under the export folder.
type View string

const (
	Timeline  View = "Timeline"
	ByConcept View = "By-Concept"
	ByTheme   View = "By-Theme"
	ByEnergy  View = "By-Energy"
)

// Views lists every view in publication order.
var Views = []View{Timeline, ByConcept, ByTheme, ByEnergy}

// HubDir is the flat directory of concept hub documents.
const HubDir = "Concepts"

// Placement is the location of one copy of a document.
type Placement struct {
	View View
	Path string
}

// Result reports what a publish wrote.
type Result struct {
	Placements  []Placement
	HubsCreated []string
}

// Publisher writes rendered documents to every view and creates concept hubs.
type Publisher struct {
	store  Provider
	folder string
	now    func() time.Time
}

// NewPublisher returns a Publisher writing under folder (DefaultFolder if empty).
func NewPublisher(store Provider, folder string) *Publisher {
	if folder == "" {
		folder = DefaultFolder
	}
	return &Publisher{store: store, folder: folder, now: time.Now}
}

// Folder returns the export folder relative to the vault root.
func (p *Publisher) Folder() string {
	return p.folder
}

// Plan returns the view paths for a document without writing anything.
func (p *Publisher) Plan(r render.Routing) []Placement {
	filename := Filename(r.Date, r.Title)
	concept := uncategorized
	if len(r.Concepts) > 0 {
		concept = segment(r.Concepts[0])
	}
	return []Placement{
		{Timeline, path.Join(p.folder, string(Timeline), r.Year, r.Month, filename)},
		{ByConcept, path.Join(p.folder, string(ByConcept), concept, filename)},
		{ByTheme, path.Join(p.folder, string(ByTheme), segment(r.Theme), filename)},
		{ByEnergy, path.Join(p.folder, string(ByEnergy), segment(r.Energy), filename)},
	}
}

// HubPath returns the hub document path for a concept.
func (p *Publisher) HubPath(concept string) string {
	return path.Join(p.folder, HubDir, segment(concept)+".md")
}

// Publish writes doc to all views, then creates any missing concept hubs.
// It stops at the first failed write; earlier copies stay on disk and are
// overwritten by the next successful publish.
func (p *Publisher) Publish(doc render.Document) (Result, error) {
	var res Result
	content := []byte(doc.Markdown)

	for _, pl := range p.Plan(doc.Routing) {
		if err := p.store.Write(pl.Path, content); err != nil {
			return res, fmt.Errorf("publish %s view: %w", pl.View, err)
		}
		res.Placements = append(res.Placements, pl)
	}

	created, err := p.ensureHubs(doc.Routing.Concepts)
	res.HubsCreated = created
	if err != nil {
		return res, err
	}
	return res, nil
}

// ensureHubs creates the hub for each concept that has none yet. Existing
// hubs are never rewritten.
func (p *Publisher) ensureHubs(concepts []string) ([]string, error) {
	var created []string
	seen := make(map[string]bool)
	for _, c := range concepts {
		if strings.TrimSpace(c) == "" {
			continue
		}
		hub := p.HubPath(c)
		if seen[hub] {
			continue
		}
		seen[hub] = true

		exists, err := p.store.Exists(hub)
		if err != nil {
			return created, fmt.Errorf("check hub %s: %w", c, err)
		}
		if exists {
			continue
		}
		if err := p.store.Write(hub, []byte(render.Hub(c, p.now()))); err != nil {
			return created, fmt.Errorf("create hub %s: %w", c, err)
		}
		created = append(created, hub)
	}
	return created, nil
}

var (
	slugStrip = regexp.MustCompile(`[^a-z0-9\s\p{Zs}-]`)
	slugSpace = regexp.MustCompile(`[\s\p{Zs}]+`)
)

const maxSlugLen = 50

// Slug lowercases title, drops characters other than letters, digits,
// hyphens and whitespace, turns whitespace runs into single hyphens and
// truncates to 50 characters.
func Slug(title string) string {
	s := strings.ToLower(title)
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSpace.ReplaceAllString(s, "-")
	if len(s) > maxSlugLen {
		s = s[:maxSlugLen]
	}
	if s == "" {
		return "untitled"
	}
	return s
}

// Filename is "<date>-<slug>.md".
func Filename(date, title string) string {
	return date + "-" + Slug(title) + ".md"
}

// segment makes an enrichment value safe to use as one directory name.
func segment(v string) string {
	v = strings.TrimSpace(v)
	v = strings.NewReplacer("/", "-", `\`, "-").Replace(v)
	if v == "" || v == "." || v == ".." {
		return uncategorized
	}
	return v
}
