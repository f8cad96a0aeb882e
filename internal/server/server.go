package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/SlowSpeedChase/selene-n8n/internal/database"
	"github.com/SlowSpeedChase/selene-n8n/internal/notes"
	"github.com/SlowSpeedChase/selene-n8n/internal/render"
	"github.com/SlowSpeedChase/selene-n8n/internal/vault"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

const listLimit = 200

// Server is a read-only browser over exported notes.
type Server struct {
	db     *database.DB
	pub    *vault.Publisher
	pages  map[string]*template.Template
	router chi.Router
}

// noteEntry is one row of the index page.
type noteEntry struct {
	ID         int64
	Title      string
	Date       string
	ExportedAt string
	Path       string
}

// New creates a new Server.
func New(db *database.DB, pub *vault.Publisher) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown": renderMarkdown,
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}

	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// Each page gets its own clone of base so its "content" block stays separate.
	pageNames := []string{"index.html", "note.html", "concepts.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		if _, err := clone.ParseFS(templateFS, "templates/"+name); err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{db: db, pub: pub, pages: pages, router: chi.NewRouter()}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	s.router.Use(middleware.Recoverer)

	staticSub, _ := fs.Sub(staticFS, "static")
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	s.router.Get("/", s.handleIndex)
	s.router.Get("/notes/{id}", s.handleNote)
	s.router.Get("/concepts", s.handleConcepts)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.GetExportedNotes(listLimit)
	if err != nil {
		log.Printf("Error listing exported notes: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	stats, err := s.db.GetStats()
	if err != nil {
		log.Printf("Error reading stats: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	runs, _ := s.db.GetRecentExportRuns(10)

	entries := make([]noteEntry, 0, len(rows))
	for _, row := range rows {
		e := noteEntry{ID: row.ID, Title: row.Title}
		if row.ExportedAt != nil {
			e.ExportedAt = *row.ExportedAt
		}
		if n, err := notes.FromRow(row); err == nil {
			e.Date = n.CreatedAt.Format("2006-01-02")
			e.Path = s.pub.Plan(render.RoutingFor(n))[0].Path
		}
		entries = append(entries, e)
	}

	s.render(w, "index.html", map[string]any{
		"Notes": entries,
		"Stats": stats,
		"Runs":  runs,
	})
}

func (s *Server) handleNote(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	row, err := s.db.GetNoteForExport(id)
	if err != nil {
		log.Printf("Error loading note %d: %v", id, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if row == nil {
		http.NotFound(w, r)
		return
	}
	n, err := notes.FromRow(*row)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	routing := render.RoutingFor(n)
	report, err := s.pub.Verify(routing)
	if err != nil {
		log.Printf("Error verifying note %d: %v", id, err)
	}

	data := map[string]any{
		"Note":   n,
		"Report": report,
	}
	timeline := s.pub.Plan(routing)[0].Path
	if raw, err := s.pub.Read(timeline); err == nil {
		fm, body, err := vault.ParseDocument(raw)
		if err == nil {
			data["Frontmatter"] = fm
		}
		data["Body"] = body
		data["Path"] = timeline
	}

	s.render(w, "note.html", data)
}

func (s *Server) handleConcepts(w http.ResponseWriter, r *http.Request) {
	hubs, err := s.pub.Hubs()
	if err != nil {
		log.Printf("Error listing concept hubs: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	names := make([]string, 0, len(hubs))
	for _, h := range hubs {
		names = append(names, strings.TrimSuffix(path.Base(h), ".md"))
	}
	s.render(w, "concepts.html", map[string]any{"Concepts": names})
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
	}
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

// Serve starts the HTTP server on the given port.
func Serve(db *database.DB, pub *vault.Publisher, port int) error {
	srv, err := New(db, pub)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
