// Package mcpserver exposes export and vault tools over MCP (Model Context
// Protocol) on stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/SlowSpeedChase/selene-n8n/internal/database"
	"github.com/SlowSpeedChase/selene-n8n/internal/export"
	"github.com/SlowSpeedChase/selene-n8n/internal/notes"
	"github.com/SlowSpeedChase/selene-n8n/internal/render"
	"github.com/SlowSpeedChase/selene-n8n/internal/vault"
)

const contractURI = "selene://document-format"

// Server wraps the MCP server with the Selene tools.
type Server struct {
	mcp      *server.MCPServer
	db       *database.DB
	pub      *vault.Publisher
	exporter *export.Exporter

	// exportMu keeps export passes sequential.
	exportMu sync.Mutex
}

// pendingNote is one entry of the list_pending result.
type pendingNote struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	CreatedAt string   `json:"created_at"`
	Paths     []string `json:"paths,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// New creates an MCP server with all tools registered.
func New(db *database.DB, pub *vault.Publisher, exporter *export.Exporter, version string) *Server {
	s := &Server{db: db, pub: pub, exporter: exporter}

	s.mcp = server.NewMCPServer(
		"Selene",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("export_note",
		mcp.WithDescription("Export one processed note to the vault by its ID. "+
			"Already exported notes are re-exported."),
		mcp.WithString("note_id", mcp.Required(), mcp.Description("Integer ID of the raw note")),
	), s.exportNote)

	s.mcp.AddTool(mcp.NewTool("export_pending",
		mcp.WithDescription("Export every processed note that has not been exported yet (up to the batch limit)."),
	), s.exportPending)

	s.mcp.AddTool(mcp.NewTool("list_pending",
		mcp.WithDescription("List notes waiting for export with the vault paths they would be written to."),
	), s.listPending)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read an exported document from the vault."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path relative to the vault root (e.g. Selene/Timeline/2026/02/2026-02-06-title.md)")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("verify_note",
		mcp.WithDescription("Check that every view of an exported note exists and holds the same content."),
		mcp.WithString("note_id", mcp.Required(), mcp.Description("Integer ID of the raw note")),
	), s.verifyNote)

	s.mcp.AddTool(mcp.NewTool("get_document_contract",
		mcp.WithDescription("Returns the exported document format: frontmatter fields, body sections and vault layout."),
	), s.getDocumentContract)

	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Document Format Contract",
			mcp.WithResourceDescription("Format of the notes Selene exports to the vault."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout. Tool calls run one at a
// time so export passes never overlap.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp, server.WithWorkerPoolSize(1))
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) exportNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("note_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := export.ParseNoteID(raw)
	if err != nil {
		return jsonResult(export.InvalidNoteIDSummary(), true), nil
	}
	s.exportMu.Lock()
	res, err := s.exporter.Run(ctx, &id)
	s.exportMu.Unlock()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res.Summary(), res.Failed > 0), nil
}

func (s *Server) exportPending(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.exportMu.Lock()
	res, err := s.exporter.Run(ctx, nil)
	s.exportMu.Unlock()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res.Summary(), false), nil
}

func (s *Server) listPending(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.exporter.DryRun(nil)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rows, err := s.db.GetNotesForExport(0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	created := make(map[int64]string, len(rows))
	for _, r := range rows {
		created[r.ID] = r.CreatedAt
	}

	out := make([]pendingNote, 0, len(res.Outcomes))
	for _, o := range res.Outcomes {
		p := pendingNote{ID: o.NoteID, Title: o.Title, CreatedAt: created[o.NoteID]}
		for _, pl := range o.Placements {
			p.Paths = append(p.Paths, pl.Path)
		}
		if o.Err != nil {
			p.Error = o.Err.Error()
		}
		out = append(out, p)
	}
	return jsonResult(out, false), nil
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.pub.Read(path)
	if errors.Is(err, vault.ErrPathEscape) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) verifyNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("note_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := export.ParseNoteID(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	row, err := s.db.GetNoteForExport(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if row == nil {
		return mcp.NewToolResultError(fmt.Sprintf("note %d not found or not ready for export", id)), nil
	}
	n, err := notes.FromRow(*row)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rep, err := s.pub.Verify(render.RoutingFor(n))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	paths := make([]string, 0, len(rep.Placements))
	for _, pl := range rep.Placements {
		paths = append(paths, pl.Path)
	}
	return jsonResult(map[string]any{
		"note_id":    id,
		"consistent": rep.Consistent(),
		"missing":    rep.Missing,
		"paths":      paths,
	}, false), nil
}

func (s *Server) getDocumentContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(render.DocumentContract), nil
}

func (s *Server) readContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     render.DocumentContract,
		},
	}, nil
}

func jsonResult(v any, isError bool) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	if isError {
		return mcp.NewToolResultError(string(out))
	}
	return mcp.NewToolResultText(string(out))
}
