package mcpserver

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/SlowSpeedChase/selene-n8n/internal/database"
	"github.com/SlowSpeedChase/selene-n8n/internal/export"
	"github.com/SlowSpeedChase/selene-n8n/internal/render"
	"github.com/SlowSpeedChase/selene-n8n/internal/vault"
)

func testServer(t *testing.T) (*Server, *database.DB) {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := vault.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	pub := vault.NewPublisher(store, "")
	return New(db, pub, export.New(db, pub, 0), "test"), db
}

func seedNote(t *testing.T, db *database.DB, title string) int64 {
	t.Helper()
	id, err := db.InsertRawNote(database.NewRawNote{
		Title:     title,
		Content:   "I need to sand the bowl.",
		CreatedAt: "2026-02-06T10:00:00Z",
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.InsertProcessedNote(database.NewProcessedNote{
		RawNoteID:         id,
		Concepts:          []string{"bowls"},
		PrimaryTheme:      "craft",
		EnergyLevel:       "low",
		SentimentAnalyzed: true,
	}); err != nil {
		t.Fatal(err)
	}
	return id
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "export_note":
		result, err = srv.exportNote(ctx, req)
	case "export_pending":
		result, err = srv.exportPending(ctx, req)
	case "list_pending":
		result, err = srv.listPending(ctx, req)
	case "read_document":
		result, err = srv.readDocument(ctx, req)
	case "verify_note":
		result, err = srv.verifyNote(ctx, req)
	case "get_document_contract":
		result, err = srv.getDocumentContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestListPendingThenExport(t *testing.T) {
	srv, db := testServer(t)
	id := seedNote(t, db, "Bowl sanding")

	r := callTool(t, srv, "list_pending", map[string]interface{}{})
	var pending []pendingNote
	if err := json.Unmarshal([]byte(resultText(r)), &pending); err != nil {
		t.Fatalf("decode list_pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != id || len(pending[0].Paths) != 4 {
		t.Fatalf("unexpected pending list: %+v", pending)
	}

	r = callTool(t, srv, "export_note", map[string]interface{}{"note_id": strconv.FormatInt(id, 10)})
	if r.IsError {
		t.Fatalf("export_note failed: %s", resultText(r))
	}
	var summary export.Summary
	if err := json.Unmarshal([]byte(resultText(r)), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.ExportedCount != 1 {
		t.Errorf("exported_count = %d, want 1", summary.ExportedCount)
	}

	r = callTool(t, srv, "read_document", map[string]interface{}{"path": pending[0].Paths[0]})
	if !strings.Contains(resultText(r), "- [ ] sand the bowl.") {
		t.Errorf("document missing action item: %q", resultText(r))
	}

	r = callTool(t, srv, "verify_note", map[string]interface{}{"note_id": strconv.FormatInt(id, 10)})
	if !strings.Contains(resultText(r), `"consistent": true`) {
		t.Errorf("verify = %q", resultText(r))
	}

	r = callTool(t, srv, "list_pending", map[string]interface{}{})
	if strings.TrimSpace(resultText(r)) != "[]" {
		t.Errorf("expected no pending notes, got %q", resultText(r))
	}
}

func TestExportPending(t *testing.T) {
	srv, db := testServer(t)
	seedNote(t, db, "One")
	seedNote(t, db, "Two")

	r := callTool(t, srv, "export_pending", map[string]interface{}{})
	if !strings.Contains(resultText(r), "Successfully exported 2 note(s)") {
		t.Errorf("export_pending = %q", resultText(r))
	}
}

func TestConcurrentExportPendingRunsSequentially(t *testing.T) {
	srv, db := testServer(t)
	for _, title := range []string{"One", "Two", "Three"} {
		seedNote(t, db, title)
	}

	const calls = 8
	counts := make([]int, calls)
	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := srv.exportPending(context.Background(), mcp.CallToolRequest{})
			if err != nil {
				t.Errorf("export_pending: %v", err)
				return
			}
			var summary export.Summary
			if err := json.Unmarshal([]byte(resultText(r)), &summary); err != nil {
				t.Errorf("decode summary: %v", err)
				return
			}
			counts[i] = summary.ExportedCount
		}(i)
	}
	wg.Wait()

	total := 0
	for _, c := range counts {
		total += c
	}
	if total != 3 {
		t.Errorf("exported %d notes across concurrent calls, want 3", total)
	}
	stats, err := db.GetStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.ExportRuns != 1 {
		t.Errorf("expected 1 recorded run, got %d", stats.ExportRuns)
	}
}

func TestExportNoteInvalidID(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "export_note", map[string]interface{}{"note_id": "abc"})
	if !r.IsError {
		t.Error("expected error result")
	}
	if !strings.Contains(resultText(r), "noteId must be an integer") {
		t.Errorf("unexpected text %q", resultText(r))
	}
}

func TestReadDocumentRejectsEscape(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "read_document", map[string]interface{}{"path": "../../etc/passwd"})
	if !r.IsError {
		t.Error("expected error for path outside the vault")
	}
	r = callTool(t, srv, "read_document", map[string]interface{}{"path": "Selene/missing.md"})
	if !r.IsError || resultText(r) != "not found: Selene/missing.md" {
		t.Errorf("unexpected result %q", resultText(r))
	}
}

func TestGetDocumentContract(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_document_contract", map[string]interface{}{})
	if resultText(r) != render.DocumentContract {
		t.Error("contract text mismatch")
	}
}
