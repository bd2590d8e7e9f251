package command

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/yndnr/notechain-go/internal/core/service"
	"github.com/yndnr/notechain-go/internal/server/httpserver"
	"github.com/yndnr/notechain-go/internal/storage/notetable"
)

// runApp runs the CLI with args and returns what it wrote to stdout.
// A missing config file keeps the user's real ~/.notechain out of tests.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()

	app := App()
	var buf bytes.Buffer
	app.Writer = &buf
	app.ErrWriter = io.Discard

	full := append([]string{"notechain-cli", "--config", filepath.Join(t.TempDir(), "cli.yaml")}, args...)
	err := app.Run(full)
	return buf.String(), err
}

// newNoteServer starts a real router over an in-memory table.
func newNoteServer(t *testing.T, allowAnonymous bool) (*httptest.Server, *notetable.Table) {
	t.Helper()

	table := notetable.New()
	cfg := httpserver.DefaultRouterConfig()
	cfg.NoteService = service.NewNoteService(table)
	cfg.AllowAnonymous = allowAnonymous
	cfg.RateLimit = 0
	cfg.Logger = discardLogger()

	server := httptest.NewServer(httpserver.NewRouter(cfg))
	t.Cleanup(server.Close)
	return server, table
}

// jsonResponse writes a JSON response.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func decodeJSON(t *testing.T, s string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(s), v); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, s)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
