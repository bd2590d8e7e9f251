package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yndnr/notechain-go/internal/core/domain"
	"github.com/yndnr/notechain-go/internal/storage/snapshot"
	"github.com/yndnr/notechain-go/internal/storage/stable"
	"github.com/yndnr/notechain-go/internal/telemetry/metric"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T, medium stable.Medium, opts ...snapshot.Option) *Engine {
	t.Helper()
	e, err := New(Config{
		Medium:  medium,
		Codec:   snapshot.NewCodec(opts...),
		Metrics: metric.NewRegistry(),
		Logger:  discardLogger(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func addNote(e *Engine, owner domain.Owner, title, content string) uint64 {
	id := e.Table().AllocateID()
	e.Table().Insert(context.Background(), &domain.Note{
		ID:        id,
		Owner:     owner,
		Title:     title,
		Content:   content,
		CreatedAt: uint64(id) * 1000,
	})
	return id
}

// restart simulates an upgrade: save with the old engine, restore into a
// fresh one over the same medium.
func restart(t *testing.T, old *Engine, medium stable.Medium, opts ...snapshot.Option) (*Engine, RestoreReport) {
	t.Helper()
	if report := old.OnPreRestart(context.Background()); report.Err != nil {
		t.Fatalf("OnPreRestart: %v", report.Err)
	}
	next := newTestEngine(t, medium, opts...)
	return next, next.OnPostRestart(context.Background())
}

func TestNew_RequiresMedium(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error for missing medium")
	}
}

func TestEngine_RoundTripAcrossRestart(t *testing.T) {
	medium := stable.NewMemoryMedium()
	e := newTestEngine(t, medium)
	e.OnPostRestart(context.Background())

	addNote(e, "alice", "a", "1")
	deleted := addNote(e, "alice", "b", "2")
	addNote(e, "bob", "c", "3")
	if err := e.Table().Remove(context.Background(), deleted, "alice"); err != nil {
		t.Fatal(err)
	}
	before := e.Table().Export()

	next, report := restart(t, e, medium)
	if report.Err != nil || report.Format != snapshot.FormatV1 {
		t.Fatalf("restore report = %+v", report)
	}
	if !next.Table().Export().Equal(before) {
		t.Fatalf("restored %+v, want %+v", next.Table().Export(), before)
	}

	// The allocator survives the restart, so deleted ids are never reused.
	if id := next.Table().AllocateID(); id != 4 {
		t.Fatalf("AllocateID() after restart = %d, want 4", id)
	}
}

func TestEngine_FirstBootIsEmptyAndReady(t *testing.T) {
	e := newTestEngine(t, stable.NewMemoryMedium())
	if e.Ready() {
		t.Fatal("engine must not be ready before OnPostRestart")
	}

	report := e.OnPostRestart(context.Background())
	if report.Err != nil || report.Format != snapshot.FormatEmpty || report.NextID != 1 {
		t.Fatalf("report = %+v", report)
	}
	if !e.Ready() {
		t.Fatal("engine should be ready after OnPostRestart")
	}
}

func TestEngine_CorruptSnapshotRestoresEmpty(t *testing.T) {
	medium := stable.NewMemoryMediumWith([]byte{0xde, 0xad, 0xbe, 0xef})
	e := newTestEngine(t, medium)

	// Leftovers from before the hook must not survive.
	addNote(e, "alice", "stale", "x")

	report := e.OnPostRestart(context.Background())
	if !errors.Is(report.Err, domain.ErrSnapshotDecode) {
		t.Fatalf("report.Err = %v, want ErrSnapshotDecode", report.Err)
	}
	if e.Table().Count() != 0 || e.Table().NextID() != 1 {
		t.Fatalf("table has %d notes, next id %d; want empty", e.Table().Count(), e.Table().NextID())
	}
	if !e.Ready() {
		t.Fatal("a failed restore still completes the hook")
	}
}

func TestEngine_InsertAboveAllocatorSurvivesRestart(t *testing.T) {
	medium := stable.NewMemoryMedium()
	e := newTestEngine(t, medium)
	e.OnPostRestart(context.Background())

	addNote(e, "alice", "allocated", "1")
	e.Table().Insert(context.Background(), &domain.Note{ID: 7, Owner: "bob", Title: "inserted", Content: "7"})
	if n, next := e.Table().Count(), e.Table().NextID(); n != 2 || next != 2 {
		t.Fatalf("before save: %d notes, next id %d", n, next)
	}

	var buf bytes.Buffer
	next, err := New(Config{Medium: medium, Logger: slog.New(slog.NewTextHandler(&buf, nil))})
	if err != nil {
		t.Fatal(err)
	}
	if report := e.OnPreRestart(context.Background()); report.Err != nil {
		t.Fatalf("OnPreRestart: %v", report.Err)
	}
	report := next.OnPostRestart(context.Background())
	if report.Err != nil || report.Format != snapshot.FormatV1 {
		t.Fatalf("restore report = %+v", report)
	}
	if report.Notes != 2 || report.NextID != 8 {
		t.Fatalf("restored %d notes, next id %d; want 2 and 8", report.Notes, report.NextID)
	}
	if id := next.Table().AllocateID(); id != 8 {
		t.Fatalf("AllocateID() after restart = %d, want 8", id)
	}
	if !strings.Contains(buf.String(), "next_id raised") {
		t.Errorf("expected the correction to be logged, got: %s", buf.String())
	}
}

func TestEngine_RestoreFailureLogsReason(t *testing.T) {
	medium := stable.NewMemoryMediumWith([]byte(`{"version":9,"notes":{},"next_id":1}`))

	var buf bytes.Buffer
	e, err := New(Config{Medium: medium, Logger: slog.New(slog.NewJSONHandler(&buf, nil))})
	if err != nil {
		t.Fatal(err)
	}
	report := e.OnPostRestart(context.Background())
	if !errors.Is(report.Err, domain.ErrSnapshotDecode) {
		t.Fatalf("report.Err = %v, want ErrSnapshotDecode", report.Err)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("parse log line %q: %v", buf.String(), err)
	}
	logged, _ := entry["error"].(string)
	for _, want := range []string{"NC-SNAP-5002", "v1: version 9, want 1", "legacy-tuple:"} {
		if !strings.Contains(logged, want) {
			t.Errorf("logged error %q does not contain %q", logged, want)
		}
	}
}

func TestEngine_SaveFailureLogsCause(t *testing.T) {
	var buf bytes.Buffer
	e, err := New(Config{
		Medium: stable.NewMemoryMedium(),
		Codec: snapshot.NewCodec(snapshot.WithEncoder(func(domain.State) ([]byte, error) {
			return nil, errors.New("encoder out of memory")
		})),
		Logger: slog.New(slog.NewTextHandler(&buf, nil)),
	})
	if err != nil {
		t.Fatal(err)
	}

	if report := e.OnPreRestart(context.Background()); report.Err == nil {
		t.Fatal("expected save failure")
	}
	if !strings.Contains(buf.String(), "encoder out of memory") {
		t.Errorf("expected the encoder error in the log, got: %s", buf.String())
	}
}

func TestEngine_LegacyTupleUpgrade(t *testing.T) {
	legacy := `[{"1":{"id":1,"owner":"alice","title":"Groceries","content":"milk","created_at":10}},2]`
	medium := stable.NewMemoryMediumWith([]byte(legacy))

	e := newTestEngine(t, medium)
	report := e.OnPostRestart(context.Background())
	if report.Err != nil || report.Format != snapshot.FormatLegacyTuple || report.Notes != 1 {
		t.Fatalf("report = %+v", report)
	}

	// The next save rewrites the legacy data in the current format.
	next, report := restart(t, e, medium)
	if report.Format != snapshot.FormatV1 {
		t.Fatalf("format after resave = %v, want v1", report.Format)
	}
	got, ok := next.Table().Get(context.Background(), 1)
	if !ok || got.Title != "Groceries" || got.Owner != "alice" {
		t.Fatalf("Get(1) = %+v, %v", got, ok)
	}
}

func TestEngine_SerializationFaultKeepsStaleSnapshot(t *testing.T) {
	ctx := context.Background()
	medium, err := stable.NewFileMedium(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	// Generation 1 stores one note.
	gen1 := newTestEngine(t, medium)
	gen1.OnPostRestart(ctx)
	addNote(gen1, "alice", "first", "kept")

	// Generation 2 restores it, grows to three notes and then fails to
	// serialize on shutdown.
	faulty := snapshot.WithEncoder(func(domain.State) ([]byte, error) {
		panic("serializer fault")
	})
	gen2, report := restart(t, gen1, medium, faulty)
	if report.Notes != 1 {
		t.Fatalf("gen2 restored %d notes, want 1", report.Notes)
	}
	addNote(gen2, "alice", "second", "lost")
	addNote(gen2, "bob", "third", "lost")

	save := gen2.OnPreRestart(ctx)
	if save.Err == nil {
		t.Fatal("expected save failure")
	}
	var fault *snapshot.FaultError
	if !errors.As(save.Err, &fault) {
		t.Fatalf("save.Err = %v, want FaultError", save.Err)
	}
	if save.Notes != 3 {
		t.Fatalf("save.Notes = %d, want 3", save.Notes)
	}

	// Generation 3 sees the stale single-note snapshot, never a partial one.
	gen3 := newTestEngine(t, medium)
	report = gen3.OnPostRestart(ctx)
	if report.Err != nil || report.Format != snapshot.FormatV1 {
		t.Fatalf("gen3 report = %+v", report)
	}
	if gen3.Table().Count() != 1 || gen3.Table().NextID() != 2 {
		t.Fatalf("gen3 has %d notes next %d, want 1 note next 2", gen3.Table().Count(), gen3.Table().NextID())
	}
}

// explodingMedium panics on every read and write.
type explodingMedium struct{ stable.Medium }

func (explodingMedium) Read(context.Context) ([]byte, error) { panic("read fault") }
func (explodingMedium) Write(context.Context, []byte) error  { panic("write fault") }

func TestEngine_MediumPanicsAreAbsorbed(t *testing.T) {
	e := newTestEngine(t, explodingMedium{})
	addNote(e, "alice", "a", "b")

	save := e.OnPreRestart(context.Background())
	if save.Err == nil {
		t.Fatal("expected save error")
	}

	restore := e.OnPostRestart(context.Background())
	if restore.Err == nil || restore.Format != snapshot.FormatEmpty {
		t.Fatalf("restore report = %+v", restore)
	}
	if e.Table().Count() != 0 || e.Table().NextID() != 1 {
		t.Fatal("table must be reset to empty after a failed restore")
	}
}

func TestEngine_ChecksumMismatchRestoresEmpty(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	medium, _ := stable.NewFileMedium(dir)

	e := newTestEngine(t, medium)
	addNote(e, "alice", "a", "b")
	if report := e.OnPreRestart(ctx); report.Err != nil {
		t.Fatal(report.Err)
	}

	path := filepath.Join(dir, stable.FileName)
	raw, _ := os.ReadFile(path)
	raw[20] ^= 0xFF
	os.WriteFile(path, raw, 0600)

	next := newTestEngine(t, medium)
	report := next.OnPostRestart(ctx)
	if !errors.Is(report.Err, domain.ErrStableRead) || !errors.Is(report.Err, stable.ErrChecksumMismatch) {
		t.Fatalf("report.Err = %v, want ErrStableRead wrapping ErrChecksumMismatch", report.Err)
	}
	if next.Table().Count() != 0 {
		t.Fatal("table should be empty")
	}
}

func TestEngine_SealedMediumWrongKey(t *testing.T) {
	ctx := context.Background()
	inner := stable.NewMemoryMedium()
	key := make([]byte, 32)
	sealed, _ := stable.NewSealedMedium(inner, stable.SealConfig{Key: key})

	e := newTestEngine(t, sealed)
	addNote(e, "alice", "secret", "notes")

	next, report := restart(t, e, sealed)
	if report.Err != nil || next.Table().Count() != 1 {
		t.Fatalf("sealed round trip report = %+v", report)
	}

	otherKey := make([]byte, 32)
	otherKey[0] = 1
	wrong, _ := stable.NewSealedMedium(inner, stable.SealConfig{Key: otherKey})
	locked := newTestEngine(t, wrong)
	report = locked.OnPostRestart(ctx)
	if !errors.Is(report.Err, stable.ErrDecryptionFailed) {
		t.Fatalf("report.Err = %v, want ErrDecryptionFailed", report.Err)
	}
	if locked.Table().Count() != 0 {
		t.Fatal("table should be empty")
	}
}

func TestEngine_Close(t *testing.T) {
	medium := stable.NewMemoryMedium()
	e := newTestEngine(t, medium)
	e.OnPostRestart(context.Background())

	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if e.Ready() {
		t.Fatal("engine should not be ready after Close")
	}
	if _, err := medium.Read(context.Background()); !errors.Is(err, stable.ErrClosed) {
		t.Fatalf("medium not closed: %v", err)
	}
}
