package persist

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nidhogg/teamlens/internal/layer"
	"go.uber.org/zap"
)

func testSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "snapshots.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteSaveLoadRoundtrip(t *testing.T) {
	s := testSQLiteStore(t)
	ctx := context.Background()
	now := time.Now()

	entries := []layer.Entry{
		{ID: "a", Timestamp: now.Add(-time.Hour), Content: "decision log",
			Priority: layer.PriorityHigh, TTLDays: 14},
		{ID: "b", Timestamp: now, Content: "followup", Priority: layer.PriorityNormal},
	}
	if err := s.SaveEntries(ctx, layer.Strategic, entries); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.LoadEntries(ctx, layer.Strategic)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	// Oldest first.
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("got order %s,%s want a,b", got[0].ID, got[1].ID)
	}
	if !got[0].Timestamp.Equal(entries[0].Timestamp) {
		t.Errorf("timestamp drifted: %v vs %v", got[0].Timestamp, entries[0].Timestamp)
	}
	if got[0].Layer != layer.Strategic {
		t.Errorf("got layer %s, want strategic", got[0].Layer)
	}
	if got[0].Priority != layer.PriorityHigh || got[0].TTLDays != 14 {
		t.Errorf("entry fields lost: %+v", got[0])
	}
}

func TestSQLiteSaveReplacesLayer(t *testing.T) {
	s := testSQLiteStore(t)
	ctx := context.Background()
	now := time.Now()

	first := []layer.Entry{
		{ID: "old1", Timestamp: now.Add(-2 * time.Hour), Content: "x"},
		{ID: "old2", Timestamp: now.Add(-time.Hour), Content: "y"},
	}
	if err := s.SaveEntries(ctx, layer.Learning, first); err != nil {
		t.Fatalf("save: %v", err)
	}
	second := []layer.Entry{
		{ID: "new", Timestamp: now, Content: "z"},
	}
	if err := s.SaveEntries(ctx, layer.Learning, second); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.LoadEntries(ctx, layer.Learning)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].ID != "new" {
		t.Errorf("snapshot not replaced: %+v", got)
	}
}

func TestSQLiteLayersIsolated(t *testing.T) {
	s := testSQLiteStore(t)
	ctx := context.Background()
	now := time.Now()

	if err := s.SaveEntries(ctx, layer.Conversation, []layer.Entry{
		{ID: "c", Timestamp: now, Content: "chat"},
	}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.SaveEntries(ctx, layer.Organizational, nil); err != nil {
		t.Fatalf("save empty: %v", err)
	}

	conv, err := s.LoadEntries(ctx, layer.Conversation)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(conv) != 1 {
		t.Errorf("conversation layer affected by other saves: %d entries", len(conv))
	}
	org, err := s.LoadEntries(ctx, layer.Organizational)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(org) != 0 {
		t.Errorf("got %d organizational entries, want 0", len(org))
	}
}
