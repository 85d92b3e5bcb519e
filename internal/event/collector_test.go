package event

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestIngestValidation(t *testing.T) {
	c := NewCollector(90, zap.NewNop())
	now := time.Now()

	cases := []struct {
		name string
		ev   TeamEvent
	}{
		{"missing team", TeamEvent{Timestamp: now, Participants: []string{"ana"}}},
		{"no participants", TeamEvent{TeamID: "t1", Timestamp: now}},
		{"zero timestamp", TeamEvent{TeamID: "t1", Participants: []string{"ana"}}},
		{"future timestamp", TeamEvent{
			TeamID: "t1", Participants: []string{"ana"},
			Timestamp: now.Add(time.Hour),
		}},
	}
	for _, tc := range cases {
		if err := c.Ingest(tc.ev); !errors.Is(err, ErrMalformedEvent) {
			t.Errorf("%s: got %v, want ErrMalformedEvent", tc.name, err)
		}
	}

	ok := TeamEvent{TeamID: "t1", Participants: []string{"ana", "bo"}, Timestamp: now, Type: TypeMeeting}
	if err := c.Ingest(ok); err != nil {
		t.Fatalf("valid event rejected: %v", err)
	}
}

func TestBatchContinuesPastMalformed(t *testing.T) {
	c := NewCollector(90, zap.NewNop())
	now := time.Now()

	batch := []TeamEvent{
		{TeamID: "t1", Participants: []string{"ana"}, Timestamp: now.Add(-2 * time.Hour)},
		{TeamID: "t1", Timestamp: now}, // malformed
		{TeamID: "t1", Participants: []string{"bo"}, Timestamp: now.Add(-time.Hour)},
	}
	if got := c.IngestBatch(batch); got != 2 {
		t.Errorf("got %d accepted, want 2", got)
	}
	if got := len(c.Window("t1", 1)); got != 2 {
		t.Errorf("got %d events in window, want 2", got)
	}
}

func TestWindowOrderedAscending(t *testing.T) {
	c := NewCollector(90, zap.NewNop())
	now := time.Now()

	// Out-of-order arrival.
	offsets := []time.Duration{-1 * time.Hour, -5 * time.Hour, -3 * time.Hour}
	for _, off := range offsets {
		err := c.Ingest(TeamEvent{
			TeamID: "t1", Participants: []string{"ana"}, Timestamp: now.Add(off),
		})
		if err != nil {
			t.Fatalf("ingest: %v", err)
		}
	}

	window := c.Window("t1", 1)
	if len(window) != 3 {
		t.Fatalf("got %d events, want 3", len(window))
	}
	for i := 1; i < len(window); i++ {
		if window[i].Timestamp.Before(window[i-1].Timestamp) {
			t.Fatalf("window not ascending at %d", i)
		}
	}
}

func TestWindowExcludesOldEvents(t *testing.T) {
	c := NewCollector(90, zap.NewNop())
	now := time.Now()

	for _, off := range []time.Duration{-40 * 24 * time.Hour, -2 * 24 * time.Hour} {
		err := c.Ingest(TeamEvent{
			TeamID: "t1", Participants: []string{"ana"}, Timestamp: now.Add(off),
		})
		if err != nil {
			t.Fatalf("ingest: %v", err)
		}
	}
	if got := len(c.Window("t1", 30)); got != 1 {
		t.Errorf("got %d events in 30d window, want 1", got)
	}
}
