package event

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

// recordSink captures emitted alerts for assertions.
type recordSink struct {
	alerts []Alert
}

func (s *recordSink) Emit(_ context.Context, a Alert) error {
	s.alerts = append(s.alerts, a)
	return nil
}

func addEvents(t *testing.T, c *Collector, teamID string, stamps []time.Time) {
	t.Helper()
	for _, ts := range stamps {
		err := c.Ingest(TeamEvent{
			TeamID: teamID, Participants: []string{"ana", "bo"}, Timestamp: ts, Type: TypeMessage,
		})
		if err != nil {
			t.Fatalf("ingest: %v", err)
		}
	}
}

func TestFrequencyDropRaisesAlert(t *testing.T) {
	c := NewCollector(90, zap.NewNop())
	now := time.Now()

	// Busy early half, near-silent late half.
	var stamps []time.Time
	for d := 20; d >= 12; d-- {
		stamps = append(stamps, now.Add(-time.Duration(d)*24*time.Hour))
	}
	stamps = append(stamps, now.Add(-24*time.Hour))
	addEvents(t, c, "t1", stamps)

	sink := &recordSink{}
	engine := NewAlertEngine(c, AlertThresholds{
		FrequencyDropRatio: 0.5,
		MinEvents:          5,
		WindowDays:         30,
	}, zap.NewNop(), sink)

	alerts := engine.Evaluate(context.Background(), "t1")
	if len(alerts) != 1 {
		t.Fatalf("got %d alerts, want 1", len(alerts))
	}
	if alerts[0].Metric != "event_frequency_ratio" {
		t.Errorf("got metric %q, want event_frequency_ratio", alerts[0].Metric)
	}
	if len(sink.alerts) != 1 {
		t.Errorf("sink received %d alerts, want 1", len(sink.alerts))
	}
}

func TestSteadyCadenceRaisesNothing(t *testing.T) {
	c := NewCollector(90, zap.NewNop())
	now := time.Now()

	var stamps []time.Time
	for d := 10; d >= 1; d-- {
		stamps = append(stamps, now.Add(-time.Duration(d)*24*time.Hour))
	}
	addEvents(t, c, "t1", stamps)

	engine := NewAlertEngine(c, DefaultAlertThresholds(), zap.NewNop())
	if alerts := engine.Evaluate(context.Background(), "t1"); len(alerts) != 0 {
		t.Errorf("got %d alerts, want 0", len(alerts))
	}
}

func TestTooFewEventsSkipsRules(t *testing.T) {
	c := NewCollector(90, zap.NewNop())
	addEvents(t, c, "t1", []time.Time{time.Now().Add(-time.Hour)})

	engine := NewAlertEngine(c, DefaultAlertThresholds(), zap.NewNop())
	if alerts := engine.Evaluate(context.Background(), "t1"); alerts != nil {
		t.Errorf("got %v, want nil below MinEvents", alerts)
	}
}
