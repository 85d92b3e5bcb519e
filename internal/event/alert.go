package event

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Severity grades an alert.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Alert is an informational output of threshold evaluation. It never
// interrupts control flow.
type Alert struct {
	TeamID      string    `json:"team_id"`
	Severity    Severity  `json:"severity"`
	Description string    `json:"description"`
	Metric      string    `json:"metric"`
	Value       float64   `json:"value"`
	RaisedAt    time.Time `json:"raised_at"`
}

// Sink receives emitted alerts. Emission failures are logged, not raised.
type Sink interface {
	Emit(ctx context.Context, alert Alert) error
}

// LogSink writes alerts to the structured log.
type LogSink struct {
	Logger *zap.Logger
}

// Emit implements Sink.
func (s *LogSink) Emit(_ context.Context, a Alert) error {
	s.Logger.Warn("team alert",
		zap.String("team", a.TeamID),
		zap.String("severity", string(a.Severity)),
		zap.String("metric", a.Metric),
		zap.Float64("value", a.Value),
		zap.String("description", a.Description))
	return nil
}

// AlertThresholds configures the alert rules.
type AlertThresholds struct {
	// FrequencyDropRatio fires when the recent half of the window carries
	// fewer than this fraction of the prior half's events.
	FrequencyDropRatio float64 `json:"frequency_drop_ratio"`
	// MinEvents is the minimum window population before rules apply.
	MinEvents int `json:"min_events"`
	// WindowDays is the evaluation window.
	WindowDays int `json:"window_days"`
}

// DefaultAlertThresholds returns the standard rule configuration.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		FrequencyDropRatio: 0.5,
		MinEvents:          6,
		WindowDays:         30,
	}
}

// AlertEngine evaluates threshold rules over a collector's windows.
type AlertEngine struct {
	collector  *Collector
	thresholds AlertThresholds
	sinks      []Sink
	logger     *zap.Logger
}

// NewAlertEngine creates an engine over the collector. Zero thresholds
// fall back to defaults; with no sinks a LogSink is installed.
func NewAlertEngine(c *Collector, t AlertThresholds, logger *zap.Logger, sinks ...Sink) *AlertEngine {
	if t.WindowDays == 0 {
		t = DefaultAlertThresholds()
	}
	if len(sinks) == 0 {
		sinks = []Sink{&LogSink{Logger: logger}}
	}
	return &AlertEngine{collector: c, thresholds: t, sinks: sinks, logger: logger}
}

// Evaluate applies the configured rules to one team's window and emits any
// resulting alerts to all sinks. The alerts are also returned.
func (e *AlertEngine) Evaluate(ctx context.Context, teamID string) []Alert {
	events := e.collector.Window(teamID, e.thresholds.WindowDays)
	if len(events) < e.thresholds.MinEvents {
		return nil
	}

	var alerts []Alert
	if a, ok := e.frequencyDrop(teamID, events); ok {
		alerts = append(alerts, a)
	}

	for _, a := range alerts {
		for _, sink := range e.sinks {
			if err := sink.Emit(ctx, a); err != nil {
				e.logger.Warn("alert sink failed",
					zap.String("team", teamID), zap.Error(err))
			}
		}
	}
	return alerts
}

// frequencyDrop compares event counts in the two halves of the window and
// fires when the recent half falls below the configured ratio.
func (e *AlertEngine) frequencyDrop(teamID string, events []TeamEvent) (Alert, bool) {
	first := events[0].Timestamp
	last := events[len(events)-1].Timestamp
	mid := first.Add(last.Sub(first) / 2)

	var early, late int
	for _, ev := range events {
		if ev.Timestamp.Before(mid) {
			early++
		} else {
			late++
		}
	}
	if early == 0 {
		return Alert{}, false
	}

	ratio := float64(late) / float64(early)
	if ratio >= e.thresholds.FrequencyDropRatio {
		return Alert{}, false
	}

	severity := SeverityWarning
	if ratio < e.thresholds.FrequencyDropRatio/2 {
		severity = SeverityCritical
	}
	return Alert{
		TeamID:   teamID,
		Severity: severity,
		Description: fmt.Sprintf(
			"interaction frequency dropped to %.0f%% of the prior period", ratio*100),
		Metric:   "event_frequency_ratio",
		Value:    ratio,
		RaisedAt: time.Now(),
	}, true
}
