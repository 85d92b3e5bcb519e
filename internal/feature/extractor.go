package feature

import (
	"time"

	"github.com/nidhogg/teamlens/internal/event"
	"go.uber.org/zap"
)

// Config controls windowing and team-size normalization.
type Config struct {
	WindowDays       int     `json:"window_days"`
	ExpectedTeamSize float64 `json:"expected_team_size"`
}

// DefaultConfig returns the standard extraction settings.
func DefaultConfig() Config {
	return Config{
		WindowDays:       30,
		ExpectedTeamSize: 5,
	}
}

// Extractor composes the four independent extractors into one vector.
// It holds no mutable state; extraction is safe to run concurrently.
type Extractor struct {
	config Config
	logger *zap.Logger
	now    func() time.Time
}

// NewExtractor creates an extractor. Zero config values fall back to
// defaults.
func NewExtractor(cfg Config, logger *zap.Logger) *Extractor {
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = DefaultConfig().WindowDays
	}
	if cfg.ExpectedTeamSize <= 0 {
		cfg.ExpectedTeamSize = DefaultConfig().ExpectedTeamSize
	}
	return &Extractor{config: cfg, logger: logger, now: time.Now}
}

// Extract filters events to the configured window and runs the four
// extractors. The returned vector always carries all 20 canonical keys.
func (e *Extractor) Extract(events []event.TeamEvent, teamCtx TeamContext) Vector {
	now := e.now()
	windowed := filterWindow(events, now, e.config.WindowDays)

	v := Vector{
		Communication: extractCommunication(windowed, teamCtx, e.config.ExpectedTeamSize),
		Temporal:      extractTemporal(windowed, teamCtx, now),
		Network:       extractNetwork(windowed, teamCtx, e.config.ExpectedTeamSize),
		Contextual:    extractContextual(teamCtx),
		GeneratedAt:   now,
	}

	e.logger.Debug("features extracted",
		zap.Int("events_in", len(events)),
		zap.Int("events_windowed", len(windowed)),
		zap.Float64("frequency", v.Communication["communication_frequency"]))
	return v
}

// filterWindow keeps events within [now - days, now].
func filterWindow(events []event.TeamEvent, now time.Time, days int) []event.TeamEvent {
	cutoff := now.Add(-time.Duration(days) * 24 * time.Hour)
	out := make([]event.TeamEvent, 0, len(events))
	for _, ev := range events {
		if !ev.Timestamp.Before(cutoff) && !ev.Timestamp.After(now) {
			out = append(out, ev)
		}
	}
	return out
}
