package feature

import (
	"testing"
	"time"

	"github.com/nidhogg/teamlens/internal/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestExtractor() *Extractor {
	return NewExtractor(DefaultConfig(), zap.NewNop())
}

func TestEmptyInputDefaults(t *testing.T) {
	v := newTestExtractor().Extract(nil, TeamContext{})

	assert.Equal(t, map[string]float64{
		"communication_frequency":      0.0,
		"avg_response_time_hours":      48.0,
		"response_time_consistency":    0.1,
		"avg_clarity_score":            0.3,
		"participant_engagement_ratio": 0.1,
	}, v.Communication)

	assert.Equal(t, map[string]float64{
		"collaboration_duration_days":    0.0,
		"timing_consistency":             0.3,
		"avg_interaction_interval_hours": 48.0,
		"business_hours_ratio":           0.5,
		"deadline_pressure":              0.5,
	}, v.Temporal)

	assert.Equal(t, map[string]float64{
		"network_connectivity":   0.1,
		"participation_balance":  0.3,
		"team_size_ratio":        0.5,
		"cross_functional_ratio": 0.3,
	}, v.Network)
}

func TestVectorAlwaysComplete(t *testing.T) {
	ex := newTestExtractor()

	inputs := [][]event.TeamEvent{
		nil,
		{{
			TeamID:       "t1",
			Timestamp:    time.Now().Add(-time.Hour),
			Participants: []string{"ana"},
		}},
	}
	for _, events := range inputs {
		v := ex.Extract(events, TeamContext{})
		total := len(v.Communication) + len(v.Temporal) + len(v.Network) + len(v.Contextual)
		require.Equal(t, 20, total)
		for _, key := range Keys() {
			_, ok := v.Get(key)
			assert.True(t, ok, "missing key %s", key)
		}
	}
}

// businessHourEvents returns n events at 10:00 local time, the last one
// yesterday and the rest spread backward over spanDays.
func businessHourEvents(n, spanDays int, participants []string) []event.TeamEvent {
	now := time.Now()
	end := time.Date(now.Year(), now.Month(), now.Day(), 10, 0, 0, 0, time.Local).
		Add(-24 * time.Hour)

	out := make([]event.TeamEvent, n)
	for i := 0; i < n; i++ {
		// Whole-day offsets keep every event on the 10:00 anchor.
		days := spanDays * (n - 1 - i) / (n - 1)
		out[i] = event.TeamEvent{
			TeamID:       "t1",
			Timestamp:    end.Add(-time.Duration(days) * 24 * time.Hour),
			Participants: participants,
			Type:         event.TypeMeeting,
			Context:      map[string]any{"channel": "standup"},
		}
	}
	return out
}

func TestBusinessHoursScenario(t *testing.T) {
	// 4 events over 10 days, all business hours, the same 2 participants.
	events := businessHourEvents(4, 10, []string{"ana", "bo"})
	v := newTestExtractor().Extract(events, TeamContext{})

	assert.Equal(t, 1.0, v.Temporal["business_hours_ratio"])
	assert.InDelta(t, 10.0, v.Temporal["collaboration_duration_days"], 0.01)
	assert.Equal(t, 1.0, v.Network["network_connectivity"])
}

func TestCommunicationFrequencyClampsDenominator(t *testing.T) {
	// Two events an hour apart: span < 1 day clamps to a 1-day denominator.
	now := time.Now()
	events := []event.TeamEvent{
		{TeamID: "t1", Timestamp: now.Add(-2 * time.Hour), Participants: []string{"ana"}},
		{TeamID: "t1", Timestamp: now.Add(-time.Hour), Participants: []string{"ana"}},
	}
	v := newTestExtractor().Extract(events, TeamContext{})
	assert.InDelta(t, 2.0, v.Communication["communication_frequency"], 1e-9)
}

func TestDeadlinePressure(t *testing.T) {
	ex := newTestExtractor()
	now := time.Now()

	// 15 days out: 1 - 15/30 = 0.5.
	v := ex.Extract(nil, TeamContext{"deadline": now.Add(15 * 24 * time.Hour)})
	assert.InDelta(t, 0.5, v.Temporal["deadline_pressure"], 0.01)

	// Overdue saturates at 1.
	v = ex.Extract(nil, TeamContext{"deadline": now.Add(-5 * 24 * time.Hour)})
	assert.Equal(t, 1.0, v.Temporal["deadline_pressure"])

	// Absent: neutral 0.5.
	v = ex.Extract(nil, TeamContext{})
	assert.Equal(t, 0.5, v.Temporal["deadline_pressure"])
}

func TestContextualPassThrough(t *testing.T) {
	teamCtx := TeamContext{
		"complexity_indicators":  []string{"multi-region", "compliance", "legacy"},
		"team_experience_months": 18,
		"organizational_support": 0.9,
		"recent_changes":         2,
		"external_dependencies":  []string{"vendor-api"},
	}
	v := newTestExtractor().Extract(nil, teamCtx)

	assert.InDelta(t, 0.3, v.Contextual["project_complexity"], 1e-9)
	assert.InDelta(t, 0.5, v.Contextual["team_experience_score"], 1e-9)
	assert.Equal(t, 0.9, v.Contextual["organizational_support"])
	assert.Equal(t, 0.5, v.Contextual["resource_availability"]) // default
	assert.InDelta(t, 0.4, v.Contextual["change_pressure"], 1e-9)
	assert.InDelta(t, 0.2, v.Contextual["external_dependency_ratio"], 1e-9)
}

func TestCrossFunctionalRatioFromRoles(t *testing.T) {
	events := businessHourEvents(3, 5, []string{"ana", "bo", "kim"})
	teamCtx := TeamContext{
		"participant_roles": map[string]string{
			"ana": "engineer",
			"bo":  "engineer",
			"kim": "designer",
		},
	}
	v := newTestExtractor().Extract(events, teamCtx)
	assert.InDelta(t, 2.0/3.0, v.Network["cross_functional_ratio"], 1e-9)
}

func TestWindowFiltering(t *testing.T) {
	now := time.Now()
	events := []event.TeamEvent{
		{TeamID: "t1", Timestamp: now.Add(-60 * 24 * time.Hour), Participants: []string{"ana"}},
		{TeamID: "t1", Timestamp: now.Add(-time.Hour), Participants: []string{"ana"}},
	}
	v := newTestExtractor().Extract(events, TeamContext{})
	// Only the recent event survives the 30-day window: no intervals, so
	// the response-time default applies.
	assert.Equal(t, 48.0, v.Communication["avg_response_time_hours"])
}
