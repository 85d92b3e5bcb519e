package feature

import (
	"math"

	"github.com/nidhogg/teamlens/internal/event"
	"github.com/nidhogg/teamlens/internal/stats"
)

// communicationDefaults is the documented output for empty input.
func communicationDefaults() map[string]float64 {
	return map[string]float64{
		"communication_frequency":      0.0,
		"avg_response_time_hours":      48.0,
		"response_time_consistency":    0.1,
		"avg_clarity_score":            0.3,
		"participant_engagement_ratio": 0.1,
	}
}

// extractCommunication scores message cadence, responsiveness and clarity.
func extractCommunication(events []event.TeamEvent, teamCtx TeamContext, expectedTeamSize float64) map[string]float64 {
	if len(events) == 0 {
		return communicationDefaults()
	}

	out := communicationDefaults()

	// Events per day since the first event, denominator clamped to >= 1 day.
	spanDays := math.Max(events[len(events)-1].Timestamp.Sub(events[0].Timestamp).Hours()/24, 1)
	out["communication_frequency"] = float64(len(events)) / spanDays

	if intervals := intervalsHours(events); len(intervals) > 0 {
		out["avg_response_time_hours"] = stats.Mean(intervals)
		out["response_time_consistency"] = 1 / (1 + stats.StdDev(intervals))
	}

	// Context richness as a clarity proxy: context size / 10, capped at 1.
	clarity := make([]float64, len(events))
	for i, ev := range events {
		clarity[i] = math.Min(float64(len(ev.Context))/10, 1.0)
	}
	out["avg_clarity_score"] = stats.Mean(clarity)

	expected := teamCtx.Float("expected_team_size", expectedTeamSize)
	if expected < 1 {
		expected = 1
	}
	out["participant_engagement_ratio"] = stats.Clamp01(
		float64(len(uniqueParticipants(events))) / expected)

	return out
}

// intervalsHours returns the gaps between consecutive events, in hours.
func intervalsHours(events []event.TeamEvent) []float64 {
	if len(events) < 2 {
		return nil
	}
	out := make([]float64, len(events)-1)
	for i := 1; i < len(events); i++ {
		out[i-1] = events[i].Timestamp.Sub(events[i-1].Timestamp).Hours()
	}
	return out
}

// uniqueParticipants returns the distinct participant set across events.
func uniqueParticipants(events []event.TeamEvent) map[string]struct{} {
	seen := map[string]struct{}{}
	for _, ev := range events {
		for _, p := range ev.Participants {
			seen[p] = struct{}{}
		}
	}
	return seen
}
