package feature

import (
	"math"
	"time"

	"github.com/nidhogg/teamlens/internal/event"
	"github.com/nidhogg/teamlens/internal/stats"
)

func temporalDefaults() map[string]float64 {
	return map[string]float64{
		"collaboration_duration_days":    0.0,
		"timing_consistency":             0.3,
		"avg_interaction_interval_hours": 48.0,
		"business_hours_ratio":           0.5,
		"deadline_pressure":              0.5,
	}
}

// extractTemporal scores rhythm: span, regularity and schedule pressure.
func extractTemporal(events []event.TeamEvent, teamCtx TeamContext, now time.Time) map[string]float64 {
	out := temporalDefaults()
	out["deadline_pressure"] = deadlinePressure(teamCtx, now)

	if len(events) == 0 {
		return out
	}

	out["collaboration_duration_days"] =
		events[len(events)-1].Timestamp.Sub(events[0].Timestamp).Hours() / 24

	if intervals := intervalsHours(events); len(intervals) > 0 {
		out["timing_consistency"] = 1 / (1 + stats.StdDev(intervals))
		out["avg_interaction_interval_hours"] = stats.Mean(intervals)
	}

	business := 0
	for _, ev := range events {
		if h := ev.Timestamp.Local().Hour(); h >= 9 && h <= 17 {
			business++
		}
	}
	out["business_hours_ratio"] = float64(business) / float64(len(events))

	return out
}

// deadlinePressure is max(0, 1 - days_to_deadline/30) when a deadline is
// supplied, saturating at 1 for overdue work, else the 0.5 neutral default.
func deadlinePressure(teamCtx TeamContext, now time.Time) float64 {
	deadline, ok := teamCtx.Deadline("deadline")
	if !ok {
		return 0.5
	}
	daysLeft := deadline.Sub(now).Hours() / 24
	return stats.Clamp01(math.Max(0, 1-daysLeft/30))
}
