package feature

import (
	"math"

	"github.com/nidhogg/teamlens/internal/stats"
)

// extractContextual derives scores purely from the team context; events
// play no part here.
func extractContextual(teamCtx TeamContext) map[string]float64 {
	return map[string]float64{
		"project_complexity":        math.Min(1, teamCtx.Count("complexity_indicators")/10),
		"team_experience_score":     math.Min(1, teamCtx.Float("team_experience_months", 0)/36),
		"organizational_support":    stats.Clamp01(teamCtx.Float("organizational_support", 0.5)),
		"resource_availability":     stats.Clamp01(teamCtx.Float("resource_availability", 0.5)),
		"change_pressure":           math.Min(1, teamCtx.Count("recent_changes")/5),
		"external_dependency_ratio": math.Min(1, teamCtx.Count("external_dependencies")/5),
	}
}
