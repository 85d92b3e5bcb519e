package predict

import (
	"math"
	"sort"

	"github.com/nidhogg/teamlens/internal/feature"
	"github.com/nidhogg/teamlens/internal/stats"
)

// The classifier is a fixed weighted-rule scorer. Favorable features add
// their weighted value; pressure features add the weighted complement.
// Weights sum to 1.0, so the probability is a weighted mean in [0, 1].
var (
	favorableWeights = map[string]float64{
		"communication_frequency":      0.08,
		"response_time_consistency":    0.06,
		"avg_clarity_score":            0.06,
		"participant_engagement_ratio": 0.08,
		"timing_consistency":           0.06,
		"business_hours_ratio":         0.03,
		"network_connectivity":         0.09,
		"participation_balance":        0.07,
		"team_experience_score":        0.07,
		"organizational_support":       0.07,
		"resource_availability":        0.07,
	}
	pressureWeights = map[string]float64{
		"deadline_pressure":         0.07,
		"change_pressure":           0.07,
		"project_complexity":        0.07,
		"external_dependency_ratio": 0.05,
	}
)

// frequencySaturation is the events/day rate treated as fully healthy
// cadence when normalizing communication_frequency.
const frequencySaturation = 2.0

// classify maps the vector to a success probability plus the top feature
// contributions, largest first.
func classify(v feature.Vector) (float64, []Contribution) {
	var probability float64
	contributions := make([]Contribution, 0, len(favorableWeights)+len(pressureWeights))

	for name, w := range favorableWeights {
		val := normalized(v, name)
		share := w * val
		probability += share
		contributions = append(contributions, Contribution{
			Feature: name, Value: val, Weight: w, Share: share,
		})
	}
	for name, w := range pressureWeights {
		val := normalized(v, name)
		share := w * (1 - val)
		probability += share
		contributions = append(contributions, Contribution{
			Feature: name, Value: val, Weight: -w, Share: share,
		})
	}

	// Deterministic ordering: share descending, then name.
	sort.Slice(contributions, func(i, j int) bool {
		if contributions[i].Share != contributions[j].Share {
			return contributions[i].Share > contributions[j].Share
		}
		return contributions[i].Feature < contributions[j].Feature
	})
	if len(contributions) > 5 {
		contributions = contributions[:5]
	}

	return stats.Clamp01(probability), contributions
}

// normalized reads a feature and maps it into [0, 1]. Only the raw
// events/day rate needs rescaling; everything else is ratio-valued.
func normalized(v feature.Vector, name string) float64 {
	val, _ := v.Get(name)
	if name == "communication_frequency" {
		return math.Min(val/frequencySaturation, 1)
	}
	return stats.Clamp01(val)
}
