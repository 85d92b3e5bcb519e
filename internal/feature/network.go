package feature

import (
	"github.com/nidhogg/teamlens/internal/event"
	"github.com/nidhogg/teamlens/internal/stats"
)

func networkDefaults() map[string]float64 {
	return map[string]float64{
		"network_connectivity":   0.1,
		"participation_balance":  0.3,
		"team_size_ratio":        0.5,
		"cross_functional_ratio": 0.3,
	}
}

// extractNetwork builds an undirected participant-pair graph from
// co-occurrence in events and scores its shape.
func extractNetwork(events []event.TeamEvent, teamCtx TeamContext, expectedTeamSize float64) map[string]float64 {
	if len(events) == 0 {
		return networkDefaults()
	}

	out := networkDefaults()

	pairs := map[[2]string]struct{}{}
	counts := map[string]int{}
	for _, ev := range events {
		for _, p := range ev.Participants {
			counts[p]++
		}
		for i := 0; i < len(ev.Participants); i++ {
			for j := i + 1; j < len(ev.Participants); j++ {
				a, b := ev.Participants[i], ev.Participants[j]
				if a == b {
					continue
				}
				if a > b {
					a, b = b, a
				}
				pairs[[2]string{a, b}] = struct{}{}
			}
		}
	}

	n := len(counts)
	if possible := n * (n - 1) / 2; possible > 0 {
		out["network_connectivity"] = float64(len(pairs)) / float64(possible)
	} else {
		// A single participant has full trivial connectivity.
		out["network_connectivity"] = 1.0
	}

	values := make([]float64, 0, n)
	for _, c := range counts {
		values = append(values, float64(c))
	}
	if mean := stats.Mean(values); mean > 0 {
		out["participation_balance"] = stats.Clamp01(1 - stats.StdDev(values)/mean)
	}

	expected := teamCtx.Float("expected_team_size", expectedTeamSize)
	if expected < 1 {
		expected = 1
	}
	out["team_size_ratio"] = stats.Clamp01(float64(n) / expected)

	if roles := teamCtx.Roles("participant_roles"); len(roles) > 0 && n > 0 {
		distinct := map[string]struct{}{}
		for p := range counts {
			if r, ok := roles[p]; ok {
				distinct[r] = struct{}{}
			}
		}
		out["cross_functional_ratio"] = stats.Clamp01(float64(len(distinct)) / float64(n))
	}

	return out
}
