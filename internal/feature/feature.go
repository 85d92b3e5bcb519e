// Package feature transforms irregular team-event streams into the
// fixed-shape numeric vector consumed by the prediction engine. The four
// extractors are pure functions with documented defaults for empty input,
// so the vector always carries the same 20 keys.
package feature

import "time"

// Canonical key sets, in the order downstream consumers expect:
// communication (5) -> temporal (5) -> network (4) -> contextual (6).
var (
	CommunicationKeys = []string{
		"communication_frequency",
		"avg_response_time_hours",
		"response_time_consistency",
		"avg_clarity_score",
		"participant_engagement_ratio",
	}
	TemporalKeys = []string{
		"collaboration_duration_days",
		"timing_consistency",
		"avg_interaction_interval_hours",
		"business_hours_ratio",
		"deadline_pressure",
	}
	NetworkKeys = []string{
		"network_connectivity",
		"participation_balance",
		"team_size_ratio",
		"cross_functional_ratio",
	}
	ContextualKeys = []string{
		"project_complexity",
		"team_experience_score",
		"organizational_support",
		"resource_availability",
		"change_pressure",
		"external_dependency_ratio",
	}
)

// Keys returns all 20 canonical keys in order.
func Keys() []string {
	out := make([]string, 0, 20)
	out = append(out, CommunicationKeys...)
	out = append(out, TemporalKeys...)
	out = append(out, NetworkKeys...)
	out = append(out, ContextualKeys...)
	return out
}

// Vector is the composed feature record. Every sub-map holds exactly its
// canonical key set regardless of input.
type Vector struct {
	Communication map[string]float64 `json:"communication_features"`
	Temporal      map[string]float64 `json:"temporal_features"`
	Network       map[string]float64 `json:"network_features"`
	Contextual    map[string]float64 `json:"contextual_features"`
	GeneratedAt   time.Time          `json:"timestamp"`
}

// Get looks a feature up across the four sub-maps.
func (v Vector) Get(key string) (float64, bool) {
	for _, m := range []map[string]float64{v.Communication, v.Temporal, v.Network, v.Contextual} {
		if val, ok := m[key]; ok {
			return val, true
		}
	}
	return 0, false
}

// Values flattens the vector into canonical key order.
func (v Vector) Values() []float64 {
	out := make([]float64, 0, 20)
	for _, k := range CommunicationKeys {
		out = append(out, v.Communication[k])
	}
	for _, k := range TemporalKeys {
		out = append(out, v.Temporal[k])
	}
	for _, k := range NetworkKeys {
		out = append(out, v.Network[k])
	}
	for _, k := range ContextualKeys {
		out = append(out, v.Contextual[k])
	}
	return out
}

// TeamContext carries team-level attributes supplied by the caller
// (expected size, roles, deadline, project indicators). Keys are optional;
// extractors fall back to documented defaults.
type TeamContext map[string]any

// Float reads a numeric value, accepting the common JSON decodings.
func (c TeamContext) Float(key string, fallback float64) float64 {
	v, ok := c[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return fallback
}

// Count reads a count, accepting a number or the length of a list.
func (c TeamContext) Count(key string) float64 {
	v, ok := c[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case []string:
		return float64(len(n))
	case []any:
		return float64(len(n))
	}
	return c.Float(key, 0)
}

// Deadline reads a deadline as time.Time or RFC 3339 string.
func (c TeamContext) Deadline(key string) (time.Time, bool) {
	v, ok := c[key]
	if !ok {
		return time.Time{}, false
	}
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// Roles reads the participant->role mapping when present.
func (c TeamContext) Roles(key string) map[string]string {
	v, ok := c[key]
	if !ok {
		return nil
	}
	switch m := v.(type) {
	case map[string]string:
		return m
	case map[string]any:
		out := make(map[string]string, len(m))
		for k, rv := range m {
			if s, ok := rv.(string); ok {
				out[k] = s
			}
		}
		return out
	}
	return nil
}
