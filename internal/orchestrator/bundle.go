// Package orchestrator merges the five memory layers into a single
// budget-constrained context bundle with deterministic priority ordering.
package orchestrator

import (
	"fmt"
	"math"
	"time"

	"github.com/nidhogg/teamlens/internal/layer"
)

// weightTolerance is how far per-layer weights may drift from summing to 1.
const weightTolerance = 0.01

// Budget bounds an assembled bundle.
type Budget struct {
	MaxTotalBytes  int                    `json:"max_total_bytes"`
	PerLayerWeight map[layer.Type]float64 `json:"per_layer_weight"`
}

// DefaultBudget returns a ~1 MiB budget with equal layer weights.
func DefaultBudget() Budget {
	weights := map[layer.Type]float64{}
	for _, t := range layer.Types() {
		weights[t] = 0.2
	}
	return Budget{
		MaxTotalBytes:  1 << 20,
		PerLayerWeight: weights,
	}
}

// Validate checks that weights sum to 1 within tolerance.
func (b Budget) Validate() error {
	if b.MaxTotalBytes <= 0 {
		return fmt.Errorf("budget: max_total_bytes must be positive")
	}
	var sum float64
	for _, w := range b.PerLayerWeight {
		sum += w
	}
	if math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("budget: layer weights sum to %.3f, want 1.0", sum)
	}
	return nil
}

// ScoredEntry is an included entry annotated with its raw relevance.
type ScoredEntry struct {
	layer.Entry
	Relevance float64 `json:"relevance"`
}

// Bundle is the merged, budget-respecting output of Assemble. A degraded
// bundle is still a successful result; callers never see an error for
// unavailable layers or truncation.
type Bundle struct {
	Entries        []ScoredEntry          `json:"entries"`
	TotalSizeBytes int                    `json:"total_size_bytes"`
	RelevanceScore float64                `json:"relevance_score"`
	CoherenceScore float64                `json:"coherence_score"`
	LayerCoverage  map[layer.Type]float64 `json:"layer_coverage"`
	Degraded       bool                   `json:"degraded"`
	AssembledAt    time.Time              `json:"assembled_at"`
	Elapsed        time.Duration          `json:"elapsed"`
}

// Fallback values used when nothing can be assembled. They are explicit
// outputs, never silently omitted fields.
const (
	fallbackSizeBytes = 256
	fallbackRelevance = 0.5
	fallbackCoherence = 0.5
	fallbackCoverage  = 0.2
	fallbackElapsed   = 100 * time.Millisecond
)

// fallbackBundle builds the documented empty-result bundle.
func fallbackBundle(now time.Time) Bundle {
	coverage := map[layer.Type]float64{}
	for _, t := range layer.Types() {
		coverage[t] = fallbackCoverage
	}
	return Bundle{
		Entries:        []ScoredEntry{},
		TotalSizeBytes: fallbackSizeBytes,
		RelevanceScore: fallbackRelevance,
		CoherenceScore: fallbackCoherence,
		LayerCoverage:  coverage,
		Degraded:       true,
		AssembledAt:    now,
		Elapsed:        fallbackElapsed,
	}
}
