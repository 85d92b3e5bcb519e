package predict

import (
	"math"
	"testing"
	"time"

	"github.com/nidhogg/teamlens/internal/feature"
	"go.uber.org/zap"
)

// testVector builds a complete 20-key vector with every favorable feature
// at fav and every pressure feature at press. communication_frequency is
// events/day, so fav is scaled to the saturation rate.
func testVector(fav, press float64) feature.Vector {
	return feature.Vector{
		Communication: map[string]float64{
			"communication_frequency":      fav * frequencySaturation,
			"avg_response_time_hours":      4,
			"response_time_consistency":    fav,
			"avg_clarity_score":            fav,
			"participant_engagement_ratio": fav,
		},
		Temporal: map[string]float64{
			"collaboration_duration_days":    30,
			"timing_consistency":             fav,
			"avg_interaction_interval_hours": 12,
			"business_hours_ratio":           fav,
			"deadline_pressure":              press,
		},
		Network: map[string]float64{
			"network_connectivity":   fav,
			"participation_balance":  fav,
			"team_size_ratio":        fav,
			"cross_functional_ratio": fav,
		},
		Contextual: map[string]float64{
			"project_complexity":        press,
			"team_experience_score":     fav,
			"organizational_support":    fav,
			"resource_availability":     fav,
			"change_pressure":           press,
			"external_dependency_ratio": press,
		},
		GeneratedAt: time.Now(),
	}
}

func neutralEvidence(n int) []Evidence {
	out := make([]Evidence, n)
	for i := range out {
		out[i] = Evidence{Metric: "interaction", Value: 1, Source: "collector"}
	}
	return out
}

func TestConfidenceFormula(t *testing.T) {
	cases := []struct {
		probability float64
		evidence    int
		want        float64
	}{
		{0.9, 1, 0.55},
		{0.8, 5, 0.9},
		{0.8, 10, 0.9}, // evidence quality caps at 1
		{0.0, 0, 0.0},
		{1.0, 5, 1.0},
	}
	for _, c := range cases {
		got := Confidence(c.probability, c.evidence)
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("Confidence(%v, %d) = %v, want %v", c.probability, c.evidence, got, c.want)
		}
	}
}

func TestConfidenceMonotonicInEvidence(t *testing.T) {
	for _, p := range []float64{0.1, 0.5, 0.9} {
		prev := -1.0
		for n := 0; n <= 6; n++ {
			got := Confidence(p, n)
			if got < prev {
				t.Fatalf("Confidence(%v, %d) = %v decreased from %v", p, n, got, prev)
			}
			prev = got
		}
	}
}

func TestBuckets(t *testing.T) {
	th := DefaultThresholds()
	cases := []struct {
		confidence float64
		want       ConfidenceBucket
	}{
		{0.55, ConfidenceLow},
		{0.6999, ConfidenceLow},
		{0.70, ConfidenceMedium},
		{0.85, ConfidenceHigh},
		{0.9499, ConfidenceHigh},
		{0.95, ConfidenceCritical},
		{1.0, ConfidenceCritical},
	}
	for _, c := range cases {
		if got := th.Bucket(c.confidence); got != c.want {
			t.Errorf("Bucket(%v) = %s, want %s", c.confidence, got, c.want)
		}
	}
}

func TestOutcomeBands(t *testing.T) {
	engine := NewEngine(DefaultThresholds(), zap.NewNop())
	evidence := neutralEvidence(5)

	healthy := engine.Predict(testVector(1, 0), evidence)
	if healthy.Outcome != OutcomeHealthy {
		t.Errorf("strong vector: got %s, want %s", healthy.Outcome, OutcomeHealthy)
	}
	if math.Abs(healthy.Probability-1.0) > 1e-9 {
		t.Errorf("strong vector probability %v, want 1.0", healthy.Probability)
	}

	atRisk := engine.Predict(testVector(0, 1), evidence)
	if atRisk.Outcome != OutcomeAtRisk {
		t.Errorf("weak vector: got %s, want %s", atRisk.Outcome, OutcomeAtRisk)
	}
	if math.Abs(atRisk.Probability) > 1e-9 {
		t.Errorf("weak vector probability %v, want 0", atRisk.Probability)
	}

	middling := engine.Predict(testVector(0.55, 0.5), evidence)
	if middling.Outcome != OutcomeStrained {
		t.Errorf("middling vector: got %s (p=%v), want %s",
			middling.Outcome, middling.Probability, OutcomeStrained)
	}
}

func TestSmallSamplePolicy(t *testing.T) {
	engine := NewEngine(DefaultThresholds(), zap.NewNop())

	p := engine.Predict(testVector(1, 0), neutralEvidence(1))
	if !p.LowConfidence {
		t.Error("one evidence item not flagged low confidence")
	}
	if len(p.RiskFlags) != 1 || p.RiskFlags[0] != "insufficient_evidence" {
		t.Errorf("got risk flags %v, want [insufficient_evidence]", p.RiskFlags)
	}
	// Confidence (1.0 + 0.2) / 2 = 0.6: LOW.
	if p.Bucket != ConfidenceLow {
		t.Errorf("got bucket %s, want LOW", p.Bucket)
	}

	enough := engine.Predict(testVector(1, 0), neutralEvidence(3))
	if enough.LowConfidence {
		t.Error("three evidence items wrongly flagged low confidence")
	}
}

func TestContributionsOrderedAndCapped(t *testing.T) {
	_, contributions := classify(testVector(0.8, 0.3))
	if len(contributions) != 5 {
		t.Fatalf("got %d contributions, want 5", len(contributions))
	}
	for i := 1; i < len(contributions); i++ {
		if contributions[i].Share > contributions[i-1].Share {
			t.Errorf("contributions not ordered at %d: %v > %v",
				i, contributions[i].Share, contributions[i-1].Share)
		}
	}
}

func TestProbabilityStaysInRange(t *testing.T) {
	for _, fav := range []float64{0, 0.3, 0.7, 1} {
		for _, press := range []float64{0, 0.5, 1} {
			p, _ := classify(testVector(fav, press))
			if p < 0 || p > 1 {
				t.Errorf("classify(fav=%v, press=%v) = %v, out of [0,1]", fav, press, p)
			}
		}
	}
}
