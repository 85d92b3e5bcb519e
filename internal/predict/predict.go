// Package predict maps feature vectors to confidence-scored collaboration
// predictions. Behavior is fully determined by fixed rules and thresholds;
// there is no trained model.
package predict

import (
	"math"
	"time"

	"github.com/nidhogg/teamlens/internal/feature"
	"go.uber.org/zap"
)

// Outcome labels a predicted collaboration trajectory.
type Outcome string

const (
	OutcomeHealthy  Outcome = "healthy_collaboration"
	OutcomeStrained Outcome = "strained_collaboration"
	OutcomeAtRisk   Outcome = "at_risk_collaboration"
)

// ConfidenceBucket grades prediction confidence.
type ConfidenceBucket string

const (
	ConfidenceLow      ConfidenceBucket = "LOW"
	ConfidenceMedium   ConfidenceBucket = "MEDIUM"
	ConfidenceHigh     ConfidenceBucket = "HIGH"
	ConfidenceCritical ConfidenceBucket = "CRITICAL"
)

// Evidence is one data point backing a prediction. The count of evidence
// items drives confidence; metric values feed the risk rules.
type Evidence struct {
	Metric     string    `json:"metric"`
	Value      float64   `json:"value"`
	Source     string    `json:"source,omitempty"`
	ObservedAt time.Time `json:"observed_at,omitempty"`
}

// Contribution records how much one feature moved the probability.
type Contribution struct {
	Feature string  `json:"feature"`
	Value   float64 `json:"value"`
	Weight  float64 `json:"weight"`
	Share   float64 `json:"share"`
}

// Prediction is the scored output. LowConfidence marks small-sample
// results; it is a structured field, never an error.
type Prediction struct {
	Outcome              Outcome          `json:"outcome_label"`
	Probability          float64          `json:"probability"`
	Confidence           float64          `json:"confidence"`
	Bucket               ConfidenceBucket `json:"confidence_bucket"`
	ContributingFeatures []Contribution   `json:"contributing_features"`
	RiskFlags            []string         `json:"risk_flags"`
	LowConfidence        bool             `json:"low_confidence"`
	GeneratedAt          time.Time        `json:"generated_at"`
}

// Thresholds configures the engine. Zero values fall back to defaults.
type Thresholds struct {
	MinInteractions    int     `json:"min_interactions"`
	ConfidenceMedium   float64 `json:"confidence_medium"`
	ConfidenceHigh     float64 `json:"confidence_high"`
	ConfidenceCritical float64 `json:"confidence_critical"`
}

// DefaultThresholds returns the documented defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinInteractions:    3,
		ConfidenceMedium:   0.70,
		ConfidenceHigh:     0.85,
		ConfidenceCritical: 0.95,
	}
}

// Confidence blends the outcome probability with evidence quality:
// (probability + min(evidenceCount/5, 1)) / 2.
func Confidence(probability float64, evidenceCount int) float64 {
	quality := math.Min(float64(evidenceCount)/5, 1.0)
	return (probability + quality) / 2
}

// Bucket grades a confidence score against the thresholds.
func (t Thresholds) Bucket(confidence float64) ConfidenceBucket {
	switch {
	case confidence < t.ConfidenceMedium:
		return ConfidenceLow
	case confidence < t.ConfidenceHigh:
		return ConfidenceMedium
	case confidence < t.ConfidenceCritical:
		return ConfidenceHigh
	default:
		return ConfidenceCritical
	}
}

// Engine performs read-only, stateless prediction and may run in parallel
// across queries.
type Engine struct {
	thresholds Thresholds
	risk       *RiskAssessor
	logger     *zap.Logger
}

// NewEngine creates a prediction engine.
func NewEngine(t Thresholds, logger *zap.Logger) *Engine {
	if t.MinInteractions == 0 {
		t = DefaultThresholds()
	}
	return &Engine{
		thresholds: t,
		risk:       NewRiskAssessor(logger),
		logger:     logger,
	}
}

// Predict classifies the vector and attaches confidence and risk flags.
// With fewer than MinInteractions evidence items the result is flagged
// low-confidence and risk escalation is withheld; it is never silently
// treated as confident.
func (e *Engine) Predict(v feature.Vector, evidence []Evidence) Prediction {
	probability, contributions := classify(v)
	confidence := Confidence(probability, len(evidence))

	p := Prediction{
		Outcome:              outcomeFor(probability),
		Probability:          probability,
		Confidence:           confidence,
		Bucket:               e.thresholds.Bucket(confidence),
		ContributingFeatures: contributions,
		GeneratedAt:          time.Now(),
	}

	if len(evidence) < e.thresholds.MinInteractions {
		p.LowConfidence = true
		p.RiskFlags = []string{"insufficient_evidence"}
		e.logger.Debug("small-sample prediction, risk escalation withheld",
			zap.Int("evidence", len(evidence)),
			zap.Int("min", e.thresholds.MinInteractions))
		return p
	}

	for _, flag := range e.risk.Assess(v, probability, evidence) {
		p.RiskFlags = append(p.RiskFlags, string(flag.Challenge))
	}

	e.logger.Debug("prediction generated",
		zap.String("outcome", string(p.Outcome)),
		zap.Float64("probability", probability),
		zap.Float64("confidence", confidence),
		zap.Strings("risk_flags", p.RiskFlags))
	return p
}

// Risks exposes the full risk detail for the same inputs.
func (e *Engine) Risks(v feature.Vector, probability float64, evidence []Evidence) []RiskFlag {
	return e.risk.Assess(v, probability, evidence)
}

func outcomeFor(probability float64) Outcome {
	switch {
	case probability >= 0.65:
		return OutcomeHealthy
	case probability >= 0.45:
		return OutcomeStrained
	default:
		return OutcomeAtRisk
	}
}
