package predict

import (
	"sort"

	"github.com/nidhogg/teamlens/internal/feature"
	"go.uber.org/zap"
)

// ChallengeType enumerates the collaboration challenges the risk rules
// recognize.
type ChallengeType string

const (
	ChallengeTeamBurnout            ChallengeType = "team_burnout"
	ChallengeDeliveryRisk           ChallengeType = "delivery_risk"
	ChallengeStakeholderConflict    ChallengeType = "stakeholder_conflict"
	ChallengeCommunicationBreakdown ChallengeType = "communication_breakdown"
	ChallengeTechnicalDebt          ChallengeType = "technical_debt"
)

// impactSeverity is the fixed per-challenge impact lookup used for urgency.
var impactSeverity = map[ChallengeType]float64{
	ChallengeTeamBurnout:            0.9,
	ChallengeDeliveryRisk:           0.8,
	ChallengeStakeholderConflict:    0.7,
	ChallengeCommunicationBreakdown: 0.65,
	ChallengeTechnicalDebt:          0.6,
}

// Burnout indicator thresholds.
const (
	burnoutVelocityDecline = 0.15
	burnoutStressIndicator = 0.7
	burnoutQualityTrend    = -0.15
)

// RiskFlag is one detected challenge with its urgency.
type RiskFlag struct {
	Challenge ChallengeType `json:"challenge"`
	Impact    float64       `json:"impact"`
	Urgency   float64       `json:"urgency"`
	Reason    string        `json:"reason"`
}

// RiskAssessor derives risk flags from the feature vector and the evidence
// metrics via per-challenge threshold rules.
type RiskAssessor struct {
	logger *zap.Logger
}

// NewRiskAssessor creates an assessor.
func NewRiskAssessor(logger *zap.Logger) *RiskAssessor {
	return &RiskAssessor{logger: logger}
}

// Assess applies every challenge rule. probability scales each triggered
// challenge's impact into an urgency score. Flags come back ordered by
// urgency descending, then challenge name for determinism.
func (r *RiskAssessor) Assess(v feature.Vector, probability float64, evidence []Evidence) []RiskFlag {
	indicators := indicatorMap(evidence)
	riskProbability := 1 - probability

	var flags []RiskFlag
	add := func(c ChallengeType, reason string) {
		impact := impactSeverity[c]
		flags = append(flags, RiskFlag{
			Challenge: c,
			Impact:    impact,
			Urgency:   riskProbability * impact,
			Reason:    reason,
		})
	}

	if reason, ok := burnoutTriggered(indicators); ok {
		add(ChallengeTeamBurnout, reason)
	}

	deadline, _ := v.Get("deadline_pressure")
	timing, _ := v.Get("timing_consistency")
	resources, _ := v.Get("resource_availability")
	if deadline > 0.7 && (timing < 0.4 || resources < 0.4) {
		add(ChallengeDeliveryRisk, "high deadline pressure with unstable cadence or thin resources")
	}

	balance, _ := v.Get("participation_balance")
	connectivity, _ := v.Get("network_connectivity")
	if (balance < 0.4 && connectivity < 0.5) || indicators["conflict_reports"] > 0.5 {
		add(ChallengeStakeholderConflict, "skewed participation across a weakly connected group")
	}

	frequency, _ := v.Get("communication_frequency")
	consistency, _ := v.Get("response_time_consistency")
	if frequency < 0.2 && consistency < 0.3 {
		add(ChallengeCommunicationBreakdown, "sparse and irregular communication")
	}

	clarity, _ := v.Get("avg_clarity_score")
	change, _ := v.Get("change_pressure")
	if indicators["quality_trend"] < burnoutQualityTrend || (change > 0.8 && clarity < 0.4) {
		add(ChallengeTechnicalDebt, "declining quality trend under change pressure")
	}

	sort.Slice(flags, func(i, j int) bool {
		if flags[i].Urgency != flags[j].Urgency {
			return flags[i].Urgency > flags[j].Urgency
		}
		return flags[i].Challenge < flags[j].Challenge
	})

	if len(flags) > 0 {
		r.logger.Debug("risk flags raised", zap.Int("count", len(flags)))
	}
	return flags
}

// burnoutTriggered fires when at least two burnout indicators cross their
// thresholds: velocity decline > 0.15, stress > 0.7, quality trend < -0.15.
func burnoutTriggered(indicators map[string]float64) (string, bool) {
	hits := 0
	if indicators["velocity_decline"] > burnoutVelocityDecline {
		hits++
	}
	if indicators["stress_indicator"] > burnoutStressIndicator {
		hits++
	}
	if trend, ok := indicators["quality_trend"]; ok && trend < burnoutQualityTrend {
		hits++
	}
	if hits >= 2 {
		return "multiple burnout indicators over threshold", true
	}
	return "", false
}

// indicatorMap flattens evidence into metric -> latest value.
func indicatorMap(evidence []Evidence) map[string]float64 {
	out := make(map[string]float64, len(evidence))
	for _, e := range evidence {
		if e.Metric != "" {
			out[e.Metric] = e.Value
		}
	}
	return out
}
