package score

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/contentqc/internal/model"
)

// Overall score weights. They sum to 1.0.
const (
	WeightTruth       = 0.35
	WeightFreshness   = 0.45
	WeightConsistency = 0.20

	// PassThreshold is the minimum overall score for publishing
	PassThreshold = 70.0

	moderateThreshold = 70.0
	severeThreshold   = 50.0
)

// Suggestion texts, in the order they are emitted
const (
	SuggestTruth       = "Truthfulness is insufficient: re-verify the facts and add more reliable sources"
	SuggestFreshness   = "Freshness is insufficient: update the content with the latest information"
	SuggestConsistency = "Consistency is insufficient: check the content logic and make sure the information agrees"

	WarnTruth       = "Warning: the content may contain false information and must be thoroughly fact-checked"
	WarnFreshness   = "Warning: the content may be outdated and must be rewritten with current information"
	WarnConsistency = "Warning: the content contradicts reference material and must be re-checked in full"
)

var tiers = []struct {
	min            float64
	tier           model.Tier
	recommendation string
}{
	{90, model.TierExcellent, "Excellent quality, strongly recommended for publishing"},
	{80, model.TierGood, "Good quality, recommended for publishing"},
	{70, model.TierAdequate, "Adequate quality, publishable but manual review is recommended"},
	{60, model.TierMediocre, "Mediocre quality, not recommended for publishing, needs revision"},
	{50, model.TierPoor, "Poor quality, not recommended for publishing, needs major revision"},
}

// TierFor maps an overall score to a quality tier. Lower bounds are inclusive.
func TierFor(overall float64) (model.Tier, string) {
	for _, t := range tiers {
		if overall >= t.min {
			return t.tier, t.recommendation
		}
	}
	return model.TierVeryPoor, "Very poor quality, must not be published"
}

// Overall computes the weighted overall score
func Overall(truth, freshness, consistency float64) float64 {
	return truth*WeightTruth + freshness*WeightFreshness + consistency*WeightConsistency
}

// Suggestions lists improvement needs for the sub-scores: moderate issues
// (< 70) first, then severe warnings (< 50), each in dimension order.
func Suggestions(truth, freshness, consistency float64) []string {
	suggestions := []string{}

	if truth < moderateThreshold {
		suggestions = append(suggestions, SuggestTruth)
	}
	if freshness < moderateThreshold {
		suggestions = append(suggestions, SuggestFreshness)
	}
	if consistency < moderateThreshold {
		suggestions = append(suggestions, SuggestConsistency)
	}

	if truth < severeThreshold {
		suggestions = append(suggestions, WarnTruth)
	}
	if freshness < severeThreshold {
		suggestions = append(suggestions, WarnFreshness)
	}
	if consistency < severeThreshold {
		suggestions = append(suggestions, WarnConsistency)
	}

	return suggestions
}

// Scorer aggregates verdicts into quality reports
type Scorer struct {
	now   func() time.Time
	newID func() string
}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Aggregate combines the three verdicts into a new QualityReport
func (s *Scorer) Aggregate(topic string, truth model.ClaimVerdict, freshness model.FreshnessVerdict, consistency model.ConsistencyVerdict) model.QualityReport {
	truthScore := truth.Confidence
	freshnessScore := freshness.Score
	consistencyScore := consistency.Confidence

	overall := Overall(truthScore, freshnessScore, consistencyScore)
	tier, recommendation := TierFor(overall)

	report := model.QualityReport{
		ID:             s.newID(),
		Topic:          topic,
		CheckedAt:      s.now().UTC(),
		OverallScore:   overall,
		IsPass:         overall >= PassThreshold,
		Tier:           tier,
		Recommendation: recommendation,
		Truth:          truth,
		Freshness:      freshness,
		Consistency:    consistency,
		Suggestions:    Suggestions(truthScore, freshnessScore, consistencyScore),
		Breakdown: model.Breakdown{
			TruthScore:       truthScore,
			FreshnessScore:   freshnessScore,
			ConsistencyScore: consistencyScore,
			Weights: model.Weights{
				Truth:       WeightTruth,
				Freshness:   WeightFreshness,
				Consistency: WeightConsistency,
			},
		},
	}
	report.Signals = s.signals(report)

	return report
}

// signals explains the report with one signal per dimension, the overall
// formula, and a signal for each verdict that did not complete normally
func (s *Scorer) signals(r model.QualityReport) []model.Signal {
	signals := []model.Signal{
		dimensionSignal(model.SignalTruth, "Truth confidence", r.Breakdown.TruthScore, WeightTruth, r.Truth.Method, r.Truth.Outcome),
		dimensionSignal(model.SignalFreshness, "Freshness score", r.Breakdown.FreshnessScore, WeightFreshness, r.Freshness.Method, r.Freshness.Outcome),
		dimensionSignal(model.SignalConsistency, "Consistency confidence", r.Breakdown.ConsistencyScore, WeightConsistency, r.Consistency.Method, r.Consistency.Outcome),
	}

	overallSeverity := model.SeverityInfo
	if !r.IsPass {
		overallSeverity = model.SeverityWarning
	}
	signals = append(signals, model.Signal{
		Type:        model.SignalOverall,
		Severity:    overallSeverity,
		Description: fmt.Sprintf("Overall score %.1f (%s)", r.OverallScore, r.Tier),
		Data: map[string]interface{}{
			"overall":   r.OverallScore,
			"pass":      r.IsPass,
			"threshold": PassThreshold,
			"formula":   "0.35*truth + 0.45*freshness + 0.20*consistency",
		},
	})

	for _, d := range []struct {
		name    string
		score   float64
		outcome model.Outcome
	}{
		{"truth", r.Breakdown.TruthScore, r.Truth.Outcome},
		{"freshness", r.Breakdown.FreshnessScore, r.Freshness.Outcome},
		{"consistency", r.Breakdown.ConsistencyScore, r.Consistency.Outcome},
	} {
		if d.score < severeThreshold {
			signals = append(signals, model.Signal{
				Type:        model.SignalSevereDimension,
				Severity:    model.SeverityCritical,
				Description: fmt.Sprintf("%s score %.1f is below %.0f", d.name, d.score, severeThreshold),
				Data: map[string]interface{}{
					"dimension": d.name,
					"score":     d.score,
					"threshold": severeThreshold,
				},
			})
		}
		if d.outcome != "" && d.outcome != model.OutcomeOK {
			signals = append(signals, model.Signal{
				Type:        model.SignalDegradedVerdict,
				Severity:    model.SeverityWarning,
				Description: fmt.Sprintf("%s verdict is %s", d.name, d.outcome),
				Data: map[string]interface{}{
					"dimension": d.name,
					"outcome":   string(d.outcome),
				},
			})
		}
	}

	return signals
}

func dimensionSignal(typ model.SignalType, label string, score, weight float64, method model.Method, outcome model.Outcome) model.Signal {
	severity := model.SeverityInfo
	if score < severeThreshold {
		severity = model.SeverityCritical
	} else if score < moderateThreshold {
		severity = model.SeverityWarning
	}

	return model.Signal{
		Type:        typ,
		Severity:    severity,
		Description: fmt.Sprintf("%s: %.1f", label, score),
		Data: map[string]interface{}{
			"score":        score,
			"weight":       weight,
			"contribution": score * weight,
			"method":       string(method),
			"outcome":      string(outcome),
		},
	}
}
