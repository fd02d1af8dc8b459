package model

import "time"

// QualityReport is the aggregated quality assessment for one piece of content.
// It is never mutated after it is returned; refinement produces a new report.
type QualityReport struct {
	ID             string    `json:"id" yaml:"id"`
	Topic          string    `json:"topic" yaml:"topic"`
	CheckedAt      time.Time `json:"checked_at" yaml:"checked_at"`
	OverallScore   float64   `json:"overall_score" yaml:"overall_score"`
	IsPass         bool      `json:"is_pass" yaml:"is_pass"`
	Tier           Tier      `json:"tier" yaml:"tier"`
	Recommendation string    `json:"recommendation" yaml:"recommendation"`

	Truth       ClaimVerdict       `json:"truth" yaml:"truth"`
	Freshness   FreshnessVerdict   `json:"freshness" yaml:"freshness"`
	Consistency ConsistencyVerdict `json:"consistency" yaml:"consistency"`
	Relevance   *Relevance         `json:"relevance,omitempty" yaml:"relevance,omitempty"` // Informational only

	Suggestions []string  `json:"suggestions" yaml:"suggestions"`
	Breakdown   Breakdown `json:"breakdown" yaml:"breakdown"`
	Signals     []Signal  `json:"signals,omitempty" yaml:"signals,omitempty"`

	SourceChecks []SourceCheck `json:"source_checks,omitempty" yaml:"source_checks,omitempty"` // Never affects score
}

// Breakdown exposes the inputs of the weighted overall score
type Breakdown struct {
	TruthScore       float64 `json:"truth_score" yaml:"truth_score"`
	FreshnessScore   float64 `json:"freshness_score" yaml:"freshness_score"`
	ConsistencyScore float64 `json:"consistency_score" yaml:"consistency_score"`
	Weights          Weights `json:"weights" yaml:"weights"`
}

// Weights are the per-dimension weights of the overall score
type Weights struct {
	Truth       float64 `json:"truth" yaml:"truth"`
	Freshness   float64 `json:"freshness" yaml:"freshness"`
	Consistency float64 `json:"consistency" yaml:"consistency"`
}

// Tier is the quality band of the overall score
type Tier string

const (
	TierExcellent Tier = "excellent" // >= 90, strongly recommend publishing
	TierGood      Tier = "good"      // >= 80, recommend publishing
	TierAdequate  Tier = "adequate"  // >= 70, publishable after manual review
	TierMediocre  Tier = "mediocre"  // >= 60, do not publish
	TierPoor      Tier = "poor"      // >= 50, needs major revision
	TierVeryPoor  Tier = "very_poor" // must not publish
)

// Signal represents a diagnostic signal with transparent scoring data
type Signal struct {
	Type        SignalType             `json:"type" yaml:"type"`
	Severity    SignalSeverity         `json:"severity" yaml:"severity"`
	Description string                 `json:"description" yaml:"description"`
	Data        map[string]interface{} `json:"data,omitempty" yaml:"data,omitempty"` // Formulas and inputs
}

// SignalType classifies the type of diagnostic signal
type SignalType string

const (
	SignalTruth               SignalType = "truth"
	SignalFreshness           SignalType = "freshness"
	SignalConsistency         SignalType = "consistency"
	SignalOverall             SignalType = "overall"
	SignalSevereDimension     SignalType = "severe_dimension"
	SignalDegradedVerdict     SignalType = "degraded_verdict"
	SignalSourceAccessibility SignalType = "source_accessibility"
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

// Improvement describes one edit the improver made
type Improvement struct {
	Issue  string `json:"issue" yaml:"issue"`
	Action string `json:"action" yaml:"action"`
	Before string `json:"before,omitempty" yaml:"before,omitempty"`
	After  string `json:"after,omitempty" yaml:"after,omitempty"`
}

// ImprovementResult is the outcome of one improvement attempt.
// When Success is false ImprovedContent is the original content unchanged.
type ImprovementResult struct {
	Success         bool          `json:"success" yaml:"success"`
	ImprovedContent string        `json:"improved_content" yaml:"improved_content"`
	Improvements    []Improvement `json:"improvements" yaml:"improvements"`
	Reasoning       string        `json:"reasoning" yaml:"reasoning"`
	Outcome         Outcome       `json:"outcome" yaml:"outcome"`
}

// Iteration is one improve-then-recheck step
type Iteration struct {
	Improvement ImprovementResult `json:"improvement" yaml:"improvement"`
	Report      *QualityReport    `json:"report,omitempty" yaml:"report,omitempty"`
}

// RefinementResult is the history of an improve-and-rescore loop
type RefinementResult struct {
	Initial    QualityReport `json:"initial" yaml:"initial"`
	Final      QualityReport `json:"final" yaml:"final"`
	Iterations []Iteration   `json:"iterations" yaml:"iterations"`
	Improved   bool          `json:"improved" yaml:"improved"`
	Content    string        `json:"content" yaml:"content"` // Content the final report was computed on
}
