package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TriState is a boolean that may be unknown
type TriState int8

const (
	Unknown TriState = iota
	True
	False
)

// TriStateOf converts a bool to a known TriState
func TriStateOf(b bool) TriState {
	if b {
		return True
	}
	return False
}

// TriStateFromPtr converts an optional bool (e.g. decoded from JSON null) to a TriState
func TriStateFromPtr(b *bool) TriState {
	if b == nil {
		return Unknown
	}
	return TriStateOf(*b)
}

// IsTrue reports whether the value is known and true
func (t TriState) IsTrue() bool { return t == True }

// IsKnown reports whether the value is true or false
func (t TriState) IsKnown() bool { return t == True || t == False }

func (t TriState) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes Unknown as null
func (t TriState) MarshalJSON() ([]byte, error) {
	switch t {
	case True:
		return []byte("true"), nil
	case False:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts true, false and null, and the quoted forms models
// sometimes produce ("true", "yes", "false", "no", "unknown")
func (t *TriState) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("tristate: %w", err)
	}
	switch x := v.(type) {
	case nil:
		*t = Unknown
	case bool:
		*t = TriStateOf(x)
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "yes":
			*t = True
		case "false", "no":
			*t = False
		case "", "null", "unknown", "uncertain":
			*t = Unknown
		default:
			return fmt.Errorf("tristate: unexpected value %q", x)
		}
	default:
		return fmt.Errorf("tristate: unexpected JSON %s", string(data))
	}
	return nil
}

// MarshalYAML encodes Unknown as null
func (t TriState) MarshalYAML() (interface{}, error) {
	switch t {
	case True:
		return true, nil
	case False:
		return false, nil
	default:
		return nil, nil
	}
}

// Method records how a verdict was produced
type Method string

const (
	MethodNone             Method = "none"
	MethodSingleModel      Method = "single_model"       // One non-grounded verification call
	MethodMultiRoundSearch Method = "multi_round_search" // Independent grounded rounds
	MethodHybrid           Method = "hybrid"             // Time + content keywords, no search
	MethodWebSearch        Method = "web_search"         // Compared against retrieved documents
	MethodKnowledgeBase    Method = "knowledge_base"     // Compared against model background knowledge
	MethodContentAnalysis  Method = "content_analysis"
	MethodKeywordMatching  Method = "keyword_matching"
)

// Outcome classifies how far a verdict got. Anything other than OutcomeOK is a
// degraded result; the verdict is still complete and usable for aggregation.
type Outcome string

const (
	OutcomeOK          Outcome = "ok"
	OutcomeDegraded    Outcome = "degraded"    // Provider answered but the answer could not be parsed
	OutcomeFailed      Outcome = "failed"      // Provider request failed or timed out
	OutcomeUnavailable Outcome = "unavailable" // Collaborator not configured
)

// Agreement summarizes how multi-round verification converged
type Agreement string

const (
	AgreementHigh   Agreement = "high"   // All rounds true, mean confidence >= 80
	AgreementMedium Agreement = "medium" // All rounds true, mean confidence >= 60
	AgreementLow    Agreement = "low"    // At least one round judged the claim false
	AgreementReview Agreement = "review" // Split or weak result, needs manual review
)

// Document is one search hit or cited page
type Document struct {
	Title         string `json:"title" yaml:"title"`
	Snippet       string `json:"snippet,omitempty" yaml:"snippet,omitempty"`
	URL           string `json:"url" yaml:"url"`
	PublishedDate string `json:"published_date,omitempty" yaml:"published_date,omitempty"`
	Source        string `json:"source,omitempty" yaml:"source,omitempty"`
}

// VerificationRound is one independent attempt to confirm a claim
type VerificationRound struct {
	Verdict       TriState   `json:"verdict" yaml:"verdict"`
	Confidence    float64    `json:"confidence" yaml:"confidence"`
	Reasoning     string     `json:"reasoning" yaml:"reasoning"`
	Sources       []string   `json:"sources,omitempty" yaml:"sources,omitempty"`
	SearchResults []Document `json:"search_results,omitempty" yaml:"search_results,omitempty"`
}

// ClaimVerdict aggregates one or more verification rounds for a claim
type ClaimVerdict struct {
	IsTrue        TriState   `json:"is_true" yaml:"is_true"`
	Confidence    float64    `json:"confidence" yaml:"confidence"` // 0-100
	Reasoning     string     `json:"reasoning" yaml:"reasoning"`
	Agreement     Agreement  `json:"agreement,omitempty" yaml:"agreement,omitempty"`
	Method        Method     `json:"method" yaml:"method"`
	Outcome       Outcome    `json:"outcome" yaml:"outcome"`
	Sources       []string   `json:"sources,omitempty" yaml:"sources,omitempty"`
	SearchResults []Document `json:"search_results,omitempty" yaml:"search_results,omitempty"`
	Rounds        int        `json:"rounds,omitempty" yaml:"rounds,omitempty"` // Usable rounds aggregated
	Notes         string     `json:"notes,omitempty" yaml:"notes,omitempty"`
	Error         string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// FreshnessLevel is the four-step freshness label
type FreshnessLevel string

const (
	LevelNewest  FreshnessLevel = "newest"
	LevelFresh   FreshnessLevel = "fresh"
	LevelAverage FreshnessLevel = "average"
	LevelStale   FreshnessLevel = "stale"
	LevelUnknown FreshnessLevel = "unknown"
)

// ContentFreshness is the keyword-based freshness sub-score
type ContentFreshness struct {
	IsFresh   bool           `json:"is_fresh" yaml:"is_fresh"`
	Level     FreshnessLevel `json:"level" yaml:"level"`
	Score     float64        `json:"score" yaml:"score"`
	Keywords  []string       `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Reasoning string         `json:"reasoning" yaml:"reasoning"`
}

// FreshnessVerdict combines time, content and optional search freshness
type FreshnessVerdict struct {
	TimeScore     float64          `json:"time_score" yaml:"time_score"`
	TimeLabel     string           `json:"time_label" yaml:"time_label"`
	TimeReasoning string           `json:"time_reasoning" yaml:"time_reasoning"`
	Content       ContentFreshness `json:"content" yaml:"content"`
	SearchScore   *float64         `json:"search_score,omitempty" yaml:"search_score,omitempty"`
	Score         float64          `json:"score" yaml:"score"` // Final blended score
	IsFresh       TriState         `json:"is_fresh" yaml:"is_fresh"`
	Level         FreshnessLevel   `json:"level" yaml:"level"`
	Method        Method           `json:"method" yaml:"method"`
	Outcome       Outcome          `json:"outcome" yaml:"outcome"`
	Reasoning     string           `json:"reasoning" yaml:"reasoning"`
	Rounds        int              `json:"rounds,omitempty" yaml:"rounds,omitempty"`
	SearchResults []Document       `json:"search_results,omitempty" yaml:"search_results,omitempty"`
	Warning       string           `json:"warning,omitempty" yaml:"warning,omitempty"`
	Error         string           `json:"error,omitempty" yaml:"error,omitempty"`
}

// ConsistencyVerdict is the result of comparing content against references
type ConsistencyVerdict struct {
	IsConsistent      TriState   `json:"is_consistent" yaml:"is_consistent"`
	Confidence        float64    `json:"confidence" yaml:"confidence"`
	KnownFacts        []string   `json:"known_facts,omitempty" yaml:"known_facts,omitempty"`
	Contradictions    []string   `json:"contradictions,omitempty" yaml:"contradictions,omitempty"`
	AdditionalContext string     `json:"additional_context,omitempty" yaml:"additional_context,omitempty"`
	Reasoning         string     `json:"reasoning" yaml:"reasoning"`
	Method            Method     `json:"method" yaml:"method"`
	Outcome           Outcome    `json:"outcome" yaml:"outcome"`
	SearchResults     []Document `json:"search_results,omitempty" yaml:"search_results,omitempty"`
	Error             string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// Relevance is the keyword topic-relevance check (informational, never weighted)
type Relevance struct {
	IsRelevant bool     `json:"is_relevant" yaml:"is_relevant"`
	Score      float64  `json:"score" yaml:"score"`
	Matched    []string `json:"matched,omitempty" yaml:"matched,omitempty"`
	Reasoning  string   `json:"reasoning" yaml:"reasoning"`
	Method     Method   `json:"method" yaml:"method"`
}
