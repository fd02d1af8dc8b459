package score

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/ppiankov/contentqc/internal/model"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func newTestScorer() *Scorer {
	s := NewScorer()
	s.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }
	s.newID = func() string { return "report-1" }
	return s
}

func TestWeights_SumToOne(t *testing.T) {
	if sum := WeightTruth + WeightFreshness + WeightConsistency; !approx(sum, 1.0) {
		t.Fatalf("weights sum to %v, want 1.0", sum)
	}
}

func TestOverall_Formula(t *testing.T) {
	for _, tc := range [][3]float64{{0, 0, 0}, {100, 100, 100}, {40, 80, 90}, {95, 95, 90}, {12.5, 67.3, 99}} {
		want := 0.35*tc[0] + 0.45*tc[1] + 0.20*tc[2]
		if got := Overall(tc[0], tc[1], tc[2]); !approx(got, want) {
			t.Errorf("Overall(%v) = %v, want %v", tc, got, want)
		}
	}
}

func TestTierFor_Boundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  model.Tier
	}{
		{100, model.TierExcellent},
		{90, model.TierExcellent},
		{89.99, model.TierGood},
		{80, model.TierGood},
		{79.99, model.TierAdequate},
		{70, model.TierAdequate},
		{69.99, model.TierMediocre},
		{60, model.TierMediocre},
		{59.99, model.TierPoor},
		{50, model.TierPoor},
		{49.99, model.TierVeryPoor},
		{0, model.TierVeryPoor},
	}

	for _, tt := range tests {
		got, rec := TierFor(tt.score)
		if got != tt.want {
			t.Errorf("TierFor(%v) = %v, want %v", tt.score, got, tt.want)
		}
		if rec == "" {
			t.Errorf("TierFor(%v) returned empty recommendation", tt.score)
		}
	}
}

func TestTierFor_Monotonic(t *testing.T) {
	rank := map[model.Tier]int{
		model.TierVeryPoor: 0, model.TierPoor: 1, model.TierMediocre: 2,
		model.TierAdequate: 3, model.TierGood: 4, model.TierExcellent: 5,
	}
	prev := -1
	for s := 0.0; s <= 100; s += 0.25 {
		tier, _ := TierFor(s)
		if rank[tier] < prev {
			t.Fatalf("tier rank decreased at score %v", s)
		}
		prev = rank[tier]
	}
}

func TestSuggestions_Ordering(t *testing.T) {
	got := Suggestions(40, 80, 90)
	want := []string{SuggestTruth, WarnTruth}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Suggestions(40, 80, 90) = %v, want %v", got, want)
	}

	got = Suggestions(10, 20, 30)
	want = []string{SuggestTruth, SuggestFreshness, SuggestConsistency, WarnTruth, WarnFreshness, WarnConsistency}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Suggestions(10, 20, 30) = %v, want %v", got, want)
	}

	if got := Suggestions(70, 70, 70); len(got) != 0 {
		t.Fatalf("Expected no suggestions at 70, got %v", got)
	}
}

func TestAggregate_EndToEndScenario(t *testing.T) {
	s := newTestScorer()

	truth := model.ClaimVerdict{IsTrue: model.True, Confidence: 95, Method: model.MethodMultiRoundSearch, Outcome: model.OutcomeOK}
	freshness := model.FreshnessVerdict{Score: BlendWithoutSearch(95, 95), Method: model.MethodHybrid, Outcome: model.OutcomeOK}
	consistency := model.ConsistencyVerdict{IsConsistent: model.True, Confidence: 90, Method: model.MethodWebSearch, Outcome: model.OutcomeOK}

	report := s.Aggregate("DeepSeek R1", truth, freshness, consistency)

	if !approx(report.OverallScore, 94) {
		t.Errorf("OverallScore = %v, want 94", report.OverallScore)
	}
	if !report.IsPass {
		t.Error("Expected report to pass")
	}
	if report.Tier != model.TierExcellent {
		t.Errorf("Tier = %v, want excellent", report.Tier)
	}
	if len(report.Suggestions) != 0 {
		t.Errorf("Expected no suggestions, got %v", report.Suggestions)
	}
	if report.ID != "report-1" || report.Topic != "DeepSeek R1" {
		t.Errorf("unexpected identity fields: %q %q", report.ID, report.Topic)
	}
	if report.Breakdown.Weights.Freshness != WeightFreshness {
		t.Errorf("breakdown weights not recorded")
	}
	for _, sig := range report.Signals {
		if sig.Severity == model.SeverityCritical {
			t.Errorf("unexpected critical signal: %+v", sig)
		}
	}
}

func TestAggregate_ZeroVerdicts(t *testing.T) {
	s := newTestScorer()

	report := s.Aggregate("topic", model.ClaimVerdict{Outcome: model.OutcomeUnavailable}, model.FreshnessVerdict{}, model.ConsistencyVerdict{Outcome: model.OutcomeUnavailable})

	if report.OverallScore != 0 || math.IsNaN(report.OverallScore) {
		t.Errorf("OverallScore = %v, want 0", report.OverallScore)
	}
	if report.IsPass {
		t.Error("zero report must not pass")
	}
	if report.Tier != model.TierVeryPoor {
		t.Errorf("Tier = %v, want very_poor", report.Tier)
	}
	if len(report.Suggestions) != 6 {
		t.Errorf("Expected 6 suggestions, got %d", len(report.Suggestions))
	}

	degraded := 0
	critical := 0
	for _, sig := range report.Signals {
		if sig.Type == model.SignalDegradedVerdict {
			degraded++
		}
		if sig.Type == model.SignalSevereDimension {
			critical++
		}
	}
	if degraded != 2 {
		t.Errorf("Expected 2 degraded verdict signals, got %d", degraded)
	}
	if critical != 3 {
		t.Errorf("Expected 3 severe dimension signals, got %d", critical)
	}
}

func TestAggregate_PassBoundary(t *testing.T) {
	s := newTestScorer()

	report := s.Aggregate("t",
		model.ClaimVerdict{Confidence: 70},
		model.FreshnessVerdict{Score: 70},
		model.ConsistencyVerdict{Confidence: 70},
	)
	if !report.IsPass {
		t.Errorf("overall %v should pass", report.OverallScore)
	}
	if report.Tier != model.TierAdequate {
		t.Errorf("Tier = %v, want adequate", report.Tier)
	}
}
