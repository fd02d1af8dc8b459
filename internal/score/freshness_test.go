package score

import (
	"reflect"
	"testing"
	"time"

	"github.com/ppiankov/contentqc/internal/model"
)

func TestTimeScore_Steps(t *testing.T) {
	tests := []struct {
		hours float64
		want  float64
	}{
		{-2, 100},
		{0, 100},
		{0.5, 100},
		{1, 100},
		{1.001, 95},
		{2, 95},
		{24.0, 95},
		{24.001, 85},
		{48, 85},
		{48.5, 70},
		{72, 70},
		{100, 50},
		{168, 50},
		{169, 30},
		{720, 30},
		{720.1, 10},
		{10000, 10},
	}

	for _, tt := range tests {
		got, label := TimeScore(tt.hours)
		if got != tt.want {
			t.Errorf("TimeScore(%v) = %v, want %v", tt.hours, got, tt.want)
		}
		if label == "" {
			t.Errorf("TimeScore(%v) returned empty label", tt.hours)
		}
	}
}

func TestTimeFreshness_NoTimestamp(t *testing.T) {
	score, label, reasoning := TimeFreshness(nil, time.Now())
	if score != 50 {
		t.Errorf("Expected 50 for missing timestamp, got %v", score)
	}
	if label != "unknown" {
		t.Errorf("Expected label unknown, got %q", label)
	}
	if reasoning == "" {
		t.Error("Expected reasoning for missing timestamp")
	}
}

func TestTimeFreshness_Elapsed(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	published := now.Add(-30 * time.Hour)

	score, label, _ := TimeFreshness(&published, now)
	if score != 85 {
		t.Errorf("Expected 85 for 30h old content, got %v", score)
	}
	if label != "last 2 days" {
		t.Errorf("Expected label 'last 2 days', got %q", label)
	}
}

func TestContentFreshness_Counts(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantScore float64
		wantLevel model.FreshnessLevel
		wantFresh bool
	}{
		{"none", "An essay about gardening.", 50, model.LevelUnknown, false},
		{"one", "The library is now stable.", 85, model.LevelFresh, true},
		{"three", "The Latest beta release ships in 2025.", 95, model.LevelNewest, true},
		{"chinese", "最新版本今天正式发布", 95, model.LevelNewest, true},
		{"repeated keyword counts once", "beta beta beta", 85, model.LevelFresh, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ContentFreshness(tt.content)
			if got.Score != tt.wantScore {
				t.Errorf("Score = %v, want %v (matched %v)", got.Score, tt.wantScore, got.Keywords)
			}
			if got.Level != tt.wantLevel {
				t.Errorf("Level = %v, want %v", got.Level, tt.wantLevel)
			}
			if got.IsFresh != tt.wantFresh {
				t.Errorf("IsFresh = %v, want %v", got.IsFresh, tt.wantFresh)
			}
		})
	}
}

func TestMatchKeywords_Boundaries(t *testing.T) {
	tests := []struct {
		text     string
		keywords []string
		want     []string
	}{
		{"open source software", []string{"rc"}, nil},
		{"version 2.0 rc1", []string{"rc"}, nil},
		{"ships as RC today", []string{"rc", "today"}, []string{"rc", "today"}},
		{"发布于2025年", []string{"2025", "发布"}, []string{"2025", "发布"}},
		{"BREAKING News: v3.0 is out", []string{"breaking news", "v3.0"}, []string{"breaking news", "v3.0"}},
		{"nowadays", []string{"now"}, nil},
	}

	for _, tt := range tests {
		got := MatchKeywords(tt.text, tt.keywords)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("MatchKeywords(%q, %v) = %v, want %v", tt.text, tt.keywords, got, tt.want)
		}
	}
}

func TestTopicRelevance(t *testing.T) {
	tests := []struct {
		name    string
		content string
		topic   string
		want    float64
		rel     bool
	}{
		{"high", "OpenAI released GPT-5 with new reasoning features", "OpenAI GPT-5 reasoning", 90, true},
		{"some", "DeepSeek published a new model", "DeepSeek R1", 70, true},
		{"none", "A recipe for laksa", "DeepSeek R1", 30, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TopicRelevance(tt.content, tt.topic)
			if got.Score != tt.want {
				t.Errorf("Score = %v, want %v (matched %v)", got.Score, tt.want, got.Matched)
			}
			if got.IsRelevant != tt.rel {
				t.Errorf("IsRelevant = %v, want %v", got.IsRelevant, tt.rel)
			}
			if got.Method != model.MethodKeywordMatching {
				t.Errorf("Method = %v", got.Method)
			}
		})
	}
}

func TestLevels_ThresholdAsymmetry(t *testing.T) {
	// A score of 82 is newest locally but only fresh with search.
	if lvl := LevelWithSearch(82); lvl != model.LevelFresh {
		t.Errorf("LevelWithSearch(82) = %v, want fresh", lvl)
	}
	if fresh, lvl := LevelWithoutSearch(82); !fresh || lvl != model.LevelNewest {
		t.Errorf("LevelWithoutSearch(82) = %v/%v, want true/newest", fresh, lvl)
	}

	// 45 is average with search, stale-but-average without.
	if lvl := LevelWithSearch(45); lvl != model.LevelStale {
		t.Errorf("LevelWithSearch(45) = %v, want stale", lvl)
	}
	if fresh, lvl := LevelWithoutSearch(45); fresh || lvl != model.LevelAverage {
		t.Errorf("LevelWithoutSearch(45) = %v/%v, want false/average", fresh, lvl)
	}

	boundaries := []struct {
		score float64
		want  model.FreshnessLevel
	}{
		{85, model.LevelNewest}, {70, model.LevelFresh}, {50, model.LevelAverage}, {49.9, model.LevelStale},
	}
	for _, b := range boundaries {
		if got := LevelWithSearch(b.score); got != b.want {
			t.Errorf("LevelWithSearch(%v) = %v, want %v", b.score, got, b.want)
		}
	}

	local := []struct {
		score float64
		fresh bool
		want  model.FreshnessLevel
	}{
		{80, true, model.LevelNewest}, {60, true, model.LevelFresh}, {40, false, model.LevelAverage}, {39.9, false, model.LevelStale},
	}
	for _, b := range local {
		fresh, got := LevelWithoutSearch(b.score)
		if fresh != b.fresh || got != b.want {
			t.Errorf("LevelWithoutSearch(%v) = %v/%v, want %v/%v", b.score, fresh, got, b.fresh, b.want)
		}
	}
}

func TestBlends(t *testing.T) {
	if got := BlendWithoutSearch(95, 95); !approx(got, 95) {
		t.Errorf("BlendWithoutSearch(95, 95) = %v", got)
	}
	if got := BlendWithSearch(100, 80, 50); !approx(got, 25+44+10) {
		t.Errorf("BlendWithSearch(100, 80, 50) = %v", got)
	}
	if sum := SearchBlendTime + SearchBlendSearch + SearchBlendContent; !approx(sum, 1) {
		t.Errorf("search blend weights sum to %v", sum)
	}
	if sum := LocalBlendTime + LocalBlendContent; !approx(sum, 1) {
		t.Errorf("local blend weights sum to %v", sum)
	}
}
