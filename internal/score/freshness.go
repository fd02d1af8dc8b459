package score

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/ppiankov/contentqc/internal/model"
	"golang.org/x/text/cases"
)

// Time decay steps, in hours. Upper bounds are inclusive.
var timeSteps = []struct {
	maxHours float64
	score    float64
	label    string
}{
	{1, 100, "within the hour"},
	{24, 95, "today"},
	{48, 85, "last 2 days"},
	{72, 70, "last 3 days"},
	{168, 50, "last week"},
	{720, 30, "last month"},
}

const (
	staleTimeScore   = 10
	unknownTimeScore = 50
)

// TimeScore maps elapsed hours since publication to a 0-100 freshness score
func TimeScore(hours float64) (float64, string) {
	for _, step := range timeSteps {
		if hours <= step.maxHours {
			return step.score, step.label
		}
	}
	return staleTimeScore, "older"
}

// TimeFreshness scores a publication timestamp relative to now.
// A nil timestamp scores 50 and is labelled unknown.
func TimeFreshness(publishedAt *time.Time, now time.Time) (score float64, label, reasoning string) {
	if publishedAt == nil || publishedAt.IsZero() {
		return unknownTimeScore, "unknown", "no publication timestamp, time freshness unknown"
	}
	hours := now.Sub(*publishedAt).Hours()
	score, label = TimeScore(hours)
	return score, label, fmt.Sprintf("published %.1f hours ago", hours)
}

// freshnessKeywords are the markers of recent content
var freshnessKeywords = []string{
	// Recency
	"latest", "newest", "new version", "just released", "released today", "this month",
	"recently", "launched", "officially released", "breaking news", "breaking", "first",
	"today", "now", "currently",
	// Version markers
	"v2.0", "v3.0", "v4.0", "v5.0", "v6.0",
	// Years
	"2025", "2026", "2027", "2028", "2029", "2030",
	// Release stages
	"beta", "alpha", "rc", "release", "stable", "update", "upgrade",
	// Chinese recency words
	"最新", "新版本", "刚刚发布", "今天发布", "本月", "最近", "新推出", "正式发布", "上线", "发布",
	"更新", "升级", "新增", "改进", "优化", "修复", "突发", "重磅", "首次", "首个", "第一", "初次",
	"最新消息", "最新动态", "最新进展", "最新情况", "今天", "今日", "现在", "当前", "正在",
}

// ContentFreshness scores content by the number of distinct freshness keywords it contains
func ContentFreshness(content string) model.ContentFreshness {
	matched := MatchKeywords(content, freshnessKeywords)
	count := len(matched)

	switch {
	case count >= 3:
		return model.ContentFreshness{
			IsFresh:   true,
			Level:     model.LevelNewest,
			Score:     95,
			Keywords:  matched,
			Reasoning: fmt.Sprintf("content contains %d freshness keywords", count),
		}
	case count >= 1:
		return model.ContentFreshness{
			IsFresh:   true,
			Level:     model.LevelFresh,
			Score:     85,
			Keywords:  matched,
			Reasoning: fmt.Sprintf("content contains %d freshness keyword(s)", count),
		}
	default:
		return model.ContentFreshness{
			IsFresh:   false,
			Level:     model.LevelUnknown,
			Score:     50,
			Reasoning: "content contains no freshness keywords",
		}
	}
}

// TopicRelevance checks how many distinct topic words appear in the content
func TopicRelevance(content, topic string) model.Relevance {
	fold := cases.Fold()
	seen := make(map[string]bool)
	var words []string
	for _, w := range strings.Fields(fold.String(topic)) {
		if !seen[w] {
			seen[w] = true
			words = append(words, w)
		}
	}

	matched := MatchKeywords(content, words)
	count := len(matched)

	rel := model.Relevance{
		Matched: matched,
		Method:  model.MethodKeywordMatching,
	}
	switch {
	case count >= 3:
		rel.IsRelevant = true
		rel.Score = 90
		rel.Reasoning = fmt.Sprintf("content is highly relevant to the topic (%d topic words)", count)
	case count >= 1:
		rel.IsRelevant = true
		rel.Score = 70
		rel.Reasoning = fmt.Sprintf("content is relevant to the topic (%d topic words)", count)
	default:
		rel.Score = 30
		rel.Reasoning = "content has low relevance to the topic"
	}
	return rel
}

// MatchKeywords returns the distinct keywords present in text, in keyword order.
// Matching is case-folded. Keywords made of Latin letters and digits must sit on
// word boundaries; other keywords (e.g. CJK) match as substrings.
func MatchKeywords(text string, keywords []string) []string {
	fold := cases.Fold()
	folded := fold.String(text)

	seen := make(map[string]bool)
	var matched []string
	for _, kw := range keywords {
		k := fold.String(kw)
		if k == "" || seen[k] {
			continue
		}
		if containsKeyword(folded, k) {
			seen[k] = true
			matched = append(matched, kw)
		}
	}
	return matched
}

func containsKeyword(text, kw string) bool {
	if !needsBoundary(kw) {
		return strings.Contains(text, kw)
	}
	for offset := 0; offset < len(text); {
		i := strings.Index(text[offset:], kw)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(kw)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return false
}

func needsBoundary(kw string) bool {
	for _, r := range kw {
		if isWordRune(r) {
			return true
		}
	}
	return false
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

// isWordRune reports runes that form Latin words. CJK text has no spaces, so
// a Chinese character next to "2025" still counts as a boundary.
func isWordRune(r rune) bool {
	return unicode.IsDigit(r) || unicode.Is(unicode.Latin, r)
}

// Freshness blend weights
const (
	SearchBlendTime    = 0.25
	SearchBlendSearch  = 0.55
	SearchBlendContent = 0.20

	LocalBlendTime    = 0.4
	LocalBlendContent = 0.6
)

// BlendWithSearch combines time, grounded search and content freshness scores
func BlendWithSearch(timeScore, searchScore, contentScore float64) float64 {
	return timeScore*SearchBlendTime + searchScore*SearchBlendSearch + contentScore*SearchBlendContent
}

// BlendWithoutSearch combines time and content freshness scores
func BlendWithoutSearch(timeScore, contentScore float64) float64 {
	return timeScore*LocalBlendTime + contentScore*LocalBlendContent
}

// LevelWithSearch maps a search-blended freshness score to a level
func LevelWithSearch(score float64) model.FreshnessLevel {
	switch {
	case score >= 85:
		return model.LevelNewest
	case score >= 70:
		return model.LevelFresh
	case score >= 50:
		return model.LevelAverage
	default:
		return model.LevelStale
	}
}

// LevelWithoutSearch maps a locally blended freshness score to a fresh flag and a level.
// The thresholds differ from LevelWithSearch (80/60/40 against 85/70/50) and are kept as is.
func LevelWithoutSearch(score float64) (bool, model.FreshnessLevel) {
	switch {
	case score >= 80:
		return true, model.LevelNewest
	case score >= 60:
		return true, model.LevelFresh
	case score >= 40:
		return false, model.LevelAverage
	default:
		return false, model.LevelStale
	}
}
