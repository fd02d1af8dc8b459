// Package improve rewrites content to address the weaknesses a quality
// report found.
package improve

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ppiankov/contentqc/internal/llm"
	"github.com/ppiankov/contentqc/internal/logging"
	"github.com/ppiankov/contentqc/internal/model"
	"github.com/ppiankov/contentqc/internal/structured"
)

// DefaultMaxTokens bounds the rewritten content
const DefaultMaxTokens = 3000

const systemPrompt = "You are a professional editor who improves technology news based on quality feedback, " +
	"aiming to raise its truthfulness, freshness and consistency."

// Options tunes the improver
type Options struct {
	MaxTokens int
	// Grounded requests web search when the provider supports it
	Grounded bool
}

// Improver issues one improvement request per call and never loops
type Improver struct {
	generator llm.Provider
	maxTokens int
	grounded  bool
	logger    *slog.Logger
}

// New creates an improver. A nil generator makes every call a no-op.
func New(generator llm.Provider, opts Options, logger *slog.Logger) *Improver {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Improver{
		generator: generator,
		maxTokens: maxTokens,
		grounded:  opts.Grounded,
		logger:    logging.OrDiscard(logger).With("component", "improve"),
	}
}

type improvementResponse struct {
	ImprovedContent string `json:"improved_content"`
	Improvements    []struct {
		Issue  string `json:"issue"`
		Action string `json:"action"`
		Before string `json:"before"`
		After  string `json:"after"`
	} `json:"improvements"`
	Reasoning string `json:"reasoning"`
}

// Improve asks the generator for a revised version of content. On any
// failure the returned ImprovedContent is content unchanged.
func (i *Improver) Improve(ctx context.Context, topic, content string, report model.QualityReport) model.ImprovementResult {
	unchanged := model.ImprovementResult{
		Success:         false,
		ImprovedContent: content,
		Improvements:    []model.Improvement{},
	}

	if i.generator == nil {
		unchanged.Reasoning = "not configured: no generation provider available"
		unchanged.Outcome = model.OutcomeUnavailable
		return unchanged
	}

	i.logger.Info("improving content", "overall", report.OverallScore, "suggestions", len(report.Suggestions))

	resp, err := i.generator.Generate(ctx, llm.GenerateRequest{
		Prompt:         Prompt(topic, content, report),
		SystemPrompt:   systemPrompt,
		GroundedSearch: i.grounded && llm.SupportsGroundedSearch(i.generator),
		MaxTokens:      i.maxTokens,
	})
	if err != nil {
		i.logger.Warn("improvement failed", "error", err)
		unchanged.Reasoning = fmt.Sprintf("improvement failed: %v", err)
		unchanged.Outcome = model.OutcomeFailed
		return unchanged
	}

	res := structured.Decode[improvementResponse](resp.Text)
	if res.Degraded() {
		i.logger.Warn("improvement response unparsable", "error", res.Err)
		unchanged.Reasoning = res.Err.Error()
		unchanged.Outcome = model.OutcomeDegraded
		return unchanged
	}

	if strings.TrimSpace(res.Value.ImprovedContent) == "" {
		i.logger.Warn("improvement response had no content")
		unchanged.Reasoning = "response contained no improved_content"
		unchanged.Outcome = model.OutcomeDegraded
		return unchanged
	}

	improvements := make([]model.Improvement, 0, len(res.Value.Improvements))
	for _, imp := range res.Value.Improvements {
		improvements = append(improvements, model.Improvement{
			Issue:  imp.Issue,
			Action: imp.Action,
			Before: imp.Before,
			After:  imp.After,
		})
		i.logger.Debug("improvement", "issue", imp.Issue)
	}

	i.logger.Info("content improved", "improvements", len(improvements))
	return model.ImprovementResult{
		Success:         true,
		ImprovedContent: res.Value.ImprovedContent,
		Improvements:    improvements,
		Reasoning:       res.Value.Reasoning,
		Outcome:         model.OutcomeOK,
	}
}

// Prompt builds the improvement request. Suggestions are listed verbatim, in order.
func Prompt(topic, content string, report model.QualityReport) string {
	var needs strings.Builder
	if len(report.Suggestions) == 0 {
		needs.WriteString("1. No specific issues; tighten wording and keep facts current\n")
	}
	for n, s := range report.Suggestions {
		fmt.Fprintf(&needs, "%d. %s\n", n+1, s)
	}

	b := report.Breakdown
	return fmt.Sprintf(`Task: improve the content below based on the quality feedback, to raise its quality score.

Topic: %s

Current content:
%s

Current scores:
- Overall: %.1f/100
- Truthfulness: %.1f/100
- Freshness: %.1f/100
- Consistency: %.1f/100

Issues to address:
%s
Requirements:
1. Keep the core information and viewpoint
2. Address each issue above
3. Truthfulness: verify facts, add reliable sources, avoid exaggeration
4. Freshness: update outdated information and add recent developments
5. Consistency: remove contradictions and unify terminology
6. Use natural language and keep the article readable
7. You may search the web for the latest information

Respond with a single valid JSON object:
{
    "improved_content": "the complete improved content",
    "improvements": [
        {
            "issue": "problem",
            "action": "what was changed",
            "before": "original fragment",
            "after": "revised fragment"
        }
    ],
    "reasoning": "why these changes should raise the score"
}`, topic, content, report.OverallScore, b.TruthScore, b.FreshnessScore, b.ConsistencyScore, needs.String())
}
