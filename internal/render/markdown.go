package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/contentqc/internal/model"
)

func passLabel(pass bool) string {
	if pass {
		return "PASS"
	}
	return "FAIL"
}

// Markdown renders a quality report as a Markdown document
func Markdown(r model.QualityReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Content Quality Report: %s\n\n", r.Topic)
	fmt.Fprintf(&b, "- **Overall score:** %.1f / 100 (%s)\n", r.OverallScore, r.Tier)
	fmt.Fprintf(&b, "- **Result:** %s\n", passLabel(r.IsPass))
	fmt.Fprintf(&b, "- **Recommendation:** %s\n", r.Recommendation)
	fmt.Fprintf(&b, "- **Checked at:** %s\n", r.CheckedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- **Report ID:** `%s`\n\n", r.ID)

	b.WriteString("## Scores\n\n")
	b.WriteString("| Dimension | Score | Weight | Method | Outcome |\n")
	b.WriteString("|---|---:|---:|---|---|\n")
	fmt.Fprintf(&b, "| Truth | %.1f | %.0f%% | %s | %s |\n",
		r.Breakdown.TruthScore, r.Breakdown.Weights.Truth*100, r.Truth.Method, r.Truth.Outcome)
	fmt.Fprintf(&b, "| Freshness | %.1f | %.0f%% | %s | %s |\n",
		r.Breakdown.FreshnessScore, r.Breakdown.Weights.Freshness*100, r.Freshness.Method, r.Freshness.Outcome)
	fmt.Fprintf(&b, "| Consistency | %.1f | %.0f%% | %s | %s |\n\n",
		r.Breakdown.ConsistencyScore, r.Breakdown.Weights.Consistency*100, r.Consistency.Method, r.Consistency.Outcome)

	b.WriteString("## Truth\n\n")
	fmt.Fprintf(&b, "- **Verdict:** %s", r.Truth.IsTrue)
	if r.Truth.Agreement != "" {
		fmt.Fprintf(&b, " (agreement: %s, %d rounds)", r.Truth.Agreement, r.Truth.Rounds)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "- **Reasoning:** %s\n", oneLine(r.Truth.Reasoning))
	if r.Truth.Notes != "" {
		fmt.Fprintf(&b, "- **Notes:** %s\n", oneLine(r.Truth.Notes))
	}
	writeList(&b, "Sources", r.Truth.Sources)
	b.WriteString("\n")

	b.WriteString("## Freshness\n\n")
	fmt.Fprintf(&b, "- **Level:** %s (fresh: %s)\n", r.Freshness.Level, r.Freshness.IsFresh)
	fmt.Fprintf(&b, "- **Time:** %.0f, %s\n", r.Freshness.TimeScore, r.Freshness.TimeReasoning)
	fmt.Fprintf(&b, "- **Content:** %.0f, %s\n", r.Freshness.Content.Score, r.Freshness.Content.Reasoning)
	if r.Freshness.SearchScore != nil {
		fmt.Fprintf(&b, "- **Web search:** %.0f\n", *r.Freshness.SearchScore)
	}
	if len(r.Freshness.Content.Keywords) > 0 {
		fmt.Fprintf(&b, "- **Keywords:** %s\n", strings.Join(r.Freshness.Content.Keywords, ", "))
	}
	if r.Freshness.Warning != "" {
		fmt.Fprintf(&b, "\n> %s\n", r.Freshness.Warning)
	}
	b.WriteString("\n")

	b.WriteString("## Consistency\n\n")
	fmt.Fprintf(&b, "- **Consistent:** %s\n", r.Consistency.IsConsistent)
	fmt.Fprintf(&b, "- **Reasoning:** %s\n", oneLine(r.Consistency.Reasoning))
	writeList(&b, "Known facts", r.Consistency.KnownFacts)
	writeList(&b, "Contradictions", r.Consistency.Contradictions)
	b.WriteString("\n")

	if r.Relevance != nil {
		b.WriteString("## Topic Relevance\n\n")
		fmt.Fprintf(&b, "%.0f%%, %s\n\n", r.Relevance.Score, r.Relevance.Reasoning)
	}

	if len(r.Suggestions) > 0 {
		b.WriteString("## Suggestions\n\n")
		for i, s := range r.Suggestions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, s)
		}
		b.WriteString("\n")
	}

	if len(r.SourceChecks) > 0 {
		b.WriteString("## Cited Sources\n\n")
		b.WriteString("| URL | Status | Accessible | Authority |\n")
		b.WriteString("|---|---:|---|---|\n")
		for _, c := range r.SourceChecks {
			status := fmt.Sprintf("%d", c.StatusCode)
			if c.Error != "" {
				status = c.Error
			}
			fmt.Fprintf(&b, "| %s | %s | %v | %s |\n", c.URL, status, c.Accessible, c.Authority)
		}
		b.WriteString("\n")
	}

	if len(r.Signals) > 0 {
		b.WriteString("## Signals\n\n")
		for _, s := range r.Signals {
			fmt.Fprintf(&b, "- `%s` [%s] %s\n", s.Type, s.Severity, s.Description)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// ImprovementMarkdown renders an improvement result
func ImprovementMarkdown(r model.ImprovementResult) string {
	var b strings.Builder

	b.WriteString("# Content Improvement\n\n")
	fmt.Fprintf(&b, "- **Success:** %v (%s)\n", r.Success, r.Outcome)
	fmt.Fprintf(&b, "- **Reasoning:** %s\n\n", oneLine(r.Reasoning))

	if len(r.Improvements) > 0 {
		b.WriteString("## Changes\n\n")
		for i, imp := range r.Improvements {
			fmt.Fprintf(&b, "%d. **%s**: %s\n", i+1, imp.Issue, imp.Action)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Content\n\n")
	b.WriteString(r.ImprovedContent)
	b.WriteString("\n")
	return b.String()
}

// RefinementMarkdown renders a refinement history
func RefinementMarkdown(r model.RefinementResult) string {
	var b strings.Builder

	b.WriteString("# Content Refinement\n\n")
	fmt.Fprintf(&b, "- **Initial:** %.1f (%s, %s)\n", r.Initial.OverallScore, r.Initial.Tier, passLabel(r.Initial.IsPass))
	fmt.Fprintf(&b, "- **Final:** %.1f (%s, %s)\n", r.Final.OverallScore, r.Final.Tier, passLabel(r.Final.IsPass))
	fmt.Fprintf(&b, "- **Improved:** %v\n\n", r.Improved)

	if len(r.Iterations) > 0 {
		b.WriteString("## Iterations\n\n")
		for i, it := range r.Iterations {
			fmt.Fprintf(&b, "%d. improvement %s", i+1, it.Improvement.Outcome)
			if it.Report != nil {
				fmt.Fprintf(&b, ", rescored %.1f (%s)", it.Report.OverallScore, it.Report.Tier)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("## Final Content\n\n")
	b.WriteString(r.Content)
	b.WriteString("\n\n")
	b.WriteString(strings.Replace(Markdown(r.Final), "# Content Quality Report", "## Final Report", 1))
	return b.String()
}

// BatchMarkdown renders a batch run as a Markdown table
func BatchMarkdown(doc BatchDocument) string {
	var b strings.Builder

	b.WriteString("# Batch Quality Report\n\n")
	fmt.Fprintf(&b, "- **Sources:** %d\n", doc.Summary.Total)
	fmt.Fprintf(&b, "- **Passed:** %d\n", doc.Summary.Passed)
	fmt.Fprintf(&b, "- **Failed:** %d\n", doc.Summary.Failed)
	fmt.Fprintf(&b, "- **Errors:** %d\n", doc.Summary.Errors)
	fmt.Fprintf(&b, "- **Mean score:** %.1f\n\n", doc.Summary.MeanScore)

	b.WriteString("| Source | Score | Tier | Result |\n")
	b.WriteString("|---|---:|---|---|\n")
	for _, item := range doc.Results {
		if item.Report == nil {
			fmt.Fprintf(&b, "| %s | - | - | error: %s |\n", item.Source, oneLine(item.Error))
			continue
		}
		fmt.Fprintf(&b, "| %s | %.1f | %s | %s |\n",
			item.Source, item.Report.OverallScore, item.Report.Tier, passLabel(item.Report.IsPass))
	}
	return b.String()
}

func writeList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "- **%s:**\n", label)
	for _, item := range items {
		fmt.Fprintf(b, "  - %s\n", item)
	}
}

// oneLine collapses whitespace so free text fits a list item or table cell
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
