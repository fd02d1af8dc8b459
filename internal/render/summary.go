package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ppiankov/contentqc/internal/model"
)

type styles struct {
	color   bool
	title   lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	warn    lipgloss.Style
	box     lipgloss.Style
	good    lipgloss.Style
	fair    lipgloss.Style
	bad     lipgloss.Style
	worst   lipgloss.Style
	passing lipgloss.Style
	failing lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{
			title: plain, label: plain, muted: plain, warn: plain,
			box:  plain.Border(lipgloss.NormalBorder()).Padding(0, 1),
			good: plain, fair: plain, bad: plain, worst: plain,
			passing: plain, failing: plain,
		}
	}
	return styles{
		color:   true,
		title:   lipgloss.NewStyle().Bold(true),
		label:   lipgloss.NewStyle().Bold(true).Width(13),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		box:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1),
		good:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		fair:    lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		bad:     lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		worst:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		passing: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		failing: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
	}
}

func (s styles) score(v float64) string {
	text := fmt.Sprintf("%5.1f", v)
	switch {
	case v >= 80:
		return s.good.Render(text)
	case v >= 70:
		return s.fair.Render(text)
	case v >= 50:
		return s.bad.Render(text)
	default:
		return s.worst.Render(text)
	}
}

func (s styles) result(pass bool) string {
	if pass {
		return s.passing.Render("PASS")
	}
	return s.failing.Render("FAIL")
}

func (s styles) line(label, value string) string {
	if !s.color {
		return fmt.Sprintf("%-13s%s", label, value)
	}
	return s.label.Render(label) + value
}

func outcomeNote(o model.Outcome) string {
	if o == "" || o == model.OutcomeOK {
		return ""
	}
	return fmt.Sprintf(" [%s]", o)
}

func (s styles) header(r model.QualityReport) string {
	head := fmt.Sprintf("%s\n%s  %s  %s",
		s.title.Render(r.Topic),
		s.score(r.OverallScore),
		s.result(r.IsPass),
		string(r.Tier))
	return s.box.Render(head)
}

func (s styles) summary(r model.QualityReport) string {
	var b strings.Builder

	b.WriteString(s.header(r))
	b.WriteString("\n")
	b.WriteString(r.Recommendation)
	b.WriteString("\n\n")

	b.WriteString(s.line("Truth", fmt.Sprintf("%s  %s%s", s.score(r.Truth.Confidence), r.Truth.Method, outcomeNote(r.Truth.Outcome))))
	b.WriteString("\n")
	b.WriteString(s.line("Freshness", fmt.Sprintf("%s  %s%s", s.score(r.Freshness.Score), r.Freshness.Level, outcomeNote(r.Freshness.Outcome))))
	b.WriteString("\n")
	b.WriteString(s.line("Consistency", fmt.Sprintf("%s  %s%s", s.score(r.Consistency.Confidence), r.Consistency.Method, outcomeNote(r.Consistency.Outcome))))
	b.WriteString("\n")
	if r.Relevance != nil {
		b.WriteString(s.line("Relevance", fmt.Sprintf("%s  %s", s.score(r.Relevance.Score), s.muted.Render("informational"))))
		b.WriteString("\n")
	}

	if r.Freshness.Warning != "" {
		b.WriteString("\n")
		b.WriteString(s.warn.Render("! " + r.Freshness.Warning))
		b.WriteString("\n")
	}

	if len(r.Suggestions) > 0 {
		b.WriteString("\n")
		b.WriteString(s.title.Render("Suggestions"))
		b.WriteString("\n")
		for _, sug := range r.Suggestions {
			fmt.Fprintf(&b, "  - %s\n", sug)
		}
	}

	if len(r.SourceChecks) > 0 {
		accessible := 0
		for _, c := range r.SourceChecks {
			if c.Accessible {
				accessible++
			}
		}
		b.WriteString("\n")
		b.WriteString(s.line("Sources", fmt.Sprintf("%d/%d accessible", accessible, len(r.SourceChecks))))
		b.WriteString("\n")
	}

	return b.String()
}

func (s styles) improvement(r model.ImprovementResult) string {
	var b strings.Builder

	if r.Success {
		b.WriteString(s.passing.Render("Improved"))
	} else {
		b.WriteString(s.failing.Render("Not improved" + outcomeNote(r.Outcome)))
	}
	b.WriteString("\n")
	if r.Reasoning != "" {
		b.WriteString(s.muted.Render(oneLine(r.Reasoning)))
		b.WriteString("\n")
	}
	for _, imp := range r.Improvements {
		fmt.Fprintf(&b, "  - %s: %s\n", imp.Issue, imp.Action)
	}
	b.WriteString("\n")
	b.WriteString(r.ImprovedContent)
	b.WriteString("\n")
	return b.String()
}

func (s styles) refinement(r model.RefinementResult) string {
	var b strings.Builder

	b.WriteString(s.header(r.Final))
	b.WriteString("\n")
	b.WriteString(s.line("Initial", fmt.Sprintf("%s  %s", s.score(r.Initial.OverallScore), s.result(r.Initial.IsPass))))
	b.WriteString("\n")
	b.WriteString(s.line("Final", fmt.Sprintf("%s  %s", s.score(r.Final.OverallScore), s.result(r.Final.IsPass))))
	b.WriteString("\n")
	b.WriteString(s.line("Iterations", fmt.Sprintf("%d", len(r.Iterations))))
	b.WriteString("\n\n")
	b.WriteString(r.Content)
	b.WriteString("\n")
	return b.String()
}

func (s styles) batch(doc BatchDocument) string {
	var b strings.Builder

	for _, item := range doc.Results {
		if item.Report == nil {
			fmt.Fprintf(&b, "%s  %s  %s\n", s.worst.Render("  ERR"), item.Source, s.muted.Render(oneLine(item.Error)))
			continue
		}
		fmt.Fprintf(&b, "%s  %s  %s\n", s.score(item.Report.OverallScore), s.result(item.Report.IsPass), item.Source)
	}

	b.WriteString("\n")
	b.WriteString(s.box.Render(fmt.Sprintf("%d sources: %d passed, %d failed, %d errors, mean %.1f",
		doc.Summary.Total, doc.Summary.Passed, doc.Summary.Failed, doc.Summary.Errors, doc.Summary.MeanScore)))
	b.WriteString("\n")
	return b.String()
}
