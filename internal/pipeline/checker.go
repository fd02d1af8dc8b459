// Package pipeline orchestrates a full content quality check: the three
// verdicts, aggregation, optional source validation and refinement.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/contentqc/internal/crossref"
	"github.com/ppiankov/contentqc/internal/extract"
	"github.com/ppiankov/contentqc/internal/freshness"
	"github.com/ppiankov/contentqc/internal/improve"
	"github.com/ppiankov/contentqc/internal/llm"
	"github.com/ppiankov/contentqc/internal/logging"
	"github.com/ppiankov/contentqc/internal/model"
	"github.com/ppiankov/contentqc/internal/score"
	"github.com/ppiankov/contentqc/internal/search"
	"github.com/ppiankov/contentqc/internal/verify"
)

// SourceValidator checks cited URLs
type SourceValidator interface {
	Validate(ctx context.Context, urls []string) []model.SourceCheck
}

// Collaborators are the external services a Checker uses. Any of them may be
// nil; the affected verdicts then degrade instead of failing.
type Collaborators struct {
	Generator llm.Provider
	Grounded  llm.Provider
	Searcher  search.Searcher
	Validator SourceValidator
}

// Input is one piece of content to check
type Input struct {
	Topic       string     `json:"topic" yaml:"topic"`
	Content     string     `json:"content" yaml:"content"`
	PublishedAt *time.Time `json:"published_at,omitempty" yaml:"published_at,omitempty"`
	Links       []string   `json:"links,omitempty" yaml:"links,omitempty"` // Extra URLs to validate
	Source      string     `json:"source,omitempty" yaml:"source,omitempty"`
}

// Checker runs comprehensive quality checks
type Checker struct {
	verifier  *verify.Verifier
	assessor  *freshness.Assessor
	crossref  *crossref.CrossReferencer
	improver  *improve.Improver
	scorer    *score.Scorer
	validator SourceValidator
	config    model.Config
	logger    *slog.Logger
}

// nowFunc is the clock used for time freshness; tests replace it
var nowFunc = time.Now

// New creates a checker from configuration and collaborators
func New(cfg model.Config, c Collaborators, logger *slog.Logger) *Checker {
	logger = logging.OrDiscard(logger)

	// The grounded provider can answer plain prompts too
	generator := c.Generator
	if generator == nil {
		generator = c.Grounded
	}

	return &Checker{
		verifier: verify.New(c.Grounded, c.Generator, verify.Options{
			Rounds:   cfg.Quality.VerifyRounds,
			Parallel: cfg.Quality.ParallelRounds,
		}, logger),
		assessor: freshness.New(c.Grounded, freshness.Options{
			Rounds:   cfg.Quality.FreshnessRounds,
			Parallel: cfg.Quality.ParallelRounds,
			Now:      nowFunc,
		}, logger),
		crossref: crossref.New(c.Searcher, generator, crossref.Options{
			MaxResults: cfg.Quality.CrossRefResults,
		}, logger),
		improver: improve.New(generator, improve.Options{
			MaxTokens: cfg.Improve.MaxTokens,
			Grounded:  cfg.Improve.Grounded,
		}, logger),
		scorer:    score.NewScorer(),
		validator: c.Validator,
		config:    cfg,
		logger:    logger.With("component", "pipeline"),
	}
}

// ComprehensiveCheck produces a new QualityReport for the input. Provider
// problems never surface as errors; they show up as degraded verdicts.
func (c *Checker) ComprehensiveCheck(ctx context.Context, in Input) model.QualityReport {
	start := time.Now()

	// 1. Verdicts, concurrently. None of them returns an error.
	var (
		truth       model.ClaimVerdict
		fresh       model.FreshnessVerdict
		consistency model.ConsistencyVerdict
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		truth = c.verifier.Verify(gctx, in.Content)
		return nil
	})
	g.Go(func() error {
		fresh = c.assessor.Assess(gctx, in.Content, in.Topic, in.PublishedAt)
		return nil
	})
	g.Go(func() error {
		consistency = c.crossref.CrossReference(gctx, in.Topic, in.Content)
		return nil
	})
	_ = g.Wait()

	// 2. Aggregate
	report := c.scorer.Aggregate(in.Topic, truth, fresh, consistency)

	// 3. Topic relevance (informational)
	if c.config.Quality.Relevance && in.Topic != "" {
		rel := score.TopicRelevance(in.Content, in.Topic)
		report.Relevance = &rel
	}

	// 4. Source validation (informational, never affects score)
	if c.validator != nil {
		report.SourceChecks = c.validator.Validate(ctx, citedURLs(in, report))
		if len(report.SourceChecks) > 0 {
			report.Signals = append(report.Signals, sourceSignal(report.SourceChecks))
		}
	}

	c.logger.Debug("check complete",
		"topic", in.Topic,
		"overall", report.OverallScore,
		"tier", report.Tier,
		"elapsed", time.Since(start).Round(time.Millisecond))

	return report
}

// Improve rewrites the input content using the report's findings
func (c *Checker) Improve(ctx context.Context, in Input, report model.QualityReport) model.ImprovementResult {
	return c.improver.Improve(ctx, in.Topic, in.Content, report)
}

// Refine runs check, improve and re-check while the report is not passing,
// up to maxIterations times. It stops early when an improvement fails or the
// score does not go up. maxIterations <= 0 uses the configured value.
func (c *Checker) Refine(ctx context.Context, in Input, maxIterations int) model.RefinementResult {
	if maxIterations <= 0 {
		maxIterations = c.config.Improve.MaxIterations
	}
	if maxIterations <= 0 {
		maxIterations = 1
	}

	best := c.ComprehensiveCheck(ctx, in)
	result := model.RefinementResult{
		Initial:    best,
		Iterations: []model.Iteration{},
		Content:    in.Content,
	}

	current := in
	for i := 0; i < maxIterations && !best.IsPass; i++ {
		if ctx.Err() != nil {
			break
		}

		imp := c.Improve(ctx, current, best)
		if !imp.Success {
			c.logger.Warn("improvement failed, stopping refinement", "iteration", i+1, "outcome", imp.Outcome)
			result.Iterations = append(result.Iterations, model.Iteration{Improvement: imp})
			break
		}

		next := current
		next.Content = imp.ImprovedContent
		report := c.ComprehensiveCheck(ctx, next)
		result.Iterations = append(result.Iterations, model.Iteration{Improvement: imp, Report: &report})

		if report.OverallScore <= best.OverallScore {
			c.logger.Info("score did not improve, stopping refinement",
				"iteration", i+1,
				"before", best.OverallScore,
				"after", report.OverallScore)
			break
		}

		best = report
		current = next
		result.Improved = true
	}

	result.Final = best
	result.Content = current.Content
	return result
}

// citedURLs gathers every URL the verdicts and the content refer to
func citedURLs(in Input, report model.QualityReport) []string {
	var urls []string
	urls = append(urls, report.Truth.Sources...)
	urls = append(urls, documentURLs(report.Truth.SearchResults)...)
	urls = append(urls, documentURLs(report.Freshness.SearchResults)...)
	urls = append(urls, documentURLs(report.Consistency.SearchResults)...)
	urls = append(urls, extract.URLs(in.Content)...)
	urls = append(urls, in.Links...)
	return urls
}

func documentURLs(docs []model.Document) []string {
	urls := make([]string, 0, len(docs))
	for _, d := range docs {
		if d.URL != "" {
			urls = append(urls, d.URL)
		}
	}
	return urls
}

func sourceSignal(checks []model.SourceCheck) model.Signal {
	var accessible, dead, blocked, primary int
	for _, c := range checks {
		if c.Accessible {
			accessible++
		}
		if c.IsDead {
			dead++
		}
		if !c.RobotsAllowed {
			blocked++
		}
		if c.Authority == model.TierPrimary {
			primary++
		}
	}

	severity := model.SeverityInfo
	if accessible*2 < len(checks) {
		severity = model.SeverityWarning
	}

	return model.Signal{
		Type:        model.SignalSourceAccessibility,
		Severity:    severity,
		Description: fmt.Sprintf("%d of %d cited sources accessible", accessible, len(checks)),
		Data: map[string]interface{}{
			"total":          len(checks),
			"accessible":     accessible,
			"dead":           dead,
			"robots_blocked": blocked,
			"primary":        primary,
		},
	}
}
