// Package freshness assesses how current a piece of content is.
package freshness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ppiankov/contentqc/internal/consensus"
	"github.com/ppiankov/contentqc/internal/extract"
	"github.com/ppiankov/contentqc/internal/llm"
	"github.com/ppiankov/contentqc/internal/logging"
	"github.com/ppiankov/contentqc/internal/model"
	"github.com/ppiankov/contentqc/internal/score"
	"github.com/ppiankov/contentqc/internal/structured"
)

// DefaultRounds is the number of independent grounded freshness rounds
const DefaultRounds = 2

// NoSearchWarning is attached to verdicts computed without web search
const NoSearchWarning = "freshness not verified by web search; timeliness may be inaccurate"

// Options tunes the assessor
type Options struct {
	Rounds   int
	Parallel bool
	// Now overrides the clock used for the time score
	Now func() time.Time
}

// Assessor blends time, keyword and optional grounded-search freshness
type Assessor struct {
	grounded llm.Provider
	rounds   int
	parallel bool
	now      func() time.Time
	logger   *slog.Logger
}

// New creates an assessor. A nil grounded provider limits it to time and
// keyword scoring.
func New(grounded llm.Provider, opts Options, logger *slog.Logger) *Assessor {
	rounds := opts.Rounds
	if rounds <= 0 {
		rounds = DefaultRounds
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Assessor{
		grounded: grounded,
		rounds:   rounds,
		parallel: opts.Parallel,
		now:      now,
		logger:   logging.OrDiscard(logger).With("component", "freshness"),
	}
}

type freshnessResponse struct {
	IsFresh        model.TriState    `json:"is_fresh"`
	FreshnessLevel string            `json:"freshness_level"`
	Score          structured.Number `json:"score"`
	Reasoning      string            `json:"reasoning"`
	LatestInfo     string            `json:"latest_info"`
}

// searchRound is one grounded freshness check
type searchRound struct {
	IsFresh       model.TriState
	Score         float64
	Reasoning     string
	LatestInfo    string
	SearchResults []model.Document
}

type searchSummary struct {
	Score     float64
	IsFresh   bool
	Reasoning string
	Docs      []model.Document
	Rounds    int
}

// Assess scores content freshness. It never fails: without a grounded
// provider, or when every round fails, the time and keyword blend is used.
func (a *Assessor) Assess(ctx context.Context, content, topic string, publishedAt *time.Time) model.FreshnessVerdict {
	a.logger.Info("assessing freshness", "topic", extract.Truncate(topic, 50))

	timeScore, timeLabel, timeReasoning := score.TimeFreshness(publishedAt, a.now())
	contentFreshness := score.ContentFreshness(content)

	verdict := model.FreshnessVerdict{
		TimeScore:     timeScore,
		TimeLabel:     timeLabel,
		TimeReasoning: timeReasoning,
		Content:       contentFreshness,
	}

	var roundsErr error
	if a.grounded != nil {
		summary, stats, ok := consensus.Run(ctx, consensus.Spec[searchRound, searchSummary]{
			Rounds: a.rounds,
			Call: func(ctx context.Context, round int) (searchRound, error) {
				return a.searchRound(ctx, content, topic, round)
			},
			Usable:    func(r searchRound) bool { return r.Score > 0 },
			Aggregate: aggregateRounds,
			Parallel:  a.parallel,
		})

		if ok {
			searchScore := summary.Score
			final := score.BlendWithSearch(timeScore, searchScore, contentFreshness.Score)

			verdict.SearchScore = &searchScore
			verdict.Score = final
			verdict.IsFresh = model.TriStateOf(summary.IsFresh)
			verdict.Level = score.LevelWithSearch(final)
			verdict.Method = model.MethodMultiRoundSearch
			verdict.Outcome = model.OutcomeOK
			verdict.Rounds = summary.Rounds
			verdict.SearchResults = summary.Docs
			verdict.Reasoning = fmt.Sprintf("time: %s; content: %s; web search: %s",
				timeReasoning, contentFreshness.Reasoning, summary.Reasoning)

			a.logger.Info("grounded freshness complete", "rounds", summary.Rounds, "search_score", searchScore, "score", final)
			return verdict
		}

		roundsErr = errors.Join(stats.Errors...)
		a.logger.Warn("no usable freshness round, using time and content only",
			"failed", stats.Failed, "unusable", stats.Unusable, "error", roundsErr)
	}

	final := score.BlendWithoutSearch(timeScore, contentFreshness.Score)
	isFresh, level := score.LevelWithoutSearch(final)

	verdict.Score = final
	verdict.IsFresh = model.TriStateOf(isFresh)
	verdict.Level = level
	verdict.Method = model.MethodHybrid
	verdict.Outcome = model.OutcomeOK
	verdict.Warning = NoSearchWarning
	verdict.Reasoning = fmt.Sprintf("time: %s; content: %s (web search not used)",
		timeReasoning, contentFreshness.Reasoning)

	if a.grounded != nil {
		// Search was configured but produced nothing usable
		verdict.Outcome = model.OutcomeDegraded
		if roundsErr != nil {
			verdict.Error = roundsErr.Error()
		}
	}

	return verdict
}

func (a *Assessor) searchRound(ctx context.Context, content, topic string, round int) (searchRound, error) {
	a.logger.Debug("grounded freshness round", "round", round+1)

	resp, err := a.grounded.Generate(ctx, llm.GenerateRequest{
		Prompt:         freshnessPrompt(topic, content),
		SystemPrompt:   "You are a technology news editor who judges how current information is.",
		GroundedSearch: true,
		Temperature:    0.1,
	})
	if err != nil {
		a.logger.Warn("freshness round failed", "round", round+1, "error", err)
		return searchRound{}, err
	}

	res := structured.Decode[freshnessResponse](resp.Text)
	if res.Degraded() {
		a.logger.Warn("freshness round unparsable", "round", round+1, "error", res.Err)
		return searchRound{Reasoning: resp.Text}, nil
	}

	var docs []model.Document
	for _, c := range resp.Citations {
		if c.URL != "" {
			docs = append(docs, model.Document{Title: c.Title, URL: c.URL, Source: a.grounded.Name()})
		}
	}

	return searchRound{
		IsFresh:       res.Value.IsFresh,
		Score:         res.Value.Score.Clamp(),
		Reasoning:     res.Value.Reasoning,
		LatestInfo:    res.Value.LatestInfo,
		SearchResults: docs,
	}, nil
}

// aggregateRounds averages round scores; content is fresh only if every round says so
func aggregateRounds(rounds []searchRound) searchSummary {
	var total float64
	allFresh := true
	var docs []model.Document

	for _, r := range rounds {
		total += r.Score
		if r.IsFresh != model.True {
			allFresh = false
		}
		docs = append(docs, r.SearchResults...)
	}

	n := len(rounds)
	mean := total / float64(n)

	var reasoning string
	switch {
	case allFresh && mean >= 85:
		reasoning = fmt.Sprintf("rounds agree the content is very current (%d rounds)", n)
	case allFresh && mean >= 70:
		reasoning = fmt.Sprintf("rounds broadly agree the content is current (%d rounds)", n)
	case !allFresh:
		reasoning = fmt.Sprintf("rounds found outdated or stale information (%d rounds)", n)
	default:
		reasoning = fmt.Sprintf("rounds inconclusive, needs manual review (%d rounds)", n)
	}

	return searchSummary{
		Score:     mean,
		IsFresh:   allFresh,
		Reasoning: reasoning,
		Docs:      docs,
		Rounds:    n,
	}
}

func freshnessPrompt(topic, content string) string {
	return fmt.Sprintf(`Search the web for the latest developments on the topic below and judge how current the content is.

Topic: %s

Content:
%s

Requirements:
1. Find the most recent authoritative information on the topic
2. Check whether the content reflects it or relies on outdated facts, versions or dates
3. Score freshness strictly from 0 (obsolete) to 100 (reflects the very latest information)

Respond with a single JSON object:
{
    "is_fresh": true/false,
    "freshness_level": "newest/fresh/average/stale",
    "score": 0-100,
    "reasoning": "why the content is or is not current",
    "latest_info": "the most recent relevant development you found"
}`, topic, extract.Truncate(content, 800))
}
