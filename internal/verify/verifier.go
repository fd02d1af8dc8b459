// Package verify judges whether a claim is true, using independent grounded
// rounds when a search-capable model is configured and a single strict
// knowledge-based check otherwise.
package verify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ppiankov/contentqc/internal/consensus"
	"github.com/ppiankov/contentqc/internal/extract"
	"github.com/ppiankov/contentqc/internal/llm"
	"github.com/ppiankov/contentqc/internal/logging"
	"github.com/ppiankov/contentqc/internal/model"
	"github.com/ppiankov/contentqc/internal/structured"
)

const (
	// DefaultRounds is the number of independent grounded rounds
	DefaultRounds = 2

	fallbackMaxTokens   = 800
	fallbackTemperature = 0.1
)

// Options tunes the verifier
type Options struct {
	Rounds   int
	Parallel bool
}

// Verifier produces a ClaimVerdict for a claim. It never returns an error:
// provider conditions are reported through the verdict's Outcome.
type Verifier struct {
	grounded  llm.Provider
	generator llm.Provider
	rounds    int
	parallel  bool
	logger    *slog.Logger
}

// New creates a verifier. Either provider may be nil; without a generator
// the grounded provider also serves the single-model check.
func New(grounded, generator llm.Provider, opts Options, logger *slog.Logger) *Verifier {
	rounds := opts.Rounds
	if rounds <= 0 {
		rounds = DefaultRounds
	}
	if generator == nil {
		generator = grounded
	}
	return &Verifier{
		grounded:  grounded,
		generator: generator,
		rounds:    rounds,
		parallel:  opts.Parallel,
		logger:    logging.OrDiscard(logger).With("component", "verify"),
	}
}

// claimResponse is the JSON shape both prompts ask for
type claimResponse struct {
	IsTrue     model.TriState     `json:"is_true"`
	Confidence structured.Number  `json:"confidence"`
	Reasoning  string             `json:"reasoning"`
	Sources    structured.Strings `json:"sources"`
	Notes      string             `json:"notes"`
}

// Verify checks a claim
func (v *Verifier) Verify(ctx context.Context, claim string) model.ClaimVerdict {
	v.logger.Info("verifying claim", "claim", extract.Truncate(claim, 50))

	if v.grounded != nil {
		verdict, stats, ok := consensus.Run(ctx, consensus.Spec[model.VerificationRound, model.ClaimVerdict]{
			Rounds: v.rounds,
			Call: func(ctx context.Context, round int) (model.VerificationRound, error) {
				return v.groundedRound(ctx, claim, round)
			},
			Usable:    func(r model.VerificationRound) bool { return r.Confidence > 0 },
			Aggregate: AggregateRounds,
			Parallel:  v.parallel,
		})
		if ok {
			v.logger.Info("grounded verification complete",
				"rounds", stats.Usable, "failed", stats.Failed, "confidence", verdict.Confidence, "agreement", verdict.Agreement)
			return verdict
		}

		v.logger.Warn("no usable grounded round, falling back",
			"failed", stats.Failed, "unusable", stats.Unusable, "error", errors.Join(stats.Errors...))
	}

	if v.generator == nil {
		return model.ClaimVerdict{
			IsTrue:    model.Unknown,
			Reasoning: "not configured: no generation provider available",
			Method:    model.MethodNone,
			Outcome:   model.OutcomeUnavailable,
		}
	}

	return v.singleModel(ctx, claim)
}

func (v *Verifier) groundedRound(ctx context.Context, claim string, round int) (model.VerificationRound, error) {
	v.logger.Debug("grounded round", "round", round+1)

	resp, err := v.grounded.Generate(ctx, llm.GenerateRequest{
		Prompt:         groundedPrompt(claim),
		SystemPrompt:   systemPrompt,
		GroundedSearch: true,
		Temperature:    fallbackTemperature,
	})
	if err != nil {
		v.logger.Warn("grounded round failed", "round", round+1, "error", err)
		return model.VerificationRound{}, err
	}

	res := structured.Decode[claimResponse](resp.Text)
	if res.Degraded() {
		// Unparsable rounds carry no confidence and are discarded
		v.logger.Warn("grounded round unparsable", "round", round+1, "error", res.Err)
		return model.VerificationRound{Reasoning: resp.Text}, nil
	}

	return model.VerificationRound{
		Verdict:       res.Value.IsTrue,
		Confidence:    res.Value.Confidence.Clamp(),
		Reasoning:     res.Value.Reasoning,
		Sources:       mergeSources(res.Value.Sources, resp.CitedURLs()),
		SearchResults: citationDocuments(resp.Citations, v.grounded.Name()),
	}, nil
}

func (v *Verifier) singleModel(ctx context.Context, claim string) model.ClaimVerdict {
	resp, err := v.generator.Generate(ctx, llm.GenerateRequest{
		Prompt:       rubricPrompt(claim),
		SystemPrompt: systemPrompt,
		MaxTokens:    fallbackMaxTokens,
		Temperature:  fallbackTemperature,
	})
	if err != nil {
		v.logger.Warn("verification failed", "error", err)
		return failedVerdict(model.MethodSingleModel, err)
	}

	res := structured.Decode[claimResponse](resp.Text)
	if res.Degraded() {
		v.logger.Warn("verification response unparsable", "error", res.Err)
		return model.ClaimVerdict{
			IsTrue:     model.Unknown,
			Confidence: 50,
			Reasoning:  res.Raw,
			Method:     model.MethodSingleModel,
			Outcome:    model.OutcomeDegraded,
			Error:      res.Err.Error(),
		}
	}

	verdict := model.ClaimVerdict{
		IsTrue:     res.Value.IsTrue,
		Confidence: res.Value.Confidence.Clamp(),
		Reasoning:  res.Value.Reasoning,
		Method:     model.MethodSingleModel,
		Outcome:    model.OutcomeOK,
		Sources:    mergeSources(res.Value.Sources, resp.CitedURLs()),
		Rounds:     1,
		Notes:      res.Value.Notes,
	}
	v.logger.Info("single-model verification complete", "confidence", verdict.Confidence, "is_true", verdict.IsTrue)
	return verdict
}

// AggregateRounds merges usable rounds: the claim is true only when every
// round says so, false as soon as one round says so, unknown otherwise.
// High agreement needs a mean above 80; exactly 80 is medium.
func AggregateRounds(rounds []model.VerificationRound) model.ClaimVerdict {
	var (
		total    float64
		allTrue  = true
		anyFalse bool
		sources  []string
		docs     []model.Document
	)

	for _, r := range rounds {
		total += r.Confidence
		if r.Verdict != model.True {
			allTrue = false
		}
		if r.Verdict == model.False {
			anyFalse = true
		}
		sources = mergeSources(sources, r.Sources)
		docs = append(docs, r.SearchResults...)
	}

	n := len(rounds)
	mean := 0.0
	if n > 0 {
		mean = total / float64(n)
	}

	verdict := model.ClaimVerdict{
		IsTrue:        model.Unknown,
		Confidence:    mean,
		Method:        model.MethodMultiRoundSearch,
		Outcome:       model.OutcomeOK,
		Sources:       sources,
		SearchResults: docs,
		Rounds:        n,
	}

	switch {
	case n > 0 && allTrue && mean > 80:
		verdict.IsTrue = model.True
		verdict.Agreement = model.AgreementHigh
		verdict.Reasoning = fmt.Sprintf("rounds agree, high confidence (%d rounds)", n)
	case n > 0 && allTrue && mean >= 60:
		verdict.IsTrue = model.True
		verdict.Agreement = model.AgreementMedium
		verdict.Reasoning = fmt.Sprintf("rounds broadly agree, medium confidence (%d rounds)", n)
	case anyFalse:
		verdict.IsTrue = model.False
		verdict.Agreement = model.AgreementLow
		verdict.Reasoning = fmt.Sprintf("rounds found contradictions, low confidence (%d rounds)", n)
	default:
		if n > 0 && allTrue {
			verdict.IsTrue = model.True
		}
		verdict.Agreement = model.AgreementReview
		verdict.Reasoning = fmt.Sprintf("rounds inconclusive, needs manual review (%d rounds)", n)
	}

	return verdict
}

func failedVerdict(method model.Method, err error) model.ClaimVerdict {
	return model.ClaimVerdict{
		IsTrue:    model.Unknown,
		Reasoning: fmt.Sprintf("verification failed: %v", err),
		Method:    method,
		Outcome:   model.OutcomeFailed,
		Error:     err.Error(),
	}
}

// mergeSources appends the non-empty entries of extra not already in base
func mergeSources(base, extra []string) []string {
	seen := make(map[string]bool, len(base))
	for _, s := range base {
		seen[s] = true
	}
	for _, s := range extra {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		base = append(base, s)
	}
	return base
}

func citationDocuments(citations []llm.Citation, provider string) []model.Document {
	if len(citations) == 0 {
		return nil
	}
	docs := make([]model.Document, 0, len(citations))
	for _, c := range citations {
		if c.URL == "" {
			continue
		}
		docs = append(docs, model.Document{Title: c.Title, URL: c.URL, Source: provider})
	}
	return docs
}
