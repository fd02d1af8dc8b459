// Package crossref checks content for consistency against retrieved
// documents, or against the model's own background knowledge.
package crossref

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ppiankov/contentqc/internal/extract"
	"github.com/ppiankov/contentqc/internal/llm"
	"github.com/ppiankov/contentqc/internal/logging"
	"github.com/ppiankov/contentqc/internal/model"
	"github.com/ppiankov/contentqc/internal/search"
	"github.com/ppiankov/contentqc/internal/structured"
)

const (
	// DefaultMaxResults is the number of documents retrieved per topic
	DefaultMaxResults = 5

	digestDocuments = 3
	digestSnippet   = 100
	contentLimit    = 800

	maxTokens   = 800
	temperature = 0.3

	systemPrompt = "You are a cross-checker for technology news."
)

// Options tunes the cross-referencer
type Options struct {
	MaxResults int
}

// CrossReferencer produces a ConsistencyVerdict for content on a topic
type CrossReferencer struct {
	searcher   search.Searcher
	generator  llm.Provider
	maxResults int
	logger     *slog.Logger
}

// New creates a cross-referencer. Either collaborator may be nil.
func New(searcher search.Searcher, generator llm.Provider, opts Options, logger *slog.Logger) *CrossReferencer {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &CrossReferencer{
		searcher:   searcher,
		generator:  generator,
		maxResults: maxResults,
		logger:     logging.OrDiscard(logger).With("component", "crossref"),
	}
}

type consistencyResponse struct {
	IsConsistent      model.TriState     `json:"is_consistent"`
	Confidence        structured.Number  `json:"confidence"`
	KnownFacts        structured.Strings `json:"known_facts"`
	Contradictions    structured.Strings `json:"contradictions"`
	AdditionalContext string             `json:"additional_context"`
	Reasoning         string             `json:"reasoning"`
}

// CrossReference compares content with what is known about topic. It never
// returns an error; provider conditions are reported through the Outcome.
func (c *CrossReferencer) CrossReference(ctx context.Context, topic, content string) model.ConsistencyVerdict {
	c.logger.Info("cross-referencing", "topic", extract.Truncate(topic, 50))

	if c.generator == nil {
		return model.ConsistencyVerdict{
			IsConsistent: model.Unknown,
			Reasoning:    "not configured: no generation provider available",
			Method:       model.MethodNone,
			Outcome:      model.OutcomeUnavailable,
		}
	}

	docs := c.retrieve(ctx, topic)

	method := model.MethodKnowledgeBase
	prompt := knowledgePrompt(topic, content)
	if len(docs) > 0 {
		method = model.MethodWebSearch
		prompt = searchPrompt(topic, content, Digest(docs))
	}

	resp, err := c.generator.Generate(ctx, llm.GenerateRequest{
		Prompt:       prompt,
		SystemPrompt: systemPrompt,
		MaxTokens:    maxTokens,
		Temperature:  temperature,
	})
	if err != nil {
		c.logger.Warn("cross-reference failed", "error", err)
		return model.ConsistencyVerdict{
			IsConsistent:  model.Unknown,
			Reasoning:     fmt.Sprintf("cross-reference failed: %v", err),
			Method:        method,
			Outcome:       model.OutcomeFailed,
			SearchResults: docs,
			Error:         err.Error(),
		}
	}

	res := structured.Decode[consistencyResponse](resp.Text)
	if res.Degraded() {
		c.logger.Warn("cross-reference response unparsable", "error", res.Err)
		return model.ConsistencyVerdict{
			IsConsistent:      model.Unknown,
			Confidence:        50,
			AdditionalContext: res.Raw,
			Method:            method,
			Outcome:           model.OutcomeDegraded,
			SearchResults:     docs,
			Error:             res.Err.Error(),
		}
	}

	verdict := model.ConsistencyVerdict{
		IsConsistent:      res.Value.IsConsistent,
		Confidence:        res.Value.Confidence.Clamp(),
		KnownFacts:        res.Value.KnownFacts,
		Contradictions:    res.Value.Contradictions,
		AdditionalContext: res.Value.AdditionalContext,
		Reasoning:         res.Value.Reasoning,
		Method:            method,
		Outcome:           model.OutcomeOK,
		SearchResults:     docs,
	}
	c.logger.Info("cross-reference complete", "method", method, "confidence", verdict.Confidence,
		"contradictions", len(verdict.Contradictions))
	return verdict
}

// retrieve searches the topic; search problems fall back to no documents
func (c *CrossReferencer) retrieve(ctx context.Context, topic string) []model.Document {
	if c.searcher == nil {
		return nil
	}

	docs, err := c.searcher.Search(ctx, topic, c.maxResults)
	if err != nil {
		c.logger.Warn("search failed, using background knowledge", "error", err)
		return nil
	}
	c.logger.Debug("search complete", "results", len(docs))
	return docs
}

// Digest renders the top documents as "- title: snippet" lines
func Digest(docs []model.Document) string {
	var b strings.Builder
	for i, d := range docs {
		if i == digestDocuments {
			break
		}
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- %s: %s", d.Title, extract.Truncate(d.Snippet, digestSnippet))
	}
	return b.String()
}

const responseFormat = `Respond with a single JSON object:
{
    "is_consistent": true/false,
    "confidence": 0-100,
    "known_facts": ["known fact"],
    "contradictions": ["contradiction"],
    "additional_context": "additional background",
    "reasoning": "why"
}`

func searchPrompt(topic, content, digest string) string {
	return fmt.Sprintf(`Task: verify the content below against these search results.

Topic: %s
Content: %s

Search results:
%s

Requirements:
1. Compare the content with the search results for consistency
2. Point out any contradictions or doubtful statements
3. Provide additional background
4. Give a credibility score (0-100)

%s`, topic, extract.Truncate(content, contentLimit), digest, responseFormat)
}

func knowledgePrompt(topic, content string) string {
	return fmt.Sprintf(`Task: verify the content below against your own knowledge.

Topic: %s
Content: %s

Requirements:
1. Recall what you know about the topic
2. Compare the content with that knowledge for consistency
3. Point out any contradictions or doubtful statements
4. Provide additional background
5. Give a credibility score (0-100)

%s`, topic, extract.Truncate(content, contentLimit), responseFormat)
}
