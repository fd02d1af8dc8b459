package crossref

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/contentqc/internal/llm"
	"github.com/ppiankov/contentqc/internal/model"
)

type mockProvider struct {
	response string
	err      error
	calls    []llm.GenerateRequest
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) IsAvailable(ctx context.Context) bool { return true }

func (m *mockProvider) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	m.calls = append(m.calls, req)
	if m.err != nil {
		return nil, m.err
	}
	return &llm.GenerateResponse{Text: m.response}, nil
}

type mockSearcher struct {
	docs  []model.Document
	err   error
	query string
	limit int
}

func (m *mockSearcher) Search(ctx context.Context, query string, maxResults int) ([]model.Document, error) {
	m.query = query
	m.limit = maxResults
	return m.docs, m.err
}

func testDocs() []model.Document {
	return []model.Document{
		{Title: "One", Snippet: strings.Repeat("a", 150), URL: "https://1.example"},
		{Title: "Two", Snippet: "short", URL: "https://2.example"},
		{Title: "Three", Snippet: "third", URL: "https://3.example"},
		{Title: "Four", Snippet: "fourth", URL: "https://4.example"},
	}
}

func TestCrossReference_WebSearch(t *testing.T) {
	searcher := &mockSearcher{docs: testDocs()}
	generator := &mockProvider{response: `{"is_consistent": true, "confidence": 88, "known_facts": ["f1", "f2"], "contradictions": [], "additional_context": "ctx", "reasoning": "agrees"}`}

	c := New(searcher, generator, Options{}, nil)
	v := c.CrossReference(context.Background(), "DeepSeek R1", strings.Repeat("内容", 600))

	if searcher.query != "DeepSeek R1" || searcher.limit != 5 {
		t.Errorf("Expected search for topic with limit 5, got %q/%d", searcher.query, searcher.limit)
	}
	if v.Method != model.MethodWebSearch || v.Outcome != model.OutcomeOK {
		t.Errorf("Expected web_search/ok, got %s/%s", v.Method, v.Outcome)
	}
	if v.IsConsistent != model.True || v.Confidence != 88 || len(v.KnownFacts) != 2 || len(v.Contradictions) != 0 {
		t.Errorf("Unexpected verdict: %+v", v)
	}
	if len(v.SearchResults) != 4 {
		t.Errorf("Expected all retrieved documents attached, got %d", len(v.SearchResults))
	}

	req := generator.calls[0]
	if req.Temperature != 0.3 || req.MaxTokens != 800 {
		t.Errorf("Unexpected request parameters: %+v", req)
	}
	if strings.Contains(req.Prompt, "Four") {
		t.Error("Digest should include only the top 3 documents")
	}
	if strings.Contains(req.Prompt, strings.Repeat("内容", 401)) {
		t.Error("Content should be truncated to 800 characters")
	}
}

func TestCrossReference_EmptySearchFallsBack(t *testing.T) {
	generator := &mockProvider{response: `{"is_consistent": false, "confidence": 40, "contradictions": "wrong date"}`}

	v := New(&mockSearcher{}, generator, Options{}, nil).CrossReference(context.Background(), "t", "c")

	if v.Method != model.MethodKnowledgeBase {
		t.Errorf("Expected knowledge_base, got %s", v.Method)
	}
	if v.IsConsistent != model.False || len(v.Contradictions) != 1 {
		t.Errorf("Unexpected verdict: %+v", v)
	}
	if !strings.Contains(generator.calls[0].Prompt, "your own knowledge") {
		t.Error("Expected knowledge-based prompt")
	}
}

func TestCrossReference_SearchErrorFallsBack(t *testing.T) {
	generator := &mockProvider{response: `{"is_consistent": true, "confidence": 70}`}

	v := New(&mockSearcher{err: errors.New("quota")}, generator, Options{}, nil).CrossReference(context.Background(), "t", "c")

	if v.Method != model.MethodKnowledgeBase || v.Confidence != 70 {
		t.Errorf("Expected knowledge_base at 70, got %s at %v", v.Method, v.Confidence)
	}
}

func TestCrossReference_NotConfigured(t *testing.T) {
	searcher := &mockSearcher{docs: testDocs()}
	v := New(searcher, nil, Options{}, nil).CrossReference(context.Background(), "t", "c")

	if v.Method != model.MethodNone || v.Outcome != model.OutcomeUnavailable || v.Confidence != 0 {
		t.Errorf("Expected unavailable verdict, got %+v", v)
	}
	if searcher.query != "" {
		t.Error("Search should be skipped without a generator")
	}
}

func TestCrossReference_Degraded(t *testing.T) {
	generator := &mockProvider{response: "Mostly consistent with public reports."}

	v := New(nil, generator, Options{}, nil).CrossReference(context.Background(), "t", "c")

	if v.IsConsistent != model.Unknown || v.Confidence != 50 {
		t.Errorf("Expected unknown/50, got %v/%v", v.IsConsistent, v.Confidence)
	}
	if v.AdditionalContext != "Mostly consistent with public reports." || v.Outcome != model.OutcomeDegraded {
		t.Errorf("Expected raw text as additional context, got %+v", v)
	}
}

func TestCrossReference_ProviderFailure(t *testing.T) {
	generator := &mockProvider{err: errors.New("timeout")}

	v := New(nil, generator, Options{}, nil).CrossReference(context.Background(), "t", "c")

	if v.Confidence != 0 || v.IsConsistent != model.Unknown || v.Outcome != model.OutcomeFailed {
		t.Errorf("Expected failed verdict, got %+v", v)
	}
}

func TestDigest(t *testing.T) {
	d := Digest(testDocs())
	lines := strings.Split(d, "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "- One: "+strings.Repeat("a", 100) {
		t.Errorf("Expected snippet truncated to 100, got %q", lines[0])
	}
	if lines[1] != "- Two: short" {
		t.Errorf("Unexpected line: %q", lines[1])
	}
	if Digest(nil) != "" {
		t.Error("Expected empty digest for no documents")
	}
}
