package verify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/ppiankov/contentqc/internal/llm"
	"github.com/ppiankov/contentqc/internal/model"
)

// mockProvider returns scripted responses in call order; the last one repeats
type mockProvider struct {
	name      string
	responses []string
	citations []llm.Citation
	err       error

	mu    sync.Mutex
	calls []llm.GenerateRequest
}

func (m *mockProvider) Name() string { return m.name }
func (m *mockProvider) IsAvailable(ctx context.Context) bool { return true }

func (m *mockProvider) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := len(m.calls)
	m.calls = append(m.calls, req)
	if m.err != nil {
		return nil, m.err
	}
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	return &llm.GenerateResponse{Text: m.responses[idx], Citations: m.citations}, nil
}

func TestVerify_GroundedRoundsMediumAgreement(t *testing.T) {
	grounded := &mockProvider{
		name: "doubao",
		responses: []string{
			`{"is_true": true, "confidence": 90, "reasoning": "confirmed", "sources": ["https://a.example"]}`,
			`{"is_true": true, "confidence": 70, "reasoning": "mostly confirmed", "sources": ["https://a.example", "https://b.example"]}`,
		},
	}

	v := New(grounded, nil, Options{Rounds: 2}, nil)
	verdict := v.Verify(context.Background(), "DeepSeek released R1 in January 2025")

	if verdict.Confidence != 80 {
		t.Errorf("Expected confidence 80, got %v", verdict.Confidence)
	}
	if verdict.IsTrue != model.True {
		t.Errorf("Expected true, got %v", verdict.IsTrue)
	}
	if verdict.Agreement != model.AgreementMedium || !strings.Contains(verdict.Reasoning, "medium") {
		t.Errorf("Expected medium agreement, got %q / %q", verdict.Agreement, verdict.Reasoning)
	}
	if verdict.Method != model.MethodMultiRoundSearch || verdict.Outcome != model.OutcomeOK {
		t.Errorf("Unexpected method/outcome: %s/%s", verdict.Method, verdict.Outcome)
	}
	if verdict.Rounds != 2 {
		t.Errorf("Expected 2 rounds, got %d", verdict.Rounds)
	}
	if len(verdict.Sources) != 2 {
		t.Errorf("Expected deduplicated sources, got %v", verdict.Sources)
	}

	for _, req := range grounded.calls {
		if !req.GroundedSearch {
			t.Error("Expected grounded search on every round")
		}
	}
}

func TestVerify_OneRoundFalse(t *testing.T) {
	grounded := &mockProvider{
		name: "doubao",
		responses: []string{
			`{"is_true": true, "confidence": 90}`,
			`{"is_true": false, "confidence": 85}`,
		},
	}

	verdict := New(grounded, nil, Options{Rounds: 2}, nil).Verify(context.Background(), "claim")

	if verdict.IsTrue != model.False {
		t.Errorf("Expected false when one round disagrees, got %v", verdict.IsTrue)
	}
	if verdict.Agreement != model.AgreementLow {
		t.Errorf("Expected low agreement, got %s", verdict.Agreement)
	}
}

func TestVerify_ParallelRounds(t *testing.T) {
	grounded := &mockProvider{
		name:      "openai",
		responses: []string{`{"is_true": true, "confidence": 95}`},
		citations: []llm.Citation{{Title: "Release notes", URL: "https://c.example/notes"}},
	}

	verdict := New(grounded, nil, Options{Rounds: 3, Parallel: true}, nil).Verify(context.Background(), "claim")

	if len(grounded.calls) != 3 {
		t.Fatalf("Expected 3 rounds, got %d", len(grounded.calls))
	}
	if verdict.Agreement != model.AgreementHigh || verdict.Confidence != 95 {
		t.Errorf("Expected high agreement at 95, got %s at %v", verdict.Agreement, verdict.Confidence)
	}
	if len(verdict.Sources) != 1 || verdict.Sources[0] != "https://c.example/notes" {
		t.Errorf("Expected citation merged into sources, got %v", verdict.Sources)
	}
	if len(verdict.SearchResults) != 3 || verdict.SearchResults[0].Source != "openai" {
		t.Errorf("Expected one citation document per round, got %v", verdict.SearchResults)
	}
}

func TestVerify_FallsBackWhenNoUsableRound(t *testing.T) {
	grounded := &mockProvider{name: "doubao", responses: []string{`{"is_true": true, "confidence": 0}`, `not json`}}
	generator := &mockProvider{name: "deepseek", responses: []string{`{"is_true": true, "confidence": 75, "reasoning": "plausible", "notes": "check date"}`}}

	verdict := New(grounded, generator, Options{Rounds: 2}, nil).Verify(context.Background(), "claim")

	if len(generator.calls) != 1 {
		t.Fatalf("Expected one fallback call, got %d", len(generator.calls))
	}
	if verdict.Method != model.MethodSingleModel || verdict.Confidence != 75 || verdict.IsTrue != model.True {
		t.Errorf("Unexpected fallback verdict: %+v", verdict)
	}
	if verdict.Notes != "check date" {
		t.Errorf("Expected notes carried over, got %q", verdict.Notes)
	}
}

func TestVerify_SingleModelRequest(t *testing.T) {
	generator := &mockProvider{name: "deepseek", responses: []string{"```json\n{\"is_true\": \"yes\", \"confidence\": \"85\"}\n```"}}

	verdict := New(nil, generator, Options{}, nil).Verify(context.Background(), "claim text")

	req := generator.calls[0]
	if req.Temperature != 0.1 || req.MaxTokens != 800 || req.GroundedSearch {
		t.Errorf("Unexpected request parameters: %+v", req)
	}
	if req.SystemPrompt == "" || !strings.Contains(req.Prompt, "claim text") || !strings.Contains(req.Prompt, "90-100") {
		t.Error("Expected system prompt and rubric prompt embedding the claim")
	}

	if verdict.Confidence != 85 || verdict.IsTrue != model.True || verdict.Outcome != model.OutcomeOK {
		t.Errorf("Expected lenient decode of fenced response, got %+v", verdict)
	}
}

func TestVerify_Degraded(t *testing.T) {
	generator := &mockProvider{name: "deepseek", responses: []string{"The claim appears plausible."}}

	verdict := New(nil, generator, Options{}, nil).Verify(context.Background(), "claim")

	if verdict.Confidence != 50 || verdict.IsTrue != model.Unknown {
		t.Errorf("Expected 50/unknown, got %v/%v", verdict.Confidence, verdict.IsTrue)
	}
	if verdict.Reasoning != "The claim appears plausible." {
		t.Errorf("Expected raw text as reasoning, got %q", verdict.Reasoning)
	}
	if verdict.Outcome != model.OutcomeDegraded {
		t.Errorf("Expected degraded outcome, got %s", verdict.Outcome)
	}
}

func TestVerify_ProviderFailure(t *testing.T) {
	generator := &mockProvider{name: "deepseek", err: errors.New("connection refused")}

	verdict := New(nil, generator, Options{}, nil).Verify(context.Background(), "claim")

	if verdict.Confidence != 0 || verdict.IsTrue != model.Unknown {
		t.Errorf("Expected 0/unknown, got %v/%v", verdict.Confidence, verdict.IsTrue)
	}
	if !strings.HasPrefix(verdict.Reasoning, "verification failed:") || verdict.Outcome != model.OutcomeFailed {
		t.Errorf("Unexpected failure verdict: %+v", verdict)
	}
}

func TestVerify_GroundedFailureWithoutGenerator(t *testing.T) {
	grounded := &mockProvider{name: "doubao", err: errors.New("timeout")}

	verdict := New(grounded, nil, Options{Rounds: 2}, nil).Verify(context.Background(), "claim")

	if verdict.Outcome != model.OutcomeFailed || verdict.Confidence != 0 {
		t.Errorf("Expected failed verdict, got %+v", verdict)
	}
	if !strings.Contains(verdict.Error, "timeout") {
		t.Errorf("Expected provider error in verdict, got %q", verdict.Error)
	}
	if len(grounded.calls) != 3 {
		t.Errorf("Expected 2 grounded rounds and 1 fallback call, got %d", len(grounded.calls))
	}
}

func TestVerify_GroundedOnlyFallsBackToSingleModel(t *testing.T) {
	grounded := &mockProvider{
		name: "doubao",
		responses: []string{
			"not json at all",
			"not json at all",
			`{"is_true": true, "confidence": 72, "reasoning": "consistent with public sources"}`,
		},
	}

	verdict := New(grounded, nil, Options{Rounds: 2}, nil).Verify(context.Background(), "claim")

	if len(grounded.calls) != 3 {
		t.Fatalf("Expected a third single-model call, got %d calls", len(grounded.calls))
	}
	fallback := grounded.calls[2]
	if fallback.GroundedSearch || fallback.MaxTokens != 800 {
		t.Errorf("Expected a non-grounded rubric request, got %+v", fallback)
	}
	if verdict.Method != model.MethodSingleModel || verdict.Outcome != model.OutcomeOK {
		t.Errorf("Expected single-model verdict, got %s/%s", verdict.Method, verdict.Outcome)
	}
	if verdict.Confidence != 72 || verdict.IsTrue != model.True {
		t.Errorf("Expected true at 72, got %v at %v", verdict.IsTrue, verdict.Confidence)
	}
}

func TestVerify_NotConfigured(t *testing.T) {
	verdict := New(nil, nil, Options{}, nil).Verify(context.Background(), "claim")

	if verdict.Method != model.MethodNone || verdict.Outcome != model.OutcomeUnavailable {
		t.Errorf("Expected none/unavailable, got %s/%s", verdict.Method, verdict.Outcome)
	}
	if verdict.Confidence != 0 || verdict.IsTrue != model.Unknown {
		t.Errorf("Expected 0/unknown, got %v/%v", verdict.Confidence, verdict.IsTrue)
	}
}

func TestAggregateRounds(t *testing.T) {
	tests := []struct {
		name      string
		rounds    []model.VerificationRound
		isTrue    model.TriState
		agreement model.Agreement
	}{
		{
			name:      "high",
			rounds:    []model.VerificationRound{{Verdict: model.True, Confidence: 90}, {Verdict: model.True, Confidence: 80}},
			isTrue:    model.True,
			agreement: model.AgreementHigh,
		},
		{
			name:      "mean of exactly 80 is medium",
			rounds:    []model.VerificationRound{{Verdict: model.True, Confidence: 90}, {Verdict: model.True, Confidence: 70}},
			isTrue:    model.True,
			agreement: model.AgreementMedium,
		},
		{
			name:      "unknown round needs review",
			rounds:    []model.VerificationRound{{Verdict: model.True, Confidence: 90}, {Verdict: model.Unknown, Confidence: 60}},
			isTrue:    model.Unknown,
			agreement: model.AgreementReview,
		},
		{
			name:      "all true but weak",
			rounds:    []model.VerificationRound{{Verdict: model.True, Confidence: 40}},
			isTrue:    model.True,
			agreement: model.AgreementReview,
		},
		{
			name:      "false wins over unknown",
			rounds:    []model.VerificationRound{{Verdict: model.Unknown, Confidence: 60}, {Verdict: model.False, Confidence: 60}},
			isTrue:    model.False,
			agreement: model.AgreementLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := AggregateRounds(tt.rounds)
			if v.IsTrue != tt.isTrue || v.Agreement != tt.agreement {
				t.Errorf("Expected %v/%s, got %v/%s", tt.isTrue, tt.agreement, v.IsTrue, v.Agreement)
			}
		})
	}
}
