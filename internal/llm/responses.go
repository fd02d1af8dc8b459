package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/contentqc/internal/util"
)

// ResponsesProvider implements the Provider interface for Responses-style APIs
// (OpenAI /v1/responses, Volcengine Ark). It supports grounded web search
// through the web_search tool.
type ResponsesProvider struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	config     Config
	name       string
}

// Responses API structures
type responsesRequest struct {
	Model           string             `json:"model"`
	Input           []responsesMessage `json:"input"`
	Tools           []responsesTool    `json:"tools,omitempty"`
	Stream          bool               `json:"stream"`
	Temperature     float64            `json:"temperature,omitempty"`
	MaxOutputTokens int                `json:"max_output_tokens,omitempty"`
}

type responsesMessage struct {
	Role    string             `json:"role"`
	Content []responsesContent `json:"content"`
}

type responsesContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type responsesTool struct {
	Type       string `json:"type"`
	MaxKeyword int    `json:"max_keyword,omitempty"`
}

type responsesResponse struct {
	ID     string `json:"id"`
	Model  string `json:"model"`
	Output []struct {
		Type    string `json:"type"`
		Role    string `json:"role"`
		Content []struct {
			Type        string `json:"type"`
			Text        string `json:"text"`
			Annotations []struct {
				Type  string `json:"type"`
				Title string `json:"title"`
				URL   string `json:"url"`
			} `json:"annotations,omitempty"`
		} `json:"content"`
	} `json:"output"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
	Error *responsesError `json:"error,omitempty"`
}

type responsesError struct {
	Code    string `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewResponsesProvider creates a new Responses API provider
func NewResponsesProvider(config Config) (*ResponsesProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Responses API key is required")
	}

	endpoint := config.BaseURL
	if endpoint == "" {
		endpoint = "https://api.openai.com/v1/responses"
	}
	endpoint = strings.TrimSuffix(endpoint, "/")
	if !strings.HasSuffix(endpoint, "/responses") {
		endpoint += "/responses"
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &ResponsesProvider{
		apiKey:     config.APIKey,
		endpoint:   endpoint,
		httpClient: util.NewHTTPClient(timeout, config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
		config:     config,
		name:       "responses",
	}, nil
}

// Name returns the provider name
func (p *ResponsesProvider) Name() string {
	return p.name
}

// SupportsGroundedSearch reports that this provider can search the web
func (p *ResponsesProvider) SupportsGroundedSearch() bool {
	return true
}

// IsAvailable checks if the provider is properly configured
func (p *ResponsesProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.Generate(ctx, GenerateRequest{Prompt: "Hi", MaxTokens: 16})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s API check failed: %v\n", p.name, err)
		return false
	}
	return true
}

// Generate produces a completion, optionally grounded in a live web search
func (p *ResponsesProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	model := req.Model
	if model == "" {
		model = p.config.Model
	}
	if model == "" {
		model = "gpt-4o-mini"
	}

	// System instructions travel inside the user turn; Ark does not accept a system role
	text := req.Prompt
	if req.SystemPrompt != "" {
		text = fmt.Sprintf("System instructions: %s\n\n%s", req.SystemPrompt, req.Prompt)
	}

	apiReq := responsesRequest{
		Model: model,
		Input: []responsesMessage{
			{
				Role:    "user",
				Content: []responsesContent{{Type: "input_text", Text: text}},
			},
		},
		Stream:          false,
		Temperature:     float64(p.config.temperature(req)),
		MaxOutputTokens: p.config.maxTokens(req),
	}
	if req.GroundedSearch {
		tool := responsesTool{Type: "web_search"}
		if p.name == "doubao" {
			tool.MaxKeyword = 3
		}
		apiReq.Tools = []responsesTool{tool}
	}

	resp, err := p.makeRequest(ctx, apiReq)
	if err != nil {
		return nil, fmt.Errorf("%s API error: %w", p.name, err)
	}

	var (
		parts     []string
		citations []Citation
		searched  bool
		seen      = make(map[string]bool)
	)
	for _, item := range resp.Output {
		switch item.Type {
		case "web_search_call":
			searched = true
		case "message":
			if item.Role != "" && item.Role != "assistant" {
				continue
			}
			for _, content := range item.Content {
				if content.Type != "output_text" {
					continue
				}
				if content.Text != "" {
					parts = append(parts, content.Text)
				}
				for _, ann := range content.Annotations {
					if ann.Type == "url_citation" && ann.URL != "" && !seen[ann.URL] {
						seen[ann.URL] = true
						citations = append(citations, Citation{Title: ann.Title, URL: ann.URL})
					}
				}
			}
		}
	}

	if len(parts) == 0 {
		return nil, fmt.Errorf("no text in %s response", p.name)
	}

	output := strings.TrimSpace(strings.Join(parts, "\n"))
	if len(citations) == 0 {
		citations = textCitations(output)
	}

	tokens := resp.Usage.TotalTokens
	if tokens == 0 {
		tokens = resp.Usage.InputTokens + resp.Usage.OutputTokens
	}

	return &GenerateResponse{
		Text:       output,
		Citations:  citations,
		Searched:   searched,
		Model:      resp.Model,
		TokensUsed: tokens,
	}, nil
}

// makeRequest makes an HTTP request to the Responses endpoint
func (p *ResponsesProvider) makeRequest(ctx context.Context, apiReq responsesRequest) (*responsesResponse, error) {
	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	if p.config.UserAgent != "" {
		httpReq.Header.Set("User-Agent", p.config.UserAgent)
	}

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error responsesError `json:"error"`
		}
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("API error (%d): %s - %s", httpResp.StatusCode, apiErr.Error.Code, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("API error (%d): %s", httpResp.StatusCode, truncateBody(respBody, 500))
	}

	var resp responsesResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Error != nil && resp.Error.Message != "" {
		return nil, fmt.Errorf("API error [%s]: %s", resp.Error.Code, resp.Error.Message)
	}

	return &resp, nil
}

func truncateBody(body []byte, limit int) string {
	if len(body) <= limit {
		return string(body)
	}
	return string(body[:limit]) + "..."
}
