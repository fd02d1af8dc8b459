package llm

import (
	"context"

	"github.com/ppiankov/contentqc/internal/extract"
)

// Provider defines the interface for text generation providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate returns a completion for the prompt
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// GroundedProvider is implemented by providers that can run a live web search
// while generating
type GroundedProvider interface {
	Provider
	SupportsGroundedSearch() bool
}

// SupportsGroundedSearch reports whether p can honour GenerateRequest.GroundedSearch
func SupportsGroundedSearch(p Provider) bool {
	if p == nil {
		return false
	}
	g, ok := p.(GroundedProvider)
	return ok && g.SupportsGroundedSearch()
}

// GenerateRequest contains the input for one generation call
type GenerateRequest struct {
	// Prompt is the user prompt
	Prompt string

	// SystemPrompt is an optional system instruction
	SystemPrompt string

	// GroundedSearch asks the provider to search the web before answering.
	// Providers without search support ignore it.
	GroundedSearch bool

	// Model overrides the configured model
	Model string

	// MaxTokens limits the response length (0 = provider default)
	MaxTokens int

	// Temperature overrides the configured temperature (0 = provider default)
	Temperature float32
}

// Citation is a source the provider attached to its answer
type Citation struct {
	Title string `json:"title,omitempty"`
	URL   string `json:"url"`
}

// GenerateResponse contains the provider output
type GenerateResponse struct {
	// Text is the generated text
	Text string

	// Citations are sources returned by grounded search, or URLs found in the text
	Citations []Citation

	// Searched is true when the provider actually ran a web search
	Searched bool

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// CitedURLs returns the distinct citation URLs in order
func (r *GenerateResponse) CitedURLs() []string {
	if r == nil {
		return nil
	}
	seen := make(map[string]bool)
	var urls []string
	for _, c := range r.Citations {
		if c.URL != "" && !seen[c.URL] {
			seen[c.URL] = true
			urls = append(urls, c.URL)
		}
	}
	return urls
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "deepseek", "anthropic", "ollama", "responses", "doubao", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama, DeepSeek, Ark)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Temperature used when the request does not set one
	Temperature float32

	// UserAgent sent on raw HTTP requests
	UserAgent string

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:    "", // Disabled by default
		Timeout:     60,
		MaxTokens:   1000,
		Temperature: 0.3,
	}
}

func (c Config) maxTokens(req GenerateRequest) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return 1000
}

func (c Config) temperature(req GenerateRequest) float32 {
	if req.Temperature > 0 {
		return req.Temperature
	}
	return c.Temperature
}

// textCitations turns URLs mentioned in generated text into citations
func textCitations(text string) []Citation {
	urls := extract.URLs(text)
	if len(urls) == 0 {
		return nil
	}
	citations := make([]Citation, 0, len(urls))
	for _, u := range urls {
		citations = append(citations, Citation{URL: u})
	}
	return citations
}
