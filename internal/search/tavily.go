package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/ppiankov/contentqc/internal/extract"
	"github.com/ppiankov/contentqc/internal/model"
	"github.com/ppiankov/contentqc/internal/util"
	"github.com/ppiankov/contentqc/internal/worker"
)

// TavilyURL is the default Tavily search endpoint
const TavilyURL = "https://api.tavily.com/search"

// TavilyClient searches the web through the Tavily API
type TavilyClient struct {
	apiKey     string
	endpoint   string
	depth      string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *worker.Limiter
	sanitizer  *bluemonday.Policy
}

// NewTavilyClient creates a Tavily client. limiter may be nil.
func NewTavilyClient(cfg model.SearchConfig, httpCfg model.HTTPConfig, limiter *worker.Limiter) (*TavilyClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("tavily API key is required")
	}

	endpoint := cfg.BaseURL
	if endpoint == "" {
		endpoint = TavilyURL
	}

	depth := cfg.Depth
	if depth == "" {
		depth = "advanced"
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &TavilyClient{
		apiKey:     cfg.APIKey,
		endpoint:   endpoint,
		depth:      depth,
		timeout:    timeout,
		httpClient: util.NewHTTPClient(0, httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy),
		limiter:    limiter,
		sanitizer:  bluemonday.StrictPolicy(),
	}, nil
}

type tavilyRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth"`
	MaxResults  int    `json:"max_results"`
}

type tavilyResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title         string `json:"title"`
		URL           string `json:"url"`
		Content       string `json:"content"`
		PublishedDate string `json:"published_date"`
	} `json:"results"`
}

// Search posts the query to Tavily and returns cleaned results
func (c *TavilyClient) Search(ctx context.Context, query string, maxResults int) ([]model.Document, error) {
	if maxResults <= 0 {
		maxResults = 5
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, c.endpoint); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	body, err := json.Marshal(tavilyRequest{
		APIKey:      c.apiKey,
		Query:       query,
		SearchDepth: c.depth,
		MaxResults:  maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily API error (status %d): %s", resp.StatusCode, extract.Truncate(string(respBody), 200))
	}

	var tr tavilyResponse
	if err := json.Unmarshal(respBody, &tr); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	docs := make([]model.Document, 0, len(tr.Results))
	for _, r := range tr.Results {
		title := c.clean(r.Title)
		if title == "" {
			title = "Untitled"
		}
		docs = append(docs, model.Document{
			Title:         title,
			Snippet:       extract.Truncate(c.clean(r.Content), SnippetLimit),
			URL:           r.URL,
			PublishedDate: r.PublishedDate,
			Source:        "tavily",
		})
	}

	return docs, nil
}

// clean strips markup that search providers sometimes leave in page text
func (c *TavilyClient) clean(s string) string {
	s = html.UnescapeString(c.sanitizer.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}
