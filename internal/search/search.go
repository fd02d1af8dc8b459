package search

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/contentqc/internal/cache"
	"github.com/ppiankov/contentqc/internal/model"
	"github.com/ppiankov/contentqc/internal/worker"
)

// SnippetLimit is the maximum snippet length kept per result, in characters
const SnippetLimit = 800

// Searcher finds documents relevant to a query
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]model.Document, error)
}

// New builds the searcher selected by configuration. An empty provider
// disables search and returns nil. When c is non-nil results are cached for ttl.
func New(cfg model.SearchConfig, httpCfg model.HTTPConfig, limiter *worker.Limiter, c cache.Cache, ttl time.Duration) (Searcher, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "tavily":
		client, err := NewTavilyClient(cfg, httpCfg, limiter)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return client, nil
		}
		return NewCachedSearcher(client, c, ttl), nil
	default:
		return nil, fmt.Errorf("unknown search provider: %s (supported: tavily)", cfg.Provider)
	}
}
