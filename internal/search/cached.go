package search

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/ppiankov/contentqc/internal/cache"
	"github.com/ppiankov/contentqc/internal/model"
)

// CachedSearcher memoizes another Searcher's results by query and limit
type CachedSearcher struct {
	next  Searcher
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedSearcher wraps next with a result cache
func NewCachedSearcher(next Searcher, c cache.Cache, ttl time.Duration) *CachedSearcher {
	return &CachedSearcher{next: next, cache: c, ttl: ttl}
}

// Search serves from cache when possible. Errors and empty results are not cached.
func (s *CachedSearcher) Search(ctx context.Context, query string, maxResults int) ([]model.Document, error) {
	key := cache.CacheKey("search", query, strconv.Itoa(maxResults))

	if data, ok := s.cache.Get(ctx, key); ok {
		var docs []model.Document
		if err := json.Unmarshal(data, &docs); err == nil {
			return docs, nil
		}
	}

	docs, err := s.next.Search(ctx, query, maxResults)
	if err != nil || len(docs) == 0 {
		return docs, err
	}

	if data, err := json.Marshal(docs); err == nil {
		// Cache write failures only cost a future lookup
		_ = s.cache.Set(ctx, key, data, s.ttl)
	}

	return docs, nil
}
