// Package validate checks that cited sources are reachable and classifies
// their authority. Results are informational and never change scores.
package validate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"syscall"
	"time"

	"github.com/ppiankov/contentqc/internal/logging"
	"github.com/ppiankov/contentqc/internal/model"
	"github.com/ppiankov/contentqc/internal/util"
	"github.com/ppiankov/contentqc/internal/worker"
)

// sleepFunc waits between retries (injectable for tests)
var sleepFunc = func(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// Validator checks source URLs concurrently
type Validator struct {
	httpClient    *http.Client
	robots        *util.RobotsChecker
	limiter       *worker.Limiter
	authority     *AuthorityClassifier
	userAgent     string
	maxWorkers    int
	maxRetries    int
	maxSources    int
	respectRobots bool
	logger        *slog.Logger

	delayMu      sync.Mutex
	delayApplied map[string]bool
}

// NewValidator creates a validator. limiter may be nil.
func NewValidator(cfg model.SourcesConfig, httpCfg model.HTTPConfig, authority model.AuthorityConfig, limiter *worker.Limiter, logger *slog.Logger) *Validator {
	maxWorkers := cfg.Concurrency
	if maxWorkers <= 0 {
		maxWorkers = 5
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	client := util.NewHTTPClient(timeout, httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy)
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 3 {
			return fmt.Errorf("stopped after 3 redirects")
		}
		return nil
	}

	return &Validator{
		httpClient:    client,
		robots:        util.NewRobotsChecker(httpCfg.UserAgent, client),
		limiter:       limiter,
		authority:     NewAuthorityClassifier(authority),
		userAgent:     httpCfg.UserAgent,
		maxWorkers:    maxWorkers,
		maxRetries:    maxRetries,
		maxSources:    cfg.MaxSources,
		respectRobots: cfg.RespectRobots,
		logger:        logging.OrDiscard(logger).With("component", "validate"),
		delayApplied:  make(map[string]bool),
	}
}

// Validate checks each distinct http(s) URL, in input order. At most
// MaxSources URLs are checked when a limit is configured.
func (v *Validator) Validate(ctx context.Context, urls []string) []model.SourceCheck {
	urls = distinctHTTP(urls)
	if v.maxSources > 0 && len(urls) > v.maxSources {
		urls = urls[:v.maxSources]
	}
	if len(urls) == 0 {
		return []model.SourceCheck{}
	}

	results := make([]model.SourceCheck, len(urls))
	var wg sync.WaitGroup

	semaphore := make(chan struct{}, v.maxWorkers)

	for i, u := range urls {
		wg.Add(1)
		go func(idx int, rawURL string) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				results[idx] = v.newCheck(rawURL)
				results[idx].Error = "context cancelled"
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			results[idx] = v.checkWithRetry(ctx, rawURL)
		}(i, u)
	}

	wg.Wait()

	accessible := 0
	for _, r := range results {
		if r.Accessible {
			accessible++
		}
	}
	v.logger.Info("sources validated", "total", len(results), "accessible", accessible)

	return results
}

func (v *Validator) newCheck(rawURL string) model.SourceCheck {
	check := model.SourceCheck{
		URL:           rawURL,
		RobotsAllowed: true,
		Authority:     v.authority.Classify(rawURL),
	}
	if parsed, err := url.Parse(rawURL); err == nil {
		check.Host = parsed.Host
	}
	return check
}

func (v *Validator) checkWithRetry(ctx context.Context, rawURL string) model.SourceCheck {
	if v.respectRobots {
		allowed, delay, err := v.robots.CanFetch(ctx, rawURL)
		if err == nil && !allowed {
			check := v.newCheck(rawURL)
			check.RobotsAllowed = false
			check.Error = "disallowed by robots.txt"
			return check
		}
		v.applyCrawlDelay(rawURL, delay)
	}

	var check model.SourceCheck
	for attempt := 0; attempt <= v.maxRetries; attempt++ {
		var err error
		check, err = v.checkOnce(ctx, rawURL)
		if !isRetryable(check, err) || attempt == v.maxRetries {
			break
		}
		backoff := time.Duration(1<<uint(attempt)) * time.Second
		v.logger.Debug("retrying source", "url", rawURL, "attempt", attempt+1, "backoff", backoff)
		sleepFunc(ctx, backoff)
	}
	return check
}

// applyCrawlDelay slows the limiter for a host the first time robots.txt asks for it
func (v *Validator) applyCrawlDelay(rawURL string, delay time.Duration) {
	if v.limiter == nil || delay <= 0 {
		return
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return
	}

	v.delayMu.Lock()
	defer v.delayMu.Unlock()
	if v.delayApplied[parsed.Host] {
		return
	}
	v.delayApplied[parsed.Host] = true
	v.limiter.SetHostRate(parsed.Host, 1/delay.Seconds(), 1)
}

// checkOnce sends a HEAD request, falling back to GET for servers that reject HEAD
func (v *Validator) checkOnce(ctx context.Context, rawURL string) (model.SourceCheck, error) {
	check := v.newCheck(rawURL)

	if v.limiter != nil {
		if err := v.limiter.Wait(ctx, rawURL); err != nil {
			check.Error = fmt.Sprintf("rate limit wait: %v", err)
			return check, err
		}
	}

	resp, err := v.do(ctx, http.MethodHead, rawURL)
	if err == nil && (resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotImplemented) {
		_ = resp.Body.Close()
		resp, err = v.do(ctx, http.MethodGet, rawURL)
	}
	if err != nil {
		check.Error = fmt.Sprintf("request failed: %v", err)
		check.IsDead = true
		return check, err
	}
	defer func() { _ = resp.Body.Close() }()

	check.StatusCode = resp.StatusCode
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		check.Accessible = true
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		check.IsDead = true
	}

	if final := resp.Request.URL.String(); final != rawURL {
		check.RedirectURL = final
	}

	if lastModified := resp.Header.Get("Last-Modified"); lastModified != "" {
		if t, err := http.ParseTime(lastModified); err == nil {
			t = t.UTC()
			check.LastModified = &t
		}
	}

	return check, nil
}

func (v *Validator) do(ctx context.Context, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if v.userAgent != "" {
		req.Header.Set("User-Agent", v.userAgent)
	}
	return v.httpClient.Do(req)
}

// isRetryable reports transient failures: 5xx, 429, timeouts and refused or reset connections
func isRetryable(check model.SourceCheck, err error) bool {
	if err == nil {
		return check.StatusCode == http.StatusTooManyRequests || (check.StatusCode >= 500 && check.StatusCode < 600)
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET)
}

func distinctHTTP(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		parsed, err := url.Parse(u)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			continue
		}
		if seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}
