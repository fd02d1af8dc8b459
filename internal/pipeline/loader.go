package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/contentqc/internal/extract"
	"github.com/ppiankov/contentqc/internal/model"
	"github.com/ppiankov/contentqc/internal/util"
)

// DefaultMaxBytes caps how much of a file or page is read
const DefaultMaxBytes = 5 << 20

const maxFetchAttempts = 3

var fetchSleepFunc = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Loader turns a file path, URL or "-" (stdin) into checkable Input
type Loader struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	stdin      io.Reader
}

// NewLoader creates a loader using the shared outbound HTTP settings
func NewLoader(timeout time.Duration, httpCfg model.HTTPConfig, maxBytes int64) *Loader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	client := util.NewHTTPClient(timeout, httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy)
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 3 {
			return fmt.Errorf("stopped after 3 redirects")
		}
		return nil
	}
	userAgent := httpCfg.UserAgent
	if userAgent == "" {
		userAgent = model.DefaultConfig().HTTP.UserAgent
	}
	return &Loader{
		httpClient: client,
		userAgent:  userAgent,
		maxBytes:   maxBytes,
		stdin:      os.Stdin,
	}
}

// Load reads source. HTML is reduced to its visible text; the page title,
// publication time and outbound links are kept when present.
func (l *Loader) Load(ctx context.Context, source string) (Input, error) {
	switch {
	case source == "-":
		body, err := io.ReadAll(io.LimitReader(l.stdin, l.maxBytes))
		if err != nil {
			return Input{}, fmt.Errorf("read stdin: %w", err)
		}
		return fromContent(string(body), "", "stdin")

	case strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://"):
		return l.fetch(ctx, source)

	default:
		f, err := os.Open(source)
		if err != nil {
			return Input{}, fmt.Errorf("open: %w", err)
		}
		defer func() { _ = f.Close() }()

		body, err := io.ReadAll(io.LimitReader(f, l.maxBytes))
		if err != nil {
			return Input{}, fmt.Errorf("read %s: %w", source, err)
		}
		return fromContent(string(body), "", source)
	}
}

func (l *Loader) fetch(ctx context.Context, rawURL string) (Input, error) {
	var lastErr error
	for attempt := 0; attempt < maxFetchAttempts; attempt++ {
		if attempt > 0 {
			if err := fetchSleepFunc(ctx, time.Duration(attempt)*time.Second); err != nil {
				return Input{}, err
			}
		}

		in, retry, err := l.fetchOnce(ctx, rawURL)
		if err == nil {
			return in, nil
		}
		lastErr = err
		if !retry {
			break
		}
	}
	return Input{}, lastErr
}

func (l *Loader) fetchOnce(ctx context.Context, rawURL string) (Input, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Input{}, false, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", l.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return Input{}, ctx.Err() == nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return Input{}, retry, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes))
	if err != nil {
		return Input{}, false, fmt.Errorf("read body: %w", err)
	}

	finalURL := resp.Request.URL.String()
	in, err := fromContent(string(body), finalURL, finalURL)
	if err != nil {
		return Input{}, false, err
	}
	if in.PublishedAt == nil {
		if t, err := http.ParseTime(resp.Header.Get("Last-Modified")); err == nil {
			t = t.UTC()
			in.PublishedAt = &t
		}
	}
	return in, false, nil
}

// fromContent builds Input from raw text or HTML. name is used to derive a
// topic when the content carries none.
func fromContent(content, baseURL, name string) (Input, error) {
	in := Input{Source: name}

	if extract.LooksLikeHTML(content) {
		page, err := extract.ParsePage(content, baseURL)
		if err != nil {
			return Input{}, fmt.Errorf("parse html: %w", err)
		}
		in.Topic = page.Title
		in.Content = page.Text
		in.PublishedAt = page.PublishedAt
		in.Links = page.Links
	} else {
		in.Content = strings.TrimSpace(content)
		in.Topic = firstHeading(in.Content)
	}

	if in.Topic == "" {
		in.Topic = extractSubject(name)
	}
	return in, nil
}

// firstHeading returns the text of the first Markdown heading, if any
func firstHeading(content string) string {
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "#") {
			return strings.TrimSpace(strings.TrimLeft(line, "#"))
		}
	}
	return ""
}

// extractSubject extracts a human-readable subject from a URL or file path
func extractSubject(name string) string {
	last := name
	if parsed, err := url.Parse(name); err == nil && parsed.Host != "" {
		path := strings.Trim(parsed.Path, "/")
		if path == "" {
			return parsed.Host
		}
		segments := strings.Split(path, "/")
		last = segments[len(segments)-1]
	} else {
		last = filepath.Base(name)
	}

	// De-slugify: replace underscores and hyphens with spaces
	last = strings.ReplaceAll(last, "_", " ")
	last = strings.ReplaceAll(last, "-", " ")

	// Remove file extensions
	if idx := strings.LastIndex(last, "."); idx > 0 {
		last = last[:idx]
	}

	return last
}
