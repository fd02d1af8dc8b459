package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/ppiankov/contentqc/internal/model"
)

// Checker checks one content source (file path or URL)
type Checker interface {
	CheckSource(ctx context.Context, source string) (*model.QualityReport, error)
}

// CheckFunc adapts a function to the Checker interface
type CheckFunc func(ctx context.Context, source string) (*model.QualityReport, error)

// CheckSource calls f(ctx, source)
func (f CheckFunc) CheckSource(ctx context.Context, source string) (*model.QualityReport, error) {
	return f(ctx, source)
}

// CheckResult is the outcome of checking one source
type CheckResult struct {
	Source string
	Report *model.QualityReport
	Error  error
}

// Summary aggregates a batch run
type Summary struct {
	Total     int     `json:"total" yaml:"total"`
	Passed    int     `json:"passed" yaml:"passed"`
	Failed    int     `json:"failed" yaml:"failed"`
	Errors    int     `json:"errors" yaml:"errors"`
	MeanScore float64 `json:"mean_score" yaml:"mean_score"` // Over checked sources only
}

// Summarize counts passing, failing and errored results
func Summarize(results []CheckResult) Summary {
	s := Summary{Total: len(results)}
	var total float64
	for _, r := range results {
		switch {
		case r.Error != nil || r.Report == nil:
			s.Errors++
			continue
		case r.Report.IsPass:
			s.Passed++
		default:
			s.Failed++
		}
		total += r.Report.OverallScore
	}
	if checked := s.Passed + s.Failed; checked > 0 {
		s.MeanScore = total / float64(checked)
	}
	return s
}

// BatchProcessor checks multiple sources concurrently
type BatchProcessor struct {
	checker     Checker
	concurrency int

	// OnResult, if set, is called once per finished source
	OnResult func(done, total int, r CheckResult)
	mu       sync.Mutex
	finished int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(checker Checker, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		checker:     checker,
		concurrency: concurrency,
	}
}

// ProcessSources checks sources concurrently. Results are returned in input order.
func (b *BatchProcessor) ProcessSources(ctx context.Context, sources []string) []CheckResult {
	if len(sources) == 0 {
		return []CheckResult{}
	}

	b.mu.Lock()
	b.finished = 0
	b.mu.Unlock()

	pool := NewPool[CheckResult](ctx, b.concurrency)
	pool.Start()

	for _, source := range sources {
		source := source
		pool.Submit(func(ctx context.Context) CheckResult {
			report, err := b.checker.CheckSource(ctx, source)
			r := CheckResult{Source: source, Report: report, Error: err}
			b.report(len(sources), r)
			return r
		})
	}

	return pool.Wait()
}

func (b *BatchProcessor) report(total int, r CheckResult) {
	if b.OnResult == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.finished++
	b.OnResult(b.finished, total, r)
}

// ProcessFile reads sources from a file and checks them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]CheckResult, error) {
	sources, err := ReadSourcesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}

	return b.ProcessSources(ctx, sources), nil
}

// ReadSourcesFromFile reads sources (URLs or file paths) from a file, one per line
func ReadSourcesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var sources []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			sources = append(sources, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return sources, nil
}
