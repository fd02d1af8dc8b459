package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/contentqc/internal/model"
)

// mockChecker passes sources containing "good" and fails the rest
func mockChecker(shouldError bool) CheckFunc {
	return func(ctx context.Context, source string) (*model.QualityReport, error) {
		time.Sleep(10 * time.Millisecond) // Simulate work
		if shouldError {
			return nil, errors.New("check error")
		}
		score := 40.0
		if strings.Contains(source, "good") {
			score = 90
		}
		return &model.QualityReport{Topic: source, OverallScore: score, IsPass: score >= 70}, nil
	}
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBatchProcessor_ProcessSources(t *testing.T) {
	processor := NewBatchProcessor(mockChecker(false), 2)

	sources := []string{"https://example.com/good", "drafts/bad.md", "https://example.com/good-2"}

	var calls []int
	processor.OnResult = func(done, total int, r CheckResult) {
		if total != 3 {
			t.Errorf("expected total 3, got %d", total)
		}
		calls = append(calls, done)
	}

	results := processor.ProcessSources(context.Background(), sources)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, res := range results {
		if res.Source != sources[i] {
			t.Errorf("expected source %s at index %d, got %s", sources[i], i, res.Source)
		}
		if res.Error != nil || res.Report == nil {
			t.Errorf("unexpected result for %s: %v", res.Source, res.Error)
		}
	}
	if len(calls) != 3 || calls[2] != 3 {
		t.Errorf("expected progress 1..3, got %v", calls)
	}

	summary := Summarize(results)
	if summary.Passed != 2 || summary.Failed != 1 || summary.Errors != 0 {
		t.Errorf("unexpected summary %+v", summary)
	}
	if summary.MeanScore != (90+40+90)/3.0 {
		t.Errorf("unexpected mean score %v", summary.MeanScore)
	}
}

func TestBatchProcessor_ProcessSources_Error(t *testing.T) {
	processor := NewBatchProcessor(mockChecker(true), 2)

	results := processor.ProcessSources(context.Background(), []string{"http://example.com"})

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Error == nil {
		t.Error("expected error, got nil")
	}
	if results[0].Report != nil {
		t.Error("expected nil report on error")
	}

	summary := Summarize(results)
	if summary.Errors != 1 || summary.MeanScore != 0 {
		t.Errorf("unexpected summary %+v", summary)
	}
}

func TestBatchProcessor_ProcessSources_Empty(t *testing.T) {
	processor := NewBatchProcessor(mockChecker(false), 2)

	results := processor.ProcessSources(context.Background(), []string{})
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestReadSourcesFromFile(t *testing.T) {
	path := writeTemp(t, `http://example.com
# comment
drafts/article.md

http://bing.com
http://example.com`)

	sources, err := ReadSourcesFromFile(path)
	if err != nil {
		t.Fatalf("ReadSourcesFromFile failed: %v", err)
	}

	expected := []string{"http://example.com", "drafts/article.md", "http://bing.com"}
	if len(sources) != len(expected) {
		t.Fatalf("expected %d sources, got %d", len(expected), len(sources))
	}
	for i, s := range sources {
		if s != expected[i] {
			t.Errorf("expected source %s at index %d, got %s", expected[i], i, s)
		}
	}
}

func TestReadSourcesFromFile_NonExistent(t *testing.T) {
	_, err := ReadSourcesFromFile("non_existent_file.txt")
	if err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	path := writeTemp(t, "http://example.com\nhttps://google.com\n# comment\n\nhttp://bing.com\n")

	processor := NewBatchProcessor(mockChecker(false), 2)
	results, err := processor.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessFile_NonExistent(t *testing.T) {
	processor := NewBatchProcessor(mockChecker(false), 2)

	_, err := processor.ProcessFile(context.Background(), "no_such_file.txt")
	if err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestBatchProcessor_ProcessFile_Empty(t *testing.T) {
	path := writeTemp(t, "")

	processor := NewBatchProcessor(mockChecker(false), 2)
	results, err := processor.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected 0 results for empty file, got %d", len(results))
	}
}
