package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/contentqc/internal/model"
	"github.com/ppiankov/contentqc/internal/render"
	"github.com/ppiankov/contentqc/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	checkEach    time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Check multiple drafts listed in a file in parallel",
	Long: `Batch checks many drafts concurrently:
- Read sources from the input file (one file path or URL per line, # comments)
- Check sources in parallel with a configurable worker count
- Write a JSON and a Markdown report per source
- Print a summary of all results

Example:
  contentqc batch drafts.txt
  contentqc batch drafts.txt --concurrency 8 --output-dir ./reports
  contentqc batch drafts.txt --format json > batch.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "", "write a JSON and Markdown report per source to this directory")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().DurationVar(&checkEach, "check-timeout", 5*time.Minute, "timeout for each source")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	renderer, err := newRenderer(s.cfg)
	if err != nil {
		return err
	}

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	fmt.Fprintf(os.Stderr, "Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "Workers:      %d\n", concurrency)
	if outputDir != "" {
		fmt.Fprintf(os.Stderr, "Output dir:   %s\n", outputDir)
	}
	fmt.Fprintln(os.Stderr)

	check := worker.CheckFunc(func(ctx context.Context, source string) (*model.QualityReport, error) {
		ctx, cancel := context.WithTimeout(ctx, checkEach)
		defer cancel()

		in, err := s.load(ctx, source, "", "")
		if err != nil {
			return nil, err
		}
		report := s.checker.ComprehensiveCheck(ctx, in)
		if outputDir != "" {
			if err := writeReportFiles(outputDir, source, report); err != nil {
				return &report, err
			}
		}
		return &report, nil
	})

	processor := worker.NewBatchProcessor(check, concurrency)
	processor.OnResult = func(done, total int, r worker.CheckResult) {
		if r.Error != nil {
			fmt.Fprintf(os.Stderr, "[%d/%d] ✗ %s: %v\n", done, total, r.Source, r.Error)
			return
		}
		fmt.Fprintf(os.Stderr, "[%d/%d] ✓ %s (%.1f, %s)\n", done, total, r.Source, r.Report.OverallScore, r.Report.Tier)
	}

	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	fmt.Fprintln(os.Stderr)
	if err := renderer.Batch(os.Stdout, results); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	return nil
}

func writeReportFiles(dir, source string, report model.QualityReport) error {
	base := filepath.Join(dir, sanitizeFilename(source))

	jsonFile, err := os.Create(base + ".json")
	if err != nil {
		return fmt.Errorf("write JSON: %w", err)
	}
	err = render.JSON(jsonFile, report)
	if closeErr := jsonFile.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write JSON: %w", err)
	}

	if err := os.WriteFile(base+".md", []byte(render.Markdown(report)), 0o644); err != nil {
		return fmt.Errorf("write Markdown: %w", err)
	}
	return nil
}

var filenameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	" ", "-",
)

// sanitizeFilename turns a source path or URL into a safe file name
func sanitizeFilename(s string) string {
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimSuffix(s, filepath.Ext(s))
	s = strings.Trim(filenameReplacer.Replace(s), "_.-")
	if s == "" {
		s = "report"
	}

	// Limit length
	if len(s) > 100 {
		s = s[:100]
	}

	return s
}
