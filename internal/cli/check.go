package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/contentqc/internal/model"
	"github.com/ppiankov/contentqc/internal/pipeline"
)

const loadTimeout = 30 * time.Second

var (
	checkTopic     string
	checkPublished string
	checkTimeout   time.Duration
	checkOut       string
	checkStrict    bool
	checkRefine    bool
	checkIters     int
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <file|url|->",
	Short: "Check the quality of a draft",
	Long: `Check scores a draft for truthfulness, freshness and consistency and
reports whether it is fit to publish.

The draft can be a Markdown or text file, an HTML page (file or URL), or
"-" to read from stdin. HTML is reduced to its visible text; the page title
and publication time are used when present.

Example:
  contentqc check draft.md --topic "DeepSeek R1 release"
  contentqc check https://example.com/news/article --format json
  cat draft.md | contentqc check - --published 2025-01-20 --refine`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkTopic, "topic", "", "topic of the draft (default: title, first heading or file name)")
	checkCmd.Flags().StringVar(&checkPublished, "published", "", "publication time (RFC 3339 or YYYY-MM-DD)")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 5*time.Minute, "overall check timeout")
	checkCmd.Flags().StringVarP(&checkOut, "output", "o", "", "write the report to a file instead of stdout")
	checkCmd.Flags().BoolVar(&checkStrict, "strict", false, "exit with an error when the draft does not pass")
	checkCmd.Flags().BoolVar(&checkRefine, "refine", false, "rewrite and rescore failing drafts")
	checkCmd.Flags().IntVar(&checkIters, "iterations", 0, "maximum refinement iterations (default from config)")
}

// session bundles what every command needs to run checks
type session struct {
	cfg       model.Config
	checker   *pipeline.Checker
	loader    *pipeline.Loader
	resources *pipeline.Resources
	logger    *slog.Logger
}

func newSession() (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger := newLogger()
	resources := pipeline.NewResources(cfg, logger)

	if verbose {
		fmt.Fprintf(os.Stderr, "Generation:  %s\n", providerName(resources.Generator != nil, cfg.LLM.Provider))
		fmt.Fprintf(os.Stderr, "Grounded:    %s\n", providerName(resources.Grounded != nil, cfg.Grounded.Provider))
		fmt.Fprintf(os.Stderr, "Search:      %s\n", providerName(resources.Searcher != nil, cfg.Search.Provider))
		fmt.Fprintln(os.Stderr)
	}

	return &session{
		cfg:       cfg,
		checker:   pipeline.New(cfg, resources.Collaborators, logger),
		loader:    pipeline.NewLoader(loadTimeout, cfg.HTTP, 0),
		resources: resources,
		logger:    logger,
	}, nil
}

func (s *session) Close() {
	if err := s.resources.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

// load reads a source and applies command-line overrides
func (s *session) load(ctx context.Context, source, topic, published string) (pipeline.Input, error) {
	in, err := s.loader.Load(ctx, source)
	if err != nil {
		return in, fmt.Errorf("load %s: %w", source, err)
	}
	if topic != "" {
		in.Topic = topic
	}
	if published != "" {
		t, err := parsePublished(published)
		if err != nil {
			return in, err
		}
		in.PublishedAt = &t
	}
	return in, nil
}

func providerName(enabled bool, name string) string {
	switch {
	case name == "":
		return "disabled"
	case !enabled:
		return name + " (failed to initialize)"
	default:
		return name
	}
}

func parsePublished(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid publication time %q (use RFC 3339 or YYYY-MM-DD)", s)
}

// openOutput returns stdout, or a created file when path is set
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func runCheck(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
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

	in, err := s.load(ctx, args[0], checkTopic, checkPublished)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Checking: %s (%d chars)\n", in.Topic, len(in.Content))
	}

	out, err := openOutput(checkOut)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close output: %w", closeErr)
		}
	}()

	var final model.QualityReport
	if checkRefine || s.cfg.Improve.Enabled {
		result := s.checker.Refine(ctx, in, checkIters)
		final = result.Final
		if err := renderer.Refinement(out, result); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
	} else {
		final = s.checker.ComprehensiveCheck(ctx, in)
		if err := renderer.Report(out, final); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
	}

	if checkOut != "" {
		fmt.Fprintf(os.Stderr, "✓ Wrote report: %s\n", checkOut)
	}

	if checkStrict && !final.IsPass {
		return fmt.Errorf("draft did not pass: overall %.1f (%s)", final.OverallScore, final.Tier)
	}
	return nil
}
