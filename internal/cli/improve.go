package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	improveTopic     string
	improvePublished string
	improveTimeout   time.Duration
	improveWrite     string
)

// improveCmd represents the improve command
var improveCmd = &cobra.Command{
	Use:   "improve <file|url|->",
	Short: "Rewrite a draft using its quality report",
	Long: `Improve checks a draft, then asks the generation provider to rewrite it
using the report's findings and suggestions. The draft is not rescored; use
"check --refine" for the improve-and-rescore loop.

Example:
  contentqc improve draft.md --write draft.improved.md
  contentqc improve draft.md --format markdown`,
	Args: cobra.ExactArgs(1),
	RunE: runImprove,
}

func init() {
	rootCmd.AddCommand(improveCmd)

	improveCmd.Flags().StringVar(&improveTopic, "topic", "", "topic of the draft (default: title, first heading or file name)")
	improveCmd.Flags().StringVar(&improvePublished, "published", "", "publication time (RFC 3339 or YYYY-MM-DD)")
	improveCmd.Flags().DurationVar(&improveTimeout, "timeout", 5*time.Minute, "overall timeout")
	improveCmd.Flags().StringVarP(&improveWrite, "write", "w", "", "write the improved content to a file")
}

func runImprove(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), improveTimeout)
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

	in, err := s.load(ctx, args[0], improveTopic, improvePublished)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Checking: %s\n", in.Topic)
	}
	report := s.checker.ComprehensiveCheck(ctx, in)

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Overall score: %.1f (%s)\n", report.OverallScore, report.Tier)
		fmt.Fprintf(os.Stderr, "Improving...\n")
	}
	result := s.checker.Improve(ctx, in, report)

	if err := renderer.Improvement(os.Stdout, result); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	if !result.Success {
		return fmt.Errorf("improvement failed (%s): %s", result.Outcome, result.Reasoning)
	}

	if improveWrite != "" {
		if err := os.WriteFile(improveWrite, []byte(result.ImprovedContent), 0o644); err != nil {
			return fmt.Errorf("write improved content: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote improved content: %s\n", improveWrite)
	}

	return nil
}
