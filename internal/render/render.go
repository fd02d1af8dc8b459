// Package render writes quality reports as JSON, YAML, Markdown or a styled
// terminal summary.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/contentqc/internal/model"
	"github.com/ppiankov/contentqc/internal/worker"
)

// Format selects the output encoding
type Format string

const (
	FormatSummary  Format = "summary"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a format name ("md" and "yml" are accepted aliases)
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "summary", "text":
		return FormatSummary, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown output format: %s (supported: summary, json, yaml, markdown)", s)
	}
}

// BatchItem is one source in a batch document
type BatchItem struct {
	Source string               `json:"source" yaml:"source"`
	Report *model.QualityReport `json:"report,omitempty" yaml:"report,omitempty"`
	Error  string               `json:"error,omitempty" yaml:"error,omitempty"`
}

// BatchDocument is the serialized form of a batch run
type BatchDocument struct {
	Summary worker.Summary `json:"summary" yaml:"summary"`
	Results []BatchItem    `json:"results" yaml:"results"`
}

// NewBatchDocument converts batch results for serialization
func NewBatchDocument(results []worker.CheckResult) BatchDocument {
	doc := BatchDocument{
		Summary: worker.Summarize(results),
		Results: make([]BatchItem, 0, len(results)),
	}
	for _, r := range results {
		item := BatchItem{Source: r.Source, Report: r.Report}
		if r.Error != nil {
			item.Error = r.Error.Error()
		}
		doc.Results = append(doc.Results, item)
	}
	return doc
}

// Renderer writes values in one format
type Renderer struct {
	format Format
	color  bool
}

// New creates a renderer. color only affects the summary format.
func New(format Format, color bool) *Renderer {
	if format == "" {
		format = FormatSummary
	}
	return &Renderer{format: format, color: color}
}

// Report writes a single quality report
func (r *Renderer) Report(w io.Writer, report model.QualityReport) error {
	switch r.format {
	case FormatJSON:
		return JSON(w, report)
	case FormatYAML:
		return YAML(w, report)
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(report))
		return err
	default:
		_, err := io.WriteString(w, newStyles(r.color).summary(report))
		return err
	}
}

// Improvement writes an improvement result
func (r *Renderer) Improvement(w io.Writer, result model.ImprovementResult) error {
	switch r.format {
	case FormatJSON:
		return JSON(w, result)
	case FormatYAML:
		return YAML(w, result)
	case FormatMarkdown:
		_, err := io.WriteString(w, ImprovementMarkdown(result))
		return err
	default:
		_, err := io.WriteString(w, newStyles(r.color).improvement(result))
		return err
	}
}

// Refinement writes the history of an improve-and-rescore loop
func (r *Renderer) Refinement(w io.Writer, result model.RefinementResult) error {
	switch r.format {
	case FormatJSON:
		return JSON(w, result)
	case FormatYAML:
		return YAML(w, result)
	case FormatMarkdown:
		_, err := io.WriteString(w, RefinementMarkdown(result))
		return err
	default:
		_, err := io.WriteString(w, newStyles(r.color).refinement(result))
		return err
	}
}

// Batch writes the results of a batch run
func (r *Renderer) Batch(w io.Writer, results []worker.CheckResult) error {
	doc := NewBatchDocument(results)
	switch r.format {
	case FormatJSON:
		return JSON(w, doc)
	case FormatYAML:
		return YAML(w, doc)
	case FormatMarkdown:
		_, err := io.WriteString(w, BatchMarkdown(doc))
		return err
	default:
		_, err := io.WriteString(w, newStyles(r.color).batch(doc))
		return err
	}
}

// JSON writes v as indented JSON
func JSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// YAML writes v as YAML
func YAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
