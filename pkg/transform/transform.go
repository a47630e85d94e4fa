// Package transform orchestrates the full pipeline:
// parse → validate → analyze → detect patterns → generate Jsonnet.
// Each invocation operates on its own immutable input and shares no state
// with concurrent invocations.
package transform

import (
	"context"
	"fmt"
	"os"

	"github.com/superlinear-space/jsnonet-transformer/pkg/extractor"
	"github.com/superlinear-space/jsnonet-transformer/pkg/generator"
	"github.com/superlinear-space/jsnonet-transformer/pkg/patterns"
)

// Options configures one transform invocation.
type Options struct {
	// Validate requires a passing structural validation before analysis.
	// When false, validation messages become warnings.
	Validate bool
	// MinPatternOccurrences is the extraction threshold; must be >= 1.
	MinPatternOccurrences int
	// ExtractRepeated enables pattern detection entirely; when false every
	// value is emitted inline.
	ExtractRepeated bool
	// CreateTemplates permits parameterized template extraction; when
	// false only constant bindings are produced.
	CreateTemplates bool
	AddComments     bool
	IncludeImports  bool
	IndentSize      int
	MaxLineLength   int
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		Validate:              true,
		MinPatternOccurrences: 2,
		ExtractRepeated:       true,
		CreateTemplates:       true,
		AddComments:           true,
		IncludeImports:        false,
		IndentSize:            4,
		MaxLineLength:         120,
	}
}

// Stats summarizes the analyzed dashboard for reports.
type Stats struct {
	Title        string                `json:"title"`
	UID          string                `json:"uid,omitempty"`
	TotalPanels  int                   `json:"totalPanels"`
	TotalTargets int                   `json:"totalTargets"`
	PanelTypes   []extractor.TypeCount `json:"panelTypes,omitempty"`
	Datasources  []string              `json:"datasources,omitempty"`
	Extractions  int                   `json:"extractions"`
	Suggestions  []string              `json:"suggestions,omitempty"`
}

// Result is the structured outcome of one transform. Errors is populated
// only on failure; Warnings are always non-fatal.
type Result struct {
	Success  bool     `json:"success"`
	Jsonnet  string   `json:"jsonnet,omitempty"`
	Stats    *Stats   `json:"stats,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Errors   []string `json:"errors,omitempty"`

	// Record and Plan expose the intermediate pipeline products to callers
	// that want more than the generated text.
	Record *extractor.DashboardRecord `json:"-"`
	Plan   *patterns.ExtractionPlan   `json:"-"`
}

func failure(warnings []string, errs ...error) *Result {
	r := &Result{Success: false, Warnings: warnings}
	for _, err := range errs {
		r.Errors = append(r.Errors, err.Error())
	}
	return r
}

// Transform converts raw dashboard JSON into Jsonnet source. Every failure
// path resolves to a populated error list; nothing panics out.
func Transform(ctx context.Context, data []byte, opts Options) *Result {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := validateOptions(opts); err != nil {
		return failure(nil, err)
	}

	tree, err := extractor.ParseTree(data)
	if err != nil {
		return failure(nil, err)
	}

	var warnings []string
	if msgs := extractor.Validate(tree); len(msgs) > 0 {
		if opts.Validate {
			r := &Result{Success: false}
			for _, m := range msgs {
				r.Errors = append(r.Errors, "validation failed: "+m)
			}
			return r
		}
		for _, m := range msgs {
			warnings = append(warnings, "validation warning: "+m)
		}
	}

	record, err := extractor.Analyze(tree)
	if err != nil {
		return failure(warnings, err)
	}

	plan := &patterns.ExtractionPlan{}
	if opts.ExtractRepeated {
		detector := &patterns.Detector{
			MinOccurrences:  opts.MinPatternOccurrences,
			CreateTemplates: opts.CreateTemplates,
		}
		plan, err = detector.Detect(ctx, record)
		if err != nil {
			return failure(warnings, err)
		}
	}

	out, err := generator.Generate(record, plan, generator.Options{
		IndentSize:     opts.IndentSize,
		MaxLineLength:  opts.MaxLineLength,
		AddComments:    opts.AddComments,
		IncludeImports: opts.IncludeImports,
	})
	if err != nil {
		return failure(warnings, err)
	}
	warnings = append(warnings, out.Warnings...)

	return &Result{
		Success:  true,
		Jsonnet:  out.Text,
		Stats:    buildStats(record, plan),
		Warnings: warnings,
		Record:   record,
		Plan:     plan,
	}
}

// TransformFile loads a dashboard JSON file and runs the full pipeline.
func TransformFile(ctx context.Context, path string, opts Options) *Result {
	data, err := os.ReadFile(path)
	if err != nil {
		return failure(nil, fmt.Errorf("reading dashboard file: %w", err))
	}
	return Transform(ctx, data, opts)
}

func validateOptions(opts Options) error {
	if opts.MinPatternOccurrences < 1 {
		return &patterns.ConfigError{Msg: fmt.Sprintf("minPatternOccurrences must be at least 1, got %d", opts.MinPatternOccurrences)}
	}
	if opts.IndentSize < 1 {
		return &patterns.ConfigError{Msg: fmt.Sprintf("indentSize must be at least 1, got %d", opts.IndentSize)}
	}
	if opts.MaxLineLength < 1 {
		return &patterns.ConfigError{Msg: fmt.Sprintf("maxLineLength must be at least 1, got %d", opts.MaxLineLength)}
	}
	return nil
}

func buildStats(record *extractor.DashboardRecord, plan *patterns.ExtractionPlan) *Stats {
	totalTargets := 0
	for _, p := range record.Panels {
		totalTargets += len(p.Targets)
	}
	return &Stats{
		Title:        record.Title,
		UID:          record.UID,
		TotalPanels:  len(record.Panels),
		TotalTargets: totalTargets,
		PanelTypes:   record.TypeCounts(),
		Datasources:  record.DatasourceNames(),
		Extractions:  len(plan.Entries),
		Suggestions:  plan.Suggestions,
	}
}
