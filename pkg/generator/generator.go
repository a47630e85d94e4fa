// Package generator turns a dashboard record plus an extraction plan into
// formatted Jsonnet source. It is a pure function over its inputs: all
// failures either abort before any text is produced or degrade to warnings.
package generator

import (
	"fmt"

	"github.com/superlinear-space/jsnonet-transformer/pkg/extractor"
	"github.com/superlinear-space/jsnonet-transformer/pkg/patterns"
)

// grafonnetImport is the conventional template-library location emitted
// when imports are requested.
const grafonnetImport = "github.com/grafana/grafonnet/gen/grafonnet-latest/main.libsonnet"

// Options controls formatting of the generated source.
type Options struct {
	IndentSize     int
	MaxLineLength  int
	AddComments    bool
	IncludeImports bool
}

// DefaultOptions returns the standard formatting configuration.
func DefaultOptions() Options {
	return Options{
		IndentSize:    4,
		MaxLineLength: 120,
		AddComments:   true,
	}
}

// Output is the result of one generation run. Warnings record recovered
// per-value issues; they never abort the run.
type Output struct {
	Text     string
	Warnings []string
}

// NameCollisionError reports two plan entries carrying the same generated
// name. The detector's naming pass prevents this, but the generator defends
// against it anyway: the later entry is dropped and the collision recorded
// as a warning.
type NameCollisionError struct {
	Name string
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("name collision: duplicate generated name %q", e.Name)
}

// EmitError reports a value that cannot be represented in Jsonnet. It is
// recovered locally: the value is emitted as null and the error recorded as
// a warning.
type EmitError struct {
	Path string
	Msg  string
}

func (e *EmitError) Error() string {
	return fmt.Sprintf("cannot emit value at %s: %s", e.Path, e.Msg)
}

// Generate renders the dashboard as Jsonnet source: one definition per plan
// entry in plan order, then the main dashboard object with every claimed
// occurrence site rewritten to a binding reference or template call.
// Unclaimed sites are emitted as inline literals equal to the original
// value.
func Generate(record *extractor.DashboardRecord, plan *patterns.ExtractionPlan, opts Options) (*Output, error) {
	if record == nil {
		return nil, fmt.Errorf("generate: nil dashboard record")
	}
	if opts.IndentSize < 1 {
		opts.IndentSize = 4
	}
	if opts.MaxLineLength < 1 {
		opts.MaxLineLength = 120
	}

	w := newWriter(opts)

	entries := dedupeNames(plan, w)
	sites := siteIndex(entries)
	w.sites = sites

	if opts.AddComments {
		w.commentLine(0, record.Title)
		w.commentLine(0, "Converted from Grafana dashboard JSON")
		w.blank()
	}
	if opts.IncludeImports {
		w.rawLine(0, "local grafonnet = import '"+grafonnetImport+"';")
		w.blank()
	}

	for i := range entries {
		w.writeDefinition(&entries[i])
		w.blank()
	}

	w.writeDashboard(record)

	return &Output{Text: w.text(), Warnings: w.warnings}, nil
}

// dedupeNames filters plan entries so every generated name is unique,
// warning on collisions instead of panicking per the error contract.
func dedupeNames(plan *patterns.ExtractionPlan, w *writer) []patterns.Entry {
	if plan == nil {
		return nil
	}
	seen := make(map[string]bool)
	entries := make([]patterns.Entry, 0, len(plan.Entries))
	for _, e := range plan.Entries {
		if seen[e.Name] {
			collision := &NameCollisionError{Name: e.Name}
			w.warn(collision.Error() + "; entry dropped, sites emitted inline")
			continue
		}
		seen[e.Name] = true
		entries = append(entries, e)
	}
	return entries
}

func siteIndex(entries []patterns.Entry) map[string]patterns.SiteRef {
	index := make(map[string]patterns.SiteRef)
	for i := range entries {
		for j, s := range entries[i].Sites {
			index[s.Path.String()] = patterns.SiteRef{Entry: &entries[i], Site: j}
		}
	}
	return index
}
