// Package templates is the static catalog of pre-built panel and mixin
// constructors plus dashboard scaffolds. These are fixed building blocks
// layered on top of the core pipeline, not part of pattern detection.
package templates

import (
	"github.com/superlinear-space/jsnonet-transformer/pkg/jsontree"
)

// LegendOptions configures a legend mixin. Extra fields pass through
// verbatim.
type LegendOptions struct {
	Show        bool
	DisplayMode string // list, table, hidden
	Placement   string // bottom, right
	Values      []string
	Min         bool
	Max         bool
	Avg         bool
	Current     bool
	Total       bool
	Extra       []jsontree.Member
}

// Legend builds a legend configuration block.
func Legend(opts LegendOptions) jsontree.Value {
	if opts.DisplayMode == "" {
		opts.DisplayMode = "list"
	}
	if opts.Placement == "" {
		opts.Placement = "bottom"
	}
	members := []jsontree.Member{
		jsontree.Pair("show", jsontree.Boolean(opts.Show)),
		jsontree.Pair("displayMode", jsontree.Str(opts.DisplayMode)),
		jsontree.Pair("placement", jsontree.Str(opts.Placement)),
	}
	if len(opts.Values) > 0 {
		values := make([]jsontree.Value, len(opts.Values))
		for i, v := range opts.Values {
			values[i] = jsontree.Str(v)
		}
		members = append(members, jsontree.Pair("values", jsontree.Array(values...)))
	}
	var calcs []jsontree.Value
	for _, c := range []struct {
		on   bool
		name string
	}{
		{opts.Min, "min"},
		{opts.Max, "max"},
		{opts.Avg, "mean"},
		{opts.Current, "lastNotNull"},
		{opts.Total, "sum"},
	} {
		if c.on {
			calcs = append(calcs, jsontree.Str(c.name))
		}
	}
	if len(calcs) > 0 {
		members = append(members, jsontree.Pair("calcs", jsontree.Array(calcs...)))
	}
	members = append(members, opts.Extra...)
	return jsontree.Object(members...)
}

// TooltipOptions configures a tooltip mixin.
type TooltipOptions struct {
	Mode  string // single, multi, none
	Sort  string // none, asc, desc
	Extra []jsontree.Member
}

// Tooltip builds a tooltip configuration block.
func Tooltip(opts TooltipOptions) jsontree.Value {
	if opts.Mode == "" {
		opts.Mode = "single"
	}
	if opts.Sort == "" {
		opts.Sort = "none"
	}
	members := []jsontree.Member{
		jsontree.Pair("mode", jsontree.Str(opts.Mode)),
		jsontree.Pair("sort", jsontree.Str(opts.Sort)),
	}
	members = append(members, opts.Extra...)
	return jsontree.Object(members...)
}

// ThresholdStep is one color step; a nil Value marks the base step.
type ThresholdStep struct {
	Color string
	Value *float64
}

// Step builds a threshold step with a numeric bound.
func Step(color string, value float64) ThresholdStep {
	return ThresholdStep{Color: color, Value: &value}
}

// BaseStep builds the base threshold step (value null).
func BaseStep(color string) ThresholdStep {
	return ThresholdStep{Color: color}
}

// Thresholds builds a thresholds block in the fieldConfig style.
func Thresholds(mode string, steps ...ThresholdStep) jsontree.Value {
	if mode == "" {
		mode = "absolute"
	}
	items := make([]jsontree.Value, len(steps))
	for i, s := range steps {
		value := jsontree.Null()
		if s.Value != nil {
			value = jsontree.Number(*s.Value)
		}
		items[i] = jsontree.Object(
			jsontree.Pair("color", jsontree.Str(s.Color)),
			jsontree.Pair("value", value),
		)
	}
	return jsontree.Object(
		jsontree.Pair("mode", jsontree.Str(mode)),
		jsontree.Pair("steps", jsontree.Array(items...)),
	)
}
