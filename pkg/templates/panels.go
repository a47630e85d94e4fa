package templates

import (
	"github.com/superlinear-space/jsnonet-transformer/pkg/extractor"
	"github.com/superlinear-space/jsnonet-transformer/pkg/jsontree"
)

// PanelOptions carries the fields shared by every panel constructor.
// Extra fields pass through verbatim, mirroring how unrecognized panel
// properties survive analysis.
type PanelOptions struct {
	ID         int
	Title      string
	GridPos    extractor.GridPos
	Datasource string
	Targets    []jsontree.Value
	Extra      []jsontree.Member
}

// Target builds a query-target block.
func Target(expr, legendFormat, refID string) jsontree.Value {
	members := []jsontree.Member{
		jsontree.Pair("expr", jsontree.Str(expr)),
	}
	if legendFormat != "" {
		members = append(members, jsontree.Pair("legendFormat", jsontree.Str(legendFormat)))
	}
	if refID != "" {
		members = append(members, jsontree.Pair("refId", jsontree.Str(refID)))
	}
	return jsontree.Object(members...)
}

func gridPos(gp extractor.GridPos) jsontree.Value {
	return jsontree.Object(
		jsontree.Pair("x", jsontree.Integer(gp.X)),
		jsontree.Pair("y", jsontree.Integer(gp.Y)),
		jsontree.Pair("w", jsontree.Integer(gp.W)),
		jsontree.Pair("h", jsontree.Integer(gp.H)),
	)
}

// basePanel assembles the members every panel type shares.
func basePanel(panelType string, opts PanelOptions) []jsontree.Member {
	members := []jsontree.Member{
		jsontree.Pair("type", jsontree.Str(panelType)),
		jsontree.Pair("title", jsontree.Str(opts.Title)),
		jsontree.Pair("gridPos", gridPos(opts.GridPos)),
	}
	if opts.ID != 0 {
		members = append([]jsontree.Member{jsontree.Pair("id", jsontree.Integer(opts.ID))}, members...)
	}
	if opts.Datasource != "" {
		members = append(members, jsontree.Pair("datasource", jsontree.Str(opts.Datasource)))
	}
	targets := jsontree.Array(opts.Targets...)
	members = append(members, jsontree.Pair("targets", targets))
	return members
}

// StatPanelOptions configures a stat panel.
type StatPanelOptions struct {
	PanelOptions
	Unit       string
	ColorMode  string // value, background
	GraphMode  string // none, area
	Thresholds jsontree.Value
}

// StatPanel builds a stat panel body.
func StatPanel(opts StatPanelOptions) jsontree.Value {
	if opts.ColorMode == "" {
		opts.ColorMode = "value"
	}
	if opts.GraphMode == "" {
		opts.GraphMode = "area"
	}
	defaults := []jsontree.Member{}
	if opts.Unit != "" {
		defaults = append(defaults, jsontree.Pair("unit", jsontree.Str(opts.Unit)))
	}
	if !opts.Thresholds.IsNull() {
		defaults = append(defaults, jsontree.Pair("thresholds", opts.Thresholds))
	}
	members := basePanel("stat", opts.PanelOptions)
	if len(defaults) > 0 {
		members = append(members, jsontree.Pair("fieldConfig", jsontree.Object(
			jsontree.Pair("defaults", jsontree.Object(defaults...)),
		)))
	}
	members = append(members, jsontree.Pair("options", jsontree.Object(
		jsontree.Pair("colorMode", jsontree.Str(opts.ColorMode)),
		jsontree.Pair("graphMode", jsontree.Str(opts.GraphMode)),
	)))
	members = append(members, opts.Extra...)
	return jsontree.Object(members...)
}

// TimeseriesPanelOptions configures a timeseries panel.
type TimeseriesPanelOptions struct {
	PanelOptions
	Unit        string
	FillOpacity int
	LineWidth   int
	Legend      jsontree.Value
	Tooltip     jsontree.Value
}

// TimeseriesPanel builds a timeseries panel body.
func TimeseriesPanel(opts TimeseriesPanelOptions) jsontree.Value {
	if opts.LineWidth == 0 {
		opts.LineWidth = 1
	}
	custom := jsontree.Object(
		jsontree.Pair("fillOpacity", jsontree.Integer(opts.FillOpacity)),
		jsontree.Pair("lineWidth", jsontree.Integer(opts.LineWidth)),
	)
	defaults := []jsontree.Member{jsontree.Pair("custom", custom)}
	if opts.Unit != "" {
		defaults = append(defaults, jsontree.Pair("unit", jsontree.Str(opts.Unit)))
	}
	members := basePanel("timeseries", opts.PanelOptions)
	members = append(members, jsontree.Pair("fieldConfig", jsontree.Object(
		jsontree.Pair("defaults", jsontree.Object(defaults...)),
	)))
	panelOpts := []jsontree.Member{}
	if !opts.Legend.IsNull() {
		panelOpts = append(panelOpts, jsontree.Pair("legend", opts.Legend))
	}
	if !opts.Tooltip.IsNull() {
		panelOpts = append(panelOpts, jsontree.Pair("tooltip", opts.Tooltip))
	}
	if len(panelOpts) > 0 {
		members = append(members, jsontree.Pair("options", jsontree.Object(panelOpts...)))
	}
	members = append(members, opts.Extra...)
	return jsontree.Object(members...)
}

// GraphPanelOptions configures a legacy graph panel.
type GraphPanelOptions struct {
	PanelOptions
	Lines       bool
	Fill        int
	LineWidth   int
	PointRadius int
	Bars        bool
	Percentage  bool
	SteppedLine bool
	Legend      jsontree.Value
	Tooltip     jsontree.Value
}

// GraphPanel builds a legacy graph panel body.
func GraphPanel(opts GraphPanelOptions) jsontree.Value {
	if opts.LineWidth == 0 {
		opts.LineWidth = 1
	}
	if opts.PointRadius == 0 {
		opts.PointRadius = 2
	}
	members := basePanel("graph", opts.PanelOptions)
	members = append(members,
		jsontree.Pair("lines", jsontree.Boolean(opts.Lines)),
		jsontree.Pair("fill", jsontree.Integer(opts.Fill)),
		jsontree.Pair("linewidth", jsontree.Integer(opts.LineWidth)),
		jsontree.Pair("pointradius", jsontree.Integer(opts.PointRadius)),
		jsontree.Pair("bars", jsontree.Boolean(opts.Bars)),
		jsontree.Pair("percentage", jsontree.Boolean(opts.Percentage)),
		jsontree.Pair("steppedLine", jsontree.Boolean(opts.SteppedLine)),
	)
	if !opts.Legend.IsNull() {
		members = append(members, jsontree.Pair("legend", opts.Legend))
	}
	if !opts.Tooltip.IsNull() {
		members = append(members, jsontree.Pair("tooltip", opts.Tooltip))
	}
	members = append(members, opts.Extra...)
	return jsontree.Object(members...)
}

// GaugePanelOptions configures a gauge panel.
type GaugePanelOptions struct {
	PanelOptions
	Min        float64
	Max        float64
	Unit       string
	Thresholds jsontree.Value
}

// GaugePanel builds a gauge panel body.
func GaugePanel(opts GaugePanelOptions) jsontree.Value {
	if opts.Max == 0 {
		opts.Max = 100
	}
	defaults := []jsontree.Member{
		jsontree.Pair("min", jsontree.Number(opts.Min)),
		jsontree.Pair("max", jsontree.Number(opts.Max)),
	}
	if opts.Unit != "" {
		defaults = append(defaults, jsontree.Pair("unit", jsontree.Str(opts.Unit)))
	}
	if !opts.Thresholds.IsNull() {
		defaults = append(defaults, jsontree.Pair("thresholds", opts.Thresholds))
	}
	members := basePanel("gauge", opts.PanelOptions)
	members = append(members, jsontree.Pair("fieldConfig", jsontree.Object(
		jsontree.Pair("defaults", jsontree.Object(defaults...)),
	)))
	members = append(members, opts.Extra...)
	return jsontree.Object(members...)
}

// TablePanelOptions configures a table panel.
type TablePanelOptions struct {
	PanelOptions
	ShowHeader bool
}

// TablePanel builds a table panel body.
func TablePanel(opts TablePanelOptions) jsontree.Value {
	members := basePanel("table", opts.PanelOptions)
	members = append(members, jsontree.Pair("options", jsontree.Object(
		jsontree.Pair("showHeader", jsontree.Boolean(opts.ShowHeader)),
	)))
	members = append(members, opts.Extra...)
	return jsontree.Object(members...)
}

// RowPanel builds a row divider panel.
func RowPanel(title string, y int, collapsed bool) jsontree.Value {
	return jsontree.Object(
		jsontree.Pair("type", jsontree.Str("row")),
		jsontree.Pair("title", jsontree.Str(title)),
		jsontree.Pair("gridPos", gridPos(extractor.GridPos{X: 0, Y: y, W: 24, H: 1})),
		jsontree.Pair("collapsed", jsontree.Boolean(collapsed)),
		jsontree.Pair("panels", jsontree.Array()),
	)
}
