package extractor

import (
	"github.com/superlinear-space/jsnonet-transformer/pkg/jsontree"
)

// PanelType classifies a panel by its "type" field. Unknown types map to
// PanelOther rather than failing, since dashboards routinely carry plugin
// panels.
type PanelType int

const (
	PanelStat PanelType = iota
	PanelTimeseries
	PanelGraph
	PanelGauge
	PanelTable
	PanelPieChart
	PanelBarChart
	PanelHeatmap
	PanelLogs
	PanelText
	PanelRow
	PanelOther
)

var panelTypeNames = map[string]PanelType{
	"stat":       PanelStat,
	"timeseries": PanelTimeseries,
	"graph":      PanelGraph,
	"gauge":      PanelGauge,
	"bargauge":   PanelGauge,
	"table":      PanelTable,
	"table-old":  PanelTable,
	"piechart":   PanelPieChart,
	"barchart":   PanelBarChart,
	"heatmap":    PanelHeatmap,
	"logs":       PanelLogs,
	"text":       PanelText,
	"row":        PanelRow,
}

// ParsePanelType maps a raw type tag to its PanelType.
func ParsePanelType(s string) PanelType {
	if t, ok := panelTypeNames[s]; ok {
		return t
	}
	return PanelOther
}

func (t PanelType) String() string {
	switch t {
	case PanelStat:
		return "stat"
	case PanelTimeseries:
		return "timeseries"
	case PanelGraph:
		return "graph"
	case PanelGauge:
		return "gauge"
	case PanelTable:
		return "table"
	case PanelPieChart:
		return "piechart"
	case PanelBarChart:
		return "barchart"
	case PanelHeatmap:
		return "heatmap"
	case PanelLogs:
		return "logs"
	case PanelText:
		return "text"
	case PanelRow:
		return "row"
	default:
		return "other"
	}
}

// GridPos is a panel's rectangle on the 24-column layout grid.
type GridPos struct {
	X int
	Y int
	W int
	H int
}

// DashboardRecord is the normalized form of one dashboard. Built once per
// transform invocation and immutable afterwards.
type DashboardRecord struct {
	Title         string
	UID           string
	Tags          []string
	Timezone      string
	SchemaVersion int
	Version       int
	Refresh       string
	Panels        []PanelRecord

	// Templating and Annotations are passed through unmodified.
	Templating  jsontree.Value
	Annotations jsontree.Value

	// Config holds every dashboard-level field except "panels", in original
	// document order. Root is the located dashboard object itself.
	Config []jsontree.Member
	Root   jsontree.Value
}

// PanelRecord is the normalized form of one panel.
type PanelRecord struct {
	ID      int
	Type    PanelType
	RawType string
	Title   string
	GridPos GridPos

	Targets     []jsontree.Value
	Datasource  jsontree.Value // raw block: string, object, or null when absent
	FieldConfig jsontree.Value
	Options     jsontree.Value

	// Extra holds unrecognized panel properties verbatim, in document order.
	Extra []jsontree.Member

	// Body is the complete original panel object; Path addresses it within
	// the dashboard and Seq is its position in the single analysis pass.
	Body jsontree.Value
	Path jsontree.Path
	Seq  int
}

// TypeCount pairs a panel type tag with its occurrence count.
type TypeCount struct {
	Type  string
	Count int
}

// HasTarget reports whether the panel carries at least one query target with
// a non-empty expression.
func (p *PanelRecord) HasTarget() bool {
	for _, t := range p.Targets {
		if expr, ok := t.Field("expr"); ok && expr.Text() != "" {
			return true
		}
	}
	return false
}

// PanelsWithTargets returns non-row panels that have at least one target
// with a non-empty expression.
func (r *DashboardRecord) PanelsWithTargets() []PanelRecord {
	var result []PanelRecord
	for _, p := range r.Panels {
		if p.Type == PanelRow {
			continue
		}
		if p.HasTarget() {
			result = append(result, p)
		}
	}
	return result
}

// TargetExprs returns all unique query expressions in document order.
func (r *DashboardRecord) TargetExprs() []string {
	seen := make(map[string]bool)
	var exprs []string
	for _, p := range r.Panels {
		for _, t := range p.Targets {
			expr, _ := t.Field("expr")
			if expr.Text() != "" && !seen[expr.Text()] {
				seen[expr.Text()] = true
				exprs = append(exprs, expr.Text())
			}
		}
	}
	return exprs
}

// DatasourceNames returns the distinct datasource references used by panels
// and targets, in document order. Template variable references ("$ds") are
// skipped.
func (r *DashboardRecord) DatasourceNames() []string {
	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		if name == "" || name[0] == '$' || seen[name] {
			return
		}
		seen[name] = true
		names = append(names, name)
	}
	for _, p := range r.Panels {
		add(datasourceName(p.Datasource))
		for _, t := range p.Targets {
			if ds, ok := t.Field("datasource"); ok {
				add(datasourceName(ds))
			}
		}
	}
	return names
}

// TypeCounts returns per-type panel counts in first-seen order.
func (r *DashboardRecord) TypeCounts() []TypeCount {
	index := make(map[string]int)
	var counts []TypeCount
	for _, p := range r.Panels {
		tag := p.Type.String()
		if i, ok := index[tag]; ok {
			counts[i].Count++
			continue
		}
		index[tag] = len(counts)
		counts = append(counts, TypeCount{Type: tag, Count: 1})
	}
	return counts
}

// datasourceName flattens a datasource block to a comparable name: the
// "type" (falling back to "uid") for object refs, the string itself for
// legacy string refs.
func datasourceName(ds jsontree.Value) string {
	switch ds.Kind() {
	case jsontree.KindString:
		return ds.Text()
	case jsontree.KindObject:
		if t, ok := ds.Field("type"); ok && t.Text() != "" {
			return t.Text()
		}
		if uid, ok := ds.Field("uid"); ok {
			return uid.Text()
		}
	}
	return ""
}
