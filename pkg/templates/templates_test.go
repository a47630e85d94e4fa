package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superlinear-space/jsnonet-transformer/pkg/extractor"
	"github.com/superlinear-space/jsnonet-transformer/pkg/generator"
	"github.com/superlinear-space/jsnonet-transformer/pkg/jsontree"
)

func TestScaffoldUnknownName(t *testing.T) {
	_, err := Scaffold("bogus", ScaffoldParams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown scaffold template")
}

func TestScaffoldsAnalyzable(t *testing.T) {
	panelCounts := map[string]int{"empty": 0, "kubernetes": 3, "prometheus": 2}
	for _, name := range ScaffoldNames() {
		tree, err := Scaffold(name, ScaffoldParams{})
		require.NoError(t, err, "scaffold %s", name)

		assert.Empty(t, extractor.Validate(tree), "scaffold %s", name)
		record, err := extractor.Analyze(tree)
		require.NoError(t, err, "scaffold %s", name)
		assert.NotEmpty(t, record.Title)
		assert.NotEmpty(t, record.UID)
		assert.Len(t, record.Panels, panelCounts[name], "scaffold %s", name)
	}
}

func TestScaffoldParamsApplied(t *testing.T) {
	tree := Kubernetes(ScaffoldParams{ClusterName: "prod-eu", Namespace: "payments"})
	record, err := extractor.Analyze(tree)
	require.NoError(t, err)

	assert.Equal(t, "Kubernetes Cluster - prod-eu", record.Title)
	assert.Equal(t, "kubernetes-prod-eu", record.UID)
	assert.Contains(t, record.Tags, "payments")
	assert.Contains(t, record.TargetExprs()[0], `cluster="prod-eu"`)
}

func TestEmptyScaffoldGeneratesUID(t *testing.T) {
	a, err := extractor.Analyze(Empty(ScaffoldParams{}))
	require.NoError(t, err)
	b, err := extractor.Analyze(Empty(ScaffoldParams{}))
	require.NoError(t, err)

	assert.Equal(t, "New Dashboard", a.Title)
	assert.NotEmpty(t, a.UID)
	assert.NotEqual(t, a.UID, b.UID)
}

func TestRenderScaffold(t *testing.T) {
	text, err := RenderScaffold("prometheus", ScaffoldParams{JobName: "thanos"}, generator.DefaultOptions())
	require.NoError(t, err)

	assert.Contains(t, text, "title: 'Prometheus - thanos',")
	assert.Contains(t, text, "'Targets Up'")
	assert.Contains(t, text, `sum(up{job="thanos"})`)
}

func TestTarget(t *testing.T) {
	full := Target("up", "{{instance}}", "A")
	assert.Equal(t, 3, full.Len())

	minimal := Target("up", "", "")
	require.Equal(t, 1, minimal.Len())
	expr, _ := minimal.Field("expr")
	assert.Equal(t, "up", expr.Text())
}

func TestThresholds(t *testing.T) {
	v := Thresholds("", BaseStep("green"), Step("red", 80))

	mode, _ := v.Field("mode")
	assert.Equal(t, "absolute", mode.Text())

	steps, _ := v.Field("steps")
	require.Equal(t, 2, steps.Len())
	base, _ := steps.Index(0)
	baseValue, _ := base.Field("value")
	assert.True(t, baseValue.IsNull())
	red, _ := steps.Index(1)
	redValue, _ := red.Field("value")
	assert.Equal(t, 80.0, redValue.Number())
}

func TestLegendCalcs(t *testing.T) {
	v := Legend(LegendOptions{Show: true, Min: true, Max: true, Current: true})

	calcs, ok := v.Field("calcs")
	require.True(t, ok)
	got := make([]string, 0, calcs.Len())
	for _, c := range calcs.Items() {
		got = append(got, c.Text())
	}
	assert.Equal(t, []string{"min", "max", "lastNotNull"}, got)

	plain := Legend(LegendOptions{})
	_, ok = plain.Field("calcs")
	assert.False(t, ok)
	mode, _ := plain.Field("displayMode")
	assert.Equal(t, "list", mode.Text())
}

func TestTooltipDefaults(t *testing.T) {
	v := Tooltip(TooltipOptions{})
	mode, _ := v.Field("mode")
	sort, _ := v.Field("sort")
	assert.Equal(t, "single", mode.Text())
	assert.Equal(t, "none", sort.Text())
}

func TestStatPanel(t *testing.T) {
	v := StatPanel(StatPanelOptions{
		PanelOptions: PanelOptions{
			ID:      7,
			Title:   "Uptime",
			GridPos: extractor.GridPos{X: 0, Y: 0, W: 6, H: 4},
			Targets: []jsontree.Value{Target("up", "", "A")},
		},
		Unit:       "s",
		Thresholds: Thresholds("absolute", BaseStep("green")),
	})

	assert.Equal(t, "id", v.Members()[0].Key)
	typ, _ := v.Field("type")
	assert.Equal(t, "stat", typ.Text())

	unit, ok := jsontree.ValueAt(v, jsontree.Path{"fieldConfig", "defaults", "unit"})
	require.True(t, ok)
	assert.Equal(t, "s", unit.Text())

	colorMode, ok := jsontree.ValueAt(v, jsontree.Path{"options", "colorMode"})
	require.True(t, ok)
	assert.Equal(t, "value", colorMode.Text())
}

func TestGaugePanelDefaults(t *testing.T) {
	v := GaugePanel(GaugePanelOptions{PanelOptions: PanelOptions{Title: "G"}})

	max, ok := jsontree.ValueAt(v, jsontree.Path{"fieldConfig", "defaults", "max"})
	require.True(t, ok)
	assert.Equal(t, 100.0, max.Number())
}

func TestRowPanel(t *testing.T) {
	v := RowPanel("Section", 12, true)

	typ, _ := v.Field("type")
	assert.Equal(t, "row", typ.Text())
	w, ok := jsontree.ValueAt(v, jsontree.Path{"gridPos", "w"})
	require.True(t, ok)
	assert.Equal(t, 24.0, w.Number())
	collapsed, _ := v.Field("collapsed")
	assert.True(t, collapsed.Bool())
}
