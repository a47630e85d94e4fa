package generator

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superlinear-space/jsnonet-transformer/pkg/extractor"
	"github.com/superlinear-space/jsnonet-transformer/pkg/jsontree"
	"github.com/superlinear-space/jsnonet-transformer/pkg/patterns"
)

func record(t *testing.T, raw string) *extractor.DashboardRecord {
	t.Helper()
	tree, err := extractor.ParseTree([]byte(raw))
	require.NoError(t, err)
	rec, err := extractor.Analyze(tree)
	require.NoError(t, err)
	return rec
}

func generate(t *testing.T, raw string, opts Options) *Output {
	t.Helper()
	out, err := Generate(record(t, raw), nil, opts)
	require.NoError(t, err)
	return out
}

func TestGenerateNilRecord(t *testing.T) {
	_, err := Generate(nil, nil, DefaultOptions())
	assert.Error(t, err)
}

func TestGenerateBasicDashboard(t *testing.T) {
	out := generate(t, `{
		"title": "Test Dashboard",
		"uid": "td-1",
		"panels": [{"id": 1, "type": "stat", "title": "Requests", "some-key": 5}]
	}`, DefaultOptions())

	assert.Contains(t, out.Text, "// Test Dashboard")
	assert.Contains(t, out.Text, "// Converted from Grafana dashboard JSON")
	assert.Contains(t, out.Text, "title: 'Test Dashboard',")
	assert.Contains(t, out.Text, "uid: 'td-1',")
	assert.Contains(t, out.Text, "// Requests")
	assert.Contains(t, out.Text, "'some-key': 5")
	assert.True(t, strings.HasSuffix(out.Text, "}\n"))
	assert.Empty(t, out.Warnings)
}

func TestGenerateEmptyPanelList(t *testing.T) {
	out := generate(t, `{"title": "Empty", "panels": []}`, DefaultOptions())
	assert.Contains(t, out.Text, "panels: [],")
}

func TestGenerateFieldOrderPreserved(t *testing.T) {
	out := generate(t, `{"uid": "z", "title": "Ordered", "panels": [], "refresh": "5s"}`, DefaultOptions())

	uidAt := strings.Index(out.Text, "uid:")
	titleAt := strings.Index(out.Text, "title:")
	refreshAt := strings.Index(out.Text, "refresh:")
	require.True(t, uidAt >= 0 && titleAt >= 0 && refreshAt >= 0)
	assert.Less(t, uidAt, titleAt)
	assert.Less(t, titleAt, refreshAt)
}

func TestGenerateNoComments(t *testing.T) {
	opts := DefaultOptions()
	opts.AddComments = false
	out := generate(t, `{"title": "T", "panels": [{"id": 1, "type": "stat", "title": "P"}]}`, opts)
	assert.NotContains(t, out.Text, "//")
}

func TestGenerateImports(t *testing.T) {
	opts := DefaultOptions()
	opts.IncludeImports = true
	out := generate(t, `{"title": "T", "panels": []}`, opts)
	assert.Contains(t, out.Text, "local grafonnet = import '"+grafonnetImport+"';")
}

func TestStringEscaping(t *testing.T) {
	out := generate(t, `{"title": "It's\na\ttest", "panels": []}`, DefaultOptions())
	assert.Contains(t, out.Text, `title: 'It\'s\na\ttest',`)
}

func TestNumberFormatting(t *testing.T) {
	out := generate(t, `{"panels": [{"type": "stat", "a": 2.5, "b": 3.0, "c": -17}]}`, DefaultOptions())
	assert.Contains(t, out.Text, "a: 2.5")
	assert.Contains(t, out.Text, "b: 3")
	assert.NotContains(t, out.Text, "b: 3.0")
	assert.Contains(t, out.Text, "c: -17")
}

func TestNonFiniteNumberDegradesToNull(t *testing.T) {
	tree := jsontree.Object(
		jsontree.Pair("title", jsontree.Str("T")),
		jsontree.Pair("panels", jsontree.Array(jsontree.Object(
			jsontree.Pair("id", jsontree.Integer(1)),
			jsontree.Pair("type", jsontree.Str("stat")),
			jsontree.Pair("bad", jsontree.Number(math.Inf(1))),
		))),
	)
	rec, err := extractor.Analyze(tree)
	require.NoError(t, err)

	out, err := Generate(rec, nil, DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, out.Text, "bad: null")
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "non-finite number")
	assert.Contains(t, out.Warnings[0], "panels.0.bad")
}

func TestNameCollisionDropsLaterEntry(t *testing.T) {
	plan := &patterns.ExtractionPlan{Entries: []patterns.Entry{
		{Name: "shared", Kind: patterns.Constant, Role: "thresholds", Value: jsontree.Integer(1)},
		{Name: "shared", Kind: patterns.Constant, Role: "legend", Value: jsontree.Integer(2)},
	}}

	out, err := Generate(record(t, `{"title": "T", "panels": []}`), plan, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(out.Text, "local shared ="))
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "name collision")
}

func TestConstantDefinitionAndReference(t *testing.T) {
	rec := record(t, `{"panels": [
		{"id": 1, "type": "stat", "fieldConfig": {"defaults": {"unit": "a", "thresholds": {"mode": "absolute"}}}},
		{"id": 2, "type": "gauge", "fieldConfig": {"defaults": {"unit": "b", "thresholds": {"mode": "absolute"}}}}
	]}`)
	site := func(i int) patterns.Site {
		p := jsontree.Path{"panels"}.ChildIndex(i).Child("fieldConfig").Child("defaults").Child("thresholds")
		v, ok := jsontree.ValueAt(rec.Root, p)
		require.True(t, ok)
		return patterns.Site{Path: p, Seq: i, Value: v}
	}
	plan := &patterns.ExtractionPlan{Entries: []patterns.Entry{{
		Name:  "thresholds",
		Kind:  patterns.Constant,
		Role:  "thresholds",
		Value: jsontree.Object(jsontree.Pair("mode", jsontree.Str("absolute"))),
		Sites: []patterns.Site{site(0), site(1)},
	}}}

	out, err := Generate(rec, plan, DefaultOptions())
	require.NoError(t, err)

	assert.Contains(t, out.Text, "local thresholds = { mode: 'absolute' };")
	assert.Equal(t, 2, strings.Count(out.Text, "thresholds: thresholds"))
	assert.NotContains(t, out.Text, "thresholds: { mode: 'absolute' }")
}

func TestLineWrapping(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxLineLength = 40
	opts.IndentSize = 2
	out := generate(t, `{"panels": [
		{"id": 1, "type": "timeseries", "title": "A panel with a fairly long title",
		 "fieldConfig": {"defaults": {"unit": "bytes", "custom": {"fillOpacity": 10, "lineWidth": 1}}}}
	]}`, opts)

	// The body is too wide for one line, so composites break with
	// trailing commas and tokens stay whole.
	assert.Contains(t, out.Text, "fieldConfig: {\n")
	assert.Contains(t, out.Text, "'A panel with a fairly long title'")
	for _, line := range strings.Split(out.Text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "'") {
			assert.True(t, strings.HasSuffix(trimmed, "',") || strings.HasSuffix(trimmed, "'"),
				"string token split across lines: %q", line)
		}
	}
}

func TestFieldNameQuoting(t *testing.T) {
	out := generate(t, `{"panels": [{"type": "stat", "normal": 1, "with-dash": 2, "local": 3}]}`, DefaultOptions())
	assert.Contains(t, out.Text, "normal: 1")
	assert.Contains(t, out.Text, "'with-dash': 2")
	assert.Contains(t, out.Text, "'local': 3")
}
