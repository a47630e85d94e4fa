package extractor

import (
	"fmt"
	"os"

	"github.com/superlinear-space/jsnonet-transformer/pkg/jsontree"
)

// StructureError reports input that lacks a recognizable dashboard shape.
// It is fatal: no partial record is usable downstream.
type StructureError struct {
	Msg string
}

func (e *StructureError) Error() string { return "dashboard structure: " + e.Msg }

// LoadTree reads a JSON file and decodes it into an ordered tree.
func LoadTree(path string) (jsontree.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return jsontree.Value{}, fmt.Errorf("reading dashboard file: %w", err)
	}
	return ParseTree(data)
}

// ParseTree decodes raw dashboard JSON into an ordered tree.
func ParseTree(data []byte) (jsontree.Value, error) {
	v, err := jsontree.Parse(data)
	if err != nil {
		return jsontree.Value{}, fmt.Errorf("parsing dashboard JSON: %w", err)
	}
	return v, nil
}

// Validate runs the minimal structural checks the pipeline needs and returns
// human-readable messages; an empty slice means the tree passed. It accepts
// the same outer wrappers Analyze does, so a tree Analyze can handle never
// fails validation on shape alone.
func Validate(tree jsontree.Value) []string {
	var msgs []string
	if tree.Kind() != jsontree.KindObject {
		return []string{"input is not an object"}
	}
	doc := unwrapDocument(tree)
	dash, hasDash := doc.Field("dashboard")
	_, hasPanels := doc.Field("panels")
	if !hasDash && !hasPanels {
		msgs = append(msgs, "missing 'dashboard' or 'panels' field")
	}
	if hasDash {
		if dash.Kind() != jsontree.KindObject {
			msgs = append(msgs, "'dashboard' field is not an object")
		} else if panels, ok := dash.Field("panels"); ok && panels.Kind() != jsontree.KindArray {
			msgs = append(msgs, "'panels' field is not an array")
		}
	}
	if hasPanels && !hasDash {
		if panels, _ := doc.Field("panels"); panels.Kind() != jsontree.KindArray {
			msgs = append(msgs, "'panels' field is not an array")
		}
	}
	return msgs
}

// unwrapDocument steps through a grafana/spec/resource wrapper when the
// nested object is the one carrying the dashboard fields.
func unwrapDocument(tree jsontree.Value) jsontree.Value {
	if _, ok := tree.Field("dashboard"); ok {
		return tree
	}
	if _, ok := tree.Field("panels"); ok {
		return tree
	}
	for _, key := range wrapperKeys {
		nested, ok := tree.Field(key)
		if !ok || nested.Kind() != jsontree.KindObject {
			continue
		}
		if _, ok := nested.Field("dashboard"); ok {
			return nested
		}
		if _, ok := nested.Field("panels"); ok {
			return nested
		}
	}
	return tree
}

// Analyze walks the tree and builds the normalized dashboard record. It
// fails with *StructureError when no panel array is reachable through the
// known root shapes: {dashboard: {...}}, a bare dashboard object, or either
// of those nested under a "grafana", "spec" or "resource" wrapper. The input
// tree is never mutated.
func Analyze(tree jsontree.Value) (*DashboardRecord, error) {
	root, ok := dashboardRoot(tree)
	if !ok {
		return nil, &StructureError{Msg: "no panel array reachable from the document root"}
	}

	record := &DashboardRecord{
		Title:         root.FieldOr("title", jsontree.Str("Untitled Dashboard")).StringOr("Untitled Dashboard"),
		UID:           root.FieldOr("uid", jsontree.Null()).StringOr(""),
		Timezone:      root.FieldOr("timezone", jsontree.Str("browser")).StringOr("browser"),
		SchemaVersion: root.FieldOr("schemaVersion", jsontree.Null()).IntOr(0),
		Version:       root.FieldOr("version", jsontree.Null()).IntOr(0),
		Refresh:       root.FieldOr("refresh", jsontree.Null()).StringOr(""),
		Root:          root,
	}
	if tags, ok := root.Field("tags"); ok {
		for _, t := range tags.Items() {
			if t.Kind() == jsontree.KindString {
				record.Tags = append(record.Tags, t.Text())
			}
		}
	}
	record.Templating, _ = root.Field("templating")
	record.Annotations, _ = root.Field("annotations")

	for _, m := range root.Members() {
		if m.Key != "panels" {
			record.Config = append(record.Config, m)
		}
	}

	panels, _ := root.Field("panels")
	basePath := jsontree.Path{"panels"}
	for i, body := range panels.Items() {
		record.Panels = append(record.Panels, analyzePanel(body, basePath.ChildIndex(i), i))
	}
	return record, nil
}

// hasPanelArray reports whether v is an object carrying a panel array.
func hasPanelArray(v jsontree.Value) bool {
	if v.Kind() != jsontree.KindObject {
		return false
	}
	panels, ok := v.Field("panels")
	return ok && panels.Kind() == jsontree.KindArray
}

// wrapperKeys are the outer envelopes a dashboard document may be nested
// under, e.g. provisioning resources or export payloads.
var wrapperKeys = []string{"grafana", "spec", "resource"}

// dashboardRoot locates the dashboard object regardless of the outer
// wrapper.
func dashboardRoot(tree jsontree.Value) (jsontree.Value, bool) {
	if tree.Kind() != jsontree.KindObject {
		return jsontree.Value{}, false
	}
	if dash, ok := tree.Field("dashboard"); ok && hasPanelArray(dash) {
		return dash, true
	}
	if hasPanelArray(tree) {
		return tree, true
	}
	for _, key := range wrapperKeys {
		nested, ok := tree.Field(key)
		if !ok || nested.Kind() != jsontree.KindObject {
			continue
		}
		if dash, ok := nested.Field("dashboard"); ok && hasPanelArray(dash) {
			return dash, true
		}
		if hasPanelArray(nested) {
			return nested, true
		}
	}
	return jsontree.Value{}, false
}

// recognizedPanelKeys are the panel properties the record models explicitly.
// Everything else lands in the Extra bag for round-trip fidelity.
var recognizedPanelKeys = map[string]bool{
	"id":          true,
	"type":        true,
	"title":       true,
	"gridPos":     true,
	"targets":     true,
	"datasource":  true,
	"fieldConfig": true,
	"options":     true,
}

func analyzePanel(body jsontree.Value, path jsontree.Path, seq int) PanelRecord {
	rawType := body.FieldOr("type", jsontree.Null()).StringOr("")
	p := PanelRecord{
		ID:      body.FieldOr("id", jsontree.Null()).IntOr(0),
		Type:    ParsePanelType(rawType),
		RawType: rawType,
		Title:   body.FieldOr("title", jsontree.Null()).StringOr(""),
		GridPos: analyzeGridPos(body),
		Body:    body,
		Path:    path,
		Seq:     seq,
	}
	if targets, ok := body.Field("targets"); ok {
		p.Targets = targets.Items()
	}
	p.Datasource, _ = body.Field("datasource")
	p.FieldConfig, _ = body.Field("fieldConfig")
	p.Options, _ = body.Field("options")
	for _, m := range body.Members() {
		if !recognizedPanelKeys[m.Key] {
			p.Extra = append(p.Extra, m)
		}
	}
	return p
}

// analyzeGridPos reads a panel's gridPos, defaulting missing positions to a
// half-width block and clamping the rectangle into the 24-column grid with a
// non-degenerate size.
func analyzeGridPos(body jsontree.Value) GridPos {
	gp := GridPos{X: 0, Y: 0, W: 12, H: 8}
	raw, ok := body.Field("gridPos")
	if !ok || raw.Kind() != jsontree.KindObject {
		return gp
	}
	gp.X = raw.FieldOr("x", jsontree.Integer(gp.X)).IntOr(gp.X)
	gp.Y = raw.FieldOr("y", jsontree.Integer(gp.Y)).IntOr(gp.Y)
	gp.W = raw.FieldOr("w", jsontree.Integer(gp.W)).IntOr(gp.W)
	gp.H = raw.FieldOr("h", jsontree.Integer(gp.H)).IntOr(gp.H)
	gp.X = clamp(gp.X, 0, 24)
	gp.W = clamp(gp.W, 1, 24)
	if gp.Y < 0 {
		gp.Y = 0
	}
	if gp.H < 1 {
		gp.H = 1
	}
	return gp
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
