package templates

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/superlinear-space/jsnonet-transformer/pkg/extractor"
	"github.com/superlinear-space/jsnonet-transformer/pkg/generator"
	"github.com/superlinear-space/jsnonet-transformer/pkg/jsontree"
)

// ScaffoldParams parameterizes the builtin dashboard scaffolds.
type ScaffoldParams struct {
	Title       string
	UID         string
	ClusterName string
	Namespace   string
	JobName     string
}

// ScaffoldNames lists the builtin scaffolds in a stable order.
func ScaffoldNames() []string { return []string{"empty", "kubernetes", "prometheus"} }

// Scaffold builds one of the builtin dashboards as a tree.
func Scaffold(name string, params ScaffoldParams) (jsontree.Value, error) {
	switch name {
	case "kubernetes":
		return Kubernetes(params), nil
	case "prometheus":
		return Prometheus(params), nil
	case "empty":
		return Empty(params), nil
	default:
		return jsontree.Value{}, fmt.Errorf("unknown scaffold template: %s", name)
	}
}

// RenderScaffold builds a scaffold and renders it through the generator,
// so scaffold output is formatted identically to transformed dashboards.
func RenderScaffold(name string, params ScaffoldParams, opts generator.Options) (string, error) {
	tree, err := Scaffold(name, params)
	if err != nil {
		return "", err
	}
	record, err := extractor.Analyze(tree)
	if err != nil {
		return "", fmt.Errorf("scaffold %s is not a valid dashboard: %w", name, err)
	}
	out, err := generator.Generate(record, nil, opts)
	if err != nil {
		return "", err
	}
	return out.Text, nil
}

func dashboardFrame(title, uid string, tags []string, refresh, from string, panels ...jsontree.Value) jsontree.Value {
	tagValues := make([]jsontree.Value, len(tags))
	for i, t := range tags {
		tagValues[i] = jsontree.Str(t)
	}
	return jsontree.Object(
		jsontree.Pair("title", jsontree.Str(title)),
		jsontree.Pair("uid", jsontree.Str(uid)),
		jsontree.Pair("tags", jsontree.Array(tagValues...)),
		jsontree.Pair("timezone", jsontree.Str("browser")),
		jsontree.Pair("schemaVersion", jsontree.Integer(38)),
		jsontree.Pair("version", jsontree.Integer(1)),
		jsontree.Pair("panels", jsontree.Array(panels...)),
		jsontree.Pair("time", jsontree.Object(
			jsontree.Pair("from", jsontree.Str(from)),
			jsontree.Pair("to", jsontree.Str("now")),
		)),
		jsontree.Pair("refresh", jsontree.Str(refresh)),
	)
}

// Kubernetes builds a cluster overview dashboard scaffold.
func Kubernetes(params ScaffoldParams) jsontree.Value {
	cluster := params.ClusterName
	if cluster == "" {
		cluster = "my-cluster"
	}
	namespace := params.Namespace
	if namespace == "" {
		namespace = "default"
	}
	title := params.Title
	if title == "" {
		title = "Kubernetes Cluster - " + cluster
	}
	uid := params.UID
	if uid == "" {
		uid = "kubernetes-" + cluster
	}

	thresholds := Thresholds("absolute", BaseStep("green"), Step("yellow", 70), Step("red", 90))
	panels := []jsontree.Value{
		StatPanel(StatPanelOptions{
			PanelOptions: PanelOptions{
				ID:         1,
				Title:      "Node Count",
				GridPos:    extractor.GridPos{X: 0, Y: 0, W: 6, H: 4},
				Datasource: "prometheus",
				Targets: []jsontree.Value{
					Target(`count(kube_node_info{cluster="`+cluster+`"})`, "", "A"),
				},
			},
		}),
		GaugePanel(GaugePanelOptions{
			PanelOptions: PanelOptions{
				ID:         2,
				Title:      "CPU Utilization",
				GridPos:    extractor.GridPos{X: 6, Y: 0, W: 6, H: 4},
				Datasource: "prometheus",
				Targets: []jsontree.Value{
					Target(`sum(rate(container_cpu_usage_seconds_total{namespace="`+namespace+`"}[5m]))`, "", "A"),
				},
			},
			Unit:       "percent",
			Thresholds: thresholds,
		}),
		TimeseriesPanel(TimeseriesPanelOptions{
			PanelOptions: PanelOptions{
				ID:         3,
				Title:      "Memory Working Set",
				GridPos:    extractor.GridPos{X: 0, Y: 4, W: 12, H: 8},
				Datasource: "prometheus",
				Targets: []jsontree.Value{
					Target(`sum(container_memory_working_set_bytes{namespace="`+namespace+`"}) by (pod)`, "{{pod}}", "A"),
				},
			},
			Unit:   "bytes",
			Legend: Legend(LegendOptions{Show: true, Placement: "bottom"}),
		}),
	}
	return dashboardFrame(title, uid, []string{"kubernetes", "cluster", namespace}, "5s", "now-6h", panels...)
}

// Prometheus builds a Prometheus self-monitoring dashboard scaffold.
func Prometheus(params ScaffoldParams) jsontree.Value {
	job := params.JobName
	if job == "" {
		job = "prometheus"
	}
	title := params.Title
	if title == "" {
		title = "Prometheus - " + job
	}
	uid := params.UID
	if uid == "" {
		uid = "prometheus-" + job
	}

	panels := []jsontree.Value{
		StatPanel(StatPanelOptions{
			PanelOptions: PanelOptions{
				ID:         1,
				Title:      "Targets Up",
				GridPos:    extractor.GridPos{X: 0, Y: 0, W: 6, H: 4},
				Datasource: "prometheus",
				Targets: []jsontree.Value{
					Target(`sum(up{job="`+job+`"})`, "", "A"),
				},
			},
		}),
		TimeseriesPanel(TimeseriesPanelOptions{
			PanelOptions: PanelOptions{
				ID:         2,
				Title:      "Samples Appended",
				GridPos:    extractor.GridPos{X: 6, Y: 0, W: 18, H: 8},
				Datasource: "prometheus",
				Targets: []jsontree.Value{
					Target(`rate(prometheus_tsdb_head_samples_appended_total{job="`+job+`"}[5m])`, "{{instance}}", "A"),
				},
			},
			Unit:    "short",
			Legend:  Legend(LegendOptions{Show: true}),
			Tooltip: Tooltip(TooltipOptions{Mode: "multi"}),
		}),
	}
	return dashboardFrame(title, uid, []string{"prometheus", "metrics"}, "15s", "now-1h", panels...)
}

// Empty builds a bare dashboard scaffold. A missing UID gets a generated
// one so the result is immediately importable.
func Empty(params ScaffoldParams) jsontree.Value {
	title := params.Title
	if title == "" {
		title = "New Dashboard"
	}
	uid := params.UID
	if uid == "" {
		uid = uuid.NewString()
	}
	return dashboardFrame(title, uid, nil, "", "now-6h")
}
