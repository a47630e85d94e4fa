package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/superlinear-space/jsnonet-transformer/pkg/patterns"
	"github.com/superlinear-space/jsnonet-transformer/pkg/transform"
)

// TextFormatter renders a human-readable transform report.
type TextFormatter struct{}

func (f *TextFormatter) Format(w io.Writer, result *transform.Result) error {
	if !result.Success {
		fmt.Fprintln(w, "Transformation failed.")
		for _, e := range result.Errors {
			fmt.Fprintf(w, "  error: %s\n", e)
		}
		for _, warning := range result.Warnings {
			fmt.Fprintf(w, "  warning: %s\n", warning)
		}
		return nil
	}

	stats := result.Stats
	fmt.Fprintf(w, "Dashboard: %s", stats.Title)
	if stats.UID != "" {
		fmt.Fprintf(w, " (%s)", stats.UID)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Panels:    %d  |  Targets: %d\n", stats.TotalPanels, stats.TotalTargets)
	if len(stats.PanelTypes) > 0 {
		parts := make([]string, len(stats.PanelTypes))
		for i, tc := range stats.PanelTypes {
			parts[i] = fmt.Sprintf("%s ×%d", tc.Type, tc.Count)
		}
		fmt.Fprintf(w, "Types:     %s\n", strings.Join(parts, ", "))
	}
	if len(stats.Datasources) > 0 {
		fmt.Fprintf(w, "Sources:   %s\n", strings.Join(stats.Datasources, ", "))
	}
	fmt.Fprintln(w, strings.Repeat("─", 70))

	if result.Plan == nil || len(result.Plan.Entries) == 0 {
		fmt.Fprintln(w, "No repeated patterns extracted.")
	} else {
		fmt.Fprintf(w, "Extracted %d pattern(s):\n\n", len(result.Plan.Entries))
		for _, e := range result.Plan.Entries {
			switch e.Kind {
			case patterns.Constant:
				fmt.Fprintf(w, "  const     %-24s %d occurrence%s\n",
					e.Name, len(e.Sites), plural(len(e.Sites)))
			case patterns.Template:
				fmt.Fprintf(w, "  template  %-24s %d occurrence%s, %d parameter%s\n",
					e.Name, len(e.Sites), plural(len(e.Sites)),
					len(e.Params), plural(len(e.Params)))
			}
		}
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintln(w)
		for _, warning := range result.Warnings {
			fmt.Fprintf(w, "  warning: %s\n", warning)
		}
	}
	return nil
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
