package patterns

import (
	"strings"

	"github.com/prometheus/prometheus/promql/parser"

	"github.com/superlinear-space/jsnonet-transformer/pkg/jsontree"
)

// Query targets are grouped by a canonical form of their "expr" string so
// that formatting-only differences (whitespace, operator spacing) do not
// split a pattern. Grafana template variables are replaced with parseable
// placeholders first; expressions the PromQL parser rejects fall back to
// the raw string. The canonical form is only ever a grouping key; emission
// always uses the original expression.

var grafanaDurationVars = []string{
	"$__rate_interval",
	"$__interval",
	"$__range",
	"${__rate_interval}",
	"${__interval}",
	"${__range}",
}

func canonicalExpr(raw string) string {
	expr, err := parser.ParseExpr(replaceTemplateVars(raw))
	if err != nil {
		return raw
	}
	return expr.String()
}

// normalizeTarget returns a copy of a query-target block with its "expr"
// member replaced by the expression's canonical form.
func normalizeTarget(t jsontree.Value) jsontree.Value {
	expr, ok := t.Field("expr")
	if !ok || expr.Kind() != jsontree.KindString || expr.Text() == "" {
		return t
	}
	canonical := canonicalExpr(expr.Text())
	if canonical == expr.Text() {
		return t
	}
	members := make([]jsontree.Member, 0, t.Len())
	for _, m := range t.Members() {
		if m.Key == "expr" {
			m.Value = jsontree.Str(canonical)
		}
		members = append(members, m)
	}
	return jsontree.Object(members...)
}

// replaceTemplateVars substitutes Grafana template variables with
// placeholders the Prometheus parser accepts: duration variables become a
// literal duration, label value variables become a placeholder string.
func replaceTemplateVars(expr string) string {
	result := expr
	for _, v := range grafanaDurationVars {
		result = strings.ReplaceAll(result, v, "5m")
	}
	return replaceVariableRefs(result)
}

// replaceVariableRefs replaces $var and ${var} references with
// "placeholder".
func replaceVariableRefs(expr string) string {
	var b strings.Builder
	b.Grow(len(expr))
	i := 0
	for i < len(expr) {
		if expr[i] != '$' || i+1 >= len(expr) {
			b.WriteByte(expr[i])
			i++
			continue
		}
		if expr[i+1] == '{' {
			end := strings.IndexByte(expr[i:], '}')
			if end == -1 {
				b.WriteByte(expr[i])
				i++
				continue
			}
			b.WriteString("placeholder")
			i += end + 1
		} else if isIdentStart(expr[i+1]) {
			j := i + 1
			for j < len(expr) && isIdentChar(expr[j]) {
				j++
			}
			b.WriteString("placeholder")
			i = j
		} else {
			b.WriteByte(expr[i])
			i++
		}
	}
	return b.String()
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
