package generator

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/superlinear-space/jsnonet-transformer/pkg/extractor"
	"github.com/superlinear-space/jsnonet-transformer/pkg/jsontree"
	"github.com/superlinear-space/jsnonet-transformer/pkg/patterns"
)

// renderMode controls which rewrites apply while walking a value.
type renderMode int

const (
	// modeDoc rewrites claimed occurrence sites to references and calls.
	modeDoc renderMode = iota
	// modeTemplate rewrites parameter paths to parameter references.
	modeTemplate
	// modePlain emits literals only (call arguments, definitions of
	// constants).
	modePlain
)

type writer struct {
	opts     Options
	buf      strings.Builder
	sites    map[string]patterns.SiteRef
	params   map[string]string
	warnings []string
	warned   map[string]bool
}

func newWriter(opts Options) *writer {
	return &writer{opts: opts, warned: make(map[string]bool)}
}

func (w *writer) text() string { return w.buf.String() }

func (w *writer) warn(msg string) {
	if w.warned[msg] {
		return
	}
	w.warned[msg] = true
	w.warnings = append(w.warnings, msg)
}

func (w *writer) ind(level int) string {
	return strings.Repeat(" ", level*w.opts.IndentSize)
}

func (w *writer) rawLine(level int, s string) {
	w.buf.WriteString(w.ind(level) + s + "\n")
}

func (w *writer) commentLine(level int, s string) {
	w.rawLine(level, "// "+s)
}

func (w *writer) blank() { w.buf.WriteByte('\n') }

// writeDefinition emits one plan entry as a local binding or function.
func (w *writer) writeDefinition(e *patterns.Entry) {
	switch e.Kind {
	case patterns.Constant:
		if w.opts.AddComments {
			w.commentLine(0, fmt.Sprintf("Shared %s block (%d occurrences)", e.Role, len(e.Sites)))
		}
		head := "local " + e.Name + " = "
		body := w.render(e.Value, jsontree.Path{}, modePlain, 0, w.opts.MaxLineLength-len(head)-1)
		w.buf.WriteString(head + body + ";\n")
	case patterns.Template:
		if w.opts.AddComments {
			w.commentLine(0, fmt.Sprintf("Template covering %d occurrences", len(e.Sites)))
		}
		names := make([]string, len(e.Params))
		w.params = make(map[string]string, len(e.Params))
		for i, p := range e.Params {
			names[i] = p.Name
			w.params[p.Path.String()] = p.Name
		}
		head := "local " + e.Name + "(" + strings.Join(names, ", ") + ") = "
		body := w.render(e.Value, jsontree.Path{}, modeTemplate, 0, w.opts.MaxLineLength-len(head)-1)
		w.buf.WriteString(head + body + ";\n")
		w.params = nil
	}
}

// writeDashboard emits the main dashboard object, keeping the original
// field order and handling the panel list specially.
func (w *writer) writeDashboard(record *extractor.DashboardRecord) {
	w.buf.WriteString("{")
	for _, m := range record.Root.Members() {
		if m.Key == "panels" {
			w.writePanels(record)
			continue
		}
		key := fieldName(m.Key)
		w.buf.WriteString("\n" + w.ind(1) + key + ": ")
		avail := w.opts.MaxLineLength - w.opts.IndentSize - len(key) - 2
		w.buf.WriteString(w.render(m.Value, jsontree.Path{m.Key}, modeDoc, 1, avail))
		w.buf.WriteString(",")
	}
	w.buf.WriteString("\n}\n")
}

func (w *writer) writePanels(record *extractor.DashboardRecord) {
	if len(record.Panels) == 0 {
		w.buf.WriteString("\n" + w.ind(1) + "panels: [],")
		return
	}
	w.buf.WriteString("\n" + w.ind(1) + "panels: [")
	for i := range record.Panels {
		p := &record.Panels[i]
		if w.opts.AddComments && p.Title != "" {
			w.buf.WriteString("\n" + w.ind(2) + "// " + p.Title)
		}
		w.buf.WriteString("\n" + w.ind(2))
		avail := w.opts.MaxLineLength - 2*w.opts.IndentSize
		w.buf.WriteString(w.render(p.Body, p.Path, modeDoc, 2, avail))
		w.buf.WriteString(",")
	}
	w.buf.WriteString("\n" + w.ind(1) + "],")
}

// render emits v at the given path. Values that fit within avail characters
// stay on one line; larger composites break across lines at the next indent
// level. Tokens are never split.
func (w *writer) render(v jsontree.Value, path jsontree.Path, mode renderMode, level, avail int) string {
	if mode == modeTemplate {
		if name, ok := w.params[path.String()]; ok {
			return name
		}
	}
	if mode == modeDoc {
		if ref, ok := w.sites[path.String()]; ok {
			return w.renderSiteRef(ref, level, avail)
		}
	}

	switch v.Kind() {
	case jsontree.KindArray, jsontree.KindObject:
	default:
		return w.scalar(v, path)
	}

	if s := w.inline(v, path, mode); len(s) <= avail {
		return s
	}

	var b strings.Builder
	switch v.Kind() {
	case jsontree.KindArray:
		b.WriteString("[")
		for i, it := range v.Items() {
			b.WriteString("\n" + w.ind(level+1))
			childAvail := w.opts.MaxLineLength - (level+1)*w.opts.IndentSize
			b.WriteString(w.render(it, path.ChildIndex(i), mode, level+1, childAvail))
			b.WriteString(",")
		}
		b.WriteString("\n" + w.ind(level) + "]")
	case jsontree.KindObject:
		b.WriteString("{")
		for _, m := range v.Members() {
			key := fieldName(m.Key)
			b.WriteString("\n" + w.ind(level+1) + key + ": ")
			childAvail := w.opts.MaxLineLength - (level+1)*w.opts.IndentSize - len(key) - 2
			b.WriteString(w.render(m.Value, path.Child(m.Key), mode, level+1, childAvail))
			b.WriteString(",")
		}
		b.WriteString("\n" + w.ind(level) + "}")
	}
	return b.String()
}

// inline renders v on a single line, applying the same rewrites as render.
func (w *writer) inline(v jsontree.Value, path jsontree.Path, mode renderMode) string {
	if mode == modeTemplate {
		if name, ok := w.params[path.String()]; ok {
			return name
		}
	}
	if mode == modeDoc {
		if ref, ok := w.sites[path.String()]; ok {
			return w.inlineSiteRef(ref)
		}
	}

	switch v.Kind() {
	case jsontree.KindArray:
		if v.Len() == 0 {
			return "[]"
		}
		parts := make([]string, v.Len())
		for i, it := range v.Items() {
			parts[i] = w.inline(it, path.ChildIndex(i), mode)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case jsontree.KindObject:
		if v.Len() == 0 {
			return "{}"
		}
		parts := make([]string, 0, v.Len())
		for _, m := range v.Members() {
			parts = append(parts, fieldName(m.Key)+": "+w.inline(m.Value, path.Child(m.Key), mode))
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	default:
		return w.scalar(v, path)
	}
}

// renderSiteRef emits a claimed site as a binding reference or a template
// call with arguments in declared parameter order.
func (w *writer) renderSiteRef(ref patterns.SiteRef, level, avail int) string {
	if ref.Entry.Kind == patterns.Constant {
		return ref.Entry.Name
	}
	if s := w.inlineSiteRef(ref); len(s) <= avail {
		return s
	}
	var b strings.Builder
	b.WriteString(ref.Entry.Name + "(")
	site := ref.Entry.Sites[ref.Site]
	for i, p := range ref.Entry.Params {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("\n" + w.ind(level+1))
		childAvail := w.opts.MaxLineLength - (level+1)*w.opts.IndentSize
		b.WriteString(w.render(w.argValue(site, p), p.Path, modePlain, level+1, childAvail))
	}
	b.WriteString("\n" + w.ind(level) + ")")
	return b.String()
}

func (w *writer) inlineSiteRef(ref patterns.SiteRef) string {
	if ref.Entry.Kind == patterns.Constant {
		return ref.Entry.Name
	}
	site := ref.Entry.Sites[ref.Site]
	args := make([]string, len(ref.Entry.Params))
	for i, p := range ref.Entry.Params {
		args[i] = w.inline(w.argValue(site, p), p.Path, modePlain)
	}
	return ref.Entry.Name + "(" + strings.Join(args, ", ") + ")"
}

func (w *writer) argValue(site patterns.Site, p patterns.Param) jsontree.Value {
	v, ok := jsontree.ValueAt(site.Value, p.Path)
	if !ok {
		return jsontree.Null()
	}
	return v
}

func (w *writer) scalar(v jsontree.Value, path jsontree.Path) string {
	switch v.Kind() {
	case jsontree.KindNull:
		return "null"
	case jsontree.KindBool:
		if v.Bool() {
			return "true"
		}
		return "false"
	case jsontree.KindNumber:
		return w.number(v.Number(), path)
	case jsontree.KindString:
		return quoteString(v.Text())
	default:
		return "null"
	}
}

// number renders f locale-independently. Non-finite values degrade to null
// with a warning instead of aborting the run.
func (w *writer) number(f float64, path jsontree.Path) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		emitErr := &EmitError{Path: path.String(), Msg: "non-finite number"}
		w.warn(emitErr.Error() + "; emitted null")
		return "null"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// fieldName emits an object key: bare when it is a valid identifier,
// quoted otherwise.
func fieldName(key string) string {
	if patterns.IsIdentifier(key) {
		return key
	}
	return quoteString(key)
}

// quoteString renders s as a single-quoted Jsonnet string literal.
func quoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\'':
			b.WriteString(`\'`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('\'')
	return b.String()
}
