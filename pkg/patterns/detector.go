package patterns

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/superlinear-space/jsnonet-transformer/pkg/extractor"
	"github.com/superlinear-space/jsnonet-transformer/pkg/jsontree"
)

// maxTemplateParams bounds parameter inference: a group whose members
// diverge in more leaves than this is too varied to be a useful template.
const maxTemplateParams = 6

// identityFields are the panel fields that carry identity rather than
// structure. They are stripped before fingerprinting and collapse to
// whole-field parameters during inference.
var identityFields = map[string]bool{"id": true, "title": true, "gridPos": true}

// Detector scans a dashboard record for repeated substructures.
type Detector struct {
	// MinOccurrences is the smallest group size worth extracting. Must be
	// at least 1.
	MinOccurrences int
	// CreateTemplates permits parameterized template extraction. When
	// false only constant bindings are produced.
	CreateTemplates bool
}

// Detect builds the extraction plan for record. The context deadline is
// checked once per panel so pathologically large dashboards stay bounded.
func (d *Detector) Detect(ctx context.Context, record *extractor.DashboardRecord) (*ExtractionPlan, error) {
	if d.MinOccurrences < 1 {
		return nil, &ConfigError{Msg: fmt.Sprintf("minimum occurrences must be at least 1, got %d", d.MinOccurrences)}
	}

	c := newCollector(d.CreateTemplates)
	for i := range record.Panels {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("pattern scan interrupted: %w", err)
		}
		c.collectPanel(&record.Panels[i])
	}

	candidates := c.candidates(d.MinOccurrences, d.CreateTemplates)
	rankCandidates(candidates)
	accepted := resolveOverlap(candidates)
	assignNames(accepted)

	return &ExtractionPlan{
		Entries:     accepted,
		Suggestions: buildSuggestions(accepted),
	}, nil
}

// group accumulates occurrence sites that share a fingerprint.
type group struct {
	role      string
	fp        uint64
	sites     []Site
	firstSeen int
	firstRaw  []byte
	identical bool
}

type collector struct {
	createTemplates bool
	seq             int

	exact      map[uint64]*group
	exactOrder []uint64
	shape      map[string]*group
	shapeOrder []string
}

func newCollector(createTemplates bool) *collector {
	return &collector{
		createTemplates: createTemplates,
		exact:           make(map[uint64]*group),
		shape:           make(map[string]*group),
	}
}

// addExact records one occurrence in an exact-fingerprint group. keyValue is
// the value used for grouping (query targets are grouped by their
// PromQL-normalized form); raw is what the site actually holds.
func (c *collector) addExact(role string, path jsontree.Path, raw, keyValue jsontree.Value) {
	fp := jsontree.Fingerprint(keyValue)
	g, ok := c.exact[fp]
	if !ok {
		g = &group{role: role, fp: fp, firstSeen: c.seq, firstRaw: jsontree.Canonical(raw), identical: true}
		c.exact[fp] = g
		c.exactOrder = append(c.exactOrder, fp)
	} else if g.identical && !bytes.Equal(jsontree.Canonical(raw), g.firstRaw) {
		g.identical = false
	}
	g.sites = append(g.sites, Site{Path: path, Seq: c.seq, Value: raw})
	c.seq++
}

// addShape records a whole-panel body in a shape group keyed by panel type
// plus masked-leaf structure. Identity fields are stripped before
// fingerprinting so their presence or inner shape never splits a group.
func (c *collector) addShape(role string, path jsontree.Path, body jsontree.Value, rawType string) {
	stripped := jsontree.StripFields(body, "id", "title", "gridPos")
	key := rawType + "|" + strconv.FormatUint(jsontree.ShapeFingerprint(stripped), 16)
	g, ok := c.shape[key]
	if !ok {
		g = &group{role: role, fp: jsontree.ShapeFingerprint(stripped), firstSeen: c.seq}
		c.shape[key] = g
		c.shapeOrder = append(c.shapeOrder, key)
	}
	g.sites = append(g.sites, Site{Path: path, Seq: c.seq, Value: body})
	c.seq++
}

// subBlockRoles lists the per-panel member paths scanned for exact
// repetition, with the semantic role each contributes to generated names.
var subBlockRoles = []struct {
	role string
	path []string
}{
	{"thresholds", []string{"fieldConfig", "defaults", "thresholds"}},
	{"thresholds", []string{"thresholds"}},
	{"colors", []string{"colors"}},
	{"legend", []string{"legend"}},
	{"legend", []string{"options", "legend"}},
	{"tooltip", []string{"tooltip"}},
	{"tooltip", []string{"options", "tooltip"}},
	{"grid", []string{"grid"}},
	{"xaxis", []string{"xaxis"}},
	{"yaxes", []string{"yaxes"}},
	{"fieldConfig", []string{"fieldConfig"}},
	{"options", []string{"options"}},
}

func (c *collector) collectPanel(p *extractor.PanelRecord) {
	for _, sb := range subBlockRoles {
		v, ok := jsontree.ValueAt(p.Body, jsontree.Path(sb.path))
		if !ok || !extractable(v) {
			continue
		}
		c.addExact(sb.role, append(append(jsontree.Path{}, p.Path...), sb.path...), v, v)
	}

	if ds, ok := p.Body.Field("datasource"); ok && !ds.IsNull() {
		c.addExact("datasource", p.Path.Child("datasource"), ds, ds)
	}

	if targets, ok := p.Body.Field("targets"); ok {
		base := p.Path.Child("targets")
		for i, t := range targets.Items() {
			if !extractable(t) {
				continue
			}
			c.addExact("target", base.ChildIndex(i), t, normalizeTarget(t))
		}
	}

	// Whole panel bodies only ever become templates: panel ids are unique
	// by invariant, so a constant binding could never cover the identity
	// fields of more than one site.
	if c.createTemplates && p.Body.Kind() == jsontree.KindObject && p.Body.Len() > 0 {
		c.addShape(panelRole(p), p.Path, p.Body, p.RawType)
	}
}

// extractable rejects values too small to be worth a binding: scalars and
// empty composites.
func extractable(v jsontree.Value) bool {
	switch v.Kind() {
	case jsontree.KindArray, jsontree.KindObject:
		return v.Len() > 0
	default:
		return false
	}
}

func panelRole(p *extractor.PanelRecord) string {
	if p.Type != extractor.PanelOther {
		return p.Type.String() + "Panel"
	}
	name := sanitizeIdentifier(p.RawType)
	if name == "" {
		return "panel"
	}
	return name + "Panel"
}

// candidates materializes qualifying groups into plan entries: exact groups
// with byte-identical members become constants, everything else goes through
// template inference when permitted.
func (c *collector) candidates(minOccurrences int, createTemplates bool) []Entry {
	var entries []Entry
	for _, fp := range c.exactOrder {
		g := c.exact[fp]
		if len(g.sites) < minOccurrences {
			continue
		}
		if g.identical {
			entries = append(entries, Entry{
				Kind:        Constant,
				Role:        g.role,
				Fingerprint: g.fp,
				Value:       g.sites[0].Value,
				Sites:       g.sites,
				Size:        len(g.firstRaw),
				FirstSeen:   g.firstSeen,
			})
			continue
		}
		if createTemplates {
			if e, ok := inferTemplate(g); ok {
				entries = append(entries, e)
			}
		}
	}
	for _, key := range c.shapeOrder {
		g := c.shape[key]
		if len(g.sites) < minOccurrences {
			continue
		}
		if e, ok := inferTemplate(g); ok {
			entries = append(entries, e)
		}
	}
	return entries
}

// inferTemplate derives a template entry from a group whose members differ
// in a small set of leaves. The parameter list is the set of differing
// paths in document order of the first occurrence; paths under an identity
// field collapse to the whole field.
func inferTemplate(g *group) (Entry, bool) {
	rep := g.sites[0].Value
	seen := make(map[string]bool)
	var diffs []jsontree.Path
	for _, s := range g.sites[1:] {
		for _, dp := range jsontree.DiffLeaves(rep, s.Value) {
			if len(dp) == 0 {
				// Root-level structural mismatch; nothing to parameterize.
				return Entry{}, false
			}
			dp = collapseIdentity(dp)
			if key := dp.String(); !seen[key] {
				seen[key] = true
				diffs = append(diffs, dp)
			}
		}
	}

	if len(diffs) == 0 {
		// Members are byte-identical; a constant binding covers them.
		return Entry{
			Kind:        Constant,
			Role:        g.role,
			Fingerprint: g.fp,
			Value:       rep,
			Sites:       g.sites,
			Size:        len(jsontree.Canonical(rep)),
			FirstSeen:   g.firstSeen,
		}, true
	}
	if len(diffs) > maxTemplateParams {
		return Entry{}, false
	}

	// Every parameter path must resolve at every site, and non-identity
	// parameters must be scalar leaves.
	for _, dp := range diffs {
		for _, s := range g.sites {
			v, ok := jsontree.ValueAt(s.Value, dp)
			if !ok {
				return Entry{}, false
			}
			if !identityFields[dp[0]] && !v.IsScalar() {
				return Entry{}, false
			}
		}
	}

	orderPaths(rep, diffs)
	params := make([]Param, len(diffs))
	used := make(map[string]int)
	for i, dp := range diffs {
		params[i] = Param{Name: uniqueParamName(paramName(dp), used), Path: dp}
	}

	return Entry{
		Kind:        Template,
		Role:        g.role,
		Fingerprint: g.fp,
		Value:       rep,
		Params:      params,
		Sites:       g.sites,
		Size:        len(jsontree.Canonical(rep)),
		FirstSeen:   g.firstSeen,
	}, true
}

// collapseIdentity widens a differing path under id/title/gridPos to the
// whole top-level field, so call sites pass gridPos objects wholesale.
func collapseIdentity(p jsontree.Path) jsontree.Path {
	if identityFields[p[0]] {
		return jsontree.Path{p[0]}
	}
	return p
}

// orderPaths sorts paths by the position at which each first appears in a
// depth-first walk of the representative value, i.e. document order.
func orderPaths(rep jsontree.Value, paths []jsontree.Path) {
	pos := make(map[string]int)
	counter := 0
	var walk func(v jsontree.Value, at jsontree.Path)
	walk = func(v jsontree.Value, at jsontree.Path) {
		pos[at.String()] = counter
		counter++
		switch v.Kind() {
		case jsontree.KindArray:
			for i, it := range v.Items() {
				walk(it, at.ChildIndex(i))
			}
		case jsontree.KindObject:
			for _, m := range v.Members() {
				walk(m.Value, at.Child(m.Key))
			}
		}
	}
	walk(rep, jsontree.Path{})
	sort.SliceStable(paths, func(i, j int) bool {
		return pos[paths[i].String()] < pos[paths[j].String()]
	})
}

// rankCandidates orders entries by occurrence count, then subtree size, then
// first-seen position. The sort is stable over explicit sequence numbers so
// ties never depend on map iteration order.
func rankCandidates(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if len(entries[i].Sites) != len(entries[j].Sites) {
			return len(entries[i].Sites) > len(entries[j].Sites)
		}
		if entries[i].Size != entries[j].Size {
			return entries[i].Size > entries[j].Size
		}
		return entries[i].FirstSeen < entries[j].FirstSeen
	})
}

// resolveOverlap accepts candidates in rank order, rejecting any whose
// sites sit inside, contain, or duplicate an already-claimed subtree. The
// result satisfies the containment property: accepted sites never partially
// overlap.
func resolveOverlap(ranked []Entry) []Entry {
	var accepted []Entry
	var claimed []jsontree.Path
	for _, e := range ranked {
		conflict := false
		for _, s := range e.Sites {
			for _, cp := range claimed {
				if cp.Overlaps(s.Path) {
					conflict = true
					break
				}
			}
			if conflict {
				break
			}
		}
		if conflict {
			continue
		}
		accepted = append(accepted, e)
		for _, s := range e.Sites {
			claimed = append(claimed, s.Path)
		}
	}
	return accepted
}

// assignNames gives each accepted entry a unique identifier derived from
// its semantic role: thresholds, thresholds2, ...
func assignNames(entries []Entry) {
	used := make(map[string]int)
	for i := range entries {
		base := sanitizeIdentifier(entries[i].Role)
		if base == "" {
			base = "pattern"
		}
		used[base]++
		if n := used[base]; n > 1 {
			entries[i].Name = base + strconv.Itoa(n)
		} else {
			entries[i].Name = base
		}
	}
}

func buildSuggestions(entries []Entry) []string {
	var suggestions []string
	for _, e := range entries {
		switch e.Kind {
		case Constant:
			suggestions = append(suggestions, fmt.Sprintf(
				"Extract repeated %s block to local variable %q (%d occurrences)",
				e.Role, e.Name, len(e.Sites)))
		case Template:
			suggestions = append(suggestions, fmt.Sprintf(
				"Create %s template function covering %d occurrences (%d parameters)",
				e.Name, len(e.Sites), len(e.Params)))
		}
	}
	return suggestions
}

// paramName derives an identifier from the last meaningful path segment.
func paramName(p jsontree.Path) string {
	for i := len(p) - 1; i >= 0; i-- {
		if _, err := strconv.Atoi(p[i]); err == nil {
			continue
		}
		if name := sanitizeIdentifier(p[i]); name != "" {
			return name
		}
	}
	return "value"
}

func uniqueParamName(base string, used map[string]int) string {
	used[base]++
	if n := used[base]; n > 1 {
		return base + strconv.Itoa(n)
	}
	return base
}

// jsonnetKeywords are reserved words that cannot be used as identifiers in
// the generated source.
var jsonnetKeywords = map[string]bool{
	"assert": true, "else": true, "error": true, "false": true, "for": true,
	"function": true, "if": true, "import": true, "importstr": true,
	"in": true, "local": true, "null": true, "self": true, "super": true,
	"tailstrict": true, "then": true, "true": true,
}

// IsIdentifier reports whether name is a valid Jsonnet identifier.
func IsIdentifier(name string) bool {
	if name == "" || jsonnetKeywords[name] {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if i == 0 && !isIdentStart(c) {
			return false
		}
		if i > 0 && !isIdentChar(c) {
			return false
		}
	}
	return true
}

// sanitizeIdentifier turns an arbitrary tag into a valid identifier:
// separator-delimited words are camel-cased, other illegal characters are
// dropped, and keywords get a suffix.
func sanitizeIdentifier(s string) string {
	var b strings.Builder
	upperNext := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case isIdentChar(c):
			if b.Len() == 0 && !isIdentStart(c) {
				continue
			}
			if upperNext && c >= 'a' && c <= 'z' {
				c = c - 'a' + 'A'
			}
			upperNext = false
			b.WriteByte(c)
		case c == '-' || c == '.' || c == ' ' || c == '/':
			upperNext = true
		}
	}
	name := b.String()
	if jsonnetKeywords[name] {
		name += "Value"
	}
	return name
}
