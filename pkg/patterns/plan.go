// Package patterns finds structural repetition across a dashboard's panels
// and decides what to extract: byte-identical subtrees become constant
// bindings, near-identical subtrees become parameterized template functions.
package patterns

import (
	"github.com/superlinear-space/jsnonet-transformer/pkg/jsontree"
)

// ConfigError reports an invalid option value. It is fatal and fails
// before any stage runs.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "invalid configuration: " + e.Msg }

// Kind classifies an extraction entry.
type Kind int

const (
	// Constant is a binding for a value that is byte-identical across all
	// its occurrence sites.
	Constant Kind = iota
	// Template is a function parameterized over the leaf fields that vary
	// across its occurrence sites.
	Template
)

func (k Kind) String() string {
	if k == Template {
		return "template"
	}
	return "constant"
}

// Site is one occurrence of a pattern: where the subtree sits in the
// document, its position in the single analysis pass, and the original
// value found there.
type Site struct {
	Path  jsontree.Path
	Seq   int
	Value jsontree.Value
}

// Param is one inferred template parameter: the identifier it binds and the
// path, relative to the pattern root, whose value varies across sites.
type Param struct {
	Name string
	Path jsontree.Path
}

// Entry is one accepted extraction: a named constant binding or template
// function, its representative value, and every occurrence site it claims.
type Entry struct {
	Name        string
	Kind        Kind
	Role        string
	Fingerprint uint64
	// Value is the first occurrence's subtree. For constants it is the
	// shared value; for templates it is the skeleton source whose differing
	// leaves become parameter references.
	Value  jsontree.Value
	Params []Param
	Sites  []Site
	// Size is the canonical byte size of Value, used for ranking.
	Size      int
	FirstSeen int
}

// Occurrences returns the number of sites the entry claims.
func (e *Entry) Occurrences() int { return len(e.Sites) }

// ExtractionPlan is the final, non-overlapping, ranked extraction set.
// It is built once per transform call and never mutated afterwards.
type ExtractionPlan struct {
	Entries     []Entry
	Suggestions []string
}

// SiteIndex maps every claimed site path to its entry and the index of the
// site within that entry. Consumed by the generator when rewriting
// occurrence sites.
func (p *ExtractionPlan) SiteIndex() map[string]SiteRef {
	index := make(map[string]SiteRef)
	for i := range p.Entries {
		for j, s := range p.Entries[i].Sites {
			index[s.Path.String()] = SiteRef{Entry: &p.Entries[i], Site: j}
		}
	}
	return index
}

// SiteRef points back from an occurrence site to its plan entry.
type SiteRef struct {
	Entry *Entry
	Site  int
}
