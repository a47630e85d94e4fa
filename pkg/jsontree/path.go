package jsontree

import (
	"strconv"
	"strings"
)

// Path addresses a subtree by object keys and array indices, e.g.
// panels.3.fieldConfig.defaults.thresholds.
type Path []string

func (p Path) String() string { return strings.Join(p, ".") }

// Child returns p extended by one segment. The backing array is copied so
// sibling paths never alias.
func (p Path) Child(seg string) Path {
	c := make(Path, len(p)+1)
	copy(c, p)
	c[len(p)] = seg
	return c
}

// ChildIndex returns p extended by an array index segment.
func (p Path) ChildIndex(i int) Path { return p.Child(strconv.Itoa(i)) }

// Contains reports whether p is an ancestor of (or equal to) other.
func (p Path) Contains(other Path) bool {
	if len(p) > len(other) {
		return false
	}
	for i, seg := range p {
		if other[i] != seg {
			return false
		}
	}
	return true
}

// Overlaps reports whether one path is an ancestor of the other (or they
// are equal), i.e. the addressed subtrees intersect.
func (p Path) Overlaps(other Path) bool {
	return p.Contains(other) || other.Contains(p)
}

// ValueAt resolves a path against root. Numeric segments index arrays,
// other segments look up object keys.
func ValueAt(root Value, p Path) (Value, bool) {
	cur := root
	for _, seg := range p {
		switch cur.Kind() {
		case KindObject:
			next, ok := cur.Field(seg)
			if !ok {
				return Value{}, false
			}
			cur = next
		case KindArray:
			i, err := strconv.Atoi(seg)
			if err != nil {
				return Value{}, false
			}
			next, ok := cur.Index(i)
			if !ok {
				return Value{}, false
			}
			cur = next
		default:
			return Value{}, false
		}
	}
	return cur, true
}

// DiffLeaves lists the paths at which a and b differ, walking a in document
// order. A differing scalar leaf contributes its own path; a structural
// mismatch (different kinds, keys or lengths) contributes the path of the
// mismatching node.
func DiffLeaves(a, b Value) []Path {
	var diffs []Path
	diffLeaves(a, b, Path{}, &diffs)
	return diffs
}

func diffLeaves(a, b Value, at Path, diffs *[]Path) {
	if a.Kind() != b.Kind() {
		*diffs = append(*diffs, at)
		return
	}
	switch a.Kind() {
	case KindArray:
		if len(a.items) != len(b.items) {
			*diffs = append(*diffs, at)
			return
		}
		for i := range a.items {
			diffLeaves(a.items[i], b.items[i], at.ChildIndex(i), diffs)
		}
	case KindObject:
		if !sameKeys(a, b) {
			*diffs = append(*diffs, at)
			return
		}
		for _, m := range a.members {
			bv, _ := b.Field(m.Key)
			diffLeaves(m.Value, bv, at.Child(m.Key), diffs)
		}
	default:
		if !scalarEqual(a, b) {
			*diffs = append(*diffs, at)
		}
	}
}

func sameKeys(a, b Value) bool {
	if len(a.members) != len(b.members) {
		return false
	}
	for _, m := range a.members {
		if _, ok := b.Field(m.Key); !ok {
			return false
		}
	}
	return true
}

func scalarEqual(a, b Value) bool {
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.boolVal == b.boolVal
	case KindNumber:
		return a.numVal == b.numVal
	case KindString:
		return a.strVal == b.strVal
	default:
		return false
	}
}
