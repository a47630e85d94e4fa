// Package jsontree provides an order-preserving tree representation for
// JSON-shaped data. Every value in the pipeline, from raw dashboards to
// programmatically built panels, is a Value, so consumers switch on an
// explicit kind instead of runtime type inspection.
package jsontree

import "bytes"

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a tagged variant over null, bool, number, string, array and
// object. The zero Value is null. Object members keep insertion order;
// arrays keep element order.
type Value struct {
	kind    Kind
	boolVal bool
	numVal  float64
	strVal  string
	items   []Value
	members []Member
}

// Member is a single key/value entry of an object.
type Member struct {
	Key   string
	Value Value
}

// Pair builds an object member.
func Pair(key string, v Value) Member { return Member{Key: key, Value: v} }

// Null returns the null value.
func Null() Value { return Value{} }

// Boolean returns a bool value.
func Boolean(b bool) Value { return Value{kind: KindBool, boolVal: b} }

// Number returns a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, numVal: f} }

// Integer returns a numeric value from an int.
func Integer(n int) Value { return Number(float64(n)) }

// Str returns a string value.
func Str(s string) Value { return Value{kind: KindString, strVal: s} }

// Array returns an array value holding the given items in order.
func Array(items ...Value) Value {
	return Value{kind: KindArray, items: items}
}

// Object returns an object value holding the given members in order.
// A repeated key replaces the earlier member's value in place, keeping the
// first key's position, so object keys stay unique.
func Object(members ...Member) Value {
	v := Value{kind: KindObject}
	for _, m := range members {
		v.setMember(m.Key, m.Value)
	}
	return v
}

func (v *Value) setMember(key string, val Value) {
	for i := range v.members {
		if v.members[i].Key == key {
			v.members[i].Value = val
			return
		}
	}
	v.members = append(v.members, Member{Key: key, Value: val})
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean payload; false for non-bool values.
func (v Value) Bool() bool { return v.boolVal }

// Number returns the numeric payload; 0 for non-number values.
func (v Value) Number() float64 { return v.numVal }

// Text returns the string payload; "" for non-string values.
func (v Value) Text() string { return v.strVal }

// Items returns the array elements. The returned slice must not be mutated.
func (v Value) Items() []Value { return v.items }

// Members returns the object members in insertion order. The returned slice
// must not be mutated.
func (v Value) Members() []Member { return v.members }

// Len returns the element count for arrays, the member count for objects,
// and 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.items)
	case KindObject:
		return len(v.members)
	default:
		return 0
	}
}

// Field looks up an object member by key.
func (v Value) Field(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	for _, m := range v.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// FieldOr looks up an object member by key, falling back to def.
func (v Value) FieldOr(key string, def Value) Value {
	if f, ok := v.Field(key); ok {
		return f
	}
	return def
}

// Index returns the i-th array element.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindArray || i < 0 || i >= len(v.items) {
		return Value{}, false
	}
	return v.items[i], true
}

// StringOr returns the string payload, or def when v is not a string.
func (v Value) StringOr(def string) string {
	if v.kind == KindString {
		return v.strVal
	}
	return def
}

// IntOr returns the numeric payload truncated to int, or def when v is not
// a number.
func (v Value) IntOr(def int) int {
	if v.kind == KindNumber {
		return int(v.numVal)
	}
	return def
}

// IsScalar reports whether v is a leaf (null, bool, number or string).
func (v Value) IsScalar() bool {
	return v.kind != KindArray && v.kind != KindObject
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	switch v.kind {
	case KindArray:
		items := make([]Value, len(v.items))
		for i, it := range v.items {
			items[i] = it.Clone()
		}
		return Value{kind: KindArray, items: items}
	case KindObject:
		members := make([]Member, len(v.members))
		for i, m := range v.members {
			members[i] = Member{Key: m.Key, Value: m.Value.Clone()}
		}
		return Value{kind: KindObject, members: members}
	default:
		return v
	}
}

// Equal reports structural equality. Object comparison is insensitive to key
// insertion order; array comparison is order-sensitive.
func Equal(a, b Value) bool {
	return bytes.Equal(Canonical(a), Canonical(b))
}

// String renders v as compact canonical JSON (sorted object keys). Intended
// for diagnostics, not round-tripping.
func (v Value) String() string { return string(Canonical(v)) }
