package jsontree

import (
	"math"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// maxExactInt is the largest float64 magnitude at which every integer is
// exactly representable. Integral numbers within this range are rendered
// without a fractional part.
const maxExactInt = 1 << 53

// Canonical renders v as deterministic compact JSON: object keys sorted,
// no whitespace, stable number and string formatting. Two values have equal
// canonical bytes iff they are structurally equal modulo object key order.
func Canonical(v Value) []byte {
	return appendCanonical(nil, v, false)
}

// Fingerprint returns a content hash of v's canonical form. Key insertion
// order never affects the result.
func Fingerprint(v Value) uint64 {
	return xxhash.Sum64(Canonical(v))
}

// ShapeFingerprint hashes v with every scalar leaf masked, so two values
// share a shape fingerprint iff they have identical structure and keys but
// possibly different leaf values.
func ShapeFingerprint(v Value) uint64 {
	return xxhash.Sum64(appendCanonical(nil, v, true))
}

func appendCanonical(dst []byte, v Value, maskScalars bool) []byte {
	if maskScalars && v.IsScalar() {
		return append(dst, '*')
	}
	switch v.kind {
	case KindNull:
		return append(dst, "null"...)
	case KindBool:
		if v.boolVal {
			return append(dst, "true"...)
		}
		return append(dst, "false"...)
	case KindNumber:
		return appendCanonicalNumber(dst, v.numVal)
	case KindString:
		return appendCanonicalString(dst, v.strVal)
	case KindArray:
		dst = append(dst, '[')
		for i, it := range v.items {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = appendCanonical(dst, it, maskScalars)
		}
		return append(dst, ']')
	case KindObject:
		idx := make([]int, len(v.members))
		for i := range idx {
			idx[i] = i
		}
		sort.Slice(idx, func(a, b int) bool {
			return v.members[idx[a]].Key < v.members[idx[b]].Key
		})
		dst = append(dst, '{')
		for i, mi := range idx {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = appendCanonicalString(dst, v.members[mi].Key)
			dst = append(dst, ':')
			dst = appendCanonical(dst, v.members[mi].Value, maskScalars)
		}
		return append(dst, '}')
	default:
		return append(dst, "null"...)
	}
}

// appendCanonicalNumber renders f locale-independently. Non-finite values
// cannot appear in JSON input but can in programmatically built trees; they
// canonicalize to null so fingerprinting stays total.
func appendCanonicalNumber(dst []byte, f float64) []byte {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return append(dst, "null"...)
	}
	if f == math.Trunc(f) && math.Abs(f) < maxExactInt {
		return strconv.AppendInt(dst, int64(f), 10)
	}
	return strconv.AppendFloat(dst, f, 'g', -1, 64)
}

const hexDigits = "0123456789abcdef"

func appendCanonicalString(dst []byte, s string) []byte {
	dst = append(dst, '"')
	for _, r := range s {
		switch r {
		case '"':
			dst = append(dst, '\\', '"')
		case '\\':
			dst = append(dst, '\\', '\\')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\t':
			dst = append(dst, '\\', 't')
		case '\r':
			dst = append(dst, '\\', 'r')
		default:
			if r < 0x20 {
				dst = append(dst, '\\', 'u', '0', '0', hexDigits[r>>4], hexDigits[r&0xf])
			} else {
				dst = append(dst, string(r)...)
			}
		}
	}
	return append(dst, '"')
}

// StripFields returns v without the named top-level object keys. Non-object
// values are returned unchanged. Used to erase identity-only fields before
// fingerprinting panel bodies.
func StripFields(v Value, keys ...string) Value {
	if v.kind != KindObject {
		return v
	}
	kept := make([]Member, 0, len(v.members))
	for _, m := range v.members {
		drop := false
		for _, k := range keys {
			if m.Key == k {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, m)
		}
	}
	return Value{kind: KindObject, members: kept}
}
