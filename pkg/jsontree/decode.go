package jsontree

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/francoispqt/gojay"
)

// Parse decodes raw JSON into a Value. Unlike encoding/json's map decoding,
// object member order is preserved exactly as it appears in the input, which
// the generator relies on for faithful field ordering. A duplicate object
// key keeps the first key's position and the last value.
//
// The bytes are checked with json.Valid before decoding: gojay's embedded
// decode does not terminate on truncated composites, so only known-valid
// input may reach the builders.
func Parse(data []byte) (Value, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Value{}, fmt.Errorf("parsing JSON: empty input")
	}
	if !json.Valid(trimmed) {
		return Value{}, fmt.Errorf("parsing JSON: invalid input")
	}
	return parseValue(trimmed)
}

// parseValue decodes one already-validated JSON value. The builders recurse
// through here so validation runs once per Parse call, not per subtree.
func parseValue(data []byte) (Value, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Value{}, fmt.Errorf("parsing JSON: empty value")
	}

	switch trimmed[0] {
	case '{':
		b := &objectBuilder{}
		if err := gojay.Unmarshal(trimmed, b); err != nil {
			return Value{}, fmt.Errorf("parsing JSON object: %w", err)
		}
		return Value{kind: KindObject, members: b.members}, nil
	case '[':
		b := &arrayBuilder{}
		if err := gojay.Unmarshal(trimmed, b); err != nil {
			return Value{}, fmt.Errorf("parsing JSON array: %w", err)
		}
		return Value{kind: KindArray, items: b.items}, nil
	case '"':
		var s string
		if err := gojay.Unmarshal(trimmed, &s); err != nil {
			return Value{}, fmt.Errorf("parsing JSON string: %w", err)
		}
		return Str(s), nil
	case 't', 'f':
		var b bool
		if err := gojay.Unmarshal(trimmed, &b); err != nil {
			return Value{}, fmt.Errorf("parsing JSON bool: %w", err)
		}
		return Boolean(b), nil
	case 'n':
		if !bytes.Equal(trimmed, []byte("null")) {
			return Value{}, fmt.Errorf("parsing JSON: invalid literal %q", trimmed)
		}
		return Null(), nil
	default:
		var f float64
		if err := gojay.Unmarshal(trimmed, &f); err != nil {
			return Value{}, fmt.Errorf("parsing JSON number: %w", err)
		}
		return Number(f), nil
	}
}

// objectBuilder collects members in stream order. gojay invokes
// UnmarshalJSONObject once per key, in document order, which is what makes
// the order-preserving decode possible.
type objectBuilder struct {
	members []Member
}

func (b *objectBuilder) UnmarshalJSONObject(dec *gojay.Decoder, key string) error {
	var raw gojay.EmbeddedJSON
	if err := dec.EmbeddedJSON(&raw); err != nil {
		return err
	}
	child, err := parseValue(raw)
	if err != nil {
		return err
	}
	for i := range b.members {
		if b.members[i].Key == key {
			b.members[i].Value = child
			return nil
		}
	}
	b.members = append(b.members, Member{Key: key, Value: child})
	return nil
}

func (b *objectBuilder) NKeys() int { return 0 }

type arrayBuilder struct {
	items []Value
}

func (b *arrayBuilder) UnmarshalJSONArray(dec *gojay.Decoder) error {
	var raw gojay.EmbeddedJSON
	if err := dec.EmbeddedJSON(&raw); err != nil {
		return err
	}
	child, err := parseValue(raw)
	if err != nil {
		return err
	}
	b.items = append(b.items, child)
	return nil
}
