package jsontree

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalSortsKeys(t *testing.T) {
	a, err := Parse([]byte(`{"b": 1, "a": {"y": true, "x": false}}`))
	require.NoError(t, err)
	assert.Equal(t, `{"a":{"x":false,"y":true},"b":1}`, string(Canonical(a)))
}

func TestFingerprintKeyOrderInsensitive(t *testing.T) {
	a, err := Parse([]byte(`{"mode": "absolute", "steps": [1, 2]}`))
	require.NoError(t, err)
	b, err := Parse([]byte(`{"steps": [1, 2], "mode": "absolute"}`))
	require.NoError(t, err)

	assert.Equal(t, Fingerprint(a), Fingerprint(b))
	assert.True(t, Equal(a, b))
}

func TestFingerprintArrayOrderSensitive(t *testing.T) {
	a := Array(Integer(1), Integer(2))
	b := Array(Integer(2), Integer(1))
	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))
}

func TestShapeFingerprintMasksScalars(t *testing.T) {
	a, err := Parse([]byte(`{"title": "CPU", "id": 1, "gridPos": {"x": 0}}`))
	require.NoError(t, err)
	b, err := Parse([]byte(`{"title": "Memory", "id": 2, "gridPos": {"x": 6}}`))
	require.NoError(t, err)
	c, err := Parse([]byte(`{"title": "Disk", "id": 3}`))
	require.NoError(t, err)

	assert.Equal(t, ShapeFingerprint(a), ShapeFingerprint(b))
	assert.NotEqual(t, ShapeFingerprint(a), ShapeFingerprint(c))
}

func TestCanonicalNumbers(t *testing.T) {
	assert.Equal(t, "3", string(Canonical(Number(3.0))))
	assert.Equal(t, "2.5", string(Canonical(Number(2.5))))
	assert.Equal(t, "-17", string(Canonical(Integer(-17))))
	assert.Equal(t, "null", string(Canonical(Number(math.NaN()))))
	assert.Equal(t, "null", string(Canonical(Number(math.Inf(1)))))
}

func TestCanonicalStringEscapes(t *testing.T) {
	assert.Equal(t, `"a\"b\\c\nd"`, string(Canonical(Str("a\"b\\c\nd"))))
	assert.Equal(t, `"\u0001"`, string(Canonical(Str("\x01"))))
}

func TestStripFields(t *testing.T) {
	v, err := Parse([]byte(`{"id": 1, "type": "stat", "title": "CPU"}`))
	require.NoError(t, err)

	stripped := StripFields(v, "id", "title")
	require.Equal(t, 1, stripped.Len())
	typ, ok := stripped.Field("type")
	require.True(t, ok)
	assert.Equal(t, "stat", typ.Text())

	// Non-objects pass through unchanged.
	assert.Equal(t, KindNumber, StripFields(Integer(5), "id").Kind())
}
