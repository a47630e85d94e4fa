package jsontree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePreservesMemberOrder(t *testing.T) {
	v, err := Parse([]byte(`{"zebra": 1, "alpha": 2, "mid": {"b": true, "a": false}}`))
	require.NoError(t, err)
	require.Equal(t, KindObject, v.Kind())

	keys := make([]string, 0, v.Len())
	for _, m := range v.Members() {
		keys = append(keys, m.Key)
	}
	assert.Equal(t, []string{"zebra", "alpha", "mid"}, keys)

	mid, ok := v.Field("mid")
	require.True(t, ok)
	assert.Equal(t, "b", mid.Members()[0].Key)
	assert.Equal(t, "a", mid.Members()[1].Key)
}

func TestParseDuplicateKey(t *testing.T) {
	v, err := Parse([]byte(`{"a": 1, "b": 2, "a": 3}`))
	require.NoError(t, err)

	require.Equal(t, 2, v.Len())
	assert.Equal(t, "a", v.Members()[0].Key)
	assert.Equal(t, 3.0, v.Members()[0].Value.Number())
}

func TestParseScalars(t *testing.T) {
	tests := []struct {
		input string
		kind  Kind
	}{
		{`"hello"`, KindString},
		{`true`, KindBool},
		{`false`, KindBool},
		{`null`, KindNull},
		{`42.5`, KindNumber},
		{`-7`, KindNumber},
		{`[1, "two", null]`, KindArray},
	}
	for _, tt := range tests {
		v, err := Parse([]byte(tt.input))
		require.NoError(t, err, "input %s", tt.input)
		assert.Equal(t, tt.kind, v.Kind(), "input %s", tt.input)
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"nope",
		`{"a":`,
		`{"a": {"b":`,
		`{"a": 1`,
		`{"a" 1}`,
		`[1, 2`,
		`{"panels": [{"id":`,
		`"unterminated`,
	}
	for _, input := range inputs {
		_, err := Parse([]byte(input))
		assert.Error(t, err, "input %q", input)
	}
}

func TestParseNestedArrays(t *testing.T) {
	v, err := Parse([]byte(`[[1, 2], [], {"k": [3]}]`))
	require.NoError(t, err)
	require.Equal(t, 3, v.Len())

	first, ok := v.Index(0)
	require.True(t, ok)
	assert.Equal(t, 2, first.Len())

	second, ok := v.Index(1)
	require.True(t, ok)
	assert.Equal(t, 0, second.Len())
}

func TestObjectBuilderDedupesKeys(t *testing.T) {
	v := Object(
		Pair("a", Integer(1)),
		Pair("b", Integer(2)),
		Pair("a", Integer(3)),
	)
	require.Equal(t, 2, v.Len())
	assert.Equal(t, "a", v.Members()[0].Key)
	assert.Equal(t, 3.0, v.Members()[0].Value.Number())
}
