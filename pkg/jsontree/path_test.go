package jsontree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathContains(t *testing.T) {
	parent := Path{"panels", "0"}
	child := Path{"panels", "0", "fieldConfig", "defaults"}
	sibling := Path{"panels", "1"}

	assert.True(t, parent.Contains(child))
	assert.True(t, parent.Contains(parent))
	assert.False(t, child.Contains(parent))
	assert.False(t, parent.Contains(sibling))
}

func TestPathOverlaps(t *testing.T) {
	a := Path{"panels", "0"}
	b := Path{"panels", "0", "thresholds"}
	c := Path{"panels", "1"}

	assert.True(t, a.Overlaps(b))
	assert.True(t, b.Overlaps(a))
	assert.False(t, a.Overlaps(c))
}

func TestPathChildDoesNotAlias(t *testing.T) {
	base := Path{"panels"}
	a := base.ChildIndex(0)
	b := base.ChildIndex(1)
	assert.Equal(t, "panels.0", a.String())
	assert.Equal(t, "panels.1", b.String())
}

func TestValueAt(t *testing.T) {
	root, err := Parse([]byte(`{"panels": [{"title": "CPU", "targets": [{"expr": "up"}]}]}`))
	require.NoError(t, err)

	v, ok := ValueAt(root, Path{"panels", "0", "targets", "0", "expr"})
	require.True(t, ok)
	assert.Equal(t, "up", v.Text())

	_, ok = ValueAt(root, Path{"panels", "9"})
	assert.False(t, ok)
	_, ok = ValueAt(root, Path{"panels", "0", "missing"})
	assert.False(t, ok)
	_, ok = ValueAt(root, Path{"panels", "notanindex"})
	assert.False(t, ok)
}

func TestDiffLeavesScalars(t *testing.T) {
	a, err := Parse([]byte(`{"id": 1, "title": "CPU", "gridPos": {"x": 0, "y": 0}}`))
	require.NoError(t, err)
	b, err := Parse([]byte(`{"id": 2, "title": "CPU", "gridPos": {"x": 6, "y": 0}}`))
	require.NoError(t, err)

	diffs := DiffLeaves(a, b)
	require.Len(t, diffs, 2)
	assert.Equal(t, "id", diffs[0].String())
	assert.Equal(t, "gridPos.x", diffs[1].String())
}

func TestDiffLeavesStructuralMismatch(t *testing.T) {
	a, err := Parse([]byte(`{"steps": [1, 2]}`))
	require.NoError(t, err)
	b, err := Parse([]byte(`{"steps": [1, 2, 3]}`))
	require.NoError(t, err)

	diffs := DiffLeaves(a, b)
	require.Len(t, diffs, 1)
	assert.Equal(t, "steps", diffs[0].String())
}

func TestDiffLeavesIdentical(t *testing.T) {
	a, err := Parse([]byte(`{"mode": "absolute", "steps": [{"color": "green"}]}`))
	require.NoError(t, err)
	assert.Empty(t, DiffLeaves(a, a.Clone()))
}

func TestDiffLeavesKindMismatchAtRoot(t *testing.T) {
	diffs := DiffLeaves(Integer(1), Str("1"))
	require.Len(t, diffs, 1)
	assert.Equal(t, "", diffs[0].String())
}
