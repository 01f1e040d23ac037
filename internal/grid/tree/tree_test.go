package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func abcTree() []Row {
	return []Row{
		{"id": "a"},
		{"id": "b", "children": []Row{
			{"id": "b1"},
			{"id": "b2"},
		}},
		{"id": "c"},
	}
}

func keys(rows []Row) []any {
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = r["id"]
	}
	return out
}

func TestFlatten_ABCScenario(t *testing.T) {
	roots := abcTree()

	collapsed := Flatten(roots, NewKeySet(), "id", "children")
	assert.Equal(t, []any{"a", "b", "c"}, keys(collapsed.Rows))
	assert.Equal(t, []int{0, 0, 0}, collapsed.RowDepths)

	expanded := Flatten(roots, NewKeySet("b"), "id", "children")
	assert.Equal(t, []any{"a", "b", "b1", "b2", "c"}, keys(expanded.Rows))
	assert.Equal(t, []int{0, 0, 1, 1, 0}, expanded.RowDepths)
}

func TestFlatten_DepthRecordedForHiddenRows(t *testing.T) {
	res := Flatten(abcTree(), NewKeySet(), "id", "children")
	assert.Equal(t, map[any]int{"a": 0, "b": 0, "b1": 1, "b2": 1, "c": 0}, res.Depths)
}

func TestFlatten_Idempotent(t *testing.T) {
	roots := deepTree()
	set := NewKeySet("r1", "r1.2", "r2")

	first := Flatten(roots, set, "id", "children")
	second := Flatten(roots, set, "id", "children")
	assert.Equal(t, first, second)
}

func TestFlatten_CollapseRemovesExactlySubtree(t *testing.T) {
	roots := deepTree()
	all := NewKeySet("r1", "r1.2", "r1.2.1", "r2")
	full := Flatten(roots, all, "id", "children")

	for _, target := range []string{"r1", "r1.2", "r2"} {
		t.Run(target, func(t *testing.T) {
			set := NewKeySet("r1", "r1.2", "r1.2.1", "r2")
			set.Remove(target)
			got := Flatten(roots, set, "id", "children")

			start := -1
			for i, r := range full.Rows {
				if r["id"] == target {
					start = i
				}
			}
			require.GreaterOrEqual(t, start, 0)
			end := start + 1
			for end < len(full.Rows) && full.RowDepths[end] > full.RowDepths[start] {
				end++
			}

			want := append(append([]any{}, keys(full.Rows[:start+1])...), keys(full.Rows[end:])...)
			assert.Equal(t, want, keys(got.Rows))
		})
	}
}

func deepTree() []Row {
	return []Row{
		{"id": "r1", "children": []any{
			map[string]any{"id": "r1.1"},
			map[string]any{"id": "r1.2", "children": []any{
				map[string]any{"id": "r1.2.1", "children": []any{
					map[string]any{"id": "r1.2.1.1"},
				}},
			}},
		}},
		{"id": "r2", "children": []Row{{"id": "r2.1"}}},
		{"id": "r3"},
	}
}

func TestFlatten_RowsAreShared(t *testing.T) {
	roots := abcTree()
	res := Flatten(roots, NewKeySet("b"), "id", "children")

	res.Rows[0]["touched"] = true
	assert.Equal(t, true, roots[0]["touched"])
}

func TestFlatten_UnkeyedRowsNeverExpand(t *testing.T) {
	roots := []Row{{"children": []Row{{"id": "x"}}}}
	res := Flatten(roots, NewKeySet(nil), "id", "children")
	assert.Len(t, res.Rows, 1)
}

func TestFlattener_Memoizes(t *testing.T) {
	var f Flattener
	roots := abcTree()
	set := NewKeySet()

	first := f.Flatten(roots, set, "id", "children")
	f.Flatten(roots, set, "id", "children")
	assert.Equal(t, 1, f.Flattens())

	set.Add("b")
	second := f.Flatten(roots, set, "id", "children")
	assert.Equal(t, 2, f.Flattens())
	assert.Len(t, first.Rows, 3)
	assert.Len(t, second.Rows, 5)

	f.Flatten(roots[:2], set, "id", "children")
	assert.Equal(t, 3, f.Flattens())

	f.Invalidate()
	f.Flatten(roots[:2], set, "id", "children")
	assert.Equal(t, 4, f.Flattens())
}

func TestKeySet(t *testing.T) {
	s := NewKeySet("a")
	assert.True(t, s.Has("a"))
	assert.False(t, s.Add("a"))
	assert.Equal(t, uint64(0), s.Version())

	assert.True(t, s.Add("b"))
	assert.True(t, s.Remove("a"))
	assert.False(t, s.Remove("zzz"))
	assert.Equal(t, uint64(2), s.Version())
	assert.Equal(t, 1, s.Len())

	assert.False(t, s.Add([]int{1}))
	s.Replace([]any{"c", "d"})
	assert.Equal(t, 2, s.Len())
	assert.False(t, s.Has("b"))
}

func TestKeySet_KeysInTreeOrder(t *testing.T) {
	s := NewKeySet("r2", "r1.2", "r1")
	assert.Equal(t, []any{"r1", "r1.2", "r2"}, s.Keys(deepTree(), "id", "children"))
}

func TestIsExpandable(t *testing.T) {
	roots := abcTree()
	assert.False(t, IsExpandable(roots[0], "children"))
	assert.True(t, IsExpandable(roots[1], "children"))
	assert.False(t, IsExpandable(nil, "children"))
}
