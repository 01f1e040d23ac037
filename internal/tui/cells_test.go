package tui

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/vgrid/internal/grid/columns"
	"github.com/rshade/vgrid/internal/grid/tree"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "hello", "hello"},
		{"bool", true, "true"},
		{"integral float", 42.0, "42"},
		{"fraction", 1.25, "1.25"},
		{"negative", -3.0, "-3"},
		{"int", 7, "7"},
		{"list", []any{1, 2, 3}, "[3 items]"},
		{"rows", []tree.Row{{}, {}}, "[2 rows]"},
		{"object", map[string]any{"a": 1}, "{1 fields}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.in))
		})
	}
}

func TestFitPlain(t *testing.T) {
	assert.Equal(t, "ab   ", fitPlain("ab", 5, columns.AlignLeft))
	assert.Equal(t, "   ab", fitPlain("ab", 5, columns.AlignRight))
	assert.Equal(t, " ab  ", fitPlain("ab", 5, columns.AlignCenter))
	assert.Equal(t, "abcd…", fitPlain("abcdefgh", 5, columns.AlignLeft))
	assert.Empty(t, fitPlain("abc", 0, columns.AlignLeft))

	wide := fitPlain("日本語テキスト", 6, columns.AlignLeft)
	assert.Equal(t, 6, runewidth.StringWidth(wide))
	assert.True(t, strings.HasPrefix(wide, "日本"))
}

func TestFitStyled(t *testing.T) {
	styled := "\x1b[1mbold\x1b[0m"
	assert.Equal(t, styled+"  ", fitStyled(styled, 6))
	assert.Equal(t, "abc", fitStyled("abcdef", 3))
	assert.Empty(t, fitStyled("abc", 0))
}

func TestCellLines(t *testing.T) {
	t.Run("single line keeps the gap", func(t *testing.T) {
		lines := cellLines("alpha\nbeta", 8, columns.AlignLeft, false)
		require.Len(t, lines, 1)
		assert.Equal(t, "alpha … ", lines[0])
	})

	t.Run("wrapping splits on words", func(t *testing.T) {
		lines := cellLines("aaaa bbbb cccc", 6, columns.AlignLeft, true)
		assert.Equal(t, []string{"aaaa  ", "bbbb  ", "cccc  "}, lines)
	})

	t.Run("right alignment", func(t *testing.T) {
		assert.Equal(t, []string{"   42 "}, cellLines("42", 6, columns.AlignRight, false))
	})

	t.Run("zero width", func(t *testing.T) {
		assert.Equal(t, []string{""}, cellLines("x", 0, columns.AlignLeft, true))
	})
}

func TestBuildColumns(t *testing.T) {
	rows := []tree.Row{
		{"id": "a", "name": "a fairly long name", "score": 12.5},
		{"id": "b", "name": "short", "score": 3.0, "children": []tree.Row{{"id": "b1"}}},
	}

	t.Run("flexible", func(t *testing.T) {
		cols := BuildColumns(rows, ColumnSpec{RowKey: "id", ChildrenField: "children"})
		require.Len(t, cols, 3)
		assert.Equal(t, []string{"id", "name", "score"}, []string{cols[0].Key, cols[1].Key, cols[2].Key})

		assert.Equal(t, float64(minColumnWidth+1), cols[0].Width, "header plus sort mark")
		assert.Equal(t, 19.0, cols[1].Width, "longest value plus gap")
		assert.Equal(t, columns.AlignLeft, cols[1].Align)
		assert.Equal(t, columns.AlignRight, cols[2].Align)
		for _, c := range cols {
			assert.Equal(t, 1.0, c.FlexGrow, c.Key)
			assert.True(t, c.Sortable, c.Key)
			assert.True(t, c.Resizable, c.Key)
			assert.Equal(t, columns.FrozenNone, c.Frozen, c.Key)
		}
	})

	t.Run("fixed with frozen columns", func(t *testing.T) {
		cols := BuildColumns(rows, ColumnSpec{
			RowKey:        "id",
			ChildrenField: "children",
			Fixed:         true,
			FrozenLeft:    []string{"id"},
			FrozenRight:   []string{"score"},
		})
		require.Len(t, cols, 3)
		assert.Equal(t, columns.FrozenLeft, cols[0].Frozen)
		assert.Equal(t, columns.FrozenNone, cols[1].Frozen)
		assert.Equal(t, columns.FrozenRight, cols[2].Frozen)
		assert.Zero(t, cols[1].FlexGrow)
	})

	t.Run("width is capped", func(t *testing.T) {
		cols := BuildColumns([]tree.Row{{"id": strings.Repeat("x", 100)}}, ColumnSpec{RowKey: "id"})
		require.Len(t, cols, 1)
		assert.Equal(t, float64(maxColumnWidth), cols[0].Width)
	})
}

func TestParentKeys(t *testing.T) {
	rows := []tree.Row{
		{"id": "a", "children": []tree.Row{
			{"id": "a1", "children": []tree.Row{{"id": "a1x"}}},
			{"id": "a2"},
		}},
		{"id": "b"},
		{"id": "c", "children": []tree.Row{{"id": "c1"}}},
	}
	assert.Equal(t, []any{"a", "a1", "c"}, ParentKeys(rows, "id", "children"))
	assert.True(t, HasChildren(rows, "children"))
	assert.False(t, HasChildren(rows[1:2], "children"))
	assert.Empty(t, ParentKeys(rows[1:2], "id", "children"))
}

func TestHeaderTitle(t *testing.T) {
	col := columns.Column{Key: "age"}
	assert.Equal(t, "age", headerTitle(columns.HeaderCellProps{Column: col}))

	col.Title = "Age"
	assert.Equal(t, "Age "+IconSortAsc, headerTitle(columns.HeaderCellProps{Column: col, Sorted: true, SortOrder: columns.SortAsc}))
	assert.Equal(t, "Age "+IconSortDesc, headerTitle(columns.HeaderCellProps{Column: col, Sorted: true, SortOrder: columns.SortDesc}))
}

func TestScrollbar(t *testing.T) {
	t.Run("content fits", func(t *testing.T) {
		bar := scrollbar(4, 1, 10, 20, 0, "|", "#")
		assert.Equal(t, []string{"#", "#", "#", "#"}, bar)
	})

	t.Run("thumb at top", func(t *testing.T) {
		bar := scrollbar(10, 1, 100, 20, 0, "|", "#")
		assert.Equal(t, "##||||||||", strings.Join(bar, ""))
	})

	t.Run("thumb at bottom", func(t *testing.T) {
		bar := scrollbar(10, 1, 100, 20, 80, "|", "#")
		assert.Equal(t, "||||||||##", strings.Join(bar, ""))
	})

	t.Run("thickness", func(t *testing.T) {
		bar := scrollbar(2, 3, 10, 5, 0, ".", "=")
		assert.Equal(t, []string{"===", "..."}, bar)
	})

	t.Run("empty track", func(t *testing.T) {
		assert.Empty(t, scrollbar(0, 1, 10, 5, 0, ".", "="))
	})
}
