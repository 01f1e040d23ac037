package tui

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/rshade/vgrid/internal/dataset"
	"github.com/rshade/vgrid/internal/grid/columns"
	"github.com/rshade/vgrid/internal/grid/tree"
)

// Column sizing, in terminal cells.
const (
	minColumnWidth     = 4
	maxColumnWidth     = 30
	columnMinDragWidth = 3
	columnSampleRows   = 200
	// cellGap is the blank space kept at the right edge of every cell.
	cellGap = 1
	// sortMarkWidth is the room for " ▲" after a sorted header title.
	sortMarkWidth = 2
)

// FormatValue renders a cell value as plain text.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return FormatValue(float64(x))
	case []any:
		return fmt.Sprintf("[%d items]", len(x))
	case []tree.Row:
		return fmt.Sprintf("[%d rows]", len(x))
	case map[string]any:
		return fmt.Sprintf("{%d fields}", len(x))
	default:
		return fmt.Sprint(x)
	}
}

// singleLine folds line breaks and tabs into spaces.
func singleLine(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(s)
}

// fitPlain truncates or pads plain text to exactly width cells.
func fitPlain(s string, width int, align columns.Alignment) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, IconEllipsis)
	}
	switch align {
	case columns.AlignRight:
		return runewidth.FillLeft(s, width)
	case columns.AlignCenter:
		pad := width - runewidth.StringWidth(s)
		return runewidth.FillRight(strings.Repeat(" ", pad/2)+s, width)
	default:
		return runewidth.FillRight(s, width)
	}
}

// fitStyled truncates or pads text that may carry ANSI styling to width cells.
func fitStyled(s string, width int) string {
	if width <= 0 {
		return ""
	}
	w := ansi.StringWidth(s)
	switch {
	case w > width:
		return ansi.Truncate(s, width, "")
	case w < width:
		return s + strings.Repeat(" ", width-w)
	default:
		return s
	}
}

// cellLines lays text out in a cell of width cells. The last cell column is
// left blank. Wrapped text may span several lines; otherwise the text is cut to
// one line.
func cellLines(text string, width int, align columns.Alignment, wrap bool) []string {
	if width <= 0 {
		return []string{""}
	}
	inner := max(width-cellGap, 1)
	gap := strings.Repeat(" ", width-inner)
	if !wrap {
		return []string{fitPlain(singleLine(text), inner, align) + gap}
	}

	wrapped := lipgloss.NewStyle().Width(inner).Render(text)
	lines := strings.Split(wrapped, "\n")
	for i, l := range lines {
		lines[i] = fitPlain(strings.TrimRight(l, " "), inner, align) + gap
	}
	return lines
}

// ColumnSpec controls how columns are derived from data.
type ColumnSpec struct {
	RowKey        string
	ChildrenField string
	Fixed         bool
	FrozenLeft    []string
	FrozenRight   []string
}

// BuildColumns derives one column per field. Widths come from the header and a
// sample of values; numeric columns are right aligned. Flexible tables let every
// column grow and shrink with the terminal.
func BuildColumns(rows []tree.Row, spec ColumnSpec) []columns.Column {
	fields := dataset.Fields(rows, spec.RowKey, spec.ChildrenField)
	sample := rows[:min(len(rows), columnSampleRows)]

	cols := make([]columns.Column, 0, len(fields))
	for _, f := range fields {
		width := runewidth.StringWidth(f) + sortMarkWidth + cellGap
		numeric := false
		seen := false
		for _, r := range sample {
			v, ok := r[f]
			if !ok || v == nil {
				continue
			}
			width = max(width, runewidth.StringWidth(singleLine(FormatValue(v)))+cellGap)
			if !seen {
				numeric = true
				seen = true
			}
			numeric = numeric && isNumber(v)
		}

		col := columns.Column{
			Key:       f,
			Title:     f,
			Width:     float64(min(max(width, minColumnWidth), maxColumnWidth)),
			MinWidth:  columnMinDragWidth,
			Sortable:  true,
			Resizable: true,
		}
		if numeric {
			col.Align = columns.AlignRight
		}
		if !spec.Fixed {
			col.FlexGrow = 1
			col.FlexShrink = 1
		}
		switch {
		case slices.Contains(spec.FrozenLeft, f):
			col.Frozen = columns.FrozenLeft
		case slices.Contains(spec.FrozenRight, f):
			col.Frozen = columns.FrozenRight
		}
		cols = append(cols, col)
	}
	return cols
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	default:
		return false
	}
}

// HasChildren reports whether any row nests children.
func HasChildren(rows []tree.Row, childrenField string) bool {
	return slices.ContainsFunc(rows, func(r tree.Row) bool { return tree.IsExpandable(r, childrenField) })
}

// ParentKeys returns the keys of every row with children, in tree order.
func ParentKeys(rows []tree.Row, keyField, childrenField string) []any {
	var keys []any
	var walk func([]tree.Row)
	walk = func(rs []tree.Row) {
		for _, r := range rs {
			children := tree.ChildrenOf(r, childrenField)
			if len(children) == 0 {
				continue
			}
			if k, ok := tree.KeyOf(r, keyField); ok {
				keys = append(keys, k)
			}
			walk(children)
		}
	}
	walk(rows)
	return keys
}
