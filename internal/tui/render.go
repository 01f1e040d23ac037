package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/rshade/vgrid/internal/grid"
	"github.com/rshade/vgrid/internal/grid/columns"
	"github.com/rshade/vgrid/internal/grid/pane"
)

// cells converts an engine length to whole terminal cells.
func cells(f float64) int {
	return int(math.Round(f))
}

func blank(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}

type colGeom struct {
	col   columns.Column
	index int
	start int
	width int
}

// paneGeom is a pane laid out on the terminal grid. Column edges are rounded
// from their cumulative offsets so widths add up to the pane width.
type paneGeom struct {
	layout grid.PaneLayout
	x      int
	width  int
	cols   []colGeom
	// content is the width of all columns; wider than width for a scrolled main pane.
	content int
}

func newPaneGeom(pl grid.PaneLayout) paneGeom {
	g := paneGeom{layout: pl, x: cells(pl.X), width: cells(pl.Width)}
	offset := 0.0
	for i, col := range pl.Columns {
		start := cells(offset)
		offset += col.Width
		g.cols = append(g.cols, colGeom{col: col, index: i, start: start, width: cells(offset) - start})
	}
	g.content = cells(offset)
	return g
}

// frameRenderer draws one Layout. Row heights it observes are handed to measure.
type frameRenderer struct {
	layout    *grid.Layout
	expandKey string
	focusKey  string
	wrap      bool
	measure   func(k pane.Kind, rowIndex int, height float64)

	main        paneGeom
	left, right *paneGeom
	innerWidth  int
	scrollLeft  int
}

func newFrameRenderer(l *grid.Layout) *frameRenderer {
	r := &frameRenderer{layout: l}
	for _, pl := range l.Panes {
		g := newPaneGeom(pl)
		switch pl.Kind {
		case pane.Main:
			r.main = g
		case pane.Left:
			r.left = &g
		case pane.Right:
			r.right = &g
		}
	}
	r.innerWidth = max(0, cells(l.TableWidth)-cells(l.Scrollbar.VerticalWidth()))
	r.scrollLeft = cells(l.Scroll.Left)
	return r
}

// panes returns the drawn panes, main first.
func (r *frameRenderer) panes() []*paneGeom {
	out := []*paneGeom{&r.main}
	if r.left != nil {
		out = append(out, r.left)
	}
	if r.right != nil {
		out = append(out, r.right)
	}
	return out
}

// Lines draws the header, frozen rows, body and horizontal scrollbar. The
// footer is left to the caller.
func (r *frameRenderer) Lines() []string {
	l := r.layout
	vBar := cells(l.Scrollbar.VerticalWidth())
	var out []string

	for hi, hh := range l.HeaderHeights {
		for line := range cells(hh) {
			bufs := map[pane.Kind]string{}
			for _, g := range r.panes() {
				bufs[g.layout.Kind] = r.headerLine(g, hi, line)
			}
			out = append(out, r.join(bufs)+blank(vBar))
		}
	}

	if band := cells(l.FrozenRowsHeight); band > 0 {
		bufs := map[pane.Kind][]string{}
		for _, g := range r.panes() {
			bufs[g.layout.Kind] = r.rowBuffer(g, g.layout.FrozenRows, 0, band, true)
		}
		for i := range band {
			out = append(out, r.join(lineAt(bufs, i))+blank(vBar))
		}
	}

	viewport := cells(l.ViewportHeight)
	top := cells(l.Scroll.Top)
	bufs := map[pane.Kind][]string{}
	for _, g := range r.panes() {
		bufs[g.layout.Kind] = r.rowBuffer(g, g.layout.Rows, top, viewport, false)
	}
	vbar := scrollbar(viewport, vBar, l.TotalRowsHeight, l.ViewportHeight, l.Scroll.Top, scrollTrackV, scrollThumbV)
	for i := range viewport {
		line := r.join(lineAt(bufs, i))
		if vBar > 0 {
			line += ScrollbarStyle.Render(vbar[i])
		}
		out = append(out, line)
	}

	if hBar := cells(l.Scrollbar.HorizontalHeight()); hBar > 0 {
		track := scrollbar(r.innerWidth, 1, l.Columns.TotalWidth(), float64(r.innerWidth), l.Scroll.Left, scrollTrackH, scrollThumbH)
		line := ScrollbarStyle.Render(strings.Join(track, "")) + blank(vBar)
		for range hBar {
			out = append(out, line)
		}
	}
	return out
}

func lineAt(bufs map[pane.Kind][]string, i int) map[pane.Kind]string {
	out := make(map[pane.Kind]string, len(bufs))
	for k, b := range bufs {
		out[k] = b[i]
	}
	return out
}

// join overlays the frozen panes on the visible slice of the main pane.
func (r *frameRenderer) join(lines map[pane.Kind]string) string {
	visible := fitStyled(ansi.Cut(lines[pane.Main], r.scrollLeft, r.scrollLeft+r.innerWidth), r.innerWidth)

	var b strings.Builder
	from, to := 0, r.innerWidth
	if r.left != nil {
		from = min(r.left.width, r.innerWidth)
		b.WriteString(fitStyled(lines[pane.Left], from))
	}
	if r.right != nil {
		to = max(from, min(r.right.x, r.innerWidth))
	}
	if to > from {
		b.WriteString(ansi.Cut(visible, from, to))
	}
	if r.right != nil {
		b.WriteString(fitStyled(lines[pane.Right], r.innerWidth-to))
	}
	return b.String()
}

func (r *frameRenderer) headerLine(g *paneGeom, headerIndex, line int) string {
	var b strings.Builder
	for _, cg := range g.cols {
		if cg.col.Placeholder || cg.width <= 0 {
			b.WriteString(blank(cg.width))
			continue
		}
		text := ""
		if line == 0 {
			props := r.layout.HeaderCell(cg.col, cg.index, headerIndex)
			switch {
			case cg.col.HeaderRenderer != nil:
				text = cg.col.HeaderRenderer(props)
			case headerIndex == 0:
				text = headerTitle(props)
			}
		}
		cell := cellLines(text, cg.width, columns.AlignLeft, false)[0]
		if cg.col.Key == r.focusKey && headerIndex == 0 {
			b.WriteString(FocusStyle.Render(cell))
		} else {
			b.WriteString(HeaderStyle.Render(cell))
		}
	}
	return b.String()
}

func headerTitle(props columns.HeaderCellProps) string {
	title := props.Column.Title
	if title == "" {
		title = props.Column.Key
	}
	if !props.Sorted {
		return title
	}
	if props.SortOrder == columns.SortDesc {
		return title + " " + IconSortDesc
	}
	return title + " " + IconSortAsc
}

// rowBuffer draws rows into n lines starting at the top offset. Rows outside
// the window are clipped.
func (r *frameRenderer) rowBuffer(g *paneGeom, rows []grid.RowProps, top, n int, frozen bool) []string {
	empty := blank(g.content)
	buf := make([]string, n)
	for i := range buf {
		buf[i] = empty
	}

	for _, row := range rows {
		lines := r.rowLines(g, row)
		if !frozen && row.RowIndex >= 0 && r.measure != nil {
			r.measure(g.layout.Kind, row.RowIndex, float64(len(lines)))
		}
		y0 := cells(row.Offset) - top
		for j := range cells(row.Height) {
			y := y0 + j
			if y < 0 || y >= n {
				continue
			}
			line := empty
			if j < len(lines) {
				line = lines[j]
			}
			if frozen {
				line = FrozenRowStyle.Render(line)
			}
			buf[y] = line
		}
	}
	return buf
}

// rowLines lays out every cell of row and returns one string per line of the
// tallest cell.
func (r *frameRenderer) rowLines(g *paneGeom, row grid.RowProps) []string {
	parts := make([][]string, len(g.cols))
	height := 1
	for i, cg := range g.cols {
		if cg.col.Placeholder {
			parts[i] = []string{blank(cg.width)}
			continue
		}
		text := r.cellText(row, cg)
		parts[i] = cellLines(text, cg.width, cg.col.Align, r.wrap)
		height = max(height, len(parts[i]))
	}

	lines := make([]string, height)
	for j := range lines {
		var b strings.Builder
		for i, cg := range g.cols {
			if j < len(parts[i]) {
				b.WriteString(parts[i][j])
			} else {
				b.WriteString(blank(cg.width))
			}
		}
		lines[j] = b.String()
	}
	return lines
}

func (r *frameRenderer) cellText(row grid.RowProps, cg colGeom) string {
	props := r.layout.Cell(row, cg.col, cg.index)
	var text string
	if cg.col.CellRenderer != nil {
		text = cg.col.CellRenderer(props)
	} else {
		text = FormatValue(cg.col.Value(props))
	}
	if r.expandKey == "" || cg.col.Key != r.expandKey || row.Frozen {
		return text
	}

	icon := " "
	if row.IsExpandable {
		icon = IconCollapsed
		if row.IsExpanded {
			icon = IconExpanded
		}
	}
	return strings.Repeat("  ", row.Depth) + icon + " " + text
}

// scrollbar draws a track of length n and thickness w with a thumb sized to
// viewport/content and placed by offset.
func scrollbar(n, w int, content, viewport, offset float64, track, thumb string) []string {
	out := make([]string, n)
	if n <= 0 || w <= 0 {
		return out
	}
	thumbLen, thumbPos := n, 0
	if content > viewport && content > 0 {
		thumbLen = max(1, cells(float64(n)*viewport/content))
		if maxOffset := content - viewport; maxOffset > 0 {
			thumbPos = cells(offset / maxOffset * float64(n-thumbLen))
		}
		thumbPos = min(max(thumbPos, 0), n-thumbLen)
	}
	for i := range out {
		glyph := track
		if i >= thumbPos && i < thumbPos+thumbLen {
			glyph = thumb
		}
		out[i] = strings.Repeat(glyph, w)
	}
	return out
}
