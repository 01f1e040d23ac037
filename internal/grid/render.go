package grid

import (
	"math"

	"github.com/rshade/vgrid/internal/grid/columns"
	"github.com/rshade/vgrid/internal/grid/endreach"
	"github.com/rshade/vgrid/internal/grid/pane"
	"github.com/rshade/vgrid/internal/grid/scroll"
	"github.com/rshade/vgrid/internal/grid/tree"
)

// Render runs a layout pass and fires OnRowsRendered, OnEndReached and
// OnScrollbarPresenceChange as needed.
func (t *Table) Render() *Layout {
	p := t.props

	if p.ExpandColumnKey != "" {
		t.flat = t.flattener.Flatten(p.Data, t.expanded, p.RowKey, p.ChildrenField)
	} else {
		t.flat = tree.Result{Rows: p.Data}
	}
	rowCount := len(t.flat.Rows)

	main := t.lists[pane.Main]
	for _, list := range t.lists {
		list.SetItemCount(rowCount)
		list.SetEstimatedItemSize(t.estimatedItemSize())
	}

	headerHeight := p.HeaderHeight()
	frozenRowsHeight := 0.0
	for i := range p.FrozenData {
		frozenRowsHeight += t.rowHeight(-i - 1)
	}
	chrome := headerHeight + frozenRowsHeight + p.FooterHeight
	totalRowsHeight := main.TotalSize()

	snap, metrics, tableHeight := t.resolveGeometry(p, chrome, totalRowsHeight)
	t.colSnap = snap

	bodyHeight := math.Max(0, tableHeight-chrome)
	viewport := math.Max(0, bodyHeight-metrics.HorizontalHeight())
	vBar := metrics.VerticalWidth()

	for _, list := range t.lists {
		list.SetHeight(viewport)
	}
	t.syncFrozenPanes(snap)
	t.coord.UpdateScrollbarMetrics(metrics)
	t.coord.SetExtents(
		math.Max(0, snap.TotalWidth()-(p.Width-vBar)),
		math.Max(0, totalRowsHeight-viewport),
	)
	off := t.coord.Offset()

	layout := &Layout{
		Columns:          snap,
		HeaderHeights:    p.HeaderHeights,
		HeaderHeight:     headerHeight,
		FooterHeight:     p.FooterHeight,
		FrozenRowsHeight: frozenRowsHeight,
		Scroll:           off,
		Scrollbar:        metrics,
		Resize:           t.resizer.State(),
		RowCount:         rowCount,
		TableWidth:       p.Width,
		TableHeight:      tableHeight,
		BodyHeight:       bodyHeight,
		ViewportHeight:   viewport,
		Dynamic:          p.Dynamic(),
		IsScrolling:      t.isScrolling,
		sortOf:           t.sorter.Order,
	}

	layout.Panes = append(layout.Panes, t.paneLayout(pane.Main, snap.MainColumns(), 0, p.Width, bodyHeight, off))
	if snap.HasLeftFrozen() {
		layout.Panes = append(layout.Panes,
			t.paneLayout(pane.Left, snap.LeftColumns(), 0, snap.LeftWidth(), viewport, off))
	}
	if snap.HasRightFrozen() {
		x := math.Max(0, p.Width-vBar-snap.RightWidth())
		layout.Panes = append(layout.Panes,
			t.paneLayout(pane.Right, snap.RightColumns(), x, snap.RightWidth(), viewport, off))
	}

	// Visiting the rendered range may have replaced estimates with measured sizes.
	layout.TotalRowsHeight = main.TotalSize()
	t.extent = layout.TotalRowsHeight
	t.viewport = viewport
	t.layout = layout

	t.emitRowsRendered(layout)
	return layout
}

// resolveGeometry resolves columns and scrollbars. The available column width
// depends on the vertical scrollbar, which depends on the resolved widths, so
// the columns are resolved a second time when the vertical scrollbar toggles.
func (t *Table) resolveGeometry(p Props, chrome, totalRowsHeight float64) (*columns.Snapshot, scroll.Metrics, float64) {
	var (
		snap        *columns.Snapshot
		metrics     scroll.Metrics
		tableHeight float64
	)
	for pass := 0; pass < 2; pass++ {
		before := t.columns.Builds()
		snap = t.columns.Resolve(p.Columns, p.Fixed, p.Width-t.lastVBar)
		if t.columns.Builds() != before {
			metricColumnBuilds.Inc()
		}

		if p.MaxHeight > 0 {
			maxBody := math.Max(0, p.MaxHeight-chrome)
			metrics = scroll.ComputeScrollbarMetrics(snap.TotalWidth(), totalRowsHeight, p.Width, maxBody, p.ScrollbarSize)
			tableHeight = math.Min(p.MaxHeight, chrome+totalRowsHeight+metrics.HorizontalHeight())
		} else {
			body := math.Max(0, p.Height-chrome)
			metrics = scroll.ComputeScrollbarMetrics(snap.TotalWidth(), totalRowsHeight, p.Width, body, p.ScrollbarSize)
			tableHeight = p.Height
		}

		if metrics.VerticalWidth() == t.lastVBar {
			break
		}
		t.lastVBar = metrics.VerticalWidth()
	}
	return snap, metrics, tableHeight
}

// syncFrozenPanes registers the frozen panes that have columns and drops the rest.
func (t *Table) syncFrozenPanes(snap *columns.Snapshot) {
	want := map[pane.Kind]bool{
		pane.Left:  snap.HasLeftFrozen(),
		pane.Right: snap.HasRightFrozen(),
	}
	registered := map[pane.Kind]bool{}
	for _, k := range t.coord.Panes() {
		registered[k] = true
	}
	for _, k := range []pane.Kind{pane.Left, pane.Right} {
		switch {
		case want[k] && !registered[k]:
			t.coord.Register(t.views[k])
		case !want[k] && registered[k]:
			t.coord.Unregister(k)
			t.heights.DropPane(k)
		}
	}
}

func (t *Table) paneLayout(k pane.Kind, cols []columns.Column, x, width, bodyHeight float64, off scroll.Offset) PaneLayout {
	list := t.lists[k]
	r := list.Range()
	pl := PaneLayout{
		Kind:       k,
		Columns:    cols,
		X:          x,
		Width:      width,
		BodyHeight: bodyHeight,
		ScrollTop:  off.Top,
		Range:      r,
		Rows:       make([]RowProps, 0, r.Len()),
	}
	if k == pane.Main {
		pl.ScrollLeft = off.Left
	}

	for i := r.OverscanStart; i <= r.OverscanStop; i++ {
		pl.Rows = append(pl.Rows, t.rowProps(i, cols, list.ItemOffset(i), list.ItemSize(i)))
	}

	offset := 0.0
	for i := range t.props.FrozenData {
		idx := -i - 1
		h := t.rowHeight(idx)
		pl.FrozenRows = append(pl.FrozenRows, t.rowProps(idx, cols, offset, h))
		offset += h
	}
	return pl
}

func (t *Table) rowProps(rowIndex int, cols []columns.Column, offset, height float64) RowProps {
	row := t.rowAt(rowIndex)
	rp := RowProps{
		RowData:  row,
		RowIndex: rowIndex,
		Columns:  cols,
		Frozen:   rowIndex < 0,
		Offset:   offset,
		Height:   height,
	}
	if key, ok := tree.KeyOf(row, t.props.RowKey); ok {
		rp.Key = key
	}
	if rowIndex >= 0 && t.props.ExpandColumnKey != "" {
		if rowIndex < len(t.flat.RowDepths) {
			rp.Depth = t.flat.RowDepths[rowIndex]
		}
		rp.IsExpandable = tree.IsExpandable(row, t.props.ChildrenField)
		rp.IsExpanded = rp.IsExpandable && t.expanded.Has(rp.Key)
	}
	return rp
}

func (t *Table) emitRowsRendered(layout *Layout) {
	main, _ := layout.Pane(pane.Main)
	r := main.Range
	prev, seen := t.lastRanges[pane.Main]
	for _, pl := range layout.Panes {
		t.lastRanges[pl.Kind] = pl.Range
	}
	if r.Empty() || (seen && prev == r && !t.dataEpoch) {
		return
	}
	t.dataEpoch = false

	if t.props.OnRowsRendered != nil {
		t.props.OnRowsRendered(RowsRenderedEvent(r))
	}

	m := endreach.Measure{
		ScrollTop:      layout.Scroll.Top,
		ScrollExtent:   layout.TotalRowsHeight,
		ViewportHeight: layout.ViewportHeight,
	}
	if distance, ok := t.detector.OnRowsRendered(r.OverscanStop, m); ok {
		t.emitEndReached(distance)
	}
}
