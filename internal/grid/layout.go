package grid

import (
	"github.com/rshade/vgrid/internal/grid/columns"
	"github.com/rshade/vgrid/internal/grid/interact"
	"github.com/rshade/vgrid/internal/grid/pane"
	"github.com/rshade/vgrid/internal/grid/scroll"
	"github.com/rshade/vgrid/internal/grid/tree"
	"github.com/rshade/vgrid/internal/grid/window"
)

// RowProps describes one drawn row of one pane.
type RowProps struct {
	RowData  tree.Row
	RowIndex int
	Key      any
	Depth    int
	Columns  []columns.Column

	IsExpanded   bool
	IsExpandable bool
	// Frozen rows have negative indices and are pinned below the header.
	Frozen bool

	// Offset is the row's top within the scrollable body (or within the frozen
	// row band for frozen rows).
	Offset float64
	Height float64
}

// PaneLayout is the geometry and content of one pane.
type PaneLayout struct {
	Kind    pane.Kind
	Columns []columns.Column

	X     float64
	Width float64
	// BodyHeight is the height of the pane body below the header and frozen rows.
	BodyHeight float64

	ScrollLeft float64
	ScrollTop  float64

	Range      window.Range
	Rows       []RowProps
	FrozenRows []RowProps
}

// Layout is the result of a render pass.
type Layout struct {
	Columns *columns.Snapshot
	Panes   []PaneLayout

	HeaderHeights    []float64
	HeaderHeight     float64
	FooterHeight     float64
	FrozenRowsHeight float64

	Scroll    scroll.Offset
	Scrollbar scroll.Metrics
	Resize    interact.ResizeState

	RowCount        int
	TotalRowsHeight float64
	TableWidth      float64
	TableHeight     float64
	// BodyHeight includes the area of a horizontal scrollbar, if shown.
	BodyHeight float64
	// ViewportHeight is the visible row area: BodyHeight minus the horizontal scrollbar.
	ViewportHeight float64
	Dynamic        bool
	IsScrolling    bool

	sortOf func(key string) (columns.SortOrder, bool)
}

// Pane returns the layout of kind k.
func (l *Layout) Pane(k pane.Kind) (PaneLayout, bool) {
	for _, p := range l.Panes {
		if p.Kind == k {
			return p, true
		}
	}
	return PaneLayout{}, false
}

// HeaderCell builds the props for a header cell renderer.
func (l *Layout) HeaderCell(col columns.Column, columnIndex, headerIndex int) columns.HeaderCellProps {
	props := columns.HeaderCellProps{Column: col, ColumnIndex: columnIndex, HeaderIndex: headerIndex}
	if l.sortOf != nil {
		props.SortOrder, props.Sorted = l.sortOf(col.Key)
	}
	return props
}

// Cell builds the props for a cell renderer.
func (l *Layout) Cell(row RowProps, col columns.Column, columnIndex int) columns.CellProps {
	return columns.CellProps{
		Column:      col,
		ColumnIndex: columnIndex,
		RowData:     row.RowData,
		RowIndex:    row.RowIndex,
		IsScrolling: l.IsScrolling,
	}
}
