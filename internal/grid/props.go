package grid

import (
	"time"

	"github.com/rshade/vgrid/internal/grid/columns"
	"github.com/rshade/vgrid/internal/grid/interact"
	"github.com/rshade/vgrid/internal/grid/scroll"
	"github.com/rshade/vgrid/internal/grid/tree"
)

// Defaults applied by Props.WithDefaults.
const (
	DefaultRowKey              = "id"
	DefaultChildrenField       = "children"
	DefaultRowHeight           = 50
	DefaultHeaderHeight        = 50
	DefaultOverscanRowCount    = 1
	DefaultEndReachedThreshold = 500
)

// RowExpandEvent reports a single expansion toggle.
type RowExpandEvent struct {
	RowData  tree.Row
	RowIndex int
	RowKey   any
	Expanded bool
}

// RowsRenderedEvent reports the rendered ranges after a render pass.
type RowsRenderedEvent struct {
	OverscanStart int
	OverscanStop  int
	VisibleStart  int
	VisibleStop   int
}

// ColumnResizeEvent reports a column width change.
type ColumnResizeEvent struct {
	Column columns.Column
	Width  float64
}

// Props configure a Table. Zero values fall back to the package defaults.
type Props struct {
	Columns    []columns.Column
	Data       []tree.Row
	FrozenData []tree.Row

	RowKey          string
	ChildrenField   string
	ExpandColumnKey string
	Fixed           bool

	Width     float64
	Height    float64
	MaxHeight float64

	RowHeight float64
	// EstimatedRowHeight or EstimateRowHeight switch the table to dynamic row heights.
	EstimatedRowHeight float64
	EstimateRowHeight  func(rowIndex int, row tree.Row) float64

	// HeaderHeights has one entry per stacked header row.
	HeaderHeights       []float64
	FooterHeight        float64
	OverscanRowCount    int
	EndReachedThreshold float64
	ScrollbarSize       float64
	ResizeInterval      time.Duration

	DefaultExpandedRowKeys []any
	// ExpandedRowKeys is used instead of internal state when ControlledExpansion is set.
	ExpandedRowKeys     []any
	ControlledExpansion bool

	DefaultSortBy interact.SortBy
	// SortBy, when set, controls single-column sort state.
	SortBy *interact.SortBy
	// SortState, when set, controls multi-column sort state.
	SortState        map[string]columns.SortOrder
	DefaultSortState map[string]columns.SortOrder

	// CompareColumnFuncs makes renderer identity part of the column memo key.
	CompareColumnFuncs bool
	ScrollPersistKey   string

	OnScroll                  func(scroll.Event)
	OnRowsRendered            func(RowsRenderedEvent)
	OnEndReached              func(distanceFromEnd float64)
	OnColumnResize            func(ColumnResizeEvent)
	OnColumnResizeEnd         func(ColumnResizeEvent)
	OnColumnSort              func(interact.SortEvent)
	OnRowExpand               func(RowExpandEvent)
	OnExpandedRowsChange      func(keys []any)
	OnScrollbarPresenceChange func(scroll.Metrics)
}

// WithDefaults returns a copy of p with unset fields defaulted.
func (p Props) WithDefaults() Props {
	if p.RowKey == "" {
		p.RowKey = DefaultRowKey
	}
	if p.ChildrenField == "" {
		p.ChildrenField = DefaultChildrenField
	}
	if p.RowHeight <= 0 {
		p.RowHeight = DefaultRowHeight
	}
	if len(p.HeaderHeights) == 0 {
		p.HeaderHeights = []float64{DefaultHeaderHeight}
	}
	if p.OverscanRowCount <= 0 {
		p.OverscanRowCount = DefaultOverscanRowCount
	}
	if p.EndReachedThreshold <= 0 {
		p.EndReachedThreshold = DefaultEndReachedThreshold
	}
	if p.ResizeInterval <= 0 {
		p.ResizeInterval = interact.DefaultResizeInterval
	}
	if p.Width < 0 {
		p.Width = 0
	}
	if p.Height < 0 {
		p.Height = 0
	}
	if p.FooterHeight < 0 {
		p.FooterHeight = 0
	}
	if p.ScrollbarSize < 0 {
		p.ScrollbarSize = 0
	}
	return p
}

// Dynamic reports whether row heights are measured rather than constant.
func (p Props) Dynamic() bool {
	return p.EstimatedRowHeight > 0 || p.EstimateRowHeight != nil
}

// HeaderHeight is the total height of the stacked header rows.
func (p Props) HeaderHeight() float64 {
	total := 0.0
	for _, h := range p.HeaderHeights {
		if h > 0 {
			total += h
		}
	}
	return total
}

// MultiSort reports whether sorting tracks several columns.
func (p Props) MultiSort() bool {
	return p.SortState != nil || p.DefaultSortState != nil
}
