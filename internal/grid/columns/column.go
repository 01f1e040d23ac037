package columns

// FrozenDirection pins a column to one edge of the table.
type FrozenDirection int

const (
	// FrozenNone keeps the column in the scrollable main pane.
	FrozenNone FrozenDirection = iota
	// FrozenLeft pins the column to the left pane.
	FrozenLeft
	// FrozenRight pins the column to the right pane.
	FrozenRight
)

// String returns the lowercase direction name.
func (d FrozenDirection) String() string {
	switch d {
	case FrozenLeft:
		return "left"
	case FrozenRight:
		return "right"
	default:
		return "none"
	}
}

// ParseFrozen maps "left"/"right" to a direction; anything else is FrozenNone.
func ParseFrozen(s string) FrozenDirection {
	switch s {
	case "left":
		return FrozenLeft
	case "right":
		return FrozenRight
	default:
		return FrozenNone
	}
}

// Alignment is the horizontal alignment of cell content.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

// SortOrder is the direction of a sorted column.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Toggle returns the opposite order. An empty order toggles to ascending.
func (o SortOrder) Toggle() SortOrder {
	if o == SortAsc {
		return SortDesc
	}
	return SortAsc
}

// DefaultMinWidth is the floor applied to resize drags when a column declares none.
const DefaultMinWidth = 30

// Column describes one declared table column.
type Column struct {
	Key     string
	Title   string
	DataKey string
	// DataGetter overrides DataKey lookup when set.
	DataGetter func(CellProps) any

	Width      float64
	MinWidth   float64
	MaxWidth   float64
	FlexGrow   float64
	FlexShrink float64

	Frozen    FrozenDirection
	Align     Alignment
	Sortable  bool
	Resizable bool
	Hidden    bool
	ClassName string

	CellRenderer   func(CellProps) string
	HeaderRenderer func(HeaderCellProps) string

	// Placeholder marks a main-pane slot reserving the width of a column that was
	// moved to a frozen pane. Placeholders are never drawn.
	Placeholder bool

	declared float64
}

// CellProps is handed to cell renderers and data getters.
type CellProps struct {
	Column      Column
	ColumnIndex int
	RowData     map[string]any
	RowIndex    int
	IsScrolling bool
}

// HeaderCellProps is handed to header renderers.
type HeaderCellProps struct {
	Column      Column
	ColumnIndex int
	HeaderIndex int
	SortOrder   SortOrder
	Sorted      bool
}

// Value extracts the cell value for row: DataGetter first, then DataKey, then Key.
func (c Column) Value(props CellProps) any {
	if c.DataGetter != nil {
		return c.DataGetter(props)
	}
	if props.RowData == nil {
		return nil
	}
	field := c.DataKey
	if field == "" {
		field = c.Key
	}
	return props.RowData[field]
}

// ClampWidth applies the column's min/max bounds to w. Negative widths become zero.
// When useDefaultMin is set, a column without MinWidth is floored at DefaultMinWidth.
func (c Column) ClampWidth(w float64, useDefaultMin bool) float64 {
	minW := c.MinWidth
	if minW <= 0 && useDefaultMin {
		minW = DefaultMinWidth
	}
	if w < minW {
		w = minW
	}
	if c.MaxWidth > 0 && w > c.MaxWidth {
		w = c.MaxWidth
	}
	if w < 0 {
		w = 0
	}
	return w
}
