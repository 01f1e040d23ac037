// Package pane names the three synchronized surfaces of a table and the
// scroll-into-view alignments they understand.
package pane

// Kind identifies one of the table surfaces.
type Kind int

const (
	// Main is the scrollable body holding every non-frozen column.
	Main Kind = iota
	// Left holds columns frozen to the left edge.
	Left
	// Right holds columns frozen to the right edge.
	Right
)

// All lists every pane kind in render order.
//
//nolint:gochecknoglobals // Read-only lookup table.
var All = []Kind{Main, Left, Right}

// String returns the lowercase pane name.
func (k Kind) String() string {
	switch k {
	case Main:
		return "main"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// IsFrozen reports whether the pane scrolls vertically only.
func (k Kind) IsFrozen() bool {
	return k == Left || k == Right
}

// Align controls where ScrollToRow places the target row.
type Align string

const (
	// AlignAuto scrolls the minimum amount needed to show the row.
	AlignAuto Align = "auto"
	// AlignSmart behaves like auto when the row is near the viewport, center otherwise.
	AlignSmart Align = "smart"
	// AlignCenter centers the row in the viewport.
	AlignCenter Align = "center"
	// AlignStart puts the row at the top of the viewport.
	AlignStart Align = "start"
	// AlignEnd puts the row at the bottom of the viewport.
	AlignEnd Align = "end"
)

// ParseAlign maps a string to an Align, defaulting to AlignAuto.
func ParseAlign(s string) Align {
	switch Align(s) {
	case AlignSmart, AlignCenter, AlignStart, AlignEnd:
		return Align(s)
	default:
		return AlignAuto
	}
}
