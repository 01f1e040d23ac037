package columns

// Snapshot is a resolved, partitioned column layout.
//
// The main list holds every visible column in declaration order; in fixed mode the
// columns moved to a frozen pane are represented there by placeholders of equal width.
type Snapshot struct {
	fixed bool
	main  []Column
	left  []Column
	right []Column

	index map[string]int

	leftWidth  float64
	rightWidth float64
	mainWidth  float64
	totalWidth float64

	fingerprint uint64
	version     uint64
}

func newSnapshot(resolved []Column, fixed bool, fingerprint uint64) *Snapshot {
	s := &Snapshot{
		fixed:       fixed,
		main:        make([]Column, 0, len(resolved)),
		index:       make(map[string]int, len(resolved)),
		fingerprint: fingerprint,
	}

	for _, col := range resolved {
		s.index[col.Key] = len(s.main)
		if !fixed || col.Frozen == FrozenNone {
			col.Frozen = frozenIfFixed(fixed, col.Frozen)
			s.main = append(s.main, col)
			continue
		}
		switch col.Frozen {
		case FrozenLeft:
			s.left = append(s.left, col)
		case FrozenRight:
			s.right = append(s.right, col)
		}
		placeholder := col
		placeholder.Placeholder = true
		s.main = append(s.main, placeholder)
	}

	s.recomputeTotals()
	return s
}

func frozenIfFixed(fixed bool, d FrozenDirection) FrozenDirection {
	if fixed {
		return d
	}
	return FrozenNone
}

func (s *Snapshot) recomputeTotals() {
	s.leftWidth = SumWidths(s.left)
	s.rightWidth = SumWidths(s.right)
	s.totalWidth = SumWidths(s.main)
	s.mainWidth = 0
	for _, col := range s.main {
		if !col.Placeholder {
			s.mainWidth += col.Width
		}
	}
}

// setWidth updates the width of key everywhere it appears. Returns false for unknown keys.
func (s *Snapshot) setWidth(key string, width float64) bool {
	i, ok := s.index[key]
	if !ok {
		return false
	}
	s.main[i].Width = width
	if s.main[i].Placeholder {
		for _, list := range [][]Column{s.left, s.right} {
			for j := range list {
				if list[j].Key == key {
					list[j].Width = width
				}
			}
		}
	}
	s.recomputeTotals()
	s.version++
	return true
}

// Fixed reports whether the snapshot was resolved in fixed mode.
func (s *Snapshot) Fixed() bool { return s.fixed }

// MainColumns returns the main pane columns, placeholders included.
func (s *Snapshot) MainColumns() []Column { return s.main }

// LeftColumns returns the columns frozen to the left.
func (s *Snapshot) LeftColumns() []Column { return s.left }

// RightColumns returns the columns frozen to the right.
func (s *Snapshot) RightColumns() []Column { return s.right }

// Columns returns the visible declared columns in order, without placeholders,
// each carrying its resolved width.
func (s *Snapshot) Columns() []Column {
	out := make([]Column, len(s.main))
	for i, col := range s.main {
		col.Placeholder = false
		out[i] = col
	}
	return out
}

// Column returns the resolved column for key.
func (s *Snapshot) Column(key string) (Column, bool) {
	i, ok := s.index[key]
	if !ok {
		return Column{}, false
	}
	col := s.main[i]
	col.Placeholder = false
	return col, true
}

// WidthOf returns the resolved width of key, or 0 when unknown.
func (s *Snapshot) WidthOf(key string) float64 {
	if i, ok := s.index[key]; ok {
		return s.main[i].Width
	}
	return 0
}

// OffsetOf returns the horizontal offset of key within the main list.
func (s *Snapshot) OffsetOf(key string) float64 {
	i, ok := s.index[key]
	if !ok {
		return 0
	}
	return SumWidths(s.main[:i])
}

// LeftWidth is the total width of the left pane.
func (s *Snapshot) LeftWidth() float64 { return s.leftWidth }

// RightWidth is the total width of the right pane.
func (s *Snapshot) RightWidth() float64 { return s.rightWidth }

// MainWidth is the width of the non-placeholder main columns.
func (s *Snapshot) MainWidth() float64 { return s.mainWidth }

// TotalWidth is the width of all visible columns.
func (s *Snapshot) TotalWidth() float64 { return s.totalWidth }

// HasFrozen reports whether any column sits in a frozen pane.
func (s *Snapshot) HasFrozen() bool { return len(s.left)+len(s.right) > 0 }

// HasLeftFrozen reports whether the left pane has columns.
func (s *Snapshot) HasLeftFrozen() bool { return len(s.left) > 0 }

// HasRightFrozen reports whether the right pane has columns.
func (s *Snapshot) HasRightFrozen() bool { return len(s.right) > 0 }

// Fingerprint is the memo key the snapshot was built for.
func (s *Snapshot) Fingerprint() uint64 { return s.fingerprint }

// Version increments on every in-place width change.
func (s *Snapshot) Version() uint64 { return s.version }

// SumWidths returns the summed width of cols.
func SumWidths(cols []Column) float64 {
	var total float64
	for _, col := range cols {
		total += col.Width
	}
	return total
}
