// Package columns resolves a declared column list into the three pane
// partitions of a table.
//
// A Manager turns []Column into a Snapshot: hidden columns are dropped, widths are
// clamped (and, in flexible mode, distributed over the available width by
// FlexGrow/FlexShrink), and in fixed mode frozen columns are extracted into the
// left and right lists while the main list keeps a same-width placeholder in their
// place so horizontal offsets stay correct.
//
// Snapshots are memoized by an xxhash fingerprint of the column values. Function
// fields (DataGetter, CellRenderer, HeaderRenderer) are excluded from the fingerprint
// unless CompareOptions.IncludeFuncs is set, since callers commonly recreate them on
// every render without changing behavior.
package columns
