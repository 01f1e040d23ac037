// Package grid is a multi-pane virtualized table engine.
//
// A Table turns Props (columns, rows, sizes, callbacks) into a Snapshot describing
// exactly what a host has to draw: up to three panes (main, left-frozen,
// right-frozen) with their geometry, the visible rows of each pane, and scrollbar
// state. The host draws the snapshot and feeds events back: scrolls, measured row
// heights, header clicks, resize drags and expansion toggles.
//
// All methods must be called from one goroutine. Nothing blocks: row height
// measurements are buffered and committed when the host calls Tick on its next idle
// cycle, and resize widths are rate limited against an injectable clock.
//
// The engine is built from the packages below it:
//
//	columns    column partitioning, widths and memoization
//	rowheight  measured row heights (dynamic mode)
//	tree       tree flattening and expansion state
//	window     per-pane windowed lists
//	scroll     canonical offset, pane synchronization, scrollbar metrics
//	endreach   near-end detection for incremental loading
//	interact   resize and sort state machines
package grid
