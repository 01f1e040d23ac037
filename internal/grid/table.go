package grid

import (
	"math"
	"reflect"

	"github.com/rs/zerolog"
	"k8s.io/utils/clock"

	"github.com/rshade/vgrid/internal/grid/columns"
	"github.com/rshade/vgrid/internal/grid/endreach"
	"github.com/rshade/vgrid/internal/grid/interact"
	"github.com/rshade/vgrid/internal/grid/pane"
	"github.com/rshade/vgrid/internal/grid/rowheight"
	"github.com/rshade/vgrid/internal/grid/scroll"
	"github.com/rshade/vgrid/internal/grid/tree"
	"github.com/rshade/vgrid/internal/grid/window"
)

// Option customizes a Table.
type Option func(*Table)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Table) { t.logger = logger }
}

// WithClock sets the clock used for resize rate limiting.
func WithClock(clk clock.PassiveClock) Option {
	return func(t *Table) { t.clock = clk }
}

// WithScheduler sets a hook called when work is waiting for the next Tick.
func WithScheduler(schedule func()) Option {
	return func(t *Table) { t.schedule = schedule }
}

// WithPersister stores the vertical scroll offset under Props.ScrollPersistKey.
func WithPersister(p scroll.Persister) Option {
	return func(t *Table) { t.persister = p }
}

// dataIdentity identifies a row slice by its backing array and length.
type dataIdentity struct {
	ptr uintptr
	len int
}

func identityOf(rows []tree.Row) dataIdentity {
	return dataIdentity{ptr: reflect.ValueOf(rows).Pointer(), len: len(rows)}
}

// Table is the engine. Create it with New, configure it with SetProps, and call
// Render after every change.
type Table struct {
	props     Props
	logger    zerolog.Logger
	clock     clock.PassiveClock
	schedule  func()
	persister scroll.Persister

	columns   *columns.Manager
	colSnap   *columns.Snapshot
	heights   *rowheight.Cache
	flattener tree.Flattener
	expanded  *tree.KeySet
	flat      tree.Result
	coord     *scroll.Coordinator
	detector  *endreach.Detector
	resizer   *interact.ResizeController
	sorter    *interact.SortController

	lists map[pane.Kind]*window.List
	views map[pane.Kind]*paneView

	data         dataIdentity
	lastRanges   map[pane.Kind]window.Range
	lastVBar     float64
	viewport     float64
	extent       float64
	isScrolling  bool
	scrolledTick bool
	dataEpoch    bool
	layout       *Layout
}

// New creates a table for props.
func New(props Props, opts ...Option) *Table {
	t := &Table{
		logger:     zerolog.Nop(),
		clock:      clock.RealClock{},
		lists:      make(map[pane.Kind]*window.List, len(pane.All)),
		views:      make(map[pane.Kind]*paneView, len(pane.All)),
		lastRanges: make(map[pane.Kind]window.Range, len(pane.All)),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.With().Str("component", "grid").Logger()

	p := props.WithDefaults()
	t.props = p
	t.columns = columns.NewManager(columns.CompareOptions{IncludeFuncs: p.CompareColumnFuncs}, t.logger)
	t.heights = rowheight.New(t.estimate, t.keyAt, rowheight.Hooks{
		Schedule:   t.onCommitScheduled,
		Invalidate: t.invalidateFrom,
	}, t.logger)
	t.coord = scroll.NewCoordinator(t.logger)
	t.coord.OnScroll(t.emitScroll)
	t.coord.OnScrollbarPresenceChange(t.emitScrollbarPresence)
	t.coord.SetPersister(t.persister, p.ScrollPersistKey)
	t.coord.SetTopExtentFunc(t.maxScrollTop)
	t.detector = endreach.New(p.EndReachedThreshold, t.logger)
	t.resizer = interact.NewResizeController(p.ResizeInterval, t.clock, interact.ResizeHooks{
		OnResize:    t.applyResize,
		OnResizeEnd: t.finishResize,
	}, t.logger)
	t.sorter = interact.NewSortController(p.MultiSort())
	t.syncSort(p)

	t.expanded = tree.NewKeySet(p.DefaultExpandedRowKeys...)
	if p.ControlledExpansion {
		t.expanded.Replace(p.ExpandedRowKeys)
	}
	t.data = identityOf(p.Data)

	for _, k := range pane.All {
		list := window.New(window.Config{ItemSize: t.rowHeight, Overscan: p.OverscanRowCount})
		t.lists[k] = list
		t.views[k] = &paneView{kind: k, list: list}
	}
	t.coord.Register(t.views[pane.Main])
	return t
}

// Props returns the defaulted props in use.
func (t *Table) Props() Props { return t.props }

// SetProps replaces the props. A new Data slice starts a new end-reached epoch;
// unless it extends the previous slice in place, measured row heights are dropped.
func (t *Table) SetProps(props Props) {
	p := props.WithDefaults()
	prev := t.props
	t.props = p

	if p.CompareColumnFuncs != prev.CompareColumnFuncs {
		t.columns = columns.NewManager(columns.CompareOptions{IncludeFuncs: p.CompareColumnFuncs}, t.logger)
	}
	t.coord.SetPersister(t.persister, p.ScrollPersistKey)
	t.detector.SetThreshold(p.EndReachedThreshold)
	t.resizer.SetInterval(p.ResizeInterval)
	t.syncSort(p)
	for _, list := range t.lists {
		list.SetOverscan(p.OverscanRowCount)
	}

	if p.ControlledExpansion && !sameKeys(prev.ExpandedRowKeys, p.ExpandedRowKeys) {
		t.expanded.Replace(p.ExpandedRowKeys)
		t.invalidateFrom(0)
	}

	if id := identityOf(p.Data); id != t.data {
		prevLen := t.data.len
		appended := id.ptr == t.data.ptr && id.len > prevLen && prevLen > 0
		t.data = id
		t.dataEpoch = true
		t.detector.DataChanged()
		if appended {
			t.invalidateFrom(prevLen)
		} else {
			t.heights.Reset()
			t.invalidateFrom(0)
		}
		t.logger.Debug().Int("rows", id.len).Bool("appended", appended).Msg("data changed")
	}

	if p.Dynamic() != prev.Dynamic() || p.RowHeight != prev.RowHeight ||
		p.EstimatedRowHeight != prev.EstimatedRowHeight {
		t.invalidateFrom(0)
	}
}

// SetData replaces the rows, keeping every other prop.
func (t *Table) SetData(rows []tree.Row) {
	p := t.props
	p.Data = rows
	t.SetProps(p)
}

func sameKeys(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (t *Table) syncSort(p Props) {
	switch {
	case p.SortState != nil:
		t.sorter.Control(interact.SortBy{}, p.SortState)
	case p.SortBy != nil:
		t.sorter.Control(*p.SortBy, nil)
	case t.sorter.Controlled() || t.layout == nil:
		if p.DefaultSortState != nil {
			t.sorter.SetDefaultState(p.DefaultSortState)
		} else {
			t.sorter.SetDefault(p.DefaultSortBy)
		}
	}
}

// rows returns the flattened visible rows.
func (t *Table) rows() []tree.Row { return t.flat.Rows }

func (t *Table) keyAt(rowIndex int) (any, bool) {
	rows := t.rows()
	if rowIndex < 0 || rowIndex >= len(rows) {
		return nil, false
	}
	return tree.KeyOf(rows[rowIndex], t.props.RowKey)
}

func (t *Table) rowAt(rowIndex int) tree.Row {
	if rowIndex < 0 {
		i := -rowIndex - 1
		if i < len(t.props.FrozenData) {
			return t.props.FrozenData[i]
		}
		return nil
	}
	rows := t.rows()
	if rowIndex >= len(rows) {
		return nil
	}
	return rows[rowIndex]
}

// estimate is the estimator for unmeasured rows in dynamic mode.
func (t *Table) estimate(rowIndex int) float64 {
	p := t.props
	if p.EstimateRowHeight != nil {
		return p.EstimateRowHeight(rowIndex, t.rowAt(rowIndex))
	}
	if p.EstimatedRowHeight > 0 {
		return p.EstimatedRowHeight
	}
	return p.RowHeight
}

// rowHeight is the height used for layout of the row at rowIndex.
func (t *Table) rowHeight(rowIndex int) float64 {
	if !t.props.Dynamic() {
		return t.props.RowHeight
	}
	return t.heights.Estimate(rowIndex)
}

func (t *Table) estimatedItemSize() float64 {
	if t.props.EstimatedRowHeight > 0 {
		return t.props.EstimatedRowHeight
	}
	return t.props.RowHeight
}

func (t *Table) onCommitScheduled() {
	if t.schedule != nil {
		t.schedule()
	}
}

func (t *Table) invalidateFrom(index int) {
	for _, list := range t.lists {
		list.ResetAfterIndex(index)
	}
	metricRelayouts.Inc()
}

// PendingCommit reports whether Tick has work to do.
func (t *Table) PendingCommit() bool {
	return t.heights.Pending() || t.resizer.Pending()
}

// Tick runs deferred work: it commits buffered row heights and delivers a
// rate-limited resize width. It reports whether the layout changed.
func (t *Table) Tick() bool {
	changed := false
	if t.heights.Commit() {
		metricHeightCommits.Inc()
		changed = true
	}
	if t.resizer.Flush() {
		changed = true
	}
	t.isScrolling = t.scrolledTick
	t.scrolledTick = false
	return changed
}

// OnScroll handles a user scroll in pane p.
func (t *Table) OnScroll(p pane.Kind, off scroll.Offset) bool {
	prevTop := t.coord.Offset().Top
	if !t.coord.HandleScroll(p, off) {
		return false
	}
	t.isScrolling = true
	t.scrolledTick = true
	t.checkEndReachedOnScroll(prevTop)
	return true
}

func (t *Table) checkEndReachedOnScroll(prevTop float64) {
	m := endreach.Measure{
		ScrollTop:      t.coord.Offset().Top,
		ScrollExtent:   t.extent,
		ViewportHeight: t.viewport,
	}
	if distance, ok := t.detector.OnScroll(prevTop, m); ok {
		t.emitEndReached(distance)
	}
}

// OnRowMeasured records the drawn height of a row in pane p. Only dynamic tables
// and non-frozen rows are measured.
func (t *Table) OnRowMeasured(p pane.Kind, rowIndex int, height float64) {
	if !t.props.Dynamic() || rowIndex < 0 {
		return
	}
	key, ok := t.keyAt(rowIndex)
	if !ok {
		return
	}
	if t.colSnap != nil && t.colSnap.HasFrozen() {
		t.heights.RecordFrozenPaneMeasurement(key, rowIndex, p, height)
		return
	}
	t.heights.RecordMeasurement(key, rowIndex, height)
}

// ResetAfterRowIndex drops cached row offsets from rowIndex onward.
func (t *Table) ResetAfterRowIndex(rowIndex int) {
	t.invalidateFrom(max(0, rowIndex))
}

// ResetRowHeightCache drops every measured height.
func (t *Table) ResetRowHeightCache() {
	t.heights.Reset()
	t.invalidateFrom(0)
}

// RowHeight returns the layout height of the row at rowIndex.
func (t *Table) RowHeight(rowIndex int) float64 { return t.rowHeight(rowIndex) }

// ExpandedRowKeys returns the expanded keys in tree order.
func (t *Table) ExpandedRowKeys() []any {
	return t.expanded.Keys(t.props.Data, t.props.RowKey, t.props.ChildrenField)
}

// ToggleRowExpansion flips the expansion of the row at rowIndex.
func (t *Table) ToggleRowExpansion(rowIndex int) bool {
	key, ok := t.keyAt(rowIndex)
	if !ok {
		return false
	}
	return t.SetRowExpanded(rowIndex, !t.expanded.Has(key))
}

// SetRowExpanded expands or collapses the row at rowIndex. Rows without children
// are ignored. With controlled expansion the change is only reported.
func (t *Table) SetRowExpanded(rowIndex int, expanded bool) bool {
	row := t.rowAt(rowIndex)
	key, ok := t.keyAt(rowIndex)
	if !ok || !tree.IsExpandable(row, t.props.ChildrenField) || t.expanded.Has(key) == expanded {
		return false
	}

	next := tree.NewKeySet(t.ExpandedRowKeys()...)
	if expanded {
		next.Add(key)
	} else {
		next.Remove(key)
	}
	nextKeys := next.Keys(t.props.Data, t.props.RowKey, t.props.ChildrenField)

	if !t.props.ControlledExpansion {
		if expanded {
			t.expanded.Add(key)
		} else {
			t.expanded.Remove(key)
		}
		t.invalidateFrom(rowIndex)
	}

	if t.props.OnRowExpand != nil {
		t.props.OnRowExpand(RowExpandEvent{RowData: row, RowIndex: rowIndex, RowKey: key, Expanded: expanded})
	}
	if t.props.OnExpandedRowsChange != nil {
		t.props.OnExpandedRowsChange(nextKeys)
	}
	return true
}

// IsExpanded reports whether key is expanded.
func (t *Table) IsExpanded(key any) bool { return t.expanded.Has(key) }

// HeaderClick handles a click on the header of column key.
func (t *Table) HeaderClick(key string) bool {
	if t.colSnap == nil {
		return false
	}
	col, ok := t.colSnap.Column(key)
	if !ok {
		return false
	}
	ev, ok := t.sorter.Click(col)
	if !ok {
		return false
	}
	if t.props.OnColumnSort != nil {
		t.props.OnColumnSort(ev)
	}
	return true
}

// SortOrder returns the order of column key, if sorted.
func (t *Table) SortOrder(key string) (columns.SortOrder, bool) { return t.sorter.Order(key) }

// SortBy returns the single-sort state.
func (t *Table) SortBy() interact.SortBy { return t.sorter.SortBy() }

// SortState returns the multi-sort state.
func (t *Table) SortState() map[string]columns.SortOrder { return t.sorter.State() }

// StartColumnResize begins resizing column key.
func (t *Table) StartColumnResize(key string) bool {
	if t.colSnap == nil {
		return false
	}
	col, ok := t.colSnap.Column(key)
	if !ok {
		return false
	}
	return t.resizer.Start(col)
}

// ResizeColumn drags the active resize to width.
func (t *Table) ResizeColumn(width float64) (float64, bool) {
	return t.resizer.Drag(width)
}

// EndColumnResize finishes the active resize.
func (t *Table) EndColumnResize() bool {
	_, _, ok := t.resizer.End()
	return ok
}

// ResizeState returns the in-progress resize.
func (t *Table) ResizeState() interact.ResizeState { return t.resizer.State() }

func (t *Table) applyResize(key string, width float64) {
	if !t.columns.SetColumnWidth(key, width) {
		return
	}
	metricResizeEvents.Inc()
	if t.props.OnColumnResize != nil {
		col, _ := t.colSnap.Column(key)
		t.props.OnColumnResize(ColumnResizeEvent{Column: col, Width: width})
	}
}

func (t *Table) finishResize(key string, width float64) {
	if t.props.OnColumnResizeEnd != nil && t.colSnap != nil {
		col, _ := t.colSnap.Column(key)
		t.props.OnColumnResizeEnd(ColumnResizeEvent{Column: col, Width: width})
	}
}

// ScrollToRow scrolls every pane so rowIndex is visible per align.
func (t *Table) ScrollToRow(rowIndex int, align pane.Align) bool {
	prevTop := t.coord.Offset().Top
	if !t.coord.ScrollToRow(rowIndex, align) {
		return false
	}
	t.checkEndReachedOnScroll(prevTop)
	return true
}

// maxScrollTop is the vertical extent with the row heights measured so far.
func (t *Table) maxScrollTop() float64 {
	if t.layout == nil {
		return math.Inf(1)
	}
	return t.lists[pane.Main].TotalSize() - t.viewport
}

// ScrollToTop sets the vertical offset.
func (t *Table) ScrollToTop(top float64) bool {
	prevTop := t.coord.Offset().Top
	if !t.coord.ScrollToTop(top) {
		return false
	}
	t.checkEndReachedOnScroll(prevTop)
	return true
}

// ScrollToLeft sets the horizontal offset.
func (t *Table) ScrollToLeft(left float64) bool { return t.coord.ScrollToLeft(left) }

// ScrollToPosition sets both offsets.
func (t *Table) ScrollToPosition(off scroll.Offset) bool {
	prevTop := t.coord.Offset().Top
	if !t.coord.ScrollTo(off) {
		return false
	}
	t.checkEndReachedOnScroll(prevTop)
	return true
}

// ScrollOffset returns the canonical offset.
func (t *Table) ScrollOffset() scroll.Offset { return t.coord.Offset() }

// Layout returns the most recent render result, or nil before the first Render.
func (t *Table) Layout() *Layout { return t.layout }

func (t *Table) emitScroll(ev scroll.Event) {
	if t.props.OnScroll != nil {
		t.props.OnScroll(ev)
	}
}

func (t *Table) emitScrollbarPresence(m scroll.Metrics) {
	if t.props.OnScrollbarPresenceChange != nil {
		t.props.OnScrollbarPresenceChange(m)
	}
}

func (t *Table) emitEndReached(distance float64) {
	metricEndReached.Inc()
	if t.props.OnEndReached != nil {
		t.props.OnEndReached(distance)
	}
}

// paneView adapts a window.List to scroll.Pane.
type paneView struct {
	kind pane.Kind
	list *window.List
	left float64
}

func (v *paneView) Kind() pane.Kind { return v.kind }

func (v *paneView) SyncOffset(off scroll.Offset) {
	v.list.SetOffset(off.Top)
	if v.kind == pane.Main {
		v.left = off.Left
	}
}

func (v *paneView) ScrollToRow(rowIndex int, align pane.Align) float64 {
	return v.list.ScrollToItem(rowIndex, align)
}
