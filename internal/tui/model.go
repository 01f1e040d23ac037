package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"k8s.io/utils/clock"

	"github.com/rshade/vgrid/internal/cli/pagination"
	"github.com/rshade/vgrid/internal/dataset"
	"github.com/rshade/vgrid/internal/grid"
	"github.com/rshade/vgrid/internal/grid/columns"
	"github.com/rshade/vgrid/internal/grid/interact"
	"github.com/rshade/vgrid/internal/grid/pane"
	"github.com/rshade/vgrid/internal/grid/scroll"
	"github.com/rshade/vgrid/internal/grid/tree"
)

const (
	// tickInterval paces deferred engine work: height commits, resize flushes
	// and the end of a scroll.
	tickInterval = 50 * time.Millisecond
	hScrollStep  = 4
	footerLines  = 1
)

// ViewState is the screen the model shows.
type ViewState int

// View states.
const (
	ViewStateLoading ViewState = iota
	ViewStateTable
	ViewStateError
	ViewStateQuitting
)

// DataChangedMsg asks the model to reload its rows.
type DataChangedMsg struct{}

type rowsLoadedMsg struct {
	rows   []tree.Row
	err    error
	reload bool
}

// pageLoadedMsg carries the rows of the pager that produced them. A sort or a
// reload replaces the pager, and pages from the old one are dropped.
type pageLoadedMsg struct {
	pager *dataset.Pager
	rows  []tree.Row
	more  bool
}

type tickMsg struct{}

// LoadFunc reads the table rows.
type LoadFunc func(ctx context.Context) ([]tree.Row, error)

// Options configure a TableModel.
type Options struct {
	Load LoadFunc
	// Props are the engine settings. Width and Height follow the terminal;
	// columns are derived from the data when Props.Columns is empty.
	Props       grid.Props
	FrozenLeft  []string
	FrozenRight []string
	// Wrap lays long cell values out over several lines. Row heights are then
	// measured, so Props should enable dynamic heights.
	Wrap bool
	// PageSize rows are shown at first and another page is added each time the
	// end of the table is reached. Zero shows every row.
	PageSize  int
	ExpandAll bool
	Sort      []interact.SortBy
	MultiSort bool

	Persister scroll.Persister
	// RestoreTop is applied once after the first layout when Restore is set.
	RestoreTop float64
	Restore    bool

	Title  string
	Clock  clock.PassiveClock
	Logger zerolog.Logger
}

// TableModel is the Bubble Tea host for a grid.Table. It draws the engine's
// panes as text, reports the drawn height of every row and runs the engine's
// deferred work on a tick.
type TableModel struct {
	ctx    context.Context
	opts   Options
	logger zerolog.Logger
	keys   KeyMap
	help   help.Model

	state   ViewState
	loading *LoadingState
	err     error
	lastErr error

	table    *grid.Table
	source   []tree.Row
	pager    *dataset.Pager
	sorter   *pagination.RowSorter
	sortList []interact.SortBy

	width  int
	height int
	focus  int
	frame  string

	tickPending   bool
	wantMore      bool
	loadingPage   bool
	resortPending bool
	resizeTouched bool
	restored      bool
	commits       int
}

// NewTableModel creates a model that loads its rows when started.
func NewTableModel(ctx context.Context, opts Options) *TableModel {
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	cf := opts.Props.ChildrenField
	if cf == "" {
		cf = grid.DefaultChildrenField
	}
	return &TableModel{
		ctx:     ctx,
		opts:    opts,
		logger:  opts.Logger.With().Str("component", "tui").Logger(),
		keys:    DefaultKeyMap(),
		help:    help.New(),
		state:   ViewStateLoading,
		loading: NewLoadingState(),
		sorter:  pagination.NewRowSorter(cf),
	}
}

// Init starts the spinner and the initial load.
func (m *TableModel) Init() tea.Cmd {
	return tea.Batch(m.loading.Init(), m.loadCmd(false))
}

func (m *TableModel) loadCmd(reload bool) tea.Cmd {
	load, ctx := m.opts.Load, m.ctx
	return func() tea.Msg {
		if load == nil {
			return rowsLoadedMsg{reload: reload}
		}
		rows, err := load(ctx)
		return rowsLoadedMsg{rows: rows, err: err, reload: reload}
	}
}

func (m *TableModel) nextPageCmd() tea.Cmd {
	pager := m.pager
	return func() tea.Msg {
		rows, more := pager.Next()
		return pageLoadedMsg{pager: pager, rows: rows, more: more}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

// Update handles messages (Bubble Tea interface).
func (m *TableModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, m.refresh()
	case spinner.TickMsg:
		if m.state != ViewStateLoading {
			return m, nil
		}
		return m, m.loading.Update(msg)
	case rowsLoadedMsg:
		return m.handleRowsLoaded(msg)
	case pageLoadedMsg:
		if msg.pager != m.pager {
			m.logger.Debug().Msg("dropping page from a replaced pager")
			return m, nil
		}
		m.loadingPage = false
		if m.table != nil && msg.more {
			m.table.SetData(msg.rows)
			m.logger.Debug().Int("rows", len(msg.rows)).Msg("page loaded")
		}
		return m, m.refresh()
	case DataChangedMsg:
		if m.state != ViewStateTable {
			return m, nil
		}
		m.logger.Debug().Msg("data changed, reloading")
		return m, m.loadCmd(true)
	case tickMsg:
		m.tickPending = false
		return m, m.handleTick()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *TableModel) handleRowsLoaded(msg rowsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if msg.reload {
			m.lastErr = msg.err
			m.logger.Warn().Err(msg.err).Msg("reload failed, keeping previous rows")
			return m, m.refresh()
		}
		m.state = ViewStateError
		m.err = msg.err
		return m, nil
	}

	m.lastErr = nil
	m.source = msg.rows
	if !msg.reload || m.table == nil {
		m.setupTable()
		m.state = ViewStateTable
		return m, m.refresh()
	}

	loaded := len(m.table.Props().Data)
	m.table.SetData(m.buildRows(loaded))
	m.logger.Debug().Int("rows", len(msg.rows)).Msg("rows reloaded")
	return m, m.refresh()
}

// setupTable creates the engine for the first batch of rows.
func (m *TableModel) setupTable() {
	p := m.opts.Props
	rowKey, childrenField := p.RowKey, p.ChildrenField
	if rowKey == "" {
		rowKey = grid.DefaultRowKey
	}
	if childrenField == "" {
		childrenField = grid.DefaultChildrenField
	}

	if len(p.Columns) == 0 {
		p.Columns = BuildColumns(m.source, ColumnSpec{
			RowKey:        rowKey,
			ChildrenField: childrenField,
			Fixed:         p.Fixed,
			FrozenLeft:    m.opts.FrozenLeft,
			FrozenRight:   m.opts.FrozenRight,
		})
	}
	if p.ExpandColumnKey == "" && HasChildren(m.source, childrenField) {
		for _, c := range p.Columns {
			if c.Frozen != columns.FrozenRight && !c.Hidden {
				p.ExpandColumnKey = c.Key
				break
			}
		}
	}
	if m.opts.ExpandAll {
		p.DefaultExpandedRowKeys = ParentKeys(m.source, rowKey, childrenField)
	}

	m.sortList = m.opts.Sort
	if m.opts.MultiSort {
		p.DefaultSortState = pagination.SortState(m.opts.Sort)
	} else if len(m.opts.Sort) > 0 {
		m.sortList = m.opts.Sort[:1]
		p.DefaultSortBy = m.opts.Sort[0]
	}

	p.OnEndReached = func(float64) { m.wantMore = true }
	p.OnColumnSort = m.onSort
	p.OnColumnResizeEnd = func(ev grid.ColumnResizeEvent) {
		m.logger.Debug().Str("column", ev.Column.Key).Float64("width", ev.Width).Msg("column resized")
	}
	p.Data = m.buildRows(0)
	p.Width, p.Height = m.tableSize()
	p.FooterHeight = footerLines

	opts := []grid.Option{
		grid.WithLogger(m.opts.Logger),
		grid.WithClock(m.opts.Clock),
		grid.WithScheduler(func() { m.commits++ }),
	}
	if m.opts.Persister != nil {
		opts = append(opts, grid.WithPersister(m.opts.Persister))
	}
	m.table = grid.New(p, opts...)
}

// buildRows sorts the source rows and pages them, keeping at least keep rows
// loaded.
func (m *TableModel) buildRows(keep int) []tree.Row {
	rows := m.sorter.Sort(m.source, m.sortList)
	m.loadingPage = false
	if m.opts.PageSize <= 0 {
		m.pager = nil
		return rows
	}

	pager, err := dataset.NewPager(rows, m.opts.PageSize)
	if err != nil {
		m.logger.Warn().Err(err).Msg("invalid page size, showing every row")
		m.pager = nil
		return rows
	}
	m.pager = pager
	loaded, _ := pager.Next()
	for len(loaded) < keep {
		next, more := pager.Next()
		if !more {
			break
		}
		loaded = next
	}
	return loaded
}

// onSort keeps the host sort list in step with the engine's sort state. The
// rows are re-sorted once the header click returns.
func (m *TableModel) onSort(ev interact.SortEvent) {
	if ev.State == nil {
		m.sortList = []interact.SortBy{{Key: ev.Key, Order: ev.Order}}
		m.resortPending = true
		return
	}

	list := make([]interact.SortBy, 0, len(ev.State))
	seen := false
	for _, by := range m.sortList {
		if o, ok := ev.State[by.Key]; ok {
			list = append(list, interact.SortBy{Key: by.Key, Order: o})
			seen = seen || by.Key == ev.Key
		}
	}
	if !seen {
		list = append(list, interact.SortBy{Key: ev.Key, Order: ev.Order})
	}
	m.sortList = list
	m.resortPending = true
}

func (m *TableModel) applySort() {
	m.resortPending = false
	loaded := len(m.table.Props().Data)
	m.table.SetData(m.buildRows(loaded))
}

func (m *TableModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.state = ViewStateQuitting
		return m, tea.Quit
	}
	if m.state != ViewStateTable || m.table == nil {
		return m, nil
	}

	viewport := 1.0
	if l := m.table.Layout(); l != nil {
		viewport = max(1, l.ViewportHeight)
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.scrollBy(0, -1)
	case key.Matches(msg, m.keys.Down):
		m.scrollBy(0, 1)
	case key.Matches(msg, m.keys.PageUp):
		m.scrollBy(0, -viewport)
	case key.Matches(msg, m.keys.PageDown):
		m.scrollBy(0, viewport)
	case key.Matches(msg, m.keys.Home):
		m.scrollTo(m.table.ScrollOffset().Left, 0)
	case key.Matches(msg, m.keys.End):
		if l := m.table.Layout(); l != nil {
			m.scrollTo(m.table.ScrollOffset().Left, l.TotalRowsHeight)
		}
	case key.Matches(msg, m.keys.Left):
		m.scrollBy(-hScrollStep, 0)
	case key.Matches(msg, m.keys.Right):
		m.scrollBy(hScrollStep, 0)
	case key.Matches(msg, m.keys.NextColumn):
		m.moveFocus(1)
	case key.Matches(msg, m.keys.PrevColumn):
		m.moveFocus(-1)
	case key.Matches(msg, m.keys.Toggle):
		if row, ok := m.TopRow(); ok {
			m.table.ToggleRowExpansion(row)
		}
	case key.Matches(msg, m.keys.Sort):
		if k := m.FocusedColumn(); k != "" && m.table.HeaderClick(k) && m.resortPending {
			m.applySort()
		}
	case key.Matches(msg, m.keys.Grow):
		m.resizeFocused(1)
	case key.Matches(msg, m.keys.Shrink):
		m.resizeFocused(-1)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	default:
		return m, nil
	}
	return m, m.refresh()
}

// scrollBy scrolls the main pane; the engine syncs the frozen panes.
func (m *TableModel) scrollBy(dLeft, dTop float64) {
	off := m.table.ScrollOffset()
	m.scrollTo(off.Left+dLeft, off.Top+dTop)
}

func (m *TableModel) scrollTo(left, top float64) {
	m.table.OnScroll(pane.Main, scroll.Offset{Left: max(0, left), Top: max(0, top)})
}

func (m *TableModel) visibleColumns() []columns.Column {
	l := m.table.Layout()
	if l == nil || l.Columns == nil {
		return nil
	}
	return l.Columns.Columns()
}

func (m *TableModel) moveFocus(delta int) {
	n := len(m.visibleColumns())
	if n == 0 {
		return
	}
	m.focus = ((m.focus+delta)%n + n) % n
}

// FocusedColumn returns the key of the column that sort and resize act on.
func (m *TableModel) FocusedColumn() string {
	cols := m.visibleColumns()
	if len(cols) == 0 {
		return ""
	}
	return cols[min(m.focus, len(cols)-1)].Key
}

// TopRow returns the first row visible in the main pane.
func (m *TableModel) TopRow() (int, bool) {
	l := m.table.Layout()
	if l == nil {
		return 0, false
	}
	main, ok := l.Pane(pane.Main)
	if !ok || main.Range.Empty() {
		return 0, false
	}
	return main.Range.VisibleStart, true
}

// resizeFocused drags the focused column by delta cells, starting a drag on
// the first press. The drag ends on the first tick without a press.
func (m *TableModel) resizeFocused(delta float64) {
	k := m.FocusedColumn()
	if k == "" {
		return
	}
	st := m.table.ResizeState()
	if !st.Active() || st.Key != k {
		if !m.table.StartColumnResize(k) {
			return
		}
		st = m.table.ResizeState()
	}
	m.table.ResizeColumn(st.Width + delta)
	m.resizeTouched = true
}

func (m *TableModel) handleTick() tea.Cmd {
	if m.table == nil {
		return nil
	}
	m.table.Tick()
	if m.table.ResizeState().Active() {
		if !m.resizeTouched {
			m.table.EndColumnResize()
		}
		m.resizeTouched = false
	}
	return m.refresh()
}

// tableSize is the terminal area left for the table after the help line.
func (m *TableModel) tableSize() (float64, float64) {
	helpHeight := lipgloss.Height(m.help.View(m.keys))
	return float64(max(0, m.width)), float64(max(0, m.height-helpHeight))
}

// refresh lays the table out, draws it and schedules follow-up work.
func (m *TableModel) refresh() tea.Cmd {
	if m.table == nil {
		return nil
	}

	p := m.table.Props()
	if w, h := m.tableSize(); p.Width != w || p.Height != h {
		p.Width, p.Height = w, h
		m.table.SetProps(p)
	}

	layout := m.table.Render()
	if m.opts.Restore && !m.restored && m.width > 0 {
		m.restored = true
		if m.table.ScrollToTop(m.opts.RestoreTop) {
			layout = m.table.Render()
		}
	}

	r := newFrameRenderer(layout)
	r.expandKey = p.ExpandColumnKey
	r.focusKey = m.FocusedColumn()
	r.wrap = m.opts.Wrap
	r.measure = m.table.OnRowMeasured
	lines := r.Lines()
	for range cells(layout.FooterHeight) {
		lines = append(lines, fitStyled(StatusStyle.Render(m.status(layout)), cells(layout.TableWidth)))
	}
	m.frame = strings.Join(lines, "\n")

	var cmds []tea.Cmd
	if m.wantMore {
		m.wantMore = false
		if m.pager != nil && !m.pager.Done() && !m.loadingPage {
			m.loadingPage = true
			cmds = append(cmds, m.nextPageCmd())
		}
	}
	if !m.tickPending && (m.table.PendingCommit() || layout.IsScrolling || layout.Resize.Active()) {
		m.tickPending = true
		cmds = append(cmds, tickCmd())
	}
	return tea.Batch(cmds...)
}

func (m *TableModel) status(l *grid.Layout) string {
	var parts []string
	if m.opts.Title != "" {
		parts = append(parts, m.opts.Title)
	}

	if m.pager != nil {
		loaded, total := m.pager.Progress()
		parts = append(parts, fmt.Sprintf("rows %d/%d", loaded, total))
	} else {
		parts = append(parts, fmt.Sprintf("rows %d", len(m.source)))
	}
	if main, ok := l.Pane(pane.Main); ok && !main.Range.Empty() {
		parts = append(parts, fmt.Sprintf("view %d-%d of %d", main.Range.VisibleStart+1, main.Range.VisibleStop+1, l.RowCount))
	}
	if len(m.sortList) > 0 {
		keys := make([]string, len(m.sortList))
		for i, by := range m.sortList {
			keys[i] = by.Key + ":" + string(by.Order)
		}
		parts = append(parts, "sort "+strings.Join(keys, ","))
	}
	if f := m.FocusedColumn(); f != "" {
		parts = append(parts, "col "+f)
	}
	if l.Resize.Active() {
		parts = append(parts, ResizeStyle.Render(fmt.Sprintf("resizing %s → %d", l.Resize.Key, cells(l.Resize.Width))))
	}
	if m.lastErr != nil {
		parts = append(parts, ErrorStyle.Render("reload failed: "+m.lastErr.Error()))
	}
	return " " + strings.Join(parts, " · ")
}

// View renders the current screen (Bubble Tea interface).
func (m *TableModel) View() string {
	switch m.state {
	case ViewStateLoading:
		return RenderLoading(m.loading)
	case ViewStateError:
		return ErrorStyle.Render("Error: "+m.err.Error()) + "\n"
	case ViewStateQuitting:
		return ""
	default:
		return m.frame + "\n" + m.help.View(m.keys)
	}
}

// State returns the current screen.
func (m *TableModel) State() ViewState { return m.state }

// Table returns the engine, or nil before the rows are loaded.
func (m *TableModel) Table() *grid.Table { return m.table }

// Err returns the load error shown in the error state.
func (m *TableModel) Err() error { return m.err }

// HeightCommitRequests counts how often the engine asked for a height commit.
func (m *TableModel) HeightCommitRequests() int { return m.commits }
