// Package scroll keeps the panes of a table scrolled together.
//
// A Coordinator owns the canonical offset. The pane that receives a user scroll is
// authoritative for that event: the coordinator stores its offset and pushes it to
// every other registered pane. Frozen panes only scroll vertically, so their
// events never move the horizontal offset. Offsets pushed to driven panes are
// never fed back, which prevents scroll feedback loops between panes.
package scroll

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/rshade/vgrid/internal/grid/pane"
)

// Offset is a scroll position.
type Offset struct {
	Left float64
	Top  float64
}

// Pane is a surface whose scroll position follows the coordinator.
type Pane interface {
	Kind() pane.Kind
	// SyncOffset moves the pane without emitting a scroll event.
	SyncOffset(Offset)
	// ScrollToRow scrolls the row into view and returns the resulting top offset.
	ScrollToRow(rowIndex int, align pane.Align) float64
}

// Persister stores the vertical offset under a caller key. Implementations must not block.
type Persister interface {
	PersistScrollTop(key string, top float64)
}

// Event describes an accepted scroll.
type Event struct {
	Offset Offset
	// Source is the pane that scrolled; meaningless when Programmatic is set.
	Source       pane.Kind
	Programmatic bool
}

// Coordinator holds the canonical offset and scrollbar state. It is not safe for
// concurrent use.
type Coordinator struct {
	logger zerolog.Logger

	panes   []Pane
	offset  Offset
	maxLeft float64
	maxTop  float64
	syncing bool

	persister  Persister
	persistKey string

	metrics    Metrics
	onPresence func(Metrics)
	onScroll   func(Event)
	topExtent  func() float64
}

// NewCoordinator creates a coordinator at offset zero.
func NewCoordinator(logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		logger:  logger.With().Str("component", "scroll").Logger(),
		maxLeft: math.Inf(1),
		maxTop:  math.Inf(1),
	}
}

// Register adds p, replacing any pane of the same kind, and syncs it to the current offset.
func (c *Coordinator) Register(p Pane) {
	c.Unregister(p.Kind())
	c.panes = append(c.panes, p)
	c.syncing = true
	p.SyncOffset(c.offset)
	c.syncing = false
}

// Unregister removes the pane of kind k.
func (c *Coordinator) Unregister(k pane.Kind) {
	for i, p := range c.panes {
		if p.Kind() == k {
			c.panes = append(c.panes[:i], c.panes[i+1:]...)
			return
		}
	}
}

// Panes returns the registered kinds in registration order.
func (c *Coordinator) Panes() []pane.Kind {
	kinds := make([]pane.Kind, len(c.panes))
	for i, p := range c.panes {
		kinds[i] = p.Kind()
	}
	return kinds
}

// SetPersister enables best-effort persistence of ScrollTop under key.
func (c *Coordinator) SetPersister(p Persister, key string) {
	c.persister = p
	c.persistKey = key
}

// OnScroll sets the listener for accepted scroll events.
func (c *Coordinator) OnScroll(fn func(Event)) { c.onScroll = fn }

// OnScrollbarPresenceChange sets the listener for scrollbar visibility changes.
func (c *Coordinator) OnScrollbarPresenceChange(fn func(Metrics)) { c.onPresence = fn }

// SetTopExtentFunc sets the source of the vertical extent used by ScrollToRow.
// Panes measure rows while scrolling to one, so the extent from the last layout
// pass can be stale by then.
func (c *Coordinator) SetTopExtentFunc(fn func() float64) { c.topExtent = fn }

// Offset returns the canonical offset.
func (c *Coordinator) Offset() Offset { return c.offset }

// Syncing reports whether the coordinator is currently pushing an offset to panes.
func (c *Coordinator) Syncing() bool { return c.syncing }

// HandleScroll records a user scroll from source and propagates it. Events arriving
// while the coordinator is pushing offsets, and events that do not move anything,
// are ignored. It reports whether the offset changed.
func (c *Coordinator) HandleScroll(source pane.Kind, off Offset) bool {
	if c.syncing {
		return false
	}
	if source.IsFrozen() {
		off.Left = c.offset.Left
	}
	return c.apply(off, source, false)
}

// ScrollTo moves every pane to off.
func (c *Coordinator) ScrollTo(off Offset) bool {
	return c.apply(off, pane.Main, true)
}

// ScrollToTop changes only the vertical offset.
func (c *Coordinator) ScrollToTop(top float64) bool {
	return c.ScrollTo(Offset{Left: c.offset.Left, Top: top})
}

// ScrollToLeft changes only the horizontal offset.
func (c *Coordinator) ScrollToLeft(left float64) bool {
	return c.ScrollTo(Offset{Left: left, Top: c.offset.Top})
}

// ScrollToRow asks each pane to bring rowIndex into view. The main pane's result,
// or the first pane's when there is no main pane, becomes the canonical top. Every
// pane ends at the canonical offset, including when it did not change.
func (c *Coordinator) ScrollToRow(rowIndex int, align pane.Align) bool {
	if len(c.panes) == 0 {
		return false
	}
	top, haveTop := 0.0, false
	c.syncing = true
	for _, p := range c.panes {
		t := p.ScrollToRow(rowIndex, align)
		if !haveTop || p.Kind() == pane.Main {
			top, haveTop = t, true
		}
	}
	c.syncing = false

	if c.topExtent != nil {
		c.maxTop = math.Max(0, c.topExtent())
	}
	if c.ScrollToTop(top) {
		return true
	}
	c.syncAll()
	return false
}

// syncAll pushes the canonical offset to every pane.
func (c *Coordinator) syncAll() {
	c.syncing = true
	for _, p := range c.panes {
		p.SyncOffset(c.offset)
	}
	c.syncing = false
}

// SetExtents sets the maximum offsets and clamps the current offset to them.
func (c *Coordinator) SetExtents(maxLeft, maxTop float64) {
	c.maxLeft = math.Max(0, maxLeft)
	c.maxTop = math.Max(0, maxTop)
	clamped := c.clamp(c.offset)
	if clamped != c.offset {
		c.apply(clamped, pane.Main, true)
	}
}

func (c *Coordinator) clamp(off Offset) Offset {
	off.Left = math.Max(0, math.Min(off.Left, c.maxLeft))
	off.Top = math.Max(0, math.Min(off.Top, c.maxTop))
	return off
}

func (c *Coordinator) apply(off Offset, source pane.Kind, programmatic bool) bool {
	off = c.clamp(off)
	if off == c.offset {
		return false
	}
	c.offset = off

	c.syncing = true
	for _, p := range c.panes {
		if !programmatic && p.Kind() == source {
			continue
		}
		p.SyncOffset(off)
	}
	c.syncing = false

	if c.persister != nil && c.persistKey != "" {
		c.persister.PersistScrollTop(c.persistKey, off.Top)
	}
	if c.onScroll != nil {
		c.onScroll(Event{Offset: off, Source: source, Programmatic: programmatic})
	}
	c.logger.Trace().
		Float64("left", off.Left).
		Float64("top", off.Top).
		Str("source", source.String()).
		Bool("programmatic", programmatic).
		Msg("scroll")
	return true
}

// Metrics returns the last scrollbar metrics.
func (c *Coordinator) Metrics() Metrics { return c.metrics }

// UpdateScrollbarMetrics stores m and notifies the presence listener when either
// scrollbar appeared or disappeared. It reports whether presence changed.
func (c *Coordinator) UpdateScrollbarMetrics(m Metrics) bool {
	prev := c.metrics
	c.metrics = m
	if prev.HorizontalVisible == m.HorizontalVisible && prev.VerticalVisible == m.VerticalVisible {
		return false
	}
	c.logger.Debug().
		Bool("horizontal", m.HorizontalVisible).
		Bool("vertical", m.VerticalVisible).
		Msg("scrollbar presence changed")
	if c.onPresence != nil {
		c.onPresence(m)
	}
	return true
}
