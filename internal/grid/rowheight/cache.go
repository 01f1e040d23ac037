// Package rowheight caches measured row heights for tables whose rows size
// themselves to their content.
//
// Measurements arrive from every pane that draws a row. They are collected in a
// buffer together with the lowest affected row index and merged into the committed
// map in one batch on the next idle tick, so a burst of N measurements causes a
// single relayout. Rows without a committed height fall back to an estimator.
package rowheight

import (
	"reflect"

	"github.com/rs/zerolog"

	"github.com/rshade/vgrid/internal/grid/pane"
)

// Estimator returns the assumed height of a row that has not been measured.
type Estimator func(rowIndex int) float64

// KeyResolver maps a row index to its row key.
type KeyResolver func(rowIndex int) (any, bool)

// Hooks connect the cache to its owner.
type Hooks struct {
	// Schedule is called once per batch, on the first buffered measurement. The owner
	// must call Commit on its next idle tick.
	Schedule func()
	// Invalidate is called by Commit with the lowest changed row index.
	Invalidate func(fromIndex int)
}

// Cache holds committed and buffered row heights. It is not safe for concurrent use.
type Cache struct {
	estimate Estimator
	keyAt    KeyResolver
	hooks    Hooks
	logger   zerolog.Logger

	committed map[any]float64
	buffer    map[any]float64
	panes     map[any]map[pane.Kind]float64

	resetIndex int
	hasReset   bool
	scheduled  bool
	commits    int
}

// New creates an empty cache.
func New(estimate Estimator, keyAt KeyResolver, hooks Hooks, logger zerolog.Logger) *Cache {
	c := &Cache{
		estimate: estimate,
		keyAt:    keyAt,
		hooks:    hooks,
		logger:   logger.With().Str("component", "rowheight").Logger(),
	}
	c.clear()
	return c
}

func (c *Cache) clear() {
	c.committed = make(map[any]float64)
	c.buffer = make(map[any]float64)
	c.panes = make(map[any]map[pane.Kind]float64)
	c.resetIndex = 0
	c.hasReset = false
	c.scheduled = false
}

// SetEstimator replaces the estimator used for unmeasured rows.
func (c *Cache) SetEstimator(estimate Estimator) { c.estimate = estimate }

// SetKeyResolver replaces the index-to-key mapping.
func (c *Cache) SetKeyResolver(keyAt KeyResolver) { c.keyAt = keyAt }

// Estimate returns the committed height of the row at rowIndex, or the estimator's
// value when it has none. Frozen rows (negative indices) always use the estimator.
func (c *Cache) Estimate(rowIndex int) float64 {
	if rowIndex >= 0 && c.keyAt != nil {
		if key, ok := c.keyAt(rowIndex); ok && hashable(key) {
			if h, found := c.committed[key]; found {
				return h
			}
		}
	}
	return c.estimated(rowIndex)
}

func (c *Cache) estimated(rowIndex int) float64 {
	if c.estimate == nil {
		return 0
	}
	h := c.estimate(rowIndex)
	if h < 0 {
		return 0
	}
	return h
}

// Height returns the committed height for rowKey.
func (c *Cache) Height(rowKey any) (float64, bool) {
	if !hashable(rowKey) {
		return 0, false
	}
	h, ok := c.committed[rowKey]
	return h, ok
}

// RecordMeasurement buffers a measured height for the row and lowers the reset
// index to rowIndex if needed. A measurement equal to the committed height with
// nothing buffered for the row is dropped, so steady redraws never schedule work.
// Frozen rows and rows without a usable key are ignored.
func (c *Cache) RecordMeasurement(rowKey any, rowIndex int, height float64) {
	if rowIndex < 0 || !hashable(rowKey) {
		return
	}
	if height < 0 {
		height = 0
	}
	if _, buffered := c.buffer[rowKey]; !buffered {
		if h, ok := c.committed[rowKey]; ok && h == height {
			return
		}
	}

	c.buffer[rowKey] = height
	if !c.hasReset || rowIndex < c.resetIndex {
		c.resetIndex = rowIndex
		c.hasReset = true
	}

	if !c.scheduled {
		c.scheduled = true
		if c.hooks.Schedule != nil {
			c.hooks.Schedule()
		}
	}
}

// RecordFrozenPaneMeasurement records the height a pane drew the row at, and
// forwards the tallest height seen across panes to RecordMeasurement.
func (c *Cache) RecordFrozenPaneMeasurement(rowKey any, rowIndex int, p pane.Kind, height float64) {
	if rowIndex < 0 || !hashable(rowKey) {
		return
	}
	if height < 0 {
		height = 0
	}
	seen, ok := c.panes[rowKey]
	if !ok {
		seen = make(map[pane.Kind]float64, len(pane.All))
		c.panes[rowKey] = seen
	}
	seen[p] = height

	tallest := 0.0
	for _, h := range seen {
		if h > tallest {
			tallest = h
		}
	}
	c.RecordMeasurement(rowKey, rowIndex, tallest)
}

// DropPane forgets every height pane p reported. Call it when p stops drawing
// rows so its last heights no longer win the cross-pane maximum.
func (c *Cache) DropPane(p pane.Kind) {
	for key, seen := range c.panes {
		delete(seen, p)
		if len(seen) == 0 {
			delete(c.panes, key)
		}
	}
}

// Commit merges the buffer into the committed map and invalidates layout from the
// reset index onward. It reports whether anything was merged.
func (c *Cache) Commit() bool {
	c.scheduled = false
	if len(c.buffer) == 0 {
		c.hasReset = false
		return false
	}

	from := c.resetIndex
	for key, h := range c.buffer {
		c.committed[key] = h
	}
	merged := len(c.buffer)
	c.buffer = make(map[any]float64)
	c.hasReset = false
	c.resetIndex = 0
	c.commits++

	if c.hooks.Invalidate != nil {
		c.hooks.Invalidate(from)
	}
	c.logger.Debug().Int("rows", merged).Int("reset_index", from).Msg("row heights committed")
	return true
}

// Reset drops every committed, buffered and per-pane height.
func (c *Cache) Reset() {
	c.clear()
	c.logger.Debug().Msg("row height cache reset")
}

// Pending reports whether a commit is scheduled.
func (c *Cache) Pending() bool { return c.scheduled }

// Buffered returns the number of rows waiting for the next commit.
func (c *Cache) Buffered() int { return len(c.buffer) }

// ResetIndex returns the lowest row index touched by the pending batch.
func (c *Cache) ResetIndex() (int, bool) { return c.resetIndex, c.hasReset }

// Commits returns the number of non-empty commits performed.
func (c *Cache) Commits() int { return c.commits }

func hashable(key any) bool {
	if key == nil {
		return false
	}
	return reflect.TypeOf(key).Comparable()
}
