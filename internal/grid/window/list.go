package window

import (
	"math"
	"sort"

	"github.com/rshade/vgrid/internal/grid/pane"
)

// defaultEstimatedItemSize is used for unmeasured items when none is configured.
const defaultEstimatedItemSize = 50

// SizeFunc returns the size of the item at index.
type SizeFunc func(index int) float64

// Range is the slice of items a list renders. Stops are inclusive; an empty list
// yields stops of -1.
type Range struct {
	OverscanStart int
	OverscanStop  int
	VisibleStart  int
	VisibleStop   int
}

// Empty reports whether the range contains no items.
func (r Range) Empty() bool { return r.OverscanStop < r.OverscanStart }

// Len is the number of items in the overscan range.
func (r Range) Len() int {
	if r.Empty() {
		return 0
	}
	return r.OverscanStop - r.OverscanStart + 1
}

type itemMeta struct {
	offset float64
	size   float64
}

// Config configures a new List.
type Config struct {
	ItemCount         int
	ItemSize          SizeFunc
	EstimatedItemSize float64
	Height            float64
	Overscan          int
}

// List is a variable-size windowed list. It is not safe for concurrent use.
type List struct {
	// itemCount is the number of items in the list
	itemCount int

	// itemSize returns the size of an item
	itemSize SizeFunc

	// estimatedItemSize is assumed for items beyond lastMeasured
	estimatedItemSize float64

	// height is the viewport height
	height float64

	// offset is the current scroll offset
	offset float64

	// overscan is the number of extra items rendered on each side of the viewport
	overscan int

	// meta caches item offsets and sizes for indices 0..lastMeasured
	meta []itemMeta

	// lastMeasured is the highest index with a valid cached offset, -1 when none
	lastMeasured int
}

// New creates a List.
func New(cfg Config) *List {
	l := &List{
		itemCount:         max(0, cfg.ItemCount),
		itemSize:          cfg.ItemSize,
		estimatedItemSize: cfg.EstimatedItemSize,
		height:            math.Max(0, cfg.Height),
		overscan:          cfg.Overscan,
		lastMeasured:      -1,
	}
	if l.estimatedItemSize <= 0 {
		l.estimatedItemSize = defaultEstimatedItemSize
	}
	return l
}

// ItemCount returns the number of items.
func (l *List) ItemCount() int { return l.itemCount }

// Height returns the viewport height.
func (l *List) Height() float64 { return l.height }

// Offset returns the scroll offset.
func (l *List) Offset() float64 { return l.offset }

// SetItemCount changes the number of items. Cached offsets past the new end are dropped.
func (l *List) SetItemCount(n int) {
	n = max(0, n)
	if n == l.itemCount {
		return
	}
	l.itemCount = n
	if l.lastMeasured >= n {
		l.lastMeasured = n - 1
	}
}

// SetItemSize replaces the size callback and drops every cached offset.
func (l *List) SetItemSize(fn SizeFunc) {
	l.itemSize = fn
	l.lastMeasured = -1
}

// SetEstimatedItemSize changes the size assumed for uncached items.
func (l *List) SetEstimatedItemSize(size float64) {
	if size > 0 {
		l.estimatedItemSize = size
	}
}

// SetHeight changes the viewport height.
func (l *List) SetHeight(h float64) { l.height = math.Max(0, h) }

// SetOverscan changes the overscan count.
func (l *List) SetOverscan(n int) { l.overscan = n }

// SetOffset moves the viewport. Negative offsets clamp to zero.
func (l *List) SetOffset(offset float64) { l.offset = math.Max(0, offset) }

// ResetAfterIndex drops cached offsets from index onward.
func (l *List) ResetAfterIndex(index int) {
	if index-1 < l.lastMeasured {
		l.lastMeasured = max(-1, index-1)
	}
}

// LastMeasuredIndex returns the highest index with a cached offset.
func (l *List) LastMeasuredIndex() int { return l.lastMeasured }

func (l *List) sizeOf(index int) float64 {
	if l.itemSize == nil {
		return l.estimatedItemSize
	}
	s := l.itemSize(index)
	if s < 0 || math.IsNaN(s) {
		return 0
	}
	return s
}

// metaFor returns the cached metadata for index, extending the cache as needed.
func (l *List) metaFor(index int) itemMeta {
	if index > l.lastMeasured {
		if cap(l.meta) < index+1 {
			grown := make([]itemMeta, len(l.meta), max(index+1, 2*cap(l.meta)))
			copy(grown, l.meta)
			l.meta = grown
		}
		l.meta = l.meta[:max(len(l.meta), index+1)]

		offset := 0.0
		if l.lastMeasured >= 0 {
			last := l.meta[l.lastMeasured]
			offset = last.offset + last.size
		}
		for i := l.lastMeasured + 1; i <= index; i++ {
			size := l.sizeOf(i)
			l.meta[i] = itemMeta{offset: offset, size: size}
			offset += size
		}
		l.lastMeasured = index
	}
	return l.meta[index]
}

// ItemOffset returns the offset of the item at index.
func (l *List) ItemOffset(index int) float64 {
	if index < 0 || index >= l.itemCount {
		return 0
	}
	return l.metaFor(index).offset
}

// ItemSize returns the size of the item at index.
func (l *List) ItemSize(index int) float64 {
	if index < 0 || index >= l.itemCount {
		return 0
	}
	return l.metaFor(index).size
}

// TotalSize returns the estimated scrollable size: cached offsets plus
// EstimatedItemSize for each item past the cache.
func (l *List) TotalSize() float64 {
	lastMeasured := min(l.lastMeasured, l.itemCount-1)
	measured := 0.0
	if lastMeasured >= 0 {
		last := l.meta[lastMeasured]
		measured = last.offset + last.size
	}
	unmeasured := float64(l.itemCount-lastMeasured-1) * l.estimatedItemSize
	return measured + unmeasured
}

// findNearest returns the index of the item containing offset.
func (l *List) findNearest(offset float64) int {
	lastMeasuredOffset := 0.0
	if l.lastMeasured >= 0 {
		lastMeasuredOffset = l.meta[l.lastMeasured].offset
	}
	if lastMeasuredOffset >= offset {
		return l.binarySearch(0, l.lastMeasured, offset)
	}
	return l.exponentialSearch(max(0, l.lastMeasured), offset)
}

func (l *List) binarySearch(low, high int, offset float64) int {
	// First item whose offset is greater than offset, minus one.
	n := high - low + 1
	i := sort.Search(n, func(i int) bool {
		return l.metaFor(low+i).offset > offset
	})
	return max(0, low+i-1)
}

func (l *List) exponentialSearch(index int, offset float64) int {
	interval := 1
	for index < l.itemCount && l.metaFor(index).offset < offset {
		index += interval
		interval *= 2
	}
	return l.binarySearch(index/2, min(index, l.itemCount-1), offset)
}

// Range returns the items to render at the current offset.
func (l *List) Range() Range {
	if l.itemCount == 0 {
		return Range{OverscanStart: 0, OverscanStop: -1, VisibleStart: 0, VisibleStop: -1}
	}

	start := l.findNearest(l.offset)
	stop := start
	maxOffset := l.offset + l.height
	m := l.metaFor(start)
	end := m.offset + m.size
	for stop < l.itemCount-1 && end < maxOffset {
		stop++
		end += l.metaFor(stop).size
	}

	overscan := max(1, l.overscan)
	return Range{
		OverscanStart: max(0, start-overscan),
		OverscanStop:  max(0, min(l.itemCount-1, stop+overscan)),
		VisibleStart:  start,
		VisibleStop:   stop,
	}
}

// OffsetForIndex returns the scroll offset that brings index into view with align.
func (l *List) OffsetForIndex(index int, align pane.Align) float64 {
	if l.itemCount == 0 {
		return 0
	}
	index = max(0, min(index, l.itemCount-1))

	m := l.metaFor(index)
	total := l.TotalSize()
	maxOffset := math.Max(0, math.Min(total-l.height, m.offset))
	minOffset := math.Max(0, m.offset-l.height+m.size)

	if align == pane.AlignSmart {
		if l.offset >= minOffset-l.height && l.offset <= maxOffset+l.height {
			align = pane.AlignAuto
		} else {
			align = pane.AlignCenter
		}
	}

	switch align {
	case pane.AlignStart:
		return maxOffset
	case pane.AlignEnd:
		return minOffset
	case pane.AlignCenter:
		return math.Round(minOffset + (maxOffset-minOffset)/2)
	default:
		if l.offset >= minOffset && l.offset <= maxOffset {
			return l.offset
		}
		if l.offset < minOffset {
			return minOffset
		}
		return maxOffset
	}
}

// ScrollToItem moves the viewport so index is visible per align and returns the new offset.
func (l *List) ScrollToItem(index int, align pane.Align) float64 {
	l.SetOffset(l.OffsetForIndex(index, align))
	return l.offset
}
