package window

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rshade/vgrid/internal/grid/pane"
)

func fixed(size float64) SizeFunc {
	return func(int) float64 { return size }
}

func TestRange_FixedSizes(t *testing.T) {
	l := New(Config{ItemCount: 100, ItemSize: fixed(10), Height: 45, Overscan: 2})

	r := l.Range()
	assert.Equal(t, Range{OverscanStart: 0, OverscanStop: 6, VisibleStart: 0, VisibleStop: 4}, r)
	assert.Equal(t, 7, r.Len())

	l.SetOffset(105)
	r = l.Range()
	assert.Equal(t, 10, r.VisibleStart)
	assert.Equal(t, 14, r.VisibleStop)
	assert.Equal(t, 8, r.OverscanStart)
	assert.Equal(t, 16, r.OverscanStop)
}

func TestRange_Empty(t *testing.T) {
	l := New(Config{ItemSize: fixed(10), Height: 100})
	r := l.Range()
	assert.True(t, r.Empty())
	assert.Equal(t, 0, r.Len())
	assert.InDelta(t, 0.0, l.TotalSize(), 0)
}

func TestRange_OverscanAtLeastOne(t *testing.T) {
	l := New(Config{ItemCount: 10, ItemSize: fixed(10), Height: 20})
	l.SetOffset(30)
	r := l.Range()
	assert.Equal(t, 2, r.OverscanStart)
	assert.Equal(t, 5, r.OverscanStop)
}

func TestRange_VariableSizes(t *testing.T) {
	sizes := []float64{10, 40, 10, 10, 100, 10}
	l := New(Config{ItemCount: len(sizes), ItemSize: func(i int) float64 { return sizes[i] }, Height: 30})

	l.SetOffset(55)
	assert.Equal(t, Range{OverscanStart: 1, OverscanStop: 5, VisibleStart: 2, VisibleStop: 4}, l.Range())
}

func TestItemOffsetsAndTotalSize(t *testing.T) {
	sizes := []float64{10, 40, 10, 10, 100, 10}
	l := New(Config{ItemCount: len(sizes), ItemSize: func(i int) float64 { return sizes[i] }, EstimatedItemSize: 20})

	assert.InDelta(t, 6*20.0, l.TotalSize(), 0, "nothing measured yet")
	assert.InDelta(t, 60.0, l.ItemOffset(3), 0)
	assert.InDelta(t, 70.0+2*20, l.TotalSize(), 0, "measured prefix plus estimates")
	assert.InDelta(t, 100.0, l.ItemSize(4), 0)
	assert.InDelta(t, 190.0, l.TotalSize(), 0)
	assert.InDelta(t, 0.0, l.ItemOffset(-1), 0)
	assert.InDelta(t, 0.0, l.ItemSize(99), 0)
}

func TestResetAfterIndex(t *testing.T) {
	sizes := []float64{10, 10, 10, 10}
	l := New(Config{ItemCount: 4, ItemSize: func(i int) float64 { return sizes[i] }})

	assert.InDelta(t, 30.0, l.ItemOffset(3), 0)
	sizes[1] = 50
	assert.InDelta(t, 30.0, l.ItemOffset(3), 0, "cached until reset")

	l.ResetAfterIndex(1)
	assert.Equal(t, 0, l.LastMeasuredIndex())
	assert.InDelta(t, 70.0, l.ItemOffset(3), 0)

	l.ResetAfterIndex(10)
	assert.Equal(t, 3, l.LastMeasuredIndex())
}

func TestSetItemCount_TrimsCache(t *testing.T) {
	l := New(Config{ItemCount: 10, ItemSize: fixed(10)})
	l.ItemOffset(9)
	l.SetItemCount(3)
	assert.Equal(t, 2, l.LastMeasuredIndex())
	assert.InDelta(t, 30.0, l.TotalSize(), 0)
}

func TestOffsetForIndex(t *testing.T) {
	newList := func(offset float64) *List {
		l := New(Config{ItemCount: 100, ItemSize: fixed(10), Height: 50})
		l.SetOffset(offset)
		return l
	}

	tests := []struct {
		name   string
		offset float64
		index  int
		align  pane.Align
		want   float64
	}{
		{name: "start", offset: 0, index: 20, align: pane.AlignStart, want: 200},
		{name: "end", offset: 0, index: 20, align: pane.AlignEnd, want: 160},
		{name: "center", offset: 0, index: 20, align: pane.AlignCenter, want: 180},
		{name: "auto already visible", offset: 100, index: 12, align: pane.AlignAuto, want: 100},
		{name: "auto below", offset: 0, index: 20, align: pane.AlignAuto, want: 160},
		{name: "auto above", offset: 300, index: 20, align: pane.AlignAuto, want: 200},
		{name: "smart near", offset: 120, index: 20, align: pane.AlignSmart, want: 160},
		{name: "smart far", offset: 0, index: 80, align: pane.AlignSmart, want: 780},
		{name: "start clamps at end", offset: 0, index: 99, align: pane.AlignStart, want: 950},
		{name: "index clamps", offset: 0, index: 500, align: pane.AlignStart, want: 950},
		{name: "negative index", offset: 40, index: -3, align: pane.AlignStart, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, newList(tt.offset).OffsetForIndex(tt.index, tt.align), 0)
		})
	}
}

func TestScrollToItem(t *testing.T) {
	l := New(Config{ItemCount: 100, ItemSize: fixed(10), Height: 50})
	got := l.ScrollToItem(30, pane.AlignStart)
	assert.InDelta(t, 300.0, got, 0)
	assert.InDelta(t, 300.0, l.Offset(), 0)
	assert.Equal(t, 30, l.Range().VisibleStart)

	empty := New(Config{})
	assert.InDelta(t, 0.0, empty.ScrollToItem(3, pane.AlignEnd), 0)
}
