package endreach

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetector_Scenario(t *testing.T) {
	d := New(500, zerolog.Nop())
	measure := func(top float64) Measure {
		return Measure{ScrollTop: top, ScrollExtent: 10000, ViewportHeight: 600}
	}

	_, fired := d.OnRowsRendered(12, measure(0))
	require.False(t, fired)

	distance, fired := d.OnScroll(0, measure(8950))
	require.True(t, fired)
	assert.InDelta(t, 450.0, distance, 0)

	prev := 8950.0
	for i := 0; i < 5; i++ {
		_, fired = d.OnScroll(prev, measure(8960))
		assert.False(t, fired)
		prev = 8960
	}
	assert.Equal(t, 1, d.Fired())
}

func TestDetector_AtMostOncePerEpochAndExtent(t *testing.T) {
	d := New(500, zerolog.Nop())
	d.OnRowsRendered(5, Measure{ScrollTop: 0, ScrollExtent: 10000, ViewportHeight: 600})

	top := 8900.0
	for i := 0; i < 100; i++ {
		next := top + float64(i%7)
		d.OnScroll(top, Measure{ScrollTop: next, ScrollExtent: 10000, ViewportHeight: 600})
		d.OnRowsRendered(200+i, Measure{ScrollTop: next, ScrollExtent: 10000, ViewportHeight: 600})
		top = next
	}
	assert.Equal(t, 1, d.Fired())

	// Appended rows grow the extent: one more signal.
	_, fired := d.OnRowsRendered(400, Measure{ScrollTop: 19000, ScrollExtent: 20000, ViewportHeight: 600})
	assert.True(t, fired)
	assert.Equal(t, 2, d.Fired())

	// New data with the same extent fires again.
	d.DataChanged()
	assert.Equal(t, -1, d.LastScanned())
	_, fired = d.OnRowsRendered(10, Measure{ScrollTop: 19000, ScrollExtent: 20000, ViewportHeight: 600})
	assert.True(t, fired)
}

func TestDetector_FiresWhenCrossingForward(t *testing.T) {
	thresholds := []float64{0, 100, 500, 5000}
	for _, threshold := range thresholds {
		d := New(threshold, zerolog.Nop())
		d.OnRowsRendered(3, Measure{ScrollTop: 0, ScrollExtent: 10000, ViewportHeight: 600})

		crossing := 10000 - 600 - threshold
		fired := false
		for top := 0.0; top <= 10000-600; top += 37 {
			if _, ok := d.OnScroll(top-37, Measure{ScrollTop: top, ScrollExtent: 10000, ViewportHeight: 600}); ok {
				assert.GreaterOrEqual(t, top, crossing)
				fired = true
			}
		}
		_, ok := d.OnScroll(9000, Measure{ScrollTop: 9400, ScrollExtent: 10000, ViewportHeight: 600})
		fired = fired || ok
		assert.True(t, fired, "threshold %v", threshold)
		assert.Equal(t, 1, d.Fired())
	}
}

func TestDetector_Guards(t *testing.T) {
	d := New(500, zerolog.Nop())

	_, fired := d.OnScroll(0, Measure{ScrollTop: 9500, ScrollExtent: 10000, ViewportHeight: 600})
	assert.False(t, fired, "nothing scanned yet")

	_, fired = d.OnRowsRendered(0, Measure{ScrollTop: 0, ScrollExtent: 0, ViewportHeight: 600})
	assert.False(t, fired, "empty content")

	_, fired = d.OnRowsRendered(1, Measure{ScrollTop: 0, ScrollExtent: 100, ViewportHeight: 0})
	assert.False(t, fired, "no viewport")

	_, fired = d.OnScroll(9500, Measure{ScrollTop: 9400, ScrollExtent: 10000, ViewportHeight: 600})
	assert.False(t, fired, "backward scroll")

	_, fired = d.OnRowsRendered(1, Measure{ScrollTop: 9400, ScrollExtent: 10000, ViewportHeight: 600})
	assert.False(t, fired, "range did not advance")

	_, fired = d.OnRowsRendered(2, Measure{ScrollTop: 9400, ScrollExtent: 10000, ViewportHeight: 600})
	assert.True(t, fired)
}

func TestDetector_ShortContentFiresImmediately(t *testing.T) {
	d := New(100, zerolog.Nop())
	_, fired := d.OnRowsRendered(4, Measure{ScrollTop: 0, ScrollExtent: 250, ViewportHeight: 600})
	assert.True(t, fired)
}
