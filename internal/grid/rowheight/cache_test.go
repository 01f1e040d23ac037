package rowheight

import (
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/vgrid/internal/grid/pane"
)

type recorder struct {
	scheduled   int
	invalidated []int
}

func newCache(keys []string, estimate float64, r *recorder) *Cache {
	return New(
		func(int) float64 { return estimate },
		func(i int) (any, bool) {
			if i < 0 || i >= len(keys) {
				return nil, false
			}
			return keys[i], true
		},
		Hooks{
			Schedule:   func() { r.scheduled++ },
			Invalidate: func(from int) { r.invalidated = append(r.invalidated, from) },
		},
		zerolog.Nop(),
	)
}

func TestEstimate_FallsBackToEstimator(t *testing.T) {
	c := newCache([]string{"a", "b"}, 50, &recorder{})

	assert.InDelta(t, 50.0, c.Estimate(0), 0)
	assert.InDelta(t, 50.0, c.Estimate(5), 0, "unknown index")
	assert.InDelta(t, 50.0, c.Estimate(-1), 0, "frozen row")
}

func TestFrozenPaneMeasurements_TallestWins(t *testing.T) {
	r := &recorder{}
	c := newCache([]string{"w", "x"}, 50, r)

	c.RecordFrozenPaneMeasurement("x", 1, pane.Main, 80)
	c.RecordFrozenPaneMeasurement("x", 1, pane.Left, 60)

	assert.Equal(t, 1, r.scheduled)
	assert.InDelta(t, 50.0, c.Estimate(1), 0, "nothing visible before commit")
	idx, ok := c.ResetIndex()
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	require.True(t, c.Commit())
	assert.InDelta(t, 80.0, c.Estimate(1), 0)
	assert.Equal(t, []int{1}, r.invalidated)
	assert.Equal(t, 1, c.Commits())
	assert.False(t, c.Pending())
}

func TestDropPane_RemovedPaneNoLongerWins(t *testing.T) {
	c := newCache([]string{"x"}, 50, &recorder{})

	c.RecordFrozenPaneMeasurement("x", 0, pane.Main, 40)
	c.RecordFrozenPaneMeasurement("x", 0, pane.Left, 90)
	require.True(t, c.Commit())
	require.InDelta(t, 90.0, c.Estimate(0), 0)

	c.DropPane(pane.Left)
	c.RecordFrozenPaneMeasurement("x", 0, pane.Main, 40)
	require.True(t, c.Commit())
	assert.InDelta(t, 40.0, c.Estimate(0), 0)

	c.DropPane(pane.Main)
	assert.Empty(t, c.panes)
}

func TestMeasurementsWithinOneTick_CommitOnceToMax(t *testing.T) {
	rng := rand.New(rand.NewSource(42)) //nolint:gosec // deterministic test data

	for trial := 0; trial < 100; trial++ {
		r := &recorder{}
		keys := []string{"r0", "r1", "r2", "r3"}
		c := newCache(keys, 50, r)

		want := map[string]float64{}
		for _, key := range keys {
			panes := rng.Perm(3)[:1+rng.Intn(3)]
			for _, p := range panes {
				h := float64(10 + rng.Intn(200))
				c.RecordFrozenPaneMeasurement(key, indexOf(keys, key), pane.Kind(p), h)
				if h > want[key] {
					want[key] = h
				}
			}
		}

		assert.Equal(t, 1, r.scheduled)
		require.True(t, c.Commit())
		assert.Len(t, r.invalidated, 1)
		assert.Equal(t, 0, r.invalidated[0])
		for i, key := range keys {
			assert.InDelta(t, want[key], c.Estimate(i), 0)
		}
	}
}

func indexOf(keys []string, key string) int {
	for i, k := range keys {
		if k == key {
			return i
		}
	}
	return -1
}

func TestResetIndexOnlyDecreases(t *testing.T) {
	c := newCache([]string{"a", "b", "c", "d"}, 50, &recorder{})

	c.RecordMeasurement("c", 2, 60)
	c.RecordMeasurement("d", 3, 60)
	idx, _ := c.ResetIndex()
	assert.Equal(t, 2, idx)

	c.RecordMeasurement("a", 0, 60)
	idx, _ = c.ResetIndex()
	assert.Equal(t, 0, idx)

	c.Commit()
	_, ok := c.ResetIndex()
	assert.False(t, ok)
	assert.Equal(t, 0, c.Buffered())
}

func TestRecordMeasurement_Guards(t *testing.T) {
	r := &recorder{}
	c := newCache([]string{"a"}, 50, r)

	c.RecordMeasurement("a", -1, 70)
	c.RecordMeasurement(nil, 0, 70)
	c.RecordMeasurement([]int{1}, 0, 70)
	assert.Equal(t, 0, c.Buffered())
	assert.Equal(t, 0, r.scheduled)

	c.RecordMeasurement("a", 0, -5)
	c.Commit()
	h, ok := c.Height("a")
	require.True(t, ok)
	assert.InDelta(t, 0.0, h, 0, "negative heights clamp to zero")
}

func TestRecordMeasurement_UnchangedHeightIsDropped(t *testing.T) {
	r := &recorder{}
	c := newCache([]string{"a"}, 50, r)

	c.RecordMeasurement("a", 0, 70)
	c.Commit()
	c.RecordMeasurement("a", 0, 70)

	assert.Equal(t, 1, r.scheduled)
	assert.False(t, c.Pending())
	assert.False(t, c.Commit())
}

func TestCommit_EmptyBufferIsNoop(t *testing.T) {
	r := &recorder{}
	c := newCache(nil, 50, r)

	assert.False(t, c.Commit())
	assert.Empty(t, r.invalidated)
}

func TestReset(t *testing.T) {
	r := &recorder{}
	c := newCache([]string{"a", "b"}, 50, r)
	c.RecordMeasurement("a", 0, 90)
	c.Commit()
	c.RecordMeasurement("b", 1, 90)

	c.Reset()

	assert.InDelta(t, 50.0, c.Estimate(0), 0)
	assert.Equal(t, 0, c.Buffered())
	assert.False(t, c.Pending())

	c.RecordMeasurement("b", 1, 90)
	assert.Equal(t, 2, r.scheduled, "a fresh batch schedules again after reset")
}

func TestEstimate_PerRowEstimator(t *testing.T) {
	c := New(func(i int) float64 { return float64(10 * (i + 1)) }, nil, Hooks{}, zerolog.Nop())
	assert.InDelta(t, 10.0, c.Estimate(0), 0)
	assert.InDelta(t, 30.0, c.Estimate(2), 0)

	c.SetEstimator(func(int) float64 { return -1 })
	assert.InDelta(t, 0.0, c.Estimate(0), 0)
}
