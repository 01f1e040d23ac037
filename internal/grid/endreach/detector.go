// Package endreach decides when a scrolled table is close enough to the end of its
// rows that the caller should load more.
//
// The signal fires at most once per data snapshot and scroll extent: after firing,
// another signal needs either new data (DataChanged) or a different extent, which
// is what happens when the loaded rows are appended.
package endreach

import "github.com/rs/zerolog"

// Measure is the vertical geometry at the time of an event.
type Measure struct {
	ScrollTop      float64
	ScrollExtent   float64
	ViewportHeight float64
}

// Distance is how far the bottom of the viewport is from the end of the content.
func (m Measure) Distance() float64 {
	return m.ScrollExtent - m.ScrollTop - m.ViewportHeight
}

// Detector tracks the state needed to fire the near-end signal once.
type Detector struct {
	logger      zerolog.Logger
	threshold   float64
	lastScanned int
	dataEpoch   bool
	lastExtent  float64
	fired       int
}

// New creates a detector that fires within threshold of the end. A fresh detector
// behaves as if the data had just changed.
func New(threshold float64, logger zerolog.Logger) *Detector {
	return &Detector{
		logger:      logger.With().Str("component", "endreach").Logger(),
		threshold:   threshold,
		lastScanned: -1,
		dataEpoch:   true,
	}
}

// SetThreshold changes the distance at which the signal fires.
func (d *Detector) SetThreshold(threshold float64) { d.threshold = threshold }

// DataChanged starts a new data epoch: the next qualifying check fires regardless
// of the extent, and nothing counts as scanned yet.
func (d *Detector) DataChanged() {
	d.lastScanned = -1
	d.dataEpoch = true
}

// OnRowsRendered records the last rendered row index. It checks for the end only
// when the range advanced past every row rendered before.
func (d *Detector) OnRowsRendered(overscanStop int, m Measure) (float64, bool) {
	if overscanStop <= d.lastScanned {
		return 0, false
	}
	d.lastScanned = overscanStop
	return d.check(m)
}

// OnScroll checks for the end after a scroll. Only forward (downward) scrolls count.
func (d *Detector) OnScroll(prevTop float64, m Measure) (float64, bool) {
	if m.ScrollTop <= prevTop {
		return 0, false
	}
	return d.check(m)
}

func (d *Detector) check(m Measure) (float64, bool) {
	if m.ScrollExtent <= 0 || m.ViewportHeight <= 0 || d.lastScanned < 0 {
		return 0, false
	}
	distance := m.Distance()
	if distance > d.threshold {
		return 0, false
	}
	if !d.dataEpoch && m.ScrollExtent == d.lastExtent {
		return 0, false
	}

	d.dataEpoch = false
	d.lastExtent = m.ScrollExtent
	d.fired++
	d.logger.Debug().
		Float64("distance", distance).
		Float64("extent", m.ScrollExtent).
		Int("last_scanned", d.lastScanned).
		Msg("end reached")
	return distance, true
}

// LastScanned returns the highest row index rendered in this epoch, or -1.
func (d *Detector) LastScanned() int { return d.lastScanned }

// Fired returns how many times the signal has fired.
func (d *Detector) Fired() int { return d.fired }
