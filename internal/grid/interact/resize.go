package interact

import (
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"k8s.io/utils/clock"

	"github.com/rshade/vgrid/internal/grid/columns"
)

// DefaultResizeInterval bounds width notifications to roughly one per frame.
const DefaultResizeInterval = 16 * time.Millisecond

// ResizeState is the in-progress resize. An empty Key means idle.
type ResizeState struct {
	Key   string
	Width float64
}

// Active reports whether a resize is in progress.
func (s ResizeState) Active() bool { return s.Key != "" }

// ResizeHooks receive width changes.
type ResizeHooks struct {
	// OnResize receives rate-limited widths while dragging.
	OnResize func(key string, width float64)
	// OnResizeEnd receives the final width when the drag ends.
	OnResizeEnd func(key string, width float64)
}

// ResizeController is the resize state machine. It is not safe for concurrent use.
type ResizeController struct {
	clock    clock.PassiveClock
	interval time.Duration
	limiter  *rate.Limiter
	hooks    ResizeHooks
	logger   zerolog.Logger

	state      ResizeState
	column     columns.Column
	pending    float64
	hasPending bool
}

// NewResizeController creates an idle controller. A zero interval disables rate limiting.
func NewResizeController(interval time.Duration, clk clock.PassiveClock, hooks ResizeHooks, logger zerolog.Logger) *ResizeController {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &ResizeController{
		clock:    clk,
		interval: interval,
		hooks:    hooks,
		logger:   logger.With().Str("component", "resize").Logger(),
	}
}

// SetHooks replaces the notification hooks.
func (r *ResizeController) SetHooks(hooks ResizeHooks) { r.hooks = hooks }

// SetInterval changes the minimum time between width notifications for the next drag.
func (r *ResizeController) SetInterval(interval time.Duration) { r.interval = interval }

// State returns the current resize state.
func (r *ResizeController) State() ResizeState { return r.state }

// Start begins resizing col. Columns that are not resizable are ignored. Starting
// while another resize is active ends that one first.
func (r *ResizeController) Start(col columns.Column) bool {
	if !col.Resizable || col.Key == "" {
		return false
	}
	if r.state.Active() {
		r.End()
	}

	limit := rate.Inf
	if r.interval > 0 {
		limit = rate.Every(r.interval)
	}
	r.limiter = rate.NewLimiter(limit, 1)
	r.column = col
	r.state = ResizeState{Key: col.Key, Width: col.Width}
	r.hasPending = false
	r.logger.Debug().Str("column", col.Key).Float64("width", col.Width).Msg("resize started")
	return true
}

// Drag moves the active resize to width. It returns the clamped width and whether
// it was delivered now; a held-back width is delivered by Flush or End.
func (r *ResizeController) Drag(width float64) (float64, bool) {
	if !r.state.Active() {
		return 0, false
	}
	width = r.column.ClampWidth(width, true)
	r.state.Width = width

	if r.limiter.AllowN(r.clock.Now(), 1) {
		r.hasPending = false
		r.notify(width)
		return width, true
	}
	r.pending = width
	r.hasPending = true
	return width, false
}

// Flush delivers a held-back width once the limiter allows it.
func (r *ResizeController) Flush() bool {
	if !r.state.Active() || !r.hasPending {
		return false
	}
	if !r.limiter.AllowN(r.clock.Now(), 1) {
		return false
	}
	r.hasPending = false
	r.notify(r.pending)
	return true
}

// Pending reports whether a width is waiting for the limiter.
func (r *ResizeController) Pending() bool { return r.hasPending }

// End finishes the active resize, delivering any held-back width, and returns the
// column key and final width.
func (r *ResizeController) End() (string, float64, bool) {
	if !r.state.Active() {
		return "", 0, false
	}
	if r.hasPending {
		r.hasPending = false
		r.notify(r.pending)
	}
	key, width := r.state.Key, r.state.Width
	r.state = ResizeState{}
	r.column = columns.Column{}

	if r.hooks.OnResizeEnd != nil {
		r.hooks.OnResizeEnd(key, width)
	}
	r.logger.Debug().Str("column", key).Float64("width", width).Msg("resize ended")
	return key, width, true
}

func (r *ResizeController) notify(width float64) {
	if r.hooks.OnResize != nil {
		r.hooks.OnResize(r.state.Key, width)
	}
}
