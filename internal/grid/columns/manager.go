package columns

import (
	"encoding/binary"
	"math"
	"reflect"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"
)

// CompareOptions controls which column fields participate in memoization.
type CompareOptions struct {
	// IncludeFuncs adds the identity of DataGetter, CellRenderer and HeaderRenderer
	// to the fingerprint, so swapping a renderer forces a rebuild.
	IncludeFuncs bool
}

type resized struct {
	declared float64
	width    float64
}

// Manager resolves column lists into memoized snapshots and tracks interactive resizes.
// It is not safe for concurrent use.
type Manager struct {
	opts    CompareOptions
	logger  zerolog.Logger
	current *Snapshot
	resized map[string]resized
	builds  int
}

// NewManager creates a Manager.
func NewManager(opts CompareOptions, logger zerolog.Logger) *Manager {
	return &Manager{
		opts:    opts,
		logger:  logger.With().Str("component", "columns").Logger(),
		resized: make(map[string]resized),
	}
}

// Resolve returns the snapshot for cols. When the fingerprint of (cols, fixed) and,
// if widths depend on it, available matches the previous call, the previous snapshot
// is returned unchanged.
func (m *Manager) Resolve(cols []Column, fixed bool, available float64) *Snapshot {
	fp := m.fingerprint(cols, fixed, available)
	if m.current != nil && m.current.fingerprint == fp {
		return m.current
	}

	resolved := m.resolveWidths(cols, fixed, available)
	m.current = newSnapshot(resolved, fixed, fp)
	m.builds++
	m.logger.Debug().
		Int("columns", len(resolved)).
		Bool("fixed", fixed).
		Float64("total_width", m.current.totalWidth).
		Msg("column layout rebuilt")
	return m.current
}

// Current returns the last resolved snapshot, or nil.
func (m *Manager) Current() *Snapshot { return m.current }

// Builds reports how many snapshots have been computed.
func (m *Manager) Builds() int { return m.builds }

// SetColumnWidth changes the width of key in the current snapshot in place and
// remembers it so later rebuilds keep it while the declared width is unchanged.
// Unknown keys are ignored.
func (m *Manager) SetColumnWidth(key string, width float64) bool {
	if m.current == nil {
		return false
	}
	col, ok := m.current.Column(key)
	if !ok {
		return false
	}
	width = sanitize(width)
	if !m.current.setWidth(key, width) {
		return false
	}
	m.resized[key] = resized{declared: m.declared(key, col), width: width}
	return true
}

// declared returns the width the caller declared for key. The snapshot may already
// carry a resized width, so an existing record wins.
func (m *Manager) declared(key string, col Column) float64 {
	if r, ok := m.resized[key]; ok {
		return r.declared
	}
	return col.declared
}

// resolveWidths drops hidden columns and computes final widths.
func (m *Manager) resolveWidths(cols []Column, fixed bool, available float64) []Column {
	out := make([]Column, 0, len(cols))
	locked := make([]bool, 0, len(cols))

	for _, col := range cols {
		if col.Hidden {
			continue
		}
		col.declared = sanitize(col.Width)
		col.Placeholder = false
		width := col.declared
		isLocked := false
		if r, ok := m.resized[col.Key]; ok {
			if col.Resizable && r.declared == col.declared {
				width = r.width
				isLocked = true
			} else {
				delete(m.resized, col.Key)
			}
		}
		col.Width = col.ClampWidth(width, false)
		out = append(out, col)
		locked = append(locked, isLocked)
	}

	if available <= 0 {
		return out
	}

	if fixed {
		// Only columns without a declared width take a share of the free space.
		flex(out, available, func(i int) float64 {
			if locked[i] || out[i].declared > 0 {
				return 0
			}
			return out[i].FlexGrow
		}, func(int) float64 { return 0 })
		return out
	}

	flex(out, available, func(i int) float64 {
		if locked[i] {
			return 0
		}
		return out[i].FlexGrow
	}, func(i int) float64 {
		if locked[i] {
			return 0
		}
		return out[i].FlexShrink * out[i].Width
	})
	return out
}

// flex distributes available-sum(widths) over the columns by weight, freezing any
// column whose result violates its min/max and redistributing the remainder.
func flex(cols []Column, available float64, grow, shrink func(int) float64) {
	const epsilon = 1e-9

	weight := grow
	if available-SumWidths(cols) < 0 {
		weight = shrink
	}

	frozen := make([]bool, len(cols))
	for i := range cols {
		frozen[i] = weight(i) <= 0
	}

	for iter := 0; iter <= len(cols); iter++ {
		used, total := SumWidths(cols), 0.0
		for i := range cols {
			if !frozen[i] {
				total += weight(i)
			}
		}
		free := available - used
		if total <= 0 || math.Abs(free) < epsilon {
			return
		}

		clamped := false
		for i := range cols {
			if frozen[i] {
				continue
			}
			target := cols[i].Width + free*weight(i)/total
			got := cols[i].ClampWidth(target, false)
			if got != target {
				frozen[i] = true
				clamped = true
			}
			cols[i].Width = got
		}
		if !clamped {
			return
		}
	}
}

func sanitize(w float64) float64 {
	if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return 0
	}
	return w
}

// fingerprint hashes the value fields of cols plus the mode. available participates
// only when some width depends on it.
func (m *Manager) fingerprint(cols []Column, fixed bool, available float64) uint64 {
	d := xxhash.New()
	var buf [8]byte

	writeFloat := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		_, _ = d.Write(buf[:])
	}
	writeInt := func(v int64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v)) //nolint:gosec // bit pattern only
		_, _ = d.Write(buf[:])
	}
	writeBool := func(b bool) {
		if b {
			_, _ = d.Write([]byte{1})
		} else {
			_, _ = d.Write([]byte{0})
		}
	}
	writeString := func(s string) {
		writeInt(int64(len(s)))
		_, _ = d.WriteString(s)
	}
	writeFunc := func(fn any) {
		v := reflect.ValueOf(fn)
		if !v.IsValid() || v.IsNil() {
			writeInt(0)
			return
		}
		writeInt(int64(v.Pointer())) //nolint:gosec // identity only
	}

	writeBool(fixed)
	writeInt(int64(len(cols)))
	dependsOnAvailable := false
	for _, col := range cols {
		writeString(col.Key)
		writeString(col.Title)
		writeString(col.DataKey)
		writeString(col.ClassName)
		writeFloat(col.Width)
		writeFloat(col.MinWidth)
		writeFloat(col.MaxWidth)
		writeFloat(col.FlexGrow)
		writeFloat(col.FlexShrink)
		writeInt(int64(col.Frozen))
		writeInt(int64(col.Align))
		writeBool(col.Sortable)
		writeBool(col.Resizable)
		writeBool(col.Hidden)
		if m.opts.IncludeFuncs {
			writeFunc(col.DataGetter)
			writeFunc(col.CellRenderer)
			writeFunc(col.HeaderRenderer)
		}
		if col.Hidden {
			continue
		}
		if !fixed || (col.Width <= 0 && col.FlexGrow > 0) {
			dependsOnAvailable = true
		}
	}
	if dependsOnAvailable {
		writeFloat(available)
	}
	return d.Sum64()
}
