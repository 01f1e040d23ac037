package interact

import (
	"maps"

	"github.com/rshade/vgrid/internal/grid/columns"
)

// SortBy is a single-column sort.
type SortBy struct {
	Key   string
	Order columns.SortOrder
}

// SortEvent is the state a header click asks for.
type SortEvent struct {
	Column columns.Column
	Key    string
	Order  columns.SortOrder
	// State is the full multi-sort state after the click; nil in single-sort mode.
	State map[string]columns.SortOrder
}

// SortController is the sort state machine. It is not safe for concurrent use.
type SortController struct {
	multi      bool
	controlled bool
	sortBy     SortBy
	state      map[string]columns.SortOrder
}

// NewSortController creates a controller owning its state.
func NewSortController(multi bool) *SortController {
	return &SortController{multi: multi, state: map[string]columns.SortOrder{}}
}

// Multi reports whether the controller is in multi-sort mode.
func (s *SortController) Multi() bool { return s.multi }

// SetDefault seeds owned single-sort state.
func (s *SortController) SetDefault(by SortBy) {
	s.multi = false
	s.controlled = false
	s.sortBy = by
}

// SetDefaultState seeds owned multi-sort state.
func (s *SortController) SetDefaultState(state map[string]columns.SortOrder) {
	s.multi = true
	s.controlled = false
	s.state = maps.Clone(state)
	if s.state == nil {
		s.state = map[string]columns.SortOrder{}
	}
}

// Control hands state ownership to the caller. Either by or state is used,
// depending on whether state is nil.
func (s *SortController) Control(by SortBy, state map[string]columns.SortOrder) {
	s.controlled = true
	s.multi = state != nil
	s.sortBy = by
	s.state = maps.Clone(state)
	if s.state == nil {
		s.state = map[string]columns.SortOrder{}
	}
}

// Controlled reports whether the caller owns the state.
func (s *SortController) Controlled() bool { return s.controlled }

// SortBy returns the single-sort state.
func (s *SortController) SortBy() SortBy { return s.sortBy }

// State returns a copy of the multi-sort state.
func (s *SortController) State() map[string]columns.SortOrder { return maps.Clone(s.state) }

// Order returns the current order of key, if it is sorted.
func (s *SortController) Order(key string) (columns.SortOrder, bool) {
	if s.multi {
		o, ok := s.state[key]
		return o, ok
	}
	if s.sortBy.Key != "" && s.sortBy.Key == key {
		return s.sortBy.Order, true
	}
	return "", false
}

// Click handles a header click on col. Non-sortable columns are ignored. In owned
// mode the new state is applied before returning.
func (s *SortController) Click(col columns.Column) (SortEvent, bool) {
	if !col.Sortable || col.Key == "" || col.Placeholder {
		return SortEvent{}, false
	}

	if s.multi {
		order := s.state[col.Key].Toggle()
		next := maps.Clone(s.state)
		if next == nil {
			next = map[string]columns.SortOrder{}
		}
		next[col.Key] = order
		if !s.controlled {
			s.state = next
		}
		return SortEvent{Column: col, Key: col.Key, Order: order, State: maps.Clone(next)}, true
	}

	order := columns.SortAsc
	if s.sortBy.Key == col.Key {
		order = s.sortBy.Order.Toggle()
	}
	if !s.controlled {
		s.sortBy = SortBy{Key: col.Key, Order: order}
	}
	return SortEvent{Column: col, Key: col.Key, Order: order}, true
}
