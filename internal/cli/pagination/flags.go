package pagination

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rshade/vgrid/internal/grid/columns"
	"github.com/rshade/vgrid/internal/grid/interact"
)

// Flag limits.
const (
	MaxLimit         = 1000000
	MaxPageSize      = 10000
	DefaultSortOrder = columns.SortAsc
)

// Validation errors.
var (
	ErrInvalidSortFormat = errors.New("invalid sort format: use 'field' or 'field:order' (e.g., 'age:desc')")
	ErrEmptySortField    = errors.New("sort field cannot be empty")
	ErrInvalidSortOrder  = errors.New("sort order must be 'asc' or 'desc'")
	ErrDuplicateSort     = errors.New("field sorted more than once")
)

// Params selects a window of the loaded rows. Offset mode uses Limit and
// Offset; page mode uses Page and PageSize. The modes are mutually exclusive.
// The zero value selects every row.
type Params struct {
	Limit    int
	Offset   int
	Page     int
	PageSize int
}

// Validate checks bounds and that at most one mode is in use.
func (p Params) Validate() error {
	if p.Limit < 0 {
		return errors.New("limit cannot be negative")
	}
	if p.Offset < 0 {
		return errors.New("offset cannot be negative")
	}
	if p.Page < 0 {
		return errors.New("page cannot be negative")
	}
	if p.PageSize < 0 {
		return errors.New("page-size cannot be negative")
	}
	if p.Limit > MaxLimit {
		return fmt.Errorf("limit cannot exceed %d", MaxLimit)
	}
	if p.PageSize > MaxPageSize {
		return fmt.Errorf("page-size cannot exceed %d", MaxPageSize)
	}

	if p.Page > 0 && (p.Offset > 0 || p.Limit > 0) {
		return errors.New("page and offset/limit parameters are mutually exclusive")
	}
	if p.Page == 0 && p.PageSize > 0 {
		return errors.New("page must be specified when using page-size: page must be >= 1")
	}
	if p.PageSize == 0 && p.Page > 0 {
		return errors.New("page-size must be specified when using page: page-size must be > 0")
	}
	return nil
}

// IsPageBased returns true if page-based selection is active.
func (p Params) IsPageBased() bool {
	return p.Page > 0
}

// IsEnabled returns true if any selection parameter is set.
func (p Params) IsEnabled() bool {
	return p.Limit > 0 || p.Page > 0 || p.PageSize > 0 || p.Offset > 0
}

// OffsetLimit returns the effective offset and limit. A zero limit means "to
// the end".
//
//nolint:nonamedreturns // Named returns improve readability for this multi-value function.
func (p Params) OffsetLimit() (offset, limit int) {
	if p.IsPageBased() {
		return (p.Page - 1) * p.PageSize, p.PageSize
	}
	return p.Offset, p.Limit
}

// TotalPages returns the number of pages of total items in page mode, 0 otherwise.
func (p Params) TotalPages(total int) int {
	if !p.IsPageBased() || total <= 0 {
		return 0
	}
	return (total + p.PageSize - 1) / p.PageSize
}

// Apply returns the selected window of items. A page beyond the end is capped
// to the last page; an offset beyond the end selects nothing.
func Apply[T any](p Params, items []T) []T {
	if len(items) == 0 {
		return items
	}

	offset, limit := p.OffsetLimit()
	if p.IsPageBased() && offset >= len(items) {
		offset = ((len(items) - 1) / p.PageSize) * p.PageSize
	}
	if offset >= len(items) {
		return []T{}
	}

	end := len(items)
	if limit > 0 {
		end = min(offset+limit, len(items))
	}
	return items[offset:end]
}

// sortPartsMax is the maximum number of parts in a sort expression (field:order).
const sortPartsMax = 2

// ParseSort parses "field" or "field:order". The order defaults to ascending
// and is case-insensitive.
func ParseSort(expr string) (interact.SortBy, error) {
	parts := strings.Split(expr, ":")
	if len(parts) > sortPartsMax {
		return interact.SortBy{}, fmt.Errorf("%w: %q", ErrInvalidSortFormat, expr)
	}

	field := strings.TrimSpace(parts[0])
	if field == "" {
		return interact.SortBy{}, ErrEmptySortField
	}

	order := DefaultSortOrder
	if len(parts) == sortPartsMax {
		order = columns.SortOrder(strings.ToLower(strings.TrimSpace(parts[1])))
	}
	if order != columns.SortAsc && order != columns.SortDesc {
		return interact.SortBy{}, fmt.Errorf("%w: got %q", ErrInvalidSortOrder, order)
	}
	return interact.SortBy{Key: field, Order: order}, nil
}

// ParseSortList parses repeated --sort values. Each value may itself hold a
// comma-separated list. The result keeps the given priority order.
func ParseSortList(exprs []string) ([]interact.SortBy, error) {
	var out []interact.SortBy
	seen := map[string]bool{}
	for _, e := range exprs {
		for part := range strings.SplitSeq(e, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			by, err := ParseSort(part)
			if err != nil {
				return nil, err
			}
			if seen[by.Key] {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateSort, by.Key)
			}
			seen[by.Key] = true
			out = append(out, by)
		}
	}
	return out, nil
}

// SortState converts a sort list to the multi-sort state map.
func SortState(list []interact.SortBy) map[string]columns.SortOrder {
	state := make(map[string]columns.SortOrder, len(list))
	for _, by := range list {
		state[by.Key] = by.Order
	}
	return state
}
