package pagination

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/rshade/vgrid/internal/grid/columns"
	"github.com/rshade/vgrid/internal/grid/interact"
	"github.com/rshade/vgrid/internal/grid/tree"
)

// RowSorter sorts rows by one or more fields. Children are sorted with the
// same keys at every depth.
type RowSorter struct {
	ChildrenField string
}

// NewRowSorter creates a sorter for rows nesting children under childrenField.
func NewRowSorter(childrenField string) *RowSorter {
	return &RowSorter{ChildrenField: childrenField}
}

// Sort returns a stably sorted copy of rows. Rows that have children are
// shallow-copied so the input tree is never modified. An empty list returns
// rows unchanged.
func (s *RowSorter) Sort(rows []tree.Row, by []interact.SortBy) []tree.Row {
	if len(by) == 0 || len(rows) == 0 {
		return rows
	}

	sorted := make([]tree.Row, len(rows))
	for i, r := range rows {
		children := tree.ChildrenOf(r, s.ChildrenField)
		if len(children) == 0 {
			sorted[i] = r
			continue
		}
		cp := maps.Clone(r)
		cp[s.ChildrenField] = s.Sort(children, by)
		sorted[i] = cp
	}

	slices.SortStableFunc(sorted, func(a, b tree.Row) int {
		for _, k := range by {
			av, bv := a[k.Key], b[k.Key]
			c := CompareValues(av, bv)
			if k.Order == columns.SortDesc && av != nil && bv != nil {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
	return sorted
}

// SortState sorts by a multi-sort state. priority lists the fields in the
// order they were added; fields missing from it follow in name order.
func (s *RowSorter) SortState(rows []tree.Row, state map[string]columns.SortOrder, priority []string) []tree.Row {
	by := make([]interact.SortBy, 0, len(state))
	used := map[string]bool{}
	for _, k := range priority {
		if o, ok := state[k]; ok && !used[k] {
			by = append(by, interact.SortBy{Key: k, Order: o})
			used[k] = true
		}
	}
	for _, k := range slices.Sorted(maps.Keys(state)) {
		if !used[k] {
			by = append(by, interact.SortBy{Key: k, Order: state[k]})
		}
	}
	return s.Sort(rows, by)
}

// Value classes, in ascending sort order. Missing values sort last in
// either direction.
const (
	rankBool = iota
	rankNumber
	rankString
	rankOther
	rankNil
)

// CompareValues orders two cell values. Numbers compare numerically across
// integer and float types, strings case-insensitively, and values of different
// kinds by kind.
func CompareValues(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch ra {
	case rankBool:
		ab, bb := a.(bool), b.(bool)
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	case rankNumber:
		af, _ := toFloat(a)
		bf, _ := toFloat(b)
		return cmp.Compare(af, bf)
	case rankString:
		as, bs := a.(string), b.(string)
		if c := strings.Compare(strings.ToLower(as), strings.ToLower(bs)); c != 0 {
			return c
		}
		return strings.Compare(as, bs)
	case rankOther:
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	default:
		return 0
	}
}

func rank(v any) int {
	switch v.(type) {
	case nil:
		return rankNil
	case bool:
		return rankBool
	case string:
		return rankString
	}
	if _, ok := toFloat(v); ok {
		return rankNumber
	}
	return rankOther
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
