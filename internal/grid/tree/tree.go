// Package tree flattens hierarchical rows into the sequence a table draws.
package tree

import "reflect"

// Row is a single record. Child rows live under a configurable field.
type Row = map[string]any

// KeyOf returns row[keyField] when it is a usable map key.
func KeyOf(row Row, keyField string) (any, bool) {
	if row == nil {
		return nil, false
	}
	key, ok := row[keyField]
	if !ok || key == nil || !reflect.TypeOf(key).Comparable() {
		return nil, false
	}
	return key, true
}

// ChildrenOf returns the child rows stored under childField. It understands
// []Row and the []any shape produced by JSON and YAML decoders.
func ChildrenOf(row Row, childField string) []Row {
	if row == nil {
		return nil
	}
	switch children := row[childField].(type) {
	case []Row:
		return children
	case []any:
		out := make([]Row, 0, len(children))
		for _, child := range children {
			if r, ok := child.(Row); ok {
				out = append(out, r)
			}
		}
		return out
	default:
		return nil
	}
}

// IsExpandable reports whether row has at least one child.
func IsExpandable(row Row, childField string) bool {
	return len(ChildrenOf(row, childField)) > 0
}

// KeySet is a set of row keys with a version that changes on every mutation.
type KeySet struct {
	keys    map[any]struct{}
	version uint64
}

// NewKeySet builds a set from keys.
func NewKeySet(keys ...any) *KeySet {
	s := &KeySet{keys: make(map[any]struct{}, len(keys))}
	for _, k := range keys {
		s.add(k)
	}
	return s
}

func (s *KeySet) add(key any) bool {
	if key == nil || !reflect.TypeOf(key).Comparable() {
		return false
	}
	if _, ok := s.keys[key]; ok {
		return false
	}
	s.keys[key] = struct{}{}
	return true
}

// Has reports membership.
func (s *KeySet) Has(key any) bool {
	if s == nil || key == nil || !reflect.TypeOf(key).Comparable() {
		return false
	}
	_, ok := s.keys[key]
	return ok
}

// Add inserts key and reports whether the set changed.
func (s *KeySet) Add(key any) bool {
	if s.add(key) {
		s.version++
		return true
	}
	return false
}

// Remove deletes key and reports whether the set changed.
func (s *KeySet) Remove(key any) bool {
	if !s.Has(key) {
		return false
	}
	delete(s.keys, key)
	s.version++
	return true
}

// Replace swaps the contents for keys.
func (s *KeySet) Replace(keys []any) {
	s.keys = make(map[any]struct{}, len(keys))
	for _, k := range keys {
		s.add(k)
	}
	s.version++
}

// Len returns the number of keys.
func (s *KeySet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Version changes on every mutation.
func (s *KeySet) Version() uint64 {
	if s == nil {
		return 0
	}
	return s.version
}

// Keys returns the keys in the order they appear in rows (pre-order), so callers
// get a stable slice. Keys not present in rows are appended in no particular order.
func (s *KeySet) Keys(roots []Row, keyField, childField string) []any {
	if s == nil {
		return nil
	}
	out := make([]any, 0, len(s.keys))
	seen := make(map[any]struct{}, len(s.keys))
	var walk func(rows []Row)
	walk = func(rows []Row) {
		for _, row := range rows {
			if key, ok := KeyOf(row, keyField); ok && s.Has(key) {
				if _, dup := seen[key]; !dup {
					seen[key] = struct{}{}
					out = append(out, key)
				}
			}
			walk(ChildrenOf(row, childField))
		}
	}
	walk(roots)
	for key := range s.keys {
		if _, ok := seen[key]; !ok {
			out = append(out, key)
		}
	}
	return out
}

// Result is a flattened tree.
type Result struct {
	// Rows are the visible rows in pre-order. Row maps are shared with the input.
	Rows []Row
	// Depths gives the depth of every row in the tree, visible or not, by key.
	Depths map[any]int
	// RowDepths is parallel to Rows.
	RowDepths []int
}

// Flatten walks roots in pre-order, emitting the children of a row only when its key
// is in expanded. Depths are recorded for every row in the tree.
func Flatten(roots []Row, expanded *KeySet, keyField, childField string) Result {
	res := Result{
		Rows:      make([]Row, 0, len(roots)),
		Depths:    make(map[any]int),
		RowDepths: make([]int, 0, len(roots)),
	}

	var walk func(rows []Row, depth int, visible bool)
	walk = func(rows []Row, depth int, visible bool) {
		for _, row := range rows {
			key, hasKey := KeyOf(row, keyField)
			if hasKey {
				if _, dup := res.Depths[key]; !dup {
					res.Depths[key] = depth
				}
			}
			if visible {
				res.Rows = append(res.Rows, row)
				res.RowDepths = append(res.RowDepths, depth)
			}
			children := ChildrenOf(row, childField)
			if len(children) == 0 {
				continue
			}
			walk(children, depth+1, visible && hasKey && expanded.Has(key))
		}
	}
	walk(roots, 0, true)
	return res
}

// Flattener memoizes Flatten on the identity of its inputs: the roots slice
// (backing array and length), the expanded set and its version, and the field names.
type Flattener struct {
	valid      bool
	rootsPtr   uintptr
	rootsLen   int
	expanded   *KeySet
	version    uint64
	keyField   string
	childField string
	result     Result
	flattens   int
}

// Flatten returns the memoized result when inputs are unchanged.
func (f *Flattener) Flatten(roots []Row, expanded *KeySet, keyField, childField string) Result {
	ptr := reflect.ValueOf(roots).Pointer()
	if f.valid &&
		f.rootsPtr == ptr &&
		f.rootsLen == len(roots) &&
		f.expanded == expanded &&
		f.version == expanded.Version() &&
		f.keyField == keyField &&
		f.childField == childField {
		return f.result
	}

	f.result = Flatten(roots, expanded, keyField, childField)
	f.valid = true
	f.rootsPtr = ptr
	f.rootsLen = len(roots)
	f.expanded = expanded
	f.version = expanded.Version()
	f.keyField = keyField
	f.childField = childField
	f.flattens++
	return f.result
}

// Invalidate forces the next Flatten to recompute.
func (f *Flattener) Invalidate() { f.valid = false }

// Flattens returns the number of uncached flattens performed.
func (f *Flattener) Flattens() int { return f.flattens }
