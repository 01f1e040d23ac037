package dataset

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rshade/vgrid/internal/grid/tree"
)

// Page size limits.
const (
	DefaultPageSize = 100
	MinPageSize     = 1
	MaxPageSize     = 10000
)

// ErrInvalidPageSize is returned for a page size outside [MinPageSize, MaxPageSize].
var ErrInvalidPageSize = errors.New("page size must be between 1 and 10000")

// Pager hands out a row source one page at a time. The visible slice grows by
// appending to a buffer with room for every row, so each page extends the
// previous slice in place.
type Pager struct {
	source   []tree.Row
	pageSize int

	mu      sync.Mutex
	visible []tree.Row
	pages   int
}

// NewPager pages source in pageSize chunks. A pageSize of 0 means DefaultPageSize.
func NewPager(source []tree.Row, pageSize int) (*Pager, error) {
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if pageSize < MinPageSize || pageSize > MaxPageSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPageSize, pageSize)
	}
	return &Pager{
		source:   source,
		pageSize: pageSize,
		visible:  make([]tree.Row, 0, len(source)),
	}, nil
}

// Next appends the next page and returns the rows loaded so far. It reports
// false when every row is already loaded.
func (p *Pager) Next() ([]tree.Row, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := len(p.visible)
	if start >= len(p.source) {
		return p.visible, false
	}
	end := min(start+p.pageSize, len(p.source))
	p.visible = append(p.visible, p.source[start:end]...)
	p.pages++
	return p.visible, true
}

// Rows returns the rows loaded so far.
func (p *Pager) Rows() []tree.Row {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

// Done reports whether every row is loaded.
func (p *Pager) Done() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.visible) >= len(p.source)
}

// Progress returns loaded and total row counts.
func (p *Pager) Progress() (loaded, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.visible), len(p.source)
}

// PagesLoaded returns how many pages Next has appended.
func (p *Pager) PagesLoaded() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pages
}

// PageSize returns the configured page size.
func (p *Pager) PageSize() int { return p.pageSize }

// PageBounds returns the [start, end) row ranges of every page of total rows.
func PageBounds(total, pageSize int) [][2]int {
	if pageSize <= 0 || total <= 0 {
		return nil
	}
	n := (total + pageSize - 1) / pageSize
	bounds := make([][2]int, n)
	for i := range n {
		start := i * pageSize
		bounds[i] = [2]int{start, min(start+pageSize, total)}
	}
	return bounds
}
