// Package window implements a windowed list of variable-size items.
//
// A List answers which items intersect a viewport at a scroll offset, plus a few
// overscan items on either side, without visiting every item. Item offsets are
// computed lazily from a size callback and cached up to the furthest item asked
// about; ResetAfterIndex drops cached offsets from an index onward after sizes change.
// Items past the cached region are assumed to be EstimatedItemSize tall when
// computing the total scrollable size.
//
// Every table pane owns one List. The table engine drives them with shared sizes so
// the panes stay aligned row for row.
package window
