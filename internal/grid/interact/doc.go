// Package interact holds the column resize and sort state machines.
//
// Resizing moves idle -> resizing on Start and back to idle on End. Width changes
// reported while dragging are clamped to the column bounds and rate limited; a
// width held back by the limiter is delivered by Flush or End, so the final width
// always reaches the layout.
//
// Sorting toggles a sortable column between ascending and descending. In single
// sort mode a click on a different column starts it ascending; in multi sort mode
// every column toggles independently. Sort state is either owned by the controller
// or controlled by the caller, in which case clicks only report the requested state.
package interact
