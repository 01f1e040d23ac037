// Package cache is the file-backed state store behind scroll persistence.
//
// Entries are JSON files under the cache directory (~/.vgrid/cache by default),
// each carrying its own expiry. ScrollStore layers a best-effort asynchronous
// writer on top of a FileStore so the table never waits on disk I/O.
package cache
