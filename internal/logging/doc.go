// Package logging provides zerolog-based structured logging for vgrid.
//
// It covers:
//   - Logger construction from a Config (level, console/json format, stderr or file output)
//   - File output with graceful fallback to stderr when the file cannot be opened
//   - Component sub-loggers carrying a "component" field
//   - Trace ID propagation through context.Context (ULID based)
//
// The TUI owns the terminal while it runs, so interactive commands log to a file.
package logging
