// Package dataset loads table rows from JSON, YAML and Excel files, pages them
// into the table incrementally, and watches the source files for changes.
//
// Every loader produces []tree.Row with nested children normalized to []tree.Row
// so expansion and flattening see stable row values.
package dataset
