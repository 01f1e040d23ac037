// Package pagination holds the row selection and sorting shared by the vgrid
// commands:
//   - Params: --limit/--offset and --page/--page-size flag validation and slicing
//   - Meta: page metadata for reports
//   - ParseSort/ParseSortList: "field[:order]" sort expressions
//   - RowSorter: stable, tree-aware row sorting
package pagination
