package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rshade/vgrid/internal/grid/tree"
)

// loadXLSX reads a worksheet whose first row holds the field names. Numeric
// cells become float64 and "TRUE"/"FALSE" become bools; blank cells are omitted.
func loadXLSX(path, sheet string) ([]tree.Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}
	if idx, idxErr := f.GetSheetIndex(sheet); idxErr != nil || idx < 0 {
		return nil, fmt.Errorf("%s: sheet %q not found", path, sheet)
	}

	grid, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q of %s: %w", sheet, path, err)
	}
	if len(grid) == 0 {
		return nil, nil
	}

	header := make([]string, len(grid[0]))
	for i, h := range grid[0] {
		header[i] = strings.TrimSpace(h)
	}

	rows := make([]tree.Row, 0, len(grid)-1)
	for _, cells := range grid[1:] {
		row := tree.Row{}
		for i, cell := range cells {
			if i >= len(header) || header[i] == "" || cell == "" {
				continue
			}
			row[header[i]] = cellValue(cell)
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func cellValue(cell string) any {
	if n, err := strconv.ParseFloat(cell, 64); err == nil {
		return n
	}
	switch strings.ToUpper(cell) {
	case "TRUE":
		return true
	case "FALSE":
		return false
	}
	return cell
}
