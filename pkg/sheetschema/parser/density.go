package parser

import "github.com/ukaji3/sheetschema-go/pkg/sheetschema/models"

// TableDetectionParams holds thresholds for deciding whether a grid holds
// table-like data.
type TableDetectionParams struct {
	DensityMin       float64
	MinNonemptyCells int
}

// DefaultTableParams returns default table detection parameters.
func DefaultTableParams() TableDetectionParams {
	return TableDetectionParams{
		DensityMin:       0.04,
		MinNonemptyCells: 3,
	}
}

// Bounds is the bounding box of non-blank cells in a grid (0-based, inclusive).
type Bounds struct {
	MinRow, MaxRow int
	MinCol, MaxCol int
}

// DataBounds finds the bounding box of non-blank cells. ok is false when the
// grid has none.
func DataBounds(grid models.Grid) (b Bounds, ok bool) {
	b = Bounds{MinRow: -1, MaxRow: -1, MinCol: -1, MaxCol: -1}

	for rowIdx, row := range grid {
		for colIdx, cell := range row {
			if cell.IsBlank() {
				continue
			}
			if b.MinRow < 0 || rowIdx < b.MinRow {
				b.MinRow = rowIdx
			}
			if b.MaxRow < 0 || rowIdx > b.MaxRow {
				b.MaxRow = rowIdx
			}
			if b.MinCol < 0 || colIdx < b.MinCol {
				b.MinCol = colIdx
			}
			if b.MaxCol < 0 || colIdx > b.MaxCol {
				b.MaxCol = colIdx
			}
		}
	}

	return b, b.MinRow >= 0
}

// HasTableData reports whether the grid holds enough non-blank cells, densely
// enough, to be worth analysing.
func HasTableData(grid models.Grid, params TableDetectionParams) bool {
	b, ok := DataBounds(grid)
	if !ok {
		return false
	}

	totalCells := (b.MaxRow - b.MinRow + 1) * (b.MaxCol - b.MinCol + 1)
	nonEmptyCells := countNonEmptyCells(grid, b)
	if nonEmptyCells < params.MinNonemptyCells {
		return false
	}

	density := float64(nonEmptyCells) / float64(totalCells)
	return density >= params.DensityMin
}

// countNonEmptyCells counts non-blank cells within bounds.
func countNonEmptyCells(grid models.Grid, b Bounds) int {
	count := 0
	for rowIdx := b.MinRow; rowIdx <= b.MaxRow && rowIdx < len(grid); rowIdx++ {
		row := grid[rowIdx]
		for colIdx := b.MinCol; colIdx <= b.MaxCol && colIdx < len(row); colIdx++ {
			if !row[colIdx].IsBlank() {
				count++
			}
		}
	}
	return count
}
