package parser

import (
	"sort"

	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/models"
)

// Normalized is the result of normalizing one sheet.
type Normalized struct {
	// Grid is the dense, pruned and trimmed grid.
	Grid models.Grid
	// MergedRegions is the number of merge regions filled.
	MergedRegions int
	// HiddenColumns is the number of distinct hidden column indices dropped.
	HiddenColumns int
}

// Normalize turns a raw sheet into a dense grid. Merge regions are filled
// first, then hidden columns are removed and trailing blank rows trimmed.
// The raw sheet is not modified.
func Normalize(sheet models.RawSheet) Normalized {
	cells := make(map[models.CellRef]models.CellValue, len(sheet.Cells))
	for ref, v := range sheet.Cells {
		cells[ref] = v
	}

	merged := FillMerges(cells, sheet.Merges)
	hidden := dedupe(sheet.HiddenCols)

	grid := Densify(cells)
	grid = PruneColumns(grid, hidden)
	grid = TrimTrailingBlankRows(grid)

	return Normalized{
		Grid:          grid,
		MergedRegions: merged,
		HiddenColumns: len(hidden),
	}
}

// FillMerges writes the anchor value of every region into each of its cells,
// overwriting whatever was there. An unset anchor makes the whole region
// absent. Regions are applied in order. Returns the number of regions.
func FillMerges(cells map[models.CellRef]models.CellValue, merges []models.MergeRegion) int {
	for _, m := range merges {
		anchor := cells[m.Anchor()]
		for r := m.StartRow; r <= m.EndRow; r++ {
			for c := m.StartCol; c <= m.EndCol; c++ {
				ref := models.CellRef{Row: r, Col: c}
				if anchor.IsAbsent() {
					delete(cells, ref)
					continue
				}
				cells[ref] = anchor
			}
		}
	}
	return len(merges)
}

// Densify converts a sparse cell map into a rectangular grid spanning from
// A1 to the bottom-right-most set cell. Missing cells are absent.
func Densify(cells map[models.CellRef]models.CellValue) models.Grid {
	maxRow, maxCol := -1, -1
	for ref := range cells {
		if ref.Row < 0 || ref.Col < 0 {
			continue
		}
		if ref.Row > maxRow {
			maxRow = ref.Row
		}
		if ref.Col > maxCol {
			maxCol = ref.Col
		}
	}
	if maxRow < 0 {
		return models.Grid{}
	}

	grid := make(models.Grid, maxRow+1)
	for r := range grid {
		grid[r] = make(models.Row, maxCol+1)
	}
	for ref, v := range cells {
		if ref.Row < 0 || ref.Col < 0 {
			continue
		}
		grid[ref.Row][ref.Col] = v
	}
	return grid
}

// PruneColumns removes the given column indices from every row. Short rows
// lose only the indices they actually have.
func PruneColumns(grid models.Grid, hidden []int) models.Grid {
	if len(hidden) == 0 {
		return grid
	}
	drop := make(map[int]struct{}, len(hidden))
	for _, c := range hidden {
		drop[c] = struct{}{}
	}

	out := make(models.Grid, len(grid))
	for r, row := range grid {
		kept := make(models.Row, 0, len(row))
		for c, v := range row {
			if _, ok := drop[c]; ok {
				continue
			}
			kept = append(kept, v)
		}
		out[r] = kept
	}
	return out
}

// TrimTrailingBlankRows drops rows from the end of the grid while every cell
// in the last row is absent or empty.
func TrimTrailingBlankRows(grid models.Grid) models.Grid {
	n := len(grid)
	for n > 0 && grid[n-1].IsBlank() {
		n--
	}
	return grid[:n]
}

func dedupe(cols []int) []int {
	if len(cols) == 0 {
		return nil
	}
	seen := make(map[int]struct{}, len(cols))
	out := make([]int, 0, len(cols))
	for _, c := range cols {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Ints(out)
	return out
}
