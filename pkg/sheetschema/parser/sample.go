package parser

import "github.com/ukaji3/sheetschema-go/pkg/sheetschema/models"

const (
	// DefaultRowLimit is the default number of rows kept by Sample.
	DefaultRowLimit = 50
	// DefaultColLimit is the default number of columns kept by Sample.
	DefaultColLimit = 40
)

// Sample bounds a grid to its first rowLimit rows, each truncated to its
// first colLimit cells. A non-positive limit selects the default. The result
// shares no storage with the input.
func Sample(grid models.Grid, rowLimit, colLimit int) models.Grid {
	if rowLimit <= 0 {
		rowLimit = DefaultRowLimit
	}
	if colLimit <= 0 {
		colLimit = DefaultColLimit
	}

	n := min(len(grid), rowLimit)
	out := make(models.Grid, n)
	for r := 0; r < n; r++ {
		row := grid[r]
		out[r] = append(models.Row(nil), row[:min(len(row), colLimit)]...)
	}
	return out
}
