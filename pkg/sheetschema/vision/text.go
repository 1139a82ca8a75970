// Package vision prepares a sheet for the visual analysis service and
// defines that service's interface.
package vision

import (
	"fmt"
	"strings"

	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/models"
)

const (
	maxTextCell  = 40
	textCellKeep = 37
)

// RenderText renders a grid as one line per row:
//
//	Row 0: | Name | Revenue |
//
// Unicode whitespace runs inside a cell collapse to one space. Cells longer
// than 40 characters are cut to 37 followed by "...".
func RenderText(grid models.Grid) string {
	lines := make([]string, len(grid))
	for i, row := range grid {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = textCell(v)
		}
		lines[i] = fmt.Sprintf("Row %d: | %s |", i, strings.Join(cells, " | "))
	}
	return strings.Join(lines, "\n")
}

func textCell(v models.CellValue) string {
	s := strings.Join(strings.Fields(v.String()), " ")
	return truncate(s, maxTextCell, textCellKeep, "...")
}

// truncate cuts s to keep runes plus suffix when it is longer than limit runes.
func truncate(s string, limit, keep int, suffix string) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:keep]) + suffix
}
