package parser

import (
	"fmt"
	"strings"

	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/models"
	"github.com/xuri/excelize/v2"
)

// extractMerges reads the merged regions of a sheet as 0-based rectangles.
func extractMerges(f *excelize.File, sheetName string) ([]models.MergeRegion, error) {
	mergeCells, err := f.GetMergeCells(sheetName)
	if err != nil {
		return nil, err
	}

	var regions []models.MergeRegion
	for _, mc := range mergeCells {
		ref := mc.GetStartAxis() + ":" + mc.GetEndAxis()
		region, err := ParseRange(ref)
		if err != nil {
			return nil, fmt.Errorf("merge region %q: %w", ref, err)
		}
		regions = append(regions, region)
	}
	return regions, nil
}

// ParseRange parses a range string like $A$1:$D$10 into a 0-based MergeRegion.
// A single cell reference yields a one-cell region. Reversed corners are
// normalized so that the start is always the top-left cell.
func ParseRange(ref string) (models.MergeRegion, error) {
	// Remove $ signs
	ref = strings.ReplaceAll(strings.TrimSpace(ref), "$", "")

	parts := strings.Split(ref, ":")
	if len(parts) == 1 {
		parts = append(parts, parts[0])
	}
	if len(parts) != 2 {
		return models.MergeRegion{}, fmt.Errorf("invalid range reference %q", ref)
	}

	startCol, startRow, err := excelize.CellNameToCoordinates(parts[0])
	if err != nil {
		return models.MergeRegion{}, err
	}

	endCol, endRow, err := excelize.CellNameToCoordinates(parts[1])
	if err != nil {
		return models.MergeRegion{}, err
	}

	if endRow < startRow {
		startRow, endRow = endRow, startRow
	}
	if endCol < startCol {
		startCol, endCol = endCol, startCol
	}

	return models.MergeRegion{
		StartRow: startRow - 1,
		StartCol: startCol - 1,
		EndRow:   endRow - 1,
		EndCol:   endCol - 1,
	}, nil
}

// extractHiddenColumns returns the 0-based indices of hidden columns among
// the first width columns of a sheet.
func extractHiddenColumns(f *excelize.File, sheetName string, width int) ([]int, error) {
	var hidden []int
	for col := 1; col <= width; col++ {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return nil, err
		}
		visible, err := f.GetColVisible(sheetName, name)
		if err != nil {
			return nil, err
		}
		if !visible {
			hidden = append(hidden, col-1)
		}
	}
	return hidden, nil
}
