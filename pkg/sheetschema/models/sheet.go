package models

// RawSheet represents one decoded sheet before normalization.
type RawSheet struct {
	// Name is the sheet tab name.
	Name string
	// Hidden is true when the workbook marks the sheet as hidden.
	Hidden bool
	// Cells maps 0-based coordinates to decoded values. Unset cells are missing.
	Cells map[CellRef]CellValue
	// Merges lists merged regions in workbook order.
	Merges []MergeRegion
	// HiddenCols lists 0-based indices of hidden columns.
	HiddenCols []int
}

// SheetAnalysis holds the inferred tables for one sheet.
type SheetAnalysis struct {
	// SheetName is the sheet tab name.
	SheetName string `json:"sheetName"`
	// Tables lists inferred tables in sheet order.
	Tables []Table `json:"tables"`
	// Grid is the sampled grid the tables were inferred from.
	Grid Grid `json:"-"`
}
