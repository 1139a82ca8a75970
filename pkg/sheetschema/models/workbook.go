package models

// Workbook represents a decoded workbook with its sheets in tab order.
type Workbook struct {
	// Name is the workbook file name (no path).
	Name string
	// Sheets lists every sheet, hidden ones included.
	Sheets []RawSheet
}
