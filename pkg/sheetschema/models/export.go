package models

// ExportVersion is the document format version written by this module.
const ExportVersion = 1

// ExportDocument is the canonical output of a finished schema review.
type ExportDocument struct {
	// Version is the document format version.
	Version int `json:"version" yaml:"version"`
	// Timestamp is the generation time in RFC 3339 form.
	Timestamp string `json:"timestamp" yaml:"timestamp"`
	// Source is the workbook name the schema was inferred from.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	// Sheets lists analysed sheets in workbook order.
	Sheets []ExportSheet `json:"sheets" yaml:"sheets"`
}

// ExportSheet is one sheet entry of an ExportDocument.
type ExportSheet struct {
	// SheetName is the sheet tab name.
	SheetName string `json:"sheetName" yaml:"sheetName"`
	// Tables lists the sheet's tables.
	Tables []ExportTable `json:"tables" yaml:"tables"`
}

// ExportTable is one table entry of an ExportSheet.
type ExportTable struct {
	// Name is the table display name.
	Name string `json:"name" yaml:"name"`
	// RowRange is the inclusive [start, end] row range (0-based).
	RowRange [2]int `json:"rowRange" yaml:"rowRange"`
	// Description summarises the table.
	Description string `json:"description" yaml:"description"`
	// Confidence is in [0, 1].
	Confidence float64 `json:"confidence" yaml:"confidence"`
	// Columns holds every column with all fields.
	Columns []Column `json:"columns" yaml:"columns"`
}
