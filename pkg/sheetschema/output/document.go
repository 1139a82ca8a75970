// Package output builds, encodes and validates export documents.
package output

import (
	"time"

	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/models"
)

// BuildDocument assembles the export document for the given sheets. The
// result shares no storage with sheets.
func BuildDocument(sheets []models.SheetAnalysis, source string, now time.Time) *models.ExportDocument {
	doc := &models.ExportDocument{
		Version:   models.ExportVersion,
		Timestamp: now.UTC().Format(time.RFC3339Nano),
		Source:    source,
		Sheets:    make([]models.ExportSheet, 0, len(sheets)),
	}

	for _, sheet := range sheets {
		es := models.ExportSheet{
			SheetName: sheet.SheetName,
			Tables:    make([]models.ExportTable, 0, len(sheet.Tables)),
		}
		for _, table := range sheet.Tables {
			es.Tables = append(es.Tables, models.ExportTable{
				Name:        table.Name,
				RowRange:    [2]int{table.StartRow, table.EndRow},
				Description: table.Description,
				Confidence:  table.Confidence,
				Columns:     copyColumns(table.Columns),
			})
		}
		doc.Sheets = append(doc.Sheets, es)
	}

	return doc
}

func copyColumns(cols []models.Column) []models.Column {
	out := make([]models.Column, len(cols))
	for i, c := range cols {
		c.SampleValues = append(make([]string, 0, len(c.SampleValues)), c.SampleValues...)
		out[i] = c
	}
	return out
}
