// Package parser provides spreadsheet decoding and grid preparation:
// merge filling, hidden column pruning, trailing row trimming and sampling.
package parser

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/models"
	"github.com/xuri/excelize/v2"
)

// Decoder produces a decoded workbook.
type Decoder interface {
	Decode(ctx context.Context) (*models.Workbook, error)
}

// FileDecoder decodes an xlsx file from disk.
type FileDecoder struct {
	Path string
	// Password opens encrypted workbooks when set.
	Password string
}

// Decode implements Decoder.
func (d FileDecoder) Decode(ctx context.Context) (*models.Workbook, error) {
	f, err := excelize.OpenFile(d.Path, excelize.Options{Password: d.Password})
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return decodeWorkbook(ctx, f, filepath.Base(d.Path))
}

// Source returns the file name without its directory.
func (d FileDecoder) Source() string { return filepath.Base(d.Path) }

// ReaderDecoder decodes an xlsx stream.
type ReaderDecoder struct {
	Name     string
	Reader   io.Reader
	Password string
}

// Decode implements Decoder.
func (d ReaderDecoder) Decode(ctx context.Context) (*models.Workbook, error) {
	f, err := excelize.OpenReader(d.Reader, excelize.Options{Password: d.Password})
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return decodeWorkbook(ctx, f, d.Name)
}

// Source returns d.Name.
func (d ReaderDecoder) Source() string { return d.Name }

// decodeWorkbook reads every sheet of an open workbook in tab order.
func decodeWorkbook(ctx context.Context, f *excelize.File, name string) (*models.Workbook, error) {
	wb := &models.Workbook{Name: name}
	for _, sheetName := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sheet, err := decodeSheet(f, sheetName)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", sheetName, err)
		}
		wb.Sheets = append(wb.Sheets, sheet)
	}
	return wb, nil
}

func decodeSheet(f *excelize.File, sheetName string) (models.RawSheet, error) {
	visible, err := f.GetSheetVisible(sheetName)
	if err != nil {
		return models.RawSheet{}, err
	}
	sheet := models.RawSheet{Name: sheetName, Hidden: !visible}
	if sheet.Hidden {
		return sheet, nil
	}

	cells, width, err := extractCells(f, sheetName)
	if err != nil {
		return models.RawSheet{}, err
	}
	merges, err := extractMerges(f, sheetName)
	if err != nil {
		return models.RawSheet{}, err
	}
	for _, m := range merges {
		if m.EndCol+1 > width {
			width = m.EndCol + 1
		}
	}
	hidden, err := extractHiddenColumns(f, sheetName, width)
	if err != nil {
		return models.RawSheet{}, err
	}

	sheet.Cells = cells
	sheet.Merges = merges
	sheet.HiddenCols = hidden
	return sheet, nil
}
