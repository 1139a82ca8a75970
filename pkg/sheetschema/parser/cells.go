package parser

import (
	"strconv"
	"strings"
	"time"

	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/models"
	"github.com/xuri/excelize/v2"
)

// extractCells reads every non-empty cell of a sheet into a sparse map keyed
// by 0-based coordinates. It also returns the column count of the widest row.
func extractCells(f *excelize.File, sheetName string) (map[models.CellRef]models.CellValue, int, error) {
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, 0, err
	}

	styles := newStyleCache(f)
	cells := make(map[models.CellRef]models.CellValue)
	width := 0
	for rowIdx, row := range rows {
		for colIdx, raw := range row {
			if raw == "" {
				continue
			}
			if colIdx+1 > width {
				width = colIdx + 1
			}
			cellName, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return nil, 0, err
			}
			cellType, err := f.GetCellType(sheetName, cellName)
			if err != nil {
				return nil, 0, err
			}
			v := typedValue(raw, cellType)
			if v.Kind == models.KindNumber && styles.isDate(sheetName, cellName) {
				if t, err := excelize.ExcelDateToTime(v.Num, false); err == nil {
					v = models.Date(t)
				}
			}
			cells[models.CellRef{Row: rowIdx, Col: colIdx}] = v
		}
	}

	return cells, width, nil
}

// typedValue converts a raw cell string into a CellValue according to the
// cell's stored type.
func typedValue(raw string, cellType excelize.CellType) models.CellValue {
	switch cellType {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeError:
		return models.Text(raw)
	case excelize.CellTypeBool:
		switch strings.ToUpper(raw) {
		case "1", "TRUE":
			return models.Bool(true)
		case "0", "FALSE":
			return models.Bool(false)
		}
		return models.Text(raw)
	case excelize.CellTypeDate:
		if t, err := parseISODate(raw); err == nil {
			return models.Date(t)
		}
		return models.Text(raw)
	default:
		return parseValue(raw)
	}
}

// parseValue attempts to parse a string value as a number.
// Returns a numeric cell for integers and decimals, or a text cell.
func parseValue(s string) models.CellValue {
	// Try integer first
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return models.Number(float64(i))
	}
	// Try float
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return models.Number(f)
	}
	return models.Text(s)
}

func parseISODate(s string) (time.Time, error) {
	var err error
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", time.DateOnly} {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// styleCache memoizes whether a cell style renders numbers as dates.
type styleCache struct {
	f    *excelize.File
	byID map[int]bool
}

func newStyleCache(f *excelize.File) *styleCache {
	return &styleCache{f: f, byID: make(map[int]bool)}
}

func (c *styleCache) isDate(sheetName, cellName string) bool {
	id, err := c.f.GetCellStyle(sheetName, cellName)
	if err != nil || id == 0 {
		return false
	}
	if v, ok := c.byID[id]; ok {
		return v
	}
	isDate := false
	if style, err := c.f.GetStyle(id); err == nil && style != nil {
		isDate = isDateNumFmt(style.NumFmt)
		if style.CustomNumFmt != nil {
			isDate = isDateFormatCode(*style.CustomNumFmt)
		}
	}
	c.byID[id] = isDate
	return isDate
}

// isDateNumFmt reports whether a built-in number format id is a date or time format.
func isDateNumFmt(id int) bool {
	switch {
	case id >= 14 && id <= 22:
		return true
	case id >= 27 && id <= 36:
		return true
	case id >= 45 && id <= 47:
		return true
	case id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormatCode reports whether a custom format code formats dates.
// Quoted literals and bracketed sections (colors, locales) are ignored.
func isDateFormatCode(code string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for _, r := range strings.ToLower(code) {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		default:
			b.WriteRune(r)
		}
	}
	s := b.String()
	return strings.ContainsAny(s, "yd") || strings.Contains(s, "h:mm") || strings.Contains(s, "mm:ss")
}
