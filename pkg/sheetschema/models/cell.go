// Package models defines data structures for spreadsheet schema inference.
package models

import (
	"strconv"
	"time"
)

// CellKind identifies which variant a CellValue holds.
type CellKind int

const (
	// KindAbsent marks a cell with no value.
	KindAbsent CellKind = iota
	// KindText marks a text cell.
	KindText
	// KindNumber marks a numeric cell.
	KindNumber
	// KindBool marks a boolean cell.
	KindBool
	// KindDate marks a date or date-time cell.
	KindDate
)

func (k CellKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindDate:
		return "date"
	default:
		return "absent"
	}
}

// CellValue is a single decoded cell. The zero value is an absent cell.
type CellValue struct {
	Kind CellKind
	Text string
	Num  float64
	Bool bool
	Time time.Time
}

// Absent returns an absent cell value.
func Absent() CellValue { return CellValue{} }

// Text returns a text cell value.
func Text(s string) CellValue { return CellValue{Kind: KindText, Text: s} }

// Number returns a numeric cell value.
func Number(f float64) CellValue { return CellValue{Kind: KindNumber, Num: f} }

// Bool returns a boolean cell value.
func Bool(b bool) CellValue { return CellValue{Kind: KindBool, Bool: b} }

// Date returns a date cell value.
func Date(t time.Time) CellValue { return CellValue{Kind: KindDate, Time: t} }

// IsAbsent reports whether the cell holds no value.
func (v CellValue) IsAbsent() bool { return v.Kind == KindAbsent }

// IsBlank reports whether the cell is absent or an empty string.
func (v CellValue) IsBlank() bool {
	return v.Kind == KindAbsent || (v.Kind == KindText && v.Text == "")
}

// String renders the cell the way it is shown in headers and text snapshots.
// Absent cells render as the empty string.
func (v CellValue) String() string {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindDate:
		h, m, s := v.Time.Clock()
		if h == 0 && m == 0 && s == 0 && v.Time.Nanosecond() == 0 {
			return v.Time.Format(time.DateOnly)
		}
		return v.Time.Format(time.RFC3339)
	default:
		return ""
	}
}

// Equal reports whether two cells hold the same variant and value.
func (v CellValue) Equal(o CellValue) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindText:
		return v.Text == o.Text
	case KindNumber:
		return v.Num == o.Num
	case KindBool:
		return v.Bool == o.Bool
	case KindDate:
		return v.Time.Equal(o.Time)
	default:
		return true
	}
}

// CellRef addresses a cell by 0-based row and column.
type CellRef struct {
	Row int
	Col int
}
