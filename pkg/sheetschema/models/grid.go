package models

// Row is an ordered sequence of cells.
type Row []CellValue

// Grid is an ordered sequence of rows. Rows may have different lengths.
type Grid []Row

// Cell returns the value at (r, c), or an absent value when the index falls
// outside a short row or outside the grid.
func (g Grid) Cell(r, c int) CellValue {
	if r < 0 || r >= len(g) {
		return Absent()
	}
	return g[r].Cell(c)
}

// Cell returns the value at index c, or an absent value past the row's end.
func (r Row) Cell(c int) CellValue {
	if c < 0 || c >= len(r) {
		return Absent()
	}
	return r[c]
}

// Width returns the length of the longest row.
func (g Grid) Width() int {
	w := 0
	for _, row := range g {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// Clone returns a copy of the grid that shares no row storage with g.
func (g Grid) Clone() Grid {
	if g == nil {
		return nil
	}
	out := make(Grid, len(g))
	for i, row := range g {
		out[i] = append(Row(nil), row...)
	}
	return out
}

// Equal reports whether two grids have the same shape and cell values.
func (g Grid) Equal(o Grid) bool {
	if len(g) != len(o) {
		return false
	}
	for i := range g {
		if len(g[i]) != len(o[i]) {
			return false
		}
		for j := range g[i] {
			if !g[i][j].Equal(o[i][j]) {
				return false
			}
		}
	}
	return true
}

// IsBlank reports whether every cell in the row is absent or empty.
func (r Row) IsBlank() bool {
	for _, v := range r {
		if !v.IsBlank() {
			return false
		}
	}
	return true
}

// MergeRegion represents an inclusive rectangle of merged cells (0-based).
// The anchor is the top-left cell (StartRow, StartCol).
type MergeRegion struct {
	StartRow int `json:"start_row"`
	StartCol int `json:"start_col"`
	EndRow   int `json:"end_row"`
	EndCol   int `json:"end_col"`
}

// Anchor returns the anchor cell reference.
func (m MergeRegion) Anchor() CellRef {
	return CellRef{Row: m.StartRow, Col: m.StartCol}
}
