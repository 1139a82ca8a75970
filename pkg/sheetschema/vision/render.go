package vision

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"

	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/models"
	"github.com/xuri/excelize/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Snapshot geometry in pixels.
const (
	CellWidth  = 120
	CellHeight = 30
	HeaderSize = 30
)

const (
	maxImageCell  = 18
	imageCellKeep = 16
)

var (
	colorBackground = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorHeaderBand = color.RGBA{0xf1, 0xf5, 0xf9, 0xff}
	colorGridLine   = color.RGBA{0xcb, 0xd5, 0xe1, 0xff}
	colorLabel      = color.RGBA{0x64, 0x74, 0x8b, 0xff}
	colorCellText   = color.RGBA{0x0f, 0x17, 0x2a, 0xff}
)

// ColumnLabel returns the spreadsheet label of a 0-based column index
// (A, B, ..., Z, AA, ...).
func ColumnLabel(col int) string {
	name, err := excelize.ColumnNumberToName(col + 1)
	if err != nil {
		return ""
	}
	return name
}

// RenderPNG draws the grid as a spreadsheet-like bitmap with column labels
// across the top and 1-based row numbers down the left. An empty grid
// renders no image and returns nil.
func RenderPNG(grid models.Grid) ([]byte, error) {
	if len(grid) == 0 {
		return nil, nil
	}

	rows, cols := len(grid), grid.Width()
	width := HeaderSize + cols*CellWidth
	height := HeaderSize + rows*CellHeight

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	fill(img, img.Bounds(), colorBackground)
	fill(img, image.Rect(HeaderSize, 0, width, HeaderSize), colorHeaderBand)
	fill(img, image.Rect(0, HeaderSize, HeaderSize, height), colorHeaderBand)

	for c := 0; c < cols; c++ {
		x := HeaderSize + c*CellWidth
		vline(img, x, 0, height, colorGridLine)
		drawText(img, ColumnLabel(c), x+50, 20, colorLabel)
	}
	for r := 0; r < rows; r++ {
		y := HeaderSize + r*CellHeight
		hline(img, 0, width, y, colorGridLine)
		drawText(img, strconv.Itoa(r+1), 5, y+20, colorLabel)
	}

	for r, row := range grid {
		for c, v := range row {
			if v.IsBlank() {
				continue
			}
			x := HeaderSize + c*CellWidth + 5
			y := HeaderSize + r*CellHeight + 20
			drawText(img, truncate(v.String(), maxImageCell, imageCellKeep, ".."), x, y, colorCellText)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func fill(img draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func vline(img *image.RGBA, x, y0, y1 int, c color.RGBA) {
	for y := y0; y < y1; y++ {
		img.SetRGBA(x, y, c)
	}
}

func hline(img *image.RGBA, x0, x1, y int, c color.RGBA) {
	for x := x0; x < x1; x++ {
		img.SetRGBA(x, y, c)
	}
}

func drawText(img draw.Image, s string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
