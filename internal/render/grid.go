package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// Cell is one character cell of the HUD.
type Cell struct {
	Glyph byte  // ASCII code
	FG    uint8 // palette index
	BG    uint8 // palette index, ColorClear leaves the scene visible
}

var blank = Cell{Glyph: ' ', FG: ColorWhite, BG: ColorClear}

// CellBuffer is a 2D grid of character cells laid over the scene.
type CellBuffer struct {
	Cols  int
	Rows  int
	Cells []Cell
}

// NewCellBuffer creates a buffer of transparent blank cells.
func NewCellBuffer(cols, rows int) *CellBuffer {
	b := &CellBuffer{}
	b.Resize(cols, rows)
	return b
}

// Resize reallocates the grid when the window size changes. Contents are
// cleared.
func (b *CellBuffer) Resize(cols, rows int) {
	cols, rows = max(cols, 0), max(rows, 0)
	if cols != b.Cols || rows != b.Rows {
		b.Cols, b.Rows = cols, rows
		b.Cells = make([]Cell, cols*rows)
	}
	b.Clear()
}

// Set writes a single cell at (x, y). Out-of-bounds writes are ignored.
func (b *CellBuffer) Set(x, y int, glyph byte, fg, bg uint8) {
	if x >= 0 && x < b.Cols && y >= 0 && y < b.Rows {
		b.Cells[y*b.Cols+x] = Cell{Glyph: glyph, FG: fg, BG: bg}
	}
}

// Get reads a single cell at (x, y). Out-of-bounds reads return a blank cell.
func (b *CellBuffer) Get(x, y int) Cell {
	if x >= 0 && x < b.Cols && y >= 0 && y < b.Rows {
		return b.Cells[y*b.Cols+x]
	}
	return Cell{}
}

// Clear resets every cell to a transparent blank.
func (b *CellBuffer) Clear() {
	for i := range b.Cells {
		b.Cells[i] = blank
	}
}

// WriteString writes s starting at (x, y), one byte per cell. Non-ASCII
// runes become '?'. It returns the column after the last cell written.
func (b *CellBuffer) WriteString(x, y int, s string, fg, bg uint8) int {
	for _, ch := range s {
		if ch > 126 {
			ch = '?'
		}
		b.Set(x, y, byte(ch), fg, bg)
		x++
	}
	return x
}

// Fill paints the background of a rectangle of cells.
func (b *CellBuffer) Fill(x, y, w, h int, bg uint8) {
	for row := y; row < y+h; row++ {
		for col := x; col < x+w; col++ {
			c := b.Get(col, row)
			if c.Glyph == 0 {
				continue
			}
			c.BG = bg
			b.Set(col, row, c.Glyph, c.FG, c.BG)
		}
	}
}

// Text returns row y as a string with trailing blanks trimmed.
func (b *CellBuffer) Text(y int) string {
	if y < 0 || y >= b.Rows {
		return ""
	}
	row := make([]byte, b.Cols)
	end := 0
	for x := 0; x < b.Cols; x++ {
		row[x] = b.Cells[y*b.Cols+x].Glyph
		if row[x] != ' ' {
			end = x + 1
		}
	}
	return string(row[:end])
}

// GridRenderer draws a CellBuffer on top of the scene.
type GridRenderer struct {
	Atlas   *FontAtlas
	CellW   int
	CellH   int
	bgPixel *ebiten.Image // 1x1 white pixel for drawing backgrounds
}

// NewGridRenderer creates a renderer with the given atlas and cell dimensions.
func NewGridRenderer(atlas *FontAtlas, cellW, cellH int) *GridRenderer {
	bgPixel := ebiten.NewImage(1, 1)
	bgPixel.Fill(color.White)
	return &GridRenderer{
		Atlas:   atlas,
		CellW:   cellW,
		CellH:   cellH,
		bgPixel: bgPixel,
	}
}

// Draw renders the buffer to dst.
func (r *GridRenderer) Draw(dst *ebiten.Image, buf *CellBuffer) {
	scaleX := float64(r.CellW) / float64(GlyphWidth)
	scaleY := float64(r.CellH) / float64(GlyphHeight)

	var op ebiten.DrawImageOptions
	for y := 0; y < buf.Rows; y++ {
		for x := 0; x < buf.Cols; x++ {
			cell := buf.Cells[y*buf.Cols+x]
			px := float64(x * r.CellW)
			py := float64(y * r.CellH)

			if cell.BG != ColorClear {
				op = ebiten.DrawImageOptions{}
				op.GeoM.Scale(float64(r.CellW), float64(r.CellH))
				op.GeoM.Translate(px, py)
				op.ColorScale.ScaleWithColor(Palette[cell.BG])
				dst.DrawImage(r.bgPixel, &op)
			}

			if cell.Glyph != ' ' && cell.Glyph != 0 {
				op = ebiten.DrawImageOptions{}
				op.GeoM.Scale(scaleX, scaleY)
				op.GeoM.Translate(px, py)
				op.ColorScale.ScaleWithColor(Palette[cell.FG])
				dst.DrawImage(r.Atlas.Glyph(cell.Glyph), &op)
			}
		}
	}
}

// DrawLabel renders s at sub-pixel screen coordinates, used for body names
// that track projected positions.
func (r *GridRenderer) DrawLabel(dst *ebiten.Image, s string, fg uint8, px, py float64) {
	scaleX := float64(r.CellW) / float64(GlyphWidth)
	scaleY := float64(r.CellH) / float64(GlyphHeight)
	var op ebiten.DrawImageOptions
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			continue
		}
		op = ebiten.DrawImageOptions{}
		op.GeoM.Scale(scaleX, scaleY)
		op.GeoM.Translate(px+float64(i*r.CellW), py)
		op.ColorScale.ScaleWithColor(Palette[fg])
		dst.DrawImage(r.Atlas.Glyph(s[i]), &op)
	}
}
