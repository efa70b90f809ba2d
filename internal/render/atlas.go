package render

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	GlyphWidth  = 8
	GlyphHeight = 14
	AtlasCols   = 16
	AtlasRows   = 6

	firstGlyph = 32 // space
	lastGlyph  = 126
)

// FontAtlas holds printable ASCII rendered once into a single image plus
// cached sub-images per glyph.
type FontAtlas struct {
	image  *ebiten.Image
	glyphs [AtlasCols * AtlasRows]*ebiten.Image
}

// AtlasImage rasterizes the ASCII atlas with basicfont.Face7x13. It is
// split out so the layout can be checked without a graphics context.
func AtlasImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, AtlasCols*GlyphWidth, AtlasRows*GlyphHeight))
	face := basicfont.Face7x13
	for code := firstGlyph; code <= lastGlyph; code++ {
		x, y := glyphCell(byte(code))
		drawFontGlyph(img, face, x, y, rune(code))
	}
	return img
}

// NewFontAtlas uploads the atlas. Call after the graphics context exists.
func NewFontAtlas() *FontAtlas {
	eimg := ebiten.NewImageFromImage(AtlasImage())
	a := &FontAtlas{image: eimg}
	for code := firstGlyph; code <= lastGlyph; code++ {
		x, y := glyphCell(byte(code))
		rect := image.Rect(x, y, x+GlyphWidth, y+GlyphHeight)
		a.glyphs[code-firstGlyph] = eimg.SubImage(rect).(*ebiten.Image)
	}
	return a
}

// Glyph returns the sub-image for an ASCII code; anything outside the
// printable range maps to '?'.
func (a *FontAtlas) Glyph(code byte) *ebiten.Image {
	if code < firstGlyph || code > lastGlyph {
		code = '?'
	}
	return a.glyphs[code-firstGlyph]
}

// glyphCell is the top-left pixel of code's cell.
func glyphCell(code byte) (x, y int) {
	i := int(code) - firstGlyph
	return (i % AtlasCols) * GlyphWidth, (i / AtlasCols) * GlyphHeight
}

// drawFontGlyph renders one 7x13 glyph into its 8x14 cell, baseline at
// y+11.
func drawFontGlyph(img *image.NRGBA, face font.Face, cellX, cellY int, r rune) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P(cellX, cellY+11),
	}
	d.DrawString(string(r))
}
