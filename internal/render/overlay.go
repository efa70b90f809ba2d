package render

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/solarfolio/solarfolio/internal/moon"
)

// Overlay text layout as fractions of the canvas edge.
const (
	overlayMargin   = 0.08
	overlayTitleTop = 0.2
	overlayCorner   = 0.12
)

// PaintOverlay redraws ov's info card into a canvas of ov.Size pixels,
// reusing dst when it already has that size. It clears ov.Dirty.
func PaintOverlay(dst *image.NRGBA, ov *moon.Overlay) *image.NRGBA {
	size := ov.Size
	if dst == nil || dst.Bounds().Dx() != size || dst.Bounds().Dy() != size {
		dst = image.NewNRGBA(image.Rect(0, 0, size, size))
	} else {
		draw.Draw(dst, dst.Bounds(), image.Transparent, image.Point{}, draw.Src)
	}

	roundedRect(dst, dst.Bounds(), int(float64(size)*overlayCorner), overlayBack, overlayRim)

	face := moon.Face
	lineH := face.Metrics().Height.Ceil()
	ascent := face.Metrics().Ascent.Ceil()
	textW := int(float64(size) * (1 - 2*overlayMargin))

	y := int(float64(size) * overlayTitleTop)
	for _, l := range moon.WrapText(ov.Title, textW) {
		drawCentered(dst, l, size/2, y+ascent, overlayTitle)
		y += lineH
	}
	y += lineH / 2
	bottom := size
	if len(ov.Hotspots) > 0 {
		bottom = ov.Hotspots[0].Rect.Min.Y
	}
	for _, l := range moon.WrapText(ov.Description, textW) {
		if y+lineH > bottom {
			break
		}
		drawCentered(dst, l, size/2, y+ascent, overlayBody)
		y += lineH
	}

	for i, h := range ov.Hotspots {
		fill, text := pillFill, pillText
		if i == ov.Hover {
			fill, text = pillHoverFill, pillHoverText
		}
		r := h.Rect
		roundedRect(dst, r, r.Dy()/2, fill, fill)
		baseline := r.Min.Y + (r.Dy()+ascent-face.Metrics().Descent.Ceil())/2
		drawCentered(dst, h.Text, (r.Min.X+r.Max.X)/2, baseline, text)
	}

	ov.Dirty = false
	return dst
}

// drawCentered draws s with its advance centered on cx.
func drawCentered(dst *image.NRGBA, s string, cx, baseline int, c color.NRGBA) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: moon.Face,
	}
	w := d.MeasureString(s).Ceil()
	d.Dot = fixed.P(cx-w/2, baseline)
	d.DrawString(s)
}

// roundedRect fills r with corner radius rad and a one pixel rim.
func roundedRect(dst *image.NRGBA, r image.Rectangle, rad int, fill, rim color.NRGBA) {
	rad = max(0, min(rad, r.Dx()/2, r.Dy()/2))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			d := cornerDistance(x, y, r, rad)
			switch {
			case d > float64(rad):
				continue
			case d > float64(rad)-1 || edge(x, y, r):
				dst.SetNRGBA(x, y, rim)
			default:
				dst.SetNRGBA(x, y, fill)
			}
		}
	}
}

// cornerDistance is the distance from (x, y) to the nearest corner circle
// center, or 0 outside the corner squares.
func cornerDistance(x, y int, r image.Rectangle, rad int) float64 {
	cx, cy := x, y
	switch {
	case x < r.Min.X+rad:
		cx = r.Min.X + rad
	case x >= r.Max.X-rad:
		cx = r.Max.X - rad - 1
	}
	switch {
	case y < r.Min.Y+rad:
		cy = r.Min.Y + rad
	case y >= r.Max.Y-rad:
		cy = r.Max.Y - rad - 1
	}
	if cx == x || cy == y {
		return 0
	}
	return math.Hypot(float64(x-cx), float64(y-cy))
}

func edge(x, y int, r image.Rectangle) bool {
	return x == r.Min.X || y == r.Min.Y || x == r.Max.X-1 || y == r.Max.Y-1
}
