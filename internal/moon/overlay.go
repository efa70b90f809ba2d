package moon

import (
	"image"
	"math"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// BaseOverlayPixels is the design size of overlay typography. Larger
// overlays scale the backdrop, not the text.
const BaseOverlayPixels = 128

// Face is the overlay font. Hotspot rectangles are measured with it, so
// the renderer must draw with the same face.
var Face font.Face = basicfont.Face7x13

// Link is a labelled URL drawn as a pill at the bottom of an overlay.
type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// Hotspot is a link's pill in overlay canvas pixels.
type Hotspot struct {
	Link
	Rect image.Rectangle
}

// Overlay is the info card drawn over a hovered moon. The renderer redraws
// its canvas whenever Dirty is set.
type Overlay struct {
	Title       string
	Description string
	Links       []Link

	Size     int // canvas edge in pixels
	Hotspots []Hotspot
	Hover    int // hovered hotspot, -1 for none
	Opacity  float64
	Dirty    bool
}

// NewOverlay lays out an overlay canvas of size pixels.
func NewOverlay(title, description string, links []Link, size int) *Overlay {
	o := &Overlay{Title: title, Description: description, Links: links, Hover: -1, Dirty: true}
	o.Resize(size)
	return o
}

// Resize re-lays the canvas for a new edge length.
func (o *Overlay) Resize(size int) {
	size = max(BaseOverlayPixels, min(512, size))
	if size == o.Size {
		return
	}
	o.Size = size
	o.layoutPills()
	o.Dirty = true
}

// pill metrics, relative to the 128px design size
func pillMetrics() (padX, gap, height int) {
	const s = BaseOverlayPixels
	lineH := Face.Metrics().Height.Ceil()
	return int(math.Round(s * 0.034)), int(math.Round(s * 0.02)), int(math.Round(float64(lineH) * 1.15))
}

func (o *Overlay) layoutPills() {
	o.Hotspots = o.Hotspots[:0]
	if len(o.Links) == 0 {
		return
	}
	padX, gap, h := pillMetrics()
	widths := make([]int, len(o.Links))
	total := gap * (len(o.Links) - 1)
	for i, l := range o.Links {
		widths[i] = font.MeasureString(Face, l.Text).Ceil() + padX*2
		total += widths[i]
	}
	x := (o.Size - total) / 2
	y := int(math.Round(float64(o.Size) * 0.82))
	for i, l := range o.Links {
		o.Hotspots = append(o.Hotspots, Hotspot{
			Link: l,
			Rect: image.Rect(x, y, x+widths[i], y+h),
		})
		x += widths[i] + gap
	}
}

// HotspotAt returns the hotspot under canvas point (cx, cy), or -1. Pills
// are padded slightly so thin rows stay clickable.
func (o *Overlay) HotspotAt(cx, cy float64) int {
	pad := math.Max(2, math.Round(float64(o.Size)*0.012))
	for i, h := range o.Hotspots {
		r := h.Rect
		if cx >= float64(r.Min.X)-pad && cx <= float64(r.Max.X)+pad &&
			cy >= float64(r.Min.Y)-pad && cy <= float64(r.Max.Y)+pad {
			return i
		}
	}
	return -1
}

// SetHover highlights hotspot i, marking the canvas dirty on change.
func (o *Overlay) SetHover(i int) bool {
	if i == o.Hover {
		return false
	}
	o.Hover = i
	o.Dirty = true
	return true
}

// WrapText breaks text into lines no wider than maxWidth pixels in Face.
// A single word wider than maxWidth gets its own line.
func WrapText(text string, maxWidth int) []string {
	var lines []string
	cur := ""
	for _, w := range strings.Fields(text) {
		try := w
		if cur != "" {
			try = cur + " " + w
		}
		if cur != "" && font.MeasureString(Face, try).Ceil() > maxWidth {
			lines = append(lines, cur)
			cur = w
			continue
		}
		cur = try
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}
