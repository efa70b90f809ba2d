package render

import (
	"image/color"

	"github.com/solarfolio/solarfolio/internal/scene"
)

// HUD palette indices.
const (
	ColorClear     = 0
	ColorBackdrop  = 1
	ColorDim       = 2
	ColorCyan      = 3
	ColorWhite     = 4
	ColorYellow    = 5
	ColorRed       = 6
	ColorHighlight = 7
	ColorGreen     = 8
)

// Palette is the HUD's color table. ColorClear is never painted.
var Palette = [9]color.RGBA{
	{0, 0, 0, 0},         // 0: clear
	{6, 8, 18, 170},      // 1: panel backdrop
	{120, 128, 150, 255}, // 2: dim gray
	{110, 220, 235, 255}, // 3: cyan
	{245, 245, 245, 255}, // 4: white
	{255, 214, 90, 255},  // 5: yellow
	{255, 110, 100, 255}, // 6: red
	{40, 80, 140, 220},   // 7: active tab
	{120, 230, 140, 255}, // 8: green
}

// Scene colors outside the HUD grid.
var (
	spaceColor     = color.RGBA{2, 3, 10, 255}
	orbitColor     = color.RGBA{90, 110, 150, 90}
	overlayBack    = color.NRGBA{8, 12, 28, 205}
	overlayRim     = color.NRGBA{110, 220, 235, 160}
	overlayTitle   = color.NRGBA{245, 245, 245, 255}
	overlayBody    = color.NRGBA{190, 198, 215, 255}
	pillFill       = color.NRGBA{40, 80, 140, 230}
	pillHoverFill  = color.NRGBA{110, 220, 235, 245}
	pillText       = color.NRGBA{235, 240, 250, 255}
	pillHoverText  = color.NRGBA{8, 12, 28, 255}
	fallbackPlanet = color.NRGBA{106, 106, 128, 255}
)

// EventColor maps a scene event to its HUD color.
func EventColor(k scene.EventKind) uint8 {
	switch k {
	case scene.EventFocus:
		return ColorWhite
	case scene.EventFidelity:
		return ColorYellow
	case scene.EventAsset:
		return ColorRed
	default:
		return ColorCyan
	}
}
