package pointer

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/solarfolio/solarfolio/internal/camera"
	"github.com/solarfolio/solarfolio/internal/moon"
)

// Rect is an axis-aligned screen rectangle in viewport pixels.
type Rect struct {
	Left, Top, Width, Height float64
}

// Contains reports whether (x, y) lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.Left && x <= r.Left+r.Width && y >= r.Top && y <= r.Top+r.Height
}

// ScreenRect is the on-screen square a sprite at world position c covers,
// measured by projecting its half extents along the camera basis.
func ScreenRect(proj camera.Projector, c mgl64.Vec3, sp *moon.Sprite) (Rect, bool) {
	half := sp.WorldSize(proj, c) / 2
	cx, cy, ok := proj.ScreenPoint(c)
	if !ok {
		return Rect{}, false
	}
	rx, _, okR := proj.ScreenPoint(c.Add(proj.Pose.Right().Mul(half)))
	_, uy, okU := proj.ScreenPoint(c.Add(proj.Pose.Up().Mul(half)))
	if !okR || !okU {
		return Rect{}, false
	}
	hw, hh := math.Abs(rx-cx), math.Abs(uy-cy)
	return Rect{Left: cx - hw, Top: cy - hh, Width: hw * 2, Height: hh * 2}, true
}

// CanvasPoint maps viewport pixel (x, y) into the overlay canvas of a
// sprite drawn in rect. ok is false outside the rect.
func CanvasPoint(rect Rect, size int, x, y float64) (cx, cy float64, ok bool) {
	if !rect.Contains(x, y) {
		return 0, 0, false
	}
	u := (x - rect.Left) / math.Max(1, rect.Width)
	v := (y - rect.Top) / math.Max(1, rect.Height)
	return u * float64(size), v * float64(size), true
}

func hotspotUnder(proj camera.Projector, c mgl64.Vec3, sp *moon.Sprite, x, y float64) int {
	if sp.Overlay == nil {
		return -1
	}
	rect, ok := ScreenRect(proj, c, sp)
	if !ok {
		return -1
	}
	cx, cy, ok := CanvasPoint(rect, sp.Overlay.Size, x, y)
	if !ok {
		return -1
	}
	return sp.Overlay.HotspotAt(cx, cy)
}
