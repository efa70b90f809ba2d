package texture

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Placeholder draws a shaded solid-color disc, used in place of a sprite
// or planet texture whose image failed to load.
func Placeholder(size int, c color.NRGBA) *image.NRGBA {
	if size < 2 {
		size = 2
	}
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	r := float64(size) / 2
	// Light from the upper left.
	lx, ly, lz := -0.45, -0.55, 0.7
	ln := math.Sqrt(lx*lx + ly*ly + lz*lz)
	lx, ly, lz = lx/ln, ly/ln, lz/ln

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := (float64(x) + 0.5 - r) / r
			dy := (float64(y) + 0.5 - r) / r
			d2 := dx*dx + dy*dy
			if d2 > 1 {
				continue
			}
			dz := math.Sqrt(1 - d2)
			shade := 0.35 + 0.65*math.Max(0, dx*lx+dy*ly+dz*lz)
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(float64(c.R) * shade),
				G: uint8(float64(c.G) * shade),
				B: uint8(float64(c.B) * shade),
				A: 255,
			})
		}
	}
	return img
}

// PlanetPlaceholder builds an equirectangular map for a body whose image
// texture is missing: a base color modulated by seeded spherical noise.
func PlanetPlaceholder(width, height int, c color.NRGBA, seed uint32) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	p := DefaultFBM
	p.Seed = seed
	for py := 0; py < height; py++ {
		v := (float64(py) + 0.5) / float64(height)
		for px := 0; px < width; px++ {
			u := (float64(px) + 0.5) / float64(width)
			n := SphereFBM(u, v, 3, p)
			k := 0.7 + 0.6*(n-0.5)
			img.SetNRGBA(px, py, color.NRGBA{
				R: scale8(c.R, k),
				G: scale8(c.G, k),
				B: scale8(c.B, k),
				A: 255,
			})
		}
	}
	return img
}

// Resize scales src to w×h with Catmull-Rom filtering.
func Resize(src image.Image, w, h int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

func scale8(v uint8, k float64) uint8 {
	f := float64(v) * k
	if f > 255 {
		return 255
	}
	if f < 0 {
		return 0
	}
	return uint8(f)
}
