package texture

import (
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Sun gradient stops: dark red → orange → pale yellow.
var sunStops = [3]colorful.Color{
	{R: 0.45, G: 0.05, B: 0.01},
	{R: 1.00, G: 0.50, B: 0.08},
	{R: 1.00, G: 0.95, B: 0.70},
}

// SunGradient maps t in [0, 1] through the three sun color stops using
// linear RGB channel interpolation.
func SunGradient(t float64) color.NRGBA {
	t = math.Max(0, math.Min(1, t))
	var c colorful.Color
	if t < 0.5 {
		c = sunStops[0].BlendRgb(sunStops[1], t*2)
	} else {
		c = sunStops[1].BlendRgb(sunStops[2], (t-0.5)*2)
	}
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// Sun synthesizes an equirectangular emissive map for the sun. The second
// fractal layer is sampled at coordinates pushed around by the first, a
// cheap domain warp that gives the surface its churned look.
func Sun(width, height int, seed uint32) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	base := DefaultFBM
	base.Seed = seed
	warp := DefaultFBM
	warp.Seed = seed ^ 0x9e3779b9

	const (
		baseFreq = 2.5
		warpFreq = 4.0
		warpAmp  = 1.6
	)

	for py := 0; py < height; py++ {
		v := (float64(py) + 0.5) / float64(height)
		for px := 0; px < width; px++ {
			u := (float64(px) + 0.5) / float64(width)
			x, y, z := SpherePoint(u, v)

			n1 := FBM(x*baseFreq, y*baseFreq, z*baseFreq, base)
			d := (n1 - 0.5) * warpAmp
			n2 := FBM((x+d)*warpFreq, (y+d)*warpFreq, (z-d)*warpFreq, warp)

			t := 0.55*n1 + 0.45*n2
			// Stretch the narrow FBM range so all three stops show up.
			t = (t - 0.3) / 0.4
			img.SetNRGBA(px, py, SunGradient(t))
		}
	}
	return img
}
