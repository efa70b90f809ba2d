package texture

import (
	"image"
	"image/color"
)

// Cloud cover shaping: noise below cloudFloor is clear sky, coverage ramps
// to opaque over cloudRamp.
const (
	cloudFloor = 0.48
	cloudRamp  = 0.22
	cloudFreq  = 4.0
)

// Clouds builds an equirectangular cloud shell: white, with alpha from
// thresholded spherical noise so the layer wraps at the seam.
func Clouds(width, height int, seed uint32) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	p := DefaultFBM
	p.Seed = seed ^ 0x85ebca6b
	for py := 0; py < height; py++ {
		v := (float64(py) + 0.5) / float64(height)
		for px := 0; px < width; px++ {
			u := (float64(px) + 0.5) / float64(width)
			n := SphereFBM(u, v, cloudFreq, p)
			a := smoothstep(clamp01((n - cloudFloor) / cloudRamp))
			img.SetNRGBA(px, py, color.NRGBA{R: 255, G: 255, B: 255, A: uint8(a * 235)})
		}
	}
	return img
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
