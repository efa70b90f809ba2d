package texture

import (
	"image"
	"image/color"
	"math"
)

// minNormalZ keeps near-horizontal normals from producing huge gradients.
const minNormalZ = 1e-3

// HeightFromNormal approximates a height map from a tangent-space normal
// map. Per-pixel slopes (nx/nz, ny/nz)·strength are integrated along each
// row and along each column independently, the two integrals are averaged,
// and the result is normalized to [0, 255]. Path order matters; this is good
// enough for bump mapping, not a Poisson solve.
func HeightFromNormal(normal image.Image, strength float64) *image.Gray {
	b := normal.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}

	gx := make([]float64, w*h)
	gy := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := normal.At(b.Min.X+x, b.Min.Y+y).RGBA()
			nx := float64(r)/0xffff*2 - 1
			ny := float64(g)/0xffff*2 - 1
			nz := float64(bl)/0xffff*2 - 1
			if nz < minNormalZ {
				nz = minNormalZ
			}
			gx[y*w+x] = nx / nz * strength
			gy[y*w+x] = ny / nz * strength
		}
	}

	rows := make([]float64, w*h)
	for y := 0; y < h; y++ {
		acc := 0.0
		for x := 0; x < w; x++ {
			acc += gx[y*w+x]
			rows[y*w+x] = acc
		}
	}
	cols := make([]float64, w*h)
	for x := 0; x < w; x++ {
		acc := 0.0
		for y := 0; y < h; y++ {
			// Image y grows downward while tangent-space y points up.
			acc -= gy[y*w+x]
			cols[y*w+x] = acc
		}
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	hgt := rows // reuse
	for i := range hgt {
		hgt[i] = (rows[i] + cols[i]) / 2
		lo = math.Min(lo, hgt[i])
		hi = math.Max(hi, hgt[i])
	}
	span := hi - lo
	for i, v := range hgt {
		g := uint8(128)
		if span > 1e-12 {
			g = uint8(math.Round((v - lo) / span * 255))
		}
		out.SetGray(i%w, i/w, color.Gray{Y: g})
	}
	return out
}

// Emboss shades surface with the slope of height so relief reads under a
// fixed light from the west. strength 0 returns a plain copy.
func Emboss(surface image.Image, height *image.Gray, strength float64) *image.NRGBA {
	b := surface.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	hb := height.Bounds()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(surface.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			k := 1.0
			if strength > 0 && hb.Dx() > 1 && hb.Dy() > 0 {
				hx := hb.Min.X + x*hb.Dx()/max(w, 1)
				hy := hb.Min.Y + y*hb.Dy()/max(h, 1)
				l := height.GrayAt(max(hb.Min.X, hx-1), hy).Y
				r := height.GrayAt(min(hb.Max.X-1, hx+1), hy).Y
				k = 1 + strength*(float64(r)-float64(l))/255*2
			}
			out.SetNRGBA(x, y, color.NRGBA{R: scale8(c.R, k), G: scale8(c.G, k), B: scale8(c.B, k), A: c.A})
		}
	}
	return out
}
