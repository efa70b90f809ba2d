package texture

import "math"

// FBMParams controls a fractal sum of value-noise octaves.
type FBMParams struct {
	Octaves    int
	Lacunarity float64 // frequency multiplier per octave
	Gain       float64 // amplitude multiplier per octave
	Seed       uint32
}

// DefaultFBM matches the sun and placeholder generators.
var DefaultFBM = FBMParams{Octaves: 5, Lacunarity: 2, Gain: 0.5}

// hash3 maps an integer lattice point to [0, 1).
func hash3(x, y, z int32, seed uint32) float64 {
	h := uint32(x)*0x8da6b343 ^ uint32(y)*0xd8163841 ^ uint32(z)*0xcb1ab31f ^ seed*0x165667b1
	h ^= h >> 13
	h *= 0x5bd1e995
	h ^= h >> 15
	return float64(h&0xffffff) / float64(0x1000000)
}

func smoothstep(t float64) float64 { return t * t * (3 - 2*t) }

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

// Noise3 is seeded 3D value noise in [0, 1): lattice hashes blended with a
// smoothstep-weighted trilinear interpolation.
func Noise3(x, y, z float64, seed uint32) float64 {
	xf, yf, zf := math.Floor(x), math.Floor(y), math.Floor(z)
	xi, yi, zi := int32(xf), int32(yf), int32(zf)
	u := smoothstep(x - xf)
	v := smoothstep(y - yf)
	w := smoothstep(z - zf)

	c000 := hash3(xi, yi, zi, seed)
	c100 := hash3(xi+1, yi, zi, seed)
	c010 := hash3(xi, yi+1, zi, seed)
	c110 := hash3(xi+1, yi+1, zi, seed)
	c001 := hash3(xi, yi, zi+1, seed)
	c101 := hash3(xi+1, yi, zi+1, seed)
	c011 := hash3(xi, yi+1, zi+1, seed)
	c111 := hash3(xi+1, yi+1, zi+1, seed)

	x00 := lerp(c000, c100, u)
	x10 := lerp(c010, c110, u)
	x01 := lerp(c001, c101, u)
	x11 := lerp(c011, c111, u)
	return lerp(lerp(x00, x10, v), lerp(x01, x11, v), w)
}

// FBM sums p.Octaves of Noise3 and normalizes the result back to [0, 1).
func FBM(x, y, z float64, p FBMParams) float64 {
	if p.Octaves <= 0 {
		p.Octaves = DefaultFBM.Octaves
	}
	sum, norm := 0.0, 0.0
	amp, freq := 1.0, 1.0
	for o := 0; o < p.Octaves; o++ {
		// Each octave gets its own seed so lattice features do not line up.
		sum += amp * Noise3(x*freq, y*freq, z*freq, p.Seed+uint32(o)*101)
		norm += amp
		amp *= p.Gain
		freq *= p.Lacunarity
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}

// SpherePoint maps equirectangular (u, v) in [0, 1] to a point on the unit sphere.
func SpherePoint(u, v float64) (x, y, z float64) {
	phi := 2 * math.Pi * u
	theta := math.Pi * v
	st := math.Sin(theta)
	return st * math.Cos(phi), math.Cos(theta), st * math.Sin(phi)
}

// SphereFBM samples FBM on the unit sphere scaled by freq, so the result
// wraps seamlessly at u=0/1.
func SphereFBM(u, v, freq float64, p FBMParams) float64 {
	x, y, z := SpherePoint(u, v)
	return FBM(x*freq, y*freq, z*freq, p)
}
