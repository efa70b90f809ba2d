package render

import (
	"cmp"
	"image"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/solarfolio/solarfolio/internal/camera"
	"github.com/solarfolio/solarfolio/internal/texture"
)

// Sphere tessellation per fidelity mode.
const (
	HighWidthSegments  = 64
	HighHeightSegments = 32
	LowWidthSegments   = 32
	LowHeightSegments  = 16

	ambient = 0.08
)

// Sphere is a unit UV sphere. The seam column is duplicated so u runs from
// 0 to 1 without wrapping inside a triangle.
type Sphere struct {
	Points  []mgl64.Vec3 // unit positions, also the normals
	U, V    []float64
	Indices []uint16
}

// NewSphere tessellates a unit sphere. Vertices are laid out by latitude
// row from the north pole.
func NewSphere(widthSegments, heightSegments int) *Sphere {
	widthSegments = max(widthSegments, 3)
	heightSegments = max(heightSegments, 2)
	cols := widthSegments + 1
	s := &Sphere{}
	for iy := 0; iy <= heightSegments; iy++ {
		v := float64(iy) / float64(heightSegments)
		for ix := 0; ix <= widthSegments; ix++ {
			u := float64(ix) / float64(widthSegments)
			x, y, z := texture.SpherePoint(u, v)
			s.Points = append(s.Points, mgl64.Vec3{x, y, z})
			s.U = append(s.U, u)
			s.V = append(s.V, v)
		}
	}
	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := uint16(iy*cols + ix)
			b := a + uint16(cols)
			c, d := b+1, a+1
			if iy != 0 {
				s.Indices = append(s.Indices, a, b, d)
			}
			if iy != heightSegments-1 {
				s.Indices = append(s.Indices, b, c, d)
			}
		}
	}
	return s
}

// Surface places one sphere instance in the world.
type Surface struct {
	Center   mgl64.Vec3
	Radius   float64
	Rotation mgl64.Quat
	Texture  image.Rectangle // source bounds
	UOffset  float64         // horizontal scroll in texture widths
	Alpha    float32
	Emissive bool // unlit, full brightness

	// Height, when set, pushes vertices out by Relief·Radius at its
	// brightest.
	Height *image.Gray
	Relief float64
}

// Project appends the camera-facing triangles of surf to vs and is. Screen
// coordinates are multiplied by scale to land in the render buffer. light
// is the world position of the point light.
func (s *Sphere) Project(vs []ebiten.Vertex, is []uint16, proj camera.Projector, scale float64, surf Surface, light mgl64.Vec3) ([]ebiten.Vertex, []uint16) {
	base := len(vs)
	n := len(s.Points)
	if base+n > math.MaxUint16 {
		return vs, is
	}
	world := make([]mgl64.Vec3, n)
	onScreen := make([]bool, n)
	tw, th := float64(surf.Texture.Dx()), float64(surf.Texture.Dy())
	ox, oy := float64(surf.Texture.Min.X), float64(surf.Texture.Min.Y)

	for i, p := range s.Points {
		normal := surf.Rotation.Rotate(p)
		r := surf.Radius
		if surf.Height != nil && surf.Relief > 0 {
			r *= 1 + surf.Relief*sampleHeight(surf.Height, s.U[i], s.V[i])
		}
		wp := surf.Center.Add(normal.Mul(r))
		world[i] = wp
		sx, sy, ok := proj.ScreenPoint(wp)
		onScreen[i] = ok

		shade := 1.0
		if !surf.Emissive {
			shade = lambert(normal, light.Sub(wp))
		}
		vs = append(vs, ebiten.Vertex{
			DstX:   float32(sx * scale),
			DstY:   float32(sy * scale),
			SrcX:   float32(ox + (s.U[i]+surf.UOffset)*tw),
			SrcY:   float32(oy + s.V[i]*th),
			ColorR: float32(shade),
			ColorG: float32(shade),
			ColorB: float32(shade),
			ColorA: surf.Alpha,
		})
	}

	eye := proj.Pose.Position
	for t := 0; t+2 < len(s.Indices); t += 3 {
		a, b, c := s.Indices[t], s.Indices[t+1], s.Indices[t+2]
		if !onScreen[a] || !onScreen[b] || !onScreen[c] {
			continue
		}
		if !facesCamera(world[a], world[b], world[c], surf.Center, eye) {
			continue
		}
		is = append(is, uint16(base)+a, uint16(base)+b, uint16(base)+c)
	}
	return vs, is
}

// facesCamera reports whether the triangle's outward side is toward eye.
func facesCamera(a, b, c, center, eye mgl64.Vec3) bool {
	mid := a.Add(b).Add(c).Mul(1.0 / 3)
	return mid.Sub(center).Dot(eye.Sub(mid)) > 0
}

// lambert is the diffuse term for a unit normal lit from toLight, with a
// small ambient floor so night sides stay readable.
func lambert(normal, toLight mgl64.Vec3) float64 {
	if toLight.Len() < 1e-9 {
		return 1
	}
	d := math.Max(0, normal.Dot(toLight.Normalize()))
	return ambient + (1-ambient)*d
}

func sampleHeight(h *image.Gray, u, v float64) float64 {
	b := h.Bounds()
	if b.Empty() {
		return 0
	}
	x := b.Min.X + min(b.Dx()-1, int(u*float64(b.Dx())))
	y := b.Min.Y + min(b.Dy()-1, int(v*float64(b.Dy())))
	return float64(h.GrayAt(x, y).Y) / 255
}

// Billboard appends a camera-facing quad of world size edge centered at c.
// ok is false when any corner is behind the camera.
func Billboard(vs []ebiten.Vertex, is []uint16, proj camera.Projector, scale float64, c mgl64.Vec3, edge float64, src image.Rectangle, alpha float32) ([]ebiten.Vertex, []uint16, bool) {
	half := edge / 2
	right := proj.Pose.Right().Mul(half)
	up := proj.Pose.Up().Mul(half)
	corners := [4]mgl64.Vec3{
		c.Sub(right).Add(up),
		c.Add(right).Add(up),
		c.Add(right).Sub(up),
		c.Sub(right).Sub(up),
	}
	uv := [4][2]int{
		{src.Min.X, src.Min.Y},
		{src.Max.X, src.Min.Y},
		{src.Max.X, src.Max.Y},
		{src.Min.X, src.Max.Y},
	}
	base := uint16(len(vs))
	quad := make([]ebiten.Vertex, 0, 4)
	for i, p := range corners {
		sx, sy, ok := proj.ScreenPoint(p)
		if !ok {
			return vs, is, false
		}
		quad = append(quad, ebiten.Vertex{
			DstX:   float32(sx * scale),
			DstY:   float32(sy * scale),
			SrcX:   float32(uv[i][0]),
			SrcY:   float32(uv[i][1]),
			ColorR: 1, ColorG: 1, ColorB: 1, ColorA: alpha,
		})
	}
	vs = append(vs, quad...)
	is = append(is, base, base+1, base+2, base, base+2, base+3)
	return vs, is, true
}

// DrawKind tags an entry in the painter's list.
type DrawKind uint8

const (
	DrawSun DrawKind = iota
	DrawBody
	DrawSprite
)

// Drawable is one item in the painter's list.
type Drawable struct {
	Kind  DrawKind
	Set   int // moon set, for sprites
	Index int // body index, or sprite index within the set
	Dist  float64
}

// SortBackToFront orders items farthest first. Ties keep their input
// order.
func SortBackToFront(items []Drawable) {
	slices.SortStableFunc(items, func(a, b Drawable) int {
		return cmp.Compare(b.Dist, a.Dist)
	})
}
