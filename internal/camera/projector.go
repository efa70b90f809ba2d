package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Lens is the fixed projection setup shared by the live camera and the
// predicted poses used for moon placement.
type Lens struct {
	FOV           float64 // vertical, radians
	Near, Far     float64
	Width, Height int // viewport in pixels
}

// DefaultLens is a 45° lens on a 1280×720 viewport.
var DefaultLens = Lens{FOV: mgl64.DegToRad(45), Near: 0.1, Far: 5000, Width: 1280, Height: 720}

// Aspect returns width/height, 1 for an empty viewport.
func (l Lens) Aspect() float64 {
	if l.Height == 0 {
		return 1
	}
	return float64(l.Width) / float64(l.Height)
}

// Projector projects world points through a pose and lens.
type Projector struct {
	Pose Pose
	Lens Lens

	viewProj mgl64.Mat4
}

// NewProjector caches the view-projection matrix for pose and lens.
func NewProjector(pose Pose, lens Lens) Projector {
	fwd := pose.Forward()
	view := mgl64.LookAtV(pose.Position, pose.Position.Add(fwd), pose.Up())
	proj := mgl64.Perspective(lens.FOV, lens.Aspect(), lens.Near, lens.Far)
	return Projector{Pose: pose, Lens: lens, viewProj: proj.Mul4(view)}
}

// Project maps p to normalized device coordinates. ok is false when the
// point is behind the camera or outside the near/far range.
func (pr Projector) Project(p mgl64.Vec3) (ndc mgl64.Vec3, ok bool) {
	clip := pr.viewProj.Mul4x1(p.Vec4(1))
	w := clip.W()
	if w <= 1e-9 {
		return mgl64.Vec3{}, false
	}
	ndc = clip.Vec3().Mul(1 / w)
	return ndc, ndc.Z() >= -1 && ndc.Z() <= 1
}

// ToScreen converts NDC x/y to viewport pixels (origin top-left).
func (pr Projector) ToScreen(ndc mgl64.Vec3) (x, y float64) {
	x = (ndc.X() + 1) / 2 * float64(pr.Lens.Width)
	y = (1 - ndc.Y()) / 2 * float64(pr.Lens.Height)
	return x, y
}

// ScreenPoint projects p straight to pixels.
func (pr Projector) ScreenPoint(p mgl64.Vec3) (x, y float64, ok bool) {
	ndc, ok := pr.Project(p)
	if !ok {
		return 0, 0, false
	}
	x, y = pr.ToScreen(ndc)
	return x, y, true
}

// PixelsPerUnit returns how many vertical pixels one world unit spans at
// distance d from the camera.
func (pr Projector) PixelsPerUnit(d float64) float64 {
	d = math.Max(d, pr.Lens.Near)
	return float64(pr.Lens.Height) / (2 * math.Tan(pr.Lens.FOV/2) * d)
}

// Ray returns the world-space ray through viewport pixel (px, py).
func (pr Projector) Ray(px, py float64) (origin, dir mgl64.Vec3) {
	nx := 2*px/float64(max(pr.Lens.Width, 1)) - 1
	ny := 1 - 2*py/float64(max(pr.Lens.Height, 1))
	th := math.Tan(pr.Lens.FOV / 2)
	dir = pr.Pose.Forward().
		Add(pr.Pose.Right().Mul(nx * th * pr.Lens.Aspect())).
		Add(pr.Pose.Up().Mul(ny * th))
	return pr.Pose.Position, dir.Normalize()
}
