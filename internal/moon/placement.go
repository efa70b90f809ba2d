package moon

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/solarfolio/solarfolio/internal/camera"
)

// Radius band for settled moons, in host radii.
const (
	MinRadiusFactor = 1.7
	MaxRadiusFactor = 2.2

	// Initial radii are drawn from [startBandFactor, MaxRadiusFactor].
	startBandFactor = 1.95

	shrinkFactor  = 0.92
	shrinkRetries = 8
	viewportPad   = 0.06 // fraction of the NDC half-extent kept clear
)

var goldenAngle = math.Pi * (3 - math.Sqrt(5))

// Placement describes where a set of moons goes around one host.
type Placement struct {
	HostPos    mgl64.Vec3
	HostRadius float64
	Front      mgl64.Vec3 // points toward where the camera will settle
	ThetaPhase float64
	Lens       camera.Lens
	Rand       *rand.Rand
}

// Offsets distributes one offset per pixel size on a hemisphere facing
// Front. Each offset is shrunk toward the floor of the radius band until the
// sprite's quad fits the viewport as seen from the predicted follow pose.
func (p Placement) Offsets(pixels []float64) []mgl64.Vec3 {
	n := len(pixels)
	if n == 0 {
		return nil
	}
	r := math.Max(p.HostRadius, 1e-6)
	fwd, right, up := frontBasis(p.Front)
	proj := camera.NewProjector(camera.PredictFinalPose(p.HostPos, r), p.Lens)

	out := make([]mgl64.Vec3, n)
	for k := range n {
		y := 1 - (float64(k)+0.5)/float64(n)
		ring := math.Sqrt(math.Max(0, 1-y*y))
		theta := float64(k)*goldenAngle + p.ThetaPhase
		dir := right.Mul(ring * math.Cos(theta)).
			Add(up.Mul(ring * math.Sin(theta))).
			Add(fwd.Mul(y)).
			Normalize()

		radius := r * MaxRadiusFactor
		if p.Rand != nil {
			radius = r * (startBandFactor + p.Rand.Float64()*(MaxRadiusFactor-startBandFactor))
		}
		out[k] = fitOffset(proj, p.HostPos, dir, radius, r*MinRadiusFactor, pixels[k])
	}
	return out
}

func fitOffset(proj camera.Projector, host, dir mgl64.Vec3, radius, floor, pixels float64) mgl64.Vec3 {
	px := math.Max(48, math.Min(512, pixels*1.15))
	for range shrinkRetries {
		if quadFits(proj, host.Add(dir.Mul(radius)), px) {
			break
		}
		next := math.Max(floor, radius*shrinkFactor)
		if next >= radius-1e-9 {
			break
		}
		radius = next
	}
	return dir.Mul(radius)
}

// quadFits projects a camera-facing square of px pixels centred on c and
// checks all four corners against the padded viewport and depth range.
func quadFits(proj camera.Projector, c mgl64.Vec3, px float64) bool {
	dist := proj.Pose.Position.Sub(c).Len()
	half := px / proj.PixelsPerUnit(dist) * 0.6
	rx := proj.Pose.Right().Mul(half)
	uy := proj.Pose.Up().Mul(half)
	lim := 1 - viewportPad
	for _, corner := range [4]mgl64.Vec3{
		c.Add(rx).Add(uy), c.Add(rx).Sub(uy), c.Sub(rx).Add(uy), c.Sub(rx).Sub(uy),
	} {
		ndc, ok := proj.Project(corner)
		if !ok {
			return false
		}
		if ndc.X() < -lim || ndc.X() > lim || ndc.Y() < -lim || ndc.Y() > lim {
			return false
		}
	}
	return true
}

// frontBasis builds an orthonormal frame around front, falling back to +Z
// for a zero vector.
func frontBasis(front mgl64.Vec3) (fwd, right, up mgl64.Vec3) {
	fwd = mgl64.Vec3{0, 0, 1}
	if front.Len() > 1e-9 {
		fwd = front.Normalize()
	}
	guess := mgl64.Vec3{0, 1, 0}
	if math.Abs(fwd.Y()) >= 0.99 {
		guess = mgl64.Vec3{1, 0, 0}
	}
	right = guess.Cross(fwd).Normalize()
	up = fwd.Cross(right).Normalize()
	return fwd, right, up
}
