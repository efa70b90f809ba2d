package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Pose is a camera position, the point it looks at, and its orientation.
// The camera looks down its local -Z with +Y up.
type Pose struct {
	Position    mgl64.Vec3
	Target      mgl64.Vec3
	Orientation mgl64.Quat
}

var (
	worldUp  = mgl64.Vec3{0, 1, 0}
	localFwd = mgl64.Vec3{0, 0, -1}
)

// minDirection is the shortest eye→target vector LookAt trusts.
const minDirection = 1e-9

// LookAt returns the orientation of a camera at eye looking toward center.
// Degenerate inputs fall back to the identity orientation or an alternate
// up axis instead of producing NaNs.
func LookAt(eye, center mgl64.Vec3) mgl64.Quat {
	f := center.Sub(eye)
	if f.Len() < minDirection {
		return mgl64.QuatIdent()
	}
	f = f.Normalize()
	r := f.Cross(worldUp)
	if r.Len() < 1e-6 {
		// Looking straight up or down.
		r = f.Cross(mgl64.Vec3{0, 0, -1})
	}
	r = r.Normalize()
	u := r.Cross(f)
	m := mgl64.Mat3FromCols(r, u, f.Mul(-1))
	return mgl64.Mat4ToQuat(m.Mat4()).Normalize()
}

// NewPose builds a pose at pos oriented toward target.
func NewPose(pos, target mgl64.Vec3) Pose {
	return Pose{Position: pos, Target: target, Orientation: LookAt(pos, target)}
}

// Forward is the unit view direction.
func (p Pose) Forward() mgl64.Vec3 { return p.Orientation.Rotate(localFwd) }

// Up is the camera's unit up vector.
func (p Pose) Up() mgl64.Vec3 { return p.Orientation.Rotate(worldUp) }

// Right is the camera's unit right vector.
func (p Pose) Right() mgl64.Vec3 { return p.Orientation.Rotate(mgl64.Vec3{1, 0, 0}) }

// Slerp interpolates orientation along the shorter arc.
func Slerp(a, b mgl64.Quat, t float64) mgl64.Quat {
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl64.QuatSlerp(a, b, t)
}

// LerpVec interpolates two vectors.
func LerpVec(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
