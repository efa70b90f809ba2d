package camera

import "github.com/go-gl/mathgl/mgl64"

// Follow offset clamps, in world units. Small bodies get a closer camera.
const (
	minFollowHeight = 4.0
	maxFollowHeight = 24.0
	minFollowDepth  = 18.0
	maxFollowDepth  = 110.0

	followHeightPerRadius = 1.5
	followDepthPerRadius  = 5.0
)

// FollowOffset returns the camera offset from a host body of the given radius.
func FollowOffset(radius float64) mgl64.Vec3 {
	return mgl64.Vec3{
		0,
		clamp(radius*followHeightPerRadius, minFollowHeight, maxFollowHeight),
		clamp(radius*followDepthPerRadius, minFollowDepth, maxFollowDepth),
	}
}

// PredictFinalPose is where the camera settles once it follows a host at
// hostPos. It does not touch any live camera, so placement code can use it
// while a flight is still in progress.
func PredictFinalPose(hostPos mgl64.Vec3, hostRadius float64) Pose {
	return NewPose(hostPos.Add(FollowOffset(hostRadius)), hostPos)
}

// Overview pose: high above the ecliptic, looking at the sun.
var (
	overviewPosition = mgl64.Vec3{0, 800, 0}
	overviewTarget   = mgl64.Vec3{0, 0, 0}
)

// OverviewPose returns the fixed overhead pose.
func OverviewPose() Pose {
	return NewPose(overviewPosition, overviewTarget)
}
