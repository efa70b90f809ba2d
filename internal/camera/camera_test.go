package camera

import (
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/solarfolio/solarfolio/internal/tween"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestLookAtFacesTarget(t *testing.T) {
	cases := []struct{ eye, target mgl64.Vec3 }{
		{mgl64.Vec3{0, 0, 10}, mgl64.Vec3{0, 0, 0}},
		{mgl64.Vec3{5, 3, -2}, mgl64.Vec3{-1, 0, 4}},
		{mgl64.Vec3{0, 10, 0}, mgl64.Vec3{0, 0, 0}}, // straight down
		{mgl64.Vec3{0, -4, 0}, mgl64.Vec3{0, 0, 0}}, // straight up
	}
	for _, c := range cases {
		p := NewPose(c.eye, c.target)
		want := c.target.Sub(c.eye).Normalize()
		if got := p.Forward(); !vecNear(got, want, 1e-9) {
			t.Fatalf("eye %v: forward = %v, want %v", c.eye, got, want)
		}
		if u := p.Up(); math.Abs(u.Dot(want)) > 1e-9 {
			t.Fatalf("eye %v: up %v not orthogonal to forward", c.eye, u)
		}
	}
}

func TestLookAtDegenerate(t *testing.T) {
	q := LookAt(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{1, 2, 3})
	if q != mgl64.QuatIdent() {
		t.Fatalf("coincident eye/target = %v, want identity", q)
	}
}

func TestProjectCenterAndBehind(t *testing.T) {
	pr := NewProjector(NewPose(mgl64.Vec3{0, 0, 50}, mgl64.Vec3{}), DefaultLens)
	ndc, ok := pr.Project(mgl64.Vec3{})
	if !ok || math.Abs(ndc.X()) > 1e-9 || math.Abs(ndc.Y()) > 1e-9 {
		t.Fatalf("target projects to %v ok=%v, want center", ndc, ok)
	}
	x, y := pr.ToScreen(ndc)
	if !scalar.EqualWithinAbs(x, 640, 1e-6) || !scalar.EqualWithinAbs(y, 360, 1e-6) {
		t.Fatalf("screen = (%v,%v), want (640,360)", x, y)
	}
	if _, ok := pr.Project(mgl64.Vec3{0, 0, 80}); ok {
		t.Fatalf("point behind the camera reported visible")
	}
	// Up in world is up on screen.
	if _, sy, _ := pr.ScreenPoint(mgl64.Vec3{0, 5, 0}); sy >= 360 {
		t.Fatalf("world +Y drew at y=%v, want above center", sy)
	}
}

func TestRayThroughCenterHitsTarget(t *testing.T) {
	pose := NewPose(mgl64.Vec3{3, 4, 20}, mgl64.Vec3{1, 0, -2})
	pr := NewProjector(pose, DefaultLens)
	o, d := pr.Ray(640, 360)
	want := pose.Target.Sub(pose.Position).Normalize()
	if o != pose.Position || !vecNear(d, want, 1e-9) {
		t.Fatalf("ray = %v %v, want dir %v", o, d, want)
	}
	// A ray through a projected point passes through it.
	p := mgl64.Vec3{2, 1, 0}
	sx, sy, ok := pr.ScreenPoint(p)
	if !ok {
		t.Fatal("point not visible")
	}
	_, d = pr.Ray(sx, sy)
	toP := p.Sub(pose.Position).Normalize()
	if !vecNear(d, toP, 1e-6) {
		t.Fatalf("ray %v misses projected point dir %v", d, toP)
	}
}

func TestFollowOffsetClamps(t *testing.T) {
	small := FollowOffset(0.5)
	if small.Y() != minFollowHeight || small.Z() != minFollowDepth {
		t.Fatalf("small offset = %v", small)
	}
	huge := FollowOffset(1000)
	if huge.Y() != maxFollowHeight || huge.Z() != maxFollowDepth {
		t.Fatalf("huge offset = %v", huge)
	}
	mid := FollowOffset(10)
	if !scalar.EqualWithinAbs(mid.Y(), 15, 1e-9) || !scalar.EqualWithinAbs(mid.Z(), 50, 1e-9) {
		t.Fatalf("mid offset = %v", mid)
	}
}

type recordingControls struct {
	enabled, damping bool
}

func (r *recordingControls) SetEnabled(on bool) { r.enabled = on }
func (r *recordingControls) Enabled() bool      { return r.enabled }
func (r *recordingControls) SetDamping(on bool) { r.damping = on }
func (r *recordingControls) Damping() bool      { return r.damping }

func TestFlyToReachesMovingTarget(t *testing.T) {
	sched := tween.NewScheduler()
	ctl := &recordingControls{enabled: true, damping: true}
	c := NewController(OverviewPose(), sched, ctl)

	host := mgl64.Vec3{100, 0, 0}
	doneCalls := 0
	c.FlyTo(
		func() mgl64.Vec3 { return host.Add(FollowOffset(4)) },
		func() mgl64.Vec3 { return host },
		time.Second,
		func() { doneCalls++ },
	)
	if c.Mode() != ModeTween || ctl.enabled {
		t.Fatalf("mode=%v enabled=%v during flight", c.Mode(), ctl.enabled)
	}
	for i := 0; i < 60; i++ {
		host = host.Add(mgl64.Vec3{0, 0, 0.5}) // the subject drifts
		sched.Advance(time.Second / 60)
		if p := c.Pose().Position; math.IsNaN(p.X()) {
			t.Fatalf("NaN pose at step %d", i)
		}
	}
	sched.Advance(10 * time.Millisecond)
	if doneCalls != 1 || c.Mode() != ModeIdle || !ctl.enabled {
		t.Fatalf("done=%d mode=%v enabled=%v", doneCalls, c.Mode(), ctl.enabled)
	}
	want := host.Add(FollowOffset(4))
	if !vecNear(c.Pose().Position, want, 1e-6) {
		t.Fatalf("landed at %v, want %v", c.Pose().Position, want)
	}
	fwd := c.Pose().Forward()
	if !vecNear(fwd, host.Sub(want).Normalize(), 1e-6) {
		t.Fatalf("not looking at the host after landing: %v", fwd)
	}
}

func TestFollowExponentialDecay(t *testing.T) {
	sched := tween.NewScheduler()
	ctl := &recordingControls{enabled: true, damping: true}
	start := NewPose(mgl64.Vec3{0, 0, 100}, mgl64.Vec3{})
	c := NewController(start, sched, ctl)

	host := mgl64.Vec3{10, 0, 0}
	off := mgl64.Vec3{0, 5, 20}
	c.Follow(3, func() mgl64.Vec3 { return host }, off)
	if ctl.damping || c.FollowID() != 3 {
		t.Fatalf("damping=%v id=%d after Follow", ctl.damping, c.FollowID())
	}

	const dt = 0.1
	c.Update(dt)
	k := 1 - math.Exp(-FollowDecay*dt)
	goal := host.Add(off)
	want := start.Position.Add(goal.Sub(start.Position).Mul(k))
	if !vecNear(c.Pose().Position, want, 1e-9) {
		t.Fatalf("after one step = %v, want %v", c.Pose().Position, want)
	}
	for i := 0; i < 200; i++ {
		c.Update(dt)
	}
	if !vecNear(c.Pose().Position, goal, 1e-6) {
		t.Fatalf("did not converge: %v", c.Pose().Position)
	}

	c.StopFollow()
	if !ctl.damping || c.Mode() != ModeIdle || c.FollowID() != NoFollow {
		t.Fatalf("damping=%v mode=%v id=%d after StopFollow", ctl.damping, c.Mode(), c.FollowID())
	}
}

func TestFollowDuringFlightDoesNotSnap(t *testing.T) {
	sched := tween.NewScheduler()
	c := NewController(OverviewPose(), sched, NewManualControls())
	dest := mgl64.Vec3{50, 10, 50}
	c.FlyTo(func() mgl64.Vec3 { return dest }, func() mgl64.Vec3 { return mgl64.Vec3{} }, time.Second, nil)
	sched.Advance(300 * time.Millisecond)
	mid := c.Pose().Position

	c.Follow(1, func() mgl64.Vec3 { return mgl64.Vec3{} }, mgl64.Vec3{0, 4, 18})
	if c.Pose().Position != mid {
		t.Fatalf("switching to follow moved the camera")
	}
	if sched.Active(flightKey) {
		t.Fatalf("flight still running after Follow")
	}
	if !c.Controls().Enabled() {
		t.Fatalf("controls left disabled")
	}
}

func TestManualControlsOrbitKeepsDistance(t *testing.T) {
	m := NewManualControls()
	m.SetDamping(false)
	off := mgl64.Vec3{0, 0, 30}
	m.Drag(40, -10)
	got := m.Apply(off, 1.0/60)
	if !scalar.EqualWithinAbs(got.Len(), 30, 1e-9) {
		t.Fatalf("orbit changed distance: %v", got.Len())
	}
	if vecNear(got, off, 1e-6) {
		t.Fatalf("drag did not rotate the offset")
	}
	if again := m.Apply(got, 1.0/60); !vecNear(again, got, 1e-9) {
		t.Fatalf("undamped drag applied twice")
	}

	m.SetEnabled(false)
	m.Drag(100, 100)
	if m.Apply(got, 1) != got {
		t.Fatalf("disabled controls moved the camera")
	}
}

func TestManualControlsLeaveOverheadPoseSmoothly(t *testing.T) {
	m := NewManualControls()
	m.SetDamping(false)
	off := OverviewPose().Position.Sub(OverviewPose().Target) // straight above

	m.Drag(0, -4) // tilt 0.02 rad off the pole
	got := m.Apply(off, 1.0/60)
	horiz := math.Hypot(got.X(), got.Z())
	if want := off.Len() * math.Sin(4*dragRadiansPerPixel); !scalar.EqualWithinAbs(horiz, want, 1e-6) {
		t.Fatalf("horizontal offset = %v, want %v (no jump to the elevation limit)", horiz, want)
	}

	m.Drag(40, 0) // azimuth only
	if again := m.Apply(off, 1.0/60); !vecNear(again, off, 1e-6) {
		t.Fatalf("azimuth drag at the pole moved the camera to %v", again)
	}

	m.Drag(0, 20) // further over the pole is refused
	if again := m.Apply(off, 1.0/60); !vecNear(again, off, 1e-6) {
		t.Fatalf("drag past the pole moved the camera to %v", again)
	}
}

// vecNear compares component-wise with an absolute tolerance.
func vecNear(a, b mgl64.Vec3, tol float64) bool {
	for i := range a {
		if !scalar.EqualWithinAbs(a[i], b[i], tol) {
			return false
		}
	}
	return true
}
