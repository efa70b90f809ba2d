package camera

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/solarfolio/solarfolio/internal/tween"
)

// Mode says what is driving the camera.
type Mode uint8

const (
	ModeIdle   Mode = iota // user controls only
	ModeTween              // timed flight
	ModeFollow             // exponential tracking of a body
)

func (m Mode) String() string {
	switch m {
	case ModeTween:
		return "tween"
	case ModeFollow:
		return "follow"
	default:
		return "idle"
	}
}

// FollowDecay is the follow-mode smoothing rate λ in 1/s.
const FollowDecay = 6.0

const flightKey = "camera.flight"

// NoFollow is the follow ID when nothing is being tracked.
const NoFollow = -1

// offsetApplier is implemented by controls that can rotate the camera.
type offsetApplier interface {
	Apply(offset mgl64.Vec3, dt float64) mgl64.Vec3
}

// Controller owns the camera pose. Flights and follow tracking are mutually
// exclusive, and every switch starts from the current pose so nothing snaps.
type Controller struct {
	pose     Pose
	mode     Mode
	sched    *tween.Scheduler
	controls OrbitControls

	followID     int
	followHost   func() mgl64.Vec3
	followOffset mgl64.Vec3
}

// NewController starts idle at pose. Flights run on sched; controls may be nil.
func NewController(pose Pose, sched *tween.Scheduler, controls OrbitControls) *Controller {
	return &Controller{pose: pose, sched: sched, controls: controls, followID: NoFollow}
}

// Pose returns the current pose.
func (c *Controller) Pose() Pose { return c.pose }

// SetPose jumps to p and drops any flight or follow.
func (c *Controller) SetPose(p Pose) {
	c.sched.Cancel(flightKey)
	c.leaveFollow()
	c.mode = ModeIdle
	c.setControlsEnabled(true)
	c.pose = p
}

// Mode returns the active mode.
func (c *Controller) Mode() Mode { return c.mode }

// FollowID returns the tracked body, or NoFollow.
func (c *Controller) FollowID() int { return c.followID }

// Controls returns the attached orbit controls, possibly nil.
func (c *Controller) Controls() OrbitControls { return c.controls }

// FlyTo moves the camera to dest() looking at target() over d. Both are
// re-evaluated every step so moving subjects stay framed; orientation slerps
// from the captured start toward a fresh look-at of the live target. User
// controls are off until the flight lands, then done runs.
func (c *Controller) FlyTo(dest, target func() mgl64.Vec3, d time.Duration, done func()) {
	c.leaveFollow()
	start := c.pose
	c.mode = ModeTween
	c.setControlsEnabled(false)

	c.sched.Start(&tween.Task{
		Key:      flightKey,
		From:     0,
		To:       1,
		Duration: d,
		Ease:     tween.EaseInOutCubic,
		OnUpdate: func(p float64) {
			live := target()
			pos := LerpVec(start.Position, dest(), p)
			c.pose = Pose{
				Position:    pos,
				Target:      LerpVec(start.Target, live, p),
				Orientation: Slerp(start.Orientation, LookAt(pos, live), p),
			}
		},
		OnComplete: func() {
			c.mode = ModeIdle
			c.setControlsEnabled(true)
			if done != nil {
				done()
			}
		},
	})
}

// Follow tracks host()+offset with exponential smoothing. Any running
// flight is dropped at its current pose; control damping is suspended
// while following.
func (c *Controller) Follow(id int, host func() mgl64.Vec3, offset mgl64.Vec3) {
	if c.mode == ModeTween {
		c.sched.Cancel(flightKey)
		c.setControlsEnabled(true)
	}
	c.leaveFollow()
	c.mode = ModeFollow
	c.followID = id
	c.followHost = host
	c.followOffset = offset
	if c.controls != nil {
		c.controls.SetDamping(false)
	}
}

// StopFollow returns to idle, restoring control damping.
func (c *Controller) StopFollow() {
	c.leaveFollow()
}

// Update advances follow smoothing and user input by dt seconds. Flights
// are advanced by the scheduler, not here.
func (c *Controller) Update(dt float64) {
	switch c.mode {
	case ModeFollow:
		if ap, ok := c.controls.(offsetApplier); ok {
			c.followOffset = ap.Apply(c.followOffset, dt)
		}
		host := c.followHost()
		k := 1 - math.Exp(-FollowDecay*dt)
		goal := host.Add(c.followOffset)
		c.pose.Position = c.pose.Position.Add(goal.Sub(c.pose.Position).Mul(k))
		c.pose.Target = c.pose.Target.Add(host.Sub(c.pose.Target).Mul(k))
		c.pose.Orientation = LookAt(c.pose.Position, c.pose.Target)
	case ModeIdle:
		if ap, ok := c.controls.(offsetApplier); ok {
			off := ap.Apply(c.pose.Position.Sub(c.pose.Target), dt)
			c.pose.Position = c.pose.Target.Add(off)
			c.pose.Orientation = LookAt(c.pose.Position, c.pose.Target)
		}
	}
}

func (c *Controller) leaveFollow() {
	if c.mode != ModeFollow {
		return
	}
	c.mode = ModeIdle
	c.followID = NoFollow
	c.followHost = nil
	if c.controls != nil {
		c.controls.SetDamping(true)
	}
}

func (c *Controller) setControlsEnabled(on bool) {
	if c.controls != nil {
		c.controls.SetEnabled(on)
	}
}
