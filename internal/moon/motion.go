package moon

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/solarfolio/solarfolio/internal/camera"
	"github.com/solarfolio/solarfolio/internal/orbit"
	"github.com/solarfolio/solarfolio/internal/tween"
)

// Timing holds the entry animation durations.
type Timing struct {
	Orbit  time.Duration // one full revolution
	Settle time.Duration
	Fade   time.Duration
}

// DefaultTiming is the production choreography.
var DefaultTiming = Timing{
	Orbit:  800 * time.Millisecond,
	Settle: 600 * time.Millisecond,
	Fade:   300 * time.Millisecond,
}

// DefaultPixels is the on-screen moon size after the camera settles.
const DefaultPixels = 128

const minPhase = time.Millisecond

// Set is the group of moons around one host. Only one of its sprites
// settles at a time; the rest keep circling until admitted in descending
// target-angle order.
type Set struct {
	Name    string
	Host    int // body index
	Front   mgl64.Vec3
	Pixels  float64
	Sprites []*Sprite
	Timing  Timing

	sched *tween.Scheduler
	rng   *rand.Rand

	order    []int
	cursor   int
	settling int
	shown    bool
}

// NewSet wires sprites to the tween scheduler that runs their fades. rng
// jitters placement radii; nil places every moon at the outer band.
func NewSet(name string, host int, sprites []*Sprite, sched *tween.Scheduler, rng *rand.Rand) *Set {
	return &Set{
		Name:     name,
		Host:     host,
		Front:    mgl64.Vec3{0, 0, 1},
		Pixels:   DefaultPixels,
		Sprites:  sprites,
		Timing:   DefaultTiming,
		sched:    sched,
		rng:      rng,
		settling: -1,
	}
}

// Shown reports whether the set was last shown rather than hidden.
func (s *Set) Shown() bool { return s.shown }

// AllReady reports whether every sprite's face texture has resolved.
func (s *Set) AllReady() bool {
	for _, sp := range s.Sprites {
		if !sp.Ready {
			return false
		}
	}
	return len(s.Sprites) > 0
}

// Settling returns the index of the sprite holding the settle slot, or -1.
func (s *Set) Settling() int { return s.settling }

// Animating reports whether any sprite still has motion state.
func (s *Set) Animating() bool {
	for _, sp := range s.Sprites {
		if sp.Anim != nil {
			return true
		}
	}
	return false
}

// Place recomputes every sprite's target offset.
func (s *Set) Place(hostPos mgl64.Vec3, hostRadius float64, lens camera.Lens) {
	px := make([]float64, len(s.Sprites))
	for i, sp := range s.Sprites {
		px[i] = s.Pixels
		if px[i] <= 0 {
			px[i] = sp.BasePixels
		}
	}
	offs := Placement{
		HostPos:    hostPos,
		HostRadius: hostRadius,
		Front:      s.Front,
		Lens:       lens,
		Rand:       s.rng,
	}.Offsets(px)
	for i, sp := range s.Sprites {
		sp.Offset = offs[i]
	}
}

// Show places and sizes the set against the predicted follow pose for the
// host, then starts the entry animation.
func (s *Set) Show(now time.Time, hostPos mgl64.Vec3, hostRadius float64, lens camera.Lens) {
	s.Place(hostPos, hostRadius, lens)
	LockSize(s.Sprites, hostPos, hostRadius, s.Pixels, lens)
	for _, sp := range s.Sprites {
		s.sched.Cancel(s.fadeKey(sp))
		sp.Visible = true
		sp.frozen = false
		sp.fadeStarted = false
		sp.Opacity = 0
		sp.Hovered = false
		if sp.Overlay != nil {
			sp.Overlay.Opacity = 0
			sp.Overlay.SetHover(-1)
		}
	}
	s.shown = true
	s.startEntry(now, hostRadius)
}

// Hide cancels in-flight motion, freezes every sprite where it is and
// fades it out before marking it invisible.
func (s *Set) Hide() {
	for _, sp := range s.Sprites {
		sp.Anim = nil
		sp.frozen = true
		sp.fadeStarted = false
		sp.Hovered = false
		if sp.Overlay != nil {
			sp.Overlay.Opacity = 0
		}
		s.fade(sp, 0, func() { sp.Visible = false })
	}
	s.shown = false
	s.settling = -1
	s.cursor = len(s.order)
}

func (s *Set) fadeKey(sp *Sprite) string {
	return fmt.Sprintf("moon.%s.%d.fade", s.Name, sp.ID)
}

func (s *Set) fade(sp *Sprite, to float64, done func()) {
	s.sched.Start(&tween.Task{
		Key:        s.fadeKey(sp),
		From:       sp.Opacity,
		To:         to,
		Duration:   s.Timing.Fade,
		OnUpdate:   func(v float64) { sp.Opacity = v },
		OnComplete: done,
	})
}

func (s *Set) startEntry(now time.Time, hostRadius float64) {
	orbitDur := max(s.Timing.Orbit, minPhase)
	settleDur := max(s.Timing.Settle, minPhase)

	startDir := mgl64.Vec3{-1, 0, 0}
	if planar := (mgl64.Vec3{s.Front.X(), 0, s.Front.Z()}); planar.Len() > 1e-3 {
		startDir = planar.Normalize().Mul(-1)
	}
	startAngle := math.Atan2(startDir.Z(), startDir.X())
	startR := hostRadius * MaxRadiusFactor

	n := len(s.Sprites)
	type ranked struct {
		i   int
		ang float64
	}
	rank := make([]ranked, 0, n)
	for i, sp := range s.Sprites {
		off := sp.Offset
		planarR := math.Hypot(off.X(), off.Z())
		target := 0.0
		if planarR > 1e-6 {
			target = math.Atan2(off.Z(), off.X())
		}
		delay := time.Duration(float64(orbitDur) * float64(i) / float64(max(n, 1)))
		sp.Anim = &MotionAnimState{
			Phase:           PhasePending,
			StartTime:       now.Add(delay),
			OrbitDuration:   orbitDur,
			SettleDuration:  settleDur,
			StartAngle:      startAngle,
			TargetAngle:     target,
			StartRadius:     startR,
			TargetRadius:    planarR,
			TargetHeight:    off.Y(),
			AngularVelocity: 2 * math.Pi / orbitDur.Seconds(),
		}
		sp.Position = planarPoint(startAngle, startR, 0)
		rank = append(rank, ranked{i, math.Mod(target+2*math.Pi, 2*math.Pi)})
	}
	sort.SliceStable(rank, func(a, b int) bool { return rank[a].ang > rank[b].ang })
	s.order = s.order[:0]
	for _, r := range rank {
		s.order = append(s.order, r.i)
	}
	s.cursor = 0
	s.settling = -1
}

// Update advances every sprite to now and admits the next settler.
func (s *Set) Update(now time.Time) {
	for i, sp := range s.Sprites {
		if sp.frozen {
			continue
		}
		a := sp.Anim
		if a == nil {
			if sp.Visible {
				sp.Position = sp.Offset
			}
			continue
		}
		if now.After(a.StartTime) && !sp.fadeStarted {
			sp.fadeStarted = true
			s.fade(sp, 1, nil)
		}
		switch a.Phase {
		case PhasePending:
			if !now.After(a.StartTime) {
				sp.Position = planarPoint(a.StartAngle, a.StartRadius, 0)
				continue
			}
			a.Phase = PhaseOrbiting
			a.PhaseStart = a.StartTime
			fallthrough
		case PhaseOrbiting:
			t := tween.Clamp01(float64(now.Sub(a.PhaseStart)) / float64(a.OrbitDuration))
			if t < 1 {
				sp.Position = planarPoint(a.StartAngle+2*math.Pi*t, a.StartRadius, 0)
				continue
			}
			a.Phase = PhaseHolding
			a.PhaseStart = a.PhaseStart.Add(a.OrbitDuration)
			a.HoldAngle = a.StartAngle + 2*math.Pi
			sp.Position = planarPoint(a.holdAngleAt(now), a.StartRadius, 0)
		case PhaseHolding:
			sp.Position = planarPoint(a.holdAngleAt(now), a.StartRadius, 0)
		case PhaseSettling:
			t := tween.Clamp01(float64(now.Sub(a.PhaseStart)) / float64(a.SettleDuration))
			delta := orbit.NormalizeAngle(a.TargetAngle - a.SettleStartAngle)
			// Initial slope matches the orbit's angular speed, scaled to the
			// segment and capped so the curve never overshoots.
			slope := a.AngularVelocity * a.SettleDuration.Seconds() / math.Max(1e-3, math.Abs(delta))
			m0 := math.Copysign(math.Min(1, slope), delta)
			angle := a.SettleStartAngle + delta*tween.Hermite(0, 1, m0, 0, t)
			k := tween.EaseOutCubic(t)
			r := tween.Lerp(a.SettleStartRadius, a.TargetRadius, k)
			y := tween.Lerp(a.SettleStartHeight, a.TargetHeight, k)
			sp.Position = planarPoint(angle, r, y)
			if t >= 1 {
				sp.Position = sp.Offset
				sp.Anim = nil
				if s.settling == i {
					s.settling = -1
					s.cursor++
				}
			}
		}
	}
	s.admit(now)
}

// admit hands the settle slot to the next sprite in order once it has
// finished its revolution.
func (s *Set) admit(now time.Time) {
	if s.settling >= 0 {
		return
	}
	for s.cursor < len(s.order) {
		idx := s.order[s.cursor]
		a := s.Sprites[idx].Anim
		if a == nil {
			s.cursor++
			continue
		}
		if a.Phase != PhaseHolding {
			return
		}
		a.SettleStartAngle = a.holdAngleAt(now)
		a.SettleStartRadius = a.StartRadius
		a.SettleStartHeight = 0
		a.Phase = PhaseSettling
		a.PhaseStart = now
		s.settling = idx
		return
	}
}

func (a *MotionAnimState) holdAngleAt(now time.Time) float64 {
	return a.HoldAngle + a.AngularVelocity*now.Sub(a.PhaseStart).Seconds()
}

// planarPoint is the offset at angle in the XZ plane, radius r, height y.
func planarPoint(angle, r, y float64) mgl64.Vec3 {
	return mgl64.Vec3{math.Cos(angle) * r, y, math.Sin(angle) * r}
}
