package scene

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/solarfolio/solarfolio/internal/camera"
	"github.com/solarfolio/solarfolio/internal/content"
	"github.com/solarfolio/solarfolio/internal/logging"
	"github.com/solarfolio/solarfolio/internal/moon"
)

// Overview is the Focus target for the overhead pose.
const Overview = content.Overview

// Target returns the focused body index, or Overview.
func (s *State) Target() int { return s.target }

// Section returns the active navigation section.
func (s *State) Section() string { return s.section }

// FocusSection navigates to a named section. Re-selecting the active
// section does nothing. It reports whether the name was known.
func (s *State) FocusSection(now time.Time, name string) bool {
	sec, ok := s.Manifest.Section(name)
	if !ok {
		s.log.Warn(s.ctx, "unknown section", logging.String("section", name))
		return false
	}
	if name == s.section {
		return true
	}
	s.section = name
	s.Log.Add(now, sec.Title, EventFocus)
	s.Focus(now, sec.Target, sec.Moons)
	return true
}

// Focus flies the camera to a body and then follows it, or back to the
// overview. The moon set named moons is shown once its textures are ready;
// every other set is hidden. An empty name shows none.
func (s *State) Focus(now time.Time, target int, moons string) {
	if target != Overview && (target < 0 || target >= len(s.Bodies)) {
		s.log.Warn(s.ctx, "focus target out of range", logging.Int("target", target))
		return
	}
	s.target = target
	s.stageMoons(now, moons)

	if target == Overview {
		s.metrics.ObserveFocus("overview")
		s.log.Info(s.ctx, "focus overview")
		s.Camera.StopFollow()
		ov := camera.OverviewPose()
		s.Camera.FlyTo(
			func() mgl64.Vec3 { return ov.Position },
			func() mgl64.Vec3 { return ov.Target },
			s.opts.ToOverview, nil,
		)
		return
	}

	b := s.Bodies[target]
	s.metrics.ObserveFocus(b.Name)
	s.log.Info(s.ctx, "focus body", logging.String("body", b.Name), logging.Int("index", target))
	offset := camera.FollowOffset(b.Radius)
	host := func() mgl64.Vec3 { return b.Position }
	s.Camera.FlyTo(
		func() mgl64.Vec3 { return host().Add(offset) },
		host,
		s.opts.FlyTo,
		func() { s.Camera.Follow(target, host, offset) },
	)
}

// stageMoons hides every set but the one named and queues that one to
// show once its sprites are ready or the wait times out.
func (s *State) stageMoons(now time.Time, name string) {
	s.pending = nil
	hid := false
	for i, set := range s.Sets {
		if name != "" && set.Name == name {
			s.pending = &pendingShow{set: set, def: s.setDefs[i], deadline: now.Add(s.opts.ReadyTimeout)}
			continue
		}
		if set.Shown() {
			set.Hide()
			hid = true
		}
	}
	if hid {
		s.Picker.Pause(now)
	}
}

// ActiveSet returns the moon set that is shown or waiting to show, or
// nil. pending is true while it waits for its textures.
func (s *State) ActiveSet() (set *moon.Set, pending bool) {
	if s.pending != nil {
		return s.pending.set, true
	}
	for _, set := range s.Sets {
		if set.Shown() {
			return set, false
		}
	}
	return nil, false
}
