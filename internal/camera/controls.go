package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// OrbitControls is user drag/zoom input that the controller can switch off
// during flights and run undamped while following.
type OrbitControls interface {
	SetEnabled(bool)
	Enabled() bool
	SetDamping(bool)
	Damping() bool
}

// Drag-to-orbit tuning.
const (
	dragRadiansPerPixel = 0.005
	dampingRate         = 8.0 // 1/s
	maxElevation        = 1.45
)

// ManualControls turns pointer drags into orbit rotation around the pose
// target. With damping on, released drags coast to a stop; with damping
// off, each drag is applied once.
type ManualControls struct {
	enabled bool
	damping bool

	azVel, elVel float64 // rad/s, or rad per frame when undamped
	zoom         float64
}

// NewManualControls returns enabled, damped controls.
func NewManualControls() *ManualControls {
	return &ManualControls{enabled: true, damping: true}
}

func (m *ManualControls) SetEnabled(on bool) {
	m.enabled = on
	if !on {
		m.azVel, m.elVel, m.zoom = 0, 0, 0
	}
}

func (m *ManualControls) Enabled() bool { return m.enabled }

func (m *ManualControls) SetDamping(on bool) {
	m.damping = on
	if !on {
		m.azVel, m.elVel = 0, 0
	}
}

func (m *ManualControls) Damping() bool { return m.damping }

// Drag feeds a pointer movement in pixels.
func (m *ManualControls) Drag(dx, dy float64) {
	if !m.enabled {
		return
	}
	m.azVel += -dx * dragRadiansPerPixel
	m.elVel += dy * dragRadiansPerPixel
}

// Zoom feeds a wheel delta; positive moves closer.
func (m *ManualControls) Zoom(delta float64) {
	if !m.enabled {
		return
	}
	m.zoom += delta
}

// Apply rotates offset (camera position minus target) by the pending input
// and returns the new offset.
func (m *ManualControls) Apply(offset mgl64.Vec3, dt float64) mgl64.Vec3 {
	if !m.enabled {
		return offset
	}
	az, el := m.azVel, m.elVel
	if m.damping {
		// Velocities are consumed gradually so a flick keeps coasting.
		k := 1 - math.Exp(-dampingRate*dt)
		az, el = m.azVel*k, m.elVel*k
		m.azVel -= az
		m.elVel -= el
	} else {
		m.azVel, m.elVel = 0, 0
	}

	r := offset.Len()
	if r < minDirection || (az == 0 && el == 0 && m.zoom == 0) {
		return offset
	}
	theta := math.Atan2(offset.X(), offset.Z())
	phi := math.Asin(clamp(offset.Y()/r, -1, 1))
	theta += az
	// A pose already past the limit (the overview looks straight down) may
	// only move back toward it.
	lo, hi := math.Min(phi, -maxElevation), math.Max(phi, maxElevation)
	phi = clamp(phi+el, lo, hi)
	if m.zoom != 0 {
		r = math.Max(1, r*math.Pow(0.9, m.zoom))
		m.zoom = 0
	}
	return mgl64.Vec3{
		r * math.Cos(phi) * math.Sin(theta),
		r * math.Sin(phi),
		r * math.Cos(phi) * math.Cos(theta),
	}
}
