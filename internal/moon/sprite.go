package moon

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Phase is a moon's entry-animation state.
type Phase uint8

const (
	PhasePending  Phase = iota // waiting behind the host for its staggered start
	PhaseOrbiting              // sweeping one full revolution
	PhaseHolding               // revolution done, circling until the settle slot frees
	PhaseSettling              // easing onto the target offset
)

func (p Phase) String() string {
	switch p {
	case PhaseOrbiting:
		return "orbiting"
	case PhaseHolding:
		return "holding"
	case PhaseSettling:
		return "settling"
	default:
		return "pending"
	}
}

// MotionAnimState drives one sprite from behind its host to its target
// offset. Angles are measured in the host's XZ plane as atan2(z, x).
type MotionAnimState struct {
	Phase      Phase
	StartTime  time.Time // scheduled orbit start
	PhaseStart time.Time

	OrbitDuration  time.Duration
	SettleDuration time.Duration

	StartAngle  float64 // orbit begins here and ends one turn later
	TargetAngle float64
	HoldAngle   float64 // angle when holding began

	StartRadius  float64 // orbit radius in the XZ plane
	TargetRadius float64 // planar radius of the target offset
	TargetHeight float64

	SettleStartAngle  float64
	SettleStartRadius float64
	SettleStartHeight float64

	AngularVelocity float64 // rad/s during the orbit
}

// Sprite is a clickable moon attached to a host body. Sprites are created
// once and reused across show/hide cycles; only their offsets and motion
// state are recomputed.
type Sprite struct {
	ID          int
	Title       string
	Description string
	Href        string
	Image       string // asset path of the face texture

	// BasePixels is the on-screen size used when the size is not locked.
	BasePixels float64

	Offset   mgl64.Vec3 // settled position relative to the host
	Position mgl64.Vec3 // current position relative to the host

	Opacity float64
	Visible bool
	Hovered bool
	Ready   bool // face texture resolved (or fell back)

	Size   float64 // locked world size
	Locked bool

	Anim    *MotionAnimState
	Overlay *Overlay

	frozen      bool
	fadeStarted bool
}

// NewSprite returns a hidden sprite with its overlay laid out at the base
// overlay size.
func NewSprite(id int, title, description, href, image string, links []Link) *Sprite {
	return &Sprite{
		ID:          id,
		Title:       title,
		Description: description,
		Href:        href,
		Image:       image,
		BasePixels:  128,
		Overlay:     NewOverlay(title, description, links, BaseOverlayPixels),
	}
}

// HasHotspots reports whether clicks resolve through overlay pills instead
// of the sprite's own href.
func (s *Sprite) HasHotspots() bool {
	return s.Overlay != nil && len(s.Overlay.Hotspots) > 0
}

// Frozen reports whether the sprite is held in place while fading out.
func (s *Sprite) Frozen() bool { return s.frozen }

// Pickable reports whether the pointer can hit the sprite.
func (s *Sprite) Pickable() bool { return s.Visible && s.Opacity > 0 }
