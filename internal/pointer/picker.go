package pointer

import (
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/mlange-42/ark/ecs"
	"golang.org/x/time/rate"

	"github.com/solarfolio/solarfolio/internal/camera"
	"github.com/solarfolio/solarfolio/internal/moon"
	"github.com/solarfolio/solarfolio/internal/tween"
)

// Cursor is the pointer shape the window should show.
type Cursor uint8

const (
	CursorDefault Cursor = iota
	CursorPointer
)

func (c Cursor) String() string {
	if c == CursorPointer {
		return "pointer"
	}
	return "default"
}

// Config tunes hover picking.
type Config struct {
	Rate        float64       // hover ray casts per second
	Pause       time.Duration // no picking this long after a show or hide
	OverlayFade time.Duration
}

// DefaultConfig picks at 30Hz.
var DefaultConfig = Config{Rate: 30, Pause: 450 * time.Millisecond, OverlayFade: 200 * time.Millisecond}

// Pickable marks a sprite entity the pointer can hit.
type Pickable struct {
	Sprite *moon.Sprite
	Set    string
}

// Anchor ties a pickable entity to its host body.
type Anchor struct {
	Host int
}

// Picker tracks the pointer against the registered moon sprites. Only one
// sprite is hovered at a time.
type Picker struct {
	cfg   Config
	sched *tween.Scheduler
	hosts func(int) mgl64.Vec3

	world  *ecs.World
	mapper *ecs.Map2[Pickable, Anchor]
	filter *ecs.Filter2[Pickable, Anchor]

	limiter    *rate.Limiter
	pauseUntil time.Time

	x, y   float64
	inside bool
	dirty  bool

	hovered *target
	cursor  Cursor
}

// target is a resolved hit: the entity and its components.
type target struct {
	entity ecs.Entity
	*Pickable
	anchor *Anchor
}

// NewPicker builds an empty registry. hosts resolves a body index to its
// current world position.
func NewPicker(cfg Config, sched *tween.Scheduler, hosts func(int) mgl64.Vec3) *Picker {
	if cfg.Rate <= 0 {
		cfg.Rate = DefaultConfig.Rate
	}
	w := ecs.NewWorld(64)
	return &Picker{
		cfg:     cfg,
		sched:   sched,
		hosts:   hosts,
		world:   w,
		mapper:  ecs.NewMap2[Pickable, Anchor](w),
		filter:  ecs.NewFilter2[Pickable, Anchor](w),
		limiter: rate.NewLimiter(rate.Limit(cfg.Rate), 1),
	}
}

// Register adds every sprite of set as a pickable entity.
func (p *Picker) Register(set *moon.Set) {
	for _, sp := range set.Sprites {
		p.mapper.NewEntity(&Pickable{Sprite: sp, Set: set.Name}, &Anchor{Host: set.Host})
	}
}

// Pause suppresses picking until the pause window after now has passed.
func (p *Picker) Pause(now time.Time) {
	if until := now.Add(p.cfg.Pause); until.After(p.pauseUntil) {
		p.pauseUntil = until
	}
	p.dirty = true
}

// Move records a pointer position in viewport pixels.
func (p *Picker) Move(x, y float64, inside bool) {
	if x != p.x || y != p.y || inside != p.inside {
		p.dirty = true
	}
	p.x, p.y, p.inside = x, y, inside
}

// Len returns the number of registered sprites.
func (p *Picker) Len() int {
	n := 0
	q := p.filter.Query()
	for q.Next() {
		n++
	}
	return n
}

// Cursor returns the cursor shape for the last hover result.
func (p *Picker) Cursor() Cursor { return p.cursor }

// Hovered returns the hovered sprite, or nil.
func (p *Picker) Hovered() *moon.Sprite {
	if p.hovered == nil {
		return nil
	}
	return p.hovered.Sprite
}

// Update re-runs hover detection when the pointer moved, at most at the
// configured rate and never inside the pause window.
func (p *Picker) Update(now time.Time, proj camera.Projector) {
	if !p.inside {
		if p.hovered != nil {
			p.setHovered(nil)
			p.cursor = CursorDefault
		}
		return
	}
	if !p.dirty || now.Before(p.pauseUntil) || !p.limiter.AllowN(now, 1) {
		return
	}
	p.dirty = false

	hit := p.pick(proj, p.x, p.y)
	if !sameTarget(hit, p.hovered) {
		p.setHovered(hit)
	}
	// Hotspots map onto the enlarged hover rect, the one Click and the
	// renderer use.
	hot := -1
	if hit != nil && hit.Sprite.HasHotspots() {
		hot = hotspotUnder(proj, p.worldPos(hit), hit.Sprite, p.x, p.y)
	}
	if hit != nil && hit.Sprite.Overlay != nil {
		hit.Sprite.Overlay.SetHover(hot)
	}

	switch {
	case hit == nil:
		p.cursor = CursorDefault
	case hit.Sprite.HasHotspots() && hot < 0:
		p.cursor = CursorDefault
	default:
		p.cursor = CursorPointer
	}
}

// Click resolves a click at (x, y). Sprites with link pills only open
// their pills; others open their own href.
func (p *Picker) Click(x, y float64, proj camera.Projector) (string, bool) {
	hit := p.pick(proj, x, y)
	if hit == nil {
		return "", false
	}
	sp := hit.Sprite
	if sp.HasHotspots() {
		i := hotspotUnder(proj, p.worldPos(hit), sp, x, y)
		if i < 0 || sp.Overlay.Hotspots[i].Href == "" {
			return "", false
		}
		return sp.Overlay.Hotspots[i].Href, true
	}
	return sp.Href, sp.Href != ""
}

// Activate is the keyboard equivalent of clicking the hovered sprite.
func (p *Picker) Activate() (string, bool) {
	if p.hovered == nil {
		return "", false
	}
	sp := p.hovered.Sprite
	if sp.HasHotspots() || sp.Href == "" {
		return "", false
	}
	return sp.Href, true
}

func sameTarget(a, b *target) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.entity == b.entity
}

func (p *Picker) setHovered(next *target) {
	if prev := p.hovered; prev != nil {
		prev.Sprite.Hovered = false
		if ov := prev.Sprite.Overlay; ov != nil {
			p.fadeOverlay(prev, 0)
			ov.SetHover(-1)
		}
	}
	p.hovered = next
	if next != nil {
		next.Sprite.Hovered = true
		if next.Sprite.Overlay != nil {
			p.fadeOverlay(next, 1)
		}
	}
}

func (p *Picker) fadeOverlay(pk *target, to float64) {
	ov := pk.Sprite.Overlay
	p.sched.Start(&tween.Task{
		Key:      fmt.Sprintf("overlay.%s.%d", pk.Set, pk.Sprite.ID),
		From:     ov.Opacity,
		To:       to,
		Duration: p.cfg.OverlayFade,
		OnUpdate: func(v float64) { ov.Opacity = v },
	})
}

func (p *Picker) worldPos(t *target) mgl64.Vec3 {
	return p.hosts(t.anchor.Host).Add(t.Sprite.Position)
}

// pick casts a ray through (x, y) and returns the nearest visible sprite
// whose camera-facing quad it crosses.
func (p *Picker) pick(proj camera.Projector, x, y float64) *target {
	origin, dir := proj.Ray(x, y)
	fwd := proj.Pose.Forward()
	right, up := proj.Pose.Right(), proj.Pose.Up()
	denom := dir.Dot(fwd)
	if denom <= 1e-9 {
		return nil
	}

	var best *target
	bestT := math.Inf(1)
	q := p.filter.Query()
	for q.Next() {
		pk, anc := q.Get()
		sp := pk.Sprite
		if !sp.Pickable() {
			continue
		}
		c := p.hosts(anc.Host).Add(sp.Position)
		half := sp.WorldSize(proj, c) / 2
		t := c.Sub(origin).Dot(fwd) / denom
		if t <= 0 || t >= bestT {
			continue
		}
		local := origin.Add(dir.Mul(t)).Sub(c)
		if math.Abs(local.Dot(right)) <= half && math.Abs(local.Dot(up)) <= half {
			best, bestT = &target{entity: q.Entity(), Pickable: pk, anchor: anc}, t
		}
	}
	return best
}
