package scene

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/solarfolio/solarfolio/internal/assets"
	"github.com/solarfolio/solarfolio/internal/camera"
	"github.com/solarfolio/solarfolio/internal/content"
	"github.com/solarfolio/solarfolio/internal/logging"
	"github.com/solarfolio/solarfolio/internal/moon"
	"github.com/solarfolio/solarfolio/internal/observability"
	"github.com/solarfolio/solarfolio/internal/perf"
	"github.com/solarfolio/solarfolio/internal/pointer"
	"github.com/solarfolio/solarfolio/internal/texture"
	"github.com/solarfolio/solarfolio/internal/tween"
)

// Options configures a scene. Zero durations take the defaults.
type Options struct {
	Lens           camera.Lens
	Perf           perf.Config
	Timing         moon.Timing
	Pointer        pointer.Config
	FlyTo          time.Duration
	ToOverview     time.Duration
	ReadyTimeout   time.Duration
	ResizeDebounce time.Duration
	TextureSize    int // width of generated surface maps

	Controls camera.OrbitControls // may be nil
	Rand     *rand.Rand           // orbit phases and moon radii; nil = time seeded
	Logger   logging.Logger
	Metrics  *observability.SceneCollector // may be nil
}

// Default timings.
const (
	DefaultFlyTo          = 1200 * time.Millisecond
	DefaultToOverview     = 1400 * time.Millisecond
	DefaultReadyTimeout   = 1200 * time.Millisecond
	DefaultResizeDebounce = 100 * time.Millisecond

	DefaultTextureSize    = 512

	eventLogSize = 40

	proceduralPrefix = "proc/"
	idleTimeout      = 2 * time.Second
	idleCost         = 4 * time.Millisecond
)

var placeholderColor = color.NRGBA{R: 0x6a, G: 0x6a, B: 0x80, A: 0xff}

func (o Options) withDefaults() Options {
	if o.Lens.Width <= 0 || o.Lens.Height <= 0 {
		o.Lens = camera.DefaultLens
	}
	if o.Timing == (moon.Timing{}) {
		o.Timing = moon.DefaultTiming
	}
	if o.Pointer == (pointer.Config{}) {
		o.Pointer = pointer.DefaultConfig
	}
	if o.FlyTo <= 0 {
		o.FlyTo = DefaultFlyTo
	}
	if o.ToOverview <= 0 {
		o.ToOverview = DefaultToOverview
	}
	if o.ReadyTimeout <= 0 {
		o.ReadyTimeout = DefaultReadyTimeout
	}
	if o.ResizeDebounce <= 0 {
		o.ResizeDebounce = DefaultResizeDebounce
	}
	if o.TextureSize <= 0 {
		o.TextureSize = DefaultTextureSize
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if o.Logger == nil {
		o.Logger = logging.Noop()
	}
	return o
}

// Frame reports what one Tick did.
type Frame struct {
	DT       float64 // seconds since the previous tick
	Hidden   bool    // only bookkeeping ran
	Frozen   bool    // orbits held at their initial placement
	Governor perf.Change
}

// State is the whole scene: bodies, camera, governor, moons and pointer.
// It is driven from a single goroutine through Tick.
type State struct {
	Manifest *content.Manifest
	Sun      *Body
	Bodies   []*Body
	Sets     []*moon.Set
	Camera   *camera.Controller
	Governor *perf.Governor
	Picker   *pointer.Picker
	Tweens   *tween.Scheduler
	Clock    Clock
	Log      *EventLog
	Idle     assets.Idle

	// Textures holds every resolved image by asset name, plus generated
	// maps under the "proc/" prefix.
	Textures map[string]image.Image

	opts    Options
	ctx     context.Context
	log     logging.Logger
	metrics *observability.SceneCollector

	lens    camera.Lens
	frozen  bool
	section string
	target  int
	pending *pendingShow
	resize  *pendingResize
	setDefs []content.MoonSetDef
	relief  map[string]bool // emboss keys already queued
}

type pendingShow struct {
	set      *moon.Set
	def      content.MoonSetDef
	deadline time.Time
}

type pendingResize struct {
	width, height int
	at            time.Time
}

// New builds the scene from a manifest at the overview pose. Orbits stay
// frozen at their initial placement until MarkAssetsReady.
func New(m *content.Manifest, opts Options, now time.Time) *State {
	opts = opts.withDefaults()
	sched := tween.NewScheduler()

	s := &State{
		Manifest: m,
		Sun:      newSun(m.Sun),
		Tweens:   sched,
		Log:      NewEventLog(eventLogSize),
		Textures: make(map[string]image.Image),
		relief:   make(map[string]bool),
		opts:     opts,
		ctx:      context.Background(),
		log:      opts.Logger.With(logging.String("component", "scene")),
		metrics:  opts.Metrics,
		lens:     opts.Lens,
		frozen:   true,
		target:   content.Overview,
	}
	for i, def := range m.Bodies {
		m0 := opts.Rand.Float64() * 360
		s.Bodies = append(s.Bodies, newPlanet(def, m.TimeScale.Elements(def, m0), uint32(i+1)))
	}

	s.Camera = camera.NewController(camera.OverviewPose(), sched, opts.Controls)
	s.Governor = perf.NewGovernor(opts.Perf, now)
	for _, b := range s.Bodies {
		s.Governor.Attach(b.Material)
	}

	s.Picker = pointer.NewPicker(opts.Pointer, sched, s.hostPosition)
	for _, def := range m.Moons {
		set := moon.NewSet(def.Name, def.Host, def.Sprites(), sched, opts.Rand)
		set.Timing = opts.Timing
		set.Pixels = def.PixelsFor(s.lens.Width)
		s.Sets = append(s.Sets, set)
		s.setDefs = append(s.setDefs, def)
		s.Picker.Register(set)
	}
	for _, sec := range m.Sections {
		if sec.Target == content.Overview {
			s.section = sec.Name
			break
		}
	}

	s.queueProcedural(now, s.Sun, func() image.Image {
		return texture.Sun(s.opts.TextureSize, s.opts.TextureSize/2, s.Sun.Seed)
	})
	for _, b := range s.Bodies {
		if b.Texture == "" {
			s.queuePlanetMap(now, b)
		}
		if b.Clouds != nil && b.Clouds.Texture == "" {
			s.queueCloudMap(now, b)
		}
	}

	s.Log.Add(now, fmt.Sprintf("%s: %s", m.Name, m.Subtitle), EventInfo)
	s.Log.Add(now, "Loading textures...", EventInfo)
	return s
}

func (s *State) hostPosition(i int) mgl64.Vec3 {
	if i < 0 || i >= len(s.Bodies) {
		return mgl64.Vec3{}
	}
	return s.Bodies[i].Position
}

// Frozen reports whether orbits are still held for asset loading.
func (s *State) Frozen() bool { return s.frozen }

// Lens returns the current viewport lens.
func (s *State) Lens() camera.Lens { return s.lens }

// Projector returns the live camera projector.
func (s *State) Projector() camera.Projector {
	return camera.NewProjector(s.Camera.Pose(), s.lens)
}

// MarkAssetsReady releases the orbits. Motion resumes from the initial
// placement: the time origin moves to now.
func (s *State) MarkAssetsReady(now time.Time) {
	if !s.frozen {
		return
	}
	s.frozen = false
	s.Clock.Reset(now)
	s.Log.Add(now, "All systems online.", EventInfo)
	s.log.Info(s.ctx, "assets ready, orbits released")
}

// ApplyAsset stores a finished load. A failed load gets a stand-in so
// whatever waits on it can proceed: generated maps for planet surfaces and
// cloud shells, a shaded disc for moon faces. A failed normal map is
// dropped.
func (s *State) ApplyAsset(now time.Time, r assets.Result) {
	s.metrics.ObserveAsset(r.Img != nil)
	if r.Img != nil {
		s.Textures[r.Name] = r.Img
		s.markSprites(r.Name)
		for _, b := range s.Bodies {
			if b.NormalMap == r.Name {
				s.queueHeightMap(now, b, r.Img)
			}
		}
		return
	}

	s.log.Warn(s.ctx, "asset failed, using placeholder", logging.String("asset", r.Name), logging.Err(r.Err))
	s.Log.Add(now, "Missing "+r.Name, EventAsset)
	for _, b := range s.Bodies {
		switch {
		case b.Texture == r.Name:
			s.queuePlanetMap(now, b)
		case b.Clouds != nil && b.Clouds.Texture == r.Name:
			s.queueCloudMap(now, b)
		case b.NormalMap == r.Name:
			b.NormalMap = ""
		}
	}
	if s.markSprites(r.Name) {
		s.Textures[r.Name] = texture.Placeholder(moon.DefaultPixels, placeholderColor)
	}
}

// markSprites flags every sprite showing name as ready.
func (s *State) markSprites(name string) bool {
	found := false
	for _, set := range s.Sets {
		for _, sp := range set.Sprites {
			if sp.Image == name {
				sp.Ready = true
				found = true
			}
		}
	}
	return found
}

// queueProcedural points b's surface at a generated map built on an idle
// frame.
func (s *State) queueProcedural(now time.Time, b *Body, gen func() image.Image) {
	key := proceduralPrefix + b.Name
	b.Texture = key
	s.Idle.Defer(now, idleTimeout, func() { s.Textures[key] = gen() })
}

func (s *State) queuePlanetMap(now time.Time, b *Body) {
	s.queueProcedural(now, b, func() image.Image {
		w := s.opts.TextureSize
		return texture.PlanetPlaceholder(w, w/2, b.Color, b.Seed)
	})
}

func (s *State) queueCloudMap(now time.Time, b *Body) {
	key := proceduralPrefix + b.Name + "/clouds"
	b.Clouds.Texture = key
	s.Idle.Defer(now, idleTimeout, func() {
		w := s.opts.TextureSize
		s.Textures[key] = texture.Clouds(w, w/2, b.Seed)
	})
}

// queueHeightMap derives b's height map from its normal map on an idle
// frame.
func (s *State) queueHeightMap(now time.Time, b *Body, normal image.Image) {
	key := proceduralPrefix + b.Name + "/height"
	s.Idle.Defer(now, idleTimeout, func() {
		s.Textures[key] = texture.HeightFromNormal(normal, 1)
		b.HeightMap = key
	})
}

// tickRelief points each bump-mapped body at its embossed surface for the
// current bump scale, queueing the emboss when it is not built yet.
func (s *State) tickRelief(now time.Time) {
	for _, b := range s.Bodies {
		b.Relief = ""
		if b.HeightMap == "" || b.Material == nil || b.Material.BumpScale <= 0 {
			continue
		}
		base, ok := s.Textures[b.Texture]
		height, okH := s.Textures[b.HeightMap].(*image.Gray)
		if !ok || !okH {
			continue
		}
		bump := b.Material.BumpScale
		key := fmt.Sprintf("%s%s/relief/%s@%g", proceduralPrefix, b.Name, b.Texture, bump)
		if _, done := s.Textures[key]; done {
			b.Relief = key
			continue
		}
		if s.relief[key] {
			continue
		}
		s.relief[key] = true
		s.Idle.Defer(now, idleTimeout, func() {
			s.Textures[key] = texture.Emboss(base, height, bump)
		})
	}
}

// RunIdle runs deferred texture generation. spare is what is left of the
// frame budget.
func (s *State) RunIdle(now time.Time, spare time.Duration) int {
	return s.Idle.Run(now, spare, idleCost)
}

// MarkUntextured flags sprites without an image as ready.
func (s *State) MarkUntextured() {
	for _, set := range s.Sets {
		for _, sp := range set.Sprites {
			if sp.Image == "" {
				sp.Ready = true
			}
		}
	}
}

// Tick advances the scene to now. A hidden tick only keeps the clock
// current so the next visible frame sees a normal dt.
func (s *State) Tick(now time.Time, visible bool) Frame {
	dt := s.Clock.Tick(now)
	if !visible {
		return Frame{DT: dt, Hidden: true, Frozen: s.frozen}
	}

	s.tickResize(now)
	s.tickBodies(now, dt)
	s.Tweens.Advance(time.Duration(dt * float64(time.Second)))
	s.Camera.Update(dt)
	change := s.tickGovernor(now)
	s.tickRelief(now)
	s.tickMoons(now)
	s.Picker.Update(now, s.Projector())

	return Frame{DT: dt, Frozen: s.frozen, Governor: change}
}

func (s *State) tickBodies(now time.Time, dt float64) {
	elapsed := s.Clock.Elapsed(now)
	s.Sun.spin(dt)
	for _, b := range s.Bodies {
		if !s.frozen {
			b.placeAt(elapsed)
		}
		b.spin(dt)
	}
}

func (s *State) tickGovernor(now time.Time) perf.Change {
	ch := s.Governor.Update(now, s.Clock.FPS())
	s.metrics.ObserveFrame(ch.FPS, ch.Ratio, ch.Resized, ch.Toggled, ch.LowMode)
	if ch.Resized {
		s.log.Debug(s.ctx, "pixel ratio changed", logging.Float("ratio", ch.Ratio), logging.Float("fps", ch.FPS))
	}
	if ch.Toggled {
		msg := "Performance: full detail restored."
		if ch.LowMode {
			msg = "Performance: reduced detail."
		}
		s.Log.Add(now, msg, EventFidelity)
		s.log.Info(s.ctx, "fidelity mode changed", logging.Bool("low", ch.LowMode), logging.Float("fps", ch.FPS))
	}
	return ch
}

func (s *State) tickMoons(now time.Time) {
	if p := s.pending; p != nil && (p.set.AllReady() || !now.Before(p.deadline)) {
		s.pending = nil
		host := s.Bodies[p.set.Host]
		p.set.Pixels = p.def.PixelsFor(s.lens.Width)
		p.set.Show(now, host.Position, host.Radius, s.lens)
		s.Picker.Pause(now)
		s.log.Debug(s.ctx, "moons shown", logging.String("set", p.set.Name), logging.Bool("ready", p.set.AllReady()))
	}
	for _, set := range s.Sets {
		set.Update(now)
	}
}

// PointerMove forwards a pointer position in viewport pixels.
func (s *State) PointerMove(x, y float64, inside bool) { s.Picker.Move(x, y, inside) }

// Click resolves a click at (x, y) to a link.
func (s *State) Click(x, y float64) (string, bool) {
	return s.Picker.Click(x, y, s.Projector())
}

// Activate opens the hovered sprite's link from the keyboard.
func (s *State) Activate() (string, bool) { return s.Picker.Activate() }
