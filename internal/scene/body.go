package scene

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/solarfolio/solarfolio/internal/content"
	"github.com/solarfolio/solarfolio/internal/orbit"
	"github.com/solarfolio/solarfolio/internal/perf"
)

// Kind separates the star from the planets.
type Kind uint8

const (
	KindPlanet Kind = iota
	KindSun
)

// Sun surface motion: a slow spin plus the emissive map scrolling.
const (
	sunSpinRate   = 0.05 * math.Pi / 180 // rad/s
	sunScrollRate = 0.003                // texture widths per second
	orbitSegments = 256
	defaultDrift  = 0.9
)

// CloudLayer is a shell spinning independently of the surface.
type CloudLayer struct {
	Texture string
	Angle   float64
	Rate    float64 // rad/s
}

// Body is one sphere in the scene. Position is recomputed from the orbital
// elements every unfrozen tick; the rest is render state.
type Body struct {
	Name     string
	Kind     Kind
	Elements orbit.Elements
	Radius   float64
	Color    color.NRGBA
	Seed     uint32

	Texture   string
	NormalMap string
	HeightMap string // derived from NormalMap on an idle frame
	Relief    string // Texture embossed at the current bump scale, once built

	Position   mgl64.Vec3
	Rotation   mgl64.Quat
	SpinAngle  float64
	SpinRate   float64
	MeanMotion float64
	Scroll     float64 // sun texture offset in [0,1)

	Clouds   *CloudLayer
	Material *perf.Material
	Path     []mgl64.Vec3
}

func newPlanet(def content.BodyDef, el orbit.Elements, seed uint32) *Body {
	c, _ := content.ParseColor(def.Color) // validated on load
	b := &Body{
		Name:       def.Name,
		Kind:       KindPlanet,
		Elements:   el,
		Radius:     def.Radius,
		Color:      c,
		Seed:       seed,
		Texture:    def.Texture,
		NormalMap:  def.NormalMap,
		SpinRate:   el.SpinRate(),
		MeanMotion: el.MeanMotion(),
		Path:       orbit.Path(el, orbitSegments),
		Material: &perf.Material{
			Displacement: def.NormalMap != "",
			BumpScale:    1,
		},
	}
	if cd := def.Clouds; cd != nil {
		rate := b.SpinRate * defaultDrift
		if cd.Drift != 0 {
			rate = b.SpinRate * cd.Drift
		}
		if cd.SuperRotation > 0 {
			rate = math.Abs(b.SpinRate) * cd.SuperRotation
		}
		b.Clouds = &CloudLayer{Texture: cd.Texture, Rate: rate}
		b.Material.CloudsVisible = true
	}
	b.placeAt(0)
	b.orient()
	return b
}

func newSun(def content.Sun) *Body {
	c, err := content.ParseColor(def.Color)
	if err != nil {
		c = color.NRGBA{R: 0xff, G: 0xc3, B: 0x5b, A: 0xff}
	}
	b := &Body{
		Name:     def.Name,
		Kind:     KindSun,
		Radius:   def.Radius,
		Color:    c,
		Seed:     def.Seed,
		SpinRate: sunSpinRate,
		Rotation: mgl64.QuatIdent(),
	}
	return b
}

// placeAt puts the body where its orbit has it elapsed seconds after the
// time origin.
func (b *Body) placeAt(elapsed float64) {
	if b.Kind == KindSun {
		return
	}
	b.Position = orbit.PositionAt(b.Elements, b.Elements.MeanAnomalyAt(elapsed))
}

// spin advances surface, clouds and texture scroll by dt seconds.
func (b *Body) spin(dt float64) {
	b.SpinAngle = math.Mod(b.SpinAngle+b.SpinRate*dt, 2*math.Pi)
	if b.Clouds != nil {
		b.Clouds.Angle = math.Mod(b.Clouds.Angle+b.Clouds.Rate*dt, 2*math.Pi)
	}
	if b.Kind == KindSun {
		b.Scroll = math.Mod(b.Scroll+sunScrollRate*dt, 1)
	}
	b.orient()
}

func (b *Body) orient() {
	tilt := mgl64.QuatRotate(b.Elements.AxialTilt, mgl64.Vec3{0, 0, 1})
	b.Rotation = tilt.Mul(mgl64.QuatRotate(b.SpinAngle, mgl64.Vec3{0, 1, 0}))
}

// CloudsVisible reports whether the cloud shell should be drawn.
func (b *Body) CloudsVisible() bool {
	return b.Clouds != nil && (b.Material == nil || b.Material.CloudsVisible)
}
