package content

import (
	"encoding/json"
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/solarfolio/solarfolio/internal/moon"
	"github.com/solarfolio/solarfolio/internal/orbit"
)

// Overview is the section target for the overhead pose.
const Overview = -1

// Manifest is the JSON-serializable definition of the portfolio scene.
type Manifest struct {
	Name      string       `json:"name"`
	Subtitle  string       `json:"subtitle"`
	Sun       Sun          `json:"sun"`
	TimeScale TimeScale    `json:"timeScale"`
	Bodies    []BodyDef    `json:"bodies"`
	Sections  []Section    `json:"sections"`
	Moons     []MoonSetDef `json:"moons"`
}

// Sun is the central star. It does not orbit.
type Sun struct {
	Name   string  `json:"name"`
	Radius float64 `json:"radius"`
	Color  string  `json:"color"`
	Seed   uint32  `json:"seed"`
}

// TimeScale maps astronomical days onto scene seconds.
type TimeScale struct {
	EarthYearSeconds float64 `json:"earthYearSeconds"`
	EarthDaySeconds  float64 `json:"earthDaySeconds"`
}

// BodyDef defines one planet. Angles are degrees.
type BodyDef struct {
	Name      string    `json:"name"`
	Radius    float64   `json:"radius"`
	Color     string    `json:"color"`
	Texture   string    `json:"texture,omitempty"`
	NormalMap string    `json:"normalMap,omitempty"`
	Clouds    *CloudDef `json:"clouds,omitempty"`

	SemiMajorAxis float64  `json:"semiMajorAxis"`
	Eccentricity  float64  `json:"eccentricity"`
	Inclination   float64  `json:"inclination"`
	Node          float64  `json:"node"`
	Periapsis     float64  `json:"periapsis"`
	Tilt          float64  `json:"tilt"`
	DayLengthDays float64  `json:"dayLengthDays"`
	PeriodDays    float64  `json:"periodDays"`
	MeanAnomaly0  *float64 `json:"meanAnomaly0,omitempty"` // nil = random phase
}

// CloudDef describes a cloud shell. SuperRotation spins it opposite the
// surface at that multiple of the surface rate; otherwise it drifts at
// Drift times the surface rate.
type CloudDef struct {
	Texture       string  `json:"texture,omitempty"`
	Drift         float64 `json:"drift,omitempty"`
	SuperRotation float64 `json:"superRotation,omitempty"`
}

// Section is a navigation entry.
type Section struct {
	Name   string      `json:"name"`
	Title  string      `json:"title"`
	Body   string      `json:"body"`
	Target int         `json:"target"` // body index or Overview
	Moons  string      `json:"moons,omitempty"`
	Links  []moon.Link `json:"links,omitempty"`
}

// MoonSetDef is the group of moon sprites around one body.
type MoonSetDef struct {
	Name   string    `json:"name"`
	Host   int       `json:"host"`
	Pixels float64   `json:"pixels"`
	Items  []MoonDef `json:"items"`

	// ViewportFraction caps Pixels at this share of the viewport width.
	ViewportFraction float64 `json:"viewportFraction,omitempty"`
}

// PixelsFor returns the on-screen moon size for a viewport width.
func (d MoonSetDef) PixelsFor(width int) float64 {
	px := d.Pixels
	if px <= 0 {
		px = moon.DefaultPixels
	}
	if d.ViewportFraction > 0 && width > 0 {
		px = math.Min(px, float64(width)*d.ViewportFraction)
	}
	return px
}

// Sprites builds fresh sprites for the set, IDs in declaration order.
func (d MoonSetDef) Sprites() []*moon.Sprite {
	out := make([]*moon.Sprite, len(d.Items))
	for i, it := range d.Items {
		out[i] = moon.NewSprite(i, it.Title, it.Description, it.Href, it.Image, it.Links)
	}
	return out
}

// MoonDef is one clickable moon.
type MoonDef struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Href        string      `json:"href,omitempty"`
	Image       string      `json:"image,omitempty"`
	Links       []moon.Link `json:"links,omitempty"`
}

// Load parses and validates a Manifest from JSON bytes.
func Load(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	if len(m.Bodies) == 0 {
		return fmt.Errorf("no bodies")
	}
	if m.TimeScale.EarthYearSeconds <= 0 || m.TimeScale.EarthDaySeconds <= 0 {
		return fmt.Errorf("time scale must be positive")
	}
	for i, b := range m.Bodies {
		if b.Name == "" {
			return fmt.Errorf("body %d has no name", i)
		}
		if b.Radius <= 0 || b.SemiMajorAxis <= 0 {
			return fmt.Errorf("body %q: radius and semi-major axis must be positive", b.Name)
		}
		if b.Eccentricity < 0 || b.Eccentricity >= 1 {
			return fmt.Errorf("body %q: eccentricity %v outside [0,1)", b.Name, b.Eccentricity)
		}
		if _, err := ParseColor(b.Color); err != nil {
			return fmt.Errorf("body %q: %w", b.Name, err)
		}
	}
	hosts := make(map[string]int, len(m.Moons))
	for _, s := range m.Moons {
		if s.Host < 0 || s.Host >= len(m.Bodies) {
			return fmt.Errorf("moon set %q: host %d out of range", s.Name, s.Host)
		}
		if _, dup := hosts[s.Name]; dup {
			return fmt.Errorf("moon set %q declared twice", s.Name)
		}
		hosts[s.Name] = s.Host
	}
	seen := make(map[string]bool, len(m.Sections))
	for _, s := range m.Sections {
		if seen[s.Name] {
			return fmt.Errorf("section %q declared twice", s.Name)
		}
		seen[s.Name] = true
		if s.Target != Overview && (s.Target < 0 || s.Target >= len(m.Bodies)) {
			return fmt.Errorf("section %q: target %d out of range", s.Name, s.Target)
		}
		if s.Moons == "" {
			continue
		}
		host, ok := hosts[s.Moons]
		if !ok {
			return fmt.Errorf("section %q: unknown moon set %q", s.Name, s.Moons)
		}
		if host != s.Target {
			return fmt.Errorf("section %q: moon set %q orbits body %d, not target %d", s.Name, s.Moons, host, s.Target)
		}
	}
	return nil
}

// AssetNames lists every image the manifest references, surfaces first,
// without duplicates.
func (m *Manifest) AssetNames() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, b := range m.Bodies {
		add(b.Texture)
		add(b.NormalMap)
		if b.Clouds != nil {
			add(b.Clouds.Texture)
		}
	}
	for _, set := range m.Moons {
		for _, it := range set.Items {
			add(it.Image)
		}
	}
	return out
}

// Section returns the named section.
func (m *Manifest) Section(name string) (Section, bool) {
	for _, s := range m.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// Elements converts a body definition into orbital elements in scene units.
// m0Deg is used when the body does not pin its own starting phase.
func (ts TimeScale) Elements(b BodyDef, m0Deg float64) orbit.Elements {
	if b.MeanAnomaly0 != nil {
		m0Deg = *b.MeanAnomaly0
	}
	return orbit.NewElements(
		b.SemiMajorAxis, b.Eccentricity,
		b.Inclination, b.Node, b.Periapsis, b.Tilt,
		b.DayLengthDays*ts.EarthDaySeconds,
		b.PeriodDays/365.256*ts.EarthYearSeconds,
		m0Deg,
	)
}

// ParseColor reads a "#rrggbb" string.
func ParseColor(hex string) (color.NRGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("parse color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}
