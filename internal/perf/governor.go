package perf

import (
	"math"
	"time"
)

// Config tunes the governor. Zero fields take the defaults.
type Config struct {
	MinRatio        float64 // DRS floor on normal hardware
	LowTierMinRatio float64 // DRS floor on low-tier hardware
	MaxRatio        float64 // DRS ceiling, usually the device scale capped at 2

	DRSCooldown time.Duration
	DRSLowFPS   float64 // shrink below this
	DRSHighFPS  float64 // grow above this
	ShrinkStep  float64
	GrowStep    float64
	Deadband    float64 // relative change below which nothing is applied

	FidelityCooldown time.Duration
	EnterLowFPS      float64
	ExitLowFPS       float64

	LowTier bool
}

// DefaultConfig holds the production thresholds.
var DefaultConfig = Config{
	MinRatio:         0.8,
	LowTierMinRatio:  0.66,
	MaxRatio:         2,
	DRSCooldown:      1200 * time.Millisecond,
	DRSLowFPS:        40,
	DRSHighFPS:       55,
	ShrinkStep:       0.9,
	GrowStep:         1.05,
	Deadband:         0.02,
	FidelityCooldown: 1500 * time.Millisecond,
	EnterLowFPS:      24,
	ExitLowFPS:       36,
}

func (c Config) withDefaults() Config {
	d := DefaultConfig
	if c.MinRatio > 0 {
		d.MinRatio = c.MinRatio
	}
	if c.LowTierMinRatio > 0 {
		d.LowTierMinRatio = c.LowTierMinRatio
	}
	if c.MaxRatio > 0 {
		d.MaxRatio = c.MaxRatio
	}
	if c.DRSCooldown > 0 {
		d.DRSCooldown = c.DRSCooldown
	}
	if c.DRSLowFPS > 0 {
		d.DRSLowFPS = c.DRSLowFPS
	}
	if c.DRSHighFPS > 0 {
		d.DRSHighFPS = c.DRSHighFPS
	}
	if c.ShrinkStep > 0 {
		d.ShrinkStep = c.ShrinkStep
	}
	if c.GrowStep > 0 {
		d.GrowStep = c.GrowStep
	}
	if c.Deadband > 0 {
		d.Deadband = c.Deadband
	}
	if c.FidelityCooldown > 0 {
		d.FidelityCooldown = c.FidelityCooldown
	}
	if c.EnterLowFPS > 0 {
		d.EnterLowFPS = c.EnterLowFPS
	}
	if c.ExitLowFPS > 0 {
		d.ExitLowFPS = c.ExitLowFPS
	}
	d.LowTier = c.LowTier
	return d
}

// DetectLowTier classifies hardware from the display scale factor and the
// smaller window dimension.
func DetectLowTier(deviceScale float64, width, height int) bool {
	return deviceScale <= 1.25 || min(width, height) < 900
}

// Change reports what one Update did.
type Change struct {
	Resized bool    // pixel ratio moved
	Ratio   float64 // ratio after the update
	Toggled bool    // fidelity mode flipped
	LowMode bool    // fidelity mode after the update
	FPS     float64 // smoothed fps the decision was made on
}

// Governor runs dynamic resolution scaling and the low-fidelity toggle.
// Both are gated by their own cooldown so neither oscillates.
type Governor struct {
	cfg      Config
	min, max float64
	ratio    float64
	low      bool

	lastResize time.Time
	lastToggle time.Time

	targets []FidelityTarget
}

// NewGovernor starts at the maximum ratio with both cooldowns counting
// from now.
func NewGovernor(cfg Config, now time.Time) *Governor {
	cfg = cfg.withDefaults()
	lo := cfg.MinRatio
	if cfg.LowTier {
		lo = cfg.LowTierMinRatio
	}
	hi := math.Max(cfg.MaxRatio, lo)
	return &Governor{
		cfg:        cfg,
		min:        lo,
		max:        hi,
		ratio:      hi,
		lastResize: now,
		lastToggle: now,
	}
}

// Attach registers materials that low-fidelity mode strips and restores.
// A target attached while low mode is active is stripped immediately.
func (g *Governor) Attach(t ...FidelityTarget) {
	for _, x := range t {
		if g.low {
			x.LowerFidelity()
		}
	}
	g.targets = append(g.targets, t...)
}

// Ratio returns the current render pixel ratio.
func (g *Governor) Ratio() float64 { return g.ratio }

// Bounds returns the DRS clamp range.
func (g *Governor) Bounds() (lo, hi float64) { return g.min, g.max }

// LowMode reports whether low-fidelity mode is on.
func (g *Governor) LowMode() bool { return g.low }

// Update feeds the smoothed fps for the tick at now.
func (g *Governor) Update(now time.Time, fps float64) Change {
	ch := Change{FPS: fps}
	ch.Resized = g.scaleResolution(now, fps)
	ch.Toggled = g.toggleFidelity(now, fps)
	ch.Ratio = g.ratio
	ch.LowMode = g.low
	return ch
}

func (g *Governor) scaleResolution(now time.Time, fps float64) bool {
	if now.Sub(g.lastResize) <= g.cfg.DRSCooldown {
		return false
	}
	next := g.ratio
	switch {
	case fps < g.cfg.DRSLowFPS:
		next = g.ratio * g.cfg.ShrinkStep
	case fps > g.cfg.DRSHighFPS:
		next = g.ratio * g.cfg.GrowStep
	}
	next = math.Max(g.min, math.Min(g.max, next))
	if math.Abs(next-g.ratio) <= g.cfg.Deadband*g.ratio {
		return false
	}
	g.ratio = next
	g.lastResize = now
	return true
}

func (g *Governor) toggleFidelity(now time.Time, fps float64) bool {
	if now.Sub(g.lastToggle) <= g.cfg.FidelityCooldown {
		return false
	}
	switch {
	case !g.low && fps < g.cfg.EnterLowFPS:
		g.low = true
		for _, t := range g.targets {
			t.LowerFidelity()
		}
	case g.low && fps > g.cfg.ExitLowFPS:
		g.low = false
		for _, t := range g.targets {
			t.RestoreFidelity()
		}
	default:
		return false
	}
	g.lastToggle = now
	return true
}
