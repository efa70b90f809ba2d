package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/viper"

	"github.com/solarfolio/solarfolio/internal/camera"
	"github.com/solarfolio/solarfolio/internal/moon"
	"github.com/solarfolio/solarfolio/internal/perf"
	"github.com/solarfolio/solarfolio/internal/pointer"
)

// EnvPrefix is prepended to every environment override, e.g.
// SOLARFOLIO_WINDOW_WIDTH.
const EnvPrefix = "SOLARFOLIO"

// Config is the full runtime configuration.
type Config struct {
	Window   Window   `mapstructure:"window"`
	Camera   Camera   `mapstructure:"camera"`
	Governor Governor `mapstructure:"governor"`
	Moons    Moons    `mapstructure:"moons"`
	Pointer  Pointer  `mapstructure:"pointer"`
	Assets   Assets   `mapstructure:"assets"`
	Log      Log      `mapstructure:"log"`
	Metrics  Metrics  `mapstructure:"metrics"`
	Bench    Bench    `mapstructure:"bench"`
}

type Window struct {
	Width       int     `mapstructure:"width"`
	Height      int     `mapstructure:"height"`
	Title       string  `mapstructure:"title"`
	DeviceScale float64 `mapstructure:"device_scale"` // 0 = ask the monitor
}

type Camera struct {
	FOV        float64       `mapstructure:"fov"` // degrees
	Near       float64       `mapstructure:"near"`
	Far        float64       `mapstructure:"far"`
	FlyTo      time.Duration `mapstructure:"fly_to"`
	ToOverview time.Duration `mapstructure:"to_overview"`
}

// Governor mirrors perf.Config. LowTier is "auto", "on" or "off".
type Governor struct {
	MinRatio        float64 `mapstructure:"min_ratio"`
	LowTierMinRatio float64 `mapstructure:"low_tier_min_ratio"`
	MaxRatio        float64 `mapstructure:"max_ratio"`
	DRSLowFPS       float64 `mapstructure:"drs_low_fps"`
	DRSHighFPS      float64 `mapstructure:"drs_high_fps"`
	EnterLowFPS     float64 `mapstructure:"enter_low_fps"`
	ExitLowFPS      float64 `mapstructure:"exit_low_fps"`
	LowTier         string  `mapstructure:"low_tier"`
}

type Moons struct {
	Orbit        time.Duration `mapstructure:"orbit"`
	Settle       time.Duration `mapstructure:"settle"`
	Fade         time.Duration `mapstructure:"fade"`
	ReadyTimeout time.Duration `mapstructure:"ready_timeout"`
}

type Pointer struct {
	Rate        float64       `mapstructure:"rate"`
	Pause       time.Duration `mapstructure:"pause"`
	OverlayFade time.Duration `mapstructure:"overlay_fade"`
}

type Assets struct {
	Dir         string `mapstructure:"dir"`      // on-disk overrides, optional
	Manifest    string `mapstructure:"manifest"` // empty = embedded
	Concurrency int    `mapstructure:"concurrency"`
	TextureSize int    `mapstructure:"texture_size"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Metrics struct {
	Addr string `mapstructure:"addr"` // empty disables /metrics
}

type Bench struct {
	Frames  int       `mapstructure:"frames"`
	Profile []float64 `mapstructure:"profile"` // fps held for an equal share of frames each
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("window.width", 1280)
	v.SetDefault("window.height", 720)
	v.SetDefault("window.title", "Solarfolio")
	v.SetDefault("window.device_scale", 0)

	v.SetDefault("camera.fov", 45)
	v.SetDefault("camera.near", 0.1)
	v.SetDefault("camera.far", 5000)
	v.SetDefault("camera.fly_to", "1.2s")
	v.SetDefault("camera.to_overview", "1.4s")

	g := perf.DefaultConfig
	v.SetDefault("governor.min_ratio", g.MinRatio)
	v.SetDefault("governor.low_tier_min_ratio", g.LowTierMinRatio)
	v.SetDefault("governor.max_ratio", g.MaxRatio)
	v.SetDefault("governor.drs_low_fps", g.DRSLowFPS)
	v.SetDefault("governor.drs_high_fps", g.DRSHighFPS)
	v.SetDefault("governor.enter_low_fps", g.EnterLowFPS)
	v.SetDefault("governor.exit_low_fps", g.ExitLowFPS)
	v.SetDefault("governor.low_tier", "auto")

	v.SetDefault("moons.orbit", moon.DefaultTiming.Orbit.String())
	v.SetDefault("moons.settle", moon.DefaultTiming.Settle.String())
	v.SetDefault("moons.fade", moon.DefaultTiming.Fade.String())
	v.SetDefault("moons.ready_timeout", "1.2s")

	v.SetDefault("pointer.rate", pointer.DefaultConfig.Rate)
	v.SetDefault("pointer.pause", pointer.DefaultConfig.Pause.String())
	v.SetDefault("pointer.overlay_fade", pointer.DefaultConfig.OverlayFade.String())

	v.SetDefault("assets.dir", "static")
	v.SetDefault("assets.manifest", "")
	v.SetDefault("assets.concurrency", 4)
	v.SetDefault("assets.texture_size", 512)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("metrics.addr", "")

	v.SetDefault("bench.frames", 600)
	v.SetDefault("bench.profile", []float64{60, 60, 30, 18, 18, 45, 60})
}

// Load reads defaults, then the TOML file at path (if non-empty), then
// SOLARFOLIO_* environment variables. With an empty path an optional
// solarfolio.toml in the working directory is picked up.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("solarfolio")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		return fmt.Errorf("camera fov %v outside (0,180)", c.Camera.FOV)
	}
	if c.Governor.MinRatio > c.Governor.MaxRatio {
		return fmt.Errorf("governor min ratio %v above max %v", c.Governor.MinRatio, c.Governor.MaxRatio)
	}
	if c.Governor.EnterLowFPS >= c.Governor.ExitLowFPS {
		return fmt.Errorf("low-fidelity thresholds %v/%v leave no hysteresis", c.Governor.EnterLowFPS, c.Governor.ExitLowFPS)
	}
	switch strings.ToLower(c.Governor.LowTier) {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("governor.low_tier %q (want auto, on or off)", c.Governor.LowTier)
	}
	return nil
}

// Lens builds the camera lens for a viewport.
func (c Config) Lens(width, height int) camera.Lens {
	return camera.Lens{
		FOV:    mgl64.DegToRad(c.Camera.FOV),
		Near:   c.Camera.Near,
		Far:    c.Camera.Far,
		Width:  width,
		Height: height,
	}
}

// PerfConfig converts the governor section. deviceScale and the viewport
// size feed low-tier detection when LowTier is "auto".
func (c Config) PerfConfig(deviceScale float64, width, height int) perf.Config {
	g := perf.DefaultConfig
	g.MinRatio = c.Governor.MinRatio
	g.LowTierMinRatio = c.Governor.LowTierMinRatio
	g.MaxRatio = min(c.Governor.MaxRatio, max(deviceScale, 1))
	g.DRSLowFPS = c.Governor.DRSLowFPS
	g.DRSHighFPS = c.Governor.DRSHighFPS
	g.EnterLowFPS = c.Governor.EnterLowFPS
	g.ExitLowFPS = c.Governor.ExitLowFPS
	switch strings.ToLower(c.Governor.LowTier) {
	case "on":
		g.LowTier = true
	case "off":
		g.LowTier = false
	default:
		g.LowTier = perf.DetectLowTier(deviceScale, width, height)
	}
	return g
}

// Timing converts the moon section.
func (c Config) Timing() moon.Timing {
	return moon.Timing{Orbit: c.Moons.Orbit, Settle: c.Moons.Settle, Fade: c.Moons.Fade}
}

// PointerConfig converts the pointer section.
func (c Config) PointerConfig() pointer.Config {
	return pointer.Config{Rate: c.Pointer.Rate, Pause: c.Pointer.Pause, OverlayFade: c.Pointer.OverlayFade}
}
