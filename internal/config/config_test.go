package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/solarfolio/solarfolio/internal/moon"
)

func TestDefaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no solarfolio.toml here
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Window.Width != 1280 || cfg.Window.Height != 720 {
		t.Fatalf("window = %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Timing() != moon.DefaultTiming {
		t.Fatalf("timing = %+v, want %+v", cfg.Timing(), moon.DefaultTiming)
	}
	if cfg.Pointer.Pause != 450*time.Millisecond || cfg.Moons.ReadyTimeout != 1200*time.Millisecond {
		t.Fatalf("pause=%v ready=%v", cfg.Pointer.Pause, cfg.Moons.ReadyTimeout)
	}
	if len(cfg.Bench.Profile) == 0 {
		t.Fatalf("empty bench profile")
	}
}

func TestFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	body := "[window]\nwidth = 800\nheight = 600\n\n[moons]\norbit = \"1s\"\n\n[governor]\nlow_tier = \"on\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SOLARFOLIO_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Window.Width != 800 || cfg.Moons.Orbit != time.Second {
		t.Fatalf("file values not applied: %+v %+v", cfg.Window, cfg.Moons)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("log level = %q, want env override", cfg.Log.Level)
	}
	pc := cfg.PerfConfig(2, 1920, 1080)
	if !pc.LowTier {
		t.Fatalf("low_tier=on ignored")
	}
}

func TestPerfConfigAutoDetect(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if pc := cfg.PerfConfig(2, 1920, 1080); pc.LowTier || pc.MaxRatio != 2 {
		t.Fatalf("retina desktop = %+v", pc)
	}
	if pc := cfg.PerfConfig(1, 1920, 1080); !pc.LowTier || pc.MaxRatio != 1 {
		t.Fatalf("scale-1 display = %+v", pc)
	}
	if pc := cfg.PerfConfig(3, 800, 1200); !pc.LowTier || pc.MaxRatio != 2 {
		t.Fatalf("small screen = %+v", pc)
	}
	lens := cfg.Lens(640, 480)
	if lens.Width != 640 || lens.Near != 0.1 {
		t.Fatalf("lens = %+v", lens)
	}
}

func TestInvalid(t *testing.T) {
	cases := map[string]string{
		"window":     "[window]\nwidth = 0\n",
		"fov":        "[camera]\nfov = 190\n",
		"hysteresis": "[governor]\nenter_low_fps = 40\nexit_low_fps = 30\n",
		"low tier":   "[governor]\nlow_tier = \"maybe\"\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "c.toml")
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), "invalid config") {
				t.Fatalf("Load err = %v", err)
			}
		})
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("missing explicit file accepted")
	}
}
