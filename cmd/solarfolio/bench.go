package main

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/solarfolio/solarfolio/internal/config"
	"github.com/solarfolio/solarfolio/internal/content"
	"github.com/solarfolio/solarfolio/internal/logging"
	"github.com/solarfolio/solarfolio/internal/scene"
)

// benchReport summarizes a headless governor run.
type benchReport struct {
	Frames           int
	MinRatio         float64
	MaxRatio         float64
	FinalRatio       float64
	Resizes, Toggles int
	LowMode          bool
	Focused          int
	Events           []scene.Event
}

func (r benchReport) write(w io.Writer) {
	fmt.Fprintf(w, "frames   %d\n", r.Frames)
	fmt.Fprintf(w, "ratio    min %.2f  max %.2f  final %.2f\n", r.MinRatio, r.MaxRatio, r.FinalRatio)
	fmt.Fprintf(w, "resizes  %d\n", r.Resizes)
	fmt.Fprintf(w, "toggles  %d (low mode %v)\n", r.Toggles, r.LowMode)
	fmt.Fprintf(w, "focused  %d sections\n", r.Focused)
	for _, ev := range r.Events {
		fmt.Fprintf(w, "  %s\n", ev.Text)
	}
}

// runBench drives the scene without a window. Simulated time advances by
// 1/fps per frame, with fps taken from profile in equal segments, and the
// focus cycles through sections so flights and moon sets run too.
func runBench(m *content.Manifest, cfg config.Config, log logging.Logger, start time.Time) benchReport {
	w, h := cfg.Window.Width, cfg.Window.Height
	scale := max(cfg.Window.DeviceScale, 1)
	s := scene.New(m, scene.Options{
		Lens:         cfg.Lens(w, h),
		Perf:         cfg.PerfConfig(scale, w, h),
		Timing:       cfg.Timing(),
		Pointer:      cfg.PointerConfig(),
		FlyTo:        cfg.Camera.FlyTo,
		ToOverview:   cfg.Camera.ToOverview,
		ReadyTimeout: cfg.Moons.ReadyTimeout,
		TextureSize:  64,
		Rand:         rand.New(rand.NewSource(1)),
		Logger:       log,
	}, start)
	s.MarkUntextured()
	s.MarkAssetsReady(start)

	frames := max(cfg.Bench.Frames, 1)
	profile := cfg.Bench.Profile
	if len(profile) == 0 {
		profile = []float64{60}
	}
	segment := max(frames/len(profile), 1)
	focusEvery := max(frames/(len(m.Sections)+1), 1)

	r := benchReport{Frames: frames, MinRatio: math.Inf(1), MaxRatio: math.Inf(-1)}
	now := start
	for i := range frames {
		fps := profile[min(i/segment, len(profile)-1)]
		now = now.Add(time.Duration(float64(time.Second) / fps))

		if i > 0 && i%focusEvery == 0 && len(m.Sections) > 0 {
			sec := m.Sections[r.Focused%len(m.Sections)]
			if s.FocusSection(now, sec.Name) {
				r.Focused++
			}
		}

		f := s.Tick(now, true)
		s.RunIdle(now, 0)
		if f.Governor.Resized {
			r.Resizes++
		}
		if f.Governor.Toggled {
			r.Toggles++
		}
		ratio := s.Governor.Ratio()
		r.MinRatio = min(r.MinRatio, ratio)
		r.MaxRatio = max(r.MaxRatio, ratio)
	}
	r.FinalRatio = s.Governor.Ratio()
	r.LowMode = s.Governor.LowMode()
	r.Events = s.Log.Recent(10)
	return r
}

func newBenchCmd(f *flags) *cobra.Command {
	var frames int
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run the scene headless against a synthetic frame-rate profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(f)
			if err != nil {
				return err
			}
			if frames > 0 {
				e.cfg.Bench.Frames = frames
			}
			e.log.Info(cmd.Context(), "bench starting", logging.Int("frames", e.cfg.Bench.Frames), logging.Int("segments", len(e.cfg.Bench.Profile)))
			r := runBench(e.manifest, e.cfg, e.log, time.Now())
			r.write(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().IntVar(&frames, "frames", 0, "frames to simulate (default from config)")
	return cmd
}
