package main

import (
	"context"
	"math/rand"
	"os/exec"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/solarfolio/solarfolio/assets"
	"github.com/solarfolio/solarfolio/internal/camera"
	"github.com/solarfolio/solarfolio/internal/logging"
	"github.com/solarfolio/solarfolio/internal/pointer"
	"github.com/solarfolio/solarfolio/internal/render"
	"github.com/solarfolio/solarfolio/internal/scene"

	assetload "github.com/solarfolio/solarfolio/internal/assets"
)

const (
	dragThreshold = 4 // pixels before a press becomes a drag
	frameBudget   = time.Second / 60
)

// Game is the Ebitengine game struct. It owns input and drawing; all scene
// state lives in the scene.
type Game struct {
	ctx context.Context
	env *env

	scene    *scene.State
	renderer *render.Renderer
	controls *camera.ManualControls
	tracker  *assetload.Tracker
	queued   chan struct{} // closed once every load is tracked
	released bool
	preload  *preload

	width, height int
	cursor        pointer.Cursor
	opened        string

	pressX, pressY int
	lastX, lastY   int
	dragging       bool
}

func runWindow(ctx context.Context, f *flags) error {
	e, err := setup(f)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	e.serveMetrics(ctx)

	w := e.cfg.Window
	ebiten.SetWindowSize(w.Width, w.Height)
	ebiten.SetWindowTitle(w.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	g := &Game{ctx: ctx, env: e, width: w.Width, height: w.Height, controls: camera.NewManualControls()}
	e.log.Info(ctx, "starting", logging.String("title", w.Title), logging.Int("width", w.Width), logging.Int("height", w.Height))
	err = ebiten.RunGame(g)
	if g.tracker != nil {
		cancel()
		<-g.queued
		g.tracker.Wait()
	}
	return err
}

// start builds the scene once the graphics context, and with it the
// monitor scale, is available.
func (g *Game) start(now time.Time) {
	cfg := g.env.cfg
	scale := cfg.Window.DeviceScale
	if scale <= 0 {
		scale = ebiten.Monitor().DeviceScaleFactor()
	}
	g.scene = scene.New(g.env.manifest, scene.Options{
		Lens:         cfg.Lens(g.width, g.height),
		Perf:         cfg.PerfConfig(scale, g.width, g.height),
		Timing:       cfg.Timing(),
		Pointer:      cfg.PointerConfig(),
		FlyTo:        cfg.Camera.FlyTo,
		ToOverview:   cfg.Camera.ToOverview,
		ReadyTimeout: cfg.Moons.ReadyTimeout,
		TextureSize:  cfg.Assets.TextureSize,
		Controls:     g.controls,
		Rand:         rand.New(rand.NewSource(now.UnixNano())),
		Logger:       g.env.log,
		Metrics:      g.env.metrics,
	}, now)
	g.scene.MarkUntextured()
	g.renderer = render.NewRenderer()

	src := assetload.Source{Dir: cfg.Assets.Dir, Embedded: assets.Files}
	g.tracker = assetload.NewTracker(g.ctx, cfg.Assets.Concurrency)
	names := g.env.manifest.AssetNames()
	g.preload = newPreload(len(names))
	g.tracker.OnProgress(g.preload.observe)
	g.queued = make(chan struct{})
	go func() {
		defer close(g.queued)
		for _, name := range names {
			g.tracker.Track(name, assetload.Capped(src.Image(name), cfg.Assets.TextureSize))
		}
		g.tracker.Close()
	}()
	g.env.log.Info(g.ctx, "loading assets", logging.Int("count", len(names)), logging.String("dir", cfg.Assets.Dir))
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	now := time.Now()
	if g.scene == nil {
		g.start(now)
	}
	s := g.scene

	for _, r := range g.tracker.Drain() {
		s.ApplyAsset(now, r)
	}
	if !g.released && g.tracker.Done() {
		g.released = true
		s.MarkAssetsReady(now)
		loaded, total := g.tracker.Progress()
		g.env.log.Info(g.ctx, "assets loaded", logging.Int("loaded", loaded), logging.Int("total", total))
	}

	s.Resize(now, g.width, g.height)
	g.handleKeys(now)
	g.handlePointer()

	visible := !ebiten.IsWindowMinimized()
	s.Tick(now, visible)

	if c := s.Picker.Cursor(); c != g.cursor {
		g.cursor = c
		shape := ebiten.CursorShapeDefault
		if c == pointer.CursorPointer {
			shape = ebiten.CursorShapePointer
		}
		ebiten.SetCursorShape(shape)
	}

	s.RunIdle(time.Now(), frameBudget-time.Since(now))
	return nil
}

func (g *Game) handleKeys(now time.Time) {
	s := g.scene
	for i, sec := range s.Manifest.Sections {
		if i > 8 {
			break
		}
		if inpututil.IsKeyJustPressed(ebiten.Key1 + ebiten.Key(i)) {
			s.FocusSection(now, sec.Name)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if href, ok := s.Activate(); ok {
			g.open(href)
		}
	}
}

func (g *Game) handlePointer() {
	s := g.scene
	x, y := ebiten.CursorPosition()
	inside := x >= 0 && y >= 0 && x < g.width && y < g.height && ebiten.IsFocused()
	s.PointerMove(float64(x), float64(y), inside)

	if _, dy := ebiten.Wheel(); dy != 0 {
		g.controls.Zoom(-dy)
	}

	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		g.pressX, g.pressY = x, y
		g.lastX, g.lastY = x, y
		g.dragging = false
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		if !g.dragging && abs(x-g.pressX)+abs(y-g.pressY) > dragThreshold {
			g.dragging = true
		}
		if g.dragging {
			g.controls.Drag(float64(x-g.lastX), float64(y-g.lastY))
		}
		g.lastX, g.lastY = x, y
	case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		if !g.dragging {
			if href, ok := s.Click(float64(x), float64(y)); ok {
				g.open(href)
			}
		}
		g.dragging = false
	}
}

// open hands href to the platform's URL opener.
func (g *Game) open(href string) {
	g.opened = href
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", href)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", href)
	default:
		cmd = exec.Command("xdg-open", href)
	}
	if err := cmd.Start(); err != nil {
		g.env.log.Warn(g.ctx, "open link failed", logging.String("href", href), logging.Err(err))
		return
	}
	go func() { _ = cmd.Wait() }()
	g.env.log.Info(g.ctx, "opened link", logging.String("href", href))
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.scene == nil {
		return
	}
	loaded, total := g.preload.status()
	st := render.Status{Loaded: loaded, Total: total, Opened: g.opened}
	g.renderer.Draw(screen, g.scene, st)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width, g.height = max(outsideWidth, 1), max(outsideHeight, 1)
	return g.width, g.height
}

// preload is the loading indicator's view of the tracker. The tracker's
// progress callback writes it from the loading goroutines.
type preload struct {
	loaded, total atomic.Int64
}

func newPreload(total int) *preload {
	p := &preload{}
	p.total.Store(int64(total))
	return p
}

// observe may be called out of order by concurrent loaders; both counts
// only grow.
func (p *preload) observe(loaded, total int) {
	raise(&p.loaded, int64(loaded))
	raise(&p.total, int64(total))
}

func raise(v *atomic.Int64, n int64) {
	for {
		cur := v.Load()
		if n <= cur || v.CompareAndSwap(cur, n) {
			return
		}
	}
}

func (p *preload) status() (loaded, total int) {
	return int(p.loaded.Load()), int(p.total.Load())
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
