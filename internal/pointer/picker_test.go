package pointer

import (
	"math/rand"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/solarfolio/solarfolio/internal/camera"
	"github.com/solarfolio/solarfolio/internal/moon"
	"github.com/solarfolio/solarfolio/internal/tween"
)

var t0 = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	picker *Picker
	sched  *tween.Scheduler
	proj   camera.Projector
	plain  *moon.Sprite // no pills, in front
	behind *moon.Sprite // same line of sight, farther away
	pills  *moon.Sprite // one link pill
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	sched := tween.NewScheduler()
	host := mgl64.Vec3{}
	p := NewPicker(DefaultConfig, sched, func(int) mgl64.Vec3 { return host })

	plain := moon.NewSprite(0, "Battleship", "", "https://example.com/battleship", "", nil)
	behind := moon.NewSprite(1, "Hidden", "", "https://example.com/behind", "", nil)
	pills := moon.NewSprite(2, "Paper", "", "", "", []moon.Link{{Text: "PDF", Href: "static/pdf/paper.pdf"}})
	plain.Position = mgl64.Vec3{0, 0, 10}
	behind.Position = mgl64.Vec3{0, 0, 0}
	pills.Position = mgl64.Vec3{15, 0, 0}
	for _, sp := range []*moon.Sprite{plain, behind, pills} {
		sp.Visible, sp.Opacity = true, 1
		sp.Size, sp.Locked = 6, true
	}
	set := moon.NewSet("projects", 0, []*moon.Sprite{plain, behind, pills}, sched, rand.New(rand.NewSource(1)))
	p.Register(set)

	return &fixture{
		picker: p,
		sched:  sched,
		proj:   camera.NewProjector(camera.NewPose(mgl64.Vec3{0, 0, 50}, host), camera.DefaultLens),
		plain:  plain,
		behind: behind,
		pills:  pills,
	}
}

// pillPoint returns a viewport point at canvas (cx, cy) of the pill
// sprite, drawn at its hovered size.
func (f *fixture) pillPoint(t *testing.T, cx, cy float64) (float64, float64) {
	t.Helper()
	was := f.pills.Hovered
	f.pills.Hovered = true
	rect, ok := ScreenRect(f.proj, f.pills.Position, f.pills)
	f.pills.Hovered = was
	if !ok {
		t.Fatal("pill sprite off screen")
	}
	size := float64(f.pills.Overlay.Size)
	return rect.Left + cx/size*rect.Width, rect.Top + cy/size*rect.Height
}

func (f *fixture) pillCenter(t *testing.T) (float64, float64) {
	t.Helper()
	h := f.pills.Overlay.Hotspots[0].Rect
	return f.pillPoint(t, float64(h.Min.X+h.Max.X)/2, float64(h.Min.Y+h.Max.Y)/2)
}

func TestRegisterCreatesEntities(t *testing.T) {
	f := newFixture(t)
	if n := f.picker.Len(); n != 3 {
		t.Fatalf("Len = %d, want 3", n)
	}
}

func TestHoverPicksNearest(t *testing.T) {
	f := newFixture(t)
	f.picker.Move(640, 360, true)
	f.picker.Update(t0, f.proj)
	if got := f.picker.Hovered(); got != f.plain {
		t.Fatalf("hovered = %v, want the front sprite", got)
	}
	if !f.plain.Hovered || f.behind.Hovered {
		t.Fatalf("hover flags: front=%v behind=%v", f.plain.Hovered, f.behind.Hovered)
	}
	if f.picker.Cursor() != CursorPointer {
		t.Fatalf("cursor = %v", f.picker.Cursor())
	}
	f.sched.Advance(250 * time.Millisecond)
	if f.plain.Overlay.Opacity != 1 {
		t.Fatalf("overlay opacity = %v after fade", f.plain.Overlay.Opacity)
	}
}

func TestHoverThrottled(t *testing.T) {
	f := newFixture(t)
	f.picker.Move(640, 360, true)
	f.picker.Update(t0, f.proj)

	f.picker.Move(5, 5, true)
	f.picker.Update(t0.Add(10*time.Millisecond), f.proj)
	if f.picker.Hovered() != f.plain {
		t.Fatalf("hover re-evaluated inside the throttle window")
	}
	f.picker.Update(t0.Add(45*time.Millisecond), f.proj)
	if f.picker.Hovered() != nil || f.picker.Cursor() != CursorDefault {
		t.Fatalf("hover not cleared once the throttle allowed: %v", f.picker.Hovered())
	}
	if f.plain.Hovered {
		t.Fatalf("sprite kept its hover flag")
	}
}

func TestPauseWindowSuppressesPicking(t *testing.T) {
	f := newFixture(t)
	f.picker.Pause(t0)
	f.picker.Move(640, 360, true)
	f.picker.Update(t0.Add(100*time.Millisecond), f.proj)
	if f.picker.Hovered() != nil {
		t.Fatalf("picked during the pause window")
	}
	f.picker.Update(t0.Add(500*time.Millisecond), f.proj)
	if f.picker.Hovered() != f.plain {
		t.Fatalf("hover did not resume after the pause")
	}
}

func TestInvisibleSpritesNotPicked(t *testing.T) {
	f := newFixture(t)
	f.plain.Opacity = 0
	f.picker.Move(640, 360, true)
	f.picker.Update(t0, f.proj)
	if f.picker.Hovered() != f.behind {
		t.Fatalf("hovered = %v, want the sprite behind the faded one", f.picker.Hovered())
	}
	f.behind.Visible = false
	if href, ok := f.picker.Click(640, 360, f.proj); ok {
		t.Fatalf("clicked %q through invisible sprites", href)
	}
}

func TestLeavingViewportClearsHover(t *testing.T) {
	f := newFixture(t)
	f.picker.Move(640, 360, true)
	f.picker.Update(t0, f.proj)
	f.picker.Move(-1, -1, false)
	f.picker.Update(t0.Add(time.Millisecond), f.proj)
	if f.picker.Hovered() != nil || f.picker.Cursor() != CursorDefault {
		t.Fatalf("hover survived leaving the viewport")
	}
}

func TestClickDefaultHref(t *testing.T) {
	f := newFixture(t)
	href, ok := f.picker.Click(640, 360, f.proj)
	if !ok || href != f.plain.Href {
		t.Fatalf("Click = %q %v, want %q", href, ok, f.plain.Href)
	}
	if _, ok := f.picker.Click(20, 20, f.proj); ok {
		t.Fatalf("click on empty space resolved a link")
	}

	f.picker.Move(640, 360, true)
	f.picker.Update(t0, f.proj)
	if href, ok := f.picker.Activate(); !ok || href != f.plain.Href {
		t.Fatalf("Activate = %q %v", href, ok)
	}
}

func TestHotspotHoverAndClick(t *testing.T) {
	f := newFixture(t)
	// Hover the body first; the enlarged sprite then reaches the pill.
	bx, by, _ := f.proj.ScreenPoint(f.pills.Position)
	f.picker.Move(bx, by, true)
	f.picker.Update(t0, f.proj)
	x, y := f.pillCenter(t)

	f.picker.Move(x, y, true)
	f.picker.Update(t0.Add(100*time.Millisecond), f.proj)
	if f.picker.Hovered() != f.pills {
		t.Fatalf("pill point did not hover its sprite")
	}
	if f.pills.Overlay.Hover != 0 || f.picker.Cursor() != CursorPointer {
		t.Fatalf("hotspot hover=%d cursor=%v", f.pills.Overlay.Hover, f.picker.Cursor())
	}
	if href, ok := f.picker.Click(x, y, f.proj); !ok || href != "static/pdf/paper.pdf" {
		t.Fatalf("pill click = %q %v", href, ok)
	}

	// The sprite body is not a link when it carries pills.
	cx, cy, _ := f.proj.ScreenPoint(f.pills.Position)
	f.picker.Move(cx, cy, true)
	f.picker.Update(t0.Add(time.Second), f.proj)
	if f.pills.Overlay.Hover != -1 || f.picker.Cursor() != CursorDefault {
		t.Fatalf("body hover=%d cursor=%v", f.pills.Overlay.Hover, f.picker.Cursor())
	}
	if _, ok := f.picker.Click(cx, cy, f.proj); ok {
		t.Fatalf("body click opened a link")
	}
	if _, ok := f.picker.Activate(); ok {
		t.Fatalf("keyboard activated a sprite with pills")
	}
}

func TestHotspotUsesHoveredRectOnFirstFrame(t *testing.T) {
	f := newFixture(t)
	h := f.pills.Overlay.Hotspots[0].Rect
	x, y := f.pillPoint(t, float64(h.Min.X)+1, float64(h.Min.Y)+1)

	small, ok := ScreenRect(f.proj, f.pills.Position, f.pills)
	if !ok || !small.Contains(x, y) {
		t.Fatalf("point (%.1f, %.1f) outside the unhovered sprite %+v", x, y, small)
	}
	if cx, cy, _ := CanvasPoint(small, f.pills.Overlay.Size, x, y); f.pills.Overlay.HotspotAt(cx, cy) >= 0 {
		t.Fatalf("point already on the pill at the unhovered size")
	}

	f.picker.Move(x, y, true)
	f.picker.Update(t0, f.proj)
	if f.picker.Hovered() != f.pills {
		t.Fatalf("hovered = %v, want the pill sprite", f.picker.Hovered())
	}
	if f.pills.Overlay.Hover != 0 || f.picker.Cursor() != CursorPointer {
		t.Fatalf("first frame hover=%d cursor=%v, want pill 0", f.pills.Overlay.Hover, f.picker.Cursor())
	}
	if href, ok := f.picker.Click(x, y, f.proj); !ok || href != "static/pdf/paper.pdf" {
		t.Fatalf("click = %q %v", href, ok)
	}
}

func TestCanvasPoint(t *testing.T) {
	r := Rect{Left: 100, Top: 50, Width: 200, Height: 100}
	cx, cy, ok := CanvasPoint(r, 128, 200, 100)
	if !ok || cx != 64 || cy != 64 {
		t.Fatalf("CanvasPoint = %v,%v,%v", cx, cy, ok)
	}
	if _, _, ok := CanvasPoint(r, 128, 99, 100); ok {
		t.Fatalf("point left of rect mapped")
	}
}
