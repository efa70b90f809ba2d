package render

import (
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/solarfolio/solarfolio/internal/camera"
	"github.com/solarfolio/solarfolio/internal/moon"
	"github.com/solarfolio/solarfolio/internal/scene"
	"github.com/solarfolio/solarfolio/internal/texture"
)

const (
	cellWidth  = 8
	cellHeight = 14

	cloudLift    = 1.012 // cloud shell radius over the surface
	reliefHeight = 0.015 // displacement at full height, fraction of radius
	orbitWidth   = 1
)

// Renderer draws a scene: spheres into an offscreen buffer sized by the
// pixel ratio, then the buffer scaled to the window, then the HUD.
type Renderer struct {
	grid *GridRenderer
	hud  *CellBuffer

	high, low *Sphere
	buffer    *ebiten.Image

	textures map[string]*ebiten.Image
	solids   map[color.NRGBA]*ebiten.Image
	overlays map[*moon.Sprite]*overlayCanvas
	faceless *ebiten.Image

	vs    []ebiten.Vertex
	is    []uint16
	items []Drawable
}

type overlayCanvas struct {
	img *image.NRGBA
	tex *ebiten.Image
}

// NewRenderer allocates GPU resources. Call from inside the game loop.
func NewRenderer() *Renderer {
	return &Renderer{
		grid:     NewGridRenderer(NewFontAtlas(), cellWidth, cellHeight),
		hud:      NewCellBuffer(0, 0),
		high:     NewSphere(HighWidthSegments, HighHeightSegments),
		low:      NewSphere(LowWidthSegments, LowHeightSegments),
		textures: make(map[string]*ebiten.Image),
		solids:   make(map[color.NRGBA]*ebiten.Image),
		overlays: make(map[*moon.Sprite]*overlayCanvas),
	}
}

// Draw renders one frame of s to screen.
func (r *Renderer) Draw(screen *ebiten.Image, s *scene.State, st Status) {
	lens := s.Lens()
	ratio := s.Governor.Ratio()
	bw, bh := BufferSize(lens.Width, lens.Height, ratio)
	r.ensureBuffer(bw, bh)
	r.buffer.Fill(spaceColor)

	proj := s.Projector()
	scale := float64(bw) / float64(max(lens.Width, 1))

	r.drawOrbits(s, proj, scale)
	r.items = CollectDrawables(r.items[:0], s, proj.Pose.Position)
	SortBackToFront(r.items)
	for _, it := range r.items {
		switch it.Kind {
		case DrawSun:
			r.drawSun(s, proj, scale)
		case DrawBody:
			r.drawBody(s, s.Bodies[it.Index], proj, scale)
		case DrawSprite:
			set := s.Sets[it.Set]
			r.drawSprite(s, set, set.Sprites[it.Index], proj, scale)
		}
	}

	var op ebiten.DrawImageOptions
	op.GeoM.Scale(float64(screen.Bounds().Dx())/float64(bw), float64(screen.Bounds().Dy())/float64(bh))
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(r.buffer, &op)

	if s.Target() == scene.Overview {
		r.drawLabels(screen, s, proj)
	}
	r.hud.Resize(screen.Bounds().Dx()/cellWidth, screen.Bounds().Dy()/cellHeight)
	ComposeHUD(r.hud, s, st)
	r.grid.Draw(screen, r.hud)
}

// BufferSize is the offscreen size for a viewport at ratio, never below
// one pixel.
func BufferSize(width, height int, ratio float64) (int, int) {
	return max(1, int(math.Ceil(float64(width)*ratio))), max(1, int(math.Ceil(float64(height)*ratio)))
}

// CollectDrawables appends the sun, every body and every visible sprite,
// including sets still fading out, to items with their distance from eye.
func CollectDrawables(items []Drawable, s *scene.State, eye mgl64.Vec3) []Drawable {
	items = append(items, Drawable{Kind: DrawSun, Dist: eye.Sub(s.Sun.Position).Len()})
	for i, b := range s.Bodies {
		items = append(items, Drawable{Kind: DrawBody, Index: i, Dist: eye.Sub(b.Position).Len()})
	}
	for si, set := range s.Sets {
		host := s.Bodies[set.Host].Position
		for i, sp := range set.Sprites {
			if !sp.Visible || sp.Opacity <= 0 {
				continue
			}
			items = append(items, Drawable{Kind: DrawSprite, Set: si, Index: i, Dist: eye.Sub(host.Add(sp.Position)).Len()})
		}
	}
	return items
}

func (r *Renderer) ensureBuffer(w, h int) {
	if r.buffer != nil {
		if b := r.buffer.Bounds(); b.Dx() == w && b.Dy() == h {
			return
		}
		r.buffer.Deallocate()
	}
	r.buffer = ebiten.NewImage(w, h)
}

func (r *Renderer) drawOrbits(s *scene.State, proj camera.Projector, scale float64) {
	for _, b := range s.Bodies {
		var px, py float32
		prev := false
		for _, p := range b.Path {
			sx, sy, ok := proj.ScreenPoint(p)
			x, y := float32(sx*scale), float32(sy*scale)
			if ok && prev {
				vector.StrokeLine(r.buffer, px, py, x, y, orbitWidth, orbitColor, true)
			}
			px, py, prev = x, y, ok
		}
	}
}

func (r *Renderer) sphere(s *scene.State) *Sphere {
	if s.Governor.LowMode() {
		return r.low
	}
	return r.high
}

func (r *Renderer) drawSun(s *scene.State, proj camera.Projector, scale float64) {
	sun := s.Sun
	tex := r.texture(s, sun.Texture)
	if tex == nil {
		tex = r.solid(sun.Color)
	}
	surf := Surface{
		Center:   sun.Position,
		Radius:   sun.Radius,
		Rotation: sun.Rotation,
		Texture:  tex.Bounds(),
		UOffset:  sun.Scroll,
		Alpha:    1,
		Emissive: true,
	}
	r.drawSurface(tex, r.sphere(s), proj, scale, surf, sun.Position)
}

func (r *Renderer) drawBody(s *scene.State, b *scene.Body, proj camera.Projector, scale float64) {
	tex := r.surfaceTexture(s, b)
	surf := Surface{
		Center:   b.Position,
		Radius:   b.Radius,
		Rotation: b.Rotation,
		Texture:  tex.Bounds(),
		Alpha:    1,
	}
	if h := r.height(s, b); h != nil && b.Material.Displacement {
		surf.Height, surf.Relief = h, reliefHeight
	}
	sph := r.sphere(s)
	r.drawSurface(tex, sph, proj, scale, surf, s.Sun.Position)

	if !b.CloudsVisible() {
		return
	}
	clouds := r.texture(s, b.Clouds.Texture)
	if clouds == nil {
		return
	}
	tilt := mgl64.QuatRotate(b.Elements.AxialTilt, mgl64.Vec3{0, 0, 1})
	r.drawSurface(clouds, sph, proj, scale, Surface{
		Center:   b.Position,
		Radius:   b.Radius * cloudLift,
		Rotation: tilt.Mul(mgl64.QuatRotate(b.Clouds.Angle, mgl64.Vec3{0, 1, 0})),
		Texture:  clouds.Bounds(),
		Alpha:    1,
	}, s.Sun.Position)
}

func (r *Renderer) drawSurface(tex *ebiten.Image, sph *Sphere, proj camera.Projector, scale float64, surf Surface, light mgl64.Vec3) {
	r.vs, r.is = sph.Project(r.vs[:0], r.is[:0], proj, scale, surf, light)
	if len(r.is) == 0 {
		return
	}
	r.buffer.DrawTriangles(r.vs, r.is, tex, &ebiten.DrawTrianglesOptions{
		Address: ebiten.AddressRepeat,
		Filter:  ebiten.FilterLinear,
	})
}

func (r *Renderer) drawSprite(s *scene.State, set *moon.Set, sp *moon.Sprite, proj camera.Projector, scale float64) {
	c := s.Bodies[set.Host].Position.Add(sp.Position)
	edge := sp.WorldSize(proj, c)
	face := r.texture(s, sp.Image)
	if face == nil {
		face = r.placeholderFace()
	}
	r.drawQuad(face, proj, scale, c, edge, float32(sp.Opacity))

	ov := sp.Overlay
	if ov == nil || ov.Opacity <= 0 {
		return
	}
	canvas := r.overlays[sp]
	if canvas == nil {
		canvas = &overlayCanvas{}
		r.overlays[sp] = canvas
	}
	if ov.Dirty || canvas.tex == nil || canvas.tex.Bounds().Dx() != ov.Size {
		canvas.img = PaintOverlay(canvas.img, ov)
		if canvas.tex == nil || canvas.tex.Bounds().Dx() != ov.Size {
			if canvas.tex != nil {
				canvas.tex.Deallocate()
			}
			canvas.tex = ebiten.NewImage(ov.Size, ov.Size)
		}
		canvas.tex.WritePixels(canvas.img.Pix)
	}
	r.drawQuad(canvas.tex, proj, scale, c, edge, float32(ov.Opacity*sp.Opacity))
}

func (r *Renderer) drawQuad(tex *ebiten.Image, proj camera.Projector, scale float64, c mgl64.Vec3, edge float64, alpha float32) {
	var ok bool
	r.vs, r.is, ok = Billboard(r.vs[:0], r.is[:0], proj, scale, c, edge, tex.Bounds(), alpha)
	if !ok {
		return
	}
	r.buffer.DrawTriangles(r.vs, r.is, tex, &ebiten.DrawTrianglesOptions{Filter: ebiten.FilterLinear})
}

func (r *Renderer) drawLabels(screen *ebiten.Image, s *scene.State, proj camera.Projector) {
	sx := float64(screen.Bounds().Dx()) / float64(max(s.Lens().Width, 1))
	sy := float64(screen.Bounds().Dy()) / float64(max(s.Lens().Height, 1))
	for _, b := range s.Bodies {
		x, y, ok := proj.ScreenPoint(b.Position.Add(mgl64.Vec3{0, b.Radius * 1.4, 0}))
		if !ok {
			continue
		}
		w := float64(len(b.Name) * cellWidth)
		r.grid.DrawLabel(screen, b.Name, ColorDim, x*sx-w/2, y*sy-cellHeight)
	}
}

// texture uploads a resolved scene image on first use.
func (r *Renderer) texture(s *scene.State, name string) *ebiten.Image {
	if name == "" {
		return nil
	}
	if t, ok := r.textures[name]; ok {
		return t
	}
	img, ok := s.Textures[name]
	if !ok {
		return nil
	}
	t := ebiten.NewImageFromImage(img)
	r.textures[name] = t
	return t
}

// surfaceTexture is the planet map, or its embossed copy once the scene
// has built one for the current bump scale.
func (r *Renderer) surfaceTexture(s *scene.State, b *scene.Body) *ebiten.Image {
	if b.Relief != "" {
		if t := r.texture(s, b.Relief); t != nil {
			return t
		}
	}
	if t := r.texture(s, b.Texture); t != nil {
		return t
	}
	return r.solid(b.Color)
}

// height returns the body's derived height map, nil until it is built.
func (r *Renderer) height(s *scene.State, b *scene.Body) *image.Gray {
	if b.HeightMap == "" {
		return nil
	}
	h, _ := s.Textures[b.HeightMap].(*image.Gray)
	return h
}

func (r *Renderer) solid(c color.NRGBA) *ebiten.Image {
	if c.A == 0 {
		c = fallbackPlanet
	}
	if t, ok := r.solids[c]; ok {
		return t
	}
	t := ebiten.NewImage(2, 2)
	t.Fill(c)
	r.solids[c] = t
	return t
}

func (r *Renderer) placeholderFace() *ebiten.Image {
	if r.faceless == nil {
		r.faceless = ebiten.NewImageFromImage(texture.Placeholder(moon.DefaultPixels, fallbackPlanet))
	}
	return r.faceless
}
