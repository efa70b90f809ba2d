package moon

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/solarfolio/solarfolio/internal/camera"
)

// HoverScale enlarges the hovered moon at draw time.
const HoverScale = 1.35

// LockSize fixes each sprite's world size so it spans about pixels on
// screen once the camera has settled on the host, and resizes overlays to
// match. Call after the offsets are final.
func LockSize(sprites []*Sprite, hostPos mgl64.Vec3, hostRadius, pixels float64, lens camera.Lens) {
	proj := camera.NewProjector(camera.PredictFinalPose(hostPos, hostRadius), lens)
	for _, s := range sprites {
		dist := proj.Pose.Position.Sub(hostPos.Add(s.Offset)).Len()
		s.Size = pixels / proj.PixelsPerUnit(dist)
		s.Locked = true
		if s.Overlay != nil {
			s.Overlay.Resize(int(pixels))
		}
	}
}

// WorldSize is the size to draw s at. Locked sprites keep their size;
// others hold BasePixels at the live camera distance.
func (s *Sprite) WorldSize(live camera.Projector, worldPos mgl64.Vec3) float64 {
	hf := 1.0
	if s.Hovered {
		hf = HoverScale
	}
	if s.Locked {
		return s.Size * hf
	}
	dist := live.Pose.Position.Sub(worldPos).Len()
	return s.BasePixels / live.PixelsPerUnit(dist) * hf
}
