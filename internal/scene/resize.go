package scene

import (
	"time"

	"github.com/solarfolio/solarfolio/internal/logging"
)

// Resize records a new viewport size. It is applied on the first tick at
// least the debounce window after the last call, so a drag-resize only
// reconfigures once.
func (s *State) Resize(now time.Time, width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if r := s.resize; r != nil {
		if r.width == width && r.height == height {
			return
		}
	} else if width == s.lens.Width && height == s.lens.Height {
		return
	}
	s.resize = &pendingResize{width: width, height: height, at: now}
}

func (s *State) tickResize(now time.Time) {
	r := s.resize
	if r == nil || now.Sub(r.at) < s.opts.ResizeDebounce {
		return
	}
	s.resize = nil
	s.lens.Width, s.lens.Height = r.width, r.height
	s.log.Debug(s.ctx, "viewport resized", logging.Int("width", r.width), logging.Int("height", r.height))
}
