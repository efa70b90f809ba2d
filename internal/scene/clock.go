package scene

import "time"

// initialFPS seeds the smoothed estimate before any frame was measured.
const initialFPS = 60

// Clock measures frame deltas and a smoothed frame rate. The first tick
// establishes the time origin and reports dt = 0.
type Clock struct {
	origin  time.Time
	last    time.Time
	started bool
	fps     float64
}

// Tick advances to now and returns the seconds since the previous tick.
func (c *Clock) Tick(now time.Time) float64 {
	if !c.started {
		c.started = true
		c.origin, c.last = now, now
		c.fps = initialFPS
	}
	dt := max(0, now.Sub(c.last).Seconds())
	c.last = now
	fps := float64(initialFPS)
	if dt > 0 {
		fps = 1 / dt
	}
	c.fps = c.fps*0.9 + fps*0.1
	return dt
}

// FPS returns the smoothed frame rate.
func (c *Clock) FPS() float64 {
	if !c.started {
		return initialFPS
	}
	return c.fps
}

// Reset moves the time origin to now.
func (c *Clock) Reset(now time.Time) { c.origin = now }

// Elapsed returns seconds since the time origin.
func (c *Clock) Elapsed(now time.Time) float64 {
	if !c.started {
		return 0
	}
	return now.Sub(c.origin).Seconds()
}
