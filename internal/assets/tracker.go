package assets

import (
	"context"
	"image"
	"sync"

	"golang.org/x/sync/errgroup"
)

// LoadFunc produces one decoded image.
type LoadFunc func(ctx context.Context) (image.Image, error)

// Result is a finished load. Img is nil when the load failed; the scene
// substitutes a placeholder and carries on.
type Result struct {
	Name string
	Img  image.Image
	Err  error
}

// Tracker runs asset loads in the background and publishes their results
// for the frame loop to collect. A failed load still counts as finished.
type Tracker struct {
	ctx   context.Context
	group *errgroup.Group

	mu       sync.Mutex
	total    int
	loaded   int
	done     []Result
	progress func(loaded, total int)
	closed   bool

	ready     chan struct{}
	readyOnce sync.Once
}

// NewTracker starts an empty tracker. At most limit loads run at once;
// limit <= 0 means no limit.
func NewTracker(ctx context.Context, limit int) *Tracker {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	return &Tracker{ctx: gctx, group: g, ready: make(chan struct{})}
}

// OnProgress installs a callback run after every finished load. It runs on
// the loading goroutine.
func (t *Tracker) OnProgress(fn func(loaded, total int)) {
	t.mu.Lock()
	t.progress = fn
	t.mu.Unlock()
}

// Track schedules load under name. It blocks while the concurrency limit
// is saturated.
func (t *Tracker) Track(name string, load LoadFunc) {
	t.mu.Lock()
	t.total++
	t.mu.Unlock()

	t.group.Go(func() error {
		img, err := load(t.ctx)
		if err != nil {
			img = nil
		}
		t.finish(Result{Name: name, Img: img, Err: err})
		// Failures are reported through Result, never through the group,
		// so one bad texture does not cancel the rest.
		return nil
	})
}

func (t *Tracker) finish(r Result) {
	t.mu.Lock()
	t.loaded++
	t.done = append(t.done, r)
	loaded, total, fn := t.loaded, t.total, t.progress
	complete := t.closed && loaded == total
	t.mu.Unlock()

	if fn != nil {
		fn(loaded, total)
	}
	if complete {
		t.markReady()
	}
}

// Close declares that no more loads will be tracked. Ready fires once the
// tracked loads have all finished, immediately if there were none.
func (t *Tracker) Close() {
	t.mu.Lock()
	t.closed = true
	complete := t.loaded == t.total
	t.mu.Unlock()
	if complete {
		t.markReady()
	}
}

func (t *Tracker) markReady() {
	t.readyOnce.Do(func() { close(t.ready) })
}

// Ready is closed when every tracked load has finished after Close.
func (t *Tracker) Ready() <-chan struct{} { return t.ready }

// Done polls Ready without blocking.
func (t *Tracker) Done() bool {
	select {
	case <-t.ready:
		return true
	default:
		return false
	}
}

// Progress returns finished and total load counts.
func (t *Tracker) Progress() (loaded, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loaded, t.total
}

// Drain returns the results finished since the last call. The frame loop
// calls it once per tick.
func (t *Tracker) Drain() []Result {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.done
	t.done = nil
	return out
}

// Wait blocks until every tracked load has returned.
func (t *Tracker) Wait() {
	_ = t.group.Wait()
}
