package assets

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"
)

func solid(c color.NRGBA) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < 4; i++ {
		img.SetNRGBA(i%2, i/2, c)
	}
	return img
}

func TestTrackerFailOpen(t *testing.T) {
	tr := NewTracker(context.Background(), 2)
	var calls atomic.Int32
	tr.OnProgress(func(loaded, total int) { calls.Add(1) })

	tr.Track("ok", func(context.Context) (image.Image, error) { return solid(color.NRGBA{R: 255, A: 255}), nil })
	tr.Track("bad", func(context.Context) (image.Image, error) { return nil, errors.New("404") })
	tr.Track("ok2", func(context.Context) (image.Image, error) { return solid(color.NRGBA{G: 255, A: 255}), nil })
	tr.Close()

	select {
	case <-tr.Ready():
	case <-time.After(2 * time.Second):
		t.Fatalf("tracker never became ready")
	}
	if !tr.Done() {
		t.Fatalf("Done = false after Ready")
	}
	if l, n := tr.Progress(); l != 3 || n != 3 {
		t.Fatalf("progress = %d/%d", l, n)
	}
	if calls.Load() != 3 {
		t.Fatalf("progress callbacks = %d", calls.Load())
	}

	res := tr.Drain()
	if len(res) != 3 {
		t.Fatalf("drained %d results", len(res))
	}
	for _, r := range res {
		if r.Name == "bad" && (r.Img != nil || r.Err == nil) {
			t.Fatalf("failed load result = %+v", r)
		}
		if r.Name != "bad" && r.Img == nil {
			t.Fatalf("%s lost its image", r.Name)
		}
	}
	if len(tr.Drain()) != 0 {
		t.Fatalf("second drain not empty")
	}
}

func TestTrackerEmptyIsReady(t *testing.T) {
	tr := NewTracker(context.Background(), 0)
	if tr.Done() {
		t.Fatalf("ready before Close")
	}
	tr.Close()
	if !tr.Done() {
		t.Fatalf("empty tracker not ready after Close")
	}
}

func TestIdleRunsOnSpareOrDeadline(t *testing.T) {
	now := time.Unix(0, 0)
	var q Idle
	var ran []string
	q.Defer(now, 500*time.Millisecond, func() { ran = append(ran, "a") })
	q.Defer(now, 100*time.Millisecond, func() { ran = append(ran, "b") })

	if n := q.Run(now.Add(10*time.Millisecond), 0, time.Millisecond); n != 0 {
		t.Fatalf("ran %d tasks with no spare time", n)
	}
	if n := q.Run(now.Add(150*time.Millisecond), 0, time.Millisecond); n != 1 || ran[0] != "b" {
		t.Fatalf("deadline run = %d %v", n, ran)
	}
	if n := q.Run(now.Add(160*time.Millisecond), 5*time.Millisecond, time.Millisecond); n != 1 || q.Len() != 0 {
		t.Fatalf("spare run = %d, left %d", n, q.Len())
	}
}

func TestSourceDecodesEmbeddedPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(color.NRGBA{B: 200, A: 255})); err != nil {
		t.Fatal(err)
	}
	src := Source{Dir: t.TempDir(), Embedded: fstest.MapFS{"moons/a.png": {Data: buf.Bytes()}}}

	img, err := src.Image("moons/a.png")(context.Background())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 2 {
		t.Fatalf("bounds = %v", b)
	}
	if _, err := src.Image("moons/missing.png")(context.Background()); err == nil {
		t.Fatalf("missing asset decoded")
	}
}

func TestCappedDownscales(t *testing.T) {
	wide := func(context.Context) (image.Image, error) {
		return image.NewNRGBA(image.Rect(0, 0, 400, 200)), nil
	}
	img, err := Capped(wide, 100)(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Fatalf("capped bounds = %v, want 100x50", b)
	}
	img, _ = Capped(wide, 0)(context.Background())
	if img.Bounds().Dx() != 400 {
		t.Fatalf("cap 0 resized the image")
	}

	failing := func(context.Context) (image.Image, error) { return nil, errors.New("gone") }
	if _, err := Capped(failing, 100)(context.Background()); err == nil {
		t.Fatalf("error swallowed")
	}
}
