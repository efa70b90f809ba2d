package perf

import (
	"math/rand"
	"testing"
	"time"

	"gonum.org/v1/gonum/floats/scalar"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestDRSShrinksAndGrows(t *testing.T) {
	g := NewGovernor(Config{MaxRatio: 2}, epoch)
	if g.Ratio() != 2 {
		t.Fatalf("initial ratio = %v, want 2", g.Ratio())
	}

	// Inside the cooldown nothing moves.
	if ch := g.Update(epoch.Add(time.Second), 10); ch.Resized {
		t.Fatalf("resized during cooldown")
	}
	ch := g.Update(epoch.Add(1300*time.Millisecond), 30)
	if !ch.Resized || !scalar.EqualWithinAbs(ch.Ratio, 1.8, 1e-12) {
		t.Fatalf("slow frame: %+v, want ratio 1.8", ch)
	}
	// Cooldown restarts from the change.
	if g.Update(epoch.Add(2*time.Second), 30).Resized {
		t.Fatalf("resized again inside cooldown")
	}
	ch = g.Update(epoch.Add(2600*time.Millisecond), 60)
	if !ch.Resized || !scalar.EqualWithinAbs(ch.Ratio, 1.89, 1e-12) {
		t.Fatalf("fast frame: %+v, want ratio 1.89", ch)
	}
	// Between thresholds the ratio holds.
	if g.Update(epoch.Add(5*time.Second), 50).Resized {
		t.Fatalf("resized at 50 fps")
	}
}

func TestDRSDeadband(t *testing.T) {
	g := NewGovernor(Config{MaxRatio: 1.0, MinRatio: 0.8}, epoch)
	g.ratio = 0.81
	// 0.81*0.9 clamps to 0.8: a 1.2% move is swallowed.
	if g.Update(epoch.Add(2*time.Second), 10).Resized {
		t.Fatalf("applied a change inside the deadband, ratio %v", g.Ratio())
	}
	if g.Ratio() != 0.81 {
		t.Fatalf("ratio = %v, want 0.81", g.Ratio())
	}
}

func TestDRSClampedUnderOscillation(t *testing.T) {
	for _, lowTier := range []bool{false, true} {
		g := NewGovernor(Config{MaxRatio: 1.5, LowTier: lowTier}, epoch)
		lo, hi := g.Bounds()
		now := epoch
		rng := rand.New(rand.NewSource(7))
		for i := 0; i < 5000; i++ {
			now = now.Add(time.Duration(rng.Intn(3000)) * time.Millisecond)
			fps := 10.0
			if i%2 == 1 {
				fps = 100
			}
			if rng.Intn(4) == 0 {
				fps = 10 // bursts of slow frames
			}
			g.Update(now, fps)
			if r := g.Ratio(); r < lo || r > hi {
				t.Fatalf("lowTier=%v step %d: ratio %v outside [%v,%v]", lowTier, i, r, lo, hi)
			}
		}
	}
}

func TestLowTierLowersFloor(t *testing.T) {
	lo, _ := NewGovernor(Config{}, epoch).Bounds()
	loTier, _ := NewGovernor(Config{LowTier: true}, epoch).Bounds()
	if lo != 0.8 || loTier != 0.66 {
		t.Fatalf("floors = %v / %v, want 0.8 / 0.66", lo, loTier)
	}
	if !DetectLowTier(1, 1920, 1080) || !DetectLowTier(2, 800, 600) || DetectLowTier(2, 1920, 1080) {
		t.Fatalf("DetectLowTier misclassified")
	}
}

func TestLowFidelityHysteresis(t *testing.T) {
	g := NewGovernor(Config{}, epoch)
	m := &Material{Displacement: true, BumpScale: 0.7, CloudsVisible: true}
	g.Attach(m)

	if g.Update(epoch.Add(time.Second), 5).Toggled {
		t.Fatalf("toggled inside cooldown")
	}
	ch := g.Update(epoch.Add(1600*time.Millisecond), 20)
	if !ch.Toggled || !ch.LowMode {
		t.Fatalf("did not enter low mode: %+v", ch)
	}
	if m.Displacement || m.CloudsVisible || m.BumpScale != 0.35 {
		t.Fatalf("material not degraded: %+v", m)
	}

	// 30 fps is inside the hysteresis gap.
	if g.Update(epoch.Add(5*time.Second), 30).Toggled {
		t.Fatalf("left low mode at 30 fps")
	}
	ch = g.Update(epoch.Add(6*time.Second), 40)
	if !ch.Toggled || ch.LowMode {
		t.Fatalf("did not leave low mode: %+v", ch)
	}
	if !m.Displacement || !m.CloudsVisible || m.BumpScale != 0.7 {
		t.Fatalf("material not restored exactly: %+v", m)
	}
}

func TestMaterialRestoreIsExact(t *testing.T) {
	m := &Material{Displacement: false, BumpScale: 0.3, CloudsVisible: true}
	m.LowerFidelity()
	m.LowerFidelity() // second strip must not halve again
	if m.BumpScale != 0.15 {
		t.Fatalf("bump = %v after double lower, want 0.15", m.BumpScale)
	}
	m.BumpScale = 9 // something else touched it meanwhile
	m.RestoreFidelity()
	if m.BumpScale != 0.3 || m.Displacement || !m.CloudsVisible || m.Lowered() {
		t.Fatalf("restore = %+v", m)
	}
	m.RestoreFidelity()
	if m.BumpScale != 0.3 {
		t.Fatalf("second restore changed bump to %v", m.BumpScale)
	}
}

func TestAttachDuringLowMode(t *testing.T) {
	g := NewGovernor(Config{}, epoch)
	g.Update(epoch.Add(2*time.Second), 10)
	if !g.LowMode() {
		t.Fatal("expected low mode")
	}
	m := &Material{BumpScale: 1, CloudsVisible: true}
	g.Attach(m)
	if !m.Lowered() || m.CloudsVisible {
		t.Fatalf("late target not degraded: %+v", m)
	}
}
