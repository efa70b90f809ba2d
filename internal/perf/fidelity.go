package perf

// FidelityTarget is anything low-fidelity mode can degrade. LowerFidelity
// saves whatever it changes so RestoreFidelity puts back the exact values.
// Both are idempotent.
type FidelityTarget interface {
	LowerFidelity()
	RestoreFidelity()
}

// Material is the per-body surface setup the governor degrades: the
// displacement map is dropped, bump intensity halved and clouds hidden.
type Material struct {
	Displacement  bool
	BumpScale     float64
	CloudsVisible bool

	saved *materialSnapshot
}

type materialSnapshot struct {
	displacement  bool
	bumpScale     float64
	cloudsVisible bool
}

// LowerFidelity snapshots the material and strips it. A second call before
// RestoreFidelity does nothing.
func (m *Material) LowerFidelity() {
	if m.saved != nil {
		return
	}
	m.saved = &materialSnapshot{
		displacement:  m.Displacement,
		bumpScale:     m.BumpScale,
		cloudsVisible: m.CloudsVisible,
	}
	m.Displacement = false
	m.BumpScale *= 0.5
	m.CloudsVisible = false
}

// RestoreFidelity puts the snapshot back.
func (m *Material) RestoreFidelity() {
	if m.saved == nil {
		return
	}
	m.Displacement = m.saved.displacement
	m.BumpScale = m.saved.bumpScale
	m.CloudsVisible = m.saved.cloudsVisible
	m.saved = nil
}

// Lowered reports whether a snapshot is held.
func (m *Material) Lowered() bool { return m.saved != nil }
