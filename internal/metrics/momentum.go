package metrics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/astroprop/internal/dynamo"
	"github.com/san-kum/astroprop/internal/orbits"
)

// MomentumDrift is the largest relative change in the magnitude of specific
// angular momentum since the last reference point.
type MomentumDrift struct {
	name     string
	axial    bool
	initial  map[string]float64
	maxDrift float64
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift", initial: make(map[string]float64)}
}

// NewAxialMomentumDrift tracks h_z, the quantity a J2 field conserves.
func NewAxialMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "axial_momentum_drift", axial: true, initial: make(map[string]float64)}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) momentum(s dynamo.Sample) float64 {
	h := orbits.AngularMomentum(orbits.PosVel(s.State))
	if m.axial {
		return h.Z
	}
	return r3.Norm(h)
}

func (m *MomentumDrift) Observe(id string, s dynamo.Sample) {
	if len(s.State) < 6 {
		return
	}
	h := m.momentum(s)
	ref, ok := m.initial[id]
	if !ok {
		m.initial[id] = h
		return
	}
	if ref != 0 {
		m.maxDrift = math.Max(m.maxDrift, math.Abs(h-ref)/math.Abs(ref))
	}
}

func (m *MomentumDrift) Rebase(id string, s dynamo.Sample) {
	if len(s.State) < 6 {
		return
	}
	m.initial[id] = m.momentum(s)
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = make(map[string]float64)
	m.maxDrift = 0
}

// MinRadius records the lowest radius reached by any spacecraft.
type MinRadius struct {
	min float64
}

func NewMinRadius() *MinRadius { return &MinRadius{min: math.Inf(1)} }

func (m *MinRadius) Name() string { return "min_radius" }

func (m *MinRadius) Observe(id string, s dynamo.Sample) {
	if len(s.State) < 3 {
		return
	}
	m.min = math.Min(m.min, s.State.Block(0, 3).Norm())
}

func (m *MinRadius) Value() float64 {
	if math.IsInf(m.min, 1) {
		return 0
	}
	return m.min
}

func (m *MinRadius) Reset() { m.min = math.Inf(1) }
