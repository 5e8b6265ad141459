package metrics

import (
	"math"

	"github.com/san-kum/astroprop/internal/bodies"
	"github.com/san-kum/astroprop/internal/dynamo"
	"github.com/san-kum/astroprop/internal/orbits"
)

// EnergyDrift tracks the largest relative change of specific orbital
// energy since the last reference point, over all spacecraft. Burns move
// the reference through Rebase so only integration error is measured.
type EnergyDrift struct {
	name     string
	field    bodies.Potential
	initial  map[string]float64
	maxDrift float64
}

func NewEnergyDrift(field bodies.Potential) *EnergyDrift {
	return &EnergyDrift{
		name:    "energy_drift",
		field:   field,
		initial: make(map[string]float64),
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) energy(s dynamo.Sample) float64 {
	pos, vel := orbits.PosVel(s.State)
	return 0.5*(vel.X*vel.X+vel.Y*vel.Y+vel.Z*vel.Z) + e.field.Potential(pos)
}

func (e *EnergyDrift) Observe(id string, s dynamo.Sample) {
	if len(s.State) < 6 {
		return
	}
	energy := e.energy(s)
	ref, ok := e.initial[id]
	if !ok {
		e.initial[id] = energy
		return
	}
	if ref != 0 {
		drift := math.Abs(energy-ref) / math.Abs(ref)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Rebase(id string, s dynamo.Sample) {
	if len(s.State) < 6 {
		return
	}
	e.initial[id] = e.energy(s)
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initial = make(map[string]float64)
	e.maxDrift = 0
}
