package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/astroprop/internal/bodies"
	"github.com/san-kum/astroprop/internal/dynamo"
	"github.com/san-kum/astroprop/internal/orbits"
)

func sample(t *testing.T, r, speedScale float64) dynamo.Sample {
	t.Helper()
	pos := r3.Vec{X: r}
	vel, err := orbits.Circular(pos, bodies.Earth.Mu)
	if err != nil {
		t.Fatal(err)
	}
	return dynamo.Sample{State: orbits.StateOf(pos, r3.Scale(speedScale, vel))}
}

func TestEnergyDrift(t *testing.T) {
	m := NewEnergyDrift(bodies.NewPointMass(bodies.Earth))
	if m.Name() != "energy_drift" {
		t.Errorf("unexpected name %q", m.Name())
	}

	s := sample(t, 7000e3, 1)
	m.Observe("a", s)
	m.Observe("a", s)
	if m.Value() != 0 {
		t.Errorf("constant energy should have zero drift, got %g", m.Value())
	}

	// Specific energy of a circular orbit is -mu/2r; a 1% faster speed adds
	// 0.0201 * v^2/2 = 0.0201 * mu/2r.
	m.Observe("a", sample(t, 7000e3, 1.01))
	if math.Abs(m.Value()-0.0201) > 1e-9 {
		t.Errorf("drift = %g, want 0.0201", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("Reset did not clear drift")
	}
}

func TestEnergyDriftRebase(t *testing.T) {
	m := NewEnergyDrift(bodies.NewPointMass(bodies.Earth))
	m.Observe("a", sample(t, 7000e3, 1))
	m.Rebase("a", sample(t, 7000e3, 1.1))
	m.Observe("a", sample(t, 7000e3, 1.1))
	if m.Value() != 0 {
		t.Errorf("drift after rebase = %g, want 0", m.Value())
	}

	// Spacecraft keep separate references.
	m.Observe("b", sample(t, 8000e3, 1))
	m.Observe("b", sample(t, 8000e3, 1))
	if m.Value() != 0 {
		t.Errorf("second spacecraft drift = %g", m.Value())
	}
}

func TestEnergyDriftShortState(t *testing.T) {
	m := NewEnergyDrift(bodies.NewPointMass(bodies.Earth))
	m.Observe("a", dynamo.Sample{State: dynamo.State{1, 2}})
	m.Rebase("a", dynamo.Sample{State: dynamo.State{1, 2}})
	if m.Value() != 0 {
		t.Error("short states should be ignored")
	}
}

func TestMomentumDrift(t *testing.T) {
	m := NewMomentumDrift()
	m.Observe("a", sample(t, 7000e3, 1))
	m.Observe("a", sample(t, 7000e3, 1.02))
	if math.Abs(m.Value()-0.02) > 1e-12 {
		t.Errorf("drift = %g, want 0.02", m.Value())
	}
	m.Rebase("a", sample(t, 7000e3, 1.02))
	m.Reset()
	if m.Value() != 0 {
		t.Error("Reset did not clear drift")
	}

	axial := NewAxialMomentumDrift()
	if axial.Name() != "axial_momentum_drift" {
		t.Errorf("unexpected name %q", axial.Name())
	}
	axial.Observe("a", sample(t, 7000e3, 1))
	axial.Observe("a", sample(t, 7000e3, 1))
	if axial.Value() != 0 {
		t.Errorf("axial drift = %g", axial.Value())
	}
}

func TestMinRadius(t *testing.T) {
	m := NewMinRadius()
	if m.Value() != 0 {
		t.Errorf("empty MinRadius = %g", m.Value())
	}
	m.Observe("a", sample(t, 7000e3, 1))
	m.Observe("b", sample(t, 6800e3, 1))
	m.Observe("a", sample(t, 9000e3, 1))
	if m.Value() != 6800e3 {
		t.Errorf("MinRadius = %g, want 6.8e6", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Error("Reset did not clear")
	}
}
