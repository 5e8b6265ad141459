package spacecraft

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/astroprop/internal/dynamo"
)

func TestBoxInertia(t *testing.T) {
	i := BoxInertia(12, 1, 1, 1)
	if i != (r3.Vec{X: 2, Y: 2, Z: 2}) {
		t.Errorf("unexpected cube inertia %v", i)
	}
}

func TestAttitude_PrincipalSpinIsSteady(t *testing.T) {
	att, err := NewAttitude(BoxInertia(100, 1, 2, 3), [4]float64{1, 0, 0, 0}, r3.Vec{Z: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	full := append(dynamo.State{1, 2, 3, 4, 5, 6}, att.IntegratedState()...)
	d := att.Derivative(full, 6, 0)

	if len(d) != att.Size() {
		t.Fatalf("expected %d components, got %d", att.Size(), len(d))
	}
	if d[4] != 0 || d[5] != 0 || d[6] != 0 {
		t.Errorf("spin about a principal axis should be steady, got rate derivative %v", d[4:])
	}
	// Identity attitude spinning about z: q' = (0, 0, 0, w/2).
	if !scalar.EqualWithinAbs(d[3], 0.25, 1e-15) || d[0] != 0 {
		t.Errorf("unexpected quaternion derivative %v", d[:4])
	}
}

func TestAttitude_EnergyFunctionsAndValidation(t *testing.T) {
	att, err := NewAttitude(r3.Vec{X: 1, Y: 2, Z: 3}, [4]float64{2, 0, 0, 0}, r3.Vec{X: 1, Y: 1, Z: 1})
	if err != nil {
		t.Fatal(err)
	}
	if q := att.Quaternion(); q[0] != 1 {
		t.Errorf("quaternion not normalised: %v", q)
	}
	if e := att.RotationalEnergy(); e != 3 {
		t.Errorf("expected energy 3, got %g", e)
	}
	if h := att.AngularMomentum(); h != (r3.Vec{X: 1, Y: 2, Z: 3}) {
		t.Errorf("unexpected angular momentum %v", h)
	}

	if _, err := NewAttitude(r3.Vec{X: 1, Y: 0, Z: 1}, [4]float64{1, 0, 0, 0}, r3.Vec{}); err == nil {
		t.Error("expected error for zero moment")
	}
	if _, err := NewAttitude(r3.Vec{X: 1, Y: 1, Z: 1}, [4]float64{}, r3.Vec{}); err == nil {
		t.Error("expected error for zero quaternion")
	}
}

func TestOrbitRate(t *testing.T) {
	pos := r3.Vec{X: 7000e3}
	vel := r3.Vec{Y: 7.5e3}
	w := OrbitRate(pos, vel)
	if math.Abs(w.Z-7.5e3/7000e3) > 1e-15 || w.X != 0 || w.Y != 0 {
		t.Errorf("unexpected orbit rate %v", w)
	}
}
