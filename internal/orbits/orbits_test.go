package orbits

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

const mu = 3.986004418e14

func TestCircular_Equatorial(t *testing.T) {
	pos := r3.Vec{X: 6628000}
	vel, err := Circular(pos, mu)
	if err != nil {
		t.Fatal(err)
	}
	speed := math.Sqrt(mu / 6628000)
	if !scalar.EqualWithinAbs(vel.Y, speed, 1e-9) || vel.X != 0 || vel.Z != 0 {
		t.Errorf("expected prograde velocity (0, %g, 0), got %v", speed, vel)
	}
	if e := Eccentricity(pos, vel, mu); e > 1e-12 {
		t.Errorf("expected circular orbit, e = %g", e)
	}
}

func TestCircular_Inclined(t *testing.T) {
	pos := r3.Vec{X: 4000e3, Y: 3000e3, Z: 5000e3}
	vel, err := Circular(pos, mu)
	if err != nil {
		t.Fatal(err)
	}
	if d := r3.Dot(pos, vel); math.Abs(d)/(r3.Norm(pos)*r3.Norm(vel)) > 1e-12 {
		t.Errorf("velocity not perpendicular to position: r.v = %g", d)
	}
	if e := Eccentricity(pos, vel, mu); e > 1e-9 {
		t.Errorf("expected circular orbit, e = %g", e)
	}
	if AngularMomentum(pos, vel).Z <= 0 {
		t.Error("expected prograde orbit")
	}
}

func TestCircular_Degenerate(t *testing.T) {
	for _, pos := range []r3.Vec{{}, {Z: 7000e3}} {
		if _, err := Circular(pos, mu); !errors.Is(err, ErrDegenerate) {
			t.Errorf("Circular(%v): expected ErrDegenerate, got %v", pos, err)
		}
	}
}

func TestVisVivaAndPeriod(t *testing.T) {
	r := 6628000.0
	if got, want := VisViva(r, r, mu), math.Sqrt(mu/r); !scalar.EqualWithinRel(got, want, 1e-14) {
		t.Errorf("VisViva on circular orbit = %g, want %g", got, want)
	}
	// Geostationary radius gives a sidereal day.
	if p := Period(42164154, mu); math.Abs(p-86164) > 5 {
		t.Errorf("expected GEO period near 86164 s, got %g", p)
	}
}

func TestKeplerian_RoundTrip(t *testing.T) {
	in := Keplerian{
		SMA:         9000e3,
		Ecc:         0.12,
		Inc:         0.9,
		RAAN:        1.3,
		ArgPeri:     0.4,
		TrueAnomaly: 2.1,
	}
	pos, vel := in.ToCartesian(mu)
	out := FromCartesian(pos, vel, mu)

	opt := cmpopts.EquateApprox(1e-9, 1e-6)
	if diff := cmp.Diff(in, out, opt); diff != "" {
		t.Errorf("elements mismatch (-want +got):\n%s", diff)
	}
}

func TestKeplerian_CircularMatchesCircular(t *testing.T) {
	pos, vel := CircularElements(6628000).ToCartesian(mu)
	want, err := Circular(pos, mu)
	if err != nil {
		t.Fatal(err)
	}
	if r3.Norm(r3.Sub(vel, want)) > 1e-9 {
		t.Errorf("circular elements velocity %v, want %v", vel, want)
	}
}

func TestStatePacking(t *testing.T) {
	pos, vel := r3.Vec{X: 1, Y: 2, Z: 3}, r3.Vec{X: 4, Y: 5, Z: 6}
	p, v := PosVel(StateOf(pos, vel))
	if p != pos || v != vel {
		t.Errorf("PosVel(StateOf) = %v %v", p, v)
	}
}
