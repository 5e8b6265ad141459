// Package orbits holds two-body geometry helpers used to build initial
// states and to inspect propagated ones.
package orbits

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/astroprop/internal/dynamo"
)

// ErrDegenerate is returned when a circular orbit cannot be built through
// the given position.
var ErrDegenerate = errors.New("orbits: position is zero or along the polar axis")

var zHat = r3.Vec{Z: 1}

// Circular returns the prograde circular velocity at pos. The orbit plane
// contains pos and is as close to equatorial as pos allows.
func Circular(pos r3.Vec, mu float64) (r3.Vec, error) {
	r := r3.Norm(pos)
	if r == 0 {
		return r3.Vec{}, ErrDegenerate
	}
	hDir := r3.Cross(pos, r3.Cross(zHat, pos))
	if r3.Norm(hDir) == 0 {
		return r3.Vec{}, ErrDegenerate
	}
	vDir := r3.Unit(r3.Cross(r3.Unit(hDir), pos))
	return r3.Scale(math.Sqrt(mu/r), vDir), nil
}

// CircularState packs pos and its circular velocity into a state vector.
func CircularState(pos r3.Vec, mu float64) (dynamo.State, error) {
	vel, err := Circular(pos, mu)
	if err != nil {
		return nil, err
	}
	return StateOf(pos, vel), nil
}

// StateOf packs position and velocity into a 6-component state.
func StateOf(pos, vel r3.Vec) dynamo.State {
	return dynamo.State{pos.X, pos.Y, pos.Z, vel.X, vel.Y, vel.Z}
}

// PosVel unpacks the translational block of a state.
func PosVel(x dynamo.State) (pos, vel r3.Vec) {
	return r3.Vec{X: x[0], Y: x[1], Z: x[2]}, r3.Vec{X: x[3], Y: x[4], Z: x[5]}
}

// VisViva is the orbital speed at radius r on an orbit of semi-major axis a.
func VisViva(r, a, mu float64) float64 {
	return math.Sqrt(mu * (2/r - 1/a))
}

func Period(a, mu float64) float64 {
	return 2 * math.Pi * math.Sqrt(a*a*a/mu)
}

func SpecificEnergy(pos, vel r3.Vec, mu float64) float64 {
	return 0.5*r3.Norm2(vel) - mu/r3.Norm(pos)
}

func AngularMomentum(pos, vel r3.Vec) r3.Vec {
	return r3.Cross(pos, vel)
}

func SemiMajorAxis(pos, vel r3.Vec, mu float64) float64 {
	return -mu / (2 * SpecificEnergy(pos, vel, mu))
}

func EccentricityVector(pos, vel r3.Vec, mu float64) r3.Vec {
	h := AngularMomentum(pos, vel)
	return r3.Sub(r3.Scale(1/mu, r3.Cross(vel, h)), r3.Unit(pos))
}

func Eccentricity(pos, vel r3.Vec, mu float64) float64 {
	return r3.Norm(EccentricityVector(pos, vel, mu))
}
