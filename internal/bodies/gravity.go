package bodies

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// PointMass is two-body gravity.
type PointMass struct {
	Mu float64
}

func NewPointMass(b Body) PointMass {
	return PointMass{Mu: b.Mu}
}

func (p PointMass) Acceleration(pos r3.Vec, t float64) r3.Vec {
	r := r3.Norm(pos)
	return r3.Scale(-p.Mu/(r*r*r), pos)
}

// Oblate adds the J2 zonal term to two-body gravity.
type Oblate struct {
	Mu  float64
	aJ2 float64
}

func NewOblate(b Body) Oblate {
	return Oblate{Mu: b.Mu, aJ2: 0.5 * b.J2 * b.Radius * b.Radius}
}

func (o Oblate) Acceleration(pos r3.Vec, t float64) r3.Vec {
	x, y, z := pos.X, pos.Y, pos.Z
	r := r3.Norm(pos)
	r2 := r * r
	rCubed := r2 * r
	r5 := rCubed * r2
	r7 := r5 * r2
	z2 := z * z

	return r3.Vec{
		X: o.Mu * (-x/rCubed + o.aJ2*(15*x*z2/r7-3*x/r5)),
		Y: o.Mu * (-y/rCubed + o.aJ2*(15*y*z2/r7-3*y/r5)),
		Z: o.Mu * (-z/rCubed + o.aJ2*(15*z*z2/r7-9*z/r5)),
	}
}

// Potential returns the gravitational potential energy per unit mass of
// the oblate field, U = -mu/r - mu*aJ2*(1 - 3 sin^2(lat))/r^3.
func (o Oblate) Potential(pos r3.Vec) float64 {
	r := r3.Norm(pos)
	sinLat := pos.Z / r
	return -o.Mu/r - o.Mu*o.aJ2*(1-3*sinLat*sinLat)/math.Pow(r, 3)
}

// Potential returns -mu/r.
func (p PointMass) Potential(pos r3.Vec) float64 {
	return -p.Mu / r3.Norm(pos)
}
