package frames

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// R1 rotation about the 1st axis.
func R1(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, c, s, 0, -s, c})
}

// R3 rotation about the 3rd axis.
func R3(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{c, s, 0, -s, c, 0, 0, 0, 1})
}

// PQWToInertial rotates a perifocal vector into the inertial frame for an
// orbit with inclination i, argument of periapsis omega and right ascension
// of the ascending node raan.
func PQWToInertial(i, omega, raan float64, v r3.Vec) r3.Vec {
	var m mat.Dense
	m.Mul(R3(-raan), R1(-i))
	m.Mul(&m, R3(-omega))
	return mulVec(&m, v)
}
