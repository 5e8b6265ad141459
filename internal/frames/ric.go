// Package frames converts vectors between the inertial frame and local
// orbital frames.
package frames

import (
	"errors"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrDegenerate is returned when position and velocity do not span a plane.
var ErrDegenerate = errors.New("frames: position and velocity are collinear")

// Unit directions in the radial, in-track, cross-track frame.
var (
	PlusI  = r3.Vec{X: 1}
	MinusI = r3.Vec{X: -1}
	PlusJ  = r3.Vec{Y: 1}
	MinusJ = r3.Vec{Y: -1}
	PlusK  = r3.Vec{Z: 1}
	MinusK = r3.Vec{Z: -1}
)

// RIC returns the rotation taking RIC components to inertial ones. Its
// columns are the radial, in-track and cross-track unit vectors.
func RIC(pos, vel r3.Vec) (*mat.Dense, error) {
	h := r3.Cross(pos, vel)
	if r3.Norm(pos) == 0 || r3.Norm(h) == 0 {
		return nil, ErrDegenerate
	}
	rHat := r3.Unit(pos)
	cHat := r3.Unit(h)
	iHat := r3.Cross(cHat, rHat)

	return mat.NewDense(3, 3, []float64{
		rHat.X, iHat.X, cHat.X,
		rHat.Y, iHat.Y, cHat.Y,
		rHat.Z, iHat.Z, cHat.Z,
	}), nil
}

// RICToInertial rotates v, expressed in the RIC frame at (pos, vel), into
// the inertial frame.
func RICToInertial(pos, vel, v r3.Vec) (r3.Vec, error) {
	m, err := RIC(pos, vel)
	if err != nil {
		return r3.Vec{}, err
	}
	return mulVec(m, v), nil
}

// InertialToRIC is the inverse of RICToInertial.
func InertialToRIC(pos, vel, v r3.Vec) (r3.Vec, error) {
	m, err := RIC(pos, vel)
	if err != nil {
		return r3.Vec{}, err
	}
	return mulVec(m.T(), v), nil
}

func mulVec(m mat.Matrix, v r3.Vec) r3.Vec {
	var out mat.VecDense
	out.MulVec(m, mat.NewVecDense(3, []float64{v.X, v.Y, v.Z}))
	return r3.Vec{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}
