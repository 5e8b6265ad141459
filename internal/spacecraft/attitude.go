package spacecraft

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/astroprop/internal/dynamo"
)

// Attitude integrates torque-free rigid body rotation: a unit quaternion
// (w, x, y, z) from body to inertial and body rates about the principal
// axes.
type Attitude struct {
	inertia r3.Vec
	q       [4]float64
	rates   r3.Vec
}

// BoxInertia returns the principal moments of a uniform box.
func BoxInertia(mass, lx, ly, lz float64) r3.Vec {
	k := mass / 12
	return r3.Vec{
		X: k * (ly*ly + lz*lz),
		Y: k * (lx*lx + lz*lz),
		Z: k * (lx*lx + ly*ly),
	}
}

// OrbitRate is the body rate that keeps a nadir-pointing vehicle aligned
// with the RIC frame.
func OrbitRate(pos, vel r3.Vec) r3.Vec {
	return r3.Vec{Z: r3.Norm(r3.Cross(pos, vel)) / r3.Norm2(pos)}
}

func NewAttitude(inertia r3.Vec, q [4]float64, rates r3.Vec) (*Attitude, error) {
	if inertia.X <= 0 || inertia.Y <= 0 || inertia.Z <= 0 {
		return nil, errors.New("spacecraft: principal moments must be positive")
	}
	n := math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
	if n == 0 {
		return nil, errors.New("spacecraft: attitude quaternion must be non-zero")
	}
	for i := range q {
		q[i] /= n
	}
	return &Attitude{inertia: inertia, q: q, rates: rates}, nil
}

func (a *Attitude) Name() string { return "attitude" }

func (a *Attitude) Size() int { return 7 }

func (a *Attitude) Derivative(full dynamo.State, offset int, t float64) dynamo.State {
	x := full.Block(offset, 7)
	qw, qx, qy, qz := x[0], x[1], x[2], x[3]
	wx, wy, wz := x[4], x[5], x[6]
	i := a.inertia

	return dynamo.State{
		-0.5 * (qx*wx + qy*wy + qz*wz),
		0.5 * (qw*wx + qy*wz - qz*wy),
		0.5 * (qw*wy + qz*wx - qx*wz),
		0.5 * (qw*wz + qx*wy - qy*wx),
		(i.Y - i.Z) / i.X * wy * wz,
		(i.Z - i.X) / i.Y * wz * wx,
		(i.X - i.Y) / i.Z * wx * wy,
	}
}

func (a *Attitude) IntegratedState() dynamo.State {
	return dynamo.State{a.q[0], a.q[1], a.q[2], a.q[3], a.rates.X, a.rates.Y, a.rates.Z}
}

// SetIntegratedState stores the block, renormalising the quaternion.
func (a *Attitude) SetIntegratedState(x dynamo.State) {
	n := math.Sqrt(x[0]*x[0] + x[1]*x[1] + x[2]*x[2] + x[3]*x[3])
	for k := 0; k < 4; k++ {
		a.q[k] = x[k] / n
	}
	a.rates = r3.Vec{X: x[4], Y: x[5], Z: x[6]}
}

func (a *Attitude) Quaternion() [4]float64 { return a.q }

func (a *Attitude) Rates() r3.Vec { return a.rates }

// RotationalEnergy is conserved in torque-free motion.
func (a *Attitude) RotationalEnergy() float64 {
	w, i := a.rates, a.inertia
	return 0.5 * (i.X*w.X*w.X + i.Y*w.Y*w.Y + i.Z*w.Z*w.Z)
}

// AngularMomentum is the body-frame angular momentum; its magnitude is
// conserved in torque-free motion.
func (a *Attitude) AngularMomentum() r3.Vec {
	return r3.Vec{X: a.inertia.X * a.rates.X, Y: a.inertia.Y * a.rates.Y, Z: a.inertia.Z * a.rates.Z}
}
