package dynamo

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Block returns the sub-span [offset, offset+size) of s without copying.
func (s State) Block(offset, size int) State {
	return s[offset : offset+size : offset+size]
}

// Sample is a point on a trajectory.
type Sample struct {
	State State
	T     float64
}

func (s Sample) Clone() Sample {
	return Sample{State: s.State.Clone(), T: s.T}
}

// System is a time-varying first order ODE. Derive returns a freshly
// allocated derivative and must not retain or modify x.
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}
