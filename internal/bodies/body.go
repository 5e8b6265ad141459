// Package bodies defines central bodies and the acceleration models that
// drive the translational equations of motion.
package bodies

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Body is a central gravitating body.
type Body struct {
	Name   string
	Mu     float64 // m^3/s^2
	Radius float64 // equatorial radius, m
	J2     float64
	SOI    float64 // sphere of influence radius, m
}

var (
	Earth = Body{
		Name:   "earth",
		Mu:     3.986004418e14,
		Radius: 6378.1e3,
		J2:     1.08263e-3,
		SOI:    9.24e8,
	}
	Moon = Body{
		Name:   "moon",
		Mu:     4.9048695e12,
		Radius: 1737.4e3,
		J2:     2.027e-4,
		SOI:    6.61e7,
	}
)

var registry = map[string]Body{
	Earth.Name: Earth,
	Moon.Name:  Moon,
}

// Lookup returns the named body.
func Lookup(name string) (Body, error) {
	b, ok := registry[strings.ToLower(name)]
	if !ok {
		return Body{}, fmt.Errorf("unknown body: %s", name)
	}
	return b, nil
}

// CircularSpeed is the speed of a circular orbit of radius r.
func (b Body) CircularSpeed(r float64) float64 {
	return math.Sqrt(b.Mu / r)
}

// AccelerationModel maps an inertial position to an acceleration. It must
// be safe to call from several goroutines.
type AccelerationModel interface {
	Acceleration(pos r3.Vec, t float64) r3.Vec
}

// Potential is implemented by models with a scalar potential, used to
// monitor energy conservation.
type Potential interface {
	Potential(pos r3.Vec) float64
}
