package events

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/astroprop/internal/dynamo"
)

// Apsis fires where r.v changes sign, i.e. at periapsis or apoapsis.
// Decreasing selects apoapsis, Increasing periapsis.
type Apsis struct {
	Base
}

func NewApsis(mode Trigger) *Apsis {
	return &Apsis{Base: NewBase(mode)}
}

func (a *Apsis) Name() string {
	switch a.mode {
	case Decreasing:
		return "apoapsis"
	case Increasing:
		return "periapsis"
	}
	return "apsis"
}

func (a *Apsis) G(s dynamo.Sample) float64 {
	return floats.Dot(s.State[0:3], s.State[3:6])
}

func (a *Apsis) Fires(prev, curr dynamo.Sample) bool {
	return a.crosses(a.G(prev), a.G(curr))
}

// Time fires once the simulated clock reaches At. It deactivates after
// handling its event so a crossing on a window boundary is not seen twice.
type Time struct {
	Base
	At float64
}

func NewTime(at float64) *Time {
	d := &Time{Base: NewBase(Decreasing), At: at}
	d.OneShot()
	return d
}

func (d *Time) Name() string { return fmt.Sprintf("time(%g)", d.At) }

func (d *Time) G(s dynamo.Sample) float64 {
	return d.At - s.T
}

func (d *Time) Fires(prev, curr dynamo.Sample) bool {
	return d.crosses(d.G(prev), d.G(curr))
}
