package maneuvers

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/astroprop/internal/events"
	"github.com/san-kum/astroprop/internal/frames"
	"github.com/san-kum/astroprop/internal/orbits"
)

// BiElliptic is a three-burn transfer through an intermediate apoapsis rb.
type BiElliptic struct {
	mu         float64
	r1, r2, rb float64
	dvs        [3]float64
	transit    float64
}

func NewBiElliptic(r1, r2, rb, mu float64) (*BiElliptic, error) {
	if r1 <= 0 || r2 <= 0 || rb <= 0 {
		return nil, fmt.Errorf("bi-elliptic %g -> %g via %g: %w", r1, r2, rb, ErrInvalidRadius)
	}

	a1 := (rb + r1) / 2
	ra1 := 2*a1 - r1
	a2 := (ra1 + r2) / 2

	vInitial := orbits.VisViva(r1, r1, mu)
	vpt := orbits.VisViva(r1, a1, mu)
	va1 := orbits.VisViva(ra1, a1, mu)
	va2 := orbits.VisViva(ra1, a2, mu)
	vp2 := orbits.VisViva(r2, a2, mu)
	vTarget := orbits.VisViva(r2, r2, mu)

	return &BiElliptic{
		mu: mu,
		r1: r1,
		r2: r2,
		rb: rb,
		dvs: [3]float64{
			vpt - vInitial,
			va2 - va1,
			vTarget - vp2,
		},
		transit: math.Pi*math.Sqrt(a1*a1*a1/mu) + math.Pi*math.Sqrt(a2*a2*a2/mu),
	}, nil
}

func BiEllipticFromState(pos, vel r3.Vec, r2, rb, mu float64) (*BiElliptic, error) {
	if err := checkCircular(pos, vel, mu); err != nil {
		return nil, err
	}
	return NewBiElliptic(r3.Norm(pos), r2, rb, mu)
}

func (b *BiElliptic) DeltaVs() []float64 { return b.dvs[:] }

func (b *BiElliptic) TotalDeltaV() float64 {
	return math.Abs(b.dvs[0]) + math.Abs(b.dvs[1]) + math.Abs(b.dvs[2])
}

func (b *BiElliptic) TransitTime() float64 { return b.transit }

// Plan burns at start, at the intermediate apoapsis and at arrival, where
// the second ellipse has its periapsis when r2 < rb.
func (b *BiElliptic) Plan(start float64) *Plan {
	arrival := events.NewApsis(events.Increasing)
	if b.r2 > b.rb {
		arrival = events.NewApsis(events.Decreasing)
	}
	return NewPlan(
		mustNew(b.dvs[0], frames.PlusJ, events.NewTime(start)),
		mustNew(b.dvs[1], frames.PlusJ, events.NewApsis(events.Decreasing)),
		mustNew(b.dvs[2], frames.PlusJ, arrival),
	)
}
