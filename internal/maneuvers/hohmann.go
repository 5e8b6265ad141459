package maneuvers

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/astroprop/internal/events"
	"github.com/san-kum/astroprop/internal/frames"
	"github.com/san-kum/astroprop/internal/orbits"
)

// CircularityTolerance is the largest eccentricity accepted as circular.
const CircularityTolerance = 1e-6

// Hohmann is a two-burn transfer between coplanar circular orbits.
type Hohmann struct {
	mu      float64
	r1, r2  float64
	dvs     [2]float64
	transit float64
}

func NewHohmann(r1, r2, mu float64) (*Hohmann, error) {
	if r1 <= 0 || r2 <= 0 {
		return nil, fmt.Errorf("hohmann %g -> %g: %w", r1, r2, ErrInvalidRadius)
	}

	ht := math.Sqrt(2 * mu * ((r1 * r2) / (r1 + r2)))
	vtp := ht / r1
	vta := ht / r2
	vi := math.Sqrt(mu / r1)
	vf := math.Sqrt(mu / r2)
	sma := (r1 + r2) / 2

	return &Hohmann{
		mu:      mu,
		r1:      r1,
		r2:      r2,
		dvs:     [2]float64{vtp - vi, vf - vta},
		transit: math.Pi * math.Sqrt(sma*sma*sma/mu),
	}, nil
}

// HohmannFromState builds the transfer from a circular state to a circular
// orbit of radius r2.
func HohmannFromState(pos, vel r3.Vec, r2, mu float64) (*Hohmann, error) {
	if err := checkCircular(pos, vel, mu); err != nil {
		return nil, err
	}
	return NewHohmann(r3.Norm(pos), r2, mu)
}

func checkCircular(pos, vel r3.Vec, mu float64) error {
	if e := orbits.Eccentricity(pos, vel, mu); e > CircularityTolerance {
		return fmt.Errorf("eccentricity %g: %w", e, ErrNonCircularOrbit)
	}
	return nil
}

func (h *Hohmann) DeltaVs() []float64 { return h.dvs[:] }

func (h *Hohmann) TotalDeltaV() float64 {
	return math.Abs(h.dvs[0]) + math.Abs(h.dvs[1])
}

// TransitTime is half the period of the transfer ellipse.
func (h *Hohmann) TransitTime() float64 { return h.transit }

func (h *Hohmann) InitialRadius() float64 { return h.r1 }

func (h *Hohmann) TargetRadius() float64 { return h.r2 }

// Plan schedules the first burn at start and the second at the far apsis
// of the transfer ellipse: apoapsis when raising, periapsis when lowering.
func (h *Hohmann) Plan(start float64) *Plan {
	arrival := events.NewApsis(events.Decreasing)
	if h.r2 < h.r1 {
		arrival = events.NewApsis(events.Increasing)
	}
	return NewPlan(
		mustNew(h.dvs[0], frames.PlusJ, events.NewTime(start)),
		mustNew(h.dvs[1], frames.PlusJ, arrival),
	)
}
