// Package maneuvers models impulsive burns and the plans that sequence
// them.
//
// A [Plan] is itself an event detector: it watches the trigger of its
// current stage, queues that stage's burn when the trigger fires and moves
// on to the next stage. Once every stage has fired the plan is inactive
// for good. Queued burns are rotated from the RIC frame into the inertial
// frame by [Plan.ControlInput] using the state at the event time.
package maneuvers

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/astroprop/internal/events"
	"github.com/san-kum/astroprop/internal/frames"
)

var (
	ErrPlanExhausted    = errors.New("maneuvers: plan has no remaining maneuvers")
	ErrNonCircularOrbit = errors.New("maneuvers: initial orbit is not near circular")
	ErrInvalidRadius    = errors.New("maneuvers: orbit radius must be positive")
)

// Transfer produces the plan for an orbit change.
type Transfer interface {
	DeltaVs() []float64
	TotalDeltaV() float64
	TransitTime() float64
	Plan(start float64) *Plan
}

// Maneuver is an impulsive burn of signed magnitude DeltaV along a unit
// direction in the RIC frame, executed when its trigger fires.
type Maneuver struct {
	deltaV    float64
	direction r3.Vec
	trigger   events.Detector
}

// New builds a maneuver. The direction is normalised.
func New(deltaV float64, direction r3.Vec, trigger events.Detector) (Maneuver, error) {
	if r3.Norm(direction) == 0 {
		return Maneuver{}, errors.New("maneuvers: direction must be non-zero")
	}
	if trigger == nil {
		return Maneuver{}, errors.New("maneuvers: trigger must be set")
	}
	return Maneuver{deltaV: deltaV, direction: r3.Unit(direction), trigger: trigger}, nil
}

func mustNew(deltaV float64, direction r3.Vec, trigger events.Detector) Maneuver {
	m, err := New(deltaV, direction, trigger)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Maneuver) DeltaV() float64 { return m.deltaV }

func (m Maneuver) Direction() r3.Vec { return m.direction }

func (m Maneuver) Trigger() events.Detector { return m.trigger }

// RIC is the velocity change in the RIC frame.
func (m Maneuver) RIC() r3.Vec {
	return r3.Scale(m.deltaV, m.direction)
}

// Inertial is the velocity change in the inertial frame at (pos, vel).
func (m Maneuver) Inertial(pos, vel r3.Vec) (r3.Vec, error) {
	return frames.RICToInertial(pos, vel, m.RIC())
}

func (m Maneuver) String() string {
	return fmt.Sprintf("%.6f m/s along %v on %s", m.deltaV, m.direction, m.trigger.Name())
}
