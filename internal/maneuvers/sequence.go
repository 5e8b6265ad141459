package maneuvers

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/astroprop/internal/events"
)

// Burn is one user-defined stage of a Sequence. A timed burn fires At
// seconds after the plan start; otherwise it fires on the next apsis
// crossing selected by Mode.
type Burn struct {
	DeltaV    float64
	Direction r3.Vec
	Timed     bool
	At        float64
	Mode      events.Trigger
}

// Sequence is a transfer made of an explicit list of burns.
type Sequence struct {
	burns []Burn
}

func NewSequence(burns ...Burn) (*Sequence, error) {
	if len(burns) == 0 {
		return nil, errors.New("maneuvers: sequence has no burns")
	}
	for i, b := range burns {
		if r3.Norm(b.Direction) == 0 {
			return nil, fmt.Errorf("maneuvers: burn %d: direction must be non-zero", i)
		}
		if b.Timed && (b.At < 0 || math.IsNaN(b.At)) {
			return nil, fmt.Errorf("maneuvers: burn %d: offset must not be negative, got %g", i, b.At)
		}
	}
	return &Sequence{burns: append([]Burn(nil), burns...)}, nil
}

func (s *Sequence) DeltaVs() []float64 {
	dvs := make([]float64, len(s.burns))
	for i, b := range s.burns {
		dvs[i] = b.DeltaV
	}
	return dvs
}

func (s *Sequence) TotalDeltaV() float64 {
	total := 0.0
	for _, b := range s.burns {
		total += math.Abs(b.DeltaV)
	}
	return total
}

// TransitTime is the offset of the latest timed burn. Apsis-triggered
// burns are not predicted.
func (s *Sequence) TransitTime() float64 {
	last := 0.0
	for _, b := range s.burns {
		if b.Timed {
			last = math.Max(last, b.At)
		}
	}
	return last
}

// Plan builds fresh triggers for every burn, offsetting timed burns by
// start.
func (s *Sequence) Plan(start float64) *Plan {
	ms := make([]Maneuver, len(s.burns))
	for i, b := range s.burns {
		var trigger events.Detector = events.NewApsis(b.Mode)
		if b.Timed {
			trigger = events.NewTime(start + b.At)
		}
		ms[i] = mustNew(b.DeltaV, b.Direction, trigger)
	}
	return NewPlan(ms...)
}
