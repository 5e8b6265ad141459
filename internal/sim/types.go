package sim

import (
	"github.com/san-kum/astroprop/internal/dynamo"
	"github.com/san-kum/astroprop/internal/propagator"
)

// Metric accumulates a scalar over the checkpoints of a run.
type Metric interface {
	Name() string
	Observe(id string, s dynamo.Sample)
	Value() float64
	Reset()
}

// Rebaser is implemented by metrics whose reference value changes when a
// spacecraft is acted on, such as conserved quantities across a burn.
type Rebaser interface {
	Rebase(id string, s dynamo.Sample)
}

// Observer receives checkpoints and handled events. s is the spacecraft's
// state after the event was applied.
type Observer interface {
	OnCheckpoint(id string, s dynamo.Sample)
	OnEvent(ev propagator.Event, s dynamo.Sample)
}

type Config struct {
	Duration float64 `yaml:"duration"`
	Interval float64 `yaml:"interval"`
}

// Summary describes a spacecraft's orbit at the end of a run.
type Summary struct {
	ID            string  `json:"id"`
	Radius        float64 `json:"radius"`
	Speed         float64 `json:"speed"`
	SemiMajorAxis float64 `json:"semi_major_axis"`
	Eccentricity  float64 `json:"eccentricity"`
	DeltaV        float64 `json:"delta_v"`
	Burns         int     `json:"burns"`
}

type Result struct {
	Times   []float64
	Samples map[string][]dynamo.Sample
	Events  []propagator.Event
	Metrics map[string]float64
	Final   []Summary
}

// Radii returns the radius of spacecraft id at every checkpoint.
func (r *Result) Radii(id string) []float64 {
	samples := r.Samples[id]
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.State.Block(0, 3).Norm()
	}
	return out
}
