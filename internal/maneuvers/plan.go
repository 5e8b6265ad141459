package maneuvers

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/astroprop/internal/dynamo"
	"github.com/san-kum/astroprop/internal/events"
	"github.com/san-kum/astroprop/internal/orbits"
)

// Plan sequences maneuvers. The stage cursor only moves forward.
type Plan struct {
	events.Base

	maneuvers []Maneuver
	queue     []Maneuver
	stage     int
}

func NewPlan(ms ...Maneuver) *Plan {
	p := &Plan{
		Base:      events.NewBase(events.All),
		maneuvers: append([]Maneuver(nil), ms...),
	}
	if len(p.maneuvers) == 0 {
		p.Deactivate()
	}
	return p
}

func (p *Plan) Name() string { return "maneuver-plan" }

func (p *Plan) Len() int { return len(p.maneuvers) }

func (p *Plan) Stage() int { return p.stage }

// Pending is the number of burns queued but not yet applied.
func (p *Plan) Pending() int { return len(p.queue) }

func (p *Plan) Maneuvers() []Maneuver {
	return append([]Maneuver(nil), p.maneuvers...)
}

// Current returns the maneuver waiting on its trigger.
func (p *Plan) Current() (Maneuver, error) {
	if p.stage >= len(p.maneuvers) {
		return Maneuver{}, fmt.Errorf("stage %d of %d: %w", p.stage, len(p.maneuvers), ErrPlanExhausted)
	}
	return p.maneuvers[p.stage], nil
}

// G evaluates the current stage's trigger. It is NaN once the plan is
// exhausted.
func (p *Plan) G(s dynamo.Sample) float64 {
	m, err := p.Current()
	if err != nil {
		return math.NaN()
	}
	return m.trigger.G(s)
}

func (p *Plan) Fires(prev, curr dynamo.Sample) bool {
	if !p.Active() {
		return false
	}
	return p.maneuvers[p.stage].trigger.Fires(prev, curr)
}

// HandleEvent queues the current maneuver and advances the stage.
func (p *Plan) HandleEvent(target events.Target, t float64) error {
	m, err := p.Current()
	if err != nil {
		return err
	}
	p.queue = append(p.queue, m)
	p.stage++
	if p.stage >= len(p.maneuvers) {
		p.Deactivate()
	}
	return p.Base.HandleEvent(target, t)
}

// ControlInput drains the queue and returns the summed inertial velocity
// change for the state in s. Each queued burn is returned exactly once.
func (p *Plan) ControlInput(s dynamo.Sample) (r3.Vec, error) {
	queued := p.queue
	p.queue = nil

	pos, vel := orbits.PosVel(s.State)
	var dv r3.Vec
	for _, m := range queued {
		v, err := m.Inertial(pos, vel)
		if err != nil {
			return r3.Vec{}, fmt.Errorf("burn at t=%g: %w", s.T, err)
		}
		dv = r3.Add(dv, v)
	}
	return dv, nil
}

// TotalDeltaV is the sum of burn magnitudes.
func (p *Plan) TotalDeltaV() float64 {
	total := 0.0
	for _, m := range p.maneuvers {
		total += math.Abs(m.deltaV)
	}
	return total
}
