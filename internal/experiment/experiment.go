package experiment

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-kit/log"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/astroprop/internal/bodies"
	"github.com/san-kum/astroprop/internal/config"
	"github.com/san-kum/astroprop/internal/dynamo"
	"github.com/san-kum/astroprop/internal/maneuvers"
	"github.com/san-kum/astroprop/internal/orbits"
	"github.com/san-kum/astroprop/internal/propagator"
	"github.com/san-kum/astroprop/internal/sim"
	"github.com/san-kum/astroprop/internal/spacecraft"
	"github.com/san-kum/astroprop/internal/telemetry"
)

// Experiment is a scenario resolved into spacecraft, a gravity model and
// maneuver plans.
type Experiment struct {
	cfg       *config.Config
	body      bodies.Body
	model     bodies.AccelerationModel
	reg       *spacecraft.Registry
	transfers map[string]maneuvers.Transfer
	registry  *Registry
	simulator *sim.Simulation
}

// New resolves cfg against r. It does not propagate.
func New(cfg *config.Config, r *Registry) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	body, err := bodies.Lookup(cfg.Body)
	if err != nil {
		return nil, err
	}
	model, err := r.GetGravity(cfg.Gravity, body)
	if err != nil {
		return nil, err
	}

	e := &Experiment{
		cfg:       cfg,
		body:      body,
		model:     model,
		transfers: make(map[string]maneuvers.Transfer),
		registry:  r,
	}
	e.reg, err = spacecraft.NewRegistry()
	if err != nil {
		return nil, err
	}
	for _, sc := range cfg.Spacecraft {
		craft, err := e.build(sc)
		if err != nil {
			return nil, fmt.Errorf("spacecraft %s: %w", sc.ID, err)
		}
		if err := e.reg.Add(craft); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (e *Experiment) build(sc config.SpacecraftConfig) (*spacecraft.Spacecraft, error) {
	pos, vel, err := e.placement(sc)
	if err != nil {
		return nil, err
	}

	mass := sc.Mass
	if mass == 0 {
		mass = config.DefaultMass
	}
	opts := []spacecraft.Option{spacecraft.WithMass(mass)}

	if a := sc.Attitude; a != nil {
		rates := r3.Vec{X: a.Rates[0], Y: a.Rates[1], Z: a.Rates[2]}
		if a.NadirRate {
			rates = spacecraft.OrbitRate(pos, vel)
		}
		q := a.Quat
		if q == [4]float64{} {
			q[0] = 1
		}
		att, err := spacecraft.NewAttitude(spacecraft.BoxInertia(mass, a.Size[0], a.Size[1], a.Size[2]), q, rates)
		if err != nil {
			return nil, err
		}
		opts = append(opts, spacecraft.WithProvider(att))
	}

	if tc := sc.Transfer; tc != nil {
		tr, err := e.registry.GetTransfer(tc.Kind, pos, vel, *tc, e.body.Mu)
		if err != nil {
			return nil, err
		}
		e.transfers[sc.ID] = tr
		opts = append(opts, spacecraft.WithPlan(tr.Plan(tc.Start)))
	}

	return spacecraft.New(sc.ID, orbits.StateOf(pos, vel), 0, opts...)
}

func (e *Experiment) placement(sc config.SpacecraftConfig) (pos, vel r3.Vec, err error) {
	if sc.Elements != nil {
		pos, vel = sc.Elements.ToCartesian(e.body.Mu)
		return pos, vel, nil
	}
	pos = r3.Vec{X: sc.Position[0], Y: sc.Position[1], Z: sc.Position[2]}
	if r3.Norm(pos) <= e.body.Radius {
		return pos, vel, fmt.Errorf("position is inside %s", e.body.Name)
	}
	if sc.Velocity != nil {
		return pos, r3.Vec{X: sc.Velocity[0], Y: sc.Velocity[1], Z: sc.Velocity[2]}, nil
	}
	vel, err = orbits.Circular(pos, e.body.Mu)
	return pos, vel, err
}

// Setup creates the simulation with the default metrics for the gravity
// model. metrics may be nil.
func (e *Experiment) Setup(logger log.Logger, metrics *telemetry.Metrics, observers ...sim.Observer) error {
	s, err := sim.New(e.body, e.model, e.reg, logger,
		propagator.WithWindow(e.cfg.Window),
		propagator.WithIntegrator(e.cfg.Integrator),
		propagator.WithParallel(e.cfg.Parallel),
		propagator.WithTelemetry(metrics),
	)
	if err != nil {
		return err
	}
	for _, m := range e.registry.DefaultMetrics(e.cfg.Gravity, e.model) {
		s.AddMetric(m)
	}
	for _, o := range observers {
		s.AddObserver(o)
	}
	e.simulator = s
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, errors.New("experiment not setup")
	}
	return e.simulator.Run(ctx, sim.Config{Duration: e.cfg.Duration, Interval: e.cfg.Interval})
}

func (e *Experiment) Config() *config.Config { return e.cfg }

func (e *Experiment) Body() bodies.Body { return e.body }

func (e *Experiment) Spacecraft() *spacecraft.Registry { return e.reg }

// Transfers maps spacecraft IDs to their planned transfer.
func (e *Experiment) Transfers() map[string]maneuvers.Transfer { return e.transfers }

// Simulation returns the underlying simulation for adding observers.
func (e *Experiment) Simulation() *sim.Simulation { return e.simulator }

// State returns the current integrated state of spacecraft id.
func (e *Experiment) State(id string) (dynamo.Sample, error) {
	sc, err := e.reg.Get(id)
	if err != nil {
		return dynamo.Sample{}, err
	}
	return sc.Sample(), nil
}
