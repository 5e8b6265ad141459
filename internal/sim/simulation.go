package sim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/astroprop/internal/bodies"
	"github.com/san-kum/astroprop/internal/dynamo"
	"github.com/san-kum/astroprop/internal/logging"
	"github.com/san-kum/astroprop/internal/orbits"
	"github.com/san-kum/astroprop/internal/propagator"
	"github.com/san-kum/astroprop/internal/spacecraft"
)

// Simulation drives a propagator from checkpoint to checkpoint and feeds
// metrics and observers along the way.
type Simulation struct {
	body      bodies.Body
	reg       *spacecraft.Registry
	prop      *propagator.Propagator
	logger    log.Logger
	metrics   []Metric
	observers []Observer
}

// New builds the underlying propagator for reg. Propagator options are
// passed through; an event listener feeding the simulation's observers is
// added to them.
func New(body bodies.Body, model bodies.AccelerationModel, reg *spacecraft.Registry, logger log.Logger, opts ...propagator.Option) (*Simulation, error) {
	s := &Simulation{
		body:   body,
		reg:    reg,
		logger: logging.Subsystem(logger, "sim"),
	}
	opts = append(opts, propagator.WithLogger(logger), propagator.WithEventListener(s.onEvent))
	prop, err := propagator.New(model, reg, opts...)
	if err != nil {
		return nil, err
	}
	s.prop = prop
	return s, nil
}

func (s *Simulation) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulation) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulation) Propagator() *propagator.Propagator { return s.prop }

// Run propagates every spacecraft for cfg.Duration seconds, sampling at
// each cfg.Interval. On error the result holds everything recorded up to
// the last completed checkpoint.
func (s *Simulation) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	ids := s.reg.IDs()
	steps := int(math.Ceil(cfg.Duration / cfg.Interval))
	result := &Result{
		Times:   make([]float64, 0, steps+1),
		Samples: make(map[string][]dynamo.Sample, len(ids)),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}
	seen := len(s.prop.Events())

	t0 := s.prop.Time()
	end := t0 + cfg.Duration
	level.Info(s.logger).Log("msg", "run started", "spacecraft", len(ids), "t0", t0, "duration", cfg.Duration)

	if err := s.checkpoint(result, ids, t0); err != nil {
		return result, err
	}

	for i := 1; i <= steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result, seen)
			return result, fmt.Errorf("%w: %v", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		t := math.Min(t0+float64(i)*cfg.Interval, end)
		if t <= result.Times[len(result.Times)-1] {
			continue
		}
		if _, err := s.prop.PropagateTo(ctx, t); err != nil {
			s.finish(result, seen)
			return result, err
		}
		if err := s.checkpoint(result, ids, t); err != nil {
			return result, err
		}
	}

	s.finish(result, seen)
	level.Info(s.logger).Log("msg", "run finished", "t", end, "events", len(result.Events))
	return result, nil
}

func (s *Simulation) checkpoint(result *Result, ids []string, t float64) error {
	result.Times = append(result.Times, t)
	for _, id := range ids {
		sc, err := s.reg.Get(id)
		if err != nil {
			return err
		}
		sample := sc.Sample()
		if !sample.State.IsValid() {
			return &dynamo.SimulationError{Spacecraft: id, Time: t, State: sample.State, Wrapped: dynamo.ErrInvalidState}
		}
		result.Samples[id] = append(result.Samples[id], sample)
		for _, m := range s.metrics {
			m.Observe(id, sample)
		}
		for _, o := range s.observers {
			o.OnCheckpoint(id, sample)
		}
	}
	return nil
}

func (s *Simulation) finish(result *Result, seen int) {
	result.Events = s.prop.Events()[seen:]
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Final = result.Final[:0]
	for _, id := range s.reg.IDs() {
		sc, err := s.reg.Get(id)
		if err != nil {
			continue
		}
		result.Final = append(result.Final, s.summarize(sc))
	}
}

func (s *Simulation) summarize(sc *spacecraft.Spacecraft) Summary {
	pos, vel := sc.Position(), sc.Velocity()
	return Summary{
		ID:            sc.ID(),
		Radius:        r3.Norm(pos),
		Speed:         r3.Norm(vel),
		SemiMajorAxis: orbits.SemiMajorAxis(pos, vel, s.body.Mu),
		Eccentricity:  orbits.Eccentricity(pos, vel, s.body.Mu),
		DeltaV:        sc.DeltaVApplied(),
		Burns:         sc.Burns(),
	}
}

// onEvent runs inside the propagator's event lock, so observers and
// rebasing metrics see events one at a time.
func (s *Simulation) onEvent(ev propagator.Event) {
	sc, err := s.reg.Get(ev.Spacecraft)
	if err != nil {
		return
	}
	sample := sc.Sample()
	for _, m := range s.metrics {
		if r, ok := m.(Rebaser); ok {
			r.Rebase(ev.Spacecraft, sample)
		}
	}
	for _, o := range s.observers {
		o.OnEvent(ev, sample)
	}
}

func (s *Simulation) validateConfig(cfg Config) error {
	if cfg.Duration <= 0 || math.IsNaN(cfg.Duration) {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if cfg.Interval <= 0 || math.IsNaN(cfg.Interval) {
		return fmt.Errorf("interval must be positive, got %f", cfg.Interval)
	}
	if s.reg.Len() == 0 {
		return errors.New("no spacecraft to propagate")
	}
	return nil
}
