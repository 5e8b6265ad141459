package propagator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/astroprop/internal/bodies"
	"github.com/san-kum/astroprop/internal/dynamo"
	"github.com/san-kum/astroprop/internal/events"
	"github.com/san-kum/astroprop/internal/integrators"
	"github.com/san-kum/astroprop/internal/logging"
	"github.com/san-kum/astroprop/internal/spacecraft"
	"github.com/san-kum/astroprop/internal/telemetry"
)

const DefaultWindow = 2.0

var ErrTargetInPast = errors.New("propagator: target time precedes spacecraft time")

// Event is a handled detector firing.
type Event struct {
	Spacecraft string  `json:"spacecraft"`
	Detector   string  `json:"detector"`
	Time       float64 `json:"t"`
}

type Option func(*Propagator)

func WithWindow(w float64) Option {
	return func(p *Propagator) { p.window = w }
}

func WithIntegrator(cfg integrators.Config) Option {
	return func(p *Propagator) { p.intCfg = cfg }
}

func WithLogger(logger log.Logger) Option {
	return func(p *Propagator) { p.logger = logging.Subsystem(logger, "prop") }
}

func WithTelemetry(m *telemetry.Metrics) Option {
	return func(p *Propagator) { p.metrics = m }
}

// WithParallel propagates spacecraft concurrently, one task each.
func WithParallel(on bool) Option {
	return func(p *Propagator) { p.parallel = on }
}

// WithEventListener is called for every handled event, serialised across
// spacecraft.
func WithEventListener(fn func(Event)) Option {
	return func(p *Propagator) { p.listeners = append(p.listeners, fn) }
}

// entry is everything one propagation task owns exclusively.
type entry struct {
	sc        *spacecraft.Spacecraft
	detectors []events.Detector
	deriv     *Derivative
	stepper   *integrators.DormandPrince

	// step size carried from one window into the next
	h float64
}

type Propagator struct {
	model    bodies.AccelerationModel
	reg      *spacecraft.Registry
	entries  map[string]*entry
	window   float64
	intCfg   integrators.Config
	parallel bool

	logger    log.Logger
	metrics   *telemetry.Metrics
	listeners []func(Event)

	mu     sync.Mutex
	events []Event
	t      float64
}

// New binds the acceleration model and registers the maneuver plan of
// every spacecraft in reg as a detector.
func New(model bodies.AccelerationModel, reg *spacecraft.Registry, opts ...Option) (*Propagator, error) {
	if model == nil {
		return nil, errors.New("propagator: acceleration model must be set")
	}
	if reg == nil {
		return nil, errors.New("propagator: spacecraft registry must be set")
	}
	p := &Propagator{
		model:   model,
		reg:     reg,
		entries: make(map[string]*entry),
		window:  DefaultWindow,
		intCfg:  integrators.DefaultConfig(),
		logger:  log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.window <= 0 || math.IsNaN(p.window) {
		return nil, fmt.Errorf("propagator: window must be positive, got %g", p.window)
	}
	if err := p.sync(); err != nil {
		return nil, err
	}
	return p, nil
}

// sync creates entries for spacecraft added to the registry since the last
// call.
func (p *Propagator) sync() error {
	for _, id := range p.reg.IDs() {
		if _, ok := p.entries[id]; ok {
			continue
		}
		sc, err := p.reg.Get(id)
		if err != nil {
			return err
		}
		e := &entry{
			sc:      sc,
			deriv:   NewDerivative(p.model, sc.Blocks()),
			stepper: integrators.NewDormandPrince(p.intCfg),
		}
		if plan := sc.Plan(); plan != nil {
			e.detectors = append(e.detectors, plan)
		}
		if len(p.entries) == 0 {
			p.t = sc.Time()
		}
		p.entries[id] = e
	}
	return nil
}

// AddDetector registers an extra detector for one spacecraft.
func (p *Propagator) AddDetector(id string, det events.Detector) error {
	if err := p.sync(); err != nil {
		return err
	}
	e, ok := p.entries[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, dynamo.ErrUnknownSpacecraft)
	}
	e.detectors = append(e.detectors, det)
	return nil
}

// Time is the last time every spacecraft was propagated to.
func (p *Propagator) Time() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.t
}

// Events returns the handled events in the order they were handled.
func (p *Propagator) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.events...)
}

// PropagateTo advances every spacecraft to target and returns target.
func (p *Propagator) PropagateTo(ctx context.Context, target float64) (float64, error) {
	if err := p.sync(); err != nil {
		return p.Time(), err
	}
	ids := p.reg.IDs()

	if p.parallel && len(ids) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		for _, id := range ids {
			e := p.entries[id]
			g.Go(func() error {
				return p.propagate(gctx, e, target)
			})
		}
		if err := g.Wait(); err != nil {
			return p.Time(), err
		}
	} else {
		for _, id := range ids {
			if err := p.propagate(ctx, p.entries[id], target); err != nil {
				return p.Time(), err
			}
		}
	}

	p.mu.Lock()
	p.t = target
	p.mu.Unlock()
	return target, nil
}

// PropagateSpacecraft advances one spacecraft to target.
func (p *Propagator) PropagateSpacecraft(ctx context.Context, id string, target float64) error {
	if err := p.sync(); err != nil {
		return err
	}
	e, ok := p.entries[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, dynamo.ErrUnknownSpacecraft)
	}
	return p.propagate(ctx, e, target)
}

func (p *Propagator) propagate(ctx context.Context, e *entry, target float64) error {
	sc := e.sc
	t0 := sc.Time()
	if target < t0 {
		return fmt.Errorf("%s at t=%g, target %g: %w", sc.ID(), t0, target, ErrTargetInPast)
	}

	level.Debug(p.logger).Log("sc", sc.ID(), "from", t0, "to", target, "window", p.window)

	for i := 1; sc.Time() < target; i++ {
		select {
		case <-ctx.Done():
			return p.fail(e, fmt.Errorf("%w: %v", dynamo.ErrContextCanceled, ctx.Err()))
		default:
		}

		start := sc.Time()
		end := t0 + float64(i)*p.window
		if end > target || target-end < 1e-9*math.Max(1, math.Abs(target)) {
			end = target
		}
		if end <= start {
			continue
		}
		if err := p.step(e, start, end); err != nil {
			return p.fail(e, err)
		}
		p.metrics.ObserveWindow()
	}
	return nil
}

func (p *Propagator) fail(e *entry, err error) error {
	level.Error(p.logger).Log("sc", e.sc.ID(), "t", e.sc.Time(), "err", err)
	return &dynamo.SimulationError{
		Spacecraft: e.sc.ID(),
		Time:       e.sc.Time(),
		State:      e.sc.IntegratedState(),
		Wrapped:    err,
	}
}

// step integrates one window [t0, t1], handling every event inside it.
// A detector fires at most once per window, except that a maneuver plan
// which has moved to a new stage is checked again for that stage.
func (p *Propagator) step(e *entry, t0, t1 float64) error {
	if e.h <= 0 {
		e.h = e.stepper.Config().InitialStep
	}
	before := e.sc.Sample()
	handled := make(map[handledKey]bool)
	rearmed := -1

	for {
		x := before.State.Clone()
		if _, err := e.stepper.Integrate(e.deriv, x, before.T, t1, e.h); err != nil {
			return err
		}
		stats := e.stepper.Stats()
		p.metrics.ObserveIntegration(stats)
		after := dynamo.Sample{State: x, T: t1}

		idx := -1
		var first dynamo.Sample
		for i, det := range e.detectors {
			if handled[keyOf(i, det)] || !det.Fires(before, after) {
				continue
			}
			ev, err := e.stepper.FindEventTime(e.deriv, before, t1, det, e.h)
			if err != nil {
				return fmt.Errorf("locating %s: %w", det.Name(), err)
			}
			p.metrics.ObserveBisection(e.stepper.Stats())
			if i == rearmed && ev.T-before.T < integrators.EventTolerance {
				// the next stage is armed exactly on its own root
				continue
			}
			if idx < 0 || ev.T < first.T {
				idx, first = i, ev
			}
		}

		if idx < 0 {
			if stats.NextStep > 0 {
				e.h = stats.NextStep
			}
			return e.sc.SetIntegratedState(x, t1)
		}

		det := e.detectors[idx]
		handled[keyOf(idx, det)] = true
		if err := p.handle(e, det, first); err != nil {
			return err
		}
		rearmed = idx
		before = e.sc.Sample()
	}
}

// handledKey identifies a detector, and for staged detectors the stage it
// was in, within one window.
type handledKey struct {
	index int
	stage int
}

type staged interface {
	Stage() int
}

func keyOf(i int, det events.Detector) handledKey {
	k := handledKey{index: i}
	if s, ok := det.(staged); ok {
		k.stage = s.Stage()
	}
	return k
}

func (p *Propagator) handle(e *entry, det events.Detector, at dynamo.Sample) error {
	sc := e.sc
	if err := sc.SetIntegratedState(at.State, at.T); err != nil {
		return err
	}
	if err := det.HandleEvent(sc, at.T); err != nil {
		return fmt.Errorf("%s at t=%g: %w", det.Name(), at.T, err)
	}
	if err := sc.Update(at.T); err != nil {
		return err
	}

	level.Info(p.logger).Log("sc", sc.ID(), "event", det.Name(), "t", at.T, "dv_total", sc.DeltaVApplied())
	p.metrics.ObserveEvent(sc.ID(), det.Name())

	ev := Event{Spacecraft: sc.ID(), Detector: det.Name(), Time: at.T}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	for _, fn := range p.listeners {
		fn(ev)
	}
	return nil
}
