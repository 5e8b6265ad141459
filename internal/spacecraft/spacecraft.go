// Package spacecraft holds vehicle state and the registry the propagator
// resolves vehicles through.
package spacecraft

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/astroprop/internal/dynamo"
	"github.com/san-kum/astroprop/internal/maneuvers"
	"github.com/san-kum/astroprop/internal/orbits"
)

var ErrDuplicateID = errors.New("spacecraft: duplicate id")

type Spacecraft struct {
	id   string
	mass float64

	pos, vel r3.Vec
	t        float64

	blocks []Block
	dim    int
	plan   *maneuvers.Plan

	deltaV float64
	burns  int
}

type Option func(*Spacecraft)

func WithMass(kg float64) Option {
	return func(s *Spacecraft) { s.mass = kg }
}

func WithPlan(p *maneuvers.Plan) Option {
	return func(s *Spacecraft) { s.plan = p }
}

// WithProvider appends an additional state block. Blocks are laid out in
// the order they are added.
func WithProvider(p StateProvider) Option {
	return func(s *Spacecraft) {
		s.blocks = append(s.blocks, Block{Provider: p})
	}
}

// New builds a spacecraft from a 6-component position/velocity state at
// time t0.
func New(id string, pv dynamo.State, t0 float64, opts ...Option) (*Spacecraft, error) {
	if id == "" {
		return nil, errors.New("spacecraft: id must be set")
	}
	if len(pv) != PVSize {
		return nil, fmt.Errorf("spacecraft %s: state has %d components, want %d: %w", id, len(pv), PVSize, dynamo.ErrDimensionMismatch)
	}
	if !pv.IsValid() {
		return nil, fmt.Errorf("spacecraft %s: %w", id, dynamo.ErrInvalidState)
	}

	s := &Spacecraft{id: id, mass: 1, t: t0}
	s.pos, s.vel = orbits.PosVel(pv)
	for _, opt := range opts {
		opt(s)
	}

	offset := PVSize
	for i := range s.blocks {
		size := s.blocks[i].Provider.Size()
		s.blocks[i].Span = Span{Offset: offset, Size: size}
		offset += size
	}
	s.dim = offset
	return s, nil
}

func (s *Spacecraft) ID() string { return s.id }

func (s *Spacecraft) Mass() float64 { return s.mass }

func (s *Spacecraft) Time() float64 { return s.t }

func (s *Spacecraft) Position() r3.Vec { return s.pos }

func (s *Spacecraft) Velocity() r3.Vec { return s.vel }

func (s *Spacecraft) Plan() *maneuvers.Plan { return s.plan }

// Blocks returns the additional state blocks in layout order.
func (s *Spacecraft) Blocks() []Block {
	return append([]Block(nil), s.blocks...)
}

// Dim is the full integrated state length.
func (s *Spacecraft) Dim() int { return s.dim }

// IntegratedState concatenates position, velocity and every block.
func (s *Spacecraft) IntegratedState() dynamo.State {
	x := make(dynamo.State, s.dim)
	copy(x, orbits.StateOf(s.pos, s.vel))
	for _, b := range s.blocks {
		copy(x[b.Span.Offset:b.Span.End()], b.Provider.IntegratedState())
	}
	return x
}

func (s *Spacecraft) Sample() dynamo.Sample {
	return dynamo.Sample{State: s.IntegratedState(), T: s.t}
}

// SetIntegratedState splits x back into the spacecraft and its providers.
func (s *Spacecraft) SetIntegratedState(x dynamo.State, t float64) error {
	if len(x) != s.dim {
		return fmt.Errorf("spacecraft %s: state has %d components, want %d: %w", s.id, len(x), s.dim, dynamo.ErrDimensionMismatch)
	}
	s.pos, s.vel = orbits.PosVel(x)
	for _, b := range s.blocks {
		b.Provider.SetIntegratedState(x.Block(b.Span.Offset, b.Span.Size).Clone())
	}
	s.t = t
	return nil
}

// ApplyImpulse adds an inertial velocity change.
func (s *Spacecraft) ApplyImpulse(dv r3.Vec) {
	s.vel = r3.Add(s.vel, dv)
	s.deltaV += r3.Norm(dv)
	s.burns++
}

// Update applies any burns the maneuver plan has queued, using the state
// at time t.
func (s *Spacecraft) Update(t float64) error {
	s.t = t
	if s.plan == nil || s.plan.Pending() == 0 {
		return nil
	}
	dv, err := s.plan.ControlInput(s.Sample())
	if err != nil {
		return fmt.Errorf("spacecraft %s: %w", s.id, err)
	}
	s.ApplyImpulse(dv)
	return nil
}

// DeltaVApplied is the accumulated magnitude of applied impulses.
func (s *Spacecraft) DeltaVApplied() float64 { return s.deltaV }

// Burns is the number of impulses applied.
func (s *Spacecraft) Burns() int { return s.burns }
