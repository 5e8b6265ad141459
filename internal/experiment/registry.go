package experiment

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/astroprop/internal/bodies"
	"github.com/san-kum/astroprop/internal/config"
	"github.com/san-kum/astroprop/internal/events"
	"github.com/san-kum/astroprop/internal/maneuvers"
	"github.com/san-kum/astroprop/internal/metrics"
	"github.com/san-kum/astroprop/internal/sim"
)

// TransferFunc builds a transfer for a spacecraft at pos, vel.
type TransferFunc func(pos, vel r3.Vec, tc config.TransferConfig, mu float64) (maneuvers.Transfer, error)

type Registry struct {
	gravity   map[string]func(bodies.Body) bodies.AccelerationModel
	transfers map[string]TransferFunc
}

func NewRegistry() *Registry {
	r := &Registry{
		gravity:   make(map[string]func(bodies.Body) bodies.AccelerationModel),
		transfers: make(map[string]TransferFunc),
	}

	r.gravity["point_mass"] = func(b bodies.Body) bodies.AccelerationModel { return bodies.NewPointMass(b) }
	r.gravity["j2"] = func(b bodies.Body) bodies.AccelerationModel { return bodies.NewOblate(b) }

	r.transfers["hohmann"] = func(pos, vel r3.Vec, tc config.TransferConfig, mu float64) (maneuvers.Transfer, error) {
		return maneuvers.HohmannFromState(pos, vel, tc.TargetRadius, mu)
	}
	r.transfers["bielliptic"] = func(pos, vel r3.Vec, tc config.TransferConfig, mu float64) (maneuvers.Transfer, error) {
		rb := tc.IntermediateRadius
		if rb == 0 {
			rb = 2 * tc.TargetRadius
		}
		return maneuvers.BiEllipticFromState(pos, vel, tc.TargetRadius, rb, mu)
	}
	r.transfers["sequence"] = func(_, _ r3.Vec, tc config.TransferConfig, _ float64) (maneuvers.Transfer, error) {
		return sequence(tc.Burns)
	}

	return r
}

func sequence(bcs []config.BurnConfig) (*maneuvers.Sequence, error) {
	burns := make([]maneuvers.Burn, len(bcs))
	for i, bc := range bcs {
		b := maneuvers.Burn{
			DeltaV:    bc.DeltaV,
			Direction: r3.Vec{X: bc.Direction[0], Y: bc.Direction[1], Z: bc.Direction[2]},
		}
		switch bc.Event {
		case "time":
			b.Timed, b.At = true, bc.At
		case "apsis":
			mode, err := events.ParseTrigger(bc.Trigger)
			if err != nil {
				return nil, fmt.Errorf("burn %d: %w", i, err)
			}
			b.Mode = mode
		default:
			return nil, fmt.Errorf("burn %d: unknown event %q", i, bc.Event)
		}
		burns[i] = b
	}
	return maneuvers.NewSequence(burns...)
}

// RegisterTransfer adds or replaces a named transfer kind.
func (r *Registry) RegisterTransfer(name string, fn TransferFunc) {
	r.transfers[name] = fn
}

func (r *Registry) GetGravity(name string, body bodies.Body) (bodies.AccelerationModel, error) {
	fn, ok := r.gravity[name]
	if !ok {
		return nil, fmt.Errorf("unknown gravity model: %s", name)
	}
	return fn(body), nil
}

func (r *Registry) GetTransfer(name string, pos, vel r3.Vec, tc config.TransferConfig, mu float64) (maneuvers.Transfer, error) {
	fn, ok := r.transfers[name]
	if !ok {
		return nil, fmt.Errorf("unknown transfer: %s", name)
	}
	return fn(pos, vel, tc, mu)
}

func (r *Registry) ListGravity() []string {
	return sortedKeys(r.gravity)
}

func (r *Registry) ListTransfers() []string {
	return sortedKeys(r.transfers)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns the conserved-quantity monitors that apply to a
// gravity model. A J2 field only conserves the polar component of angular
// momentum.
func (r *Registry) DefaultMetrics(gravity string, model bodies.AccelerationModel) []sim.Metric {
	var ms []sim.Metric
	if pot, ok := model.(bodies.Potential); ok {
		ms = append(ms, metrics.NewEnergyDrift(pot))
	}
	switch gravity {
	case "point_mass":
		ms = append(ms, metrics.NewMomentumDrift())
	case "j2":
		ms = append(ms, metrics.NewAxialMomentumDrift())
	}
	return append(ms, metrics.NewMinRadius())
}
