package maneuvers

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/astroprop/internal/dynamo"
	"github.com/san-kum/astroprop/internal/events"
	"github.com/san-kum/astroprop/internal/frames"
)

type vehicle string

func (v vehicle) ID() string { return string(v) }

func equatorial(t float64) dynamo.Sample {
	return dynamo.Sample{State: dynamo.State{7000e3, 0, 0, 0, 7.5e3, 0}, T: t}
}

func threeStagePlan(t *testing.T) *Plan {
	t.Helper()
	var ms []Maneuver
	for i, at := range []float64{10, 20, 30} {
		m, err := New(float64(i+1), frames.PlusJ, events.NewTime(at))
		if err != nil {
			t.Fatal(err)
		}
		ms = append(ms, m)
	}
	return NewPlan(ms...)
}

func TestPlan_InitialState(t *testing.T) {
	p := threeStagePlan(t)
	if !p.Active() || p.Stage() != 0 || p.Len() != 3 {
		t.Errorf("unexpected initial state: active=%v stage=%d len=%d", p.Active(), p.Stage(), p.Len())
	}
	if NewPlan().Active() {
		t.Error("empty plan must start inactive")
	}
}

func TestPlan_DelegatesToCurrentStage(t *testing.T) {
	p := threeStagePlan(t)

	if p.Fires(equatorial(0), equatorial(5)) {
		t.Error("plan fired before first trigger time")
	}
	if !p.Fires(equatorial(9), equatorial(11)) {
		t.Error("plan should fire on first stage trigger")
	}
	if p.Fires(equatorial(19), equatorial(21)) {
		t.Error("second stage trigger must not fire before the first event")
	}
	if g := p.G(equatorial(4)); g != 6 {
		t.Errorf("expected g = 6 from first stage, got %g", g)
	}

	if err := p.HandleEvent(vehicle("sc1"), 10); err != nil {
		t.Fatal(err)
	}
	if !p.Fires(equatorial(19), equatorial(21)) {
		t.Error("plan should fire on second stage trigger after advancing")
	}
}

func TestPlan_Monotonicity(t *testing.T) {
	p := threeStagePlan(t)

	for i := 0; i < 3; i++ {
		if err := p.HandleEvent(vehicle("sc1"), float64(10*(i+1))); err != nil {
			t.Fatalf("event %d: %v", i, err)
		}
		if p.Stage() != i+1 {
			t.Errorf("expected stage %d, got %d", i+1, p.Stage())
		}
	}

	if p.Active() {
		t.Error("plan should be inactive after all stages fired")
	}
	pairs := [][2]float64{{0, 100}, {29, 31}, {9, 11}}
	for _, pr := range pairs {
		if p.Fires(equatorial(pr[0]), equatorial(pr[1])) {
			t.Errorf("exhausted plan fired on [%g, %g]", pr[0], pr[1])
		}
	}
	if !math.IsNaN(p.G(equatorial(0))) {
		t.Error("expected NaN trigger value from exhausted plan")
	}
	if _, err := p.Current(); !errors.Is(err, ErrPlanExhausted) {
		t.Errorf("expected ErrPlanExhausted from Current, got %v", err)
	}
	if err := p.HandleEvent(vehicle("sc1"), 40); !errors.Is(err, ErrPlanExhausted) {
		t.Errorf("expected ErrPlanExhausted from HandleEvent, got %v", err)
	}
	if p.Stage() != 3 {
		t.Errorf("stage moved past terminal state: %d", p.Stage())
	}
}

func TestPlan_ControlInputDrainsQueue(t *testing.T) {
	p := threeStagePlan(t)
	s := equatorial(10)

	if err := p.HandleEvent(vehicle("sc1"), 10); err != nil {
		t.Fatal(err)
	}
	if p.Pending() != 1 {
		t.Fatalf("expected one queued burn, got %d", p.Pending())
	}

	dv, err := p.ControlInput(s)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(dv.Y-1) > 1e-12 || math.Abs(dv.X) > 1e-12 || math.Abs(dv.Z) > 1e-12 {
		t.Errorf("expected in-track 1 m/s along +Y, got %v", dv)
	}

	again, err := p.ControlInput(s)
	if err != nil {
		t.Fatal(err)
	}
	if again != (r3.Vec{}) {
		t.Errorf("queued burn applied twice: %v", again)
	}
}

func TestPlan_ControlInputSumsQueued(t *testing.T) {
	radial, _ := New(3, frames.PlusI, events.NewTime(0))
	cross, _ := New(4, frames.PlusK, events.NewTime(0))
	p := NewPlan(radial, cross)

	for i := 0; i < 2; i++ {
		if err := p.HandleEvent(vehicle("sc1"), 0); err != nil {
			t.Fatal(err)
		}
	}
	dv, err := p.ControlInput(equatorial(0))
	if err != nil {
		t.Fatal(err)
	}
	if r3.Norm(r3.Sub(dv, r3.Vec{X: 3, Z: 4})) > 1e-12 {
		t.Errorf("expected (3, 0, 4), got %v", dv)
	}
}

func TestPlan_HandlersNotified(t *testing.T) {
	p := threeStagePlan(t)
	calls := 0
	p.AddHandler(events.HandlerFunc(func(target events.Target, at float64) error {
		calls++
		if target.ID() != "sc1" {
			t.Errorf("unexpected target %s", target.ID())
		}
		return nil
	}))
	if err := p.HandleEvent(vehicle("sc1"), 10); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("expected one handler call, got %d", calls)
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(1, r3.Vec{}, events.NewTime(0)); err == nil {
		t.Error("expected error for zero direction")
	}
	if _, err := New(1, frames.PlusJ, nil); err == nil {
		t.Error("expected error for missing trigger")
	}
	m, err := New(2, r3.Vec{Y: 5}, events.NewTime(0))
	if err != nil {
		t.Fatal(err)
	}
	if m.Direction() != frames.PlusJ {
		t.Errorf("direction not normalised: %v", m.Direction())
	}
	if m.RIC() != (r3.Vec{Y: 2}) {
		t.Errorf("unexpected RIC delta-v %v", m.RIC())
	}
}
