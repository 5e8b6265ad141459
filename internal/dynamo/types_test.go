package dynamo

import (
	"errors"
	"math"
	"testing"
)

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		valid bool
	}{
		{"empty", State{}, true},
		{"normal", State{1.0, 2.0, 3.0}, true},
		{"zeros", State{0.0, 0.0}, true},
		{"with NaN", State{1.0, math.NaN()}, false},
		{"with +Inf", State{1.0, math.Inf(1)}, false},
		{"with -Inf", State{1.0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestState_Norm(t *testing.T) {
	tests := []struct {
		state    State
		expected float64
	}{
		{State{3, 4}, 5.0},
		{State{1, 0}, 1.0},
		{State{0, 0}, 0.0},
		{State{1, 1, 1, 1}, 2.0},
	}

	for _, tt := range tests {
		if got := tt.state.Norm(); math.Abs(got-tt.expected) > 1e-10 {
			t.Errorf("Norm(%v) = %v, want %v", tt.state, got, tt.expected)
		}
	}
}

func TestState_Block(t *testing.T) {
	s := State{0, 1, 2, 3, 4, 5, 6, 7}
	b := s.Block(6, 2)
	if len(b) != 2 || b[0] != 6 || b[1] != 7 {
		t.Fatalf("Block(6, 2) = %v", b)
	}
	b[0] = 60
	if s[6] != 60 {
		t.Error("Block should alias the parent state")
	}
	if cap(b) != 2 {
		t.Errorf("Block capacity = %d, want 2", cap(b))
	}
}

func TestSample_Clone(t *testing.T) {
	s := Sample{State: State{1, 2}, T: 3}
	c := s.Clone()
	c.State[0] = 99
	if s.State[0] != 1 {
		t.Error("Clone did not copy the state")
	}
	if c.T != 3 {
		t.Errorf("Clone T = %g, want 3", c.T)
	}
}

func TestSimulationError(t *testing.T) {
	err := &SimulationError{Spacecraft: "sat-1", Time: 1.5, Wrapped: ErrMaxSteps}
	expected := "sat-1 (t=1.500000): dynamo: maximum step count exceeded"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, ErrMaxSteps) {
		t.Error("SimulationError should unwrap to its cause")
	}

	anon := &SimulationError{Time: 2, Wrapped: ErrInvalidState}
	if got := anon.Error(); got != "t=2.000000: dynamo: invalid state (NaN or Inf detected)" {
		t.Errorf("Error() = %q", got)
	}
}
