package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for propagation.
var (
	// ErrInvalidState indicates a state vector with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrContextCanceled indicates propagation was interrupted between windows.
	ErrContextCanceled = errors.New("dynamo: propagation canceled by context")

	// ErrStepTooSmall indicates the adaptive step fell below the configured minimum.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrMaxSteps indicates an integration exceeded its step budget.
	ErrMaxSteps = errors.New("dynamo: maximum step count exceeded")

	// ErrDimensionMismatch indicates a state whose length does not match the system.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")

	// ErrUnknownSpacecraft indicates a lookup of an unregistered spacecraft.
	ErrUnknownSpacecraft = errors.New("dynamo: unknown spacecraft")
)

// SimulationError wraps an error with the spacecraft and time it surfaced at.
type SimulationError struct {
	Spacecraft string
	Time       float64
	State      State
	Wrapped    error
}

func (e *SimulationError) Error() string {
	if e.Spacecraft == "" {
		return fmt.Sprintf("t=%.6f: %v", e.Time, e.Wrapped)
	}
	return fmt.Sprintf("%s (t=%.6f): %v", e.Spacecraft, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
