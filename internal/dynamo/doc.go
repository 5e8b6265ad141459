// Package dynamo provides the shared primitives of the propagation core.
//
// The package defines the types every other package speaks in:
//
//   - [State]: flat state vector (position, velocity, then extra blocks)
//   - [Sample]: a state paired with the time it holds at
//   - [System]: derivative function dX/dt = f(X, t)
//   - [SimulationError]: error annotated with spacecraft and time
//
// # Example
//
//	x := dynamo.State{r, 0, 0, 0, v, 0}
//	s := dynamo.Sample{State: x, T: 0}
//	dx := sys.Derive(s.State, s.T)
//
// # Thread Safety
//
// State values are plain slices. Callers that hand a State to another
// goroutine must Clone it first.
package dynamo
