// Package propagator advances spacecraft through time and resolves events
// along the way.
//
// Time is cut into fixed windows (2 time units by default) plus a final
// partial window. Each window is integrated in one call and every
// registered detector is checked against the samples at its two ends.
// When one fires, the crossing is bisected on dense output, the state is
// moved to the crossing, the detector's handler runs, the spacecraft
// applies any queued burn, and integration resumes to the window end from
// the corrected state.
//
// If several detectors fire in one window they are resolved in time
// order. After each event the remaining detectors are checked again over
// the rest of the window; a detector fires at most once per window. A
// maneuver plan counts once per stage, so consecutive stages may fire in
// the same window, but a stage is not fired on a root at the very instant
// it was armed.
//
// The integrator step size carries over from one window to the next.
//
// A bracket in which a detector reports a crossing that is not there is
// not detected: bisection then converges to the window end.
package propagator
