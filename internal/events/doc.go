// Package events implements trigger functions and crossing detection.
//
// A [Detector] evaluates a scalar trigger function g along a trajectory.
// A crossing between two samples is a sign change of g:
//
//	g(prev) * g(curr) <= 0
//
// The [Trigger] mode narrows which crossings count. [Increasing] also
// requires g(prev) <= 0 and [Decreasing] requires g(curr) <= 0, which is
// how the same zero of r.v is told apart as periapsis or apoapsis.
//
// Detectors only decide that a crossing happened between two samples.
// Locating the crossing time is the integrator's job.
package events
