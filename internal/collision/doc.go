// Package collision detects boundary crossings within one integration step
// and computes the impulse response.
//
// Two boundaries are supported: [Box], an origin-centred cube that keeps
// particles inside, and [Triangle], a finite patch of a plane that particles
// bounce off from either side. Detection is continuous in time: given the
// state before and after an unconstrained step, a [Hit] reports the fraction
// of the step at which the particle touches the surface.
//
// Only the first contact in a step is resolved. A particle deflected into a
// second surface within the same step is not re-tested until the next step.
package collision
