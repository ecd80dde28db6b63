// Package physics computes the forcing applied to a particle each step.
//
// [Acceleration] sums gravity, wind and air drag and divides by mass. Drag
// and wind follow the environment's [dynamo.DragMode]:
//
//   - linear: drag = -k*v, wind = f*w
//   - quadratic: drag = -k*v|v|, wind = f*w|w| (per component, sign kept)
//
// Chaotic forcing is not a force. [LorenzBlend] nudges the integrated
// velocity toward the Lorenz attractor's flow evaluated at the particle's
// pre-step position:
//
//	acc := physics.Acceleration(s, env)
//	next := euler.Step(s, acc, dt)
//	next.Velocity = physics.LorenzBlend(next.Velocity, s.Position, env.Lorenz)
package physics
