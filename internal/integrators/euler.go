package integrators

import "github.com/san-kum/particlesim/internal/dynamo"

// Euler advances position with the pre-step velocity, then velocity with the
// acceleration:
//
//	x' = x + v*dt
//	v' = v + a*dt
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Step(s dynamo.State, acc Vec3, dt float64) dynamo.State {
	next := s
	next.Position = s.Position.Add(s.Velocity.Mul(dt))
	next.Velocity = s.Velocity.Add(acc.Mul(dt))
	return next
}

// Symplectic updates velocity first and moves with the new velocity.
type Symplectic struct{}

func NewSymplectic() *Symplectic {
	return &Symplectic{}
}

func (e *Symplectic) Name() string { return "symplectic" }

func (e *Symplectic) Step(s dynamo.State, acc Vec3, dt float64) dynamo.State {
	next := s
	next.Velocity = s.Velocity.Add(acc.Mul(dt))
	next.Position = s.Position.Add(next.Velocity.Mul(dt))
	return next
}
