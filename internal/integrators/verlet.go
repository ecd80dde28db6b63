package integrators

import "github.com/san-kum/particlesim/internal/dynamo"

// Verlet is velocity Verlet. With the acceleration held constant over the
// step it reduces to the exact ballistic update:
//
//	x' = x + v*dt + a*dt²/2
//	v' = v + a*dt
type Verlet struct{}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Name() string { return "verlet" }

func (v *Verlet) Step(s dynamo.State, acc Vec3, dt float64) dynamo.State {
	next := s
	next.Position = s.Position.Add(s.Velocity.Mul(dt)).Add(acc.Mul(0.5 * dt * dt))
	next.Velocity = s.Velocity.Add(acc.Mul(dt))
	return next
}
