package sim

import (
	"github.com/san-kum/particlesim/internal/collision"
	"github.com/san-kum/particlesim/internal/dynamo"
	"github.com/san-kum/particlesim/internal/integrators"
	"github.com/san-kum/particlesim/internal/physics"
)

// StepParticle advances one particle by dt and reports whether it touched
// the boundary. It reads nothing but its arguments, so particles may be
// stepped concurrently.
func StepParticle(
	st dynamo.State,
	dt float64,
	env dynamo.Environment,
	b collision.Boundary,
	integ integrators.Integrator,
	post collision.PostImpact,
) (dynamo.State, bool) {
	acc := physics.Acceleration(st, env)

	next := integ.Step(st, acc, dt)
	next.Velocity = physics.LorenzBlend(next.Velocity, st.Position, env.Lorenz)

	hit, ok := collision.Detect(st, next, b)
	if ok {
		impact := integ.Step(st, acc, hit.Fraction*dt)
		impact.Velocity = physics.LorenzBlend(impact.Velocity, st.Position, env.Lorenz)
		next = post.Finish(collision.Resolve(impact, hit), next, hit, dt)
	}

	next.Age = st.Age + dt
	return next, ok
}
