package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/particlesim/internal/dynamo"
)

// LorenzScale damps the user-facing Lorenz factor into a per-step blend weight.
const LorenzScale = 0.01

// LorenzTarget evaluates the Lorenz right-hand side at position p.
func LorenzTarget(p mgl64.Vec3, l dynamo.Lorenz) mgl64.Vec3 {
	return mgl64.Vec3{
		l.Sigma * (p[1] - p[0]),
		p[0]*(l.Rho-p[2]) - p[1],
		p[0]*p[1] - l.Beta*p[2],
	}
}

// LorenzBlend pulls v toward the Lorenz target at p by LorenzScale*Factor.
// It is a velocity-space correction applied after integration, not a force.
func LorenzBlend(v, p mgl64.Vec3, l dynamo.Lorenz) mgl64.Vec3 {
	if l.Factor == 0 {
		return v
	}
	w := LorenzScale * l.Factor
	return v.Mul(1 - w).Add(LorenzTarget(p, l).Mul(w))
}
