package collision

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/particlesim/internal/dynamo"
)

// TangentThreshold is the tangential speed below which friction is skipped.
const TangentThreshold = 0.01

// ResponseVelocity splits v into normal and tangential parts about the unit
// normal n. Friction removes up to friction*|vn| of tangential speed without
// reversing it; the normal part is reflected and scaled by restitution.
// A velocity that is not approaching the surface (v·n >= 0) is returned as is.
func ResponseVelocity(v, n mgl64.Vec3, restitution, friction float64) mgl64.Vec3 {
	approach := v.Dot(n)
	if approach >= 0 {
		return v
	}
	vn := n.Mul(approach)
	vt := v.Sub(vn)

	if vtLen := vt.Len(); vtLen > TangentThreshold {
		reduction := friction * vn.Len()
		if reduction >= vtLen {
			vt = mgl64.Vec3{}
		} else {
			vt = vt.Sub(vt.Mul(reduction / vtLen))
		}
	}

	return vt.Add(vn.Mul(-restitution))
}

// Resolve returns impact placed on the contact point with its velocity
// replaced by the collision response.
func Resolve(impact dynamo.State, hit Hit) dynamo.State {
	out := impact
	out.Position = hit.Point
	out.Velocity = ResponseVelocity(impact.Velocity, hit.Normal, impact.Restitution, impact.Friction)
	return out
}

// PostImpact selects what happens during the part of the step left after a
// contact.
type PostImpact int

const (
	// PostImpactStop leaves the particle on the contact point.
	PostImpactStop PostImpact = iota
	// PostImpactResume integrates the remainder with the response velocity.
	PostImpactResume
	// PostImpactReflect mirrors the unconstrained end position through the surface.
	PostImpactReflect
)

func (p PostImpact) String() string {
	switch p {
	case PostImpactStop:
		return "stop"
	case PostImpactResume:
		return "resume"
	case PostImpactReflect:
		return "reflect"
	default:
		return fmt.Sprintf("PostImpact(%d)", int(p))
	}
}

func ParsePostImpact(s string) (PostImpact, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "stop":
		return PostImpactStop, nil
	case "resume":
		return PostImpactResume, nil
	case "reflect":
		return PostImpactReflect, nil
	}
	return 0, fmt.Errorf("post-impact strategy %q: %w", s, dynamo.ErrUnknownMode)
}

// Finish applies the strategy to a resolved state. candidate is the state the
// integrator produced for the whole step, ignoring the boundary.
func (p PostImpact) Finish(resolved, candidate dynamo.State, hit Hit, dt float64) dynamo.State {
	switch p {
	case PostImpactResume:
		remaining := (1 - hit.Fraction) * dt
		resolved.Position = resolved.Position.Add(resolved.Velocity.Mul(remaining))
	case PostImpactReflect:
		depth := candidate.Position.Sub(hit.Point).Dot(hit.Normal)
		resolved.Position = candidate.Position.Sub(hit.Normal.Mul(2 * depth))
	}
	return resolved
}
