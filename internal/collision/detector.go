package collision

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/particlesim/internal/dynamo"
)

// minSpan is the smallest per-step displacement from which an impact
// fraction is considered reliable.
const minSpan = 1e-12

// Hit describes the first boundary contact within a step.
type Hit struct {
	// Normal is the unit surface normal facing the side the particle came from.
	Normal mgl64.Vec3
	// Fraction of the step, in [0,1], at which contact happens.
	Fraction float64
	// Point is the contact position: on the surface for a box, ContactSkin
	// off the plane on the incoming side for a triangle.
	Point mgl64.Vec3
}

// Boundary is a collision volume or surface.
type Boundary interface {
	Kind() string
	Detect(prev, next dynamo.State) (Hit, bool)
}

// Detect reports the first crossing of b between prev and next. Results that
// are not finite are discarded so NaN never reaches the resolver.
func Detect(prev, next dynamo.State, b Boundary) (Hit, bool) {
	if b == nil || !dynamo.Finite(prev.Position) || !dynamo.Finite(next.Position) {
		return Hit{}, false
	}
	hit, ok := b.Detect(prev, next)
	if !ok {
		return Hit{}, false
	}
	if math.IsNaN(hit.Fraction) || math.IsInf(hit.Fraction, 0) ||
		!dynamo.Finite(hit.Point) || !dynamo.Finite(hit.Normal) {
		return Hit{}, false
	}
	return hit, true
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

func lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
