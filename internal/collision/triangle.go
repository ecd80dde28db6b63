package collision

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/particlesim/internal/dynamo"
)

const minNormalLen = 1e-12

// ContactSkin is how far a triangle contact point sits off the plane on the
// side the particle came from. Rounding after projection can otherwise leave
// a resting particle a hair behind the surface.
const ContactSkin = 1e-10

// Triangle is a finite patch of the plane through its three vertices.
type Triangle struct {
	V      [3]mgl64.Vec3
	normal mgl64.Vec3
	// u and v index the two axes kept when projecting onto the triangle's
	// plane; the axis most aligned with the normal is dropped.
	u, v int
}

func NewTriangle(v0, v1, v2 mgl64.Vec3) (*Triangle, error) {
	for _, p := range []mgl64.Vec3{v0, v1, v2} {
		if !dynamo.Finite(p) {
			return nil, &dynamo.ConfigError{Field: "boundary.vertices", Value: p, Err: dynamo.ErrNonFinite}
		}
	}

	n := v0.Sub(v1).Cross(v0.Sub(v2))
	if n.Len() < minNormalLen {
		return nil, &dynamo.ConfigError{
			Field: "boundary.vertices",
			Value: fmt.Sprintf("%v %v %v", v0, v1, v2),
			Err:   dynamo.ErrDegenerateGeometry,
		}
	}
	n = n.Normalize()

	drop := 0
	for axis := 1; axis < 3; axis++ {
		if math.Abs(n[axis]) > math.Abs(n[drop]) {
			drop = axis
		}
	}
	u, v := (drop+1)%3, (drop+2)%3

	return &Triangle{V: [3]mgl64.Vec3{v0, v1, v2}, normal: n, u: u, v: v}, nil
}

func (t *Triangle) Kind() string { return "triangle" }

// Plane returns a point on the plane and its unit normal.
func (t *Triangle) Plane() (point, normal mgl64.Vec3) {
	return t.V[0], t.normal
}

func (t *Triangle) SignedDistance(p mgl64.Vec3) float64 {
	return p.Sub(t.V[0]).Dot(t.normal)
}

// Detect signals a crossing when the signed distance changes sign over the
// step and the interpolated crossing point lies inside the triangle.
func (t *Triangle) Detect(prev, next dynamo.State) (Hit, bool) {
	dPrev := t.SignedDistance(prev.Position)
	dNext := t.SignedDistance(next.Position)
	if (dPrev < 0) == (dNext < 0) {
		return Hit{}, false
	}

	denom := math.Abs(dPrev) + math.Abs(dNext)
	if denom < minSpan {
		return Hit{}, false
	}
	f := clamp01(math.Abs(dPrev) / denom)

	point := lerp(prev.Position, next.Position, f)
	point = point.Sub(t.normal.Mul(t.SignedDistance(point)))
	if !t.Contains(point) {
		return Hit{}, false
	}

	normal := t.normal
	if dPrev < 0 {
		normal = normal.Mul(-1)
	}
	point = point.Add(normal.Mul(ContactSkin))
	return Hit{Normal: normal, Fraction: f, Point: point}, true
}

// Contains tests p, assumed to lie on the plane, against the three edges in
// the plane's own 2-D projection. Points on an edge count as inside.
func (t *Triangle) Contains(p mgl64.Vec3) bool {
	q := t.project(p)
	a, b, c := t.project(t.V[0]), t.project(t.V[1]), t.project(t.V[2])

	e1 := edgeSign(q, a, b)
	e2 := edgeSign(q, b, c)
	e3 := edgeSign(q, c, a)

	hasNeg := e1 < 0 || e2 < 0 || e3 < 0
	hasPos := e1 > 0 || e2 > 0 || e3 > 0
	return !(hasNeg && hasPos)
}

func (t *Triangle) project(p mgl64.Vec3) mgl64.Vec2 {
	return mgl64.Vec2{p[t.u], p[t.v]}
}

func edgeSign(p, a, b mgl64.Vec2) float64 {
	return (p[0]-b[0])*(a[1]-b[1]) - (a[0]-b[0])*(p[1]-b[1])
}
