package collision

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/particlesim/internal/dynamo"
)

// Box is an axis-aligned cube of edge Size centred on the origin. Particles of
// the given Radius stay within ±(Size/2 - Radius) on every axis.
type Box struct {
	Size   float64
	Radius float64
}

func NewBox(size, radius float64) (*Box, error) {
	b := &Box{Size: size, Radius: radius}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Box) Kind() string { return "box" }

func (b *Box) HalfExtent() float64 { return b.Size/2 - b.Radius }

func (b *Box) Validate() error {
	if math.IsNaN(b.Size) || math.IsInf(b.Size, 0) || math.IsNaN(b.Radius) || math.IsInf(b.Radius, 0) {
		return &dynamo.ConfigError{Field: "boundary.size", Value: b.Size, Err: dynamo.ErrNonFinite}
	}
	if b.Radius < 0 {
		return &dynamo.ConfigError{Field: "boundary.radius", Value: b.Radius, Err: dynamo.ErrParameterBounds}
	}
	if b.HalfExtent() <= 0 {
		return &dynamo.ConfigError{
			Field: "boundary.size",
			Value: fmt.Sprintf("%v (radius %v)", b.Size, b.Radius),
			Err:   dynamo.ErrDegenerateGeometry,
		}
	}
	return nil
}

// Detect scans x, y, z in order, +bound before -bound. The first bound that
// is exceeded while moving outward wins when several are crossed in the same
// step.
func (b *Box) Detect(prev, next dynamo.State) (Hit, bool) {
	bound := b.HalfExtent()
	for axis := 0; axis < 3; axis++ {
		for _, sign := range [2]float64{1, -1} {
			if sign*next.Position[axis] <= bound {
				continue
			}

			// Only outward motion on this axis counts.
			span := next.Position[axis] - prev.Position[axis]
			if sign*span < minSpan {
				continue
			}
			f := (sign*bound - prev.Position[axis]) / span
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return Hit{}, false
			}
			f = clamp01(f)

			var normal mgl64.Vec3
			normal[axis] = -sign

			point := lerp(prev.Position, next.Position, f)
			point[axis] = sign * bound

			return Hit{Normal: normal, Fraction: f, Point: point}, true
		}
	}
	return Hit{}, false
}

// Contains reports whether p lies inside the allowed region.
func (b *Box) Contains(p mgl64.Vec3) bool {
	bound := b.HalfExtent()
	for axis := 0; axis < 3; axis++ {
		if math.Abs(p[axis]) > bound {
			return false
		}
	}
	return true
}
