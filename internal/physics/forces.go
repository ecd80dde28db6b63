package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/particlesim/internal/dynamo"
)

// Acceleration returns (gravity + wind + drag) / mass for s under env.
// A non-positive mass is a caller bug and panics.
func Acceleration(s dynamo.State, env dynamo.Environment) mgl64.Vec3 {
	if s.Mass <= 0 {
		panic(fmt.Sprintf("physics: non-positive mass %v reached the force model", s.Mass))
	}
	force := GravityForce(s, env).Add(WindForce(env)).Add(DragForce(s, env))
	return force.Mul(1 / s.Mass)
}

func GravityForce(s dynamo.State, env dynamo.Environment) mgl64.Vec3 {
	return env.Gravity.Mul(s.Mass)
}

// WindForce is windFactor*w, or windFactor*w|w| per component in quadratic mode.
func WindForce(env dynamo.Environment) mgl64.Vec3 {
	if env.Drag == dynamo.DragQuadratic {
		return signedSquare(env.Wind).Mul(env.WindFactor)
	}
	return env.Wind.Mul(env.WindFactor)
}

// DragForce always opposes the velocity: -k*v, or -k*v|v| per component in
// quadratic mode.
func DragForce(s dynamo.State, env dynamo.Environment) mgl64.Vec3 {
	if env.Drag == dynamo.DragQuadratic {
		return signedSquare(s.Velocity).Mul(-env.AirResistance)
	}
	return s.Velocity.Mul(-env.AirResistance)
}

func signedSquare(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{
		v[0] * math.Abs(v[0]),
		v[1] * math.Abs(v[1]),
		v[2] * math.Abs(v[2]),
	}
}
