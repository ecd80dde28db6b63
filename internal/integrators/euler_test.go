package integrators

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/particlesim/internal/dynamo"
)

func particle() dynamo.State {
	return dynamo.State{
		Position:    mgl64.Vec3{1, 2, 3},
		Velocity:    mgl64.Vec3{4, -1, 0.5},
		Mass:        0.1,
		Lifespan:    120,
		Age:         3,
		Restitution: 0.4,
		Friction:    0.2,
	}
}

func TestEulerUsesPreStepVelocity(t *testing.T) {
	s := particle()
	acc := mgl64.Vec3{0, 0, -10}
	next := NewEuler().Step(s, acc, 0.1)

	wantPos := s.Position.Add(s.Velocity.Mul(0.1))
	wantVel := s.Velocity.Add(acc.Mul(0.1))
	if next.Position != wantPos {
		t.Errorf("position = %v, want %v", next.Position, wantPos)
	}
	if next.Velocity != wantVel {
		t.Errorf("velocity = %v, want %v", next.Velocity, wantVel)
	}
}

func TestSymplecticUsesUpdatedVelocity(t *testing.T) {
	s := particle()
	acc := mgl64.Vec3{0, 0, -10}
	next := NewSymplectic().Step(s, acc, 0.1)

	wantVel := s.Velocity.Add(acc.Mul(0.1))
	wantPos := s.Position.Add(wantVel.Mul(0.1))
	if next.Position != wantPos || next.Velocity != wantVel {
		t.Errorf("got pos=%v vel=%v, want pos=%v vel=%v", next.Position, next.Velocity, wantPos, wantVel)
	}
}

func TestStepPassesScalarsThrough(t *testing.T) {
	for _, name := range List() {
		integ, err := Get(name)
		if err != nil {
			t.Fatal(err)
		}
		s := particle()
		next := integ.Step(s, mgl64.Vec3{1, 1, 1}, 0.05)
		if next.Mass != s.Mass || next.Lifespan != s.Lifespan || next.Age != s.Age ||
			next.Restitution != s.Restitution || next.Friction != s.Friction {
			t.Errorf("%s modified scalar fields: %+v", name, next)
		}
	}
}

func TestStepDeterministic(t *testing.T) {
	integ := NewEuler()
	s := particle()
	acc := mgl64.Vec3{0.3, -9.81, 1e-3}
	first := integ.Step(s, acc, 0.016)
	for i := 0; i < 100; i++ {
		if got := integ.Step(s, acc, 0.016); got != first {
			t.Fatalf("call %d differs: %+v vs %+v", i, got, first)
		}
	}
}

func TestFreeFlightIsLinear(t *testing.T) {
	integ := NewEuler()
	s := particle()
	p0, v0 := s.Position, s.Velocity
	dt := 0.125
	n := 64

	for i := 0; i < n; i++ {
		s = integ.Step(s, mgl64.Vec3{}, dt)
	}

	if s.Velocity != v0 {
		t.Errorf("velocity changed without forces: %v -> %v", v0, s.Velocity)
	}
	want := p0.Add(v0.Mul(float64(n) * dt))
	if !s.Position.ApproxEqualThreshold(want, 1e-9) {
		t.Errorf("position = %v, want %v", s.Position, want)
	}
}

func TestGetUnknown(t *testing.T) {
	if _, err := Get("rk4"); !errors.Is(err, dynamo.ErrUnknownMode) {
		t.Errorf("expected ErrUnknownMode, got %v", err)
	}
	integ, err := Get("")
	if err != nil || integ.Name() != Default {
		t.Errorf("empty name should resolve to %s, got %v %v", Default, integ, err)
	}
}

func TestVerletIsExactUnderConstantAcceleration(t *testing.T) {
	s := particle()
	p0, v0 := s.Position, s.Velocity
	acc := mgl64.Vec3{0, 0, -9.81}
	dt := 0.01
	n := 100

	integ := NewVerlet()
	for i := 0; i < n; i++ {
		s = integ.Step(s, acc, dt)
	}

	total := float64(n) * dt
	want := p0.Add(v0.Mul(total)).Add(acc.Mul(0.5 * total * total))
	if !s.Position.ApproxEqualThreshold(want, 1e-9) {
		t.Errorf("position = %v, want %v", s.Position, want)
	}
	if !s.Velocity.ApproxEqualThreshold(v0.Add(acc.Mul(total)), 1e-9) {
		t.Errorf("velocity = %v", s.Velocity)
	}
}
