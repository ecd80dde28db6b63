package integrators

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/particlesim/internal/dynamo"
)

var gravity = mgl64.Vec3{0, 0, -9.81}

func benchmarkStep(b *testing.B, integ Integrator) {
	s := dynamo.State{Velocity: mgl64.Vec3{1, 0.5, 4}, Mass: 0.1, Lifespan: 120}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s = integ.Step(s, gravity, 0.01)
	}
}

func BenchmarkEuler(b *testing.B) {
	benchmarkStep(b, NewEuler())
}

func BenchmarkSymplectic(b *testing.B) {
	benchmarkStep(b, NewSymplectic())
}

func BenchmarkVerlet(b *testing.B) {
	benchmarkStep(b, NewVerlet())
}
