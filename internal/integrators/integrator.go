package integrators

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/particlesim/internal/dynamo"
)

type Vec3 = mgl64.Vec3

// Integrator advances a particle by dt under a constant acceleration. It must
// be a pure function of its arguments; scalar fields pass through unchanged.
type Integrator interface {
	Name() string
	Step(s dynamo.State, acc Vec3, dt float64) dynamo.State
}

var registry = map[string]func() Integrator{
	"euler":      func() Integrator { return NewEuler() },
	"symplectic": func() Integrator { return NewSymplectic() },
	"verlet":     func() Integrator { return NewVerlet() },
}

// Default is the integrator used when none is configured.
const Default = "euler"

func Get(name string) (Integrator, error) {
	if name == "" {
		name = Default
	}
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator %q: %w", name, dynamo.ErrUnknownMode)
	}
	return fn(), nil
}

func List() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
