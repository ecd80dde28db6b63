package dynamo

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// AgeTolerance absorbs the rounding left by summing many small timesteps, so
// ten steps of 0.1 expire a particle with a lifespan of 1.0.
const AgeTolerance = 1e-9

// State is the physical state of a single particle.
type State struct {
	Position    mgl64.Vec3
	Velocity    mgl64.Vec3
	Mass        float64
	Lifespan    float64
	Age         float64
	Restitution float64
	Friction    float64
}

// Alive reports whether the particle has not yet reached its lifespan.
func (s State) Alive() bool {
	return s.Age+AgeTolerance < s.Lifespan
}

func (s State) Speed() float64 { return s.Velocity.Len() }

// KineticEnergy returns 1/2 m |v|^2.
func (s State) KineticEnergy() float64 {
	return 0.5 * s.Mass * s.Velocity.LenSqr()
}

// Color is the rendering projection of the particle's speed.
func (s State) Color() mgl64.Vec3 { return ColorOf(s.Velocity) }

// IsValid reports whether every numeric field is finite.
func (s State) IsValid() bool {
	return Finite(s.Position) && Finite(s.Velocity) &&
		finite(s.Mass) && finite(s.Lifespan) && finite(s.Age) &&
		finite(s.Restitution) && finite(s.Friction)
}

// Validate checks the state against the physical ranges a particle may take.
func (s State) Validate() error {
	if !s.IsValid() {
		return &ConfigError{Field: "particle", Value: fmt.Sprintf("%+v", s), Err: ErrNonFinite}
	}
	if s.Mass <= 0 {
		return &ConfigError{Field: "mass", Value: s.Mass, Err: ErrParameterBounds}
	}
	if s.Lifespan <= 0 {
		return &ConfigError{Field: "lifespan", Value: s.Lifespan, Err: ErrParameterBounds}
	}
	if s.Age < 0 {
		return &ConfigError{Field: "age", Value: s.Age, Err: ErrParameterBounds}
	}
	if s.Restitution < 0 || s.Restitution > 1 {
		return &ConfigError{Field: "restitution", Value: s.Restitution, Err: ErrParameterBounds}
	}
	if s.Friction < 0 || s.Friction > 1 {
		return &ConfigError{Field: "friction", Value: s.Friction, Err: ErrParameterBounds}
	}
	return nil
}

// DragMode selects how air resistance and wind scale with velocity.
type DragMode int

const (
	DragLinear DragMode = iota
	DragQuadratic
)

func (m DragMode) String() string {
	switch m {
	case DragLinear:
		return "linear"
	case DragQuadratic:
		return "quadratic"
	default:
		return fmt.Sprintf("DragMode(%d)", int(m))
	}
}

func ParseDragMode(s string) (DragMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "linear":
		return DragLinear, nil
	case "quadratic":
		return DragQuadratic, nil
	}
	return 0, fmt.Errorf("drag mode %q: %w", s, ErrUnknownMode)
}

// Lorenz holds the chaotic forcing parameters. Factor 0 disables it.
type Lorenz struct {
	Sigma  float64
	Rho    float64
	Beta   float64
	Factor float64
}

func DefaultLorenz() Lorenz {
	return Lorenz{Sigma: 10.0, Rho: 28.0, Beta: 8.0 / 3.0}
}

// Environment is the per-step constant forcing applied to every particle.
type Environment struct {
	Gravity       mgl64.Vec3
	Wind          mgl64.Vec3
	WindFactor    float64
	AirResistance float64
	Drag          DragMode
	Lorenz        Lorenz
}

func DefaultEnvironment() Environment {
	return Environment{
		Gravity: mgl64.Vec3{0, 0, -9.81},
		Drag:    DragLinear,
		Lorenz:  DefaultLorenz(),
	}
}

func (e Environment) Validate() error {
	if !Finite(e.Gravity) {
		return &ConfigError{Field: "gravity", Value: e.Gravity, Err: ErrNonFinite}
	}
	if !Finite(e.Wind) {
		return &ConfigError{Field: "wind", Value: e.Wind, Err: ErrNonFinite}
	}
	scalars := []struct {
		name string
		v    float64
	}{
		{"wind_factor", e.WindFactor},
		{"air_resistance", e.AirResistance},
		{"lorenz.sigma", e.Lorenz.Sigma},
		{"lorenz.rho", e.Lorenz.Rho},
		{"lorenz.beta", e.Lorenz.Beta},
		{"lorenz.factor", e.Lorenz.Factor},
	}
	for _, sc := range scalars {
		if !finite(sc.v) {
			return &ConfigError{Field: sc.name, Value: sc.v, Err: ErrNonFinite}
		}
	}
	if e.AirResistance < 0 {
		return &ConfigError{Field: "air_resistance", Value: e.AirResistance, Err: ErrParameterBounds}
	}
	if e.Drag != DragLinear && e.Drag != DragQuadratic {
		return &ConfigError{Field: "drag", Value: e.Drag, Err: ErrUnknownMode}
	}
	return nil
}

// Finite reports whether all components of v are neither NaN nor Inf.
func Finite(v mgl64.Vec3) bool {
	return finite(v[0]) && finite(v[1]) && finite(v[2])
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
