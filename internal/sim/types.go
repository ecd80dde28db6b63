package sim

import (
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/particlesim/internal/collision"
	"github.com/san-kum/particlesim/internal/dynamo"
)

// Particle is a pool slot's payload: the physical state plus bookkeeping.
type Particle struct {
	dynamo.State
	ID        uint64
	Generator int
}

// Vertex is the rendering projection of a particle.
type Vertex struct {
	Position [3]float32
	Color    [3]float32
}

func vertexOf(s dynamo.State) Vertex {
	c := s.Color()
	return Vertex{
		Position: [3]float32{float32(s.Position[0]), float32(s.Position[1]), float32(s.Position[2])},
		Color:    [3]float32{float32(c[0]), float32(c[1]), float32(c[2])},
	}
}

// Frame summarises one completed step. States is only valid during the
// callback that receives it.
type Frame struct {
	Step       int
	Time       float64
	Dt         float64
	States     []dynamo.State
	Emitted    int
	Culled     int
	Collisions int
	Invalid    int
}

type Metric interface {
	Name() string
	Observe(f *Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(f *Frame)
}

// Eviction decides what an emission does when there is no room.
type Eviction int

const (
	EvictDrop Eviction = iota
	EvictOldest
)

func (e Eviction) String() string {
	switch e {
	case EvictDrop:
		return "drop"
	case EvictOldest:
		return "oldest"
	default:
		return fmt.Sprintf("Eviction(%d)", int(e))
	}
}

func ParseEviction(s string) (Eviction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "drop":
		return EvictDrop, nil
	case "oldest":
		return EvictOldest, nil
	}
	return 0, fmt.Errorf("eviction policy %q: %w", s, dynamo.ErrUnknownMode)
}

// GeneratorConfig describes a periodic particle source.
type GeneratorConfig struct {
	Name string
	// Position is the nominal emission point; it drifts by Velocity every step.
	Position  mgl64.Vec3
	Velocity  mgl64.Vec3
	Direction mgl64.Vec3
	Speed     float64
	// Period is the time between emissions.
	Period         float64
	Capacity       int
	PositionJitter float64
	VelocityJitter float64
}

// DefaultGenerator mirrors the homework generator: one particle every 10 ms,
// launched at speed 3 along Direction.
func DefaultGenerator() GeneratorConfig {
	return GeneratorConfig{
		Name:           "gen0",
		Direction:      mgl64.Vec3{0, 0, 1},
		Speed:          3,
		Period:         0.01,
		Capacity:       1000,
		PositionJitter: 0.1,
		VelocityJitter: 0.5,
	}
}

func (g GeneratorConfig) Validate() error {
	field := func(name string) string {
		if g.Name == "" {
			return "generator." + name
		}
		return "generator." + g.Name + "." + name
	}
	for _, v := range []struct {
		name string
		vec  mgl64.Vec3
	}{{"position", g.Position}, {"velocity", g.Velocity}, {"direction", g.Direction}} {
		if !dynamo.Finite(v.vec) {
			return &dynamo.ConfigError{Field: field(v.name), Value: v.vec, Err: dynamo.ErrNonFinite}
		}
	}
	for _, v := range []struct {
		name string
		val  float64
	}{{"speed", g.Speed}, {"period", g.Period}, {"position_jitter", g.PositionJitter}, {"velocity_jitter", g.VelocityJitter}} {
		if math.IsNaN(v.val) || math.IsInf(v.val, 0) {
			return &dynamo.ConfigError{Field: field(v.name), Value: v.val, Err: dynamo.ErrNonFinite}
		}
	}
	if g.Period <= 0 {
		return &dynamo.ConfigError{Field: field("period"), Value: g.Period, Err: dynamo.ErrParameterBounds}
	}
	if g.Capacity <= 0 {
		return &dynamo.ConfigError{Field: field("capacity"), Value: g.Capacity, Err: dynamo.ErrParameterBounds}
	}
	if g.PositionJitter < 0 {
		return &dynamo.ConfigError{Field: field("position_jitter"), Value: g.PositionJitter, Err: dynamo.ErrParameterBounds}
	}
	if g.VelocityJitter < 0 {
		return &dynamo.ConfigError{Field: field("velocity_jitter"), Value: g.VelocityJitter, Err: dynamo.ErrParameterBounds}
	}
	return nil
}

// Options is the complete, validated configuration of a Simulator.
type Options struct {
	// Dt is the fixed step. Zero means Advance uses the frame delta.
	Dt          float64
	Capacity    int
	Workers     int
	Seed        int64
	Integrator  string
	PostImpact  collision.PostImpact
	Eviction    Eviction
	Environment dynamo.Environment
	// Boundary may be nil for open space.
	Boundary collision.Boundary
	// Particle is the template every emitted particle starts from.
	Particle   dynamo.State
	Generators []GeneratorConfig
	Logger     *log.Logger
}

// DefaultParticle returns the homework particle: light, long-lived and
// mostly inelastic.
func DefaultParticle() dynamo.State {
	return dynamo.State{
		Mass:        0.1,
		Lifespan:    120,
		Restitution: 0.1,
		Friction:    0.1,
	}
}

func DefaultOptions() Options {
	box, _ := collision.NewBox(10, 0)
	return Options{
		Dt:          0.01,
		Capacity:    2000,
		Workers:     1,
		Seed:        42,
		Integrator:  "euler",
		Environment: dynamo.DefaultEnvironment(),
		Boundary:    box,
		Particle:    DefaultParticle(),
		Generators:  []GeneratorConfig{DefaultGenerator()},
	}
}

func (o Options) Validate() error {
	if math.IsNaN(o.Dt) || math.IsInf(o.Dt, 0) {
		return &dynamo.ConfigError{Field: "dt", Value: o.Dt, Err: dynamo.ErrNonFinite}
	}
	if o.Dt < 0 {
		return &dynamo.ConfigError{Field: "dt", Value: o.Dt, Err: dynamo.ErrParameterBounds}
	}
	if o.Capacity <= 0 {
		return &dynamo.ConfigError{Field: "capacity", Value: o.Capacity, Err: dynamo.ErrParameterBounds}
	}
	if o.Workers < 0 {
		return &dynamo.ConfigError{Field: "workers", Value: o.Workers, Err: dynamo.ErrParameterBounds}
	}
	if o.PostImpact < collision.PostImpactStop || o.PostImpact > collision.PostImpactReflect {
		return &dynamo.ConfigError{Field: "post_impact", Value: o.PostImpact, Err: dynamo.ErrUnknownMode}
	}
	if o.Eviction != EvictDrop && o.Eviction != EvictOldest {
		return &dynamo.ConfigError{Field: "eviction", Value: o.Eviction, Err: dynamo.ErrUnknownMode}
	}
	if err := o.Environment.Validate(); err != nil {
		return err
	}
	tmpl := o.Particle
	tmpl.Age = 0
	if err := tmpl.Validate(); err != nil {
		return err
	}
	for _, g := range o.Generators {
		if err := g.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Result is the series recorded by a headless run, one entry per step.
type Result struct {
	Times      []float64
	Live       []int
	Energy     []float64
	Collisions []int
	Emitted    []int
	Culled     []int
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

// GeneratorStatus is the display-facing view of a generator.
type GeneratorStatus struct {
	Name     string
	Position mgl64.Vec3
	Live     int
	Capacity int
	Emitted  uint64
}
