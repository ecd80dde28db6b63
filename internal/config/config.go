package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/particlesim/internal/collision"
	"github.com/san-kum/particlesim/internal/dynamo"
	"github.com/san-kum/particlesim/internal/integrators"
	"github.com/san-kum/particlesim/internal/sim"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 0.01
	DefaultSteps    = 1000
	DefaultCapacity = 2000
	DefaultBoxSize  = 10.0
	DefaultGravity  = 9.81
)

type Config struct {
	Simulation  SimulationConfig  `yaml:"simulation"`
	Environment EnvironmentConfig `yaml:"environment"`
	Boundary    BoundaryConfig    `yaml:"boundary"`
	Particle    ParticleConfig    `yaml:"particle"`
	Generators  []GeneratorConfig `yaml:"generators"`
}

type SimulationConfig struct {
	Integrator string  `yaml:"integrator"`
	Dt         float64 `yaml:"dt"`
	// FixedStep makes the live view step by Dt instead of the frame delta.
	FixedStep  bool   `yaml:"fixed_step"`
	Steps      int    `yaml:"steps"`
	Seed       int64  `yaml:"seed"`
	Capacity   int    `yaml:"capacity"`
	Workers    int    `yaml:"workers"`
	PostImpact string `yaml:"post_impact"`
	Eviction   string `yaml:"eviction"`
}

type EnvironmentConfig struct {
	Gravity       mgl64.Vec3   `yaml:"gravity,flow"`
	Wind          mgl64.Vec3   `yaml:"wind,flow"`
	WindFactor    float64      `yaml:"wind_factor"`
	AirResistance float64      `yaml:"air_resistance"`
	Drag          string       `yaml:"drag"`
	Lorenz        LorenzConfig `yaml:"lorenz"`
}

type LorenzConfig struct {
	Sigma  float64 `yaml:"sigma"`
	Rho    float64 `yaml:"rho"`
	Beta   float64 `yaml:"beta"`
	Factor float64 `yaml:"factor"`
}

type BoundaryConfig struct {
	// Kind is box, triangle or none.
	Kind     string        `yaml:"kind"`
	Size     float64       `yaml:"size"`
	Radius   float64       `yaml:"radius"`
	Vertices [3]mgl64.Vec3 `yaml:"vertices,flow"`
}

type ParticleConfig struct {
	Mass        float64 `yaml:"mass"`
	Lifespan    float64 `yaml:"lifespan"`
	Restitution float64 `yaml:"restitution"`
	Friction    float64 `yaml:"friction"`
	// Size is the on-screen point size; it has no physical effect.
	Size float64 `yaml:"size"`
}

type GeneratorConfig struct {
	Name           string     `yaml:"name"`
	Position       mgl64.Vec3 `yaml:"position,flow"`
	Velocity       mgl64.Vec3 `yaml:"velocity,flow"`
	Direction      mgl64.Vec3 `yaml:"direction,flow"`
	Speed          float64    `yaml:"speed"`
	Period         float64    `yaml:"period"`
	Capacity       int        `yaml:"capacity"`
	PositionJitter float64    `yaml:"position_jitter"`
	VelocityJitter float64    `yaml:"velocity_jitter"`
}

// UnmarshalYAML fills fields missing from a generator entry with defaults.
func (g *GeneratorConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain GeneratorConfig
	out := plain(DefaultGenerator())
	if err := value.Decode(&out); err != nil {
		return err
	}
	*g = GeneratorConfig(out)
	return nil
}

func DefaultGenerator() GeneratorConfig {
	g := sim.DefaultGenerator()
	return GeneratorConfig{
		Name:           g.Name,
		Position:       g.Position,
		Velocity:       g.Velocity,
		Direction:      g.Direction,
		Speed:          g.Speed,
		Period:         g.Period,
		Capacity:       g.Capacity,
		PositionJitter: g.PositionJitter,
		VelocityJitter: g.VelocityJitter,
	}
}

func DefaultConfig() *Config {
	l := dynamo.DefaultLorenz()
	p := sim.DefaultParticle()
	return &Config{
		Simulation: SimulationConfig{
			Integrator: integrators.Default,
			Dt:         DefaultDt,
			Steps:      DefaultSteps,
			Seed:       42,
			Capacity:   DefaultCapacity,
			Workers:    1,
			PostImpact: collision.PostImpactStop.String(),
			Eviction:   sim.EvictDrop.String(),
		},
		Environment: EnvironmentConfig{
			Gravity: mgl64.Vec3{0, 0, -DefaultGravity},
			Drag:    dynamo.DragLinear.String(),
			Lorenz:  LorenzConfig{Sigma: l.Sigma, Rho: l.Rho, Beta: l.Beta},
		},
		Boundary: BoundaryConfig{
			Kind: "box",
			Size: DefaultBoxSize,
			Vertices: [3]mgl64.Vec3{
				{0, 0, 0}, {0, 10, 10}, {0, -10, 10},
			},
		},
		Particle: ParticleConfig{
			Mass:        p.Mass,
			Lifespan:    p.Lifespan,
			Restitution: p.Restitution,
			Friction:    p.Friction,
			Size:        1,
		},
		Generators: []GeneratorConfig{DefaultGenerator()},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Generators = append([]GeneratorConfig(nil), c.Generators...)
	return &out
}

// BuildBoundary constructs the configured collision boundary. Kind "none"
// yields a nil boundary.
func (b BoundaryConfig) BuildBoundary() (collision.Boundary, error) {
	switch strings.ToLower(strings.TrimSpace(b.Kind)) {
	case "", "box":
		box, err := collision.NewBox(b.Size, b.Radius)
		if err != nil {
			return nil, err
		}
		return box, nil
	case "triangle":
		tri, err := collision.NewTriangle(b.Vertices[0], b.Vertices[1], b.Vertices[2])
		if err != nil {
			return nil, err
		}
		return tri, nil
	case "none":
		return nil, nil
	}
	return nil, &dynamo.ConfigError{Field: "boundary.kind", Value: b.Kind, Err: dynamo.ErrUnknownMode}
}

// Options converts the file form into validated simulator options.
func (c *Config) Options() (sim.Options, error) {
	var opts sim.Options

	if c.Simulation.Dt <= 0 {
		return opts, &dynamo.ConfigError{Field: "simulation.dt", Value: c.Simulation.Dt, Err: dynamo.ErrParameterBounds}
	}
	if c.Simulation.Steps < 0 {
		return opts, &dynamo.ConfigError{Field: "simulation.steps", Value: c.Simulation.Steps, Err: dynamo.ErrParameterBounds}
	}
	if _, err := integrators.Get(c.Simulation.Integrator); err != nil {
		return opts, &dynamo.ConfigError{Field: "simulation.integrator", Value: c.Simulation.Integrator, Err: dynamo.ErrUnknownMode}
	}
	post, err := collision.ParsePostImpact(c.Simulation.PostImpact)
	if err != nil {
		return opts, &dynamo.ConfigError{Field: "simulation.post_impact", Value: c.Simulation.PostImpact, Err: dynamo.ErrUnknownMode}
	}
	eviction, err := sim.ParseEviction(c.Simulation.Eviction)
	if err != nil {
		return opts, &dynamo.ConfigError{Field: "simulation.eviction", Value: c.Simulation.Eviction, Err: dynamo.ErrUnknownMode}
	}
	drag, err := dynamo.ParseDragMode(c.Environment.Drag)
	if err != nil {
		return opts, &dynamo.ConfigError{Field: "environment.drag", Value: c.Environment.Drag, Err: dynamo.ErrUnknownMode}
	}
	boundary, err := c.Boundary.BuildBoundary()
	if err != nil {
		return opts, err
	}
	if c.Particle.Size < 0 {
		return opts, &dynamo.ConfigError{Field: "particle.size", Value: c.Particle.Size, Err: dynamo.ErrParameterBounds}
	}

	opts = sim.Options{
		Dt:         c.Simulation.Dt,
		Capacity:   c.Simulation.Capacity,
		Workers:    c.Simulation.Workers,
		Seed:       c.Simulation.Seed,
		Integrator: c.Simulation.Integrator,
		PostImpact: post,
		Eviction:   eviction,
		Environment: dynamo.Environment{
			Gravity:       c.Environment.Gravity,
			Wind:          c.Environment.Wind,
			WindFactor:    c.Environment.WindFactor,
			AirResistance: c.Environment.AirResistance,
			Drag:          drag,
			Lorenz: dynamo.Lorenz{
				Sigma:  c.Environment.Lorenz.Sigma,
				Rho:    c.Environment.Lorenz.Rho,
				Beta:   c.Environment.Lorenz.Beta,
				Factor: c.Environment.Lorenz.Factor,
			},
		},
		Boundary: boundary,
		Particle: dynamo.State{
			Mass:        c.Particle.Mass,
			Lifespan:    c.Particle.Lifespan,
			Restitution: c.Particle.Restitution,
			Friction:    c.Particle.Friction,
		},
		Generators: make([]sim.GeneratorConfig, len(c.Generators)),
	}
	for i, g := range c.Generators {
		name := g.Name
		if name == "" {
			name = fmt.Sprintf("gen%d", i)
		}
		opts.Generators[i] = sim.GeneratorConfig{
			Name:           name,
			Position:       g.Position,
			Velocity:       g.Velocity,
			Direction:      g.Direction,
			Speed:          g.Speed,
			Period:         g.Period,
			Capacity:       g.Capacity,
			PositionJitter: g.PositionJitter,
			VelocityJitter: g.VelocityJitter,
		}
	}

	if err := opts.Validate(); err != nil {
		return sim.Options{}, err
	}
	return opts, nil
}

// LiveOptions is Options for the interactive view: without FixedStep the
// simulator follows the frame delta.
func (c *Config) LiveOptions() (sim.Options, error) {
	opts, err := c.Options()
	if err != nil {
		return opts, err
	}
	if !c.Simulation.FixedStep {
		opts.Dt = 0
	}
	return opts, nil
}

// Validate reports the first invalid field, if any.
func (c *Config) Validate() error {
	_, err := c.Options()
	return err
}
