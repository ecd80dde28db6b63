package config

import (
	"fmt"

	"github.com/san-kum/particlesim/internal/dynamo"
)

// Param is a scalar setting that can be edited live or swept.
type Param struct {
	Name string
	// Step is the increment used by interactive editing.
	Step float64
	Get  func(c *Config) float64
	Set  func(c *Config, v float64)
}

var params = []Param{
	{"environment.gravity.z", 0.5,
		func(c *Config) float64 { return c.Environment.Gravity[2] },
		func(c *Config, v float64) { c.Environment.Gravity[2] = v }},
	{"environment.wind.x", 0.5,
		func(c *Config) float64 { return c.Environment.Wind[0] },
		func(c *Config, v float64) { c.Environment.Wind[0] = v }},
	{"environment.wind.y", 0.5,
		func(c *Config) float64 { return c.Environment.Wind[1] },
		func(c *Config, v float64) { c.Environment.Wind[1] = v }},
	{"environment.wind_factor", 0.05,
		func(c *Config) float64 { return c.Environment.WindFactor },
		func(c *Config, v float64) { c.Environment.WindFactor = v }},
	{"environment.air_resistance", 0.01,
		func(c *Config) float64 { return c.Environment.AirResistance },
		func(c *Config, v float64) { c.Environment.AirResistance = v }},
	{"environment.lorenz.factor", 0.1,
		func(c *Config) float64 { return c.Environment.Lorenz.Factor },
		func(c *Config, v float64) { c.Environment.Lorenz.Factor = v }},
	{"environment.lorenz.sigma", 1,
		func(c *Config) float64 { return c.Environment.Lorenz.Sigma },
		func(c *Config, v float64) { c.Environment.Lorenz.Sigma = v }},
	{"environment.lorenz.rho", 1,
		func(c *Config) float64 { return c.Environment.Lorenz.Rho },
		func(c *Config, v float64) { c.Environment.Lorenz.Rho = v }},
	{"environment.lorenz.beta", 0.1,
		func(c *Config) float64 { return c.Environment.Lorenz.Beta },
		func(c *Config, v float64) { c.Environment.Lorenz.Beta = v }},
	{"particle.mass", 0.01,
		func(c *Config) float64 { return c.Particle.Mass },
		func(c *Config, v float64) { c.Particle.Mass = v }},
	{"particle.lifespan", 1,
		func(c *Config) float64 { return c.Particle.Lifespan },
		func(c *Config, v float64) { c.Particle.Lifespan = v }},
	{"particle.restitution", 0.05,
		func(c *Config) float64 { return c.Particle.Restitution },
		func(c *Config, v float64) { c.Particle.Restitution = v }},
	{"particle.friction", 0.05,
		func(c *Config) float64 { return c.Particle.Friction },
		func(c *Config, v float64) { c.Particle.Friction = v }},
	{"particle.size", 0.5,
		func(c *Config) float64 { return c.Particle.Size },
		func(c *Config, v float64) { c.Particle.Size = v }},
	{"boundary.size", 1,
		func(c *Config) float64 { return c.Boundary.Size },
		func(c *Config, v float64) { c.Boundary.Size = v }},
	{"boundary.radius", 0.05,
		func(c *Config) float64 { return c.Boundary.Radius },
		func(c *Config, v float64) { c.Boundary.Radius = v }},
	{"generator.speed", 0.5,
		func(c *Config) float64 { return firstGenerator(c).Speed },
		func(c *Config, v float64) {
			for i := range c.Generators {
				c.Generators[i].Speed = v
			}
		}},
	{"generator.period", 0.005,
		func(c *Config) float64 { return firstGenerator(c).Period },
		func(c *Config, v float64) {
			for i := range c.Generators {
				c.Generators[i].Period = v
			}
		}},
	{"simulation.dt", 0.001,
		func(c *Config) float64 { return c.Simulation.Dt },
		func(c *Config, v float64) { c.Simulation.Dt = v }},
}

func firstGenerator(c *Config) GeneratorConfig {
	if len(c.Generators) == 0 {
		return GeneratorConfig{}
	}
	return c.Generators[0]
}

// Params lists the editable parameters in display order.
func Params() []Param {
	return append([]Param(nil), params...)
}

func LookupParam(name string) (Param, bool) {
	for _, p := range params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

func (c *Config) SetParam(name string, v float64) error {
	p, ok := LookupParam(name)
	if !ok {
		return &dynamo.ConfigError{Field: name, Value: v, Err: fmt.Errorf("unknown parameter: %w", dynamo.ErrUnknownMode)}
	}
	p.Set(c, v)
	return nil
}

func (c *Config) Param(name string) (float64, error) {
	p, ok := LookupParam(name)
	if !ok {
		return 0, &dynamo.ConfigError{Field: name, Err: fmt.Errorf("unknown parameter: %w", dynamo.ErrUnknownMode)}
	}
	return p.Get(c), nil
}
