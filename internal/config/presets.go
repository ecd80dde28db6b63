package config

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

const homeworkCapacity = 10000

var Presets = map[string]func() *Config{
	"cube": func() *Config {
		cfg := DefaultConfig()
		cfg.Particle.Restitution = 0.8
		cfg.Generators[0].Speed = 8
		return cfg
	},
	"triangle": func() *Config {
		cfg := DefaultConfig()
		cfg.Boundary.Kind = "triangle"
		cfg.Environment.Gravity = mgl64.Vec3{0, 0, -2}
		cfg.Particle.Restitution = 0.6
		cfg.Particle.Lifespan = 10
		cfg.Generators[0].Position = mgl64.Vec3{-4, 0, 6}
		cfg.Generators[0].Direction = mgl64.Vec3{1, 0, 0}
		cfg.Generators[0].Speed = 6
		cfg.Generators[0].Period = 0.02
		return cfg
	},
	"homework": func() *Config {
		cfg := DefaultConfig()
		cfg.Boundary.Kind = "triangle"
		cfg.Simulation.Capacity = 2 * homeworkCapacity
		first := DefaultGenerator()
		first.Name = "gen1"
		first.Position = mgl64.Vec3{10, 10, 10}
		first.Velocity = mgl64.Vec3{0, -1, 0}
		first.Direction = mgl64.Vec3{1, 1, 1}
		first.Period = 0.2
		first.Capacity = homeworkCapacity
		second := DefaultGenerator()
		second.Name = "gen2"
		second.Position = mgl64.Vec3{-10, -10, -10}
		second.Velocity = mgl64.Vec3{0, 1, 0}
		second.Direction = mgl64.Vec3{-1, -1, -1}
		second.Period = 1
		second.Capacity = homeworkCapacity
		cfg.Generators = []GeneratorConfig{first, second}
		return cfg
	},
	"lorenz": func() *Config {
		cfg := DefaultConfig()
		cfg.Boundary.Size = 120
		cfg.Environment.Gravity = mgl64.Vec3{}
		cfg.Environment.Lorenz.Factor = 1
		cfg.Particle.Lifespan = 30
		cfg.Particle.Restitution = 1
		cfg.Particle.Friction = 0
		cfg.Generators[0].Position = mgl64.Vec3{1, 1, 1}
		cfg.Generators[0].Speed = 0
		cfg.Generators[0].PositionJitter = 2
		return cfg
	},
	"rain": func() *Config {
		cfg := DefaultConfig()
		cfg.Simulation.Capacity = 4000
		cfg.Boundary.Size = 20
		cfg.Boundary.Radius = 0.05
		cfg.Environment.Wind = mgl64.Vec3{2, 0, 0}
		cfg.Environment.WindFactor = 0.05
		cfg.Environment.AirResistance = 0.05
		cfg.Environment.Drag = "quadratic"
		cfg.Particle.Lifespan = 8
		cfg.Particle.Restitution = 0.2
		cfg.Particle.Friction = 0.4
		cfg.Generators = []GeneratorConfig{
			rainCloud("west", mgl64.Vec3{-5, 0, 9}),
			rainCloud("east", mgl64.Vec3{5, 0, 9}),
		}
		return cfg
	},
}

func rainCloud(name string, at mgl64.Vec3) GeneratorConfig {
	g := DefaultGenerator()
	g.Name = name
	g.Position = at
	g.Direction = mgl64.Vec3{0, 0, -1}
	g.Speed = 1
	g.Period = 0.005
	g.Capacity = 2000
	g.PositionJitter = 1.5
	g.VelocityJitter = 0.2
	return g
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
