package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/particlesim/internal/collision"
	"github.com/san-kum/particlesim/internal/dynamo"
	"github.com/san-kum/particlesim/internal/sim"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Simulation.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Boundary.Kind != "box" {
		t.Errorf("expected box boundary, got %s", cfg.Boundary.Kind)
	}
	if len(cfg.Generators) != 1 {
		t.Fatalf("expected one generator, got %d", len(cfg.Generators))
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
}

func TestOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Simulation.PostImpact = "resume"
	cfg.Simulation.Eviction = "oldest"
	cfg.Environment.Drag = "quadratic"
	cfg.Generators[0].Name = ""

	opts, err := cfg.Options()
	if err != nil {
		t.Fatal(err)
	}
	if opts.PostImpact != collision.PostImpactResume {
		t.Errorf("post impact = %v", opts.PostImpact)
	}
	if opts.Eviction != sim.EvictOldest {
		t.Errorf("eviction = %v", opts.Eviction)
	}
	if opts.Environment.Drag != dynamo.DragQuadratic {
		t.Errorf("drag = %v", opts.Environment.Drag)
	}
	if opts.Generators[0].Name != "gen0" {
		t.Errorf("unnamed generator got %q", opts.Generators[0].Name)
	}
	if opts.Boundary == nil || opts.Boundary.Kind() != "box" {
		t.Errorf("boundary = %v", opts.Boundary)
	}
	if opts.Particle.Mass != 0.1 {
		t.Errorf("particle mass = %v", opts.Particle.Mass)
	}
}

func TestOptions_Errors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		field  string
		want   error
	}{
		{"zero dt", func(c *Config) { c.Simulation.Dt = 0 }, "simulation.dt", dynamo.ErrParameterBounds},
		{"integrator", func(c *Config) { c.Simulation.Integrator = "rk4" }, "simulation.integrator", dynamo.ErrUnknownMode},
		{"post impact", func(c *Config) { c.Simulation.PostImpact = "teleport" }, "simulation.post_impact", dynamo.ErrUnknownMode},
		{"eviction", func(c *Config) { c.Simulation.Eviction = "random" }, "simulation.eviction", dynamo.ErrUnknownMode},
		{"drag", func(c *Config) { c.Environment.Drag = "cubic" }, "environment.drag", dynamo.ErrUnknownMode},
		{"boundary kind", func(c *Config) { c.Boundary.Kind = "sphere" }, "boundary.kind", dynamo.ErrUnknownMode},
		{"tiny box", func(c *Config) { c.Boundary.Radius = 6 }, "boundary.size", dynamo.ErrDegenerateGeometry},
		{"collinear triangle", func(c *Config) {
			c.Boundary.Kind = "triangle"
			c.Boundary.Vertices = [3]mgl64.Vec3{{0, 0, 0}, {1, 1, 1}, {2, 2, 2}}
		}, "boundary.vertices", dynamo.ErrDegenerateGeometry},
		{"negative mass", func(c *Config) { c.Particle.Mass = -1 }, "mass", dynamo.ErrParameterBounds},
		{"restitution", func(c *Config) { c.Particle.Restitution = 2 }, "restitution", dynamo.ErrParameterBounds},
		{"capacity", func(c *Config) { c.Simulation.Capacity = 0 }, "capacity", dynamo.ErrParameterBounds},
		{"period", func(c *Config) { c.Generators[0].Period = -1 }, "generator.gen0.period", dynamo.ErrParameterBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			_, err := cfg.Options()
			if !errors.Is(err, tt.want) {
				t.Fatalf("Options() = %v, want %v", err, tt.want)
			}
			var cfgErr *dynamo.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *dynamo.ConfigError, got %T", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("field = %q, want %q", cfgErr.Field, tt.field)
			}
		})
	}
}

func TestBoundaryNone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Boundary.Kind = "none"
	opts, err := cfg.Options()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Boundary != nil {
		t.Errorf("expected nil boundary, got %T", opts.Boundary)
	}
}

func TestLiveOptions(t *testing.T) {
	cfg := DefaultConfig()
	opts, err := cfg.LiveOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Dt != 0 {
		t.Errorf("variable-step live options have dt %v", opts.Dt)
	}

	cfg.Simulation.FixedStep = true
	opts, _ = cfg.LiveOptions()
	if opts.Dt != cfg.Simulation.Dt {
		t.Errorf("fixed-step live options have dt %v", opts.Dt)
	}
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")

	cfg := GetPreset("rain")
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Generators) != 2 || loaded.Generators[1].Name != "east" {
		t.Fatalf("generators not preserved: %+v", loaded.Generators)
	}
	if loaded.Environment.Wind != cfg.Environment.Wind || loaded.Environment.Drag != "quadratic" {
		t.Errorf("environment not preserved: %+v", loaded.Environment)
	}
	if loaded.Boundary.Vertices != cfg.Boundary.Vertices {
		t.Errorf("vertices not preserved: %v", loaded.Boundary.Vertices)
	}
}

func TestLoad_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := []byte(`
environment:
  gravity: [0, 0, -1.62]
generators:
  - name: fountain
    position: [0, 0, -4]
    speed: 12
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Environment.Gravity[2] != -1.62 {
		t.Errorf("gravity = %v", cfg.Environment.Gravity)
	}
	if cfg.Simulation.Dt != DefaultDt {
		t.Errorf("missing section lost its default: dt %v", cfg.Simulation.Dt)
	}
	g := cfg.Generators[0]
	if g.Name != "fountain" || g.Speed != 12 {
		t.Errorf("generator = %+v", g)
	}
	if g.Period != DefaultGenerator().Period || g.Capacity != DefaultGenerator().Capacity {
		t.Errorf("generator defaults not applied: %+v", g)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("partial config invalid: %v", err)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("triangle")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Boundary.Kind != "triangle" {
		t.Errorf("expected triangle boundary, got %s", cfg.Boundary.Kind)
	}

	cfg.Generators[0].Speed = 99
	if GetPreset("triangle").Generators[0].Speed == 99 {
		t.Error("presets must not share state between calls")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsAreValid(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("ListPresets returned %d of %d", len(names), len(Presets))
	}
	for _, name := range names {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}

func TestHomeworkPreset(t *testing.T) {
	opts, err := GetPreset("homework").Options()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Boundary.Kind() != "triangle" {
		t.Errorf("boundary = %s, want triangle", opts.Boundary.Kind())
	}
	if len(opts.Generators) != 2 {
		t.Fatalf("generators = %d, want 2", len(opts.Generators))
	}

	a, b := opts.Generators[0], opts.Generators[1]
	if a.Position != (mgl64.Vec3{10, 10, 10}) || b.Position != (mgl64.Vec3{-10, -10, -10}) {
		t.Errorf("positions %v %v", a.Position, b.Position)
	}
	if a.Period != 0.2 || b.Period != 1 {
		t.Errorf("periods %v %v", a.Period, b.Period)
	}
	if a.Capacity != 10000 || b.Capacity != 10000 {
		t.Errorf("capacities %d %d", a.Capacity, b.Capacity)
	}
	// The generators drift toward each other along y.
	if gap := b.Position.Sub(a.Position)[1]; gap*(b.Velocity[1]-a.Velocity[1]) >= 0 {
		t.Errorf("generators do not close in: velocities %v %v", a.Velocity, b.Velocity)
	}
}

func TestClone(t *testing.T) {
	cfg := DefaultConfig()
	c := cfg.Clone()
	c.Generators[0].Period = 5
	if cfg.Generators[0].Period == 5 {
		t.Error("Clone shares the generator slice")
	}
}
