package sim

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/particlesim/internal/dynamo"
)

// Generator is the runtime state of a GeneratorConfig.
type Generator struct {
	cfg      GeneratorConfig
	position mgl64.Vec3
	elapsed  float64
	live     int
	emitted  uint64
}

func newGenerator(cfg GeneratorConfig) *Generator {
	return &Generator{cfg: cfg, position: cfg.Position}
}

func (g *Generator) Config() GeneratorConfig { return g.cfg }
func (g *Generator) Position() mgl64.Vec3    { return g.position }
func (g *Generator) Live() int               { return g.live }

// due advances the emission timer by dt and returns how many particles are
// owed. At most limit emissions are reported; any further backlog is dropped.
func (g *Generator) due(dt float64, limit int) int {
	g.elapsed += dt
	n := 0
	for g.elapsed > g.cfg.Period && n < limit {
		g.elapsed -= g.cfg.Period
		n++
	}
	if g.elapsed > g.cfg.Period {
		g.elapsed = math.Mod(g.elapsed, g.cfg.Period)
	}
	return n
}

// spawn draws one particle around the generator's current position.
func (g *Generator) spawn(tmpl dynamo.State, rng *rand.Rand) dynamo.State {
	s := tmpl
	s.Age = 0
	s.Position = jitter(g.position, g.cfg.PositionJitter, rng)
	nominal := g.cfg.Velocity.Add(g.cfg.Direction.Mul(g.cfg.Speed))
	s.Velocity = jitter(nominal, g.cfg.VelocityJitter, rng)
	return s
}

func (g *Generator) drift(dt float64) {
	g.position = g.position.Add(g.cfg.Velocity.Mul(dt))
}

func (g *Generator) reset() {
	g.position = g.cfg.Position
	g.elapsed = 0
	g.live = 0
	g.emitted = 0
}

// jitter draws each component from a normal distribution around mean. The
// three draws are always consumed so the stream stays aligned when the
// deviation is zero.
func jitter(mean mgl64.Vec3, stddev float64, rng *rand.Rand) mgl64.Vec3 {
	var out mgl64.Vec3
	for i := range out {
		out[i] = mean[i] + rng.NormFloat64()*stddev
	}
	return out
}
