package metrics

import "github.com/san-kum/particlesim/internal/sim"

// CollisionRate is the number of boundary contacts per particle-step.
type CollisionRate struct {
	name       string
	collisions int
	samples    int
}

func NewCollisionRate() *CollisionRate {
	return &CollisionRate{name: "collision_rate"}
}

func (c *CollisionRate) Name() string { return c.name }

func (c *CollisionRate) Observe(f *sim.Frame) {
	c.collisions += f.Collisions
	// Particles culled this step were still integrated.
	c.samples += len(f.States) + f.Culled + f.Invalid
}

func (c *CollisionRate) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return float64(c.collisions) / float64(c.samples)
}

func (c *CollisionRate) Reset() {
	c.collisions = 0
	c.samples = 0
}
