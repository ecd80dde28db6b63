package metrics

import (
	"math"

	"github.com/san-kum/particlesim/internal/sim"
)

// Containment is the fraction of steps in which every live particle stayed
// within threshold of the origin on each axis. A box boundary that leaks
// shows up as a value below 1.
type Containment struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewContainment(threshold float64) *Containment {
	return &Containment{
		name:      "containment",
		threshold: threshold,
	}
}

func (c *Containment) Name() string {
	return c.name
}

func (c *Containment) Observe(f *sim.Frame) {
	c.samples++
	for _, st := range f.States {
		p := st.Position
		if math.Abs(p[0]) > c.threshold || math.Abs(p[1]) > c.threshold || math.Abs(p[2]) > c.threshold {
			c.violations++
			break
		}
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}
