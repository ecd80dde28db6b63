package metrics

import "github.com/san-kum/particlesim/internal/sim"

// Energy is the mean total kinetic energy of the live set over all steps.
type Energy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewEnergy() *Energy {
	return &Energy{name: "kinetic_energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(f *sim.Frame) {
	e.totalEnergy += f.KineticEnergy()
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// PeakEnergy tracks the largest total kinetic energy seen in a single step.
type PeakEnergy struct {
	name string
	peak float64
}

func NewPeakEnergy() *PeakEnergy {
	return &PeakEnergy{name: "peak_energy"}
}

func (p *PeakEnergy) Name() string { return p.name }

func (p *PeakEnergy) Observe(f *sim.Frame) {
	if e := f.KineticEnergy(); e > p.peak {
		p.peak = e
	}
}

func (p *PeakEnergy) Value() float64 { return p.peak }
func (p *PeakEnergy) Reset()         { p.peak = 0 }
