package metrics

import (
	"sort"

	"github.com/san-kum/particlesim/internal/sim"
)

// Population is the mean live particle count per step.
type Population struct {
	name    string
	total   int
	samples int
}

func NewPopulation() *Population {
	return &Population{name: "population"}
}

func (p *Population) Name() string { return p.name }

func (p *Population) Observe(f *sim.Frame) {
	p.total += len(f.States)
	p.samples++
}

func (p *Population) Value() float64 {
	if p.samples == 0 {
		return 0
	}
	return float64(p.total) / float64(p.samples)
}

func (p *Population) Reset() {
	p.total = 0
	p.samples = 0
}

// PeakSpeed is the largest particle speed seen.
type PeakSpeed struct {
	name string
	peak float64
}

func NewPeakSpeed() *PeakSpeed {
	return &PeakSpeed{name: "peak_speed"}
}

func (p *PeakSpeed) Name() string { return p.name }

func (p *PeakSpeed) Observe(f *sim.Frame) {
	for _, st := range f.States {
		if v := st.Speed(); v > p.peak {
			p.peak = v
		}
	}
}

func (p *PeakSpeed) Value() float64 { return p.peak }
func (p *PeakSpeed) Reset()         { p.peak = 0 }

// Standard returns a fresh set of the metrics recorded for every run.
// bound is the containment threshold; zero leaves containment out.
func Standard(bound float64) []sim.Metric {
	ms := []sim.Metric{
		NewEnergy(),
		NewPeakEnergy(),
		NewPeakSpeed(),
		NewCollisionRate(),
		NewPopulation(),
	}
	if bound > 0 {
		ms = append(ms, NewContainment(bound))
	}
	return ms
}

// Names lists the metric names Standard can produce, sorted.
func Names() []string {
	var names []string
	for _, m := range Standard(1) {
		names = append(names, m.Name())
	}
	sort.Strings(names)
	return names
}
