package sim

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/particlesim/internal/dynamo"
	"github.com/san-kum/particlesim/internal/integrators"
)

// minParallelChunk is the smallest slot range handed to a worker.
const minParallelChunk = 256

// Simulator owns the particle pool and the generators feeding it. It is not
// safe for concurrent use; readers must call between steps.
type Simulator struct {
	opts      Options
	integ     integrators.Integrator
	pool      *Pool
	gens      []*Generator
	rng       *rand.Rand
	metrics   []Metric
	observers []Observer

	time    float64
	steps   int
	nextID  uint64
	running bool
	stepReq bool

	slots  []int
	hits   []bool
	states []dynamo.State
	last   Frame
}

func New(opts Options) (*Simulator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	integ, err := integrators.Get(opts.Integrator)
	if err != nil {
		return nil, err
	}

	s := &Simulator{
		opts:      opts,
		integ:     integ,
		pool:      NewPool(opts.Capacity),
		rng:       rand.New(rand.NewSource(opts.Seed)),
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
	s.gens = make([]*Generator, len(opts.Generators))
	for i, g := range opts.Generators {
		s.gens[i] = newGenerator(g)
	}
	return s, nil
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Options() Options { return s.opts }
func (s *Simulator) Time() float64    { return s.time }
func (s *Simulator) Steps() int       { return s.steps }

// LastFrame returns the summary of the most recent step.
func (s *Simulator) LastFrame() Frame { return s.last }

// Step advances the whole system by dt: emission, per-particle update,
// then culling of expired or invalid particles.
func (s *Simulator) Step(dt float64) error {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt <= 0 {
		return &dynamo.SimulationError{
			Step:    s.steps,
			Time:    s.time,
			Wrapped: fmt.Errorf("dt %v: %w", dt, dynamo.ErrParameterBounds),
		}
	}

	frame := Frame{Step: s.steps + 1, Dt: dt}
	frame.Emitted = s.emit(dt)

	s.slots = s.pool.Slots(s.slots[:0])
	n := len(s.slots)
	if cap(s.hits) < n {
		s.hits = make([]bool, n)
	}
	s.hits = s.hits[:n]

	env, b, integ, post := s.opts.Environment, s.opts.Boundary, s.integ, s.opts.PostImpact
	dynamo.ParallelFor(n, s.opts.Workers, minParallelChunk, func(start, end int) {
		for k := start; k < end; k++ {
			pt := s.pool.At(s.slots[k])
			pt.State, s.hits[k] = StepParticle(pt.State, dt, env, b, integ, post)
		}
	})

	s.states = s.states[:0]
	for k, i := range s.slots {
		pt := s.pool.At(i)
		if s.hits[k] {
			frame.Collisions++
		}
		switch {
		case !pt.IsValid():
			frame.Invalid++
			s.logf("particle %d became non-finite at t=%.4f, removed", pt.ID, s.time+dt)
			s.release(i)
		case !pt.Alive():
			frame.Culled++
			s.release(i)
		default:
			s.pool.Sync(i)
			s.states = append(s.states, pt.State)
		}
	}

	s.time += dt
	s.steps++
	frame.Time = s.time
	frame.States = s.states

	for _, m := range s.metrics {
		m.Observe(&frame)
	}
	for _, o := range s.observers {
		o.OnStep(&frame)
	}
	s.last = frame
	return nil
}

func (s *Simulator) emit(dt float64) int {
	emitted := 0
	for gi, g := range s.gens {
		n := g.due(dt, g.cfg.Capacity)
		for k := 0; k < n; k++ {
			if s.place(gi, g.spawn(s.opts.Particle, s.rng)) {
				emitted++
			}
		}
		g.drift(dt)
	}
	return emitted
}

// place stores a freshly emitted particle, evicting per policy when its
// generator or the pool is full.
func (s *Simulator) place(gi int, st dynamo.State) bool {
	g := s.gens[gi]
	if g.live >= g.cfg.Capacity || s.pool.Full() {
		if s.opts.Eviction != EvictOldest {
			return false
		}
		victim := s.oldest(gi)
		if victim < 0 && g.live < g.cfg.Capacity {
			victim = s.oldest(-1)
		}
		if victim < 0 {
			return false
		}
		s.release(victim)
	}

	slot, ok := s.pool.Alloc()
	if !ok {
		return false
	}
	s.nextID++
	s.pool.Put(slot, Particle{State: st, ID: s.nextID, Generator: gi})
	g.live++
	g.emitted++
	return true
}

// oldest returns the slot of the oldest particle of generator gen, or of any
// generator when gen is negative. Ties go to the earliest emitted.
func (s *Simulator) oldest(gen int) int {
	best := -1
	for i := 0; i < s.pool.Cap(); i++ {
		if !s.pool.Live(i) {
			continue
		}
		pt := s.pool.At(i)
		if gen >= 0 && pt.Generator != gen {
			continue
		}
		if best < 0 {
			best = i
			continue
		}
		b := s.pool.At(best)
		if pt.Age > b.Age || (pt.Age == b.Age && pt.ID < b.ID) {
			best = i
		}
	}
	return best
}

func (s *Simulator) release(i int) {
	if gen := s.pool.At(i).Generator; gen >= 0 && gen < len(s.gens) {
		s.gens[gen].live--
	}
	s.pool.Free(i)
}

// Inject places a particle that belongs to no generator. It reports false
// when the pool is full.
func (s *Simulator) Inject(st dynamo.State) (bool, error) {
	if err := st.Validate(); err != nil {
		return false, err
	}
	slot, ok := s.pool.Alloc()
	if !ok {
		return false, nil
	}
	s.nextID++
	s.pool.Put(slot, Particle{State: st, ID: s.nextID, Generator: -1})
	return true, nil
}

func (s *Simulator) Start()        { s.running = true }
func (s *Simulator) Pause()        { s.running = false }
func (s *Simulator) Running() bool { return s.running }

func (s *Simulator) Toggle() bool {
	s.running = !s.running
	return s.running
}

// RequestStep schedules exactly one step on the next Advance, even while paused.
func (s *Simulator) RequestStep() { s.stepReq = true }

// Advance is called once per rendered frame. It steps when running or when
// a single step was requested, using the fixed dt if configured and the
// frame delta otherwise.
func (s *Simulator) Advance(frameDt float64) (bool, error) {
	if !s.running && !s.stepReq {
		return false, nil
	}
	s.stepReq = false
	dt := s.opts.Dt
	if dt <= 0 {
		dt = frameDt
	}
	if err := s.Step(dt); err != nil {
		return false, err
	}
	return true, nil
}

// Reset clears all particles, generator timers and the clock. The run state
// and configuration are kept.
func (s *Simulator) Reset() {
	s.pool.Clear()
	for _, g := range s.gens {
		g.reset()
	}
	s.time = 0
	s.steps = 0
	s.nextID = 0
	s.stepReq = false
	s.rng = rand.New(rand.NewSource(s.opts.Seed))
	s.last = Frame{}
	for _, m := range s.metrics {
		m.Reset()
	}
}

// Apply swaps in a new configuration between steps. Invalid options are
// rejected and the previous configuration stays in effect.
func (s *Simulator) Apply(opts Options) error {
	if err := opts.Validate(); err != nil {
		s.logf("rejected configuration: %v", err)
		return err
	}
	integ, err := integrators.Get(opts.Integrator)
	if err != nil {
		s.logf("rejected configuration: %v", err)
		return err
	}
	if opts.Logger == nil {
		opts.Logger = s.opts.Logger
	}

	prev := s.opts
	s.opts = opts
	s.integ = integ

	gens := make([]*Generator, len(opts.Generators))
	for i, cfg := range opts.Generators {
		if i >= len(s.gens) {
			gens[i] = newGenerator(cfg)
			continue
		}
		g := s.gens[i]
		if cfg.Position != g.cfg.Position {
			g.position = cfg.Position
		}
		g.cfg = cfg
		gens[i] = g
	}
	s.gens = gens

	for _, i := range s.pool.Slots(nil) {
		if s.pool.At(i).Generator >= len(gens) {
			s.pool.Free(i)
		}
	}
	if opts.Capacity != s.pool.Cap() {
		s.pool = s.pool.Resized(opts.Capacity)
	}
	if opts.Seed != prev.Seed {
		s.rng = rand.New(rand.NewSource(opts.Seed))
	}
	s.recount()
	return nil
}

func (s *Simulator) recount() {
	for _, g := range s.gens {
		g.live = 0
	}
	for _, i := range s.pool.Slots(s.slots[:0]) {
		if gen := s.pool.At(i).Generator; gen >= 0 && gen < len(s.gens) {
			s.gens[gen].live++
		}
	}
}

// Vertices appends x,y,z,r,g,b for every live particle, in slot order.
func (s *Simulator) Vertices(dst []float32) []float32 {
	for i := 0; i < s.pool.Cap(); i++ {
		if !s.pool.Live(i) {
			continue
		}
		v := s.pool.VertexAt(i)
		dst = append(dst,
			v.Position[0], v.Position[1], v.Position[2],
			v.Color[0], v.Color[1], v.Color[2])
	}
	return dst
}

// Particles returns a copy of the live particles in slot order.
func (s *Simulator) Particles() []Particle {
	out := make([]Particle, 0, s.pool.Len())
	for i := 0; i < s.pool.Cap(); i++ {
		if s.pool.Live(i) {
			out = append(out, *s.pool.At(i))
		}
	}
	return out
}

// LiveCount returns the number of live particles emitted by generator gen.
func (s *Simulator) LiveCount(gen int) int {
	if gen < 0 || gen >= len(s.gens) {
		return 0
	}
	return s.gens[gen].live
}

func (s *Simulator) Total() int { return s.pool.Len() }

func (s *Simulator) Generators() []GeneratorStatus {
	out := make([]GeneratorStatus, len(s.gens))
	for i, g := range s.gens {
		out[i] = GeneratorStatus{
			Name:     g.cfg.Name,
			Position: g.position,
			Live:     g.live,
			Capacity: g.cfg.Capacity,
			Emitted:  g.emitted,
		}
	}
	return out
}

// Run performs steps fixed-size steps and records one series entry per step.
func (s *Simulator) Run(ctx context.Context, steps int) (*Result, error) {
	if steps <= 0 {
		return nil, &dynamo.ConfigError{Field: "steps", Value: steps, Err: dynamo.ErrParameterBounds}
	}
	if s.opts.Dt <= 0 {
		return nil, &dynamo.ConfigError{Field: "dt", Value: s.opts.Dt, Err: dynamo.ErrParameterBounds}
	}

	result := &Result{
		Times:      make([]float64, 0, steps),
		Live:       make([]int, 0, steps),
		Energy:     make([]float64, 0, steps),
		Collisions: make([]int, 0, steps),
		Emitted:    make([]int, 0, steps),
		Culled:     make([]int, 0, steps),
		Metrics:    make(map[string]float64),
		Errors:     make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.collect(result)
			return result, &dynamo.SimulationError{
				Step:    s.steps,
				Time:    s.time,
				Wrapped: fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err()),
			}
		default:
		}

		if err := s.Step(s.opts.Dt); err != nil {
			s.collect(result)
			return result, err
		}

		f := &s.last
		if f.Invalid > 0 {
			result.Errors = append(result.Errors, &dynamo.SimulationError{
				Step:    f.Step,
				Time:    f.Time,
				Wrapped: fmt.Errorf("%d particles removed: %w", f.Invalid, dynamo.ErrInvalidState),
			})
		}

		result.StepsTaken++
		result.Times = append(result.Times, f.Time)
		result.Live = append(result.Live, len(f.States))
		result.Energy = append(result.Energy, f.KineticEnergy())
		result.Collisions = append(result.Collisions, f.Collisions)
		result.Emitted = append(result.Emitted, f.Emitted)
		result.Culled = append(result.Culled, f.Culled)
	}

	s.collect(result)
	return result, nil
}

func (s *Simulator) collect(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (s *Simulator) logf(format string, args ...any) {
	if s.opts.Logger != nil {
		s.opts.Logger.Printf(format, args...)
	}
}

// KineticEnergy sums 1/2 m |v|^2 over the frame's live particles.
func (f *Frame) KineticEnergy() float64 {
	total := 0.0
	for _, st := range f.States {
		total += st.KineticEnergy()
	}
	return total
}
