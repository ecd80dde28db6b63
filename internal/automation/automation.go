package automation

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/san-kum/particlesim/internal/collision"
	"github.com/san-kum/particlesim/internal/config"
	"github.com/san-kum/particlesim/internal/metrics"
	"github.com/san-kum/particlesim/internal/sim"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted headless run: a base configuration plus patches
// applied between steps.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// Preset names the base configuration; empty means the defaults.
	Preset string `yaml:"preset"`
	// Config overrides fields of the base configuration.
	Config yaml.Node `yaml:"config"`
	Steps  int       `yaml:"steps"`
	Events []Event   `yaml:"events"`
	SaveAs string    `yaml:"save_as"`
}

// Event fires after Step completed steps.
type Event struct {
	Step int `yaml:"step"`
	// Action is apply (default), reset, or set.
	Action string `yaml:"action"`
	// Patch is a partial configuration for apply.
	Patch yaml.Node `yaml:"patch"`
	// Param and Value are used by set.
	Param string  `yaml:"param"`
	Value float64 `yaml:"value"`
}

// ScenarioResult is the merged series of all segments.
type ScenarioResult struct {
	Config   *config.Config
	Result   *sim.Result
	Applied  []int
	Rejected []error
	// Particles is the final live set.
	Particles []sim.Particle
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	for i, ev := range scenario.Events {
		if ev.Step < 0 || ev.Step > scenario.Steps {
			return nil, fmt.Errorf("event %d: step %d outside [0,%d]", i+1, ev.Step, scenario.Steps)
		}
		if i > 0 && ev.Step < scenario.Events[i-1].Step {
			return nil, fmt.Errorf("event %d: events must be ordered by step", i+1)
		}
	}
	return &scenario, nil
}

// BaseConfig resolves the preset and inline overrides.
func (sc *Scenario) BaseConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if sc.Preset != "" {
		cfg = config.GetPreset(sc.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", sc.Preset, config.ListPresets())
		}
	}
	if sc.Config.Kind != 0 {
		if err := sc.Config.Decode(cfg); err != nil {
			return nil, fmt.Errorf("scenario config: %w", err)
		}
	}
	return cfg, nil
}

// metricObserver feeds a metric from the observer hook so it survives the
// per-segment resets done by Run.
type metricObserver struct{ m sim.Metric }

func (o metricObserver) OnStep(f *sim.Frame) { o.m.Observe(f) }

// RunScenario executes sc and reports progress to out. Rejected patches are
// recorded and the run continues with the previous configuration.
func RunScenario(ctx context.Context, sc *Scenario, out io.Writer) (*ScenarioResult, error) {
	if out == nil {
		out = io.Discard
	}
	if sc.Steps <= 0 {
		return nil, fmt.Errorf("scenario %s: steps must be positive, got %d", sc.Name, sc.Steps)
	}

	cfg, err := sc.BaseConfig()
	if err != nil {
		return nil, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	s, err := sim.New(opts)
	if err != nil {
		return nil, err
	}

	ms := metrics.Standard(ContainmentBound(cfg))
	for _, m := range ms {
		s.AddObserver(metricObserver{m})
	}

	res := &ScenarioResult{Config: cfg, Result: &sim.Result{Metrics: make(map[string]float64)}}
	done := 0
	for i := 0; i <= len(sc.Events); i++ {
		target := sc.Steps
		if i < len(sc.Events) {
			target = sc.Events[i].Step
		}
		if target > done {
			seg, err := s.Run(ctx, target-done)
			merge(res.Result, seg)
			if err != nil {
				return res, err
			}
			done = target
		}
		if i == len(sc.Events) {
			break
		}

		ev := sc.Events[i]
		next, err := applyEvent(s, res.Config, ev)
		if err != nil {
			fmt.Fprintf(out, "event %d at step %d rejected: %v\n", i+1, ev.Step, err)
			res.Rejected = append(res.Rejected, fmt.Errorf("event %d: %w", i+1, err))
			continue
		}
		res.Config = next
		res.Applied = append(res.Applied, i)
		fmt.Fprintf(out, "event %d at step %d: %s\n", i+1, ev.Step, actionName(ev))
	}

	for _, m := range ms {
		res.Result.Metrics[m.Name()] = m.Value()
	}
	res.Particles = s.Particles()
	return res, nil
}

func actionName(ev Event) string {
	if ev.Action == "" {
		return "apply"
	}
	return ev.Action
}

func applyEvent(s *sim.Simulator, current *config.Config, ev Event) (*config.Config, error) {
	next := current.Clone()
	switch strings.ToLower(actionName(ev)) {
	case "reset":
		s.Reset()
		return current, nil
	case "apply":
		if ev.Patch.Kind == 0 {
			return nil, fmt.Errorf("apply event without a patch")
		}
		if err := ev.Patch.Decode(next); err != nil {
			return nil, err
		}
	case "set":
		if err := next.SetParam(ev.Param, ev.Value); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown action %q", ev.Action)
	}

	opts, err := next.Options()
	if err != nil {
		return nil, err
	}
	if err := s.Apply(opts); err != nil {
		return nil, err
	}
	return next, nil
}

func merge(dst, seg *sim.Result) {
	if seg == nil {
		return
	}
	dst.Times = append(dst.Times, seg.Times...)
	dst.Live = append(dst.Live, seg.Live...)
	dst.Energy = append(dst.Energy, seg.Energy...)
	dst.Collisions = append(dst.Collisions, seg.Collisions...)
	dst.Emitted = append(dst.Emitted, seg.Emitted...)
	dst.Culled = append(dst.Culled, seg.Culled...)
	dst.Errors = append(dst.Errors, seg.Errors...)
	dst.StepsTaken += seg.StepsTaken
}

// ContainmentBound is the per-axis bound for the containment metric: the box
// half extent, or 0 when the boundary is not a box.
func ContainmentBound(cfg *config.Config) float64 {
	opts, err := cfg.Options()
	if err != nil {
		return 0
	}
	if box, ok := opts.Boundary.(*collision.Box); ok {
		// Contacts land exactly on a face.
		return box.HalfExtent() + 1e-9
	}
	return 0
}

// ParameterSweep runs one simulation per value of a configuration parameter.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	Steps     int
}

// SweepResult holds the metrics of one sweep point.
type SweepResult struct {
	ParamValue float64
	Metrics    map[string]float64
	FinalLive  int
}

func RunSweep(ctx context.Context, sweep *ParameterSweep, out io.Writer) ([]SweepResult, error) {
	if out == nil {
		out = io.Discard
	}
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 points, got %d", sweep.NumSteps)
	}
	if _, ok := config.LookupParam(sweep.ParamName); !ok {
		return nil, fmt.Errorf("unknown parameter %q", sweep.ParamName)
	}
	base := sweep.Base
	if base == nil {
		base = config.DefaultConfig()
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	paramStep := (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep
		cfg := base.Clone()
		if err := cfg.SetParam(sweep.ParamName, paramVal); err != nil {
			return results, err
		}

		opts, err := cfg.Options()
		if err != nil {
			return results, fmt.Errorf("%s=%.4f: %w", sweep.ParamName, paramVal, err)
		}
		s, err := sim.New(opts)
		if err != nil {
			return results, err
		}
		for _, m := range metrics.Standard(ContainmentBound(cfg)) {
			s.AddMetric(m)
		}

		result, err := s.Run(ctx, sweep.Steps)
		if err != nil {
			return results, err
		}

		results = append(results, SweepResult{
			ParamValue: paramVal,
			Metrics:    result.Metrics,
			FinalLive:  s.Total(),
		})

		fmt.Fprintf(out, "Sweep %d/%d: %s=%.4f\n", i+1, sweep.NumSteps, sweep.ParamName, paramVal)
	}

	return results, nil
}

// MonteCarloConfig repeats one configuration over consecutive seeds.
type MonteCarloConfig struct {
	Base      *config.Config
	NumTrials int
	Steps     int
	Seed      int64
}

// MonteCarloResult holds the outcome of one trial.
type MonteCarloResult struct {
	TrialID int
	Seed    int64
	Metrics map[string]float64
	// Contained is false when any particle left the box during the trial.
	Contained bool
}

func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, out io.Writer) ([]MonteCarloResult, error) {
	if out == nil {
		out = io.Discard
	}
	base := cfg.Base
	if base == nil {
		base = config.DefaultConfig()
	}
	opts, err := base.Options()
	if err != nil {
		return nil, err
	}

	bound := ContainmentBound(base)
	ens := sim.NewEnsemble(opts, cfg.NumTrials, cfg.Seed)
	ens.NewMetrics = func() []sim.Metric { return metrics.Standard(bound) }

	runs, err := ens.Run(ctx, cfg.Steps)
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, len(runs))
	for i, r := range runs {
		contained := true
		if v, ok := r.Metrics["containment"]; ok && v < 1 {
			contained = false
		}
		results[i] = MonteCarloResult{
			TrialID:   i,
			Seed:      cfg.Seed + int64(i),
			Metrics:   r.Metrics,
			Contained: contained,
		}
		if (i+1)%10 == 0 {
			fmt.Fprintf(out, "Monte Carlo: %d/%d trials complete\n", i+1, len(runs))
		}
	}

	return results, nil
}

// MonteCarloStats counts trials that kept every particle inside the box.
func MonteCarloStats(results []MonteCarloResult) (containedCount int, escapedCount int) {
	for _, r := range results {
		if r.Contained {
			containedCount++
		} else {
			escapedCount++
		}
	}
	return
}
