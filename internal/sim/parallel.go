package sim

import (
	"context"
	"sync"
)

// Ensemble runs independent copies of one configuration with consecutive
// seeds, one goroutine per run.
type Ensemble struct {
	opts      Options
	numRuns   int
	seedStart int64
	// NewMetrics builds a fresh metric set per run; metrics are stateful.
	NewMetrics func() []Metric
}

func NewEnsemble(opts Options, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{opts: opts, numRuns: numRuns, seedStart: seedStart}
}

func (e *Ensemble) Run(ctx context.Context, steps int) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			opts := e.opts
			opts.Seed = e.seedStart + int64(idx)
			opts.Generators = append([]GeneratorConfig(nil), e.opts.Generators...)

			s, err := New(opts)
			if err != nil {
				errs[idx] = err
				return
			}
			if e.NewMetrics != nil {
				for _, m := range e.NewMetrics() {
					s.AddMetric(m)
				}
			}

			results[idx], errs[idx] = s.Run(ctx, steps)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
