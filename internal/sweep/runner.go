// Package sweep executes one backtest per parameter variant and tabulates
// results against a baseline.
package sweep

import (
	"context"
	"math"
	"sync"

	"github.com/rs/zerolog"

	"weekly-backtester/internal/backtest"
	"weekly-backtester/internal/metrics"
	"weekly-backtester/internal/models"
	"weekly-backtester/internal/performance"
)

// Variant is one named parameter configuration in a sweep.
type Variant struct {
	Name   string
	Params models.ParameterSet
}

// Row is the tabulated outcome of one variant. Err is set when the run
// failed (invalid parameters, data gap); the rest of the sweep continues.
type Row struct {
	Name      string
	Params    models.ParameterSet
	Summary   metrics.Summary
	DeltaCAGR float64 // percentage points vs baseline CAGR
	Err       error
}

// Report maps parameter variants to their metrics. Row order matches the
// input variant order regardless of completion order.
type Report struct {
	Baseline Row
	Rows     []Row
}

// Runner executes sweeps on a worker pool. Runs are independent: they share
// the engine's immutable bar source by reference and write only their own
// RunResult, so no locking is needed beyond the pool itself.
type Runner struct {
	engine *backtest.Engine
	pool   *performance.WorkerPool
	logger zerolog.Logger
}

// NewRunner creates a sweep runner with the given parallelism. workers <= 0
// uses one worker per CPU.
func NewRunner(engine *backtest.Engine, workers int, logger zerolog.Logger) *Runner {
	return &Runner{
		engine: engine,
		pool:   performance.NewWorkerPool(workers),
		logger: logger,
	}
}

// Run executes the baseline and every variant, then fills in deltas. A
// canceled context stops queued runs from starting; in-flight runs complete
// to a consistent result.
func (r *Runner) Run(ctx context.Context, cfg backtest.RunConfig, baseline models.ParameterSet, variants []Variant) (*Report, error) {
	baseResult, err := r.engine.Run(ctx, baseline, cfg)
	if err != nil {
		return nil, err
	}
	report := &Report{
		Baseline: Row{Name: "baseline", Params: baseline, Summary: metrics.Compute(baseResult)},
		Rows:     make([]Row, len(variants)),
	}

	r.pool.Start()
	defer r.pool.Stop()

	var wg sync.WaitGroup
	for i, v := range variants {
		i, v := i, v
		wg.Add(1)
		task := func() {
			defer wg.Done()
			report.Rows[i] = r.runOne(ctx, cfg, v)
		}
		if !r.pool.Submit(task) {
			task() // queue full or pool stopped, run inline
		}
	}
	wg.Wait()

	baseCAGR := report.Baseline.Summary.CAGR
	for i := range report.Rows {
		row := &report.Rows[i]
		if row.Err != nil {
			row.DeltaCAGR = math.NaN()
			continue
		}
		row.DeltaCAGR = (row.Summary.CAGR - baseCAGR) * 100
	}
	return report, nil
}

func (r *Runner) runOne(ctx context.Context, cfg backtest.RunConfig, v Variant) Row {
	row := Row{Name: v.Name, Params: v.Params}

	if err := ctx.Err(); err != nil {
		row.Err = err
		return row
	}

	result, err := r.engine.Run(ctx, v.Params, cfg)
	if err != nil {
		r.logger.Error().Err(err).Str("variant", v.Name).Msg("Sweep run failed")
		row.Err = err
		return row
	}
	row.Summary = metrics.Compute(result)
	r.logger.Debug().
		Str("variant", v.Name).
		Float64("cagr", row.Summary.CAGR).
		Int("trades", row.Summary.TotalTrades).
		Msg("Sweep run finished")
	return row
}
