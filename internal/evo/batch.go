package evo

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ShaduMan201/symbiosis/internal/model"
	"github.com/ShaduMan201/symbiosis/internal/stats"
	"github.com/ShaduMan201/symbiosis/internal/strategy"
)

// BatchConfig describes a set of independent population lifecycles.
type BatchConfig struct {
	Runs        int
	Generations int
	// Population is the per-run template. Its Seed is ignored: run i uses
	// Seed + i, so every run owns an independent random stream.
	Population Config
	Seed       int64
	// Workers bounds how many runs execute concurrently.
	Workers int
}

// BatchResult aggregates final per-strategy counts across all runs.
type BatchResult struct {
	// Rows holds per-strategy mean/min/max of the final live count, ranked
	// by mean descending; ties keep roster order.
	Rows []model.BatchRow
	// FinalCounts holds each run's final per-strategy counts, indexed by
	// run.
	FinalCounts []map[string]int
}

// BatchRunner executes many independent population runs and aggregates
// their final compositions. Runs share nothing mutable, so they are
// distributed over a worker pool.
type BatchRunner struct {
	cfg BatchConfig
}

func NewBatchRunner(cfg BatchConfig) (*BatchRunner, error) {
	if cfg.Runs <= 0 {
		return nil, fmt.Errorf("runs must be > 0: %d", cfg.Runs)
	}
	if cfg.Generations <= 0 {
		return nil, fmt.Errorf("generations must be > 0: %d", cfg.Generations)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	// Validate the population template once before any simulation work.
	probe := cfg.Population
	probe.Seed = cfg.Seed
	if _, err := NewPopulation(probe); err != nil {
		return nil, err
	}
	return &BatchRunner{cfg: cfg}, nil
}

// RunAll executes every run to completion and returns the ranked summary.
func (r *BatchRunner) RunAll(ctx context.Context) (BatchResult, error) {
	type result struct {
		idx    int
		counts map[string]int
		err    error
	}

	jobs := make(chan int)
	results := make(chan result, r.cfg.Runs)

	workerCount := r.cfg.Workers
	if workerCount > r.cfg.Runs {
		workerCount = r.cfg.Runs
	}

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := ctx.Err(); err != nil {
					results <- result{idx: idx, err: err}
					continue
				}
				counts, err := r.runOne(ctx, idx)
				results <- result{idx: idx, counts: counts, err: err}
			}
		}()
	}

	for i := 0; i < r.cfg.Runs; i++ {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	close(results)

	finals := make([]map[string]int, r.cfg.Runs)
	for res := range results {
		if res.err != nil {
			return BatchResult{}, res.err
		}
		finals[res.idx] = res.counts
	}

	composition := r.cfg.Population.Composition
	if len(composition) == 0 {
		composition = DefaultComposition()
	}
	rows, err := summarizeFinals(composition, finals)
	if err != nil {
		return BatchResult{}, err
	}
	return BatchResult{Rows: rows, FinalCounts: finals}, nil
}

func (r *BatchRunner) runOne(ctx context.Context, idx int) (map[string]int, error) {
	cfg := r.cfg.Population
	cfg.Seed = r.cfg.Seed + int64(idx)
	population, err := NewPopulation(cfg)
	if err != nil {
		return nil, err
	}
	for gen := 0; gen < r.cfg.Generations; gen++ {
		if _, err := population.AdvanceGeneration(ctx); err != nil {
			return nil, err
		}
	}
	return population.Counts(), nil
}

// summarizeFinals builds per-strategy mean/min/max rows. Every strategy in
// the starting composition gets a row even when it went extinct in all
// runs; strategies that only entered via mutation get rows too. Roster
// kinds absent from both the composition and every final are dropped.
func summarizeFinals(composition []SeedCount, finals []map[string]int) ([]model.BatchRow, error) {
	seeded := make(map[string]bool, len(composition))
	for _, seed := range composition {
		if seed.Count > 0 {
			seeded[seed.Kind.String()] = true
		}
	}

	rows := make([]model.BatchRow, 0, len(strategy.AllKinds()))
	for _, kind := range strategy.AllKinds() {
		name := kind.String()
		appeared := seeded[name]
		series := make([]int, len(finals))
		for i, counts := range finals {
			series[i] = counts[name]
			if counts[name] > 0 {
				appeared = true
			}
		}
		if !appeared {
			continue
		}
		summary, err := stats.Summarize(series)
		if err != nil {
			return nil, fmt.Errorf("summarize %s: %w", name, err)
		}
		rows = append(rows, model.BatchRow{
			Strategy: name,
			Mean:     summary.Mean,
			Min:      summary.Min,
			Max:      summary.Max,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Mean > rows[j].Mean
	})
	return rows, nil
}
