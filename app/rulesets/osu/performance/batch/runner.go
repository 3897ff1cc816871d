// Package batch calculates difficulty attributes of many charts concurrently.
// Calculations share nothing but the read-only tuning table, so jobs run without locking.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/Givikap120/danser-pp/app/beatmap/difficulty"
	"github.com/Givikap120/danser-pp/app/beatmap/objects"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/api"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/cache"
)

const (
	sourceCalculated = "calculated"
	sourceCache      = "cache"
)

// Job is one chart calculated with one set of mods
type Job struct {
	ChartID string
	Objects []objects.IHitObject
	Diff    *difficulty.Difficulty
}

type Result struct {
	ChartID    string
	Attributes api.Attributes
	Cached     bool
	Err        error
}

type Options struct {
	// Workers limits concurrent calculations, DefaultWorkers is used when <= 0
	Workers int

	// Store enables cache read-through when set
	Store *cache.Store

	Metrics *Metrics
}

type Runner struct {
	calculator api.IDifficultyCalculator
	workers    int
	store      *cache.Store
	metrics    *Metrics
}

// DefaultWorkers is the number of physical cores, or 1 when it can't be detected
func DefaultWorkers() int {
	count, err := cpu.Counts(false)
	if err != nil || count < 1 {
		return 1
	}

	return count
}

func NewRunner(calculator api.IDifficultyCalculator, options Options) *Runner {
	workers := options.Workers
	if workers <= 0 {
		workers = DefaultWorkers()
	}

	return &Runner{
		calculator: calculator,
		workers:    workers,
		store:      options.Store,
		metrics:    options.Metrics,
	}
}

func (r *Runner) Workers() int {
	return r.workers
}

// Run calculates all jobs and returns their results in job order.
// Failed jobs are reported in Result.Err. Cancelling ctx stops the batch and returns the context error.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	startTime := time.Now()

	results := make([]Result, len(jobs))
	semaphore := make(chan struct{}, r.workers)

	var wg sync.WaitGroup

	for i := range jobs {
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil, fmt.Errorf("run batch: %w", ctx.Err())
		case semaphore <- struct{}{}:
		}

		wg.Add(1)

		go func(idx int) {
			defer wg.Done()
			defer func() { <-semaphore }()

			results[idx] = r.process(ctx, jobs[idx])
		}(i)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run batch: %w", err)
	}

	cached := 0
	failed := 0

	for _, res := range results {
		if res.Cached {
			cached++
		}

		if res.Err != nil {
			failed++
		}
	}

	log.Printf("Batch finished: %d charts, %d from cache, %d failed. Took %s", len(jobs), cached, failed, time.Since(startTime).Truncate(time.Millisecond))

	return results, nil
}

func (r *Runner) process(ctx context.Context, job Job) Result {
	result := Result{ChartID: job.ChartID}

	key := cache.KeyFor(job.ChartID, job.Diff, r.calculator)

	if r.store != nil {
		attr, err := r.store.Get(ctx, key)
		if err == nil {
			result.Attributes = attr
			result.Cached = true

			r.observe(sourceCache, 0)

			return result
		}

		if !errors.Is(err, cache.ErrNotFound) {
			log.Println("Failed to read cached attributes:", err)
		}
	}

	if r.metrics != nil {
		r.metrics.ActiveWorkers.Inc()
		defer r.metrics.ActiveWorkers.Dec()
	}

	startTime := time.Now()

	attr, err := r.calculator.CalculateSingle(ctx, job.Objects, job.Diff)
	if err != nil {
		result.Err = fmt.Errorf("chart %s: %w", job.ChartID, err)

		if r.metrics != nil {
			r.metrics.CalculationErrors.Inc()
		}

		return result
	}

	r.observe(sourceCalculated, time.Since(startTime))

	result.Attributes = attr

	if r.store != nil {
		if err = r.store.Put(ctx, key, attr); err != nil {
			log.Println("Failed to cache attributes:", err)
		}
	}

	return result
}

func (r *Runner) observe(source string, took time.Duration) {
	if r.metrics == nil {
		return
	}

	r.metrics.Calculations.WithLabelValues(source).Inc()

	if source == sourceCalculated {
		r.metrics.CalculationLatency.Observe(took.Seconds())
	}
}
