package sweep

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-marketplace/internal/metrics"
	"auction-marketplace/utils"
)

const defaultInterval = time.Minute

// RunnerParams configure a Runner
type RunnerParams struct {
	Registry *Registry
	Lock     Lock
	Metrics  *metrics.AuctionMetrics
	Interval time.Duration
}

// Runner executes the registered jobs on a fixed cadence under a lock
type Runner struct {
	registry *Registry
	lock     Lock
	metrics  *metrics.AuctionMetrics
	interval time.Duration
}

// NewRunner builds a Runner
func NewRunner(params RunnerParams) (*Runner, error) {
	if params.Lock == nil {
		return nil, errors.New("lock required")
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Runner{
		registry: registry,
		lock:     params.Lock,
		metrics:  params.Metrics,
		interval: interval,
	}, nil
}

// Run executes a cycle immediately and then on every tick until ctx is cancelled
func (r *Runner) Run(ctx context.Context) error {
	utils.Info("sweep: runner started", map[string]any{"interval": r.interval.String()})
	if _, err := r.RunCycle(ctx); err != nil {
		utils.Error("sweep: scheduled run failed", map[string]any{"error": err.Error()})
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			utils.Info("sweep: runner stopped", nil)
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.RunCycle(ctx); err != nil {
				utils.Error("sweep: scheduled run failed", map[string]any{"error": err.Error()})
			}
		}
	}
}

// RunCycle runs every job once if the lock can be taken. It reports whether the cycle ran.
// A failing job is logged and counted; the remaining jobs still run.
func (r *Runner) RunCycle(ctx context.Context) (bool, error) {
	locked, err := r.lock.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("lock acquire: %w", err)
	}
	if !locked {
		utils.Debug("sweep: another instance holds the lock, skipping cycle", nil)
		return false, nil
	}
	defer func() {
		if relErr := r.lock.Release(ctx); relErr != nil {
			utils.Error("sweep: failed to release lock", map[string]any{"error": relErr.Error()})
		}
	}()

	for _, job := range r.registry.Jobs() {
		r.runJob(ctx, job)
	}
	return true, nil
}

func (r *Runner) runJob(ctx context.Context, job Job) {
	start := time.Now()
	err := job.Run(ctx)
	duration := time.Since(start)
	r.metrics.ObserveJob(job.Name(), duration, err)

	fields := map[string]any{"job": job.Name(), "duration_ms": duration.Milliseconds()}
	if err != nil {
		fields["error"] = err.Error()
		utils.Error("sweep: job failed", fields)
		return
	}
	utils.Debug("sweep: job completed", fields)
}
