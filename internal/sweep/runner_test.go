package sweep

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"auction-marketplace/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name string
	err  error
	runs atomic.Int32
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(context.Context) error {
	j.runs.Add(1)
	return j.err
}

type stubLock struct {
	held       bool
	acquireErr error
	releases   int
}

func (l *stubLock) Acquire(context.Context) (bool, error) {
	if l.acquireErr != nil {
		return false, l.acquireErr
	}
	return !l.held, nil
}

func (l *stubLock) Release(context.Context) error {
	l.releases++
	return nil
}

func TestRunner_RunCycleRunsAllJobsEvenOnFailure(t *testing.T) {
	t.Parallel()

	ok := &countingJob{name: "ok"}
	failing := &countingJob{name: "failing", err: errors.New("boom")}
	reg := prometheus.NewRegistry()
	lock := &stubLock{}

	runner, err := NewRunner(RunnerParams{
		Registry: NewRegistry(failing, nil, ok),
		Lock:     lock,
		Metrics:  metrics.New(reg),
	})
	require.NoError(t, err)

	ran, err := runner.RunCycle(context.Background())
	require.NoError(t, err)
	require.True(t, ran)
	require.Equal(t, int32(1), ok.runs.Load())
	require.Equal(t, int32(1), failing.runs.Load())
	require.Equal(t, 1, lock.releases)

	families, err := reg.Gather()
	require.NoError(t, err)
	seen := map[string]int{}
	for _, mf := range families {
		seen[mf.GetName()] = len(mf.GetMetric())
	}
	require.Equal(t, 1, seen["auction_job_failure_total"])
	require.Equal(t, 1, seen["auction_job_success_total"])
	require.Equal(t, 2, seen["auction_job_duration_seconds"])
}

func TestRunner_SkipsWhenLocked(t *testing.T) {
	t.Parallel()

	job := &countingJob{name: "job"}
	lock := &stubLock{held: true}
	runner, err := NewRunner(RunnerParams{Registry: NewRegistry(job), Lock: lock})
	require.NoError(t, err)

	ran, err := runner.RunCycle(context.Background())
	require.NoError(t, err)
	require.False(t, ran)
	require.Zero(t, job.runs.Load())
	require.Zero(t, lock.releases)

	lock.held = false
	lock.acquireErr = errors.New("redis down")
	_, err = runner.RunCycle(context.Background())
	require.ErrorContains(t, err, "redis down")
}

func TestRunner_RunStopsOnCancel(t *testing.T) {
	t.Parallel()

	job := &countingJob{name: "job"}
	runner, err := NewRunner(RunnerParams{
		Registry: NewRegistry(job),
		Lock:     &LocalLock{},
		Interval: 10 * time.Millisecond,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	require.Eventually(t, func() bool { return job.runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("runner did not stop")
	}
}

func TestNewRunner_Defaults(t *testing.T) {
	_, err := NewRunner(RunnerParams{})
	require.Error(t, err)

	runner, err := NewRunner(RunnerParams{Lock: &LocalLock{}})
	require.NoError(t, err)
	require.Equal(t, defaultInterval, runner.interval)
	require.Empty(t, runner.registry.Jobs())
}

type fakeCleaner struct {
	cutoff time.Time
	err    error
}

func (f *fakeCleaner) DeleteReadBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return 3, f.err
}

func TestNotificationCleanupJob(t *testing.T) {
	t.Parallel()

	cleaner := &fakeCleaner{}
	job, err := NewNotificationCleanupJob(cleaner, 0)
	require.NoError(t, err)
	now := time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return now }

	require.Equal(t, NotificationJobName, job.Name())
	require.NoError(t, job.Run(context.Background()))
	require.Equal(t, now.Add(-30*24*time.Hour), cleaner.cutoff)

	cleaner.err = errors.New("locked")
	require.Error(t, job.Run(context.Background()))

	_, err = NewNotificationCleanupJob(nil, time.Hour)
	require.Error(t, err)
}
