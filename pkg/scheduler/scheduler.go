// Package scheduler runs the storefront's periodic batch jobs on robfig/cron.
//
// Every job receives a context that is cancelled on Stop, runs under a
// per-run timeout, is skipped while a previous run is still going, and has
// its panics recovered and logged.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/spicyjump/storefront/pkg/logger"
)

// Job is one batch job.
type Job struct {
	Name     string
	Spec     string // standard 5-field cron spec or descriptor, e.g. "@every 1m"
	Timeout  time.Duration
	Run      func(ctx context.Context) error
	disabled bool
}

// Disabled returns a copy of j that is registered but never scheduled.
func (j Job) Disabled() Job {
	j.disabled = true
	return j
}

// Scheduler owns a cron instance and the base context of its jobs.
type Scheduler struct {
	cron   *cron.Cron
	log    logger.Logger
	ctx    context.Context
	cancel context.CancelFunc
	ids    map[string]cron.EntryID
}

// New creates a Scheduler whose jobs run in loc.
func New(log logger.Logger, loc *time.Location) *Scheduler {
	cl := cronLogger{log: log}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
		ids:    make(map[string]cron.EntryID),
	}
}

// Register schedules job. Invalid specs and duplicate names are errors.
func (s *Scheduler) Register(job Job) error {
	if job.disabled {
		s.log.Info("scheduler: job disabled", "job", job.Name)
		return nil
	}
	if _, dup := s.ids[job.Name]; dup {
		return fmt.Errorf("scheduler: duplicate job %q", job.Name)
	}
	id, err := s.cron.AddFunc(job.Spec, func() { s.run(job) })
	if err != nil {
		return fmt.Errorf("scheduler: job %q spec %q: %w", job.Name, job.Spec, err)
	}
	s.ids[job.Name] = id
	return nil
}

// RunNow executes the named job synchronously, outside the schedule.
func (s *Scheduler) RunNow(name string) error {
	id, ok := s.ids[name]
	if !ok {
		return fmt.Errorf("scheduler: unknown job %q", name)
	}
	s.cron.Entry(id).WrappedJob.Run()
	return nil
}

// Next returns the next activation time of the named job.
func (s *Scheduler) Next(name string) (time.Time, bool) {
	id, ok := s.ids[name]
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(id).Next, true
}

// Start begins scheduling in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler: started", "jobs", len(s.ids))
}

// Stop cancels running jobs and waits for them to return or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	s.cancel()
	done := s.cron.Stop().Done()
	select {
	case <-done:
		s.log.Info("scheduler: stopped")
	case <-ctx.Done():
		s.log.Warn("scheduler: stop timed out with jobs still running")
	}
}

func (s *Scheduler) run(job Job) {
	ctx := s.ctx
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		s.log.ErrorContext(ctx, "scheduler: job failed",
			"job", job.Name,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return
	}
	s.log.DebugContext(ctx, "scheduler: job finished",
		"job", job.Name,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// cronLogger bridges logger.Logger to cron.Logger.
type cronLogger struct{ log logger.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.log.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.log.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
