package services

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	defaultDailySpec  = "0 6 * * *"
	defaultWeeklySpec = "0 6 * * 1"
	defaultSweepSpec  = "@hourly"
)

// Scheduler owns the process-wide periodic jobs: the daily and weekly
// assignment generators and the hourly overdue sweeper. Jobs are fire and
// forget: a failed tick is logged and the next tick proceeds independently.
type Scheduler struct {
	cron      *cron.Cron
	generator *Generator
	sweeper   *Sweeper
	log       *zap.SugaredLogger

	dailySpec  string
	weeklySpec string
	sweepSpec  string
}

// SchedulerOption customises the Scheduler.
type SchedulerOption func(*Scheduler)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) SchedulerOption {
	return func(s *Scheduler) {
		if c != nil {
			s.cron = c
		}
	}
}

// WithDailySpec overrides the cron spec for the daily generator.
func WithDailySpec(spec string) SchedulerOption {
	return func(s *Scheduler) {
		if spec != "" {
			s.dailySpec = spec
		}
	}
}

// WithWeeklySpec overrides the cron spec for the weekly generator.
func WithWeeklySpec(spec string) SchedulerOption {
	return func(s *Scheduler) {
		if spec != "" {
			s.weeklySpec = spec
		}
	}
}

// WithSweepSpec overrides the cron spec for the overdue sweeper.
func WithSweepSpec(spec string) SchedulerOption {
	return func(s *Scheduler) {
		if spec != "" {
			s.sweepSpec = spec
		}
	}
}

// NewScheduler constructs a Scheduler with the default 06:00 daily, 06:00
// Monday, and hourly schedules.
func NewScheduler(generator *Generator, sweeper *Sweeper, log *zap.SugaredLogger, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		generator:  generator,
		sweeper:    sweeper,
		log:        log,
		dailySpec:  defaultDailySpec,
		weeklySpec: defaultWeeklySpec,
		sweepSpec:  defaultSweepSpec,
	}
	if s.log == nil {
		s.log = zap.NewNop().Sugar()
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cron == nil {
		s.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return s
}

// Start registers the jobs and launches the scheduler. Errors inside a job
// never propagate to cron; they are logged and the tick is abandoned.
func (s *Scheduler) Start() error {
	if s.generator != nil {
		if _, err := s.cron.AddFunc(s.dailySpec, func() {
			if _, err := s.generator.RunDaily(); err != nil {
				s.log.Errorw("daily assignment generation failed", "error", err)
			}
		}); err != nil {
			return err
		}
		if _, err := s.cron.AddFunc(s.weeklySpec, func() {
			if _, err := s.generator.RunWeekly(); err != nil {
				s.log.Errorw("weekly assignment generation failed", "error", err)
			}
		}); err != nil {
			return err
		}
	}

	if s.sweeper != nil {
		if _, err := s.cron.AddFunc(s.sweepSpec, func() {
			if _, err := s.sweeper.Run(); err != nil {
				s.log.Errorw("overdue sweep failed", "error", err)
			}
		}); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.log.Infow("scheduler started",
		"daily", s.dailySpec, "weekly", s.weeklySpec, "sweep", s.sweepSpec)
	return nil
}

// Stop halts the scheduler, returning a context that completes once running
// jobs have finished.
func (s *Scheduler) Stop() context.Context {
	if s.cron == nil {
		return context.Background()
	}
	return s.cron.Stop()
}

// RunOnce executes every job a single time, sequentially. Used by tests and
// for manual catch-up runs.
func (s *Scheduler) RunOnce() {
	if s.generator != nil {
		if _, err := s.generator.RunDaily(); err != nil {
			s.log.Errorw("daily assignment generation failed", "error", err)
		}
		if _, err := s.generator.RunWeekly(); err != nil {
			s.log.Errorw("weekly assignment generation failed", "error", err)
		}
	}
	if s.sweeper != nil {
		if _, err := s.sweeper.Run(); err != nil {
			s.log.Errorw("overdue sweep failed", "error", err)
		}
	}
}
