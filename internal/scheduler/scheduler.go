// Package scheduler runs the watch loop: a job fired on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is one scheduled run.
type Job func(ctx context.Context) error

// Scheduler wraps robfig/cron. A tick that fires while the previous run is
// still going is skipped.
type Scheduler struct {
	cron     *cron.Cron
	schedule cron.Schedule
	spec     string
	job      Job
	logger   zerolog.Logger
}

// New parses spec (standard five-field cron or a descriptor such as
// "@every 24h") and prepares a scheduler for job.
func New(spec string, job Job, logger zerolog.Logger) (*Scheduler, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	cronLogger := Logger{logger: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		schedule: schedule,
		spec:     spec,
		job:      job,
		logger:   logger,
	}, nil
}

// Next returns the first activation after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

// Run starts the schedule and blocks until ctx is cancelled, then waits for a
// running job to finish. When immediately is set the job also runs once at start.
func (s *Scheduler) Run(ctx context.Context, immediately bool) error {
	s.cron.Schedule(s.schedule, cron.FuncJob(func() { s.runOnce(ctx) }))
	s.cron.Start()
	s.logger.Info().Str("schedule", s.spec).Time("next", s.Next(time.Now())).Msg("scheduler started")

	var first sync.WaitGroup
	if immediately {
		first.Add(1)
		go func() {
			defer first.Done()
			s.runOnce(ctx)
		}()
	}

	<-ctx.Done()
	<-s.cron.Stop().Done()
	first.Wait()
	s.logger.Info().Msg("scheduler stopped")
	return nil
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	s.logger.Info().Msg("scheduled run started")
	if err := s.job(ctx); err != nil {
		s.logger.Error().Err(err).Dur("took", time.Since(start)).Msg("scheduled run failed")
		return
	}
	s.logger.Info().Dur("took", time.Since(start)).Time("next", s.Next(time.Now())).Msg("scheduled run complete")
}

// Logger adapts zerolog to cron.Logger.
type Logger struct {
	logger zerolog.Logger
}

// Info logs routine cron messages at debug level.
func (l Logger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

// Error logs cron failures.
func (l Logger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
