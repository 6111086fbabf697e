// Package schedule runs periodic maintenance jobs (log retention,
// idempotency cleanup) on cron expressions.
package schedule

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Job is a named unit of periodic work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler registers and drives jobs.
type Scheduler interface {
	AddJob(job Job, spec string) error
	Start(ctx context.Context)
	Stop()
}

// CronScheduler uses standard 5-field cron specs. A job whose previous run
// is still in progress is skipped.
type CronScheduler struct {
	cron    *cron.Cron
	entries map[string]cron.EntryID
	ctx     context.Context
}

// NewCronScheduler builds a scheduler with the minute-resolution parser.
func NewCronScheduler() *CronScheduler {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return &CronScheduler{
		cron:    cron.New(cron.WithParser(parser)),
		entries: make(map[string]cron.EntryID),
	}
}

// AddJob schedules job on spec.
func (c *CronScheduler) AddJob(job Job, spec string) error {
	logger := log.With().Str("job", job.Name()).Str("spec", spec).Logger()
	entryID, err := c.cron.AddFunc(spec, c.wrap(job, spec))
	if err != nil {
		logger.Error().Err(err).Msg("schedule job failed")
		return err
	}
	c.entries[job.Name()] = entryID
	logger.Info().Msg("job scheduled")
	return nil
}

// Start begins running jobs; ctx is passed to every run.
func (c *CronScheduler) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	c.ctx = ctx
	c.cron.Start()
}

// Stop waits for running jobs to finish.
func (c *CronScheduler) Stop() {
	ctx := c.cron.Stop()
	<-ctx.Done()
}

// Entries returns the number of scheduled jobs.
func (c *CronScheduler) Entries() int { return len(c.entries) }

func (c *CronScheduler) wrap(job Job, spec string) func() {
	var running atomic.Bool
	return func() {
		if !running.CompareAndSwap(false, true) {
			log.Info().Str("job", job.Name()).Str("spec", spec).Msg("job skipped: still running")
			return
		}
		defer running.Store(false)

		ctx := c.ctx
		if ctx == nil {
			ctx = context.Background()
		}
		logger := log.With().Str("job", job.Name()).Str("spec", spec).Logger()
		start := time.Now()
		logger.Info().Msg("job started")
		err := job.Run(logger.WithContext(ctx))
		elapsed := time.Since(start)
		if err != nil {
			logger.Error().Err(err).Dur("duration", elapsed).Msg("job finished")
			return
		}
		logger.Info().Dur("duration", elapsed).Msg("job finished")
	}
}
