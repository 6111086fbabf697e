package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// RetentionJob is a schedule.Job that prunes chat logs older than Retention.
type RetentionJob struct {
	Logs      *LogService
	Retention time.Duration
	// Now is overridable in tests.
	Now func() time.Time
}

// Name implements schedule.Job.
func (j *RetentionJob) Name() string { return "chat-log-retention" }

// Run implements schedule.Job.
func (j *RetentionJob) Run(ctx context.Context) error {
	now := time.Now().UTC()
	if j.Now != nil {
		now = j.Now()
	}
	n, err := j.Logs.Prune(ctx, j.Retention, now)
	if err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Int64("deleted", n).Dur("retention", j.Retention).Msg("chat logs pruned")
	return nil
}
