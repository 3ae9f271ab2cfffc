package sqlite

import (
	"context"
	"log/slog"

	"github.com/busgrid/tgbridge/internal/cron"
)

// purgeJob deletes expired dedup rows on a cron schedule.
type purgeJob struct {
	store    *dedupStore
	logger   *slog.Logger
	schedule string
}

var _ cron.Job = (*purgeJob)(nil)

// Name implements cron.Job.
func (j *purgeJob) Name() string { return "dedup_purge" }

// Schedule implements cron.Job.
func (j *purgeJob) Schedule() string { return j.schedule }

// Run implements cron.Job.
func (j *purgeJob) Run(ctx context.Context) error {
	n, err := j.store.purgeExpired(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		j.logger.Info("purged expired dedup records", "count", n)
	}
	return nil
}
