package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"avgverzoek/internal/platform/config"
)

// purgeSchedule runs revocation housekeeping at minute 17 of every hour.
const purgeSchedule = "0 17 * * * *"

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron   *cron.Cron
	jobs   *JobRunner
	logger *slog.Logger
}

// NewScheduler registers the jobs on a UTC, seconds-precision cron.
func NewScheduler(jobRunner *JobRunner, cfg config.SchedulerConfig, logger *slog.Logger) (*Scheduler, error) {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)
	s := &Scheduler{cron: c, jobs: jobRunner, logger: logger}

	if _, err := s.cron.AddFunc(cfg.ReminderCron, jobRunner.SendDeadlineReminders); err != nil {
		return nil, fmt.Errorf("register SendDeadlineReminders: %w", err)
	}
	if jobRunner.purger != nil {
		if _, err := s.cron.AddFunc(purgeSchedule, jobRunner.PurgeRevokedTokens); err != nil {
			return nil, fmt.Errorf("register PurgeRevokedTokens: %w", err)
		}
	}
	return s, nil
}

// Run starts the scheduler and blocks until ctx is done, then waits for
// running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting cron scheduler", "entries", len(s.cron.Entries()))
	s.cron.Start()
	<-ctx.Done()

	s.logger.Info("stopping cron scheduler")
	<-s.cron.Stop().Done()
	return nil
}

// Entries lists the next run times, for the startup log and tests.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}
