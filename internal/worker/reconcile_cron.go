package worker

// reconcile_cron.go
// Nightly job: after the last truck returns, reconcile every truck that was
// loaded today, then email the daily summary to the back office. Hooks are
// plain functions so the scheduler stays decoupled from the service layer.

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// NightlyJobs are the callbacks the scheduler invokes each night.
type NightlyJobs struct {
	// ReconcileAll reconciles every loaded truck for the date and returns the
	// number of reconciliations created.
	ReconcileAll func(ctx context.Context, date time.Time) (int, error)
	// EmailDailyReport sends the closing summary for the date.
	EmailDailyReport func(ctx context.Context, date time.Time) error
}

// StartReconcileCron schedules the nightly close per the cron spec
// (default "30 21 * * *"). The returned cron must be stopped on shutdown.
func StartReconcileCron(spec string, jobs NightlyJobs) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		today := time.Now()
		count, err := jobs.ReconcileAll(ctx, today)
		if err != nil {
			log.Error().Err(err).Msg("reconcile_cron: nightly reconciliation failed")
		} else {
			log.Info().Int("reconciled", count).Str("date", today.Format("2006-01-02")).
				Msg("reconcile_cron: nightly reconciliation complete")
		}

		if jobs.EmailDailyReport != nil {
			if err := jobs.EmailDailyReport(ctx, today); err != nil {
				log.Warn().Err(err).Msg("reconcile_cron: failed to send daily report")
			}
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	log.Info().Str("spec", spec).Msg("reconcile_cron: scheduled")
	return c, nil
}
