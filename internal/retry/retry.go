// Package retry drains the Retry Queue: ScrapeJobs that failed and whose
// backoff window has elapsed get re-run through the Ingestion Coordinator.
package retry

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/raceops/resultsync/internal/ingest"
	"github.com/raceops/resultsync/internal/model"
	"github.com/raceops/resultsync/internal/notify"
	"github.com/raceops/resultsync/internal/repository"
)

// interJobSleep is the fixed pause between re-run attempts within one
// drain pass, so a burst of due retries never hammers the same source.
const interJobSleep = 2 * time.Second

// claimBatchSize bounds how many due jobs a single drain pass claims.
const claimBatchSize = 20

// Drainer runs one pass of the Retry Queue on demand; the Scheduler
// decides how often to call it.
type Drainer struct {
	jobRepo     *repository.ScrapeJobRepository
	coordinator *ingest.Coordinator
	notifier    notify.Notifier
	logger      *logrus.Logger
}

func NewDrainer(jobRepo *repository.ScrapeJobRepository, coordinator *ingest.Coordinator, notifier notify.Notifier, logger *logrus.Logger) *Drainer {
	return &Drainer{jobRepo: jobRepo, coordinator: coordinator, notifier: notifier, logger: logger}
}

// Run claims every due job up to claimBatchSize and re-runs each through
// the Coordinator, sleeping interJobSleep between attempts. It returns
// the number of jobs it attempted.
func (d *Drainer) Run(ctx context.Context) (int, error) {
	due, err := d.jobRepo.ClaimDueRetries(ctx, claimBatchSize)
	if err != nil {
		return 0, err
	}

	for i := range due {
		job := due[i]
		d.retryOne(ctx, &job)

		if i < len(due)-1 {
			select {
			case <-ctx.Done():
				return i + 1, ctx.Err()
			case <-time.After(interJobSleep):
			}
		}
	}
	return len(due), nil
}

// retryOne re-runs a single claimed job and fires the appropriate
// notification for the transition it produced.
func (d *Drainer) retryOne(ctx context.Context, job *model.ScrapeJob) {
	logger := d.logger.WithField("job_id", job.ID).WithField("retry_count", job.RetryCount)
	logger.Info("retry: re-running claimed job")

	summary := notify.JobSummary{
		JobID:     job.ID,
		ShortID:   job.ShortID(),
		Organiser: job.Organiser,
		EventURL:  job.EventURL,
		RetryCount: job.RetryCount,
	}

	if err := d.coordinator.Run(ctx, job); err != nil {
		logger.WithError(err).Warn("retry: attempt failed")

		refreshed, getErr := d.jobRepo.GetByID(ctx, job.ID)
		if getErr != nil {
			logger.WithError(getErr).Warn("retry: failed to reload job after failed attempt")
			return
		}

		summary.RetryCount = refreshed.RetryCount
		if refreshed.ErrorMessage != nil {
			summary.ErrorMessage = *refreshed.ErrorMessage
		}

		if refreshed.Status == model.JobFailed && refreshed.NextRetryAt == nil {
			d.notifier.ScrapePermanentlyFailed(summary)
		}
		return
	}

	completed, getErr := d.jobRepo.GetByID(ctx, job.ID)
	if getErr == nil {
		summary.ResultsCount = completed.ResultsCount
	}
	d.notifier.ScrapeRetrySuccess(summary)
	if markErr := d.jobRepo.MarkNotified(ctx, job.ID); markErr != nil {
		logger.WithError(markErr).Warn("retry: failed to flag job notified")
	}
}
