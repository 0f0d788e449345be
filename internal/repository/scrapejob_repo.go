package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/raceops/resultsync/internal/model"
)

// ScrapeJobRepository persists ScrapeJobs and implements the claim
// semantics the Retry Queue drainer relies on.
type ScrapeJobRepository struct {
	db *gorm.DB
}

func NewScrapeJobRepository(db *gorm.DB) *ScrapeJobRepository {
	return &ScrapeJobRepository{db: db}
}

// Create assigns a UUID and inserts a pending job.
func (r *ScrapeJobRepository) Create(ctx context.Context, job *model.ScrapeJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *ScrapeJobRepository) GetByID(ctx context.Context, id string) (*model.ScrapeJob, error) {
	var job model.ScrapeJob
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// MarkRunning flips a job to running, used both for first attempts and
// for jobs claimed off the retry queue.
func (r *ScrapeJobRepository) MarkRunning(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&model.ScrapeJob{}).
		Where("id = ?", id).
		Update("status", model.JobRunning).Error
}

// MarkCompleted records success and the result count.
func (r *ScrapeJobRepository) MarkCompleted(ctx context.Context, id string, resultsCount int) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&model.ScrapeJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":         model.JobCompleted,
			"results_count":  resultsCount,
			"completed_at":   &now,
			"next_retry_at":  nil,
			"error_message":  nil,
		}).Error
}

// MarkFailed schedules the next retry per the {5,15,45}-minute backoff
// schedule, or leaves nextRetryAt nil when retries are exhausted.
func (r *ScrapeJobRepository) MarkFailed(ctx context.Context, id string, errMsg string, retryCount int, nextRetryAt *time.Time) error {
	if len(errMsg) > 100 {
		errMsg = errMsg[:100]
	}
	return r.db.WithContext(ctx).Model(&model.ScrapeJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        model.JobFailed,
			"error_message": errMsg,
			"retry_count":   retryCount,
			"next_retry_at": nextRetryAt,
		}).Error
}

// MarkNotified sets a job's notification_sent flag. The flag is recorded
// only; no notification path reads it before firing.
func (r *ScrapeJobRepository) MarkNotified(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&model.ScrapeJob{}).
		Where("id = ?", id).
		Update("notification_sent", true).Error
}

// ClaimDueRetries atomically claims failed jobs whose nextRetryAt has
// passed, flipping them to running so a concurrent drainer cannot also
// pick them up.
func (r *ScrapeJobRepository) ClaimDueRetries(ctx context.Context, limit int) ([]model.ScrapeJob, error) {
	var due []model.ScrapeJob
	if err := r.db.WithContext(ctx).
		Where("status = ? AND next_retry_at IS NOT NULL AND next_retry_at <= ?", model.JobFailed, time.Now()).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&due).Error; err != nil {
		return nil, err
	}

	claimed := make([]model.ScrapeJob, 0, len(due))
	for _, job := range due {
		result := r.db.WithContext(ctx).Model(&model.ScrapeJob{}).
			Where("id = ? AND status = ?", job.ID, model.JobFailed).
			Update("status", model.JobRunning)
		if result.Error != nil {
			continue
		}
		if result.RowsAffected == 1 {
			job.Status = model.JobRunning
			claimed = append(claimed, job)
		}
	}
	return claimed, nil
}
