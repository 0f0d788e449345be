// Package ingest drives a single event URL through scraper selection,
// persistence, and retry hand-off - the Ingestion Coordinator.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/raceops/resultsync/internal/checkpoint"
	"github.com/raceops/resultsync/internal/model"
	"github.com/raceops/resultsync/internal/normalize"
	"github.com/raceops/resultsync/internal/notify"
	"github.com/raceops/resultsync/internal/repository"
	"github.com/raceops/resultsync/internal/scraper"
)

// fieldsProvidedJSON marshals the list of logical field names a result's
// source populated into the jsonb column ResultSource.FieldsProvided expects.
func fieldsProvidedJSON(fields []string) datatypes.JSON {
	b, err := json.Marshal(fields)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(b)
}

// Coordinator runs the end-to-end ingest of one event URL.
type Coordinator struct {
	logger      *logrus.Logger
	registry    *scraper.Registry
	eventRepo   *repository.EventRepository
	jobRepo     *repository.ScrapeJobRepository
	notifier    notify.Notifier
	defaultOpts scraper.Options
}

func NewCoordinator(logger *logrus.Logger, registry *scraper.Registry, eventRepo *repository.EventRepository, jobRepo *repository.ScrapeJobRepository, notifier notify.Notifier) *Coordinator {
	return &Coordinator{
		logger:    logger,
		registry:  registry,
		eventRepo: eventRepo,
		jobRepo:   jobRepo,
		notifier:  notifier,
		defaultOpts: scraper.Options{
			PolitenessGap: 500 * time.Millisecond,
			AllowHeadless: true,
		},
	}
}

// Run executes one ScrapeJob end to end. A scrape/persist failure is
// recorded on the job itself (retry count, truncated error, next retry
// time for the Retry Queue) and its cause is returned to the caller.
func (c *Coordinator) Run(ctx context.Context, job *model.ScrapeJob) error {
	organiserHint := job.Organiser

	s, err := c.registry.Resolve(job.EventURL, organiserHint)
	if err != nil {
		return c.fail(ctx, job, fmt.Errorf("select scraper: %w", err))
	}

	event, created, err := c.resolveEvent(ctx, job.EventURL, s.Name())
	if err != nil {
		return c.fail(ctx, job, fmt.Errorf("resolve event: %w", err))
	}

	var scraped scraper.ScrapedResults
	if created {
		scraped, err = s.ScrapeEvent(ctx, job.EventURL, c.defaultOpts, nil)
		if err != nil {
			return c.fail(ctx, job, fmt.Errorf("scrape event: %w", err))
		}

		event.Name = scraped.Event.Name
		if !scraped.Event.Date.IsZero() {
			event.Date = scraped.Event.Date
		}
		for _, d := range scraped.Distances {
			event.Distances = append(event.Distances, buildDistance(event.ID, d))
		}
		if err := c.eventRepo.CreateEvent(ctx, event); err != nil {
			return c.fail(ctx, job, fmt.Errorf("persist event: %w", err))
		}
	} else {
		scraped, err = s.ScrapeEvent(ctx, job.EventURL, c.defaultOpts, nil)
		if err != nil {
			return c.fail(ctx, job, fmt.Errorf("re-scrape event: %w", err))
		}

		for _, d := range scraped.Distances {
			dist := buildDistance(event.ID, d)
			if err := c.eventRepo.UpsertDistance(ctx, &dist); err != nil {
				return c.fail(ctx, job, fmt.Errorf("upsert distance: %w", err))
			}
			event.Distances = append(event.Distances, dist)
		}
	}

	results := c.buildResults(event, scraped, job.EventURL, s.Name())
	if err := c.eventRepo.SaveResults(ctx, results); err != nil {
		return c.fail(ctx, job, fmt.Errorf("persist results: %w", err))
	}

	now := time.Now()
	if err := c.eventRepo.TouchScrapedAt(ctx, event.ID, &now); err != nil {
		c.logger.WithError(err).Warn("ingest: failed to touch scraped_at")
	}

	return c.jobRepo.MarkCompleted(ctx, job.ID, len(results))
}

// buildDistance maps a scraped distance onto its persistence model,
// deriving the race type and, absent an organiser-supplied list, the
// expected checkpoints for that type/distance combination.
func buildDistance(eventID string, d scraper.RawDistance) model.EventDistance {
	raceType := checkpoint.DetectRaceType(d.Name)
	expected := d.ExpectedCheckpoints
	if len(expected) == 0 {
		expected = checkpoint.ExpectedCheckpoints(raceType, d.DistanceMeters)
	}
	return model.EventDistance{
		EventID:             eventID,
		Name:                d.Name,
		DistanceMeters:      d.DistanceMeters,
		RaceType:            raceType,
		ExpectedCheckpoints: fieldsProvidedJSON(expected),
		ParticipantCount:    d.ParticipantCount,
	}
}

// resolveEvent reuses an Event by URL if one exists, otherwise seeds a
// fresh one (not yet persisted).
func (c *Coordinator) resolveEvent(ctx context.Context, url, organiser string) (*model.Event, bool, error) {
	existing, err := c.eventRepo.FindByURL(ctx, url)
	if err == nil {
		return existing, false, nil
	}
	return &model.Event{
		URL:       url,
		Organiser: organiser,
	}, true, nil
}

// buildResults maps scraper output onto persistence models, computing the
// normalised name and deriving each result's ResultSource.
func (c *Coordinator) buildResults(event *model.Event, scraped scraper.ScrapedResults, sourceURL, organiser string) []*model.RaceResult {
	distanceIDByName := make(map[string]string)
	for _, d := range event.Distances {
		distanceIDByName[d.Name] = d.ID
	}

	now := time.Now()
	results := make([]*model.RaceResult, 0, len(scraped.Results))

	for _, r := range scraped.Results {
		status := model.StatusFinished
		if r.Status != "" {
			status = model.ResultStatus(r.Status)
		}

		var distanceID *string
		if id, ok := distanceIDByName[r.DistanceName]; ok {
			distanceID = &id
		}

		result := &model.RaceResult{
			EventID:          event.ID,
			EventDistanceID:  distanceID,
			Position:         r.Position,
			Bib:              r.Bib,
			DisplayName:      r.DisplayName,
			NormalizedName:   normalize.Name(r.DisplayName),
			Gender:           r.Gender,
			Category:         r.Category,
			FinishTime:       r.FinishTime,
			GunTime:          r.GunTime,
			ChipTime:         r.ChipTime,
			Pace:             r.Pace,
			GenderPosition:   r.GenderPosition,
			CategoryPosition: r.CategoryPosition,
			Country:          r.Country,
			Club:             r.Club,
			Age:              r.Age,
			Status:           status,
			TimeBehind:       r.TimeBehind,
		}

		for _, cp := range r.Checkpoints {
			normalizedName := checkpoint.NormalizeCheckpointName(cp.Name)
			result.Checkpoints = append(result.Checkpoints, model.TimingCheckpoint{
				Type:           checkpoint.CheckpointTypeFor(normalizedName),
				Name:           normalizedName,
				Order:          cp.Order,
				SplitTime:      cp.SplitTime,
				CumulativeTime: cp.CumulativeTime,
				Pace:           cp.Pace,
			})
		}

		result.Sources = append(result.Sources, model.ResultSource{
			Organiser:      organiser,
			SourceURL:      sourceURL,
			ScrapedAt:      now,
			FieldsProvided: fieldsProvidedJSON(r.FieldsProvided),
			Primary:        true,
			Confidence:     100,
		})

		results = append(results, result)
	}
	return results
}

func (c *Coordinator) fail(ctx context.Context, job *model.ScrapeJob, cause error) error {
	c.logger.WithError(cause).WithField("job_id", job.ID).Warn("ingest: job failed")

	msg := cause.Error()
	if len(msg) > 100 {
		msg = msg[:100]
	}

	var nextRetryAt *time.Time
	if job.RetryCount < job.MaxRetries {
		delay := retryDelay(job.RetryCount)
		t := time.Now().Add(delay)
		nextRetryAt = &t
	}
	job.RetryCount++

	if job.RetryCount == 1 {
		c.notifier.ScrapeFailed(notify.JobSummary{
			JobID:        job.ID,
			ShortID:      job.ShortID(),
			Organiser:    job.Organiser,
			EventURL:     job.EventURL,
			ErrorMessage: msg,
			RetryCount:   job.RetryCount,
		})
	}

	if err := c.jobRepo.MarkFailed(ctx, job.ID, msg, job.RetryCount, nextRetryAt); err != nil {
		return fmt.Errorf("mark job failed: %w", err)
	}
	return cause
}

// retryDelay returns the {5,15,45}-minute backoff interval for a given
// zero-based retry attempt index, clamped to the last entry.
func retryDelay(attempt int) time.Duration {
	schedule := []time.Duration{5 * time.Minute, 15 * time.Minute, 45 * time.Minute}
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= len(schedule) {
		attempt = len(schedule) - 1
	}
	return schedule[attempt]
}
