package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/raceops/resultsync/internal/model"
)

const resultBatchSize = 500

// EventRepository persists Events, their Distances, RaceResults,
// TimingCheckpoints and ResultSources for the Ingestion Coordinator.
type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// FindByURL returns the existing Event for a URL, or gorm.ErrRecordNotFound.
func (r *EventRepository) FindByURL(ctx context.Context, url string) (*model.Event, error) {
	var event model.Event
	if err := r.db.WithContext(ctx).Where("url = ?", url).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// CreateEvent assigns a UUID and persists the event with its distances in
// one transaction.
func (r *EventRepository) CreateEvent(ctx context.Context, event *model.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	for i := range event.Distances {
		if event.Distances[i].ID == "" {
			event.Distances[i].ID = uuid.NewString()
		}
		event.Distances[i].EventID = event.ID
	}
	return r.db.WithContext(ctx).Create(event).Error
}

// TouchScrapedAt records when the event was last successfully scraped.
func (r *EventRepository) TouchScrapedAt(ctx context.Context, eventID string, scrapedAt interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Event{}).
		Where("id = ?", eventID).
		Update("scraped_at", scrapedAt).Error
}

// SaveResults persists RaceResults in batches of resultBatchSize. Each
// result is upserted by its dedup key (event, position, bib, display name)
// so re-running scrapeEvent against the same URL replaces the prior rows
// for that entrant instead of duplicating them.
func (r *EventRepository) SaveResults(ctx context.Context, results []*model.RaceResult) error {
	for i := range results {
		if results[i].ID == "" {
			results[i].ID = uuid.NewString()
		}
	}

	for start := 0; start < len(results); start += resultBatchSize {
		end := start + resultBatchSize
		if end > len(results) {
			end = len(results)
		}
		batch := results[start:end]

		tx := r.db.WithContext(ctx).Begin()
		if tx.Error != nil {
			return fmt.Errorf("save results: begin batch tx: %w", tx.Error)
		}

		for _, res := range batch {
			if err := upsertResult(tx, res); err != nil {
				tx.Rollback()
				return fmt.Errorf("save results: bib %s: %w", res.Bib, err)
			}
		}

		if err := tx.Commit().Error; err != nil {
			return fmt.Errorf("save results: commit batch: %w", err)
		}
	}
	return nil
}

// upsertResult finds the existing RaceResult matching res's dedup key
// (event, position, bib, display name) and replaces it in place, reusing
// its id and dropping its stale children before res's own children are
// attached; absent a match it inserts res as a new row.
//
// A nil Position never matches another nil Position under SQL equality,
// so entrants scraped without a position cannot be deduplicated against a
// prior scrape that also produced no position - they accumulate as
// distinct rows instead. Position is part of the spec's dedup key, and an
// organiser that never reports it gives us nothing else to dedupe on.
func upsertResult(tx *gorm.DB, res *model.RaceResult) error {
	query := tx.Model(&model.RaceResult{}).
		Where("event_id = ? AND bib = ? AND display_name = ?", res.EventID, res.Bib, res.DisplayName)
	if res.Position != nil {
		query = query.Where("position = ?", *res.Position)
	} else {
		query = query.Where("position IS NULL")
	}

	var existing model.RaceResult
	err := query.First(&existing).Error
	create := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !create {
		return err
	}

	if !create {
		res.ID = existing.ID
		if err := tx.Where("result_id = ?", existing.ID).Delete(&model.TimingCheckpoint{}).Error; err != nil {
			return err
		}
		if err := tx.Where("result_id = ?", existing.ID).Delete(&model.ResultSource{}).Error; err != nil {
			return err
		}
	}

	for j := range res.Checkpoints {
		if res.Checkpoints[j].ID == "" {
			res.Checkpoints[j].ID = uuid.NewString()
		}
		res.Checkpoints[j].ResultID = res.ID
	}
	for j := range res.Sources {
		if res.Sources[j].ID == "" {
			res.Sources[j].ID = uuid.NewString()
		}
		res.Sources[j].ResultID = res.ID
	}

	if create {
		return tx.Create(res).Error
	}
	return tx.Save(res).Error
}

// UpsertDistance ensures an EventDistance row exists for event+name,
// updating race type and participant count on conflict.
func (r *EventRepository) UpsertDistance(ctx context.Context, d *model.EventDistance) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"race_type", "participant_count", "expected_checkpoints"}),
	}).Create(d).Error; err != nil {
		return err
	}
	// On conflict the stored row keeps its own id; reload it so d.ID names it.
	var stored model.EventDistance
	if err := r.db.WithContext(ctx).Where("event_id = ? AND name = ?", d.EventID, d.Name).First(&stored).Error; err != nil {
		return err
	}
	d.ID = stored.ID
	return nil
}

// UnlinkedResultsForAthleteMatch returns results with no athlete link,
// used by the Athlete Matcher's batch pass.
func (r *EventRepository) UnlinkedResultsForAthleteMatch(ctx context.Context, limit int) ([]model.RaceResult, error) {
	var results []model.RaceResult
	err := r.db.WithContext(ctx).
		Where("athlete_id IS NULL").
		Limit(limit).
		Find(&results).Error
	return results, err
}

// SetAthleteLink records the auto-matched or manually confirmed link.
func (r *EventRepository) SetAthleteLink(ctx context.Context, resultID, athleteID string) error {
	return r.db.WithContext(ctx).Model(&model.RaceResult{}).
		Where("id = ?", resultID).
		Update("athlete_id", athleteID).Error
}
