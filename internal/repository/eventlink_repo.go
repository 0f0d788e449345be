package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/raceops/resultsync/internal/model"
)

// EventLinkRepository persists reconciliation links between Events
// believed to describe the same underlying race across organisers.
type EventLinkRepository struct {
	db *gorm.DB
}

func NewEventLinkRepository(db *gorm.DB) *EventLinkRepository {
	return &EventLinkRepository{db: db}
}

// EnsureLink upserts a link between two events, ordering ids so the
// composite unique index (event_a_id, event_b_id) matches regardless of
// discovery direction.
func (r *EventLinkRepository) EnsureLink(ctx context.Context, eventAID, eventBID, relation string, confidence int) error {
	if eventAID > eventBID {
		eventAID, eventBID = eventBID, eventAID
	}
	link := &model.EventSourceLink{
		ID:         uuid.NewString(),
		EventAID:   eventAID,
		EventBID:   eventBID,
		Relation:   relation,
		Confidence: confidence,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_a_id"}, {Name: "event_b_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"relation", "confidence"}),
	}).Create(link).Error
}

// ListLinksForEvent returns every link touching eventID, either side.
func (r *EventLinkRepository) ListLinksForEvent(ctx context.Context, eventID string) ([]model.EventSourceLink, error) {
	var links []model.EventSourceLink
	err := r.db.WithContext(ctx).
		Where("event_a_id = ? OR event_b_id = ?", eventID, eventID).
		Find(&links).Error
	return links, err
}

// CandidateEventsForReconciliation returns up to limit events that have
// been scraped, most recently scraped first, for the reconciliation pass.
// Events that already have links are not excluded.
func (r *EventLinkRepository) CandidateEventsForReconciliation(ctx context.Context, limit int) ([]model.Event, error) {
	var events []model.Event
	err := r.db.WithContext(ctx).
		Where("scraped_at IS NOT NULL").
		Order("scraped_at DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}
