package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/raceops/resultsync/internal/model"
)

// EndpointRepository persists MonitoredEndpoints and their probe history,
// implementing the change-only transition semantics the Endpoint Monitor
// depends on.
type EndpointRepository struct {
	db *gorm.DB
}

func NewEndpointRepository(db *gorm.DB) *EndpointRepository {
	return &EndpointRepository{db: db}
}

// ListEnabled returns every endpoint the Scheduler should probe.
func (r *EndpointRepository) ListEnabled(ctx context.Context) ([]model.MonitoredEndpoint, error) {
	var endpoints []model.MonitoredEndpoint
	err := r.db.WithContext(ctx).Where("enabled = ?", true).Find(&endpoints).Error
	return endpoints, err
}

// CurrentStatus returns the current status row, or nil if never probed.
func (r *EndpointRepository) CurrentStatus(ctx context.Context, endpointID string) (*model.EndpointStatusCurrent, error) {
	var cur model.EndpointStatusCurrent
	err := r.db.WithContext(ctx).Where("endpoint_id = ?", endpointID).First(&cur).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cur, nil
}

// RecordProbe appends a history row and upserts the current-status row.
// statusChanged decides whether an existing row's last_status_change
// advances to the probe time; otherwise the prior value is kept.
func (r *EndpointRepository) RecordProbe(ctx context.Context, probe model.EndpointStatusHistory, newStatus model.EndpointStatus, consecutiveFailures int, statusChanged bool) error {
	probe.ID = uuid.NewString()

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	if err := tx.Create(&probe).Error; err != nil {
		tx.Rollback()
		return err
	}

	updates := map[string]interface{}{
		"status":               newStatus,
		"http_code":            probe.HTTPCode,
		"response_time_ms":     probe.ResponseTimeMs,
		"has_results":          probe.HasResults,
		"last_checked":         probe.CheckedAt,
		"consecutive_failures": consecutiveFailures,
	}
	if statusChanged {
		updates["last_status_change"] = probe.CheckedAt
	}

	current := model.EndpointStatusCurrent{
		EndpointID:          probe.EndpointID,
		Status:              newStatus,
		HTTPCode:            probe.HTTPCode,
		ResponseTimeMs:       probe.ResponseTimeMs,
		HasResults:          probe.HasResults,
		LastChecked:         probe.CheckedAt,
		LastStatusChange:    probe.CheckedAt,
		ConsecutiveFailures: consecutiveFailures,
	}

	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint_id"}},
		DoUpdates: clause.Assignments(updates),
	}).Create(&current).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// Create assigns a UUID and inserts a new monitored endpoint.
func (r *EndpointRepository) Create(ctx context.Context, e *model.MonitoredEndpoint) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(e).Error
}

// History returns recent probes for an endpoint, most recent first.
func (r *EndpointRepository) History(ctx context.Context, endpointID string, limit int) ([]model.EndpointStatusHistory, error) {
	var rows []model.EndpointStatusHistory
	err := r.db.WithContext(ctx).
		Where("endpoint_id = ?", endpointID).
		Order("checked_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
