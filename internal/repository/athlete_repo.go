package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/raceops/resultsync/internal/model"
)

// AthleteRepository persists Athletes and the follow graph between them.
// Nothing in ingestion reads the follow graph or notifies followers.
type AthleteRepository struct {
	db *gorm.DB
}

func NewAthleteRepository(db *gorm.DB) *AthleteRepository {
	return &AthleteRepository{db: db}
}

// ShortlistByNormalizedName returns up to limit athletes whose normalised
// name contains the query substring, for the Athlete Matcher.
func (r *AthleteRepository) ShortlistByNormalizedName(ctx context.Context, normalizedQuery string, limit int) ([]model.Athlete, error) {
	var athletes []model.Athlete
	err := r.db.WithContext(ctx).
		Where("normalized_name LIKE ?", "%"+normalizedQuery+"%").
		Limit(limit).
		Find(&athletes).Error
	return athletes, err
}

// GetByID loads a single athlete.
func (r *AthleteRepository) GetByID(ctx context.Context, id string) (*model.Athlete, error) {
	var a model.Athlete
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// Create assigns a UUID and persists a new athlete.
func (r *AthleteRepository) Create(ctx context.Context, a *model.Athlete) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(a).Error
}

// UnlinkedResultsMatchingName returns results with no athlete link whose
// normalised name includes or is included by normalizedName, for
// suggestMatchesForAthlete's inverse direction.
func (r *AthleteRepository) UnlinkedResultsMatchingName(ctx context.Context, normalizedName string) ([]model.RaceResult, error) {
	var results []model.RaceResult
	err := r.db.WithContext(ctx).
		Where("athlete_id IS NULL AND (? LIKE '%' || normalized_name || '%' OR normalized_name LIKE '%' || ? || '%')",
			normalizedName, normalizedName).
		Find(&results).Error
	return results, err
}

// Follow upserts a follower->following edge; duplicates are a no-op.
func (r *AthleteRepository) Follow(ctx context.Context, followerID, followingID string) error {
	follow := model.AthleteFollow{
		ID:          uuid.NewString(),
		FollowerID:  followerID,
		FollowingID: followingID,
	}
	return r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		FirstOrCreate(&follow).Error
}

// FollowersOf returns athlete ids following athleteID.
func (r *AthleteRepository) FollowersOf(ctx context.Context, athleteID string) ([]string, error) {
	var follows []model.AthleteFollow
	if err := r.db.WithContext(ctx).Where("following_id = ?", athleteID).Find(&follows).Error; err != nil {
		return nil, err
	}
	ids := make([]string, len(follows))
	for i, f := range follows {
		ids[i] = f.FollowerID
	}
	return ids, nil
}
