package repository

import (
	"context"
	"time"

	"transflow/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpvotedTransition carries the artist pair of a transition a user upvoted,
// used to derive recommendation preferences.
type UpvotedTransition struct {
	TransitionID string
	Song1Artist  string
	Song2Artist  string
}

// RatingRepository defines the interface for rating data operations.
type RatingRepository interface {
	// Upsert writes the vote for a (user, transition) pair as a single
	// conditional insert-or-update keyed on the composite unique index.
	Upsert(ctx context.Context, rating *model.Rating) error
	Delete(ctx context.Context, userID int64, transitionID string) error
	Get(ctx context.Context, userID int64, transitionID string) (*model.Rating, error)
	ListForTransition(ctx context.Context, transitionID string) ([]*model.Rating, error)
	ListForTransitions(ctx context.Context, transitionIDs []string) ([]*model.Rating, error)
	ListRatedIDsByUser(ctx context.Context, userID int64) ([]string, error)
	ListUpvotedByUser(ctx context.Context, userID int64) ([]UpvotedTransition, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
}

// gormRatingRepository is the GORM implementation.
type gormRatingRepository struct {
	db *gorm.DB
}

// NewGormRatingRepository creates a GORM rating repository.
func NewGormRatingRepository(db *gorm.DB) RatingRepository {
	return &gormRatingRepository{db: db}
}

// Upsert inserts the vote or replaces the existing one on conflict. The
// conflict target is the unique (user_id, transition_id) index, so repeated
// votes from one user can never produce duplicate rows.
func (r *gormRatingRepository) Upsert(ctx context.Context, rating *model.Rating) error {
	rating.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "transition_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "updated_at"}),
	}).Create(rating).Error
}

// Delete removes the vote for a (user, transition) pair. Deleting a vote
// that does not exist is not an error.
func (r *gormRatingRepository) Delete(ctx context.Context, userID int64, transitionID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND transition_id = ?", userID, transitionID).
		Delete(&model.Rating{}).Error
}

// Get fetches the vote for a (user, transition) pair.
func (r *gormRatingRepository) Get(ctx context.Context, userID int64, transitionID string) (*model.Rating, error) {
	var rating model.Rating
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND transition_id = ?", userID, transitionID).
		First(&rating).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &rating, nil
}

// ListForTransition fetches all votes on one transition.
func (r *gormRatingRepository) ListForTransition(ctx context.Context, transitionID string) ([]*model.Rating, error) {
	var ratings []*model.Rating
	err := r.db.WithContext(ctx).
		Where("transition_id = ?", transitionID).
		Find(&ratings).Error
	if err != nil {
		return nil, err
	}
	return ratings, nil
}

// ListForTransitions fetches all votes across a batch of transitions.
func (r *gormRatingRepository) ListForTransitions(ctx context.Context, transitionIDs []string) ([]*model.Rating, error) {
	if len(transitionIDs) == 0 {
		return nil, nil
	}
	var ratings []*model.Rating
	err := r.db.WithContext(ctx).
		Where("transition_id IN ?", transitionIDs).
		Find(&ratings).Error
	if err != nil {
		return nil, err
	}
	return ratings, nil
}

// ListRatedIDsByUser returns the IDs of transitions the user has voted on.
func (r *gormRatingRepository) ListRatedIDsByUser(ctx context.Context, userID int64) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.Rating{}).
		Where("user_id = ?", userID).
		Pluck("transition_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ListUpvotedByUser returns the artist pairs of transitions the user has
// upvoted, joined against the transitions table.
func (r *gormRatingRepository) ListUpvotedByUser(ctx context.Context, userID int64) ([]UpvotedTransition, error) {
	var rows []UpvotedTransition
	err := r.db.WithContext(ctx).Model(&model.Rating{}).
		Select("ratings.transition_id, transitions.song1_artist, transitions.song2_artist").
		Joins("JOIN transitions ON transitions.id = ratings.transition_id").
		Where("ratings.user_id = ? AND ratings.rating > 0", userID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CountByUser counts the votes a user has cast.
func (r *gormRatingRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Rating{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
