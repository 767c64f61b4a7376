package repository

import (
	"context"

	"transflow/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FavoriteRepository defines the interface for favorite data operations.
type FavoriteRepository interface {
	Add(ctx context.Context, favorite *model.Favorite) error
	Remove(ctx context.Context, userID int64, transitionID string) error
	Exists(ctx context.Context, userID int64, transitionID string) (bool, error)
	ListTransitionIDsByUser(ctx context.Context, userID int64) ([]string, error)
}

// gormFavoriteRepository is the GORM implementation.
type gormFavoriteRepository struct {
	db *gorm.DB
}

// NewGormFavoriteRepository creates a GORM favorite repository.
func NewGormFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &gormFavoriteRepository{db: db}
}

// Add bookmarks a transition. Adding an existing favorite is a no-op; the
// unique (user_id, transition_id) index guarantees one row per pair.
func (r *gormFavoriteRepository) Add(ctx context.Context, favorite *model.Favorite) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "transition_id"}},
		DoNothing: true,
	}).Create(favorite).Error
}

// Remove deletes a bookmark. Removing an absent favorite is not an error.
func (r *gormFavoriteRepository) Remove(ctx context.Context, userID int64, transitionID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND transition_id = ?", userID, transitionID).
		Delete(&model.Favorite{}).Error
}

// Exists reports whether the user has bookmarked the transition.
func (r *gormFavoriteRepository) Exists(ctx context.Context, userID int64, transitionID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Favorite{}).
		Where("user_id = ? AND transition_id = ?", userID, transitionID).
		Count(&count).Error
	return count > 0, err
}

// ListTransitionIDsByUser returns the user's bookmarked transition IDs,
// newest bookmark first.
func (r *gormFavoriteRepository) ListTransitionIDsByUser(ctx context.Context, userID int64) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.Favorite{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("transition_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
