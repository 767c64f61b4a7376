package repository

import (
	"context"

	"transflow/model"

	"gorm.io/gorm"
)

// Sort orders for transition listings.
const (
	SortNewest    = "newest"
	SortOldest    = "oldest"
	SortCrossfade = "crossfade"
)

// ListOptions control transition listing queries.
type ListOptions struct {
	Sort   string // newest (default), oldest, crossfade
	Search string // matches either song name or artist
	Limit  int
	Offset int
}

// TransitionRepository defines the interface for transition data operations.
type TransitionRepository interface {
	Create(ctx context.Context, transition *model.Transition) error
	GetByID(ctx context.Context, id string) (*model.Transition, error)
	List(ctx context.Context, opts ListOptions) ([]*model.Transition, error)
	ListByUser(ctx context.Context, userID int64) ([]*model.Transition, error)
	ListByIDs(ctx context.Context, ids []string) ([]*model.Transition, error)
	ListRecent(ctx context.Context, limit int) ([]*model.Transition, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
	IncrementViews(ctx context.Context, id string) error
}

// gormTransitionRepository is the GORM implementation.
type gormTransitionRepository struct {
	db *gorm.DB
}

// NewGormTransitionRepository creates a GORM transition repository.
func NewGormTransitionRepository(db *gorm.DB) TransitionRepository {
	return &gormTransitionRepository{db: db}
}

// Create inserts a new transition.
func (r *gormTransitionRepository) Create(ctx context.Context, transition *model.Transition) error {
	return r.db.WithContext(ctx).Create(transition).Error
}

// GetByID fetches a transition by ID.
func (r *gormTransitionRepository) GetByID(ctx context.Context, id string) (*model.Transition, error) {
	var transition model.Transition
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&transition).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &transition, nil
}

// List fetches transitions according to the listing options. Sorting by
// rating is done by the caller after aggregation; the repository only knows
// column-backed orders.
func (r *gormTransitionRepository) List(ctx context.Context, opts ListOptions) ([]*model.Transition, error) {
	query := r.db.WithContext(ctx).Model(&model.Transition{})

	if opts.Search != "" {
		pattern := "%" + opts.Search + "%"
		query = query.Where(
			"song1_name LIKE ? OR song2_name LIKE ? OR song1_artist LIKE ? OR song2_artist LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}

	switch opts.Sort {
	case SortOldest:
		query = query.Order("created_at ASC, id ASC")
	case SortCrossfade:
		query = query.Order("crossfade_length DESC, created_at DESC, id ASC")
	default:
		query = query.Order("created_at DESC, id ASC")
	}

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	var transitions []*model.Transition
	if err := query.Find(&transitions).Error; err != nil {
		return nil, err
	}
	return transitions, nil
}

// ListByUser fetches all transitions submitted by a user, newest first.
func (r *gormTransitionRepository) ListByUser(ctx context.Context, userID int64) ([]*model.Transition, error) {
	var transitions []*model.Transition
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id ASC").
		Find(&transitions).Error
	if err != nil {
		return nil, err
	}
	return transitions, nil
}

// ListByIDs fetches transitions by their IDs.
func (r *gormTransitionRepository) ListByIDs(ctx context.Context, ids []string) ([]*model.Transition, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var transitions []*model.Transition
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("created_at DESC, id ASC").
		Find(&transitions).Error
	if err != nil {
		return nil, err
	}
	return transitions, nil
}

// ListRecent fetches the most recently created transitions.
func (r *gormTransitionRepository) ListRecent(ctx context.Context, limit int) ([]*model.Transition, error) {
	var transitions []*model.Transition
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id ASC").
		Limit(limit).
		Find(&transitions).Error
	if err != nil {
		return nil, err
	}
	return transitions, nil
}

// CountByUser counts a user's submitted transitions.
func (r *gormTransitionRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Transition{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// IncrementViews atomically bumps the view counter for a transition.
func (r *gormTransitionRepository) IncrementViews(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&model.Transition{}).
		Where("id = ?", id).
		UpdateColumn("views_count", gorm.Expr("views_count + ?", 1)).Error
}
